package value

import (
	"fmt"
	"strings"
)

// Row is one DataSet row; arity must always equal len(DataSet.Columns).
type Row []Value

func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// DataSet is the canonical wire shape for query results: a column-name list
// plus a row list, row arity equal to column count.
type DataSet struct {
	Columns []string
	Rows    []Row
}

// NewDataSet validates the row-arity invariant at construction time so a
// malformed DataSet can never leave an operator.
func NewDataSet(columns []string, rows []Row) (*DataSet, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("dataset row %d has arity %d, want %d", i, len(row), len(columns))
		}
	}
	return &DataSet{Columns: columns, Rows: rows}, nil
}

// MustDataSet panics on arity mismatch; reserved for operator-internal
// construction where the arity was just computed and a mismatch is a bug.
func MustDataSet(columns []string, rows []Row) *DataSet {
	d, err := NewDataSet(columns, rows)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *DataSet) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (d *DataSet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DataSet(cols=%v, rows=%d)", d.Columns, len(d.Rows))
	return b.String()
}

// ResultKind tags the ExecutionResult variant an operator produces.
type ResultKind int

const (
	ResultDataSet ResultKind = iota
	ResultVertices
	ResultEdges
	ResultValues
	ResultPaths
	ResultCount
	ResultSuccess
	ResultEmpty
	ResultError
)

// ExecutionResult is the uniform envelope every operator produces and every
// downstream operator converts from as needed.
type ExecutionResult struct {
	Kind     ResultKind
	Vertices []*Vertex
	Edges    []*Edge
	Values   []Value
	Paths    []*Path
	DataSet  *DataSet
	Count    int64
	ErrMsg   string
}

func Vertices(vs []*Vertex) ExecutionResult { return ExecutionResult{Kind: ResultVertices, Vertices: vs} }
func Edges(es []*Edge) ExecutionResult      { return ExecutionResult{Kind: ResultEdges, Edges: es} }
func Values(vs []Value) ExecutionResult     { return ExecutionResult{Kind: ResultValues, Values: vs} }
func Paths(ps []*Path) ExecutionResult      { return ExecutionResult{Kind: ResultPaths, Paths: ps} }
func DataSetResult(d *DataSet) ExecutionResult {
	return ExecutionResult{Kind: ResultDataSet, DataSet: d}
}
func CountResult(n int64) ExecutionResult { return ExecutionResult{Kind: ResultCount, Count: n} }
func Success() ExecutionResult            { return ExecutionResult{Kind: ResultSuccess} }
func Empty() ExecutionResult              { return ExecutionResult{Kind: ResultEmpty} }
func ErrorResult(msg string) ExecutionResult {
	return ExecutionResult{Kind: ResultError, ErrMsg: msg}
}

// IsError reports whether this result is a soft operator-level failure,
// distinct from a hard error returned from Execute itself.
func (r ExecutionResult) IsError() bool { return r.Kind == ResultError }

// ToDataSet converts any variant to a DataSet, the form Project/Aggregate
// always emit to and the form most set/join operators operate on.
func (r ExecutionResult) ToDataSet(column string) *DataSet {
	switch r.Kind {
	case ResultDataSet:
		return r.DataSet
	case ResultVertices:
		rows := make([]Row, len(r.Vertices))
		for i, v := range r.Vertices {
			rows[i] = Row{VertexValue(v)}
		}
		return MustDataSet([]string{column}, rows)
	case ResultEdges:
		rows := make([]Row, len(r.Edges))
		for i, e := range r.Edges {
			rows[i] = Row{EdgeValue(e)}
		}
		return MustDataSet([]string{column}, rows)
	case ResultValues:
		rows := make([]Row, len(r.Values))
		for i, v := range r.Values {
			rows[i] = Row{v}
		}
		return MustDataSet([]string{column}, rows)
	case ResultPaths:
		rows := make([]Row, len(r.Paths))
		for i, p := range r.Paths {
			rows[i] = Row{PathValue(p)}
		}
		return MustDataSet([]string{column}, rows)
	case ResultCount:
		return MustDataSet([]string{column}, []Row{{Int(r.Count)}})
	default:
		return MustDataSet([]string{column}, nil)
	}
}
