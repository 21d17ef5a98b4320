package operator

import "github.com/wbrown/graphql-engine/internal/value"

// twoInputRows reads both predecessor results as (columns, rows) pairs —
// the common shape set operations and joins consume.
func twoInputRows(ctx *ExecContext, inputs []Executor) (lc []string, lr []value.Row, rc []string, rr []value.Row, ok bool) {
	if len(inputs) != 2 {
		return nil, nil, nil, nil, false
	}
	left, lok := ctx.Results.Result(inputs[0].ID())
	right, rok := ctx.Results.Result(inputs[1].ID())
	if !lok || !rok {
		return nil, nil, nil, nil, false
	}
	lds := left.ToDataSet("value")
	rds := right.ToDataSet("value")
	return lds.Columns, lds.Rows, rds.Columns, rds.Rows, true
}

// Union concatenates two input result sets and deduplicates.
type Union struct{ Base }

func NewUnion(id int, inputs []Executor) *Union {
	return &Union{NewBase(id, "Union", "deduplicated concatenation", inputs)}
}

func (o *Union) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, _, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	all := append(append([]value.Row{}, lr...), rr...)
	seen := make(map[string]bool, len(all))
	out := make([]value.Row, 0, len(all))
	for _, row := range all {
		k := rowKeyString(row)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, row)
	}
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(lc, out)), nil
}

// UnionAll is concatenation without dedup.
type UnionAll struct{ Base }

func NewUnionAll(id int, inputs []Executor) *UnionAll {
	return &UnionAll{NewBase(id, "UnionAll", "plain concatenation", inputs)}
}

func (o *UnionAll) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, _, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	out := append(append([]value.Row{}, lr...), rr...)
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(lc, out)), nil
}

// Intersect is multiset intersection.
type Intersect struct{ Base }

func NewIntersect(id int, inputs []Executor) *Intersect {
	return &Intersect{NewBase(id, "Intersect", "multiset intersection", inputs)}
}

func (o *Intersect) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, _, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	rightCounts := make(map[string]int, len(rr))
	for _, row := range rr {
		rightCounts[rowKeyString(row)]++
	}
	out := make([]value.Row, 0)
	for _, row := range lr {
		k := rowKeyString(row)
		if rightCounts[k] > 0 {
			out = append(out, row)
			rightCounts[k]--
		}
	}
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(lc, out)), nil
}

// Minus is multiset difference (left - right).
type Minus struct{ Base }

func NewMinus(id int, inputs []Executor) *Minus {
	return &Minus{NewBase(id, "Minus", "multiset difference", inputs)}
}

func (o *Minus) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	lc, lr, _, rr, ok := twoInputRows(ctx, o.Inputs())
	if !ok {
		return value.Empty(), nil
	}
	rightCounts := make(map[string]int, len(rr))
	for _, row := range rr {
		rightCounts[rowKeyString(row)]++
	}
	out := make([]value.Row, 0)
	for _, row := range lr {
		k := rowKeyString(row)
		if rightCounts[k] > 0 {
			rightCounts[k]--
			continue
		}
		out = append(out, row)
	}
	o.Stats().AddProduced(int64(len(out)))
	return value.DataSetResult(value.MustDataSet(lc, out)), nil
}
