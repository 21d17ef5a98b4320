package pattern

import (
	"github.com/wbrown/graphql-engine/internal/value"
)

// DefaultResultCap is the path/row truncation limit (default 100 000),
// independent of max_path_length: the two knobs are independent units
// (rows vs edges).
const DefaultResultCap = 100000

// PathAnalysis is the observability summary: total paths, empty paths,
// min/max length.
type PathAnalysis struct {
	Total  int
	Empty  int
	MinLen int
	MaxLen int
}

// AnalyzePaths computes a PathAnalysis over a path set.
func AnalyzePaths(paths []*value.Path) PathAnalysis {
	a := PathAnalysis{Total: len(paths)}
	first := true
	for _, p := range paths {
		l := p.Length()
		if l == 0 {
			a.Empty++
		}
		if first {
			a.MinLen, a.MaxLen = l, l
			first = false
			continue
		}
		if l < a.MinLen {
			a.MinLen = l
		}
		if l > a.MaxLen {
			a.MaxLen = l
		}
	}
	return a
}

// Builder converts accumulated paths into a DataSet (or a raw Paths
// result), applying a configurable result-count cap.
type Builder struct {
	ResultCap int
}

func NewBuilder() *Builder { return &Builder{ResultCap: DefaultResultCap} }

// BuildPaths truncates paths to the result cap and wraps them as a Paths
// ExecutionResult — used by AllPaths/ShortestPath-class operators whose
// natural output variant is Paths rather than a DataSet.
func (b *Builder) BuildPaths(paths []*value.Path) value.ExecutionResult {
	limit := b.ResultCap
	if limit <= 0 {
		limit = DefaultResultCap
	}
	if len(paths) > limit {
		paths = paths[:limit]
	}
	return value.Paths(paths)
}

// BuildDataSet converts paths plus their per-path variable bindings into a
// DataSet with one column per bound variable, plus "path" holding the Path
// value itself — the column layout MATCH-class operators project from.
func (b *Builder) BuildDataSet(paths []*value.Path, bindings []map[string]value.Value, pathVar string) *value.DataSet {
	limit := b.ResultCap
	if limit <= 0 {
		limit = DefaultResultCap
	}
	if len(paths) > limit {
		paths = paths[:limit]
		if len(bindings) > limit {
			bindings = bindings[:limit]
		}
	}

	varSet := make(map[string]bool)
	for _, bind := range bindings {
		for k := range bind {
			varSet[k] = true
		}
	}
	cols := make([]string, 0, len(varSet)+1)
	if pathVar != "" {
		cols = append(cols, pathVar)
	}
	for k := range varSet {
		cols = append(cols, k)
	}

	rows := make([]value.Row, 0, len(paths))
	for i, p := range paths {
		row := make(value.Row, len(cols))
		var bind map[string]value.Value
		if i < len(bindings) {
			bind = bindings[i]
		}
		for ci, c := range cols {
			if pathVar != "" && c == pathVar {
				row[ci] = value.PathValue(p)
				continue
			}
			if v, ok := bind[c]; ok {
				row[ci] = v
			} else {
				row[ci] = value.Null()
			}
		}
		rows = append(rows, row)
	}
	return value.MustDataSet(cols, rows)
}
