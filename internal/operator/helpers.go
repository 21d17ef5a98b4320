package operator

import (
	"sort"
	"time"

	"github.com/wbrown/graphql-engine/internal/pattern"
	"github.com/wbrown/graphql-engine/internal/value"
)

// statsTimer returns a stop function yielding elapsed time since the call;
// every operator's Execute defers Stats().RecordElapsed(started()).
func statsTimer() func() time.Duration {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}

// singleBinding resolves every variable name to the same entity — the
// vertex/edge a data-access operator is evaluating its filter expression
// against. Single-entity filter expressions reference their own alias by
// any name since there is exactly one entity in scope.
type singleBinding struct{ v value.Value }

func (s singleBinding) Get(string) (value.Value, bool) { return s.v, true }

func evalVertexBool(ev *pattern.Evaluator, expr *pattern.Expr, v *value.Vertex) (bool, error) {
	result, err := ev.Eval(expr, singleBinding{value.VertexValue(v)})
	if err != nil {
		return false, err
	}
	b, _ := result.AsBool()
	return b, nil
}

func evalEdgeBool(ev *pattern.Evaluator, expr *pattern.Expr, e *value.Edge) (bool, error) {
	result, err := ev.Eval(expr, singleBinding{value.EdgeValue(e)})
	if err != nil {
		return false, err
	}
	b, _ := result.AsBool()
	return b, nil
}

// evalRowBool evaluates a boolean expression against a row binding — the
// general form Filter/Select use for DataSet-shaped input.
func evalRowBool(ev *pattern.Evaluator, expr *pattern.Expr, b pattern.Binding) (bool, error) {
	result, err := ev.Eval(expr, b)
	if err != nil {
		return false, err
	}
	ok, _ := result.AsBool()
	return ok, nil
}

func sortVerticesByVID(vs []*value.Vertex) {
	sort.SliceStable(vs, func(i, j int) bool { return value.Compare(vs[i].VID, vs[j].VID) < 0 })
}

// rowBinding adapts a DataSet row + its column list to pattern.Binding.
type rowBinding struct {
	cols []string
	row  value.Row
}

func (b rowBinding) Get(name string) (value.Value, bool) {
	for i, c := range b.cols {
		if c == name {
			return b.row[i], true
		}
	}
	return value.Null(), false
}
