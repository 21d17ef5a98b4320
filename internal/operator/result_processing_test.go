package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/pattern"
	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

func mustInt(t *testing.T, v value.Value) int64 {
	t.Helper()
	i, ok := v.AsInt()
	require.True(t, ok, "expected an Int value, got %v", v)
	return i
}

// TestAggregateGroupBy: SUM and COUNT(*) grouped by department, with AVG
// skipping Null input.
func TestAggregateGroupBy(t *testing.T) {
	results := newFakeResults()
	pred := newStub(1)
	results.set(1, rowsDataSet(t, []string{"dept", "amount"}, []value.Row{
		{value.String("eng"), value.Int(100)},
		{value.String("eng"), value.Int(200)},
		{value.String("sales"), value.Int(50)},
		{value.String("sales"), value.Null()},
	}))

	ctx := newTestExecContext(t, storage.NewMemStore(), "default", results)
	groupExprs := []*pattern.Expr{pattern.VarExpr("dept")}
	funcs := []AggSpec{
		{Func: "SUM", Expr: pattern.VarExpr("amount"), Alias: "total"},
		{Func: "COUNT", Expr: nil, Alias: "cnt"},
		{Func: "AVG", Expr: pattern.VarExpr("amount"), Alias: "avg"},
	}
	op := NewAggregate(2, []Executor{pred}, []string{"dept"}, groupExprs, funcs)
	res, err := op.Execute(ctx)
	require.NoError(t, err)

	ds := res.DataSet
	require.Len(t, ds.Rows, 2)

	byDept := map[string]value.Row{}
	for _, row := range ds.Rows {
		byDept[row[0].String()] = row
	}

	eng := byDept["eng"]
	assert.Equal(t, int64(300), mustInt(t, eng[ds.ColumnIndex("total")]))
	assert.Equal(t, int64(2), mustInt(t, eng[ds.ColumnIndex("cnt")]))

	sales := byDept["sales"]
	assert.Equal(t, int64(50), mustInt(t, sales[ds.ColumnIndex("total")]))
	assert.Equal(t, int64(2), mustInt(t, sales[ds.ColumnIndex("cnt")]), "COUNT(*) counts all rows including the Null amount")
	avg, ok := sales[ds.ColumnIndex("avg")].AsFloat()
	assert.True(t, ok)
	assert.Equal(t, 50.0, avg, "AVG must skip the Null row rather than treating it as zero")
}

func TestAggregateEmptyInputNoGroupBy(t *testing.T) {
	results := newFakeResults()
	pred := newStub(1)
	results.set(1, rowsDataSet(t, []string{"amount"}, nil))

	ctx := newTestExecContext(t, storage.NewMemStore(), "default", results)
	funcs := []AggSpec{
		{Func: "COUNT", Expr: nil, Alias: "cnt"},
		{Func: "SUM", Expr: pattern.VarExpr("amount"), Alias: "total"},
		{Func: "MAX", Expr: pattern.VarExpr("amount"), Alias: "mx"},
	}
	op := NewAggregate(2, []Executor{pred}, nil, nil, funcs)
	res, err := op.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, res.DataSet.Rows, 1)
	row := res.DataSet.Rows[0]
	assert.Equal(t, int64(0), mustInt(t, row[0]))
	assert.Equal(t, int64(0), mustInt(t, row[1]))
	assert.True(t, row[2].IsNull())
}

func TestDedupFullRow(t *testing.T) {
	results := newFakeResults()
	pred := newStub(1)
	results.set(1, rowsDataSet(t, []string{"a"}, []value.Row{
		{value.Int(1)}, {value.Int(1)}, {value.Int(2)},
	}))
	ctx := newTestExecContext(t, storage.NewMemStore(), "default", results)
	op := NewDedup(2, []Executor{pred}, nil)
	res, err := op.Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, res.DataSet.Rows, 2)
}

func TestFilterDropsNonMatching(t *testing.T) {
	results := newFakeResults()
	pred := newStub(1)
	results.set(1, rowsDataSet(t, []string{"n"}, []value.Row{
		{value.Int(1)}, {value.Int(2)}, {value.Int(3)},
	}))
	ctx := newTestExecContext(t, storage.NewMemStore(), "default", results)
	expr := pattern.BinaryExpr(pattern.OpGt, pattern.VarExpr("n"), pattern.Lit(int64(1)))
	op := NewFilter(2, []Executor{pred}, expr)
	res, err := op.Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, res.DataSet.Rows, 2)
}
