package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

func rowsDataSet(t *testing.T, cols []string, rows []value.Row) value.ExecutionResult {
	t.Helper()
	return value.DataSetResult(value.MustDataSet(cols, rows))
}

// TestLeftJoinPreservesUnmatchedLeftRows: left rows with no match keep
// their row but gain Null right-hand columns rather than being dropped.
func TestLeftJoinPreservesUnmatchedLeftRows(t *testing.T) {
	results := newFakeResults()
	left := newStub(1)
	right := newStub(2)

	results.set(1, rowsDataSet(t, []string{"id", "name"}, []value.Row{
		{value.Int(1), value.String("Alice")},
		{value.Int(2), value.String("Bob")},
	}))
	results.set(2, rowsDataSet(t, []string{"id", "city"}, []value.Row{
		{value.Int(1), value.String("NYC")},
	}))

	ctx := newTestExecContext(t, storage.NewMemStore(), "default", results)
	op := NewLeftJoin(3, []Executor{left, right}, []string{"id"}, []string{"id"}, nil)
	res, err := op.Execute(ctx)
	require.NoError(t, err)

	ds := res.DataSet
	require.Len(t, ds.Rows, 2)

	idx := ds.ColumnIndex("city")
	require.GreaterOrEqual(t, idx, 0)

	var aliceCity, bobCity value.Value
	for _, row := range ds.Rows {
		if row[0].String() == "1" {
			aliceCity = row[idx]
		} else {
			bobCity = row[idx]
		}
	}
	assert.Equal(t, "NYC", aliceCity.String())
	assert.True(t, bobCity.IsNull(), "Bob has no matching right row, so the right-hand columns must be Null rather than the row being dropped")
}

func TestInnerJoinOnlyKeepsMatches(t *testing.T) {
	results := newFakeResults()
	left := newStub(1)
	right := newStub(2)
	results.set(1, rowsDataSet(t, []string{"id"}, []value.Row{{value.Int(1)}, {value.Int(2)}}))
	results.set(2, rowsDataSet(t, []string{"id"}, []value.Row{{value.Int(2)}, {value.Int(3)}}))

	ctx := newTestExecContext(t, storage.NewMemStore(), "default", results)
	op := NewInnerJoin(3, []Executor{left, right}, []string{"id"}, []string{"id"}, nil)
	res, err := op.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, res.DataSet.Rows, 1)
	assert.Equal(t, "2", res.DataSet.Rows[0][0].String())
}

func TestCrossJoinCartesianProduct(t *testing.T) {
	results := newFakeResults()
	left := newStub(1)
	right := newStub(2)
	results.set(1, rowsDataSet(t, []string{"a"}, []value.Row{{value.Int(1)}, {value.Int(2)}}))
	results.set(2, rowsDataSet(t, []string{"b"}, []value.Row{{value.Int(10)}, {value.Int(20)}, {value.Int(30)}}))

	ctx := newTestExecContext(t, storage.NewMemStore(), "default", results)
	op := NewCrossJoin(3, []Executor{left, right}, nil)
	res, err := op.Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, res.DataSet.Rows, 6)
}
