package admin

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/engine"
)

func newTestQuery(execID, space string) *engine.Query {
	return &engine.Query{ExecID: execID, Space: space, Killed: &atomic.Bool{}}
}

func TestRegistryRegisterFinishCompleted(t *testing.T) {
	r := NewQueryRegistry()
	q := newTestQuery("q1", "default")
	r.Register(q, "MATCH (n) RETURN n")

	running := r.Running()
	require.Len(t, running, 1)
	assert.Equal(t, StatusRunning, running[0].Status)

	r.Finish("q1", nil)
	assert.Empty(t, r.Running())

	all := r.All()
	require.Len(t, all, 1)
	assert.Equal(t, StatusCompleted, all[0].Status)
}

func TestRegistryFinishFailed(t *testing.T) {
	r := NewQueryRegistry()
	q := newTestQuery("q1", "default")
	r.Register(q, "bad query")
	r.Finish("q1", errors.New("boom"))

	all := r.All()
	require.Len(t, all, 1)
	assert.Equal(t, StatusFailed, all[0].Status)
}

// TestRegistryKillQuery: Kill sets the cooperative flag, and a subsequent
// Finish with a non-nil error must record KILLED rather than FAILED since
// the kill flag takes priority.
func TestRegistryKillQuery(t *testing.T) {
	r := NewQueryRegistry()
	q := newTestQuery("q1", "default")
	r.Register(q, "MATCH (n) RETURN n")

	ok := r.Kill("q1")
	assert.True(t, ok)
	assert.True(t, q.Killed.Load())

	r.Finish("q1", errors.New("query killed"))
	all := r.All()
	require.Len(t, all, 1)
	assert.Equal(t, StatusKilled, all[0].Status)
}

func TestRegistryKillUnknownQueryReturnsFalse(t *testing.T) {
	r := NewQueryRegistry()
	assert.False(t, r.Kill("nope"))
	res := r.KillResult("nope")
	assert.True(t, res.IsError())
}

func TestRegistryShowStatsTallies(t *testing.T) {
	r := NewQueryRegistry()
	q1 := newTestQuery("q1", "default")
	q2 := newTestQuery("q2", "default")
	q3 := newTestQuery("q3", "default")
	r.Register(q1, "a")
	r.Register(q2, "b")
	r.Register(q3, "c")

	r.Finish("q1", nil)
	r.Finish("q2", errors.New("x"))
	r.Kill("q3")
	r.Finish("q3", errors.New("killed"))

	res := r.ShowStats()
	require.False(t, res.IsError())
	ds := res.DataSet
	byMetric := map[string]int64{}
	for _, row := range ds.Rows {
		n, _ := row[1].AsInt()
		byMetric[row[0].String()] = n
	}
	assert.Equal(t, int64(1), byMetric["completed"])
	assert.Equal(t, int64(1), byMetric["failed"])
	assert.Equal(t, int64(1), byMetric["killed"])
	assert.Equal(t, int64(0), byMetric["running"])
}

func TestRegistryFinishUnregisteredIsNoop(t *testing.T) {
	r := NewQueryRegistry()
	assert.NotPanics(t, func() { r.Finish("missing", nil) })
}
