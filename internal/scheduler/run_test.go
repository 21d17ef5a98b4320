package scheduler

import (
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/config"
	"github.com/wbrown/graphql-engine/internal/operator"
	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/telemetry"
)

func newTestExecCtx(killed *atomic.Bool) *operator.ExecContext {
	if killed == nil {
		killed = &atomic.Bool{}
	}
	collector := telemetry.NewCollector("test-exec", nil)
	return operator.NewExecContext(storage.NewMemStore(), "default", config.Default(), nil, collector, zerolog.Nop(), killed)
}

func TestSchedulerRunLinearChain(t *testing.T) {
	scan := operator.NewScanVertices(1, nil, "default", nil, "", nil, nil)
	project := operator.NewProject(2, []operator.Executor{scan}, nil, nil)

	s := NewSchedule(project, nil)
	require.NoError(t, s.Validate())

	sch := NewScheduler(2)
	ctx := newTestExecCtx(nil)
	res, err := sch.Run(s, ctx)
	require.NoError(t, err)
	assert.NotNil(t, res.DataSet)
}

func TestSchedulerRunStopsOnKill(t *testing.T) {
	scan := operator.NewScanVertices(1, nil, "default", nil, "", nil, nil)
	project := operator.NewProject(2, []operator.Executor{scan}, nil, nil)

	s := NewSchedule(project, nil)
	killed := &atomic.Bool{}
	killed.Store(true)
	ctx := newTestExecCtx(killed)

	sch := NewScheduler(2)
	_, err := sch.Run(s, ctx)
	assert.Error(t, err, "a query killed before the first batch dispatches must fail immediately")
}

func TestSchedulerRunSingleOperatorPlan(t *testing.T) {
	scan := operator.NewScanVertices(1, nil, "default", nil, "", nil, nil)
	s := NewSchedule(scan, nil)
	sch := NewScheduler(1)
	ctx := newTestExecCtx(nil)
	res, err := sch.Run(s, ctx)
	require.NoError(t, err)
	assert.NotNil(t, res)
}
