// Package engine wires the factory and scheduler together behind a single
// execute_plan(query_ctx, plan) entry point: analyze lifecycle, build the
// operator DAG, validate and schedule it, and run it to completion.
package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wbrown/graphql-engine/internal/config"
	"github.com/wbrown/graphql-engine/internal/factory"
	"github.com/wbrown/graphql-engine/internal/metrics"
	"github.com/wbrown/graphql-engine/internal/operator"
	"github.com/wbrown/graphql-engine/internal/plan"
	"github.com/wbrown/graphql-engine/internal/scheduler"
	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/telemetry"
	"github.com/wbrown/graphql-engine/internal/value"
)

// Engine owns the long-lived collaborators a query execution needs: the
// storage handle, configuration, and logger. One Engine serves any number
// of concurrent ExecutePlan calls. New attaches a disabled (no-op) Metrics;
// use WithMetrics to attach an enabled one.
type Engine struct {
	Storage storage.Client
	Config  config.Config
	Log     zerolog.Logger
	Metrics *metrics.Metrics
}

func New(st storage.Client, cfg config.Config, log zerolog.Logger) *Engine {
	return &Engine{Storage: st, Config: cfg, Log: log, Metrics: metrics.New("", false)}
}

// WithMetrics attaches a Metrics collector, returning the Engine for
// chaining at construction time.
func (e *Engine) WithMetrics(m *metrics.Metrics) *Engine {
	e.Metrics = m
	return e
}

// Query is a running or completed query's handle, registered with a
// QueryRegistry (internal/admin) so kill_query/show_queries/show_stats can
// reach it from outside the call that started it.
type Query struct {
	ExecID string
	Space  string
	Killed *atomic.Bool
}

// Kill sets the cooperative kill flag; long-running scans and the
// scheduler's between-batch check observe it on their next poll.
func (q *Query) Kill() { q.Killed.Store(true) }

// ExecutePlan implements execute_plan(query_ctx, plan) -> ExecutionResult:
// analyzes the plan's lifecycle (recursion + safety), lowers it to an
// operator DAG, validates and schedules it, and runs it to completion. It
// does not expose the *Query handle; callers that need to register the
// execution for kill_query/show_queries before or while Run is in flight
// must call Prepare (which returns the handle) and Run separately.
func (e *Engine) ExecutePlan(space string, root *plan.Node, outputVars map[int]string, handler telemetry.Handler) (value.ExecutionResult, error) {
	q, execCtx, sched, err := e.Prepare(space, root, outputVars, handler)
	if err != nil {
		return value.Empty(), err
	}
	return e.Run(q, execCtx, sched)
}

// Prepare builds everything ExecutePlan needs but does not run it, so a
// caller can register the *Query with a registry (for kill_query) before
// the scheduler starts dispatching.
func (e *Engine) Prepare(space string, root *plan.Node, outputVars map[int]string, handler telemetry.Handler) (*Query, *operator.ExecContext, *scheduler.ExecutionSchedule, error) {
	f := factory.New(e.Config, e.Log)
	if err := f.AnalyzePlanLifecycle(root); err != nil {
		return nil, nil, nil, fmt.Errorf("engine: plan rejected: %w", err)
	}

	execOp, err := f.CreateExecutor(root)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("engine: failed to build operator DAG: %w", err)
	}

	sched := scheduler.NewSchedule(execOp, outputVars)
	if err := sched.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("engine: invalid operator DAG: %w", err)
	}
	sched.AnalyzeLifetime()

	execID := uuid.NewString()
	killed := &atomic.Bool{}
	collector := telemetry.NewCollector(execID, handler)
	log := e.Log.With().Str("exec_id", execID).Str("space", space).Logger()
	execCtx := operator.NewExecContext(e.Storage, space, e.Config, nil, collector, log, killed)

	return &Query{ExecID: execID, Space: space, Killed: killed}, execCtx, sched, nil
}

// Run drives the scheduler to completion for a prepared query.
func (e *Engine) Run(q *Query, execCtx *operator.ExecContext, sched *scheduler.ExecutionSchedule) (value.ExecutionResult, error) {
	start := execCtx.Log
	start.Info().Msg("query execution started")
	execCtx.Collector.Add(telemetry.Event{Name: telemetry.QueryBegin})
	e.Metrics.RecordQueryStarted(q.Space)
	startedAt := time.Now()

	workers := e.Config.Scheduler.WorkerCount
	sch := scheduler.NewScheduler(workers)
	res, err := sch.Run(sched, execCtx)
	e.recordOperatorMetrics(sched)

	if err != nil {
		execCtx.Collector.Add(telemetry.Event{Name: telemetry.OperatorFailed, Data: map[string]interface{}{"error": err.Error()}})
		execCtx.Log.Error().Err(err).Msg("query execution failed")
		status := "failed"
		if q.Killed.Load() {
			status = "killed"
			e.Metrics.RecordKilled()
		}
		e.Metrics.RecordQueryCompleted(q.Space, status, time.Since(startedAt))
		return res, err
	}
	execCtx.Collector.Add(telemetry.Event{Name: telemetry.QueryComplete})
	execCtx.Log.Info().Msg("query execution completed")
	e.Metrics.RecordQueryCompleted(q.Space, "completed", time.Since(startedAt))
	return res, nil
}

// recordOperatorMetrics feeds each operator's final Stats snapshot into the
// per-kind Prometheus instruments once the schedule has run to completion.
func (e *Engine) recordOperatorMetrics(sched *scheduler.ExecutionSchedule) {
	for _, op := range sched.Operators {
		st := op.Stats().Snapshot()
		e.Metrics.RecordOperator(op.Name(), st.Elapsed, st.RowsProduced)
	}
}
