package admin

import (
	"sync"
	"time"

	"github.com/wbrown/graphql-engine/internal/engine"
	"github.com/wbrown/graphql-engine/internal/value"
)

// QueryStatus is the status column a show_queries listing reports.
type QueryStatus string

const (
	StatusRunning   QueryStatus = "RUNNING"
	StatusCompleted QueryStatus = "COMPLETED"
	StatusFailed    QueryStatus = "FAILED"
	StatusKilled    QueryStatus = "KILLED"
)

// QueryInfo is one show_queries row.
type QueryInfo struct {
	ExecID    string
	Space     string
	QueryText string
	Status    QueryStatus
	StartedAt time.Time
	EndedAt   time.Time
}

func (q QueryInfo) Duration() time.Duration {
	if q.Status == StatusRunning {
		return time.Since(q.StartedAt)
	}
	return q.EndedAt.Sub(q.StartedAt)
}

// maxHistory bounds show_queries' show_all history the way a real deployment
// would cap an in-memory query log rather than let it grow unbounded.
const maxHistory = 200

type registryEntry struct {
	query *engine.Query
	info  QueryInfo
}

// QueryRegistry is the GLOBAL_QUERY_MANAGER analogue: every query an Engine
// prepares registers here so kill_query, show_queries and show_stats can
// reach it from a session outside the one that started it.
type QueryRegistry struct {
	mu      sync.Mutex
	running map[string]*registryEntry
	history []QueryInfo
}

func NewQueryRegistry() *QueryRegistry {
	return &QueryRegistry{running: make(map[string]*registryEntry)}
}

// Register records a query as running. queryText is the raw query string the
// client submitted, kept only for show_queries' display column.
func (r *QueryRegistry) Register(q *engine.Query, queryText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running[q.ExecID] = &registryEntry{
		query: q,
		info: QueryInfo{
			ExecID:    q.ExecID,
			Space:     q.Space,
			QueryText: queryText,
			Status:    StatusRunning,
			StartedAt: time.Now(),
		},
	}
}

// Finish moves a query from running to history, recording its outcome. Safe
// to call even if the execution was never registered (no-op).
func (r *QueryRegistry) Finish(execID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.running[execID]
	if !ok {
		return
	}
	delete(r.running, execID)
	e.info.EndedAt = time.Now()
	switch {
	case e.query.Killed.Load():
		e.info.Status = StatusKilled
	case err != nil:
		e.info.Status = StatusFailed
	default:
		e.info.Status = StatusCompleted
	}
	r.history = append(r.history, e.info)
	if len(r.history) > maxHistory {
		r.history = r.history[len(r.history)-maxHistory:]
	}
}

// Kill implements kill_query: sets the cooperative kill flag on a running
// execution. Returns false if execID isn't currently running.
func (r *QueryRegistry) Kill(execID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.running[execID]
	if !ok {
		return false
	}
	e.query.Kill()
	return true
}

// Running implements show_queries' default (running only) view.
func (r *QueryRegistry) Running() []QueryInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]QueryInfo, 0, len(r.running))
	for _, e := range r.running {
		out = append(out, e.info)
	}
	return out
}

// All implements show_queries' show_all view: running plus recorded history.
func (r *QueryRegistry) All() []QueryInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]QueryInfo, 0, len(r.running)+len(r.history))
	out = append(out, r.history...)
	for _, e := range r.running {
		out = append(out, e.info)
	}
	return out
}

var queryInfoColumns = []string{"exec_id", "space", "query_text", "status", "started_at", "duration_ms"}

// ShowQueries renders either Running or All as a DataSet, the shape
// show_queries always returns regardless of the show_all flag.
func (r *QueryRegistry) ShowQueries(showAll bool) value.ExecutionResult {
	infos := r.Running()
	if showAll {
		infos = r.All()
	}
	rows := make([]value.Row, len(infos))
	for i, q := range infos {
		rows[i] = value.Row{
			value.String(q.ExecID),
			value.String(q.Space),
			value.String(q.QueryText),
			value.String(string(q.Status)),
			value.String(q.StartedAt.Format(time.RFC3339)),
			value.Int(q.Duration().Milliseconds()),
		}
	}
	return value.DataSetResult(value.MustDataSet(queryInfoColumns, rows))
}

// KillResult returns a DataSet-less ExecutionResult so kill_query can wire a
// QueryRegistry without going back through Admin for this one verb — it
// isn't a SchemaClient DDL operation, it mutates query state, not storage.
func (r *QueryRegistry) KillResult(execID string) value.ExecutionResult {
	if r.Kill(execID) {
		return value.Success()
	}
	return value.ErrorResult("kill_query: " + execID + " not found or not running")
}

// StatCounts is one show_stats row, tallying queries by their terminal
// status plus however many are currently running.
type StatCounts struct {
	Running   int
	Completed int
	Failed    int
	Killed    int
}

var statsColumns = []string{"metric", "value"}

// ShowStats implements show_stats' "query" stats_type: counts of queries by
// status. Storage-level stats (e.g. vertex/edge counts per space) belong to
// the caller's own storage.Client, not this registry.
func (r *QueryRegistry) ShowStats() value.ExecutionResult {
	r.mu.Lock()
	counts := StatCounts{Running: len(r.running)}
	for _, info := range r.history {
		switch info.Status {
		case StatusCompleted:
			counts.Completed++
		case StatusFailed:
			counts.Failed++
		case StatusKilled:
			counts.Killed++
		}
	}
	r.mu.Unlock()

	rows := []value.Row{
		{value.String("running"), value.Int(int64(counts.Running))},
		{value.String("completed"), value.Int(int64(counts.Completed))},
		{value.String("failed"), value.Int(int64(counts.Failed))},
		{value.String("killed"), value.Int(int64(counts.Killed))},
	}
	return value.DataSetResult(value.MustDataSet(statsColumns, rows))
}
