// Package operator implements the uniform Executor contract and the full
// family of operator kinds: data-access, result-processing, set
// operations, joins, graph traversal, transformations, and control flow.
package operator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/wbrown/graphql-engine/internal/config"
	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/telemetry"
	"github.com/wbrown/graphql-engine/internal/value"
)

// Stats is an operator's observability surface: total time, rows consumed,
// rows produced.
type Stats struct {
	mu           sync.Mutex
	Elapsed      time.Duration
	RowsConsumed int64
	RowsProduced int64
}

func (s *Stats) RecordElapsed(d time.Duration) {
	s.mu.Lock()
	s.Elapsed += d
	s.mu.Unlock()
}

func (s *Stats) AddConsumed(n int64) {
	s.mu.Lock()
	s.RowsConsumed += n
	s.mu.Unlock()
}

func (s *Stats) AddProduced(n int64) {
	s.mu.Lock()
	s.RowsProduced += n
	s.mu.Unlock()
}

func (s *Stats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Elapsed: s.Elapsed, RowsConsumed: s.RowsConsumed, RowsProduced: s.RowsProduced}
}

// ResultSource lets an operator read a predecessor's completed result by
// operator id — the scheduler's execution-results map, exposed read-only
// so operators never touch scheduler internals directly.
type ResultSource interface {
	Result(id int) (value.ExecutionResult, bool)
}

// ExecContext is the per-query scratch every operator's Execute receives:
// the storage handle, named-variable bindings, cancellation, and
// observability.
type ExecContext struct {
	Storage   storage.Client
	Space     string
	Config    config.Config
	Results   ResultSource
	Collector *telemetry.Collector
	Log       zerolog.Logger
	Killed    *atomic.Bool

	mu   sync.Mutex
	vars map[string]value.Value
}

func NewExecContext(st storage.Client, space string, cfg config.Config, results ResultSource, collector *telemetry.Collector, log zerolog.Logger, killed *atomic.Bool) *ExecContext {
	return &ExecContext{
		Storage:   st,
		Space:     space,
		Config:    cfg,
		Results:   results,
		Collector: collector,
		Log:       log,
		Killed:    killed,
		vars:      make(map[string]value.Value),
	}
}

func (c *ExecContext) SetVar(name string, v value.Value) {
	c.mu.Lock()
	c.vars[name] = v
	c.mu.Unlock()
}

func (c *ExecContext) GetVar(name string) (value.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vars[name]
	return v, ok
}

// IsKilled reports the query-context kill flag; checked by the scheduler
// before each batch and honored cooperatively by long scans.
func (c *ExecContext) IsKilled() bool {
	return c.Killed != nil && c.Killed.Load()
}

// SnapshotVars copies the current named-variable bindings, letting a Loop
// condition be evaluated without holding ExecContext's internal lock.
func (c *ExecContext) SnapshotVars() map[string]value.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]value.Value, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}

// Executor is the uniform lifecycle contract: open() is idempotent;
// execute() may be called at most once per query; close() releases
// resources.
type Executor interface {
	Open() error
	Execute(ctx *ExecContext) (value.ExecutionResult, error)
	Close() error
	IsOpen() bool
	ID() int
	Name() string
	Description() string
	Stats() *Stats
	Inputs() []Executor
}

// Base implements the introspection and lifecycle boilerplate every operator
// kind embeds, factoring the common open/close/id/name lifecycle into a
// base struct shared by every operator kind.
type Base struct {
	id          int
	name        string
	description string
	inputs      []Executor
	isOpen      bool
	executed    bool
	stats       Stats
}

func NewBase(id int, name, description string, inputs []Executor) Base {
	return Base{id: id, name: name, description: description, inputs: inputs}
}

func (b *Base) Open() error   { b.isOpen = true; return nil }
func (b *Base) Close() error  { b.isOpen = false; return nil }
func (b *Base) IsOpen() bool  { return b.isOpen }
func (b *Base) ID() int       { return b.id }
func (b *Base) Name() string  { return b.name }
func (b *Base) Description() string { return b.description }
func (b *Base) Stats() *Stats { return &b.stats }
func (b *Base) Inputs() []Executor { return b.inputs }

// MarkExecuted panics if called a second time, enforcing "execute() may be
// called at most once per query".
func (b *Base) MarkExecuted() {
	if b.executed {
		panic("operator executed more than once: " + b.name)
	}
	b.executed = true
}

// SinglePredecessorResult reads the sole input's result, the common case for
// result-processing/transform operators.
func SinglePredecessorResult(ctx *ExecContext, inputs []Executor) (value.ExecutionResult, bool) {
	if len(inputs) == 0 {
		return value.Empty(), false
	}
	return ctx.Results.Result(inputs[0].ID())
}
