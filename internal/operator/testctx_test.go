package operator

import (
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wbrown/graphql-engine/internal/config"
	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/telemetry"
	"github.com/wbrown/graphql-engine/internal/value"
)

// fakeResults is a ResultSource backed by a plain map, standing in for the
// scheduler's ExecutionState in unit tests that exercise a single operator
// in isolation.
type fakeResults struct {
	byID map[int]value.ExecutionResult
}

func newFakeResults() *fakeResults {
	return &fakeResults{byID: make(map[int]value.ExecutionResult)}
}

func (f *fakeResults) set(id int, r value.ExecutionResult) { f.byID[id] = r }

func (f *fakeResults) Result(id int) (value.ExecutionResult, bool) {
	r, ok := f.byID[id]
	return r, ok
}

// stubExecutor is a zero-behavior Executor used only to occupy an Inputs()
// slot so SinglePredecessorResult/twoInputRows can resolve its ID.
type stubExecutor struct {
	Base
}

func newStub(id int) *stubExecutor {
	return &stubExecutor{Base: NewBase(id, "Stub", "test stub", nil)}
}

func (s *stubExecutor) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	return value.Empty(), nil
}

func newTestExecContext(t *testing.T, st storage.Client, space string, results ResultSource) *ExecContext {
	t.Helper()
	cfg := config.Default()
	collector := telemetry.NewCollector("test-exec", nil)
	killed := &atomic.Bool{}
	if results == nil {
		results = newFakeResults()
	}
	return NewExecContext(st, space, cfg, results, collector, zerolog.Nop(), killed)
}
