package scheduler

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/wbrown/graphql-engine/internal/operator"
	"github.com/wbrown/graphql-engine/internal/value"
)

// ExecutionState is the per-query scheduling state: the currently-executing
// set, the map of completed results, and the first failure slot — all
// guarded by a single mutex.
type ExecutionState struct {
	mu         sync.Mutex
	executing  map[int]bool
	results    map[int]value.ExecutionResult
	firstError error
}

func newExecutionState() *ExecutionState {
	return &ExecutionState{
		executing: make(map[int]bool),
		results:   make(map[int]value.ExecutionResult),
	}
}

// Result implements operator.ResultSource, letting operators read a
// predecessor's completed result by id.
func (s *ExecutionState) Result(id int) (value.ExecutionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	return r, ok
}

func (s *ExecutionState) store(id int, r value.ExecutionResult) {
	s.mu.Lock()
	s.results[id] = r
	delete(s.executing, id)
	s.mu.Unlock()
}

func (s *ExecutionState) recordFailure(err error) {
	s.mu.Lock()
	if s.firstError == nil {
		s.firstError = err
	}
	s.mu.Unlock()
}

func (s *ExecutionState) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstError
}

// Scheduler runs an ExecutionSchedule's batch-dispatch loop over a worker
// pool of goroutines, following an order-preserving parallel-execute
// pattern generalized here to a DAG-dependency frontier rather than a
// flat input slice.
type Scheduler struct {
	WorkerCount int
}

func NewScheduler(workerCount int) *Scheduler {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &Scheduler{WorkerCount: workerCount}
}

// Run is the scheduling loop: dispatch every operator whose dependencies
// are satisfied in the current batch, await them, advance the
// frontier to their now-ready successors, and stop at the first failure or
// a query kill. The final result is execution_results[root_id], or Success
// if the root never produced one (an empty plan).
func (sch *Scheduler) Run(schedule *ExecutionSchedule, execCtx *operator.ExecContext) (value.ExecutionResult, error) {
	state := newExecutionState()
	execCtx.Results = state

	remaining := make(map[int]int, len(schedule.Deps))
	for id, dep := range schedule.Deps {
		remaining[id] = len(dep.Predecessors)
	}

	var batch []int
	for id, deg := range remaining {
		if deg == 0 {
			batch = append(batch, id)
		}
	}

	for len(batch) > 0 {
		if execCtx.IsKilled() {
			return value.Empty(), fmt.Errorf("scheduler: query killed before dispatching %d operators", len(batch))
		}
		if err := state.failure(); err != nil {
			return value.Empty(), err
		}

		next := sch.dispatchBatch(schedule, execCtx, state, batch, remaining)

		if err := state.failure(); err != nil {
			return value.Empty(), err
		}
		batch = next
	}

	if err := state.failure(); err != nil {
		return value.Empty(), err
	}
	if res, ok := state.Result(schedule.RootID); ok {
		return res, nil
	}
	return value.Success(), nil
}

// dispatchBatch runs every operator id in batch concurrently over the
// worker pool, then returns the successors that became fully satisfied as a
// result — the next batch's frontier.
func (sch *Scheduler) dispatchBatch(schedule *ExecutionSchedule, execCtx *operator.ExecContext, state *ExecutionState, batch []int, remaining map[int]int) []int {
	jobs := make(chan int, len(batch))
	var wg sync.WaitGroup
	workers := sch.WorkerCount
	if workers > len(batch) {
		workers = len(batch)
	}
	if workers < 1 {
		workers = 1
	}

	var remMu sync.Mutex
	var nextMu sync.Mutex
	var next []int

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				state.mu.Lock()
				state.executing[id] = true
				state.mu.Unlock()

				op := schedule.Operators[id]
				if !op.IsOpen() {
					if err := op.Open(); err != nil {
						state.recordFailure(fmt.Errorf("operator %d (%s): open: %w", id, op.Name(), err))
						continue
					}
				}
				res, err := op.Execute(execCtx)
				if err != nil {
					state.recordFailure(fmt.Errorf("operator %d (%s): %w", id, op.Name(), err))
					continue
				}
				state.store(id, res)

				for _, succ := range schedule.Deps[id].Successors {
					remMu.Lock()
					remaining[succ]--
					ready := remaining[succ] == 0
					remMu.Unlock()
					if ready {
						nextMu.Lock()
						next = append(next, succ)
						nextMu.Unlock()
					}
				}
			}
		}()
	}
	for _, id := range batch {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	return next
}
