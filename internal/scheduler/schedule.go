// Package scheduler implements the ExecutionSchedule/ExecutionState pair:
// given a fully constructed operator DAG, it validates the graph, analyzes
// variable lifetimes, then dispatches operators in dependency-respecting
// batches over a worker pool, honoring the query kill flag between
// batches.
package scheduler

import (
	"fmt"

	"github.com/wbrown/graphql-engine/internal/operator"
)

// NodeType tags an operator for loop-layer bookkeeping — Normal for the
// common case, Select/Loop for the two control-flow kinds that change how
// their subtree participates in scheduling (a Loop's body is driven
// internally by operator.Loop.Execute rather than by batch dispatch).
type NodeType int

const (
	NodeNormal NodeType = iota
	NodeSelect
	NodeLoop
)

// ExecutorDep is the (executor-id, predecessor-ids, successor-ids) triple,
// built once from the operator DAG's Inputs() during scheduling setup.
type ExecutorDep struct {
	ID           int
	Predecessors []int
	Successors   []int
}

// VariableLifetime is (name, user-count, is-root-output): user-count
// counts downstream consumers, ∞ (represented as -1) when the variable is
// the final query output.
type VariableLifetime struct {
	Name         string
	UserCount    int
	IsRootOutput bool
}

const unlimitedUsers = -1

// ExecutionSchedule owns the operator map, dependency map, root id,
// per-operator type tag, variable lifetimes, per-operator loop-layer
// count, and output-variable map.
type ExecutionSchedule struct {
	Operators  map[int]operator.Executor
	Deps       map[int]ExecutorDep
	RootID     int
	TypeTag    map[int]NodeType
	Lifetimes  map[string]VariableLifetime
	LoopLayer  map[int]int
	OutputVars map[int]string
}

// NewSchedule builds an ExecutionSchedule from a fully constructed operator
// DAG rooted at root. outputVars maps operator id to the name of the
// variable its result is bound to, where applicable (an empty map is valid
// — not every operator binds a named variable).
func NewSchedule(root operator.Executor, outputVars map[int]string) *ExecutionSchedule {
	s := &ExecutionSchedule{
		Operators:  make(map[int]operator.Executor),
		Deps:       make(map[int]ExecutorDep),
		RootID:     root.ID(),
		TypeTag:    make(map[int]NodeType),
		Lifetimes:  make(map[string]VariableLifetime),
		LoopLayer:  make(map[int]int),
		OutputVars: outputVars,
	}
	if s.OutputVars == nil {
		s.OutputVars = make(map[int]string)
	}
	s.collect(root, 0)
	s.linkSuccessors()
	return s
}

func (s *ExecutionSchedule) collect(op operator.Executor, loopLayer int) {
	if _, seen := s.Operators[op.ID()]; seen {
		return
	}
	s.Operators[op.ID()] = op
	s.LoopLayer[op.ID()] = loopLayer

	tag := NodeNormal
	switch v := op.(type) {
	case *operator.Select:
		tag = NodeSelect
		if v.ThenBranch != nil {
			s.collect(v.ThenBranch, loopLayer)
		}
		if v.ElseBranch != nil {
			s.collect(v.ElseBranch, loopLayer)
		}
	case *operator.Loop:
		// Loop nodes cannot be produced by the factory; the body is driven
		// internally by Loop.Execute via its BodyFactory, one fresh
		// subtree per iteration, each logically one layer deeper than the
		// loop itself. Those subtrees are never registered here — they are
		// built, dispatched, and discarded inside Loop.Execute.
		tag = NodeLoop
	}
	s.TypeTag[op.ID()] = tag

	preds := make([]int, 0, len(op.Inputs()))
	for _, in := range op.Inputs() {
		preds = append(preds, in.ID())
	}
	s.Deps[op.ID()] = ExecutorDep{ID: op.ID(), Predecessors: preds}

	for _, in := range op.Inputs() {
		s.collect(in, loopLayer)
	}
}

func (s *ExecutionSchedule) linkSuccessors() {
	for id, dep := range s.Deps {
		for _, pred := range dep.Predecessors {
			pd := s.Deps[pred]
			pd.Successors = append(pd.Successors, id)
			s.Deps[pred] = pd
		}
	}
}

// Validate performs DFS cycle detection plus a check that every
// dependency id resolves to a known operator.
func (s *ExecutionSchedule) Validate() error {
	for id, dep := range s.Deps {
		for _, pred := range dep.Predecessors {
			if _, ok := s.Operators[pred]; !ok {
				return fmt.Errorf("scheduler: operator %d depends on unknown operator %d", id, pred)
			}
		}
	}
	visiting := make(map[int]bool)
	visited := make(map[int]bool)
	var dfs func(id int) error
	dfs = func(id int) error {
		if visited[id] {
			return nil
		}
		if visiting[id] {
			return fmt.Errorf("scheduler: operator DAG contains a cycle at operator %d", id)
		}
		visiting[id] = true
		for _, pred := range s.Deps[id].Predecessors {
			if err := dfs(pred); err != nil {
				return err
			}
		}
		visiting[id] = false
		visited[id] = true
		return nil
	}
	for id := range s.Operators {
		if err := dfs(id); err != nil {
			return err
		}
	}
	return nil
}

// AnalyzeLifetime counts consumers for each output variable, marking the
// root operator's output variable unlimited. Loop layers are not adjusted
// here: collect() records each registered operator at its parent's layer,
// and loop bodies are never registered (see collect()), so no layer is
// ever incremented.
func (s *ExecutionSchedule) AnalyzeLifetime() {
	consumers := make(map[string]int)
	for id, dep := range s.Deps {
		name, ok := s.OutputVars[id]
		if !ok || name == "" {
			continue
		}
		consumers[name] += len(dep.Successors)
	}
	rootName := s.OutputVars[s.RootID]
	for _, name := range s.OutputVars {
		if name == "" {
			continue
		}
		lt := VariableLifetime{Name: name, UserCount: consumers[name]}
		if name == rootName {
			lt.IsRootOutput = true
			lt.UserCount = unlimitedUsers
		}
		s.Lifetimes[name] = lt
	}
}
