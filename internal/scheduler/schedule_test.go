package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/operator"
)

func newLinearChain(t *testing.T) (scan, filter, project operator.Executor) {
	t.Helper()
	scanOp := operator.NewScanVertices(1, nil, "default", nil, "", nil, nil)
	filterOp := operator.NewFilter(2, []operator.Executor{scanOp}, nil)
	projectOp := operator.NewProject(3, []operator.Executor{filterOp}, nil, nil)
	return scanOp, filterOp, projectOp
}

func TestNewScheduleCollectsDepsAndSuccessors(t *testing.T) {
	scanOp, filterOp, projectOp := newLinearChain(t)
	s := NewSchedule(projectOp, map[int]string{3: "result"})

	assert.Len(t, s.Operators, 3)
	assert.Equal(t, []int{scanOp.ID()}, s.Deps[filterOp.ID()].Predecessors)
	assert.Equal(t, []int{filterOp.ID()}, s.Deps[projectOp.ID()].Predecessors)
	assert.Equal(t, []int{filterOp.ID()}, s.Deps[scanOp.ID()].Successors)
	assert.Equal(t, []int{projectOp.ID()}, s.Deps[filterOp.ID()].Successors)
	assert.Equal(t, NodeNormal, s.TypeTag[projectOp.ID()])
}

func TestValidateAcceptsAcyclicSchedule(t *testing.T) {
	_, _, projectOp := newLinearChain(t)
	s := NewSchedule(projectOp, nil)
	assert.NoError(t, s.Validate())
}

func TestValidateRejectsUnknownDependency(t *testing.T) {
	_, _, projectOp := newLinearChain(t)
	s := NewSchedule(projectOp, nil)

	dep := s.Deps[projectOp.ID()]
	dep.Predecessors = append(dep.Predecessors, 999)
	s.Deps[projectOp.ID()] = dep

	err := s.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsCycle(t *testing.T) {
	_, _, projectOp := newLinearChain(t)
	s := NewSchedule(projectOp, nil)

	// Manufacture a cycle: make the scan operator (a leaf with no real
	// predecessors) depend on the project operator that depends on it.
	scanDep := s.Deps[1]
	scanDep.Predecessors = append(scanDep.Predecessors, projectOp.ID())
	s.Deps[1] = scanDep

	err := s.Validate()
	assert.Error(t, err)
}

func TestAnalyzeLifetimeMarksRootUnlimited(t *testing.T) {
	scanOp, filterOp, projectOp := newLinearChain(t)
	outputVars := map[int]string{
		scanOp.ID():   "n",
		filterOp.ID(): "n",
		projectOp.ID(): "n",
	}
	s := NewSchedule(projectOp, outputVars)
	s.AnalyzeLifetime()

	lt, ok := s.Lifetimes["n"]
	require.True(t, ok)
	assert.True(t, lt.IsRootOutput)
	assert.Equal(t, unlimitedUsers, lt.UserCount)
}

func TestAnalyzeLifetimeCountsConsumers(t *testing.T) {
	scanOp := operator.NewScanVertices(1, nil, "default", nil, "", nil, nil)
	left := operator.NewFilter(2, []operator.Executor{scanOp}, nil)
	right := operator.NewFilter(3, []operator.Executor{scanOp}, nil)
	join := operator.NewCrossJoin(4, []operator.Executor{left, right}, nil)

	outputVars := map[int]string{scanOp.ID(): "n"}
	s := NewSchedule(join, outputVars)
	s.AnalyzeLifetime()

	lt, ok := s.Lifetimes["n"]
	require.True(t, ok)
	assert.False(t, lt.IsRootOutput)
	assert.Equal(t, 2, lt.UserCount, "scan feeds both filter branches")
}

func TestNewScheduleDeduplicatesDiamondDependency(t *testing.T) {
	scanOp := operator.NewScanVertices(1, nil, "default", nil, "", nil, nil)
	left := operator.NewFilter(2, []operator.Executor{scanOp}, nil)
	right := operator.NewFilter(3, []operator.Executor{scanOp}, nil)
	join := operator.NewCrossJoin(4, []operator.Executor{left, right}, nil)

	s := NewSchedule(join, nil)
	assert.Len(t, s.Operators, 4, "the shared scan operator must appear once despite two incoming edges")
	assert.ElementsMatch(t, []int{2, 3}, s.Deps[1].Successors)
}
