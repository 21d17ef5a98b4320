package factory

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/config"
	"github.com/wbrown/graphql-engine/internal/operator"
	"github.com/wbrown/graphql-engine/internal/plan"
)

func TestCreateExecutorScanVertices(t *testing.T) {
	f := New(config.Default(), zerolog.Nop())
	node := &plan.Node{ID: 1, Kind: plan.KindScanVertices, Space: "default"}

	op, err := f.CreateExecutor(node)
	require.NoError(t, err)
	assert.Equal(t, "ScanVertices", op.Name())
	assert.IsType(t, &operator.ScanVertices{}, op)
}

func TestCreateExecutorBuildsChildren(t *testing.T) {
	f := New(config.Default(), zerolog.Nop())
	scan := &plan.Node{ID: 1, Kind: plan.KindScanVertices, Space: "default"}
	filter := &plan.Node{ID: 2, Kind: plan.KindFilter, FilterExpr: "true", Children: []*plan.Node{scan}}

	op, err := f.CreateExecutor(filter)
	require.NoError(t, err)
	require.Len(t, op.Inputs(), 1)
	assert.Equal(t, 1, op.Inputs()[0].ID())
}

func TestCreateExecutorRejectsLoopNode(t *testing.T) {
	f := New(config.Default(), zerolog.Nop())
	node := &plan.Node{ID: 1, Kind: plan.KindLoop}
	_, err := f.CreateExecutor(node)
	assert.Error(t, err)
}

func TestCreateExecutorUnknownKindErrors(t *testing.T) {
	f := New(config.Default(), zerolog.Nop())
	node := &plan.Node{ID: 1, Kind: plan.Kind("Bogus")}
	_, err := f.CreateExecutor(node)
	assert.Error(t, err)
}

// TestAnalyzePlanLifecycleRejectsOverLimitExpand: an Expand step-limit above
// the configured safety maximum must be rejected before any operator is
// built.
func TestAnalyzePlanLifecycleRejectsOverLimitExpand(t *testing.T) {
	cfg := config.Default()
	cfg.Safety.MaxExpandStepLimit = 1000
	f := New(cfg, zerolog.Nop())

	over := 5000
	scan := &plan.Node{ID: 1, Kind: plan.KindScanVertices, Space: "default"}
	expand := &plan.Node{ID: 2, Kind: plan.KindExpand, StepLimit: &over, Children: []*plan.Node{scan}}

	err := f.AnalyzePlanLifecycle(expand)
	assert.Error(t, err)
}

func TestAnalyzePlanLifecycleAcceptsWithinLimitExpand(t *testing.T) {
	cfg := config.Default()
	f := New(cfg, zerolog.Nop())

	within := 100
	scan := &plan.Node{ID: 1, Kind: plan.KindScanVertices, Space: "default"}
	expand := &plan.Node{ID: 2, Kind: plan.KindExpand, StepLimit: &within, Children: []*plan.Node{scan}}

	assert.NoError(t, f.AnalyzePlanLifecycle(expand))
}

func TestAnalyzePlanLifecycleRejectsLoopInTree(t *testing.T) {
	f := New(config.Default(), zerolog.Nop())
	scan := &plan.Node{ID: 1, Kind: plan.KindScanVertices, Space: "default"}
	loop := &plan.Node{ID: 2, Kind: plan.KindLoop, Children: []*plan.Node{scan}}

	err := f.AnalyzePlanLifecycle(loop)
	assert.Error(t, err)
}

func TestAnalyzePlanLifecycleRejectsExcessiveDepth(t *testing.T) {
	cfg := config.Default()
	cfg.Safety.MaxRecursionDepth = 3
	f := New(cfg, zerolog.Nop())

	var root *plan.Node
	var leaf *plan.Node
	for i := 0; i < 10; i++ {
		n := &plan.Node{ID: i, Kind: plan.KindFilter, FilterExpr: "true"}
		if leaf != nil {
			n.Children = []*plan.Node{leaf}
		}
		leaf = n
		if root == nil {
			root = n
		}
	}
	err := f.AnalyzePlanLifecycle(leaf)
	assert.Error(t, err)
}
