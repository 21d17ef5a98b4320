package factory

import (
	"fmt"

	"github.com/wbrown/graphql-engine/internal/config"
	"github.com/wbrown/graphql-engine/internal/plan"
)

// recursionDetector maintains a bounded depth counter: exceeding a
// configured threshold (default 100, config.Safety.MaxRecursionDepth)
// fails the plan.
type recursionDetector struct {
	maxDepth int
}

func newRecursionDetector(cfg config.Config) *recursionDetector {
	max := cfg.Safety.MaxRecursionDepth
	if max <= 0 {
		max = config.Default().Safety.MaxRecursionDepth
	}
	return &recursionDetector{maxDepth: max}
}

func (d *recursionDetector) check(depth int) error {
	if depth > d.maxDepth {
		return fmt.Errorf("plan recursion depth %d exceeds configured maximum %d", depth, d.maxDepth)
	}
	return nil
}

// safetyValidator enforces: Expand/ExpandAll step-limit ≤ 1000 (configurable),
// and Loop nodes must never appear inside a plan tree the factory walks
// (they are manually assembled by the caller and never round-trip through
// analyzePlanLifecycle/createExecutor).
type safetyValidator struct {
	maxStepLimit int
}

func newSafetyValidator(cfg config.Config) *safetyValidator {
	max := cfg.Safety.MaxExpandStepLimit
	if max <= 0 {
		max = config.Default().Safety.MaxExpandStepLimit
	}
	return &safetyValidator{maxStepLimit: max}
}

func (v *safetyValidator) check(n *plan.Node) error {
	switch n.Kind {
	case plan.KindLoop:
		return fmt.Errorf("Loop node %d cannot appear in a factory-built plan tree; it must be manually assembled by the caller", n.ID)
	case plan.KindExpand, plan.KindExpandAll:
		limit := v.maxStepLimit
		if n.StepLimit != nil {
			limit = *n.StepLimit
		}
		if limit <= 0 || limit > v.maxStepLimit {
			return fmt.Errorf("%s node %d: step limit %d exceeds safety maximum %d (unlimited expansion is rejected)", n.Kind, n.ID, limit, v.maxStepLimit)
		}
	}
	return nil
}

// analyzePlanLifecycle implements analyze_plan_lifecycle: DFS the plan,
// running the recursion detector and safety validator at every node,
// recursing into children. Returns an error on cycle (a node already on the
// current DFS path), excessive depth, or safety violation.
func analyzePlanLifecycle(root *plan.Node, cfg config.Config) error {
	rd := newRecursionDetector(cfg)
	sv := newSafetyValidator(cfg)
	visited := make(map[int]bool)
	return walkLifecycle(root, 0, rd, sv, visited)
}

func walkLifecycle(n *plan.Node, depth int, rd *recursionDetector, sv *safetyValidator, visited map[int]bool) error {
	if n == nil {
		return nil
	}
	if err := rd.check(depth); err != nil {
		return err
	}
	if visited[n.ID] {
		return fmt.Errorf("plan DAG contains a cycle at node %d", n.ID)
	}
	visited[n.ID] = true
	if err := sv.check(n); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := walkLifecycle(child, depth+1, rd, sv, visited); err != nil {
			return err
		}
	}
	delete(visited, n.ID)
	return nil
}
