// Package factory implements the operator factory: it converts a validated
// plan.Node tree into an operator.Executor DAG ready for the scheduler,
// running the safety validator and recursion detector along the way and
// applying the fail-soft deferred-parse policies for expression strings,
// vertex-id lists, sort items, and edge-direction tokens.
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wbrown/graphql-engine/internal/config"
	"github.com/wbrown/graphql-engine/internal/operator"
	"github.com/wbrown/graphql-engine/internal/pattern"
	"github.com/wbrown/graphql-engine/internal/plan"
	"github.com/wbrown/graphql-engine/internal/value"
)

// Factory builds operator DAGs from plan trees. It holds nothing but
// configuration and a logger — it is safe to reuse across queries and plans.
type Factory struct {
	Config config.Config
	Log    zerolog.Logger
}

func New(cfg config.Config, log zerolog.Logger) *Factory {
	return &Factory{Config: cfg, Log: log}
}

// AnalyzePlanLifecycle implements analyze_plan_lifecycle: DFS the plan,
// validating recursion depth and the safety rules at every node.
func (f *Factory) AnalyzePlanLifecycle(root *plan.Node) error {
	return analyzePlanLifecycle(root, f.Config)
}

// CreateExecutor implements create_executor: recursively lowers a
// plan.Node tree into an operator.Executor DAG, matching on node kind and
// parsing deferred fields via the fail-soft policies. Loop nodes are
// rejected here too (belt-and-suspenders with the safety validator) since
// they must be manually assembled by the caller, never produced by the
// factory.
func (f *Factory) CreateExecutor(n *plan.Node) (operator.Executor, error) {
	if n == nil {
		return nil, fmt.Errorf("factory: nil plan node")
	}
	if n.Kind == plan.KindLoop {
		return nil, fmt.Errorf("factory: Loop node %d cannot be produced by the factory; assemble it manually with operator.NewLoop", n.ID)
	}

	inputs := make([]operator.Executor, 0, len(n.Children))
	for _, child := range n.Children {
		childOp, err := f.CreateExecutor(child)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, childOp)
	}

	switch n.Kind {
	case plan.KindScanVertices, plan.KindGetVertices:
		vids := operator.ParseVIDsCSV(n.VertexIDsCSV)
		filterExpr := parseExprFailSoftOptional(n.FilterExpr, f.Log)
		return operator.NewScanVertices(n.ID, inputs, n.Space, vids, n.TagFilter, filterExpr, n.Limit), nil

	case plan.KindScanEdges, plan.KindGetEdges:
		filterExpr := parseExprFailSoftOptional(n.FilterExpr, f.Log)
		return operator.NewScanEdges(n.ID, inputs, n.Space, n.EdgeTypeFilter, filterExpr, n.Limit), nil

	case plan.KindGetNeighbors:
		vids := operator.ParseVIDsCSV(n.VertexIDsCSV)
		dir := parseDirection(n.DirectionRaw)
		return operator.NewGetNeighbors(n.ID, inputs, n.Space, vids, dir, n.EdgeTypeFilter), nil

	case plan.KindGetProp:
		vids := operator.ParseVIDsCSV(n.VertexIDsCSV)
		return operator.NewGetProp(n.ID, inputs, n.Space, vids, nil, n.PropertyNames), nil

	case plan.KindIndexScan:
		hasVal := n.IndexValueExpr != ""
		val := value.Null()
		if hasVal {
			expr := parseExprFailSoft(n.IndexValueExpr, f.Log)
			ev := pattern.NewEvaluator()
			if v, err := ev.Eval(expr, pattern.MapBinding{}); err == nil {
				val = v
			} else {
				f.Log.Warn().Err(err).Str("expr", n.IndexValueExpr).Msg("index scan value expression failed to evaluate, falling back to full index scan")
				hasVal = false
			}
		}
		return operator.NewIndexScan(n.ID, inputs, n.Space, n.IndexName, n.IndexProp, val, hasVal, n.Forward, n.Limit), nil

	case plan.KindAllPaths:
		starts := operator.ParseVIDsCSV(n.StartVIDsCSV)
		if len(starts) == 0 {
			return nil, fmt.Errorf("AllPaths node %d: empty start vertex-id list", n.ID)
		}
		ends := operator.ParseVIDsCSV(n.EndVIDsCSV)
		hasEnd := len(ends) > 0
		var end value.Value
		if hasEnd {
			end = ends[0]
		}
		maxHops := n.MaxSteps
		if maxHops <= 0 {
			maxHops = f.Config.Traversal.MaxPathLength
		}
		return operator.NewAllPaths(n.ID, inputs, n.Space, starts[0], end, hasEnd, maxHops, n.EdgeTypeFilter, parseDirection(n.DirectionRaw)), nil

	case plan.KindFilter:
		return operator.NewFilter(n.ID, inputs, parseExprFailSoft(n.FilterExpr, f.Log)), nil

	case plan.KindProject:
		projections, exprs := parseProjections(n.Projections, f.Log)
		return operator.NewProject(n.ID, inputs, projections, exprs), nil

	case plan.KindLimit:
		count := int64(-1)
		if n.Limit != nil {
			count = *n.Limit
		}
		return operator.NewLimit(n.ID, inputs, n.Skip, count), nil

	case plan.KindSort:
		return operator.NewSort(n.ID, inputs, parseSortItems(n.SortItemsCSV, f.Log)), nil

	case plan.KindTopN:
		return operator.NewTopN(n.ID, inputs, n.TopK, parseSortItems(n.SortItemsCSV, f.Log)), nil

	case plan.KindSample:
		return operator.NewSample(n.ID, inputs, n.SampleK, nil), nil

	case plan.KindAggregate:
		groupExprs := make([]*pattern.Expr, 0, len(n.GroupBy))
		for _, g := range n.GroupBy {
			groupExprs = append(groupExprs, parseExprFailSoft(g, f.Log))
		}
		return operator.NewAggregate(n.ID, inputs, n.GroupBy, groupExprs, parseAggFuncs(n.AggFuncs, f.Log)), nil

	case plan.KindDedup:
		return operator.NewDedup(n.ID, inputs, n.DedupByKey), nil

	case plan.KindUnwind:
		return operator.NewUnwind(n.ID, inputs, parseExprFailSoft(n.UnwindExpr, f.Log), n.UnwindAlias), nil

	case plan.KindAssign:
		vars, exprs := parseAssignments(n.Assignments, f.Log)
		return operator.NewAssign(n.ID, inputs, vars, exprs), nil

	case plan.KindUnion:
		return operator.NewUnion(n.ID, inputs), nil
	case plan.KindUnionAll:
		return operator.NewUnionAll(n.ID, inputs), nil
	case plan.KindIntersect:
		return operator.NewIntersect(n.ID, inputs), nil
	case plan.KindMinus:
		return operator.NewMinus(n.ID, inputs), nil

	case plan.KindInnerJoin:
		return operator.NewInnerJoin(n.ID, inputs, n.LeftKeys, n.RightKeys, n.ColNames), nil
	case plan.KindLeftJoin:
		return operator.NewLeftJoin(n.ID, inputs, n.LeftKeys, n.RightKeys, n.ColNames), nil
	case plan.KindCrossJoin:
		return operator.NewCrossJoin(n.ID, inputs, n.ColNames), nil

	case plan.KindExpand:
		limit := f.Config.Safety.MaxExpandStepLimit
		if n.StepLimit != nil {
			limit = *n.StepLimit
		}
		return operator.NewExpand(n.ID, inputs, n.Space, parseDirection(n.DirectionRaw), n.EdgeTypeFilter, nil, n.OutVar, limit), nil

	case plan.KindExpandAll:
		limit := f.Config.Safety.MaxExpandStepLimit
		if n.StepLimit != nil {
			limit = *n.StepLimit
		}
		return operator.NewExpandAll(n.ID, inputs, n.Space, parseDirection(n.DirectionRaw), n.EdgeTypeFilter, nil, n.OutVar, limit), nil

	case plan.KindTraverse:
		filterExpr := parseExprFailSoftOptional(n.FilterExpr, f.Log)
		return operator.NewTraverse(n.ID, inputs, n.Space, parseDirection(n.DirectionRaw), n.EdgeTypeFilter, n.MaxSteps, n.OutVar, filterExpr), nil

	case plan.KindShortestPath:
		srcs := operator.ParseVIDsCSV(n.StartVIDsCSV)
		dsts := operator.ParseVIDsCSV(n.EndVIDsCSV)
		maxSteps := n.MaxSteps
		if maxSteps <= 0 {
			maxSteps = f.Config.Traversal.MaxPathLength
		}
		return operator.NewShortestPath(n.ID, inputs, n.Space, srcs, dsts, parseDirection(n.DirectionRaw), n.EdgeTypeFilter, maxSteps), nil

	case plan.KindMultiShortestPath:
		lefts := operator.ParseVIDsCSV(n.LeftVIDsCSV)
		rights := operator.ParseVIDsCSV(n.RightVIDsCSV)
		maxSteps := n.MaxSteps
		if maxSteps <= 0 {
			maxSteps = f.Config.Traversal.MaxPathLength
		}
		return operator.NewMultiShortestPath(n.ID, inputs, n.Space, lefts, rights, parseDirection(n.DirectionRaw), n.EdgeTypeFilter, maxSteps, n.SingleShortest), nil

	case plan.KindBFSShortest:
		srcs := operator.ParseVIDsCSV(n.StartVIDsCSV)
		dsts := operator.ParseVIDsCSV(n.EndVIDsCSV)
		if len(srcs) == 0 || len(dsts) == 0 {
			return nil, fmt.Errorf("BFSShortest node %d: requires one start and one end vertex id", n.ID)
		}
		maxSteps := n.MaxSteps
		if maxSteps <= 0 {
			maxSteps = f.Config.Traversal.MaxPathLength
		}
		return operator.NewBFSShortest(n.ID, inputs, n.Space, srcs[0], dsts[0], parseDirection(n.DirectionRaw), n.EdgeTypeFilter, maxSteps), nil

	case plan.KindAppendVertices:
		return operator.NewAppendVertices(n.ID, inputs, n.Space, n.DedupVertices, n.TrackSegments), nil

	case plan.KindRollUpApply:
		return operator.NewRollUpApply(n.ID, inputs, n.CompareCols, n.CollectCol), nil

	case plan.KindPatternApply:
		return operator.NewPatternApply(n.ID, inputs, n.KeyCols, n.Anti), nil

	case plan.KindPassThrough:
		return operator.NewPassThrough(n.ID, inputs), nil

	case plan.KindDataCollect:
		return operator.NewDataCollect(n.ID, inputs), nil

	case plan.KindArgument:
		return operator.NewArgument(n.ID, n.ArgumentVar), nil

	case plan.KindSelect:
		cond := parseExprFailSoft(n.Condition, f.Log)
		thenOp, err := f.CreateExecutor(n.ThenBranch)
		if err != nil {
			return nil, err
		}
		var elseOp operator.Executor
		if n.ElseBranch != nil {
			elseOp, err = f.CreateExecutor(n.ElseBranch)
			if err != nil {
				return nil, err
			}
		}
		return operator.NewSelect(n.ID, inputs, cond, thenOp, elseOp), nil

	default:
		return nil, fmt.Errorf("factory: unknown plan node kind %q at node %d", n.Kind, n.ID)
	}
}
