package operator

import (
	"fmt"

	"github.com/wbrown/graphql-engine/internal/pattern"
	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

// pathsFromPredecessor reads the sole predecessor's result as paths,
// converting Vertices into zero-length paths so Expand can chain off a
// ScanVertices/GetVertices start.
func pathsFromPredecessor(ctx *ExecContext, inputs []Executor) []*value.Path {
	in, ok := SinglePredecessorResult(ctx, inputs)
	if !ok {
		return nil
	}
	switch in.Kind {
	case value.ResultPaths:
		return in.Paths
	case value.ResultVertices:
		paths := make([]*value.Path, len(in.Vertices))
		for i, v := range in.Vertices {
			paths[i] = &value.Path{Src: v}
		}
		return paths
	default:
		return nil
	}
}

// Expand expands current paths outward by up to step_limit hops, emitting
// every intermediate-hop path (not only the final hop) as a new path.
type Expand struct {
	Base
	Space     string
	Direction storage.Direction
	EdgeTypes []string
	EdgeProps map[string]value.Value
	RelVar    string
	StepLimit int
}

func NewExpand(id int, inputs []Executor, space string, dir storage.Direction, edgeTypes []string, edgeProps map[string]value.Value, relVar string, stepLimit int) *Expand {
	return &Expand{
		Base: NewBase(id, "Expand", "one-hop path expansion", inputs),
		Space: space, Direction: dir, EdgeTypes: edgeTypes, EdgeProps: edgeProps, RelVar: relVar, StepLimit: stepLimit,
	}
}

func (o *Expand) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	extended, err := expandOneHop(ctx, o.Inputs(), o.Space, o.Direction, o.EdgeTypes, o.EdgeProps, o.RelVar, o.StepLimit)
	if err != nil {
		return value.Empty(), fmt.Errorf("Expand: %w", err)
	}
	o.Stats().AddProduced(int64(len(extended)))
	return value.Paths(extended), nil
}

// expandOneHop expands current paths up to stepLimit hops (default 1 when
// unset), accumulating every level's extended paths rather than only the
// last one: a two-hop step_limit must surface both the one-hop and the
// two-hop walks, since downstream operators (Filter, Project, AppendVertices)
// operate over whatever path lengths Expand hands them.
func expandOneHop(ctx *ExecContext, inputs []Executor, space string, dir storage.Direction, edgeTypes []string, edgeProps map[string]value.Value, relVar string, stepLimit int) ([]*value.Path, error) {
	current := pathsFromPredecessor(ctx, inputs)
	engine := pattern.NewEngine(ctx.Storage, space)
	hops := stepLimit
	if hops <= 0 {
		hops = 1
	}
	if stepLimit > 0 {
		engine.MaxPathLength = stepLimit
	}
	rel := pattern.RelPattern{Direction: dir, EdgeTypes: edgeTypes, EdgeProps: edgeProps, Var: relVar}
	bindings := make([]map[string]value.Value, len(current))

	var accumulated []*value.Path
	for h := 0; h < hops; h++ {
		extended, newBindings, err := engine.ExpandWithRelationship(current, rel, bindings)
		if err != nil {
			return nil, err
		}
		if len(extended) == 0 {
			break
		}
		accumulated = append(accumulated, extended...)
		current, bindings = extended, newBindings
	}
	return accumulated, nil
}

// ExpandAll is the same multi-hop accumulation as Expand; they differ in
// emission granularity (ExpandAll emits every one-hop neighbor rather than
// Expand's new-path-per-expansion), which in this row-oriented model
// produces the same extended-path set.
type ExpandAll struct {
	Base
	Space     string
	Direction storage.Direction
	EdgeTypes []string
	EdgeProps map[string]value.Value
	RelVar    string
	StepLimit int
}

func NewExpandAll(id int, inputs []Executor, space string, dir storage.Direction, edgeTypes []string, edgeProps map[string]value.Value, relVar string, stepLimit int) *ExpandAll {
	return &ExpandAll{
		Base: NewBase(id, "ExpandAll", "emits every one-hop neighbor as a path", inputs),
		Space: space, Direction: dir, EdgeTypes: edgeTypes, EdgeProps: edgeProps, RelVar: relVar, StepLimit: stepLimit,
	}
}

func (o *ExpandAll) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	extended, err := expandOneHop(ctx, o.Inputs(), o.Space, o.Direction, o.EdgeTypes, o.EdgeProps, o.RelVar, o.StepLimit)
	if err != nil {
		return value.Empty(), fmt.Errorf("ExpandAll: %w", err)
	}
	o.Stats().AddProduced(int64(len(extended)))
	return value.Paths(extended), nil
}

// Traverse is multi-hop expansion combining pattern and filter — repeated
// Expand-then-Filter over a configured hop count.
type Traverse struct {
	Base
	Space     string
	Direction storage.Direction
	EdgeTypes []string
	Hops      int
	RelVar    string
	FilterExpr *pattern.Expr
}

func NewTraverse(id int, inputs []Executor, space string, dir storage.Direction, edgeTypes []string, hops int, relVar string, filterExpr *pattern.Expr) *Traverse {
	return &Traverse{
		Base: NewBase(id, "Traverse", "multi-hop expansion with filter", inputs),
		Space: space, Direction: dir, EdgeTypes: edgeTypes, Hops: hops, RelVar: relVar, FilterExpr: filterExpr,
	}
}

func (o *Traverse) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	paths := pathsFromPredecessor(ctx, o.Inputs())
	engine := pattern.NewEngine(ctx.Storage, o.Space)
	rel := pattern.RelPattern{Direction: o.Direction, EdgeTypes: o.EdgeTypes, Var: o.RelVar}
	bindings := make([]map[string]value.Value, len(paths))

	for h := 0; h < o.Hops; h++ {
		if ctx.IsKilled() {
			return value.Empty(), fmt.Errorf("query killed")
		}
		extended, newBindings, err := engine.ExpandWithRelationship(paths, rel, bindings)
		if err != nil {
			return value.Empty(), fmt.Errorf("Traverse: %w", err)
		}
		paths, bindings = extended, newBindings
	}

	if o.FilterExpr != nil {
		ev := pattern.NewEvaluator()
		filtered := paths[:0:0]
		var filteredBindings []map[string]value.Value
		for i, p := range paths {
			var bind map[string]value.Value
			if i < len(bindings) {
				bind = bindings[i]
			} else {
				bind = map[string]value.Value{}
			}
			ok, err := evalRowBool(ev, o.FilterExpr, pattern.MapBinding(bind))
			if err != nil {
				continue
			}
			if ok {
				filtered = append(filtered, p)
				filteredBindings = append(filteredBindings, bind)
			}
		}
		paths, bindings = filtered, filteredBindings
	}

	o.Stats().AddProduced(int64(len(paths)))
	return value.Paths(paths), nil
}

// ShortestPath finds the BFS shortest path for each (src, dst) vertex-id
// pair, given a direction, optional edge-type filter, and max step count.
type ShortestPath struct {
	Base
	Space     string
	SrcVIDs   []value.Value
	DstVIDs   []value.Value
	Direction storage.Direction
	EdgeTypes []string
	MaxSteps  int
}

func NewShortestPath(id int, inputs []Executor, space string, srcs, dsts []value.Value, dir storage.Direction, edgeTypes []string, maxSteps int) *ShortestPath {
	return &ShortestPath{
		Base: NewBase(id, "ShortestPath", "BFS shortest path per src/dst pair", inputs),
		Space: space, SrcVIDs: srcs, DstVIDs: dsts, Direction: dir, EdgeTypes: edgeTypes, MaxSteps: maxSteps,
	}
}

func (o *ShortestPath) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	engine := pattern.NewEngine(ctx.Storage, o.Space)
	var paths []*value.Path
	for _, src := range o.SrcVIDs {
		for _, dst := range o.DstVIDs {
			p, err := engine.BFSShortest(src, dst, o.Direction, o.EdgeTypes, o.MaxSteps)
			if err != nil {
				return value.Empty(), fmt.Errorf("ShortestPath: %w", err)
			}
			if p != nil {
				paths = append(paths, p)
			}
		}
	}
	o.Stats().AddProduced(int64(len(paths)))
	return value.Paths(paths), nil
}

// MultiShortestPath finds shortest paths across the Cartesian product of
// left and right vertex ids, one BFS path per pair: single-shortest stops
// at the first pair that yields a path; otherwise every pair's path whose
// length equals the minimum found is kept. Several equally short paths
// between the same pair are not enumerated; only the one BFS returns is.
type MultiShortestPath struct {
	Base
	Space          string
	LeftVIDs       []value.Value
	RightVIDs      []value.Value
	Direction      storage.Direction
	EdgeTypes      []string
	Steps          int
	SingleShortest bool
}

func NewMultiShortestPath(id int, inputs []Executor, space string, leftVIDs, rightVIDs []value.Value, dir storage.Direction, edgeTypes []string, steps int, single bool) *MultiShortestPath {
	return &MultiShortestPath{
		Base: NewBase(id, "MultiShortestPath", "shortest paths across vertex-id pairs", inputs),
		Space: space, LeftVIDs: leftVIDs, RightVIDs: rightVIDs, Direction: dir, EdgeTypes: edgeTypes, Steps: steps, SingleShortest: single,
	}
}

func (o *MultiShortestPath) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	engine := pattern.NewEngine(ctx.Storage, o.Space)
	var shortest []*value.Path
	bestLen := -1
	for _, src := range o.LeftVIDs {
		for _, dst := range o.RightVIDs {
			if o.SingleShortest && bestLen >= 0 {
				// single-shortest mode: once one length is found across any
				// pair, stop searching further pairs.
				break
			}
			p, err := engine.BFSShortest(src, dst, o.Direction, o.EdgeTypes, o.Steps)
			if err != nil {
				return value.Empty(), fmt.Errorf("MultiShortestPath: %w", err)
			}
			if p == nil {
				continue
			}
			if bestLen < 0 || p.Length() < bestLen {
				bestLen = p.Length()
				shortest = []*value.Path{p}
			} else if p.Length() == bestLen {
				shortest = append(shortest, p)
			}
		}
	}
	o.Stats().AddProduced(int64(len(shortest)))
	return value.Paths(shortest), nil
}

// BFSShortest is symmetric bidirectional BFS for a single-pair shortest
// path.
type BFSShortest struct {
	Base
	Space     string
	Src       value.Value
	Dst       value.Value
	Direction storage.Direction
	EdgeTypes []string
	MaxSteps  int
}

func NewBFSShortest(id int, inputs []Executor, space string, src, dst value.Value, dir storage.Direction, edgeTypes []string, maxSteps int) *BFSShortest {
	return &BFSShortest{
		Base: NewBase(id, "BFSShortest", "bidirectional BFS single-pair shortest path", inputs),
		Space: space, Src: src, Dst: dst, Direction: dir, EdgeTypes: edgeTypes, MaxSteps: maxSteps,
	}
}

func (o *BFSShortest) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	engine := pattern.NewEngine(ctx.Storage, o.Space)
	p, err := engine.BFSShortest(o.Src, o.Dst, o.Direction, o.EdgeTypes, o.MaxSteps)
	if err != nil {
		return value.Empty(), fmt.Errorf("BFSShortest: %w", err)
	}
	var paths []*value.Path
	if p != nil {
		paths = []*value.Path{p}
	}
	o.Stats().AddProduced(int64(len(paths)))
	return value.Paths(paths), nil
}

// AppendVertices materializes target vertices at the ends of paths; may
// dedup and/or track previous segments.
type AppendVertices struct {
	Base
	Space         string
	Dedup         bool
	TrackSegments bool
}

func NewAppendVertices(id int, inputs []Executor, space string, dedup, trackSegments bool) *AppendVertices {
	return &AppendVertices{Base: NewBase(id, "AppendVertices", "materializes path endpoints", inputs), Space: space, Dedup: dedup, TrackSegments: trackSegments}
}

func (o *AppendVertices) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	paths := pathsFromPredecessor(ctx, o.Inputs())
	if o.Dedup {
		seen := make(map[string]bool, len(paths))
		deduped := paths[:0:0]
		for _, p := range paths {
			k := p.LastVertex().VID.String()
			if seen[k] {
				continue
			}
			seen[k] = true
			deduped = append(deduped, p)
		}
		paths = deduped
	}

	if !o.TrackSegments {
		vertices := make([]*value.Vertex, len(paths))
		for i, p := range paths {
			vertices[i] = p.LastVertex()
		}
		o.Stats().AddProduced(int64(len(vertices)))
		return value.Vertices(vertices), nil
	}
	o.Stats().AddProduced(int64(len(paths)))
	return value.Paths(paths), nil
}
