package operator

import (
	"fmt"
	"strings"

	"github.com/wbrown/graphql-engine/internal/pattern"
	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

// ParseVIDsCSV splits a deferred-parse vertex-id list: comma separated,
// empty entries ignored. IDs are treated as strings; callers
// needing Int VIDs convert downstream (the storage layer is VID-type
// agnostic at this boundary).
func ParseVIDsCSV(csv string) []value.Value {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]value.Value, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, value.String(p))
	}
	return out
}

// ScanVertices covers both ScanVertices and GetVertices: an optional
// vertex-id list (single lookup vs batch lookup vs full scan), optional
// tag filter, optional filter expression, optional limit.
type ScanVertices struct {
	Base
	Space     string
	VIDs      []value.Value
	Tag       string
	FilterExpr *pattern.Expr
	Limit     *int64
}

func NewScanVertices(id int, inputs []Executor, space string, vids []value.Value, tag string, filterExpr *pattern.Expr, limit *int64) *ScanVertices {
	return &ScanVertices{
		Base: NewBase(id, "ScanVertices", "scans vertices by id, tag, or full scan", inputs),
		Space: space, VIDs: vids, Tag: tag, FilterExpr: filterExpr, Limit: limit,
	}
}

func (o *ScanVertices) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	var vertices []*value.Vertex
	switch {
	case len(o.VIDs) == 1:
		v, ok, err := ctx.Storage.GetVertex(o.Space, o.VIDs[0])
		if err != nil {
			return value.Empty(), err
		}
		if ok {
			vertices = append(vertices, v)
		}
	case len(o.VIDs) > 1:
		for _, vid := range o.VIDs {
			v, ok, err := ctx.Storage.GetVertex(o.Space, vid)
			if err != nil {
				ctx.Log.Warn().Err(err).Str("vid", vid.String()).Msg("GetVertex lookup failed, skipping")
				continue
			}
			if ok {
				vertices = append(vertices, v)
			}
		}
	case o.Tag != "":
		var err error
		vertices, err = ctx.Storage.ScanVerticesByTag(o.Space, o.Tag)
		if err != nil {
			return value.Empty(), err
		}
	default:
		var err error
		vertices, err = ctx.Storage.ScanVertices(o.Space)
		if err != nil {
			return value.Empty(), err
		}
	}

	if o.FilterExpr != nil {
		filtered := vertices[:0:0]
		ev := pattern.NewEvaluator()
		for _, v := range vertices {
			ok, err := evalVertexBool(ev, o.FilterExpr, v)
			if err != nil {
				ctx.Log.Warn().Err(err).Msg("vertex filter expression failed, skipping row")
				continue
			}
			if ok {
				filtered = append(filtered, v)
			}
		}
		vertices = filtered
	}
	if o.Limit != nil && int64(len(vertices)) > *o.Limit {
		vertices = vertices[:*o.Limit]
	}

	o.Stats().AddProduced(int64(len(vertices)))
	return value.Vertices(vertices), nil
}

// ScanEdges covers both ScanEdges and GetEdges: optional edge-type filter,
// optional edge-filter expression, optional limit.
type ScanEdges struct {
	Base
	Space      string
	EdgeTypes  []string
	FilterExpr *pattern.Expr
	Limit      *int64
}

func NewScanEdges(id int, inputs []Executor, space string, edgeTypes []string, filterExpr *pattern.Expr, limit *int64) *ScanEdges {
	return &ScanEdges{
		Base: NewBase(id, "ScanEdges", "scans edges by type or full scan", inputs),
		Space: space, EdgeTypes: edgeTypes, FilterExpr: filterExpr, Limit: limit,
	}
}

func (o *ScanEdges) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	var edges []*value.Edge
	if len(o.EdgeTypes) == 1 {
		var err error
		edges, err = ctx.Storage.ScanEdgesByType(o.Space, o.EdgeTypes[0])
		if err != nil {
			return value.Empty(), err
		}
	} else {
		all, err := ctx.Storage.ScanAllEdges(o.Space)
		if err != nil {
			return value.Empty(), err
		}
		edges = pattern.FilterEdgesByTypes(all, o.EdgeTypes)
	}

	if o.FilterExpr != nil {
		filtered := edges[:0:0]
		ev := pattern.NewEvaluator()
		for _, e := range edges {
			ok, err := evalEdgeBool(ev, o.FilterExpr, e)
			if err != nil {
				ctx.Log.Warn().Err(err).Msg("edge filter expression failed, skipping row")
				continue
			}
			if ok {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}
	if o.Limit != nil && int64(len(edges)) > *o.Limit {
		edges = edges[:*o.Limit]
	}

	o.Stats().AddProduced(int64(len(edges)))
	return value.Edges(edges), nil
}

// GetNeighbors takes an input vertex-id list, direction, and optional
// edge-types, producing unique, sorted neighbor vertices. Failed
// per-neighbor lookups are logged, never fatal.
type GetNeighbors struct {
	Base
	Space     string
	VIDs      []value.Value
	Direction storage.Direction
	EdgeTypes []string
}

func NewGetNeighbors(id int, inputs []Executor, space string, vids []value.Value, dir storage.Direction, edgeTypes []string) *GetNeighbors {
	return &GetNeighbors{
		Base: NewBase(id, "GetNeighbors", "unique sorted neighbor vertices", inputs),
		Space: space, VIDs: vids, Direction: dir, EdgeTypes: edgeTypes,
	}
}

func (o *GetNeighbors) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	seen := make(map[string]bool)
	var neighbors []*value.Vertex
	for _, vid := range o.VIDs {
		edges, err := ctx.Storage.GetNodeEdges(o.Space, vid, o.Direction)
		if err != nil {
			ctx.Log.Warn().Err(err).Str("vid", vid.String()).Msg("GetNodeEdges failed, skipping")
			continue
		}
		edges = pattern.FilterEdgesByTypes(edges, o.EdgeTypes)
		for _, e := range edges {
			other := e.Other(vid)
			key := other.String()
			if seen[key] {
				continue
			}
			v, ok, err := ctx.Storage.GetVertex(o.Space, other)
			if err != nil {
				ctx.Log.Warn().Err(err).Str("vid", other.String()).Msg("neighbor GetVertex failed, skipping")
				continue
			}
			if !ok {
				continue
			}
			seen[key] = true
			neighbors = append(neighbors, v)
		}
	}
	sortVerticesByVID(neighbors)

	o.Stats().AddProduced(int64(len(neighbors)))
	return value.Vertices(neighbors), nil
}

// GetProp takes a vertex-id OR edge-id list plus a property-name list,
// producing a flat Values list; missing properties produce Null.
type GetProp struct {
	Base
	Space     string
	VIDs      []value.Value
	EdgeRefs  []EdgeRef
	PropNames []string
}

// EdgeRef identifies an edge by its unique key for GetProp's edge-id form.
type EdgeRef struct {
	Src, Dst value.Value
	Type     string
	Rank     int64
}

func NewGetProp(id int, inputs []Executor, space string, vids []value.Value, edgeRefs []EdgeRef, propNames []string) *GetProp {
	return &GetProp{
		Base: NewBase(id, "GetProp", "flat property values, missing => Null", inputs),
		Space: space, VIDs: vids, EdgeRefs: edgeRefs, PropNames: propNames,
	}
}

func (o *GetProp) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	var out []value.Value
	for _, vid := range o.VIDs {
		v, ok, err := ctx.Storage.GetVertex(o.Space, vid)
		if err != nil {
			ctx.Log.Warn().Err(err).Str("vid", vid.String()).Msg("GetProp vertex lookup failed, skipping")
			continue
		}
		for _, name := range o.PropNames {
			if !ok {
				out = append(out, value.NullBecause(value.NullReasonMissingProperty))
				continue
			}
			if p, found := v.Prop(name); found {
				out = append(out, p)
			} else {
				out = append(out, value.NullBecause(value.NullReasonMissingProperty))
			}
		}
	}
	for _, ref := range o.EdgeRefs {
		edges, err := ctx.Storage.GetNodeEdges(o.Space, ref.Src, storage.Out)
		var found *value.Edge
		if err == nil {
			for _, e := range edges {
				if value.Equal(e.Dst, ref.Dst) && e.Type == ref.Type && e.Rank == ref.Rank {
					found = e
					break
				}
			}
		}
		for _, name := range o.PropNames {
			if found == nil {
				out = append(out, value.NullBecause(value.NullReasonMissingProperty))
				continue
			}
			if p, ok := found.Prop(name); ok {
				out = append(out, p)
			} else {
				out = append(out, value.NullBecause(value.NullReasonMissingProperty))
			}
		}
	}

	o.Stats().AddProduced(int64(len(out)))
	return value.Values(out), nil
}

// IndexScan takes an index name, optional (property, value) equality
// predicate, forward/backward direction, and limit, producing Vertices.
type IndexScan struct {
	Base
	Space     string
	IndexName string
	Prop      string
	Val       value.Value
	HasVal    bool
	Forward   bool
	Limit     *int64
}

func NewIndexScan(id int, inputs []Executor, space, indexName, prop string, val value.Value, hasVal, forward bool, limit *int64) *IndexScan {
	return &IndexScan{
		Base: NewBase(id, "IndexScan", "indexed vertex lookup/scan", inputs),
		Space: space, IndexName: indexName, Prop: prop, Val: val, HasVal: hasVal, Forward: forward, Limit: limit,
	}
}

func (o *IndexScan) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	var vertices []*value.Vertex
	var err error
	if o.HasVal {
		vertices, err = ctx.Storage.ScanVerticesByProp(o.Space, o.IndexName, o.Prop, o.Val)
	} else {
		vertices, err = ctx.Storage.ScanVerticesByTag(o.Space, o.IndexName)
	}
	if err != nil {
		return value.Empty(), err
	}
	if !o.Forward {
		for i, j := 0, len(vertices)-1; i < j; i, j = i+1, j-1 {
			vertices[i], vertices[j] = vertices[j], vertices[i]
		}
	}
	if o.Limit != nil && int64(len(vertices)) > *o.Limit {
		vertices = vertices[:*o.Limit]
	}

	o.Stats().AddProduced(int64(len(vertices)))
	return value.Vertices(vertices), nil
}

// AllPaths takes a start vertex, optional end vertex, max-hops, optional
// edge-types, and direction, producing Paths via bounded DFS.
type AllPaths struct {
	Base
	Space     string
	Start     value.Value
	End       value.Value
	HasEnd    bool
	MaxHops   int
	EdgeTypes []string
	Direction storage.Direction
}

func NewAllPaths(id int, inputs []Executor, space string, start, end value.Value, hasEnd bool, maxHops int, edgeTypes []string, dir storage.Direction) *AllPaths {
	return &AllPaths{
		Base: NewBase(id, "AllPaths", "bounded DFS path enumeration", inputs),
		Space: space, Start: start, End: end, HasEnd: hasEnd, MaxHops: maxHops, EdgeTypes: edgeTypes, Direction: dir,
	}
}

func (o *AllPaths) Execute(ctx *ExecContext) (value.ExecutionResult, error) {
	o.MarkExecuted()
	started := statsTimer()
	defer func() { o.Stats().RecordElapsed(started()) }()

	startVertex, ok, err := ctx.Storage.GetVertex(o.Space, o.Start)
	if err != nil {
		return value.Empty(), err
	}
	if !ok {
		return value.Paths(nil), nil
	}
	engine := pattern.NewEngine(ctx.Storage, o.Space)
	paths, err := engine.AllPaths(startVertex, o.End, o.HasEnd, o.MaxHops, o.EdgeTypes, o.Direction)
	if err != nil {
		return value.Empty(), fmt.Errorf("AllPaths: %w", err)
	}

	o.Stats().AddProduced(int64(len(paths)))
	return value.Paths(paths), nil
}
