package pattern

import (
	"fmt"

	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

// RelPattern is one hop of a MATCH relationship: direction, an optional edge
// filter, and the variable name to bind the traversed edge to (if any).
type RelPattern struct {
	Direction storage.Direction
	EdgeTypes []string
	EdgeProps map[string]value.Value
	Var       string
}

// Engine is the traversal engine: directional expansion with cycle
// detection and a configurable max_path_length (default 1000).
type Engine struct {
	Storage        storage.Client
	Space          string
	MaxPathLength  int
}

const defaultMaxPathLength = 1000

func NewEngine(st storage.Client, space string) *Engine {
	return &Engine{Storage: st, Space: space, MaxPathLength: defaultMaxPathLength}
}

// ExpandWithRelationship expands every current path by one hop matching
// rel: fetch the last vertex's incident edges in the requested direction,
// filter by type/property, compute the target endpoint, skip
// edges already used on this path, vertices already on this path, and
// vertices already reached in this expansion layer, fetch the target
// vertex, and extend the path.
func (e *Engine) ExpandWithRelationship(paths []*value.Path, rel RelPattern, bindings []map[string]value.Value) ([]*value.Path, []map[string]value.Value, error) {
	var outPaths []*value.Path
	var outBindings []map[string]value.Value
	// layerVisited holds every target reached so far in this call, across
	// all input paths.
	layerVisited := make(map[string]bool)

	for i, p := range paths {
		if p.Length()+1 > e.MaxPathLength {
			return nil, nil, fmt.Errorf("path length %d exceeds max_path_length %d", p.Length()+1, e.MaxPathLength)
		}
		last := p.LastVertex()
		edges, err := e.Storage.GetNodeEdges(e.Space, last.VID, rel.Direction)
		if err != nil {
			return nil, nil, err
		}
		edges = FilterEdgesByTypes(edges, rel.EdgeTypes)
		edges = FilterEdgesByProperties(edges, rel.EdgeProps)

		visited := make(map[string]bool, p.Length()+1)
		for _, v := range p.Vertices() {
			visited[v.VID.String()] = true
		}

		for _, edge := range edges {
			if p.HasEdge(edge) {
				continue
			}
			target := targetVID(edge, last.VID, rel.Direction)
			if visited[target.String()] || layerVisited[target.String()] {
				continue
			}
			tv, ok, err := e.Storage.GetVertex(e.Space, target)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			layerVisited[target.String()] = true
			extended := p.Extend(edge, tv)
			var bind map[string]value.Value
			if i < len(bindings) {
				bind = cloneBindings(bindings[i])
			} else {
				bind = make(map[string]value.Value)
			}
			if rel.Var != "" {
				bind[rel.Var] = value.EdgeValue(edge)
			}
			outPaths = append(outPaths, extended)
			outBindings = append(outBindings, bind)
		}
	}
	return outPaths, outBindings, nil
}

func cloneBindings(m map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// targetVID resolves the endpoint of edge that expansion moves to, given
// the vertex currently being expanded from and the requested direction.
func targetVID(edge *value.Edge, from value.Value, dir storage.Direction) value.Value {
	switch dir {
	case storage.Out:
		return edge.Dst
	case storage.In:
		return edge.Src
	default: // Both: the end that isn't the current vertex
		return edge.Other(from)
	}
}

// HasCycle reports whether some vertex appears twice in path's vertex
// sequence.
func HasCycle(p *value.Path) bool { return p.HasCycle() }

// AllPaths performs a bounded DFS from start to an optional end vertex,
// honoring maxHops and an edge-type filter.
func (e *Engine) AllPaths(start *value.Vertex, end value.Value, hasEnd bool, maxHops int, edgeTypes []string, dir storage.Direction) ([]*value.Path, error) {
	var results []*value.Path
	root := &value.Path{Src: start}

	var dfs func(p *value.Path) error
	dfs = func(p *value.Path) error {
		if hasEnd && value.Equal(p.LastVertex().VID, end) && p.Length() > 0 {
			results = append(results, p)
			return nil
		}
		if p.Length() >= maxHops {
			if !hasEnd {
				results = append(results, p)
			}
			return nil
		}
		last := p.LastVertex()
		edges, err := e.Storage.GetNodeEdges(e.Space, last.VID, dir)
		if err != nil {
			return err
		}
		edges = FilterEdgesByTypes(edges, edgeTypes)

		visited := make(map[string]bool)
		for _, v := range p.Vertices() {
			visited[v.VID.String()] = true
		}

		expanded := false
		for _, edge := range edges {
			if p.HasEdge(edge) {
				continue
			}
			target := targetVID(edge, last.VID, dir)
			if visited[target.String()] {
				continue
			}
			tv, ok, err := e.Storage.GetVertex(e.Space, target)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			expanded = true
			if err := dfs(p.Extend(edge, tv)); err != nil {
				return err
			}
		}
		if !expanded && !hasEnd && p.Length() > 0 {
			results = append(results, p)
		}
		return nil
	}
	if err := dfs(root); err != nil {
		return nil, err
	}
	return results, nil
}

// frontierNode is one node of a bidirectional-BFS half-chain: the vertex it
// reached, the edge used to reach it, and the predecessor in that chain.
type frontierNode struct {
	vid  value.Value
	via  *value.Edge
	prev *frontierNode
}

// BFSShortest is symmetric bidirectional BFS for single-pair shortest
// path: alternately expands a frontier from src and from dst until the
// frontiers meet, then reconstructs the path.
func (e *Engine) BFSShortest(src, dst value.Value, dir storage.Direction, edgeTypes []string, maxSteps int) (*value.Path, error) {
	if value.Equal(src, dst) {
		v, ok, err := e.Storage.GetVertex(e.Space, src)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return &value.Path{Src: v}, nil
	}

	revDir := reverseDirection(dir)

	fwdVisited := map[string]*frontierNode{src.String(): {vid: src}}
	bwdVisited := map[string]*frontierNode{dst.String(): {vid: dst}}
	fwdFrontier := []*frontierNode{fwdVisited[src.String()]}
	bwdFrontier := []*frontierNode{bwdVisited[dst.String()]}

	expand := func(frontier []*frontierNode, visited map[string]*frontierNode, dir storage.Direction, other map[string]*frontierNode) ([]*frontierNode, *frontierNode, *frontierNode, error) {
		var next []*frontierNode
		for _, node := range frontier {
			edges, err := e.Storage.GetNodeEdges(e.Space, node.vid, dir)
			if err != nil {
				return nil, nil, nil, err
			}
			edges = FilterEdgesByTypes(edges, edgeTypes)
			for _, edge := range edges {
				target := targetVID(edge, node.vid, dir)
				key := target.String()
				if _, seen := visited[key]; seen {
					continue
				}
				nn := &frontierNode{vid: target, via: edge, prev: node}
				visited[key] = nn
				next = append(next, nn)
				if meet, ok := other[key]; ok {
					return nil, nn, meet, nil
				}
			}
		}
		return next, nil, nil, nil
	}

	for step := 0; step < maxSteps; step++ {
		var meetFwd, meetBwd *frontierNode
		var err error
		fwdFrontier, meetFwd, meetBwd, err = expand(fwdFrontier, fwdVisited, dir, bwdVisited)
		if err != nil {
			return nil, err
		}
		if meetFwd != nil {
			return e.reconstructBidi(meetFwd, meetBwd, dir)
		}
		if len(fwdFrontier) == 0 && len(bwdFrontier) == 0 {
			return nil, nil
		}
		bwdFrontier, meetBwd, meetFwd, err = expand(bwdFrontier, bwdVisited, revDir, fwdVisited)
		if err != nil {
			return nil, err
		}
		if meetBwd != nil {
			return e.reconstructBidi(meetFwd, meetBwd, dir)
		}
	}
	return nil, nil
}

func reverseDirection(d storage.Direction) storage.Direction {
	switch d {
	case storage.Out:
		return storage.In
	case storage.In:
		return storage.Out
	default:
		return storage.Both
	}
}

// reconstructBidi walks both half-chains back to their roots and builds the
// single src→dst Path the two meeting frontiers describe.
func (e *Engine) reconstructBidi(fwdChain, bwdChain *frontierNode, dir storage.Direction) (*value.Path, error) {
	var fwdEdges []*value.Edge
	for n := fwdChain; n != nil && n.via != nil; n = n.prev {
		fwdEdges = append([]*value.Edge{n.via}, fwdEdges...)
	}
	var bwdEdges []*value.Edge
	for n := bwdChain; n != nil && n.via != nil; n = n.prev {
		bwdEdges = append(bwdEdges, n.via)
	}

	srcVID := fwdChain.vid
	for n := fwdChain; n != nil; n = n.prev {
		if n.prev == nil {
			srcVID = n.vid
		}
	}
	srcVertex, ok, err := e.Storage.GetVertex(e.Space, srcVID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("source vertex not found during path reconstruction")
	}
	path := &value.Path{Src: srcVertex}
	cur := srcVID
	for _, edge := range fwdEdges {
		next := targetVID(edge, cur, dir)
		v, ok, err := e.Storage.GetVertex(e.Space, next)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("vertex %s not found during path reconstruction", next)
		}
		path = path.Extend(edge, v)
		cur = next
	}
	// bwdEdges were discovered walking from dst backward (via revDir), but
	// each edge's own Src/Dst is fixed regardless of which side found it —
	// replaying them from the meeting point toward dst still moves along
	// their natural orientation, i.e. targetVID with the forward dir.
	for _, edge := range bwdEdges {
		next := targetVID(edge, cur, dir)
		v, ok, err := e.Storage.GetVertex(e.Space, next)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("vertex %s not found during path reconstruction", next)
		}
		path = path.Extend(edge, v)
		cur = next
	}
	return path, nil
}
