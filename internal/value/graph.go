package value

import "fmt"

// Tag is a vertex label carrying its own property map.
type Tag struct {
	Name  string
	Props map[string]Value
}

// Vertex is materialized from storage on demand and immutable in the core.
type Vertex struct {
	VID  Value
	Tags []Tag
}

// Prop looks the property up across merged tags, flattened across every tag
// the vertex carries for convenience.
func (v *Vertex) Prop(name string) (Value, bool) {
	for _, t := range v.Tags {
		if val, ok := t.Props[name]; ok {
			return val, true
		}
	}
	return Null(), false
}

// HasTag reports whether the vertex carries the named tag.
func (v *Vertex) HasTag(name string) bool {
	for _, t := range v.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// MergedProps flattens every tag's property map into one, first tag wins on
// collision.
func (v *Vertex) MergedProps() map[string]Value {
	out := make(map[string]Value)
	for _, t := range v.Tags {
		for k, val := range t.Props {
			if _, exists := out[k]; !exists {
				out[k] = val
			}
		}
	}
	return out
}

// Edge: (src, dst) VIDs, edge-type name, ranking integer, property map.
// (src, edge-type, ranking, dst) is unique.
type Edge struct {
	Src   Value
	Dst   Value
	Type  string
	Rank  int64
	Props map[string]Value
}

func (e *Edge) Prop(name string) (Value, bool) {
	v, ok := e.Props[name]
	return v, ok
}

// Other returns the endpoint of the edge that is not `from`.
func (e *Edge) Other(from Value) Value {
	if Equal(e.Src, from) {
		return e.Dst
	}
	return e.Src
}

// Step is one (edge, destination-vertex) hop of a Path.
type Step struct {
	Edge *Edge
	Dst  *Vertex
}

// Path is a source vertex plus an ordered sequence of steps.
type Path struct {
	Src   *Vertex
	Steps []Step
}

// Length is the number of edges in the path.
func (p *Path) Length() int { return len(p.Steps) }

// Vertices returns the full vertex sequence the path visits, source first.
func (p *Path) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(p.Steps)+1)
	out = append(out, p.Src)
	for _, s := range p.Steps {
		out = append(out, s.Dst)
	}
	return out
}

// LastVertex is the endpoint the traversal engine expands from next.
func (p *Path) LastVertex() *Vertex {
	if len(p.Steps) == 0 {
		return p.Src
	}
	return p.Steps[len(p.Steps)-1].Dst
}

// Extend returns a new path with one more (edge, dst) step appended. Paths
// are never mutated in place — traversal holds many in-flight branches that
// share a prefix.
func (p *Path) Extend(e *Edge, dst *Vertex) *Path {
	steps := make([]Step, len(p.Steps)+1)
	copy(steps, p.Steps)
	steps[len(p.Steps)] = Step{Edge: e, Dst: dst}
	return &Path{Src: p.Src, Steps: steps}
}

// HasCycle reports whether some vertex appears twice in the path's vertex
// sequence.
func (p *Path) HasCycle() bool {
	seen := make(map[string]bool, len(p.Steps)+1)
	for _, v := range p.Vertices() {
		key := v.VID.String()
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

// HasEdge reports whether an edge with the same identity already occurs on
// this path — used to avoid reusing an edge within a single walk.
func (p *Path) HasEdge(e *Edge) bool {
	for _, s := range p.Steps {
		if Equal(s.Edge.Src, e.Src) && Equal(s.Edge.Dst, e.Dst) && s.Edge.Type == e.Type && s.Edge.Rank == e.Rank {
			return true
		}
	}
	return false
}

func (p *Path) String() string {
	return fmt.Sprintf("Path(src=%s, len=%d)", p.Src.VID, p.Length())
}
