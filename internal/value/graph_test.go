package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func triangleVertices() (*Vertex, *Vertex, *Vertex) {
	a := &Vertex{VID: String("a"), Tags: []Tag{{Name: "Person", Props: map[string]Value{"name": String("Alice")}}}}
	b := &Vertex{VID: String("b"), Tags: []Tag{{Name: "Person", Props: map[string]Value{"name": String("Bob")}}}}
	c := &Vertex{VID: String("c"), Tags: []Tag{{Name: "Person", Props: map[string]Value{"name": String("Carol")}}}}
	return a, b, c
}

func TestVertexPropLookup(t *testing.T) {
	v := &Vertex{Tags: []Tag{
		{Name: "Person", Props: map[string]Value{"name": String("Alice")}},
		{Name: "Employee", Props: map[string]Value{"salary": Int(100)}},
	}}
	assert.True(t, v.HasTag("Person"))
	assert.False(t, v.HasTag("Robot"))

	name, ok := v.Prop("name")
	assert.True(t, ok)
	assert.Equal(t, "Alice", name.s)

	_, ok = v.Prop("missing")
	assert.False(t, ok)

	merged := v.MergedProps()
	assert.Len(t, merged, 2)
}

func TestVertexMergedPropsFirstTagWins(t *testing.T) {
	v := &Vertex{Tags: []Tag{
		{Name: "A", Props: map[string]Value{"x": Int(1)}},
		{Name: "B", Props: map[string]Value{"x": Int(2)}},
	}}
	merged := v.MergedProps()
	assert.Equal(t, int64(1), merged["x"].i)
}

func TestEdgeOtherEndpoint(t *testing.T) {
	e := &Edge{Src: String("a"), Dst: String("b"), Type: "KNOWS"}
	assert.True(t, Equal(e.Other(String("a")), String("b")))
	assert.True(t, Equal(e.Other(String("b")), String("a")))
}

// TestPathTriangleExpand builds the a->b->c->a triangle fixture and checks
// Length/Vertices/LastVertex/Extend/HasCycle.
func TestPathTriangleExpand(t *testing.T) {
	a, b, c := triangleVertices()
	ab := &Edge{Src: a.VID, Dst: b.VID, Type: "KNOWS"}
	bc := &Edge{Src: b.VID, Dst: c.VID, Type: "KNOWS"}
	ca := &Edge{Src: c.VID, Dst: a.VID, Type: "KNOWS"}

	p0 := &Path{Src: a}
	assert.Equal(t, 0, p0.Length())
	assert.Equal(t, a, p0.LastVertex())
	assert.False(t, p0.HasCycle())

	p1 := p0.Extend(ab, b)
	assert.Equal(t, 1, p1.Length())
	assert.Equal(t, b, p1.LastVertex())
	assert.False(t, p1.HasCycle())

	p2 := p1.Extend(bc, c)
	assert.Equal(t, 2, p2.Length())
	assert.Equal(t, c, p2.LastVertex())

	p3 := p2.Extend(ca, a)
	assert.Equal(t, 3, p3.Length())
	assert.True(t, p3.HasCycle(), "closing the triangle back to a must be detected as a cycle")

	// p0 is untouched by Extend — paths are never mutated in place.
	assert.Equal(t, 0, p0.Length())

	verts := p2.Vertices()
	assert.Equal(t, []*Vertex{a, b, c}, verts)
}

func TestPathHasEdge(t *testing.T) {
	a, b, _ := triangleVertices()
	ab := &Edge{Src: a.VID, Dst: b.VID, Type: "KNOWS", Rank: 0}
	other := &Edge{Src: a.VID, Dst: b.VID, Type: "KNOWS", Rank: 1}

	p := (&Path{Src: a}).Extend(ab, b)
	assert.True(t, p.HasEdge(ab))
	assert.False(t, p.HasEdge(other))
}
