package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

func seedTriangleStore(t *testing.T, st storage.Client, space string) {
	t.Helper()
	for _, vid := range []string{"a", "b", "c"} {
		ok, err := st.InsertVertex(space, &value.Vertex{VID: value.String(vid), Tags: []value.Tag{{Name: "Person"}}})
		require.NoError(t, err)
		require.True(t, ok)
	}
	for _, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}} {
		ok, err := st.InsertEdge(space, &value.Edge{Src: value.String(pair[0]), Dst: value.String(pair[1]), Type: "KNOWS"})
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func rootPath(t *testing.T, st storage.Client, space, vid string) *value.Path {
	t.Helper()
	v, ok, err := st.GetVertex(space, value.String(vid))
	require.NoError(t, err)
	require.True(t, ok)
	return &value.Path{Src: v}
}

func TestExpandWithRelationshipOneHop(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	seedTriangleStore(t, st, "default")

	e := NewEngine(st, "default")
	paths := []*value.Path{rootPath(t, st, "default", "a")}
	out, binds, err := e.ExpandWithRelationship(paths, RelPattern{Direction: storage.Out, EdgeTypes: []string{"KNOWS"}, Var: "r"}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].LastVertex().VID.String())
	_, bound := binds[0]["r"]
	assert.True(t, bound)
}

func TestExpandWithRelationshipSkipsVisitedVertex(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	seedTriangleStore(t, st, "default")

	e := NewEngine(st, "default")
	p1 := rootPath(t, st, "default", "a")
	edgeAB := mustEdge(t, st, "a", "b")
	p2 := p1.Extend(edgeAB, mustVertex(t, st, "b"))
	p3Edges, _, err := e.ExpandWithRelationship([]*value.Path{p2}, RelPattern{Direction: storage.Out, EdgeTypes: []string{"KNOWS"}}, nil)
	require.NoError(t, err)
	require.Len(t, p3Edges, 1)
	assert.Equal(t, "c", p3Edges[0].LastVertex().VID.String())

	// c's only out-edge leads back to a, which is already on the path.
	p4Edges, _, err := e.ExpandWithRelationship(p3Edges, RelPattern{Direction: storage.Out, EdgeTypes: []string{"KNOWS"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, p4Edges)
}

func mustEdge(t *testing.T, st storage.Client, src, dst string) *value.Edge {
	t.Helper()
	edges, err := st.GetNodeEdges("default", value.String(src), storage.Out)
	require.NoError(t, err)
	for _, e := range edges {
		if e.Dst.String() == dst {
			return e
		}
	}
	t.Fatalf("no edge %s->%s", src, dst)
	return nil
}

func mustVertex(t *testing.T, st storage.Client, vid string) *value.Vertex {
	t.Helper()
	v, ok, err := st.GetVertex("default", value.String(vid))
	require.NoError(t, err)
	require.True(t, ok)
	return v
}

func TestExpandWithRelationshipExceedsMaxPathLength(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	seedTriangleStore(t, st, "default")

	e := NewEngine(st, "default")
	e.MaxPathLength = 0
	_, _, err := e.ExpandWithRelationship([]*value.Path{rootPath(t, st, "default", "a")}, RelPattern{Direction: storage.Out}, nil)
	assert.Error(t, err)
}

func TestAllPathsWithEndVertex(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	seedTriangleStore(t, st, "default")

	e := NewEngine(st, "default")
	a := mustVertex(t, st, "a")
	paths, err := e.AllPaths(a, value.String("c"), true, 5, []string{"KNOWS"}, storage.Out)
	require.NoError(t, err)
	require.Len(t, paths, 1, "exactly one path a->b->c reaches c within the triangle")
	assert.Equal(t, 2, paths[0].Length())
}

func TestAllPathsNoEndVertexReturnsDeadEnds(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	st.InsertVertex("default", &value.Vertex{VID: value.String("x"), Tags: []value.Tag{{Name: "Person"}}})
	st.InsertVertex("default", &value.Vertex{VID: value.String("y"), Tags: []value.Tag{{Name: "Person"}}})
	st.InsertEdge("default", &value.Edge{Src: value.String("x"), Dst: value.String("y"), Type: "KNOWS"})

	e := NewEngine(st, "default")
	x := mustVertex(t, st, "x")
	paths, err := e.AllPaths(x, value.Null(), false, 5, []string{"KNOWS"}, storage.Out)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "y", paths[0].LastVertex().VID.String())
}

func TestBFSShortestSamePairIsZeroLengthPath(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	seedTriangleStore(t, st, "default")

	e := NewEngine(st, "default")
	p, err := e.BFSShortest(value.String("a"), value.String("a"), storage.Out, nil, 5)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Length())
}

func TestBFSShortestFindsShortestAcrossTriangle(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	seedTriangleStore(t, st, "default")

	e := NewEngine(st, "default")
	p, err := e.BFSShortest(value.String("b"), value.String("a"), storage.Out, []string{"KNOWS"}, 5)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 2, p.Length(), "b->c->a is the only directed path since edges are one-way")
}

func TestHasCycleDelegatesToPath(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	seedTriangleStore(t, st, "default")

	p := rootPath(t, st, "default", "a")
	assert.False(t, HasCycle(p))
}
