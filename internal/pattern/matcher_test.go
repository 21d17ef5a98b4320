package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

func TestFindStartVerticesEmptyPatternMatchesAll(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	seedTriangleStore(t, st, "default")

	m := NewMatcher(st, "default")
	out, err := m.FindStartVertices(NodePattern{})
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestFindStartVerticesFiltersByTagAndProp(t *testing.T) {
	st := storage.NewMemStore()
	st.CreateSpace("default")
	st.InsertVertex("default", &value.Vertex{
		VID:  value.String("a"),
		Tags: []value.Tag{{Name: "Person", Props: map[string]value.Value{"age": value.Int(30)}}},
	})
	st.InsertVertex("default", &value.Vertex{
		VID:  value.String("b"),
		Tags: []value.Tag{{Name: "Person", Props: map[string]value.Value{"age": value.Int(40)}}},
	})
	st.InsertVertex("default", &value.Vertex{VID: value.String("c"), Tags: []value.Tag{{Name: "Company"}}})

	m := NewMatcher(st, "default")
	out, err := m.FindStartVertices(NodePattern{Tags: []string{"Person"}, Props: map[string]value.Value{"age": value.Int(30)}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].VID.String())
}

func TestMatchesVertexRequiresAllProps(t *testing.T) {
	v := &value.Vertex{
		VID:  value.String("a"),
		Tags: []value.Tag{{Name: "Person", Props: map[string]value.Value{"age": value.Int(30), "city": value.String("NYC")}}},
	}
	assert.True(t, MatchesVertex(v, NodePattern{Props: map[string]value.Value{"age": value.Int(30)}}))
	assert.False(t, MatchesVertex(v, NodePattern{Props: map[string]value.Value{"age": value.Int(31)}}))
	assert.False(t, MatchesVertex(v, NodePattern{Tags: []string{"Company"}}))
}

func TestMatchesEdgeOrTypesAndProps(t *testing.T) {
	e := &value.Edge{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS", Props: map[string]value.Value{"since": value.Int(2020)}}
	assert.True(t, MatchesEdge(e, EdgePattern{Types: []string{"LIKES", "KNOWS"}}))
	assert.False(t, MatchesEdge(e, EdgePattern{Types: []string{"LIKES"}}))
	assert.True(t, MatchesEdge(e, EdgePattern{Props: map[string]value.Value{"since": value.Int(2020)}}))
	assert.False(t, MatchesEdge(e, EdgePattern{Props: map[string]value.Value{"since": value.Int(2021)}}))
}

func TestFilterEdgesByTypesEmptyIsNoOp(t *testing.T) {
	edges := []*value.Edge{
		{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS"},
		{Src: value.String("a"), Dst: value.String("c"), Type: "LIKES"},
	}
	assert.Len(t, FilterEdgesByTypes(edges, nil), 2)
	assert.Len(t, FilterEdgesByTypes(edges, []string{"LIKES"}), 1)
}

func TestFilterEdgesByPropertiesRequiresAllMatches(t *testing.T) {
	edges := []*value.Edge{
		{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS", Props: map[string]value.Value{"since": value.Int(2020)}},
		{Src: value.String("a"), Dst: value.String("c"), Type: "KNOWS", Props: map[string]value.Value{"since": value.Int(2021)}},
	}
	out := FilterEdgesByProperties(edges, map[string]value.Value{"since": value.Int(2020)})
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Dst.String())
}
