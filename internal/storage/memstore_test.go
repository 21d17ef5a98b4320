package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/value"
)

func TestCreateSpaceDuplicateFails(t *testing.T) {
	s := NewMemStore()
	ok, err := s.CreateSpace("g1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.CreateSpace("g1")
	assert.ErrorIs(t, err, ErrSpaceExists)
}

func TestDropSpaceRemovesData(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	s.InsertVertex("g1", &value.Vertex{VID: value.String("a"), Tags: []value.Tag{{Name: "Person"}}})

	ok, err := s.DropSpace("g1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.DropSpace("g1")
	assert.ErrorIs(t, err, ErrSpaceNotFound)
}

func TestCreateTagRequiresExistingSpace(t *testing.T) {
	s := NewMemStore()
	_, err := s.CreateTag("nosuch", TagSchema{Name: "Person"})
	assert.ErrorIs(t, err, ErrSpaceNotFound)

	s.CreateSpace("g1")
	ok, err := s.CreateTag("g1", TagSchema{Name: "Person", Props: []string{"name"}})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRebuildIndexUnknownIndexErrors(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	_, err := s.RebuildIndex("g1", "by_name")
	assert.Error(t, err)

	s.CreateIndex("g1", IndexSchema{Name: "by_name", Tag: "Person", Prop: "name"})
	ok, err := s.RebuildIndex("g1", "by_name")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateUserAndGrantRole(t *testing.T) {
	s := NewMemStore()
	ok, err := s.CreateUser("alice", "hash")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.CreateUser("alice", "hash2")
	assert.Error(t, err, "duplicate user must be rejected")

	_, err = s.GrantRole("bob", "g1", "admin")
	assert.Error(t, err, "granting a role to an unknown user must fail")

	ok, err = s.GrantRole("alice", "g1", "admin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func seedVertex(t *testing.T, s *MemStore, space, vid, tag string, props map[string]value.Value) *value.Vertex {
	t.Helper()
	v := &value.Vertex{VID: value.String(vid), Tags: []value.Tag{{Name: tag, Props: props}}}
	ok, err := s.InsertVertex(space, v)
	require.NoError(t, err)
	require.True(t, ok)
	return v
}

func TestInsertVertexRejectsDuplicateVID(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	seedVertex(t, s, "g1", "a", "Person", map[string]value.Value{"name": value.String("Alice")})

	ok, err := s.InsertVertex("g1", &value.Vertex{VID: value.String("a"), Tags: []value.Tag{{Name: "Person"}}})
	require.NoError(t, err)
	assert.False(t, ok, "re-inserting the same vertex id must report no effect")
}

func TestGetVertexMissingReturnsOkFalseNoError(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	v, ok, err := s.GetVertex("g1", value.String("ghost"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestScanVerticesByTagFiltersCorrectly(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	seedVertex(t, s, "g1", "a", "Person", nil)
	seedVertex(t, s, "g1", "b", "Company", nil)

	people, err := s.ScanVerticesByTag("g1", "Person")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "a", people[0].VID.String())
}

func TestScanVerticesByPropMatchesValue(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	seedVertex(t, s, "g1", "a", "Person", map[string]value.Value{"age": value.Int(30)})
	seedVertex(t, s, "g1", "b", "Person", map[string]value.Value{"age": value.Int(40)})

	matches, err := s.ScanVerticesByProp("g1", "by_age", "age", value.Int(30))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].VID.String())
}

func TestGetNodeEdgesDirections(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	seedVertex(t, s, "g1", "a", "Person", nil)
	seedVertex(t, s, "g1", "b", "Person", nil)
	edge := &value.Edge{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS"}
	ok, err := s.InsertEdge("g1", edge)
	require.NoError(t, err)
	require.True(t, ok)

	out, err := s.GetNodeEdges("g1", value.String("a"), Out)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	in, err := s.GetNodeEdges("g1", value.String("a"), In)
	require.NoError(t, err)
	assert.Len(t, in, 0)

	both, err := s.GetNodeEdges("g1", value.String("b"), Both)
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestInsertEdgeRejectsDuplicateKey(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	edge := &value.Edge{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS", Rank: 0}
	ok, err := s.InsertEdge("g1", edge)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.InsertEdge("g1", &value.Edge{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS", Rank: 0})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteVertexAndEdge(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	seedVertex(t, s, "g1", "a", "Person", nil)
	edge := &value.Edge{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS"}
	s.InsertEdge("g1", edge)

	ok, err := s.DeleteEdge("g1", value.String("a"), value.String("b"), "KNOWS", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteVertex("g1", value.String("a"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteVertex("g1", value.String("a"))
	require.NoError(t, err)
	assert.False(t, ok, "deleting an already-deleted vertex reports no effect, not an error")
}

func TestUpdateDataMergesPropsIntoExistingTag(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	v := seedVertex(t, s, "g1", "a", "Person", map[string]value.Value{"name": value.String("Alice")})

	ok, err := s.UpdateData("g1", value.String("a"), "Person", map[string]value.Value{"age": value.Int(31)})
	require.NoError(t, err)
	assert.True(t, ok)

	age, ok := v.Prop("age")
	require.True(t, ok)
	n, _ := age.AsInt()
	assert.Equal(t, int64(31), n)
}

func TestUpdateDataAddsNewTagWhenMissing(t *testing.T) {
	s := NewMemStore()
	s.CreateSpace("g1")
	seedVertex(t, s, "g1", "a", "Person", nil)

	ok, err := s.UpdateData("g1", value.String("a"), "Employee", map[string]value.Value{"role": value.String("eng")})
	require.NoError(t, err)
	assert.True(t, ok)

	v, _, err := s.GetVertex("g1", value.String("a"))
	require.NoError(t, err)
	assert.True(t, v.HasTag("Employee"))
}
