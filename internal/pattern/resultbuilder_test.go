package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphql-engine/internal/value"
)

func TestAnalyzePathsComputesMinMaxAndEmptyCount(t *testing.T) {
	root := &value.Vertex{VID: value.String("a")}
	edge := &value.Edge{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS"}
	other := &value.Vertex{VID: value.String("b")}

	empty := &value.Path{Src: root}
	one := (&value.Path{Src: root}).Extend(edge, other)

	a := AnalyzePaths([]*value.Path{empty, one})
	assert.Equal(t, 2, a.Total)
	assert.Equal(t, 1, a.Empty)
	assert.Equal(t, 0, a.MinLen)
	assert.Equal(t, 1, a.MaxLen)
}

func TestAnalyzePathsEmptySetIsZeroValue(t *testing.T) {
	a := AnalyzePaths(nil)
	assert.Equal(t, 0, a.Total)
	assert.Equal(t, 0, a.MinLen)
	assert.Equal(t, 0, a.MaxLen)
}

func TestBuildPathsTruncatesToResultCap(t *testing.T) {
	root := &value.Vertex{VID: value.String("a")}
	paths := []*value.Path{{Src: root}, {Src: root}, {Src: root}}

	b := &Builder{ResultCap: 2}
	res := b.BuildPaths(paths)
	assert.Len(t, res.Paths, 2)
}

func TestBuildPathsZeroCapFallsBackToDefault(t *testing.T) {
	root := &value.Vertex{VID: value.String("a")}
	paths := []*value.Path{{Src: root}}

	b := &Builder{}
	res := b.BuildPaths(paths)
	assert.Len(t, res.Paths, 1)
}

func TestBuildDataSetBindsColumnsAndPathVar(t *testing.T) {
	root := &value.Vertex{VID: value.String("a")}
	edge := &value.Edge{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS"}
	other := &value.Vertex{VID: value.String("b")}
	p := (&value.Path{Src: root}).Extend(edge, other)

	bindings := []map[string]value.Value{
		{"r": value.EdgeValue(edge)},
	}
	b := NewBuilder()
	ds := b.BuildDataSet([]*value.Path{p}, bindings, "path")

	require.Len(t, ds.Rows, 1)
	pi := ds.ColumnIndex("path")
	require.GreaterOrEqual(t, pi, 0)
	ri := ds.ColumnIndex("r")
	require.GreaterOrEqual(t, ri, 0)
	assert.False(t, ds.Rows[0][ri].IsNull())
}

func TestBuildDataSetMissingBindingYieldsNull(t *testing.T) {
	root := &value.Vertex{VID: value.String("a")}
	edge := &value.Edge{Src: value.String("a"), Dst: value.String("b"), Type: "KNOWS"}
	other := &value.Vertex{VID: value.String("b")}
	p1 := (&value.Path{Src: root}).Extend(edge, other)
	p2 := &value.Path{Src: root}

	bindings := []map[string]value.Value{
		{"r": value.EdgeValue(edge)},
	}
	b := NewBuilder()
	ds := b.BuildDataSet([]*value.Path{p1, p2}, bindings, "")

	ri := ds.ColumnIndex("r")
	require.GreaterOrEqual(t, ri, 0)
	assert.True(t, ds.Rows[1][ri].IsNull(), "second path has no binding entry, so its column value must be Null")
}
