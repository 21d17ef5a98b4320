package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueKindsRoundTrip(t *testing.T) {
	t.Run("Int", func(t *testing.T) {
		v := Int(42)
		assert.Equal(t, KindInt, v.Kind())
		i, ok := v.AsInt()
		assert.True(t, ok)
		assert.Equal(t, int64(42), i)
	})

	t.Run("Float", func(t *testing.T) {
		v := Float(3.5)
		f, ok := v.AsFloat()
		assert.True(t, ok)
		assert.InDelta(t, 3.5, f, epsilon)
	})

	t.Run("IntAsFloat", func(t *testing.T) {
		// AsFloat widens Int, since Cypher numeric literals don't
		// distinguish the two at the grammar level.
		v := Int(7)
		f, ok := v.AsFloat()
		assert.True(t, ok)
		assert.Equal(t, 7.0, f)
	})

	t.Run("Null", func(t *testing.T) {
		v := Null()
		assert.True(t, v.IsNull())
		assert.Equal(t, NullReasonUnset, v.NullReason())

		v2 := NullBecause(NullReasonMissingProperty)
		assert.True(t, v2.IsNull())
		assert.Equal(t, NullReasonMissingProperty, v2.NullReason())
	})

	t.Run("String", func(t *testing.T) {
		v := String("hello")
		s, ok := v.AsString()
		assert.True(t, ok)
		assert.Equal(t, "hello", s)
	})
}

func TestEqual(t *testing.T) {
	t.Run("NullEqualsNull", func(t *testing.T) {
		assert.True(t, Equal(Null(), NullBecause(NullReasonDivideByZero)))
	})

	t.Run("IntFloatCrossCompare", func(t *testing.T) {
		assert.True(t, Equal(Int(3), Float(3.0)))
		assert.False(t, Equal(Int(3), Float(3.1)))
	})

	t.Run("FloatEpsilon", func(t *testing.T) {
		assert.True(t, Equal(Float(1.0), Float(1.0+epsilon/10)))
	})

	t.Run("DifferentKindsUnequal", func(t *testing.T) {
		assert.False(t, Equal(String("3"), Int(3)))
	})

	t.Run("ListsElementwise", func(t *testing.T) {
		a := List([]Value{Int(1), String("x")})
		b := List([]Value{Int(1), String("x")})
		c := List([]Value{Int(1), String("y")})
		assert.True(t, Equal(a, b))
		assert.False(t, Equal(a, c))
	})

	t.Run("MapsByKey", func(t *testing.T) {
		a := Map(map[string]Value{"k": Int(1)})
		b := Map(map[string]Value{"k": Int(1)})
		c := Map(map[string]Value{"k": Int(2)})
		assert.True(t, Equal(a, b))
		assert.False(t, Equal(a, c))
	})

	t.Run("VertexByVIDOnly", func(t *testing.T) {
		v1 := &Vertex{VID: String("v1"), Tags: []Tag{{Name: "Person", Props: map[string]Value{"age": Int(1)}}}}
		v2 := &Vertex{VID: String("v1"), Tags: []Tag{{Name: "Person", Props: map[string]Value{"age": Int(99)}}}}
		assert.True(t, Equal(VertexValue(v1), VertexValue(v2)))
	})

	t.Run("EdgeByIdentityTuple", func(t *testing.T) {
		e1 := &Edge{Src: String("a"), Dst: String("b"), Type: "KNOWS", Rank: 0}
		e2 := &Edge{Src: String("a"), Dst: String("b"), Type: "KNOWS", Rank: 0}
		e3 := &Edge{Src: String("a"), Dst: String("b"), Type: "KNOWS", Rank: 1}
		assert.True(t, Equal(EdgeValue(e1), EdgeValue(e2)))
		assert.False(t, Equal(EdgeValue(e1), EdgeValue(e3)))
	})
}

func TestSetDedup(t *testing.T) {
	s := Set([]Value{Int(1), Int(2), Int(1), Int(2), Int(3)})
	items, ok := s.AsSet()
	assert.True(t, ok)
	assert.Len(t, items, 3)
}

func TestDataSetArityInvariant(t *testing.T) {
	t.Run("ValidRows", func(t *testing.T) {
		ds, err := NewDataSet([]string{"a", "b"}, []Row{{Int(1), Int(2)}})
		assert.NoError(t, err)
		assert.Equal(t, 0, ds.ColumnIndex("a"))
		assert.Equal(t, 1, ds.ColumnIndex("b"))
		assert.Equal(t, -1, ds.ColumnIndex("c"))
	})

	t.Run("ArityMismatchErrors", func(t *testing.T) {
		_, err := NewDataSet([]string{"a", "b"}, []Row{{Int(1)}})
		assert.Error(t, err)
	})

	t.Run("MustDataSetPanicsOnMismatch", func(t *testing.T) {
		assert.Panics(t, func() {
			MustDataSet([]string{"a"}, []Row{{Int(1), Int(2)}})
		})
	})
}

func TestExecutionResultToDataSet(t *testing.T) {
	t.Run("VerticesToDataSet", func(t *testing.T) {
		v := &Vertex{VID: String("v1")}
		res := Vertices([]*Vertex{v})
		ds := res.ToDataSet("n")
		assert.Equal(t, []string{"n"}, ds.Columns)
		assert.Len(t, ds.Rows, 1)
	})

	t.Run("CountToDataSet", func(t *testing.T) {
		res := CountResult(5)
		ds := res.ToDataSet("cnt")
		assert.Equal(t, int64(5), ds.Rows[0][0].i)
	})

	t.Run("ErrorResultIsError", func(t *testing.T) {
		res := ErrorResult("boom")
		assert.True(t, res.IsError())
		assert.Equal(t, "boom", res.ErrMsg)
	})
}

func TestDateTimeValues(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	v := DateTime(now)
	tm, ok := v.AsTime()
	assert.True(t, ok)
	assert.True(t, now.Equal(tm))
}
