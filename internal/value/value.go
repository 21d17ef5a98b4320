// Package value defines the tagged-union data model the execution engine
// passes between operators: Value, Vertex, Edge, Path, DataSet and the
// ExecutionResult envelope every operator produces.
package value

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// NullReason records why a value is Null, for diagnostics — not part of
// equality or ordering.
type NullReason int

const (
	NullReasonUnset NullReason = iota
	NullReasonMissingProperty
	NullReasonDivideByZero
	NullReasonTypeMismatch
	NullReasonOutOfRange
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindDate
	KindTime
	KindDateTime
	KindDuration
	KindList
	KindMap
	KindSet
	KindVertex
	KindEdge
	KindPath
	KindDataSet
	KindGeography
)

// Value is the tagged union every row cell and bound variable holds.
type Value struct {
	kind       Kind
	nullReason NullReason
	i          int64
	f          float64
	b          bool
	s          string
	t          time.Time
	dur        time.Duration
	list       []Value
	m          map[string]Value
	set        []Value
	vertex     *Vertex
	edge       *Edge
	path       *Path
	dataset    *DataSet
	geo        string
}

func Null() Value                     { return Value{kind: KindNull, nullReason: NullReasonUnset} }
func NullBecause(r NullReason) Value  { return Value{kind: KindNull, nullReason: r} }
func Int(i int64) Value               { return Value{kind: KindInt, i: i} }
func Float(f float64) Value           { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value               { return Value{kind: KindBool, b: b} }
func String(s string) Value           { return Value{kind: KindString, s: s} }
func Date(t time.Time) Value          { return Value{kind: KindDate, t: t} }
func Time(t time.Time) Value          { return Value{kind: KindTime, t: t} }
func DateTime(t time.Time) Value      { return Value{kind: KindDateTime, t: t} }
func Duration(d time.Duration) Value  { return Value{kind: KindDuration, dur: d} }
func List(items []Value) Value        { return Value{kind: KindList, list: items} }
func Map(m map[string]Value) Value    { return Value{kind: KindMap, m: m} }
func Set(items []Value) Value         { return Value{kind: KindSet, set: dedupValues(items)} }
func VertexValue(v *Vertex) Value     { return Value{kind: KindVertex, vertex: v} }
func EdgeValue(e *Edge) Value         { return Value{kind: KindEdge, edge: e} }
func PathValue(p *Path) Value         { return Value{kind: KindPath, path: p} }
func DataSetValue(d *DataSet) Value   { return Value{kind: KindDataSet, dataset: d} }
func Geography(wkt string) Value      { return Value{kind: KindGeography, geo: wkt} }

func (v Value) Kind() Kind            { return v.kind }
func (v Value) IsNull() bool          { return v.kind == KindNull }
func (v Value) NullReason() NullReason { return v.nullReason }
func (v Value) AsInt() (int64, bool)  { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool) {
	if v.kind == KindFloat {
		return v.f, true
	}
	if v.kind == KindInt {
		return float64(v.i), true
	}
	return 0, false
}
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsTime() (time.Time, bool) {
	ok := v.kind == KindDate || v.kind == KindTime || v.kind == KindDateTime
	return v.t, ok
}
func (v Value) AsDuration() (time.Duration, bool) { return v.dur, v.kind == KindDuration }
func (v Value) AsList() ([]Value, bool)           { return v.list, v.kind == KindList }
func (v Value) AsSet() ([]Value, bool)            { return v.set, v.kind == KindSet }
func (v Value) AsMap() (map[string]Value, bool)   { return v.m, v.kind == KindMap }
func (v Value) AsVertex() (*Vertex, bool)          { return v.vertex, v.kind == KindVertex }
func (v Value) AsEdge() (*Edge, bool)              { return v.edge, v.kind == KindEdge }
func (v Value) AsPath() (*Path, bool)              { return v.path, v.kind == KindPath }
func (v Value) AsDataSet() (*DataSet, bool)        { return v.dataset, v.kind == KindDataSet }

func dedupValues(items []Value) []Value {
	out := make([]Value, 0, len(items))
	for _, it := range items {
		dup := false
		for _, seen := range out {
			if Equal(it, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return out
}

// epsilon bounds float equality for deep property comparison.
const epsilon = 1e-9

// Equal implements the deep, type-aware equality the pattern matcher and
// Dedup/Aggregate group-by keys rely on: same types by value, floats within
// epsilon, Null == Null, Int and Float compared numerically, other mixed
// types unequal.
func Equal(a, b Value) bool {
	if a.kind == KindNull && b.kind == KindNull {
		return true
	}
	if a.kind != b.kind {
		// Int/Float cross-comparison is allowed since Cypher numeric
		// literals don't distinguish the two at the grammar level.
		if af, aok := a.AsFloat(); aok {
			if bf, bok := b.AsFloat(); bok {
				return math.Abs(af-bf) < epsilon
			}
		}
		return false
	}
	switch a.kind {
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return math.Abs(a.f-b.f) < epsilon
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindDate, KindTime, KindDateTime:
		return a.t.Equal(b.t)
	case KindDuration:
		return a.dur == b.dur
	case KindGeography:
		return a.geo == b.geo
	case KindList, KindSet:
		al, bl := a.list, b.list
		if a.kind == KindSet {
			al, bl = a.set, b.set
		}
		if len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !Equal(al[i], bl[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, v := range a.m {
			bv, ok := b.m[k]
			if !ok || !Equal(v, bv) {
				return false
			}
		}
		return true
	case KindVertex:
		return a.vertex != nil && b.vertex != nil && Equal(a.vertex.VID, b.vertex.VID)
	case KindEdge:
		return a.edge != nil && b.edge != nil &&
			Equal(a.edge.Src, b.edge.Src) && Equal(a.edge.Dst, b.edge.Dst) &&
			a.edge.Type == b.edge.Type && a.edge.Rank == b.edge.Rank
	}
	return false
}

// Compare defines the total order over Value used by Sort/TopN. Null sorts
// first. Cross-kind comparisons fall back to a stable kind ordering so Sort
// never panics on heterogeneous columns.
func Compare(a, b Value) int {
	if a.kind == KindNull && b.kind == KindNull {
		return 0
	}
	if a.kind == KindNull {
		return -1
	}
	if b.kind == KindNull {
		return 1
	}
	if af, aok := a.AsFloat(); aok {
		if bf, bok := b.AsFloat(); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if a.kind == KindString && b.kind == KindString {
		switch {
		case a.s < b.s:
			return -1
		case a.s > b.s:
			return 1
		default:
			return 0
		}
	}
	if a.kind == KindBool && b.kind == KindBool {
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	}
	if (a.kind == KindDate || a.kind == KindTime || a.kind == KindDateTime) && a.kind == b.kind {
		if a.t.Before(b.t) {
			return -1
		}
		if a.t.After(b.t) {
			return 1
		}
		return 0
	}
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	return 0
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindString:
		return v.s
	case KindDate, KindTime, KindDateTime:
		return v.t.String()
	case KindDuration:
		return v.dur.String()
	case KindVertex:
		return fmt.Sprintf("Vertex(%s)", v.vertex.VID)
	case KindEdge:
		return fmt.Sprintf("Edge(%s-[%s]->%s)", v.edge.Src, v.edge.Type, v.edge.Dst)
	case KindPath:
		return fmt.Sprintf("Path(%d steps)", len(v.path.Steps))
	case KindList:
		return fmt.Sprintf("%v", v.list)
	case KindSet:
		return fmt.Sprintf("%v", v.set)
	case KindMap:
		return fmt.Sprintf("%v", v.m)
	case KindDataSet:
		return v.dataset.String()
	case KindGeography:
		return v.geo
	}
	return "?"
}

// SortValues sorts a slice of Values in place using Compare; exposed so the
// pattern ResultBuilder and GetNeighbors can produce a stable, deduplicated
// ordering without depending on operator internals.
func SortValues(vs []Value) {
	sort.SliceStable(vs, func(i, j int) bool { return Compare(vs[i], vs[j]) < 0 })
}

// DedupValues returns vs with adjacent-after-sort duplicates removed,
// preserving the first occurrence's identity.
func DedupValues(vs []Value) []Value {
	SortValues(vs)
	out := vs[:0:0]
	for i, v := range vs {
		if i == 0 || !Equal(v, vs[i-1]) {
			out = append(out, v)
		}
	}
	return out
}
