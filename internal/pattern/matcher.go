package pattern

import (
	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

// NodePattern is a MATCH-clause vertex pattern: zero or more tag labels
// (OR-matched) and zero or more property equalities (AND-matched).
type NodePattern struct {
	Tags  []string
	Props map[string]value.Value
}

// EdgePattern is a MATCH-clause relationship pattern: the same OR-labels /
// AND-properties shape, over edge types instead of tags.
type EdgePattern struct {
	Types []string
	Props map[string]value.Value
}

// Matcher is the pattern matcher: label/property filters over vertices and
// edges, built on the storage scan contract.
type Matcher struct {
	Storage storage.Client
	Space   string
}

func NewMatcher(st storage.Client, space string) *Matcher {
	return &Matcher{Storage: st, Space: space}
}

// FindStartVertices scans every vertex in the space and keeps those matching
// all pattern labels (OR-within-pattern) and all pattern properties
// (AND-within-pattern). An empty pattern (no tags, no props) matches every
// vertex: get_all_vertices wires to scan_vertices rather than returning
// empty.
func (m *Matcher) FindStartVertices(pat NodePattern) ([]*value.Vertex, error) {
	vertices, err := m.Storage.ScanVertices(m.Space)
	if err != nil {
		return nil, err
	}
	var out []*value.Vertex
	for _, v := range vertices {
		if MatchesVertex(v, pat) {
			out = append(out, v)
		}
	}
	return out, nil
}

// MatchesVertex reports whether v satisfies pat: every pattern property must
// equal the vertex's merged property value (deep equality), and if any
// tags are named at least one must be present on v.
func MatchesVertex(v *value.Vertex, pat NodePattern) bool {
	if len(pat.Tags) > 0 {
		matched := false
		for _, t := range pat.Tags {
			if v.HasTag(t) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(pat.Props) > 0 {
		merged := v.MergedProps()
		for k, want := range pat.Props {
			got, ok := merged[k]
			if !ok || !value.Equal(got, want) {
				return false
			}
		}
	}
	return true
}

// MatchesEdge reports whether e satisfies pat under the same OR-types /
// AND-properties rule.
func MatchesEdge(e *value.Edge, pat EdgePattern) bool {
	if len(pat.Types) > 0 {
		matched := false
		for _, t := range pat.Types {
			if e.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for k, want := range pat.Props {
		got, ok := e.Prop(k)
		if !ok || !value.Equal(got, want) {
			return false
		}
	}
	return true
}

// FilterEdgesByTypes keeps edges whose type is one of types (OR); an empty
// types list is a no-op filter (keeps everything).
func FilterEdgesByTypes(edges []*value.Edge, types []string) []*value.Edge {
	if len(types) == 0 {
		return edges
	}
	out := make([]*value.Edge, 0, len(edges))
	for _, e := range edges {
		for _, t := range types {
			if e.Type == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// FilterEdgesByProperties keeps edges matching every (prop, value) pair
// (AND); an empty props map is a no-op filter.
func FilterEdgesByProperties(edges []*value.Edge, props map[string]value.Value) []*value.Edge {
	if len(props) == 0 {
		return edges
	}
	out := make([]*value.Edge, 0, len(edges))
	for _, e := range edges {
		ok := true
		for k, want := range props {
			got, found := e.Prop(k)
			if !found || !value.Equal(got, want) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}
