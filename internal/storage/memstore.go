package storage

import (
	"fmt"
	"sync"

	"github.com/wbrown/graphql-engine/internal/value"
)

// MemStore is a simple in-process Client, used by unit tests and small
// demos. It never fails GetVertex for missing vertices, per the storage
// contract.
type MemStore struct {
	mu        sync.RWMutex
	vertices  map[string]map[string]*value.Vertex // space -> vid.String() -> vertex
	edges     map[string][]*value.Edge            // space -> edges
	spaces    map[string]bool
	tags      map[string]map[string]TagSchema
	edgeTypes map[string]map[string]EdgeTypeSchema
	indexes   map[string]map[string]IndexSchema
	users     map[string]string // username -> password hash
	roles     map[string]map[string]string // username -> space -> role
}

func NewMemStore() *MemStore {
	return &MemStore{
		vertices:  make(map[string]map[string]*value.Vertex),
		edges:     make(map[string][]*value.Edge),
		spaces:    make(map[string]bool),
		tags:      make(map[string]map[string]TagSchema),
		edgeTypes: make(map[string]map[string]EdgeTypeSchema),
		indexes:   make(map[string]map[string]IndexSchema),
		users:     make(map[string]string),
		roles:     make(map[string]map[string]string),
	}
}

// CreateSpace implements SchemaClient: registers the space and initializes
// its vertex/edge storage, a single-storage-call shape applied to an
// in-memory backend.
func (s *MemStore) CreateSpace(space string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spaces[space] {
		return false, ErrSpaceExists
	}
	s.spaces[space] = true
	s.vertices[space] = make(map[string]*value.Vertex)
	s.edges[space] = nil
	return true, nil
}

func (s *MemStore) DropSpace(space string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.spaces[space] {
		return false, ErrSpaceNotFound
	}
	delete(s.spaces, space)
	delete(s.vertices, space)
	delete(s.edges, space)
	delete(s.tags, space)
	delete(s.edgeTypes, space)
	delete(s.indexes, space)
	return true, nil
}

func (s *MemStore) CreateTag(space string, tag TagSchema) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.spaces[space] {
		return false, ErrSpaceNotFound
	}
	if s.tags[space] == nil {
		s.tags[space] = make(map[string]TagSchema)
	}
	s.tags[space][tag.Name] = tag
	return true, nil
}

func (s *MemStore) CreateEdgeType(space string, edgeType EdgeTypeSchema) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.spaces[space] {
		return false, ErrSpaceNotFound
	}
	if s.edgeTypes[space] == nil {
		s.edgeTypes[space] = make(map[string]EdgeTypeSchema)
	}
	s.edgeTypes[space][edgeType.Name] = edgeType
	return true, nil
}

func (s *MemStore) CreateIndex(space string, index IndexSchema) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.spaces[space] {
		return false, ErrSpaceNotFound
	}
	if s.indexes[space] == nil {
		s.indexes[space] = make(map[string]IndexSchema)
	}
	s.indexes[space][index.Name] = index
	return true, nil
}

// RebuildIndex is a no-op for MemStore: ScanVerticesByProp always scans
// live data, so there is nothing stale to rebuild. Kept for interface
// parity with BadgerStore, whose RebuildIndex likewise only checks that
// the index exists.
func (s *MemStore) RebuildIndex(space, indexName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.indexes[space][indexName]; !ok {
		return false, fmt.Errorf("index %q not found in space %q", indexName, space)
	}
	return true, nil
}

func (s *MemStore) CreateUser(username, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return false, fmt.Errorf("user %q already exists", username)
	}
	s.users[username] = passwordHash
	return true, nil
}

func (s *MemStore) GrantRole(username, space, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return false, fmt.Errorf("user %q not found", username)
	}
	if s.roles[username] == nil {
		s.roles[username] = make(map[string]string)
	}
	s.roles[username][space] = role
	return true, nil
}

func (s *MemStore) GetVertex(space string, vid value.Value) (*value.Vertex, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs, ok := s.vertices[space]
	if !ok {
		return nil, false, nil
	}
	v, ok := vs[vid.String()]
	return v, ok, nil
}

func (s *MemStore) ScanVertices(space string) ([]*value.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*value.Vertex, 0, len(s.vertices[space]))
	for _, v := range s.vertices[space] {
		out = append(out, v)
	}
	return out, nil
}

func (s *MemStore) ScanVerticesByTag(space, tag string) ([]*value.Vertex, error) {
	all, _ := s.ScanVertices(space)
	out := make([]*value.Vertex, 0, len(all))
	for _, v := range all {
		if v.HasTag(tag) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemStore) ScanVerticesByProp(space, index, prop string, val value.Value) ([]*value.Vertex, error) {
	all, _ := s.ScanVertices(space)
	out := make([]*value.Vertex, 0, len(all))
	for _, v := range all {
		if p, ok := v.Prop(prop); ok && value.Equal(p, val) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemStore) GetNodeEdges(space string, vid value.Value, dir Direction) ([]*value.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*value.Edge, 0)
	for _, e := range s.edges[space] {
		switch dir {
		case Out:
			if value.Equal(e.Src, vid) {
				out = append(out, e)
			}
		case In:
			if value.Equal(e.Dst, vid) {
				out = append(out, e)
			}
		default: // Both
			if value.Equal(e.Src, vid) || value.Equal(e.Dst, vid) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *MemStore) ScanAllEdges(space string) ([]*value.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*value.Edge, len(s.edges[space]))
	copy(out, s.edges[space])
	return out, nil
}

func (s *MemStore) ScanEdgesByType(space, edgeType string) ([]*value.Edge, error) {
	all, _ := s.ScanAllEdges(space)
	out := make([]*value.Edge, 0, len(all))
	for _, e := range all {
		if e.Type == edgeType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemStore) InsertVertex(space string, v *value.Vertex) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vertices[space] == nil {
		s.vertices[space] = make(map[string]*value.Vertex)
	}
	key := v.VID.String()
	if _, exists := s.vertices[space][key]; exists {
		return false, nil
	}
	s.vertices[space][key] = v
	return true, nil
}

func (s *MemStore) InsertEdge(space string, e *value.Edge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.edges[space] {
		if value.Equal(existing.Src, e.Src) && value.Equal(existing.Dst, e.Dst) &&
			existing.Type == e.Type && existing.Rank == e.Rank {
			return false, nil
		}
	}
	s.edges[space] = append(s.edges[space], e)
	return true, nil
}

func (s *MemStore) DeleteVertex(space string, vid value.Value) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs, ok := s.vertices[space]
	if !ok {
		return false, nil
	}
	key := vid.String()
	if _, exists := vs[key]; !exists {
		return false, nil
	}
	delete(vs, key)
	return true, nil
}

func (s *MemStore) DeleteEdge(space string, src, dst value.Value, edgeType string, rank int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edges := s.edges[space]
	for i, e := range edges {
		if value.Equal(e.Src, src) && value.Equal(e.Dst, dst) && e.Type == edgeType && e.Rank == rank {
			s.edges[space] = append(edges[:i], edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) UpdateData(space string, vid value.Value, tag string, props map[string]value.Value) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs, ok := s.vertices[space]
	if !ok {
		return false, fmt.Errorf("space %q not found", space)
	}
	v, ok := vs[vid.String()]
	if !ok {
		return false, nil
	}
	for i, t := range v.Tags {
		if t.Name == tag {
			for k, val := range props {
				v.Tags[i].Props[k] = val
			}
			return true, nil
		}
	}
	v.Tags = append(v.Tags, value.Tag{Name: tag, Props: props})
	return true, nil
}
