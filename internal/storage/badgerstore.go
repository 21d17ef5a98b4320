package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/wbrown/graphql-engine/internal/value"
)

// BadgerStore is a Client backed by BadgerDB: badger.Options tuned for a
// read-heavy workload, db.View/db.Update transaction shape per call. Keys
// are namespaced by a one-byte prefix across two index families: vertices
// keyed by (space, vid), edges keyed by (space, src, type, rank, dst).
type BadgerStore struct {
	db *badger.DB
}

const (
	prefixVertex   byte = 'V'
	prefixEdge     byte = 'E'
	prefixSpace    byte = 'P'
	prefixTag      byte = 'T'
	prefixEdgeType byte = 'G'
	prefixIndex    byte = 'I'
	prefixUser     byte = 'U'
	prefixRole     byte = 'R'
)

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.MemTableSize = 128 << 20
	opts.BlockCacheSize = 256 << 20
	opts.IndexCacheSize = 100 << 20
	opts.DetectConflicts = false
	opts.NumCompactors = 4
	opts.ValueThreshold = 1 << 10

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func vertexKey(space string, vid value.Value) []byte {
	return append([]byte{prefixVertex}, []byte(space+"\x00"+vid.String())...)
}

func edgeKey(space string, e *value.Edge) []byte {
	return append([]byte{prefixEdge}, []byte(fmt.Sprintf("%s\x00%s\x00%s\x00%d\x00%s",
		space, e.Src.String(), e.Type, e.Rank, e.Dst.String()))...)
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encoding storage record: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, out interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return fmt.Errorf("decoding storage record: %w", err)
	}
	return nil
}

// gobVertex/gobEdge mirror value.Vertex/value.Edge with plain Go types so
// gob doesn't need to know about the unexported fields inside value.Value.
type gobProp struct {
	Key  string
	Kind value.Kind
	S    string
	I    int64
	F    float64
	B    bool
}

func toGobProps(m map[string]value.Value) []gobProp {
	out := make([]gobProp, 0, len(m))
	for k, v := range m {
		p := gobProp{Key: k, Kind: v.Kind()}
		switch v.Kind() {
		case value.KindString:
			p.S, _ = v.AsString()
		case value.KindInt:
			p.I, _ = v.AsInt()
		case value.KindFloat:
			p.F, _ = v.AsFloat()
		case value.KindBool:
			p.B, _ = v.AsBool()
		default:
			p.S = v.String()
		}
		out = append(out, p)
	}
	return out
}

func fromGobProps(props []gobProp) map[string]value.Value {
	out := make(map[string]value.Value, len(props))
	for _, p := range props {
		switch p.Kind {
		case value.KindString:
			out[p.Key] = value.String(p.S)
		case value.KindInt:
			out[p.Key] = value.Int(p.I)
		case value.KindFloat:
			out[p.Key] = value.Float(p.F)
		case value.KindBool:
			out[p.Key] = value.Bool(p.B)
		default:
			out[p.Key] = value.String(p.S)
		}
	}
	return out
}

type gobTag struct {
	Name  string
	Props []gobProp
}

type gobVertex struct {
	VID  string
	Tags []gobTag
}

func (s *BadgerStore) InsertVertex(space string, v *value.Vertex) (bool, error) {
	var existed bool
	err := s.db.Update(func(txn *badger.Txn) error {
		key := vertexKey(space, v.VID)
		if _, err := txn.Get(key); err == nil {
			existed = true
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		gv := gobVertex{VID: v.VID.String()}
		for _, t := range v.Tags {
			gv.Tags = append(gv.Tags, gobTag{Name: t.Name, Props: toGobProps(t.Props)})
		}
		data, err := encode(gv)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return false, fmt.Errorf("insert vertex: %w", err)
	}
	return !existed, nil
}

func (s *BadgerStore) GetVertex(space string, vid value.Value) (*value.Vertex, bool, error) {
	var out *value.Vertex
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(vertexKey(space, vid))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(data []byte) error {
			var gv gobVertex
			if err := decode(data, &gv); err != nil {
				return err
			}
			out = &value.Vertex{VID: vid}
			for _, t := range gv.Tags {
				out.Tags = append(out.Tags, value.Tag{Name: t.Name, Props: fromGobProps(t.Props)})
			}
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("get vertex: %w", err)
	}
	return out, out != nil, nil
}

func (s *BadgerStore) scanVertices(space string, keep func(*value.Vertex) bool) ([]*value.Vertex, error) {
	var out []*value.Vertex
	prefix := append([]byte{prefixVertex}, []byte(space+"\x00")...)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(data []byte) error {
				var gv gobVertex
				if err := decode(data, &gv); err != nil {
					return err
				}
				v := &value.Vertex{VID: value.String(gv.VID)}
				for _, t := range gv.Tags {
					v.Tags = append(v.Tags, value.Tag{Name: t.Name, Props: fromGobProps(t.Props)})
				}
				if keep == nil || keep(v) {
					out = append(out, v)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan vertices: %w", err)
	}
	return out, nil
}

func (s *BadgerStore) ScanVertices(space string) ([]*value.Vertex, error) {
	return s.scanVertices(space, nil)
}

func (s *BadgerStore) ScanVerticesByTag(space, tag string) ([]*value.Vertex, error) {
	return s.scanVertices(space, func(v *value.Vertex) bool { return v.HasTag(tag) })
}

func (s *BadgerStore) ScanVerticesByProp(space, index, prop string, val value.Value) ([]*value.Vertex, error) {
	return s.scanVertices(space, func(v *value.Vertex) bool {
		p, ok := v.Prop(prop)
		return ok && value.Equal(p, val)
	})
}

type gobEdge struct {
	Src   string
	Dst   string
	Type  string
	Rank  int64
	Props []gobProp
}

func (s *BadgerStore) InsertEdge(space string, e *value.Edge) (bool, error) {
	var existed bool
	err := s.db.Update(func(txn *badger.Txn) error {
		key := edgeKey(space, e)
		if _, err := txn.Get(key); err == nil {
			existed = true
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		ge := gobEdge{Src: e.Src.String(), Dst: e.Dst.String(), Type: e.Type, Rank: e.Rank, Props: toGobProps(e.Props)}
		data, err := encode(ge)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return false, fmt.Errorf("insert edge: %w", err)
	}
	return !existed, nil
}

func (s *BadgerStore) scanEdges(space string, keep func(*value.Edge) bool) ([]*value.Edge, error) {
	var out []*value.Edge
	prefix := append([]byte{prefixEdge}, []byte(space+"\x00")...)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(data []byte) error {
				var ge gobEdge
				if err := decode(data, &ge); err != nil {
					return err
				}
				e := &value.Edge{
					Src:   value.String(ge.Src),
					Dst:   value.String(ge.Dst),
					Type:  ge.Type,
					Rank:  ge.Rank,
					Props: fromGobProps(ge.Props),
				}
				if keep == nil || keep(e) {
					out = append(out, e)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan edges: %w", err)
	}
	return out, nil
}

func (s *BadgerStore) GetNodeEdges(space string, vid value.Value, dir Direction) ([]*value.Edge, error) {
	return s.scanEdges(space, func(e *value.Edge) bool {
		switch dir {
		case Out:
			return value.Equal(e.Src, vid)
		case In:
			return value.Equal(e.Dst, vid)
		default:
			return value.Equal(e.Src, vid) || value.Equal(e.Dst, vid)
		}
	})
}

func (s *BadgerStore) ScanAllEdges(space string) ([]*value.Edge, error) {
	return s.scanEdges(space, nil)
}

func (s *BadgerStore) ScanEdgesByType(space, edgeType string) ([]*value.Edge, error) {
	return s.scanEdges(space, func(e *value.Edge) bool { return e.Type == edgeType })
}

func (s *BadgerStore) DeleteVertex(space string, vid value.Value) (bool, error) {
	var existed bool
	err := s.db.Update(func(txn *badger.Txn) error {
		key := vertexKey(space, vid)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		existed = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, fmt.Errorf("delete vertex: %w", err)
	}
	return existed, nil
}

func (s *BadgerStore) DeleteEdge(space string, src, dst value.Value, edgeType string, rank int64) (bool, error) {
	e := &value.Edge{Src: src, Dst: dst, Type: edgeType, Rank: rank}
	var existed bool
	err := s.db.Update(func(txn *badger.Txn) error {
		key := edgeKey(space, e)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		existed = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, fmt.Errorf("delete edge: %w", err)
	}
	return existed, nil
}

func (s *BadgerStore) UpdateData(space string, vid value.Value, tag string, props map[string]value.Value) (bool, error) {
	v, ok, err := s.GetVertex(space, vid)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	found := false
	for i, t := range v.Tags {
		if t.Name == tag {
			for k, val := range props {
				v.Tags[i].Props[k] = val
			}
			found = true
			break
		}
	}
	if !found {
		v.Tags = append(v.Tags, value.Tag{Name: tag, Props: props})
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		gv := gobVertex{VID: v.VID.String()}
		for _, t := range v.Tags {
			gv.Tags = append(gv.Tags, gobTag{Name: t.Name, Props: toGobProps(t.Props)})
		}
		data, err := encode(gv)
		if err != nil {
			return err
		}
		return txn.Set(vertexKey(space, vid), data)
	})
	if err != nil {
		return false, fmt.Errorf("update data: %w", err)
	}
	return true, nil
}

func spaceKey(space string) []byte {
	return append([]byte{prefixSpace}, []byte(space)...)
}

func tagKey(space, tag string) []byte {
	return append([]byte{prefixTag}, []byte(space+"\x00"+tag)...)
}

func edgeTypeKey(space, edgeType string) []byte {
	return append([]byte{prefixEdgeType}, []byte(space+"\x00"+edgeType)...)
}

func indexKey(space, index string) []byte {
	return append([]byte{prefixIndex}, []byte(space+"\x00"+index)...)
}

func userKey(username string) []byte {
	return append([]byte{prefixUser}, []byte(username)...)
}

func roleKey(username, space string) []byte {
	return append([]byte{prefixRole}, []byte(username+"\x00"+space)...)
}

type gobUser struct {
	PasswordHash string
}

type gobRole struct {
	Role string
}

// CreateSpace implements SchemaClient, persisting a marker key so
// DropSpace/other DDL ops can check existence without scanning vertex data.
func (s *BadgerStore) CreateSpace(space string) (bool, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := spaceKey(space)
		if _, err := txn.Get(key); err == nil {
			return ErrSpaceExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, []byte{1})
	})
	if err == ErrSpaceExists {
		return false, ErrSpaceExists
	}
	if err != nil {
		return false, fmt.Errorf("create space: %w", err)
	}
	return true, nil
}

// DropSpace deletes the space marker plus every vertex, edge, tag, edge-type
// and index record namespaced under it. Badger forbids deleting while
// iterating the same prefix under one transaction's iterator, so collect
// keys first, then delete.
func (s *BadgerStore) DropSpace(space string) (bool, error) {
	prefixes := [][]byte{
		spaceKey(space),
		append([]byte{prefixVertex}, []byte(space+"\x00")...),
		append([]byte{prefixEdge}, []byte(space+"\x00")...),
		append([]byte{prefixTag}, []byte(space+"\x00")...),
		append([]byte{prefixEdgeType}, []byte(space+"\x00")...),
		append([]byte{prefixIndex}, []byte(space+"\x00")...),
	}
	var existed bool
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(spaceKey(space)); err == badger.ErrKeyNotFound {
			return ErrSpaceNotFound
		} else if err != nil {
			return err
		}
		existed = true
		for i, prefix := range prefixes {
			if i == 0 {
				if err := txn.Delete(prefix); err != nil {
					return err
				}
				continue
			}
			var keys [][]byte
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				keys = append(keys, append([]byte{}, it.Item().Key()...))
			}
			it.Close()
			for _, k := range keys {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == ErrSpaceNotFound {
		return false, ErrSpaceNotFound
	}
	if err != nil {
		return false, fmt.Errorf("drop space: %w", err)
	}
	return existed, nil
}

func (s *BadgerStore) requireSpace(txn *badger.Txn, space string) error {
	if _, err := txn.Get(spaceKey(space)); err == badger.ErrKeyNotFound {
		return ErrSpaceNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func (s *BadgerStore) CreateTag(space string, tag TagSchema) (bool, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.requireSpace(txn, space); err != nil {
			return err
		}
		data, err := encode(tag)
		if err != nil {
			return err
		}
		return txn.Set(tagKey(space, tag.Name), data)
	})
	if err == ErrSpaceNotFound {
		return false, ErrSpaceNotFound
	}
	if err != nil {
		return false, fmt.Errorf("create tag: %w", err)
	}
	return true, nil
}

func (s *BadgerStore) CreateEdgeType(space string, edgeType EdgeTypeSchema) (bool, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.requireSpace(txn, space); err != nil {
			return err
		}
		data, err := encode(edgeType)
		if err != nil {
			return err
		}
		return txn.Set(edgeTypeKey(space, edgeType.Name), data)
	})
	if err == ErrSpaceNotFound {
		return false, ErrSpaceNotFound
	}
	if err != nil {
		return false, fmt.Errorf("create edge type: %w", err)
	}
	return true, nil
}

func (s *BadgerStore) CreateIndex(space string, index IndexSchema) (bool, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.requireSpace(txn, space); err != nil {
			return err
		}
		data, err := encode(index)
		if err != nil {
			return err
		}
		return txn.Set(indexKey(space, index.Name), data)
	})
	if err == ErrSpaceNotFound {
		return false, ErrSpaceNotFound
	}
	if err != nil {
		return false, fmt.Errorf("create index: %w", err)
	}
	return true, nil
}

// RebuildIndex only confirms that the index record exists and writes
// nothing: BadgerStore's ScanVerticesByProp already scans live vertex data
// rather than a materialized index, so there is nothing to recompute.
func (s *BadgerStore) RebuildIndex(space, indexName string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(indexKey(space, indexName))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("index %q not found in space %q", indexName, space)
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BadgerStore) CreateUser(username, passwordHash string) (bool, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("user %q already exists", username)
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		data, err := encode(gobUser{PasswordHash: passwordHash})
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	return true, nil
}

func (s *BadgerStore) GrantRole(username, space, role string) (bool, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(username)); err == badger.ErrKeyNotFound {
			return fmt.Errorf("user %q not found", username)
		} else if err != nil {
			return err
		}
		data, err := encode(gobRole{Role: role})
		if err != nil {
			return err
		}
		return txn.Set(roleKey(username, space), data)
	})
	if err != nil {
		return false, fmt.Errorf("grant role: %w", err)
	}
	return true, nil
}

var _ Client = (*BadgerStore)(nil)
var _ Client = (*MemStore)(nil)
var _ SchemaClient = (*BadgerStore)(nil)
var _ SchemaClient = (*MemStore)(nil)
