// Package storage defines the StorageClient capability set the core
// consumes downstream, and provides two implementations: an in-memory
// store for tests and a badger-backed store for persistent deployments.
package storage

import (
	"github.com/wbrown/graphql-engine/internal/value"
)

// Direction selects which incident edges get_node_edges returns.
type Direction int

const (
	Out Direction = iota
	In
	Both
)

// Client is the minimum capability set the storage engine must provide.
// get_vertex never fails for missing vertices; scans return unspecified
// order; mutation calls report effect via the bool, structural failure via
// error.
type Client interface {
	GetVertex(space string, vid value.Value) (*value.Vertex, bool, error)
	ScanVertices(space string) ([]*value.Vertex, error)
	ScanVerticesByTag(space, tag string) ([]*value.Vertex, error)
	ScanVerticesByProp(space, index, prop string, val value.Value) ([]*value.Vertex, error)

	GetNodeEdges(space string, vid value.Value, dir Direction) ([]*value.Edge, error)
	ScanAllEdges(space string) ([]*value.Edge, error)
	ScanEdgesByType(space, edgeType string) ([]*value.Edge, error)

	InsertVertex(space string, v *value.Vertex) (bool, error)
	InsertEdge(space string, e *value.Edge) (bool, error)
	DeleteVertex(space string, vid value.Value) (bool, error)
	DeleteEdge(space string, src, dst value.Value, edgeType string, rank int64) (bool, error)
	UpdateData(space string, vid value.Value, tag string, props map[string]value.Value) (bool, error)
}
