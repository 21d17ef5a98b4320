package storage

import "fmt"

// TagSchema/EdgeTypeSchema describe a declared tag or edge type's property
// names — enough for CreateTag/CreateEdgeType's bookkeeping; property types
// are left untyped (Value is already a tagged union), matching a thin
// wrapper holding parameters and issuing one storage call.
type TagSchema struct {
	Name  string
	Props []string
}

type EdgeTypeSchema struct {
	Name  string
	Props []string
}

// IndexSchema describes a declared index: which tag/prop it covers.
type IndexSchema struct {
	Name string
	Tag  string
	Prop string
}

// SchemaClient is the DDL capability set internal/admin delegates to — kept
// separate from Client (the query-path contract) since not every storage
// backend a query executes against need support schema mutation (a
// read-only replica, for instance).
type SchemaClient interface {
	CreateSpace(space string) (bool, error)
	DropSpace(space string) (bool, error)
	CreateTag(space string, tag TagSchema) (bool, error)
	CreateEdgeType(space string, edgeType EdgeTypeSchema) (bool, error)
	CreateIndex(space string, index IndexSchema) (bool, error)
	RebuildIndex(space, indexName string) (bool, error)
	CreateUser(username, passwordHash string) (bool, error)
	GrantRole(username, space, role string) (bool, error)
}

// ErrSpaceExists/ErrSpaceNotFound are the structural-failure sentinels
// admin DDL ops surface (storage failures are fatal/structural, not soft
// operator-level errors).
var (
	ErrSpaceExists   = fmt.Errorf("space already exists")
	ErrSpaceNotFound = fmt.Errorf("space not found")
)
