// Package admin implements the DDL/administrative surface kept separate from
// the query path: create_space, create_tag, create_edge_type, create_index,
// rebuild_index, create_user and grant_role, plus the query-management trio
// (kill_query/show_queries/show_stats, in registry.go) backed by a
// process-wide QueryRegistry.
package admin

import (
	"github.com/rs/zerolog"

	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

// Admin is a thin delegate: each method holds its parameters and issues
// exactly one storage.SchemaClient call, mapping the outcome to the uniform
// ExecutionResult envelope every operator uses.
type Admin struct {
	Storage storage.SchemaClient
	Log     zerolog.Logger
}

func New(st storage.SchemaClient, log zerolog.Logger) *Admin {
	return &Admin{Storage: st, Log: log}
}

func (a *Admin) result(ok bool, err error, opName string) value.ExecutionResult {
	if err != nil {
		a.Log.Warn().Err(err).Str("op", opName).Msg("admin operation failed")
		return value.ErrorResult(err.Error())
	}
	if !ok {
		return value.ErrorResult(opName + ": no-op (target already exists or was not found)")
	}
	return value.Success()
}

func (a *Admin) CreateSpace(space string) value.ExecutionResult {
	ok, err := a.Storage.CreateSpace(space)
	return a.result(ok, err, "create_space")
}

func (a *Admin) DropSpace(space string) value.ExecutionResult {
	ok, err := a.Storage.DropSpace(space)
	return a.result(ok, err, "drop_space")
}

func (a *Admin) CreateTag(space string, tag storage.TagSchema) value.ExecutionResult {
	ok, err := a.Storage.CreateTag(space, tag)
	return a.result(ok, err, "create_tag")
}

func (a *Admin) CreateEdgeType(space string, edgeType storage.EdgeTypeSchema) value.ExecutionResult {
	ok, err := a.Storage.CreateEdgeType(space, edgeType)
	return a.result(ok, err, "create_edge_type")
}

func (a *Admin) CreateIndex(space string, index storage.IndexSchema) value.ExecutionResult {
	ok, err := a.Storage.CreateIndex(space, index)
	return a.result(ok, err, "create_index")
}

// RebuildIndex covers both the tag-index and edge-index rebuild cases,
// collapsed to one call since this domain has a single IndexSchema shape
// rather than separate tag/edge index types.
func (a *Admin) RebuildIndex(space, indexName string) value.ExecutionResult {
	ok, err := a.Storage.RebuildIndex(space, indexName)
	return a.result(ok, err, "rebuild_index")
}

func (a *Admin) CreateUser(username, passwordHash string) value.ExecutionResult {
	ok, err := a.Storage.CreateUser(username, passwordHash)
	return a.result(ok, err, "create_user")
}

func (a *Admin) GrantRole(username, space, role string) value.ExecutionResult {
	ok, err := a.Storage.GrantRole(username, space, role)
	return a.result(ok, err, "grant_role")
}
