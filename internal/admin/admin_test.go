package admin

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/wbrown/graphql-engine/internal/storage"
	"github.com/wbrown/graphql-engine/internal/value"
)

func TestAdminCreateSpace(t *testing.T) {
	st := storage.NewMemStore()
	a := New(st, zerolog.Nop())

	res := a.CreateSpace("g1")
	assert.Equal(t, value.ResultSuccess, res.Kind)
	assert.False(t, res.IsError())
}

func TestAdminCreateSpaceDuplicateIsError(t *testing.T) {
	st := storage.NewMemStore()
	a := New(st, zerolog.Nop())

	require := assert.New(t)
	require.Equal(false, a.CreateSpace("g1").IsError())
	require.True(a.CreateSpace("g1").IsError(), "creating the same space twice must surface storage.ErrSpaceExists as an ExecutionResult error")
}

func TestAdminCreateTagRequiresSpace(t *testing.T) {
	st := storage.NewMemStore()
	a := New(st, zerolog.Nop())

	res := a.CreateTag("nosuch", storage.TagSchema{Name: "Person"})
	assert.True(t, res.IsError())
}

func TestAdminCreateTagAfterSpace(t *testing.T) {
	st := storage.NewMemStore()
	a := New(st, zerolog.Nop())
	a.CreateSpace("g1")

	res := a.CreateTag("g1", storage.TagSchema{Name: "Person"})
	assert.False(t, res.IsError())
}
