package commands

import (
	"github.com/wbrown/graphql-engine/internal/storage"
)

// openStorage opens a BadgerStore at dbPath, or falls back to an in-memory
// MemStore when no path was given — handy for explain/kill demos that don't
// need a persisted database. Returns a closer that is a no-op for MemStore.
func openStorage(path string) (storage.Client, storage.SchemaClient, func() error, error) {
	if path == "" {
		mem := storage.NewMemStore()
		return mem, mem, func() error { return nil }, nil
	}
	bs, err := storage.NewBadgerStore(path)
	if err != nil {
		return nil, nil, nil, err
	}
	return bs, bs, bs.Close, nil
}
