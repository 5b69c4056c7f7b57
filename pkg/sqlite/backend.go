// Package sqlite exposes the local content store while keeping its
// implementation internal.
package sqlite

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/contentdesk/internal/sqlite"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Store is the local content store. SeedSample fills an empty store with
// linked example content.
type Store interface {
	types.AttachableStore
	SeedSample(ctx context.Context) (int, error)
}

// NewStore creates a local store. The store is not attached; call Attach
// with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewStore(log)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".contentdesk",
//	})
//	defer store.Detach()
func NewStore(log *zap.Logger) Store {
	return sqlite.NewStore(sqlite.WithLogger(log))
}
