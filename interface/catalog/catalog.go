package catalog

import (
	"context"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
)

// ScenesProvider is the interface of a remote scene catalog
type ScenesProvider interface {
	// SearchScenes returns the metadata records matching the query
	SearchScenes(ctx context.Context, query entities.Query) ([]*entities.Scene, error)
}

// Authenticator is implemented by catalogs requiring a session
type Authenticator interface {
	// Login opens a session. It must be called before SearchScenes.
	Login(ctx context.Context) error
	// Logout tears the session down
	Logout(ctx context.Context) error
}
