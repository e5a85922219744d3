package provider

import (
	"context"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
)

// ImageProvider is the interface of an image download service
type ImageProvider interface {
	// Download an image to the given localDir
	// scene.EntityID is for example LC81391162018338LGN00
	// localDir is the directory where the image files will be stored
	Download(ctx context.Context, scene *entities.Scene, localDir string) error

	// Name of the provider
	Name() string
}
