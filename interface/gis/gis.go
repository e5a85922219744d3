package gis

import (
	"context"
	"fmt"
)

// Layer is a raster layer of the GIS, usually one band of a scene
type Layer struct {
	Name       string `json:"name"`
	Scene      string `json:"scene"`
	Band       int    `json:"band"`
	SourceFile string `json:"source_file"`
}

type ErrAlreadyExists struct {
	Type, ID string
}

func (e ErrAlreadyExists) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Type, e.ID)
}

type ErrNotFound struct {
	Type, ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Type, e.ID)
}

// RasterImporter loads a raster file into the GIS under the given layer
type RasterImporter interface {
	Import(ctx context.Context, file string, layer Layer) error
}

// LayerRegistry records the layers known to the GIS.
// RegisterLayer returns ErrAlreadyExists when the layer name is taken.
type LayerRegistry interface {
	RegisterLayer(ctx context.Context, layer Layer) error
	Layers(ctx context.Context, pattern string) ([]Layer, error)
	Close() error
}
