package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/geomatics-lab/landsat-ingest/common"
	"github.com/geomatics-lab/landsat-ingest/interface/gis"
	"github.com/geomatics-lab/landsat-ingest/service/log"
)

// ImportError is returned when a raster file cannot be loaded into the GIS
type ImportError struct {
	Layer string
	Err   error
}

func (e ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Layer, e.Err)
}

func (e ImportError) Unwrap() error {
	return e.Err
}

// NamingCollisionError is returned when two raster files yield the same layer
// name, or when the layer name is already taken in the registry
type NamingCollisionError struct {
	Layer string
	Files []string
}

func (e NamingCollisionError) Error() string {
	if len(e.Files) > 1 {
		return fmt.Sprintf("naming collision: layer %s named by %s", e.Layer, strings.Join(e.Files, ", "))
	}
	return fmt.Sprintf("naming collision: layer %s already exists", e.Layer)
}

// Entry maps one raster file to the layer it will be imported as
type Entry struct {
	Scene string
	File  string // path of the raster file
	Layer gis.Layer
}

// Importer loads the rasters of enumerated scenes into the GIS
type Importer struct {
	Importer gis.RasterImporter
	Registry gis.LayerRegistry // optional
}

// layerName derives the name of the layer a file is imported as.
// Band files are named <scene>_B<band>, other files keep their stem.
// The name only depends on the scene and file names: two runs over the same
// tree import the same layers.
func layerName(scene, file string) (string, int) {
	if band, ok := common.BandNumber(file); ok {
		return common.LayerName(scene, band), band
	}
	return strings.TrimSuffix(file, filepath.Ext(file)), 0
}

// Plan computes the file to layer mapping of the import, before any side
// effect. When two files of the batch yield the same layer name, the first
// one (in enumeration order) keeps the layer and each subsequent file is
// dropped from the plan with a NamingCollisionError.
func Plan(scenes []SceneFiles) ([]Entry, []NamingCollisionError) {
	entries := []Entry{}
	collisions := []NamingCollisionError{}
	layerFiles := map[string][]string{}
	for _, scene := range scenes {
		for _, file := range scene.Files {
			name, band := layerName(scene.Scene, file)
			path := filepath.Join(scene.Dir, file)
			layerFiles[name] = append(layerFiles[name], path)
			if files := layerFiles[name]; len(files) > 1 {
				collisions = append(collisions, NamingCollisionError{Layer: name, Files: files})
				continue
			}
			entries = append(entries, Entry{
				Scene: scene.Scene,
				File:  path,
				Layer: gis.Layer{Name: name, Scene: scene.Scene, Band: band, SourceFile: path},
			})
		}
	}
	return entries, collisions
}

// Run imports the planned entries one after the other.
// A failing entry is logged and does not prevent the remaining entries from
// being imported. preFailures counts the entries already rejected during
// planning so that the summary error covers the whole batch.
func (i *Importer) Run(ctx context.Context, entries []Entry, preFailures int) error {
	failures := preFailures
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ectx := log.With(ctx, "layer", entry.Layer.Name)
		if err := i.runEntry(ectx, entry); err != nil {
			log.Logger(ectx).Sugar().Errorf("%v", err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d/%d layers failed to import", failures, len(entries)+preFailures)
	}
	return nil
}

func (i *Importer) runEntry(ctx context.Context, entry Entry) error {
	log.Logger(ctx).Sugar().Infof("importing %s as %s", entry.File, entry.Layer.Name)
	if err := i.Importer.Import(ctx, entry.File, entry.Layer); err != nil {
		return ImportError{Layer: entry.Layer.Name, Err: err}
	}
	if i.Registry != nil {
		if err := i.Registry.RegisterLayer(ctx, entry.Layer); err != nil {
			var exists gis.ErrAlreadyExists
			if errors.As(err, &exists) {
				return NamingCollisionError{Layer: entry.Layer.Name, Files: []string{entry.File}}
			}
			return ImportError{Layer: entry.Layer.Name, Err: err}
		}
	}
	return nil
}

// FilterRegistered drops the planned entries whose layer name is already
// taken in the registry, returning one NamingCollisionError per dropped
// entry. Called before Run so that an existing layer is never overwritten.
func (i *Importer) FilterRegistered(ctx context.Context, entries []Entry) ([]Entry, []NamingCollisionError, error) {
	if i.Registry == nil {
		return entries, nil, nil
	}
	layers, err := i.Registry.Layers(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("FilterRegistered: %w", err)
	}
	existing := map[string]struct{}{}
	for _, layer := range layers {
		existing[layer.Name] = struct{}{}
	}
	kept := []Entry{}
	collisions := []NamingCollisionError{}
	for _, entry := range entries {
		if _, ok := existing[entry.Layer.Name]; ok {
			collisions = append(collisions, NamingCollisionError{Layer: entry.Layer.Name, Files: []string{entry.File}})
			continue
		}
		kept = append(kept, entry)
	}
	return kept, collisions, nil
}

// FprintPlan renders the file to layer mapping of the print-only mode.
// The output is deterministic for a given tree (side-effect-free preview).
func FprintPlan(w io.Writer, entries []Entry) {
	FprintPlanChecked(context.Background(), w, entries, nil)
}

// ProjectionChecker reports whether a raster matches the current location
// projection.
type ProjectionChecker interface {
	CheckProjection(ctx context.Context, file string) bool
}

// FprintPlanChecked renders the file to layer mapping with a projection-match
// column per raster. A nil checker omits the column.
func FprintPlanChecked(ctx context.Context, w io.Writer, entries []Entry, checker ProjectionChecker) {
	fmt.Fprintf(w, "%d files to import.\n", len(entries))
	scene := ""
	for _, entry := range entries {
		if entry.Scene != scene {
			scene = entry.Scene
			fmt.Fprintf(w, "%s:\n", scene)
		}
		projection := ""
		if checker != nil {
			if checker.CheckProjection(ctx, entry.File) {
				projection = " (projection ok)"
			} else {
				projection = " (projection mismatch)"
			}
		}
		fmt.Fprintf(w, "  %s -> %s%s\n", filepath.Base(entry.File), entry.Layer.Name, projection)
	}
}
