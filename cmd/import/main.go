package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/geomatics-lab/landsat-ingest/importer"
	"github.com/geomatics-lab/landsat-ingest/interface/gis"
	"github.com/geomatics-lab/landsat-ingest/interface/gis/pg"
	"github.com/geomatics-lab/landsat-ingest/service/log"
)

type config struct {
	InputDir    string
	DirPattern  string
	FilePattern string
	PrintOnly   bool
	SkipUnpack  bool

	Override  bool
	Reproject bool
	Link      bool
	Extent    string

	DbConnection  string
	ImportCommand string
	MemoryMB      int
}

func newAppConfig() (*config, error) {
	config := config{}
	flag.StringVar(&config.InputDir, "input", "", "directory with one subdirectory or archive per scene")
	flag.StringVar(&config.FilePattern, "pattern", "", "regular expression matched anywhere in the raster file names (optional)")
	flag.StringVar(&config.DirPattern, "pattern-dir", "", "regular expression matched anywhere in the scene directory or archive names (optional)")
	flag.BoolVar(&config.PrintOnly, "p", false, "print the file to layer mapping and exit, nothing is imported")
	flag.BoolVar(&config.SkipUnpack, "n", false, "do not unpack the scene archives before importing")

	flag.BoolVar(&config.Override, "o", false, "override the projection check, rasters are imported in the current location projection")
	flag.BoolVar(&config.Reproject, "r", false, "reproject rasters whose projection does not match the current location")
	flag.BoolVar(&config.Link, "link", false, "link rasters as external maps instead of copying them")
	flag.StringVar(&config.Extent, "extent", "input", "output raster map extent, 'input' or 'region'")

	flag.StringVar(&config.DbConnection, "db", "", "connection to the postgres layer registry (optional)")
	flag.StringVar(&config.ImportCommand, "import-command", "", "host command importing one raster file, {FILE}, {LAYER}, {MEMORY} and {EXTENT} are replaced before execution (default "+gis.DefaultImportCommand+")")
	flag.IntVar(&config.MemoryMB, "memory", 300, "cache size in MB forwarded to the import command")

	flag.Parse()

	if config.InputDir == "" {
		return nil, fmt.Errorf("missing input config flag")
	}
	if config.Extent != "input" && config.Extent != "region" {
		return nil, fmt.Errorf("extent must be 'input' or 'region'")
	}
	if config.ImportCommand == "" && config.Link {
		config.ImportCommand = gis.DefaultLinkCommand
	}
	return &config, nil
}

func main() {
	ctx := context.Background()
	err := run(ctx)
	if err != nil {
		log.Fatal("error", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	config, err := newAppConfig()
	if err != nil {
		return err
	}

	// Scene archives sit directly under the input directory as the download
	// tool leaves them. They are unpacked into one directory per scene before
	// enumeration, in every mode, so that the preview sees the same rasters as
	// the import.
	if !config.SkipUnpack {
		if err := importer.UnpackRoot(config.InputDir, config.DirPattern); err != nil {
			return err
		}
	}

	scenes, err := importer.Enumerate(config.InputDir, config.DirPattern, config.FilePattern)
	if err != nil {
		return err
	}

	// Archives nested inside the scene directories are unpacked too, except in
	// print-only mode which leaves the scene directories untouched.
	if !config.PrintOnly && !config.SkipUnpack {
		for _, scene := range scenes {
			if err := importer.UnpackArchives(scene.Dir); err != nil {
				return err
			}
		}
		if scenes, err = importer.Enumerate(config.InputDir, config.DirPattern, config.FilePattern); err != nil {
			return err
		}
	}

	entries, collisions := importer.Plan(scenes)

	rasterImporter := gis.NewCommandImporter(config.ImportCommand, config.MemoryMB, gis.ImportOptions{
		Override:  config.Override,
		Reproject: config.Reproject,
		Extent:    config.Extent,
	})
	imp := importer.Importer{
		Importer: rasterImporter,
	}
	if config.DbConnection != "" {
		registry, err := pg.New(ctx, config.DbConnection)
		if err != nil {
			return fmt.Errorf("registry: %w", err)
		}
		defer registry.Close()
		imp.Registry = registry
	}

	if config.PrintOnly {
		importer.FprintPlanChecked(ctx, os.Stdout, entries, rasterImporter)
		for _, collision := range collisions {
			fmt.Fprintf(os.Stdout, "skipped: %v\n", collision)
		}
		return nil
	}

	if len(entries) == 0 && len(collisions) == 0 {
		return fmt.Errorf("no raster file matched in %s", config.InputDir)
	}

	registered, regCollisions, err := imp.FilterRegistered(ctx, entries)
	if err != nil {
		return err
	}
	collisions = append(collisions, regCollisions...)
	for _, collision := range collisions {
		log.Logger(ctx).Sugar().Errorf("%v", collision)
	}

	return imp.Run(ctx, registered, len(collisions))
}
