package gis

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/geomatics-lab/landsat-ingest/common"
	"github.com/geomatics-lab/landsat-ingest/service"
	"github.com/geomatics-lab/landsat-ingest/service/log"
)

// Host commands run for each raster. {FILE}, {LAYER}, {MEMORY} and {EXTENT}
// are replaced before execution (see common.FormatBrackets).
const (
	// DefaultImportCommand loads a GDAL-readable file as a GRASS raster map
	DefaultImportCommand = "r.in.gdal input={FILE} output={LAYER} memory={MEMORY}"
	// DefaultLinkCommand registers the file as an external raster map
	// instead of copying it
	DefaultLinkCommand = "r.external input={FILE} output={LAYER}"
	// DefaultCheckCommand succeeds when the projection of the file matches
	// the current location
	DefaultCheckCommand = "r.in.gdal -j input={FILE}"
	// DefaultReprojectCommand imports the file and reprojects it to the
	// current location in one pass
	DefaultReprojectCommand = "r.import resample=bilinear resolution=value extent={EXTENT} input={FILE} output={LAYER} memory={MEMORY}"
)

// ProjectionError is returned for a raster whose projection does not match
// the current location when neither reprojection nor override was requested.
type ProjectionError struct {
	File string
}

func (e ProjectionError) Error() string {
	return fmt.Sprintf("projection of %s does not match the current location (use -r to reproject or -o to override)", e.File)
}

// ImportOptions control the projection handling of a CommandImporter.
type ImportOptions struct {
	// Override imports the raster in the current location projection
	// without checking (the import command is run with -o).
	Override bool
	// Reproject imports through the reprojection command instead of
	// failing on a projection mismatch.
	Reproject bool
	// Extent of the imported map, "input" or "region".
	Extent string
}

// CommandImporter implements RasterImporter with host commands
// (r.in.gdal, r.import, gdal_translate, raster2pgsql...).
type CommandImporter struct {
	command          string
	checkCommand     string
	reprojectCommand string
	memory           int
	options          ImportOptions
}

// NewCommandImporter creates a RasterImporter running command on the host.
// memoryMB is the cache size hint passed to the command as {MEMORY}.
func NewCommandImporter(command string, memoryMB int, options ImportOptions) *CommandImporter {
	if command == "" {
		command = DefaultImportCommand
	}
	if options.Extent == "" {
		options.Extent = "input"
	}
	return &CommandImporter{
		command:          command,
		checkCommand:     DefaultCheckCommand,
		reprojectCommand: DefaultReprojectCommand,
		memory:           memoryMB,
		options:          options,
	}
}

// Import implements RasterImporter
func (ci *CommandImporter) Import(ctx context.Context, file string, layer Layer) error {
	command := ci.command
	switch {
	case ci.options.Reproject:
		command = ci.reprojectCommand
	case ci.options.Override:
		command += " -o"
	default:
		if !ci.CheckProjection(ctx, file) {
			return ProjectionError{File: file}
		}
	}
	if !ci.options.Reproject && ci.options.Extent == "region" {
		command += " -r"
	}
	if err := ci.exec(ctx, command, file, layer.Name); err != nil {
		return fmt.Errorf("CommandImporter[%s]: %w", layer.Name, err)
	}
	return nil
}

// CheckProjection reports whether the projection of the file matches the
// current location, from the exit code of the check command.
func (ci *CommandImporter) CheckProjection(ctx context.Context, file string) bool {
	return ci.exec(ctx, ci.checkCommand, file, "") == nil
}

func (ci *CommandImporter) exec(ctx context.Context, command, file, layer string) error {
	cmdline := common.FormatBrackets(command, map[string]string{
		"FILE":   file,
		"LAYER":  layer,
		"MEMORY": strconv.Itoa(ci.memory),
		"EXTENT": ci.options.Extent,
	})
	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return service.MakeFatal(fmt.Errorf("CommandImporter: empty command"))
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	return log.Exec(ctx, cmd)
}
