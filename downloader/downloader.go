package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/interface/provider"
	"github.com/geomatics-lab/landsat-ingest/service"
	"github.com/geomatics-lab/landsat-ingest/service/log"
)

// DownloadError is returned when a scene cannot be retrieved from any provider
type DownloadError struct {
	Scene string
	Err   error
}

func (e DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Scene, e.Err)
}

func (e DownloadError) Unwrap() error {
	return e.Err
}

// Downloader retrieves scenes with the first successful image provider
type Downloader struct {
	Providers []provider.ImageProvider
	OutputDir string
}

// ProcessScene downloads a scene to OutputDir/<entityID>.
// A scene is complete iff that directory exists: the download happens in a
// temporary directory that is renamed into place at the very end, so an
// interrupted run never leaves a partial scene directory behind.
// If the directory already exists, the scene is skipped.
func (d *Downloader) ProcessScene(ctx context.Context, scene *entities.Scene) error {
	sceneDir := filepath.Join(d.OutputDir, scene.EntityID)
	if _, err := os.Stat(sceneDir); err == nil {
		log.Logger(ctx).Sugar().Infof("%s already downloaded, skipping", scene.EntityID)
		return nil
	} else if !os.IsNotExist(err) {
		return service.MakeTemporary(fmt.Errorf("stat %s: %w", sceneDir, err))
	}

	// A stale archive from an interrupted run is worthless, the scene is fetched again
	os.Remove(filepath.Join(d.OutputDir, scene.EntityID+".tar.gz"))

	// Working dir, on the same filesystem as the final directory
	workdir := filepath.Join(d.OutputDir, "."+uuid.New().String())
	if err := os.MkdirAll(workdir, 0766); err != nil {
		return service.MakeTemporary(fmt.Errorf("make directory %s: %w", workdir, err))
	}
	defer os.RemoveAll(workdir)

	// Download with the first successful imageProvider
	log.Logger(ctx).Sugar().Infof("downloading %s", scene.EntityID)
	var err error
	for _, imageProvider := range d.Providers {
		e := imageProvider.Download(ctx, scene, workdir)
		if err = service.MergeErrors(false, err, e); err == nil {
			break
		}
		log.Logger(ctx).Sugar().Warnf("%s: %v", imageProvider.Name(), e)
	}
	if err != nil {
		return DownloadError{Scene: scene.EntityID, Err: err}
	}

	if err := os.Rename(workdir, sceneDir); err != nil {
		return service.MakeTemporary(fmt.Errorf("rename %s: %w", sceneDir, err))
	}
	log.Logger(ctx).Sugar().Infof("%s downloaded", scene.EntityID)
	return nil
}

// ProcessScenes downloads the scenes one after the other.
// A scene failure is logged and does not prevent the remaining scenes from
// being downloaded. If any scene failed, a summary error is returned.
func (d *Downloader) ProcessScenes(ctx context.Context, scenes []*entities.Scene) error {
	failures := 0
	for _, scene := range scenes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sctx := log.With(ctx, "scene", scene.EntityID)
		if err := d.ProcessScene(sctx, scene); err != nil {
			log.Logger(sctx).Sugar().Errorf("%v", err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d/%d scenes failed to download", failures, len(scenes))
	}
	return nil
}
