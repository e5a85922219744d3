package provider

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/common"
)

// LocalImageProvider implements ImageProvider for local storage
type LocalImageProvider struct {
	path string
}

// Name implements ImageProvider
func (ip *LocalImageProvider) Name() string {
	return "FileSystem (" + ip.path + ")"
}

// NewLocalImageProvider creates a new ImageProvider from local storage
// Archives are expected at <path>/<year>/<month>/<day>/<sceneID>.tar.gz
func NewLocalImageProvider(path string) *LocalImageProvider {
	return &LocalImageProvider{path: path}
}

// Download implements ImageProvider
func (ip *LocalImageProvider) Download(ctx context.Context, scene *entities.Scene, localDir string) error {
	// Retrieve date of the scene from name
	sceneName := scene.EntityID
	date, err := common.GetDateFromSceneID(sceneName)
	if err != nil {
		return fmt.Errorf("LocalImageProvider: %w", err)
	}

	srcArchive := path.Join(ip.path, date.Format("2006"), date.Format("01"), date.Format("02"), sceneName+".tar.gz")
	if _, err := os.Stat(srcArchive); err != nil {
		if os.IsNotExist(err) {
			return ErrProductNotFound{srcArchive}
		}
		return fmt.Errorf("LocalImageProvider: %w", err)
	}
	if err := unarchive(srcArchive, localDir); err != nil {
		return fmt.Errorf("LocalImageProvider.Unarchive: %w", err)
	}
	return nil
}
