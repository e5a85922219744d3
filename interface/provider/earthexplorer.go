package provider

import (
	"context"
	"fmt"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/common"
	"github.com/geomatics-lab/landsat-ingest/interface/catalog/earthexplorer"
)

// EarthExplorerImageProvider implements ImageProvider for the USGS EarthExplorer download service
type EarthExplorerImageProvider struct {
	user  string
	pword string
}

// Name implements ImageProvider
func (ip *EarthExplorerImageProvider) Name() string {
	return "EarthExplorer"
}

// NewEarthExplorerImageProvider creates a new ImageProvider from the USGS EarthExplorer download service
func NewEarthExplorerImageProvider(user, pword string) *EarthExplorerImageProvider {
	return &EarthExplorerImageProvider{user: user, pword: pword}
}

// Download implements ImageProvider
func (ip *EarthExplorerImageProvider) Download(ctx context.Context, scene *entities.Scene, localDir string) error {
	url := scene.DownloadURL
	if url == "" {
		dataset := common.GetDatasetFromSceneID(scene.EntityID)
		if dataset == common.UnknownDataset {
			return fmt.Errorf("EarthExplorerImageProvider: dataset not supported: %s", scene.EntityID)
		}
		url = fmt.Sprintf(earthexplorer.DownloadURLTemplate, dataset.Code(), scene.EntityID)
	}

	if err := downloadArchiveWithAuth(ctx, url, localDir, scene.EntityID, ip.Name(), &ip.user, &ip.pword, true); err != nil {
		return fmt.Errorf("EarthExplorerImageProvider.%w", err)
	}
	return nil
}
