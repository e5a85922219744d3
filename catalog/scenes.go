package catalog

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/interface/catalog"
	"github.com/geomatics-lab/landsat-ingest/service"
	"github.com/geomatics-lab/landsat-ingest/service/geometry"
	"github.com/geomatics-lab/landsat-ingest/service/log"
)

// Catalog searches a remote scene catalog and filters the results
type Catalog struct {
	Provider catalog.ScenesProvider
}

// ScenesInventory returns the metadata records matching the query, ordered by
// acquisition date (ascending). Restartable only by re-issuing the query.
//
// Filtering policy: a record passes if cloud_cover <= ceiling AND (no AOI
// given OR the record footprint intersects the AOI). When an explicit scene ID
// list is given, both filters are bypassed entirely.
func (c *Catalog) ScenesInventory(ctx context.Context, query entities.Query) ([]*entities.Scene, error) {
	if err := query.Validate(); err != nil {
		return nil, service.MakeFatal(err)
	}

	scenes, err := c.Provider.SearchScenes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ScenesInventory.%w", err)
	}

	if !query.Explicit() {
		scenes = filterClouds(scenes, query.MaxCloudCover)
		if query.AOI != nil {
			if scenes, err = removeOutsideAOI(scenes, query); err != nil {
				return nil, fmt.Errorf("ScenesInventory.%w", err)
			}
		}
	}

	entities.SortByDate(scenes)

	log.Logger(ctx).Sugar().Debugf("%d scenes found", len(scenes))

	return scenes, nil
}

// filterClouds removes scenes whose cloud cover exceeds the ceiling.
// The remote catalog already filters on cloud cover; this guards against
// providers that return the full page regardless.
func filterClouds(scenes []*entities.Scene, maxCloudCover int) []*entities.Scene {
	j := 0
	for i, scene := range scenes {
		if scene.CloudCover <= float64(maxCloudCover) {
			scenes[j] = scenes[i]
			j++
		}
	}
	return scenes[0:j]
}

// removeOutsideAOI removes scenes that are located outside the AOI.
// The search routine works over the minimum bounding rectangle of the AOI and
// may then include acquisitions that do not overlap with the actual geometry.
// Scenes without a footprint are kept: the MBR filter is all we have for them.
func removeOutsideAOI(scenes []*entities.Scene, query entities.Query) ([]*entities.Scene, error) {
	aoi, err := geometry.GeomToGeos(query.AOI)
	if err != nil {
		return nil, fmt.Errorf("removeOutsideAOI.%w", err)
	}
	paoi := aoi.Prepare()

	j := 0
	for i, scene := range scenes {
		if scene.GeometryWKT == "" {
			scenes[j] = scenes[i]
			j++
			continue
		}
		intersects, err := geometry.IntersectsWKT(paoi, scene.GeometryWKT)
		if err != nil {
			return nil, fmt.Errorf("removeOutsideAOI.%w", err)
		}
		if intersects {
			scenes[j] = scenes[i]
			j++
		}
	}
	runtime.KeepAlive(aoi)

	return scenes[0:j], nil
}

// FprintScenes renders the record listing of the list-only mode.
// The output is deterministic for a given inventory (side-effect-free preview).
func FprintScenes(w io.Writer, scenes []*entities.Scene) {
	fmt.Fprintf(w, "%d scenes found.\n", len(scenes))
	fmt.Fprintln(w, "ID DisplayID Date Clouds")
	for _, scene := range scenes {
		fmt.Fprintf(w, "%s %s %s %g\n", scene.EntityID, scene.DisplayID,
			scene.AcquisitionDate.Format("2006-01-02"), scene.CloudCover)
	}
}
