package geometry

import (
	"fmt"

	"github.com/go-spatial/geom"
	geomwkt "github.com/go-spatial/geom/encoding/wkt"
	"github.com/paulsmith/gogeos/geos"
)

// GeomToGeos converts a geom.Geometry into a geos.Geometry
func GeomToGeos(g geom.Geometry) (*geos.Geometry, error) {
	wkt, err := geomwkt.EncodeString(g)
	if err != nil {
		return nil, fmt.Errorf("GeomToGeos.EncodeString: %w", err)
	}
	geometry, err := geos.FromWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("GeomToGeos.FromWKT: %w", err)
	}
	return geometry, nil
}

// GeosToGeom converts a geos.Geometry into a geom.Geometry
func GeosToGeom(g *geos.Geometry) (geom.Geometry, error) {
	wkt, err := g.ToWKT()
	if err != nil {
		return nil, fmt.Errorf("GeosToGeom.ToWKT: %w", err)
	}
	geometry, err := geomwkt.DecodeString(wkt)
	if err != nil {
		return nil, fmt.Errorf("GeosToGeom.DecodeString: %w", err)
	}
	return geometry, nil
}

// IntersectsWKT returns whether the geometry described by wkt intersects aoi
func IntersectsWKT(aoi *geos.PGeometry, wkt string) (bool, error) {
	g, err := geos.FromWKT(wkt)
	if err != nil {
		return false, fmt.Errorf("IntersectsWKT.FromWKT: %w", err)
	}
	intersects, err := aoi.Intersects(g)
	if err != nil {
		return false, fmt.Errorf("IntersectsWKT.Intersects: %w", err)
	}
	return intersects, nil
}
