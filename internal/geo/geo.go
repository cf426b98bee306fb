package geo

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"github.com/wroge/wgs84"
)

// Region is one DNO licence area from the ESO boundary dataset.
type Region struct {
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	Geometry *geojson.Geometry `json:"geometry"`
}

// ParseRegions decodes the boundary FeatureCollection. The dataset keys
// areas by the short licence code in the "Name" property and carries the
// display name in "LongName". Output is sorted by code.
func ParseRegions(data []byte) ([]Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode boundary feature collection: %w", err)
	}
	regions := make([]Region, 0, len(fc.Features))
	for i, feature := range fc.Features {
		if feature.Geometry == nil {
			return nil, fmt.Errorf("boundary feature %d has no geometry", i)
		}
		code, _ := feature.Properties["Name"].(string)
		if code == "" {
			return nil, fmt.Errorf("boundary feature %d has no licence code", i)
		}
		name, _ := feature.Properties["LongName"].(string)
		regions = append(regions, Region{
			Code:     code,
			Name:     name,
			Geometry: geojson.NewGeometry(feature.Geometry),
		})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Code < regions[j].Code })
	return regions, nil
}

// britishNationalGrid converts EPSG:27700 easting/northing into EPSG:4326
// longitude/latitude.
var britishNationalGrid = wgs84.Transform(wgs84.EPSG().Code(27700), wgs84.EPSG().Code(4326))

// ReprojectToWGS84 returns a copy of regions with geometries converted from
// the planar British National Grid to longitude/latitude. Geometries are
// cloned first; the input slice is left untouched.
func ReprojectToWGS84(regions []Region) []Region {
	out := make([]Region, len(regions))
	for i, r := range regions {
		r.Geometry = ReprojectGeometry(r.Geometry)
		out[i] = r
	}
	return out
}

// ReprojectGeometry converts one geometry from the British National Grid to
// longitude/latitude. The input is cloned, never mutated.
func ReprojectGeometry(g *geojson.Geometry) *geojson.Geometry {
	cloned := orb.Clone(g.Geometry())
	return geojson.NewGeometry(project.Geometry(cloned, ToWGS84))
}

// ToWGS84 converts a single British National Grid point to
// longitude/latitude.
func ToWGS84(p orb.Point) orb.Point {
	lon, lat, _ := britishNationalGrid(p[0], p[1], 0)
	return orb.Point{lon, lat}
}

// Centroid returns the planar centroid of the region's geometry. Centroids
// are meaningful in the projected frame, so compute them before reprojecting.
func Centroid(r Region) orb.Point {
	point, _ := planar.CentroidArea(r.Geometry.Geometry())
	return point
}
