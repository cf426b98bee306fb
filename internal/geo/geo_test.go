package geo

import (
	"testing"

	"github.com/paulmach/orb"
)

const boundaryFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"Name": "_C", "LongName": "London"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[530000,180000],[540000,180000],[540000,190000],[530000,190000],[530000,180000]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"Name": "_A", "LongName": "East England"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[560000,230000],[590000,230000],[590000,260000],[560000,260000],[560000,230000]]]
      }
    }
  ]
}`

func TestParseRegionsSortsByCode(t *testing.T) {
	regions, err := ParseRegions([]byte(boundaryFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Code != "_A" || regions[1].Code != "_C" {
		t.Fatalf("expected codes [_A _C], got [%s %s]", regions[0].Code, regions[1].Code)
	}
	if regions[0].Name != "East England" {
		t.Fatalf("expected display name East England, got %q", regions[0].Name)
	}
}

func TestParseRegionsRejectsMissingCode(t *testing.T) {
	bad := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0,0]}}]}`
	if _, err := ParseRegions([]byte(bad)); err == nil {
		t.Fatal("expected an error for a feature without a licence code")
	}
}

func TestReprojectToWGS84LandsInsideGreatBritain(t *testing.T) {
	regions, err := ParseRegions([]byte(boundaryFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	projected := ReprojectToWGS84(regions)
	for _, r := range projected {
		c := Centroid(r)
		if c[0] < -9 || c[0] > 2 || c[1] < 49 || c[1] > 61 {
			t.Fatalf("region %s centroid %v outside Great Britain", r.Code, c)
		}
	}
}

func TestReprojectLeavesInputUntouched(t *testing.T) {
	regions, err := ParseRegions([]byte(boundaryFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	before := regions[0].Geometry.Geometry().(orb.Polygon)[0][0]
	_ = ReprojectToWGS84(regions)
	after := regions[0].Geometry.Geometry().(orb.Polygon)[0][0]
	if before != after {
		t.Fatalf("input geometry mutated: %v became %v", before, after)
	}
}
