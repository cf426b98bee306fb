package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/paulmach/orb/geojson"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/geo"
	"consumer-flex-app/internal/transform"
)

// regionValue is one choropleth feature before styling.
type regionValue struct {
	code   string
	name   string
	value  dfs.Float
	energy dfs.Float
	geom   *geojson.Geometry
}

// WriteRegionalGeoJSON writes the choropleth for one event date: each
// region's mean day-ahead forecast MW, shaded along the blue ramp.
func WriteRegionalGeoJSON(w io.Writer, rows []transform.RegionalFlexRow, date string) error {
	values := make([]regionValue, 0)
	for _, row := range rows {
		if row.Date != date {
			continue
		}
		values = append(values, regionValue{
			code:  row.RegionCode,
			name:  row.RegionName,
			value: row.MeanMW,
			geom:  row.Geometry,
		})
	}
	if len(values) == 0 {
		return fmt.Errorf("no regional rows for %s", date)
	}
	return writeChoropleth(w, values, false)
}

// WriteCumulativeGeoJSON writes the all-events choropleth: median MW per
// region plus the total energy each contributed.
func WriteCumulativeGeoJSON(w io.Writer, rows []transform.RegionalCumulativeRow) error {
	values := make([]regionValue, 0, len(rows))
	for _, row := range rows {
		values = append(values, regionValue{
			code:   row.RegionCode,
			name:   row.RegionName,
			value:  row.MedianMW,
			energy: row.EnergyMWh,
			geom:   row.Geometry,
		})
	}
	if len(values) == 0 {
		return errors.New("no regional rows to render")
	}
	return writeChoropleth(w, values, true)
}

// writeChoropleth reprojects the boundaries to longitude/latitude, orders
// regions by value and assigns each a step on the blue ramp, palest first.
func writeChoropleth(w io.Writer, values []regionValue, overall bool) error {
	sort.SliceStable(values, func(i, j int) bool {
		return sortValue(values[i].value) < sortValue(values[j].value)
	})

	fc := geojson.NewFeatureCollection()
	for i, rv := range values {
		if rv.geom == nil {
			return fmt.Errorf("region %s has no geometry", rv.code)
		}
		projected := geo.ReprojectGeometry(rv.geom)
		feature := geojson.NewFeature(projected.Geometry())
		r, g, b := bluesRamp(i, len(values))
		feature.Properties = geojson.Properties{
			"Name":       rv.code,
			"LongName":   rv.name,
			"value":      intValue(rv.value),
			"fill_color": []int{r, g, b},
		}
		if overall {
			feature.Properties["flex_mwh"] = rv.energy
		}
		fc.Append(feature)
	}

	payload, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// sortValue orders undefined values after every defined one.
func sortValue(v dfs.Float) float64 {
	if v.IsNaN() {
		return math.Inf(1)
	}
	return v.Float64()
}

// intValue truncates toward zero; undefined values display as zero.
func intValue(v dfs.Float) int {
	if v.IsNaN() {
		return 0
	}
	return int(v.Float64())
}

// bluesAnchors are the ColorBrewer 9-class Blues stops, palest to darkest.
var bluesAnchors = [][3]uint8{
	{0xf7, 0xfb, 0xff},
	{0xde, 0xeb, 0xf7},
	{0xc6, 0xdb, 0xef},
	{0x9e, 0xca, 0xe1},
	{0x6b, 0xae, 0xd6},
	{0x42, 0x92, 0xc6},
	{0x21, 0x71, 0xb5},
	{0x08, 0x51, 0x9c},
	{0x08, 0x30, 0x6b},
}

// bluesRamp picks the i-th of n evenly spaced colours along the ramp.
func bluesRamp(i, n int) (r, g, b int) {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	pos := t * float64(len(bluesAnchors)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	lerp := func(a, b uint8) int {
		return int(math.Round(float64(a) + frac*(float64(b)-float64(a))))
	}
	return lerp(bluesAnchors[lo][0], bluesAnchors[hi][0]),
		lerp(bluesAnchors[lo][1], bluesAnchors[hi][1]),
		lerp(bluesAnchors[lo][2], bluesAnchors[hi][2])
}
