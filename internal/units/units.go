package units

import (
	"errors"
	"fmt"
)

// ErrUnknownUnit is returned when a conversion names a unit that is not in
// the table.
var ErrUnknownUnit = errors.New("unknown energy unit")

// wattHoursPer holds how many watt-hours one of each unit is worth. All
// conversions go through the Wh base, so any pair of labels converts.
var wattHoursPer = map[string]float64{
	"Wh":  1,
	"kWh": 1_000,
	"MWh": 1_000_000,
	"GWh": 1_000_000_000,
	// Charging a 40 kWh EV battery from empty to full.
	"EV Charge": 40_000,
	// A 3 kW kettle boiling one large cup for 52 seconds.
	"Cup of Tea": 3_000 * 52.0 / 3_600,
	// Typical GB household electricity use, 3,100 kWh a year spread evenly.
	"Home per hour": 3_100_000.0 / 8_760,
}

// Convert translates an energy amount between two named units.
func Convert(value float64, from, to string) (float64, error) {
	fromWh, ok := wattHoursPer[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, from)
	}
	toWh, ok := wattHoursPer[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	return value * fromWh / toWh, nil
}
