package transform

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"consumer-flex-app/internal/dfs"
)

// Settlement periods are half an hour: two per hour, MW halved to get the
// MWh delivered over one period.
const periodsPerHour = 2

// settlementZone is the market timezone every clock label is quoted in.
const settlementZone = "Europe/London"

var londonTZ *time.Location

func init() {
	loc, err := time.LoadLocation(settlementZone)
	if err != nil {
		panic("load " + settlementZone + " timezone: " + err.Error())
	}
	londonTZ = loc
}

// ParseError reports a date/clock pair that could not be combined into a
// settlement-period timestamp.
type ParseError struct {
	Table string
	Date  string
	Clock string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse settlement period %q %q: %v", e.Table, e.Date, e.Clock, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var clockLayouts = []string{"2006-01-02 15:04", "2006-01-02 15:04:05"}

func settlementTime(table, date, clock string) (time.Time, error) {
	var lastErr error
	for _, layout := range clockLayouts {
		t, err := time.ParseInLocation(layout, date+" "+clock, londonTZ)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &ParseError{Table: table, Date: date, Clock: clock, Err: lastErr}
}

// NormalizeBids returns a copy of bids with PeriodStart/PeriodEnd derived
// from the date and clock labels, localised to Europe/London. No other
// field is touched and the input slice is never written to.
func NormalizeBids(bids []dfs.BidRow) ([]dfs.BidRow, error) {
	out := make([]dfs.BidRow, len(bids))
	for i, row := range bids {
		start, err := settlementTime("bids", row.Date, row.From)
		if err != nil {
			return nil, err
		}
		end, err := settlementTime("bids", row.Date, row.To)
		if err != nil {
			return nil, err
		}
		row.PeriodStart, row.PeriodEnd = start, end
		out[i] = row
	}
	return out, nil
}

// NormalizeRequirements is NormalizeBids for the requirement table.
func NormalizeRequirements(rows []dfs.RequirementRow) ([]dfs.RequirementRow, error) {
	out := make([]dfs.RequirementRow, len(rows))
	for i, row := range rows {
		start, err := settlementTime("requirements", row.Date, row.From)
		if err != nil {
			return nil, err
		}
		end, err := settlementTime("requirements", row.Date, row.To)
		if err != nil {
			return nil, err
		}
		row.PeriodStart, row.PeriodEnd = start, end
		out[i] = row
	}
	return out, nil
}

// NormalizeSummaries is NormalizeBids for the settlement-summary table.
func NormalizeSummaries(rows []dfs.SummaryRow) ([]dfs.SummaryRow, error) {
	out := make([]dfs.SummaryRow, len(rows))
	for i, row := range rows {
		start, err := settlementTime("summary", row.Date, row.From)
		if err != nil {
			return nil, err
		}
		end, err := settlementTime("summary", row.Date, row.To)
		if err != nil {
			return nil, err
		}
		row.PeriodStart, row.PeriodEnd = start, end
		out[i] = row
	}
	return out, nil
}
