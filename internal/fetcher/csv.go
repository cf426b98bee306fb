package fetcher

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"consumer-flex-app/internal/dfs"
)

// Column headers as published. Header names are matched verbatim, so the
// trailing space in "Settled Cost " is deliberate.
const (
	headerDate     = "Date"
	headerProvider = "DFS Provider"
	headerFrom     = "From (GMT)"
	headerTo       = "To (GMT)"
	headerVolumeMW = "DFS Volume (MW)"
	headerPrice    = "Price (£/MWh)"

	headerDeliveryDate = "Delivery Date"
	headerFromGMT      = "From GMT"
	headerToGMT        = "To GMT"
	headerRequiredMW   = "DFS Required (MW)"
	headerProcuredMW   = "DFS Procured (MW)"

	headerSettledVolume   = "Settled Volume"
	headerSettledCost     = "Settled Cost "
	headerProcuredSameDay = "D0 DFS Procured (MW)"
)

// dateLayouts covers the ISO dates the portal normally publishes plus the
// day-first strays that have shipped in some utilisation reports
// ("13/02/2022" instead of "2022-02-13").
var dateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

func normalizeDate(cell string) (string, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognised date %q", cell)
}

// parseFloatCell reads a numeric cell. Empty cells are undefined values, not
// zeroes.
func parseFloatCell(cell string) (dfs.Float, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return dfs.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return dfs.NaN(), err
	}
	return dfs.Float(v), nil
}

func parseDecimalCell(cell string) (decimal.Decimal, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(cell)
}

type headerIndex map[string]int

func indexHeader(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

func (h headerIndex) require(table string, names ...string) error {
	for _, name := range names {
		if _, ok := h[name]; !ok {
			return fmt.Errorf("%s is missing column %q", table, name)
		}
	}
	return nil
}

func (h headerIndex) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func parseBidRows(data []byte, eventType dfs.EventType) ([]dfs.BidRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read utilisation report header: %w", err)
	}
	cols := indexHeader(header)
	if err := cols.require("utilisation report", headerDate, headerProvider, headerFrom, headerTo); err != nil {
		return nil, err
	}

	var rows []dfs.BidRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("utilisation report line %d: %w", line, err)
		}
		date, err := normalizeDate(cols.get(record, headerDate))
		if err != nil {
			return nil, fmt.Errorf("utilisation report line %d: %w", line, err)
		}
		volume, err := parseFloatCell(cols.get(record, headerVolumeMW))
		if err != nil {
			return nil, fmt.Errorf("utilisation report line %d: parse volume: %w", line, err)
		}
		price, err := parseDecimalCell(cols.get(record, headerPrice))
		if err != nil {
			return nil, fmt.Errorf("utilisation report line %d: parse price: %w", line, err)
		}
		forecasts := make(map[string]float64)
		for _, column := range dfs.ForecastColumns {
			cell := strings.TrimSpace(cols.get(record, column))
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("utilisation report line %d: parse %q: %w", line, column, err)
			}
			forecasts[column] = v
		}
		rows = append(rows, dfs.BidRow{
			Date:           date,
			Provider:       strings.TrimSpace(cols.get(record, headerProvider)),
			From:           strings.TrimSpace(cols.get(record, headerFrom)),
			To:             strings.TrimSpace(cols.get(record, headerTo)),
			EventType:      eventType,
			Forecasts:      forecasts,
			VolumeMW:       volume,
			PriceGBPPerMWh: price,
		})
	}
	return rows, nil
}

func parseRequirementRows(data []byte, eventType dfs.EventType) ([]dfs.RequirementRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read requirement header: %w", err)
	}
	cols := indexHeader(header)
	if err := cols.require("service requirement", headerDeliveryDate, headerFromGMT, headerToGMT); err != nil {
		return nil, err
	}

	var rows []dfs.RequirementRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("service requirement line %d: %w", line, err)
		}
		date, err := normalizeDate(cols.get(record, headerDeliveryDate))
		if err != nil {
			return nil, fmt.Errorf("service requirement line %d: %w", line, err)
		}
		required, err := parseFloatCell(cols.get(record, headerRequiredMW))
		if err != nil {
			return nil, fmt.Errorf("service requirement line %d: parse required: %w", line, err)
		}
		procured, err := parseFloatCell(cols.get(record, headerProcuredMW))
		if err != nil {
			return nil, fmt.Errorf("service requirement line %d: parse procured: %w", line, err)
		}
		rows = append(rows, dfs.RequirementRow{
			Date:               date,
			From:               strings.TrimSpace(cols.get(record, headerFromGMT)),
			To:                 strings.TrimSpace(cols.get(record, headerToGMT)),
			EventType:          eventType,
			RequiredMW:         required,
			ProcuredDayAheadMW: procured,
		})
	}
	return rows, nil
}

func parseSummaryRows(data []byte, eventType dfs.EventType) ([]dfs.SummaryRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read summary header: %w", err)
	}
	cols := indexHeader(header)
	if err := cols.require("event summary", headerDate, headerFrom, headerTo); err != nil {
		return nil, err
	}

	var rows []dfs.SummaryRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("event summary line %d: %w", line, err)
		}
		date, err := normalizeDate(cols.get(record, headerDate))
		if err != nil {
			return nil, fmt.Errorf("event summary line %d: %w", line, err)
		}
		volume, err := parseFloatCell(cols.get(record, headerSettledVolume))
		if err != nil {
			return nil, fmt.Errorf("event summary line %d: parse settled volume: %w", line, err)
		}
		cost, err := parseFloatCell(cols.get(record, headerSettledCost))
		if err != nil {
			return nil, fmt.Errorf("event summary line %d: parse settled cost: %w", line, err)
		}
		procured, err := parseFloatCell(cols.get(record, headerProcuredSameDay))
		if err != nil {
			return nil, fmt.Errorf("event summary line %d: parse same-day procured: %w", line, err)
		}
		rows = append(rows, dfs.SummaryRow{
			Date:              date,
			From:              strings.TrimSpace(cols.get(record, headerFrom)),
			To:                strings.TrimSpace(cols.get(record, headerTo)),
			EventType:         eventType,
			SettledVolumeMW:   volume,
			SettledCostGBP:    cost,
			ProcuredSameDayMW: procured,
		})
	}
	return rows, nil
}
