package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/shopspring/decimal"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/fetcher"
	"consumer-flex-app/internal/geo"
	"consumer-flex-app/internal/service"
	"consumer-flex-app/internal/storage"
)

// SimulateAlert 以虚构的事件日期走一遍完整的刷新与告警流程。
func (a *App) SimulateAlert(ctx context.Context, date, eventType string) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("日期格式必须为 YYYY-MM-DD: %w", err)
	}
	parsedType, err := parseEventType(eventType)
	if err != nil {
		return err
	}

	tables := &staticTableFetcher{date: date, eventType: parsedType}
	boundaries := &staticBoundaryFetcher{}
	svc := service.New(a.Config, nil, tables, boundaries, nil, nil, memoryLedger{}, notifier, a.Logger)

	_, err = svc.RefreshOnce(ctx)
	return err
}

func parseEventType(raw string) (dfs.EventType, error) {
	switch strings.ToUpper(raw) {
	case string(dfs.EventLive):
		return dfs.EventLive, nil
	case string(dfs.EventTest):
		return dfs.EventTest, nil
	default:
		return "", fmt.Errorf("未知的事件类型: %q", raw)
	}
}

// staticTableFetcher fabricates one event with two settlement periods.
type staticTableFetcher struct {
	date      string
	eventType dfs.EventType
}

func (s *staticTableFetcher) FetchTables(ctx context.Context) (dfs.Tables, error) {
	periods := []struct{ from, to string }{
		{"17:00", "17:30"},
		{"17:30", "18:00"},
	}

	var tables dfs.Tables
	for _, p := range periods {
		tables.Bids = append(tables.Bids, dfs.BidRow{
			Date:      s.date,
			Provider:  "Simulated Provider",
			From:      p.from,
			To:        p.to,
			EventType: s.eventType,
			Forecasts: map[string]float64{
				dfs.ColumnTotal:        50,
				dfs.ColumnSameDayTotal: 45,
			},
			VolumeMW:       50,
			PriceGBPPerMWh: decimal.NewFromInt(3000),
		})
		tables.Requirements = append(tables.Requirements, dfs.RequirementRow{
			Date:               s.date,
			From:               p.from,
			To:                 p.to,
			EventType:          s.eventType,
			RequiredMW:         60,
			ProcuredDayAheadMW: 50,
		})
		tables.Summaries = append(tables.Summaries, dfs.SummaryRow{
			Date:              s.date,
			From:              p.from,
			To:                p.to,
			EventType:         s.eventType,
			SettledVolumeMW:   48,
			SettledCostGBP:    144_000,
			ProcuredSameDayMW: 45,
		})
	}
	return tables, nil
}

// staticBoundaryFetcher hands out placeholder licence-area squares so the
// regional tables come out fully joined.
type staticBoundaryFetcher struct{}

func (s *staticBoundaryFetcher) FetchBoundaries(ctx context.Context) ([]geo.Region, error) {
	names := make([]string, 0, len(dfs.RegionCodeByName))
	for name := range dfs.RegionCodeByName {
		names = append(names, name)
	}
	sort.Strings(names)

	regions := make([]geo.Region, 0, len(names))
	for i, name := range names {
		easting := 350_000 + float64(i%4)*60_000
		northing := 150_000 + float64(i/4)*120_000
		half := 25_000.0
		ring := orb.Ring{
			{easting - half, northing - half},
			{easting + half, northing - half},
			{easting + half, northing + half},
			{easting - half, northing + half},
			{easting - half, northing - half},
		}
		regions = append(regions, geo.Region{
			Code:     dfs.RegionCodeByName[name],
			Name:     name,
			Geometry: geojson.NewGeometry(orb.Polygon{ring}),
		})
	}
	return regions, nil
}

// memoryLedger treats every date as newly observed, so the simulated event
// always fires the alert.
type memoryLedger struct{}

func (memoryLedger) RecordEventDates(_ context.Context, dates []storage.EventDate) ([]storage.EventDate, error) {
	recorded := append([]storage.EventDate(nil), dates...)
	now := time.Now().UTC()
	for i := range recorded {
		recorded[i].FirstSeen = now
	}
	return recorded, nil
}

func (memoryLedger) ListEventDates(context.Context) ([]storage.EventDate, error) {
	return nil, nil
}

var _ fetcher.TableFetcher = (*staticTableFetcher)(nil)
var _ fetcher.BoundaryFetcher = (*staticBoundaryFetcher)(nil)
var _ storage.EventDateStore = (memoryLedger{})
