package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"consumer-flex-app/internal/alerting"
	"consumer-flex-app/internal/cache"
	"consumer-flex-app/internal/config"
	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/geo"
	"consumer-flex-app/internal/storage"
	"consumer-flex-app/internal/transform"
)

type fakeTables struct {
	tables dfs.Tables
	err    error
	calls  int
}

func (f *fakeTables) FetchTables(ctx context.Context) (dfs.Tables, error) {
	f.calls++
	return f.tables, f.err
}

type fakeBoundaries struct{}

func (f *fakeBoundaries) FetchBoundaries(ctx context.Context) ([]geo.Region, error) {
	return nil, nil
}

type fakeCache struct {
	stored *transform.Result
	loaded *transform.Result
}

func (f *fakeCache) StoreResult(ctx context.Context, result *transform.Result) error {
	f.stored = result
	return nil
}

func (f *fakeCache) LoadResult(ctx context.Context) (*transform.Result, error) {
	if f.loaded == nil {
		return nil, cache.ErrMiss
	}
	return f.loaded, nil
}

type fakeLedger struct {
	seen map[string]bool
}

func (f *fakeLedger) RecordEventDates(ctx context.Context, dates []storage.EventDate) ([]storage.EventDate, error) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	var fresh []storage.EventDate
	for _, date := range dates {
		key := date.Date + "/" + string(date.EventType)
		if f.seen[key] {
			continue
		}
		f.seen[key] = true
		fresh = append(fresh, date)
	}
	return fresh, nil
}

func (f *fakeLedger) ListEventDates(ctx context.Context) ([]storage.EventDate, error) {
	return nil, nil
}

type fakeNotifier struct {
	notes []alerting.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	f.notes = append(f.notes, note)
	return nil
}

func serviceTables() dfs.Tables {
	bid := func(date, provider string) dfs.BidRow {
		return dfs.BidRow{
			Date: date, Provider: provider, From: "17:00", To: "17:30",
			EventType: dfs.EventLive,
			Forecasts: map[string]float64{"London": 50, "D0 Total": 45},
			VolumeMW:  50, PriceGBPPerMWh: decimal.NewFromInt(3000),
		}
	}
	requirement := func(date string) dfs.RequirementRow {
		return dfs.RequirementRow{
			Date: date, From: "17:00", To: "17:30", EventType: dfs.EventLive,
			RequiredMW: 300, ProcuredDayAheadMW: 280,
		}
	}
	summary := func(date string) dfs.SummaryRow {
		return dfs.SummaryRow{
			Date: date, From: "17:00", To: "17:30", EventType: dfs.EventLive,
			SettledVolumeMW: 250, SettledCostGBP: 750000, ProcuredSameDayMW: 290,
		}
	}
	return dfs.Tables{
		Bids:         []dfs.BidRow{bid("2023-01-23", "Octopus"), bid("2023-01-24", "Loop")},
		Requirements: []dfs.RequirementRow{requirement("2023-01-23"), requirement("2023-01-24")},
		Summaries:    []dfs.SummaryRow{summary("2023-01-23"), summary("2023-01-24")},
	}
}

func newTestService(tables *fakeTables, resultCache *fakeCache, ledger *fakeLedger, notifier *fakeNotifier, alertsOn bool) *Service {
	cfg := &config.Config{}
	cfg.Alerting.Enabled = alertsOn
	return New(cfg, nil, tables, &fakeBoundaries{}, resultCache, nil, ledger, notifier, zerolog.Nop())
}

func TestRefreshOnceNotifiesFirstSeenDates(t *testing.T) {
	tables := &fakeTables{tables: serviceTables()}
	resultCache := &fakeCache{}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	svc := newTestService(tables, resultCache, ledger, notifier, true)

	result, err := svc.RefreshOnce(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resultCache.stored != result {
		t.Fatal("refresh did not cache the result")
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.notes))
	}
	note := notifier.notes[0]
	if len(note.Events) != 2 {
		t.Fatalf("expected both dates in the alert, got %+v", note.Events)
	}
	if note.LatestDate != "2023-01-24" {
		t.Fatalf("unexpected latest date %q", note.LatestDate)
	}

	// The same dates again are not news.
	if _, err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("already-seen dates must not notify again, got %d notes", len(notifier.notes))
	}
}

func TestRefreshOnceAlertsDisabled(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeTables{tables: serviceTables()}, &fakeCache{}, &fakeLedger{}, notifier, false)

	if _, err := svc.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(notifier.notes) != 0 {
		t.Fatalf("alerting disabled but %d notes sent", len(notifier.notes))
	}
}

func TestResultPrefersCache(t *testing.T) {
	cached := &transform.Result{}
	tables := &fakeTables{err: errors.New("portal should not be hit")}
	svc := newTestService(tables, &fakeCache{loaded: cached}, &fakeLedger{}, &fakeNotifier{}, false)

	result, err := svc.Result(context.Background())
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result != cached {
		t.Fatal("expected the cached result")
	}
	if tables.calls != 0 {
		t.Fatalf("cache hit must not refetch, fetch called %d times", tables.calls)
	}
}

func TestRefreshOnceFetchFailure(t *testing.T) {
	tables := &fakeTables{err: errors.New("portal down")}
	svc := newTestService(tables, &fakeCache{}, &fakeLedger{}, &fakeNotifier{}, true)

	if _, err := svc.RefreshOnce(context.Background()); err == nil {
		t.Fatal("fetch failure must propagate")
	}
}
