package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"consumer-flex-app/internal/alerting"
	"consumer-flex-app/internal/cache"
	"consumer-flex-app/internal/config"
	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/fetcher"
	"consumer-flex-app/internal/scheduler"
	"consumer-flex-app/internal/storage"
	"consumer-flex-app/internal/transform"
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dfswatch_refresh_total",
		Help: "Total refresh cycles by result.",
	}, []string{"result"})
	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dfswatch_refresh_duration_seconds",
		Help:    "Wall time of a full refresh cycle.",
		Buckets: prometheus.DefBuckets,
	})
	rowsIngested = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dfswatch_rows_ingested",
		Help: "Rows ingested per dataset on the last refresh.",
	}, []string{"dataset"})
	eventDatesObserved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dfswatch_event_dates_observed",
		Help: "Distinct DFS event dates in the latest result.",
	})
)

// Service orchestrates fetching, transformation, persistence, and alerting.
type Service struct {
	scheduler  *scheduler.Scheduler
	tables     fetcher.TableFetcher
	boundaries fetcher.BoundaryFetcher
	cache      cache.Cache
	snapshots  storage.SnapshotStore
	ledger     storage.EventDateStore
	notifier   alerting.Notifier
	logger     zerolog.Logger

	alertsOn bool
	locker   storage.AdvisoryLocker
	lockKey  int64
}

// New constructs the refresh service.
func New(cfg *config.Config, sched *scheduler.Scheduler, tables fetcher.TableFetcher, boundaries fetcher.BoundaryFetcher, resultCache cache.Cache, snapshots storage.SnapshotStore, ledger storage.EventDateStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := snapshots.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:  sched,
		tables:     tables,
		boundaries: boundaries,
		cache:      resultCache,
		snapshots:  snapshots,
		ledger:     ledger,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		alertsOn:   cfg.Alerting.Enabled,
		locker:     locker,
		lockKey:    cfg.Scheduler.AdvisoryLockKey,
	}
}

// Run begins the aligned refresh loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessCycle)
}

// ProcessCycle 执行单个刷新周期。
func (s *Service) ProcessCycle(ctx context.Context, cycle time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("cycle", cycle).Msg("skip cycle because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	_, err = s.RefreshOnce(ctx)
	return err
}

// Result returns the cached result when one is fresh, refreshing otherwise.
func (s *Service) Result(ctx context.Context) (*transform.Result, error) {
	if s.cache != nil {
		result, err := s.cache.LoadResult(ctx)
		if err == nil {
			s.logger.Debug().Msg("serving cached result")
			return result, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn().Err(err).Msg("cache read failed, refreshing")
		}
	}
	return s.RefreshOnce(ctx)
}

// RefreshOnce runs one fetch → transform → persist pass and returns the
// computed result tables.
func (s *Service) RefreshOnce(ctx context.Context) (*transform.Result, error) {
	started := time.Now()

	tables, err := s.tables.FetchTables(ctx)
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch tables: %w", err)
	}

	regions, err := s.boundaries.FetchBoundaries(ctx)
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch boundaries: %w", err)
	}

	result, err := transform.Run(transform.Inputs{
		Regions:      regions,
		Bids:         tables.Bids,
		Requirements: tables.Requirements,
		Summaries:    tables.Summaries,
	}, s.logger)
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("transform: %w", err)
	}

	rowsIngested.WithLabelValues("bids").Set(float64(len(tables.Bids)))
	rowsIngested.WithLabelValues("requirements").Set(float64(len(tables.Requirements)))
	rowsIngested.WithLabelValues("summaries").Set(float64(len(tables.Summaries)))
	eventDatesObserved.Set(float64(len(result.EventDates())))

	if s.cache != nil {
		if err := s.cache.StoreResult(ctx, result); err != nil {
			s.logger.Error().Err(err).Msg("failed to cache result")
		}
	}

	if s.snapshots != nil {
		s.archiveSnapshot(ctx, started.UTC(), tables, len(regions), result)
	}

	newDates := s.recordEventDates(ctx, result)
	if s.alertsOn && s.notifier != nil && len(newDates) > 0 {
		note := buildNotification(result, newDates)
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Msg("failed to dispatch alert")
		}
	}

	refreshTotal.WithLabelValues("success").Inc()
	refreshDuration.Observe(time.Since(started).Seconds())

	s.logger.Info().
		Int("bids", len(tables.Bids)).
		Int("event_dates", len(result.EventDates())).
		Str("latest", result.LatestEventDate()).
		Msg("refresh complete")

	return result, nil
}

func (s *Service) archiveSnapshot(ctx context.Context, fetchedAt time.Time, tables dfs.Tables, regionCount int, result *transform.Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode snapshot payload")
		return
	}
	snap := storage.Snapshot{
		FetchedAt:       fetchedAt,
		BidRows:         len(tables.Bids),
		RequirementRows: len(tables.Requirements),
		SummaryRows:     len(tables.Summaries),
		RegionCount:     regionCount,
		LatestEventDate: result.LatestEventDate(),
		Result:          payload,
	}
	if _, err := s.snapshots.InsertSnapshot(ctx, snap); err != nil {
		s.logger.Error().Err(err).Msg("failed to archive snapshot")
	}
}

// recordEventDates feeds the ledger and returns the dates seen for the first
// time. A date whose summary has not been published yet has no event type
// and stays out of the ledger until ESO confirms it.
func (s *Service) recordEventDates(ctx context.Context, result *transform.Result) []storage.EventDate {
	if s.ledger == nil {
		return nil
	}
	var dates []storage.EventDate
	for _, row := range result.EventMetrics {
		if row.EventType == "" {
			continue
		}
		dates = append(dates, storage.EventDate{Date: row.Date, EventType: row.EventType})
	}
	newDates, err := s.ledger.RecordEventDates(ctx, dates)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to record event dates")
		return nil
	}
	return newDates
}

func buildNotification(result *transform.Result, newDates []storage.EventDate) alerting.Notification {
	events := make([]alerting.EventAlert, 0, len(newDates))
	for _, date := range newDates {
		events = append(events, alerting.EventAlert{Date: date.Date, EventType: date.EventType})
	}

	live, test := result.EventCounts()
	note := alerting.Notification{
		Events:      events,
		LatestDate:  result.LatestEventDate(),
		ProcuredMWh: dfs.NaN(),
		SettledMWh:  dfs.NaN(),
		TotalEvents: len(result.EventDates()),
		LiveEvents:  live,
		TestEvents:  test,
	}
	if row, ok := result.MetricsFor(result.LatestEventDate()); ok {
		note.Providers = row.Providers
		note.ProcuredMWh = row.ProcuredMWh
		note.SettledMWh = row.SettledMWh
	}
	return note
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
