package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"consumer-flex-app/internal/alerting"
	"consumer-flex-app/internal/cache"
	"consumer-flex-app/internal/config"
	"consumer-flex-app/internal/fetcher"
	"consumer-flex-app/internal/scheduler"
	"consumer-flex-app/internal/service"
	"consumer-flex-app/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newPortal() *fetcher.Portal {
	return fetcher.NewPortal(fetcher.PortalOptions{
		LiveDatapackageURL:     a.Config.Sources.LiveDatapackageURL,
		TestDatapackageURL:     a.Config.Sources.TestDatapackageURL,
		BoundaryDatapackageURL: a.Config.Sources.BoundaryDatapackageURL,
		Timeout:                a.Config.Sources.RequestTimeout,
		UserAgent:              a.Config.Sources.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) openCache() (*cache.ResultCache, func(), error) {
	if a.Config.Cache.URL == "" {
		return nil, nil, nil
	}

	resultCache, err := cache.New(cache.Options{
		URL: a.Config.Cache.URL,
		TTL: a.Config.Cache.TTL,
	}, a.Logger)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := resultCache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing cache failed")
		}
	}
	return resultCache, closer, nil
}

// buildService assembles the refresh service with whatever optional
// dependencies the configuration enables. The returned closer releases the
// store and cache connections.
func (a *App) buildService(ctx context.Context, sched *scheduler.Scheduler) (*service.Service, func(), error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	resultCache, closeCache, err := a.openCache()
	if err != nil {
		if closeStore != nil {
			closeStore()
		}
		return nil, nil, err
	}

	portal := a.newPortal()
	notifier := a.newNotifier()

	var snapshots storage.SnapshotStore
	var ledger storage.EventDateStore
	if store != nil {
		snapshots = store
		ledger = store
	}
	var resultStore cache.Cache
	if resultCache != nil {
		resultStore = resultCache
	}

	svc := service.New(a.Config, sched, portal, portal, resultStore, snapshots, ledger, notifier, a.Logger)
	closer := func() {
		if closeCache != nil {
			closeCache()
		}
		if closeStore != nil {
			closeStore()
		}
	}
	return svc, closer, nil
}

// Run executes the long-running refresh service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	} else {
		a.logResumePoint(ctx, store)
	}
	if closeStore != nil {
		defer closeStore()
	}

	resultCache, closeCache, err := a.openCache()
	if err != nil {
		return err
	}
	if resultCache == nil {
		a.Logger.Warn().Msg("cache.url not configured; result caching disabled")
	}
	if closeCache != nil {
		defer closeCache()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToCycle,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	portal := a.newPortal()
	notifier := a.newNotifier()

	var snapshots storage.SnapshotStore
	var ledger storage.EventDateStore
	if store != nil {
		snapshots = store
		ledger = store
	}
	var resultStore cache.Cache
	if resultCache != nil {
		resultStore = resultCache
	}

	svc := service.New(a.Config, sched, portal, portal, resultStore, snapshots, ledger, notifier, a.Logger)

	stopMetrics := a.serveMetrics()
	defer stopMetrics()

	a.Logger.Info().Msg("starting refresh service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("refresh service stopped")
	return nil
}

// Refresh runs a single fetch and transform pass outside the scheduler.
func (a *App) Refresh(ctx context.Context) error {
	svc, closeSvc, err := a.buildService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	result, err := svc.RefreshOnce(ctx)
	if err != nil {
		return err
	}

	live, test := result.EventCounts()
	a.Logger.Info().
		Int("events", live+test).
		Int("live", live).
		Int("test", test).
		Str("latest", result.LatestEventDate()).
		Msg("refresh finished")
	return nil
}

func (a *App) logResumePoint(ctx context.Context, store *storage.Store) {
	snap, err := store.LatestSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			a.Logger.Warn().Err(err).Msg("could not read latest snapshot")
		}
		return
	}
	a.Logger.Info().
		Time("fetched_at", snap.FetchedAt).
		Str("latest_event", snap.LatestEventDate).
		Msg("resuming after archived snapshot")
}

// serveMetrics exposes prometheus metrics and a health probe while the
// service loops. Disabled configurations get a no-op stop function.
func (a *App) serveMetrics() func() {
	if !a.Config.Metrics.Enabled {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{Addr: a.Config.Metrics.Addr, Handler: mux}
	go func() {
		a.Logger.Info().Str("addr", srv.Addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn().Err(err).Msg("metrics server shutdown failed")
		}
	}
}

// ExportOptions hold parameters for exporting dashboard artifacts.
type ExportOptions struct {
	Date               string
	CSVPath            string
	ProvidersCSVPath   string
	ChartPath          string
	ProvidersChartPath string
	WorkbookPath       string
	ReportPath         string
	GeoJSONPath        string
	Cumulative         bool
}

// ShowOptions configure the show command.
type ShowOptions struct {
	TopProviders int
	Snapshots    int
}

// WeatherOptions configure the weather command.
type WeatherOptions struct {
	Date string
}
