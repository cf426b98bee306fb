package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"consumer-flex-app/internal/dfs"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS refresh_snapshots (
        id BIGSERIAL PRIMARY KEY,
        fetched_at TIMESTAMPTZ NOT NULL,
        bid_rows INTEGER NOT NULL,
        requirement_rows INTEGER NOT NULL,
        summary_rows INTEGER NOT NULL,
        region_count INTEGER NOT NULL,
        latest_event_date TEXT NOT NULL,
        result JSONB NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );`,
	`CREATE INDEX IF NOT EXISTS refresh_snapshots_fetched_at_idx
        ON refresh_snapshots (fetched_at DESC);`,
	`CREATE TABLE IF NOT EXISTS event_dates (
        event_date TEXT NOT NULL,
        event_type TEXT NOT NULL,
        first_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (event_date, event_type)
    );`,
}

const (
	insertSnapshotSQL = `INSERT INTO refresh_snapshots (
        fetched_at,
        bid_rows,
        requirement_rows,
        summary_rows,
        region_count,
        latest_event_date,
        result
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    RETURNING id, created_at;`

	latestSnapshotSQL = `SELECT
        id,
        fetched_at,
        bid_rows,
        requirement_rows,
        summary_rows,
        region_count,
        latest_event_date,
        result,
        created_at
    FROM refresh_snapshots
    ORDER BY fetched_at DESC
    LIMIT 1;`

	listRecentSnapshotsSQL = `SELECT
        id,
        fetched_at,
        bid_rows,
        requirement_rows,
        summary_rows,
        region_count,
        latest_event_date,
        result,
        created_at
    FROM refresh_snapshots
    ORDER BY fetched_at DESC
    LIMIT $1;`

	countSnapshotsSQL = `SELECT COUNT(*) FROM refresh_snapshots;`

	insertEventDateSQL = `INSERT INTO event_dates (
        event_date,
        event_type,
        first_seen_at
    ) VALUES (
        $1,$2,$3
    )
    ON CONFLICT (event_date, event_type) DO NOTHING;`

	listEventDatesSQL = `SELECT
        event_date,
        event_type,
        first_seen_at
    FROM event_dates
    ORDER BY event_date, event_type;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// SnapshotStore defines operations for refresh-run archiving.
type SnapshotStore interface {
	EnsureSchema(ctx context.Context) error
	InsertSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error)
	LatestSnapshot(ctx context.Context) (Snapshot, error)
	ListRecentSnapshots(ctx context.Context, limit int) ([]Snapshot, error)
	CountSnapshots(ctx context.Context) (int64, error)
}

// EventDateStore defines operations for the first-seen event-date ledger.
type EventDateStore interface {
	RecordEventDates(ctx context.Context, dates []EventDate) ([]EventDate, error)
	ListEventDates(ctx context.Context) ([]EventDate, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to snapshots and the event-date ledger.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	for _, statement := range schemaSQL {
		if _, execErr := pool.Exec(ctx, statement); execErr != nil {
			return fmt.Errorf("ensure schema: %w", execErr)
		}
	}
	return nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// best effort; the lock drops with the session anyway
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertSnapshot archives one refresh run and returns the stored row.
func (s *Store) InsertSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return Snapshot{}, err
	}

	row := pool.QueryRow(ctx, insertSnapshotSQL,
		snap.FetchedAt,
		snap.BidRows,
		snap.RequirementRows,
		snap.SummaryRows,
		snap.RegionCount,
		snap.LatestEventDate,
		[]byte(snap.Result),
	)
	if scanErr := row.Scan(&snap.ID, &snap.CreatedAt); scanErr != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", scanErr)
	}
	return snap, nil
}

// LatestSnapshot returns the most recent archived run. When the archive is
// empty it returns pgx.ErrNoRows.
func (s *Store) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return Snapshot{}, err
	}

	rows, queryErr := pool.Query(ctx, latestSnapshotSQL)
	if queryErr != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", queryErr)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return Snapshot{}, rows.Err()
		}
		return Snapshot{}, pgx.ErrNoRows
	}
	return scanSnapshot(rows)
}

// ListRecentSnapshots lists archived runs ordered by descending fetch time.
func (s *Store) ListRecentSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSnapshotsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent snapshots: %w", queryErr)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0, limit)
	for rows.Next() {
		snap, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		snapshots = append(snapshots, snap)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return snapshots, nil
}

// CountSnapshots counts archived runs.
func (s *Store) CountSnapshots(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSnapshotsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count snapshots: %w", scanErr)
	}
	return count, nil
}

// RecordEventDates inserts event dates into the ledger, skipping those seen
// before, and returns only the newly recorded ones.
func (s *Store) RecordEventDates(ctx context.Context, dates []EventDate) ([]EventDate, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	var recorded []EventDate
	for _, date := range dates {
		firstSeen := date.FirstSeen
		if firstSeen.IsZero() {
			firstSeen = time.Now().UTC()
		}
		cmdTag, execErr := pool.Exec(ctx, insertEventDateSQL, date.Date, string(date.EventType), firstSeen)
		if execErr != nil {
			return nil, fmt.Errorf("record event date %s: %w", date.Date, execErr)
		}
		if cmdTag.RowsAffected() == 1 {
			date.FirstSeen = firstSeen
			recorded = append(recorded, date)
		}
	}
	return recorded, nil
}

// ListEventDates returns the full ledger ordered by date.
func (s *Store) ListEventDates(ctx context.Context) ([]EventDate, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listEventDatesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list event dates: %w", queryErr)
	}
	defer rows.Close()

	var dates []EventDate
	for rows.Next() {
		var (
			date      EventDate
			eventType string
		)
		if err := rows.Scan(&date.Date, &eventType, &date.FirstSeen); err != nil {
			return nil, err
		}
		date.EventType = dfs.EventType(eventType)
		dates = append(dates, date)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return dates, nil
}

func scanSnapshot(rows pgx.Rows) (Snapshot, error) {
	var snap Snapshot
	var result []byte
	if err := rows.Scan(
		&snap.ID,
		&snap.FetchedAt,
		&snap.BidRows,
		&snap.RequirementRows,
		&snap.SummaryRows,
		&snap.RegionCount,
		&snap.LatestEventDate,
		&result,
		&snap.CreatedAt,
	); err != nil {
		return Snapshot{}, err
	}
	snap.Result = result
	return snap, nil
}

var (
	_ SnapshotStore  = (*Store)(nil)
	_ EventDateStore = (*Store)(nil)
	_ AdvisoryLocker = (*Store)(nil)
)
