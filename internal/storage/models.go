package storage

import (
	"encoding/json"
	"time"

	"consumer-flex-app/internal/dfs"
)

// Snapshot is one archived refresh run: raw table row counts plus the
// computed result tables as JSON, so past runs can be replayed or diffed.
type Snapshot struct {
	ID              int64
	FetchedAt       time.Time
	BidRows         int
	RequirementRows int
	SummaryRows     int
	RegionCount     int
	LatestEventDate string
	Result          json.RawMessage
	CreatedAt       time.Time
}

// EventDate is one first-seen DFS event date in the ledger.
type EventDate struct {
	Date      string
	EventType dfs.EventType
	FirstSeen time.Time
}
