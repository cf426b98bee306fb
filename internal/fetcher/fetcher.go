package fetcher

import (
	"context"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/geo"
)

// TableFetcher retrieves the raw DFS bid, requirement and settlement tables.
type TableFetcher interface {
	FetchTables(ctx context.Context) (dfs.Tables, error)
}

// BoundaryFetcher retrieves the DNO licence area boundaries.
type BoundaryFetcher interface {
	FetchBoundaries(ctx context.Context) ([]geo.Region, error)
}
