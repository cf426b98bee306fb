package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/geo"
)

const (
	defaultLiveDatapackageURL     = "https://data.nationalgrideso.com/dfs/demand-flexibility-service-live-events/datapackage.json"
	defaultTestDatapackageURL     = "https://data.nationalgrideso.com/dfs/demand-flexibility-service-test-events/datapackage.json"
	defaultBoundaryDatapackageURL = "https://data.nationalgrideso.com/system/gis-boundaries-for-gb-dno-license-areas/datapackage.json"
)

// Resource title filters. The portal republishes each event as its own
// resource, so matching is on substring rather than exact title.
const (
	titleBids         = "DFS Utilisation Report"
	titleRequirements = "DFS Service Requirement"
	titleSummaries    = "Summary"
)

// PortalOptions parameterise the data portal fetcher.
type PortalOptions struct {
	LiveDatapackageURL     string
	TestDatapackageURL     string
	BoundaryDatapackageURL string
	Timeout                time.Duration
	UserAgent              string
}

// Portal downloads DFS publications from the National Grid ESO data portal.
type Portal struct {
	opts   PortalOptions
	logger zerolog.Logger
	client *http.Client
}

// NewPortal constructs a portal fetcher.
func NewPortal(opts PortalOptions, logger zerolog.Logger) *Portal {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if opts.LiveDatapackageURL == "" {
		opts.LiveDatapackageURL = defaultLiveDatapackageURL
	}
	if opts.TestDatapackageURL == "" {
		opts.TestDatapackageURL = defaultTestDatapackageURL
	}
	if opts.BoundaryDatapackageURL == "" {
		opts.BoundaryDatapackageURL = defaultBoundaryDatapackageURL
	}

	return &Portal{
		opts:   opts,
		logger: logger.With().Str("component", "portal_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// FetchTables downloads the bid, requirement and settlement tables for live
// and test events, tagging every row with its event type.
func (p *Portal) FetchTables(ctx context.Context) (dfs.Tables, error) {
	var tables dfs.Tables
	sources := []struct {
		url       string
		eventType dfs.EventType
	}{
		{p.opts.LiveDatapackageURL, dfs.EventLive},
		{p.opts.TestDatapackageURL, dfs.EventTest},
	}
	for _, source := range sources {
		pkg, err := p.fetchDatapackage(ctx, source.url)
		if err != nil {
			return dfs.Tables{}, err
		}
		for _, res := range pkg.Resources {
			wantBids := strings.Contains(res.Title, titleBids)
			wantRequirements := strings.Contains(res.Title, titleRequirements)
			wantSummaries := strings.Contains(res.Title, titleSummaries)
			if !wantBids && !wantRequirements && !wantSummaries {
				continue
			}
			data, err := p.get(ctx, res.Path)
			if err != nil {
				return dfs.Tables{}, fmt.Errorf("fetch %q: %w", res.Title, err)
			}
			if wantBids {
				rows, err := parseBidRows(data, source.eventType)
				if err != nil {
					return dfs.Tables{}, fmt.Errorf("parse %q: %w", res.Title, err)
				}
				tables.Bids = append(tables.Bids, rows...)
			}
			if wantRequirements {
				rows, err := parseRequirementRows(data, source.eventType)
				if err != nil {
					return dfs.Tables{}, fmt.Errorf("parse %q: %w", res.Title, err)
				}
				tables.Requirements = append(tables.Requirements, rows...)
			}
			if wantSummaries {
				rows, err := parseSummaryRows(data, source.eventType)
				if err != nil {
					return dfs.Tables{}, fmt.Errorf("parse %q: %w", res.Title, err)
				}
				tables.Summaries = append(tables.Summaries, rows...)
			}
			p.logger.Debug().
				Str("title", res.Title).
				Str("event_type", string(source.eventType)).
				Msg("resource loaded")
		}
	}

	if len(tables.Bids) == 0 || len(tables.Requirements) == 0 || len(tables.Summaries) == 0 {
		return dfs.Tables{}, errors.New("datapackages carried no matching resources")
	}
	return tables, nil
}

// FetchBoundaries downloads the newest GeoJSON publication of the DNO licence
// area boundaries. Geometries stay in the source British National Grid frame.
func (p *Portal) FetchBoundaries(ctx context.Context) ([]geo.Region, error) {
	pkg, err := p.fetchDatapackage(ctx, p.opts.BoundaryDatapackageURL)
	if err != nil {
		return nil, err
	}

	var candidates []resource
	for _, res := range pkg.Resources {
		if strings.Contains(strings.ToLower(res.Description), "geojson") {
			candidates = append(candidates, res)
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("boundary datapackage has no geojson resource")
	}
	// last_modified is an ISO timestamp, so string order is time order.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastModified < candidates[j].LastModified
	})
	latest := candidates[len(candidates)-1]

	data, err := p.get(ctx, latest.Path)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", latest.Title, err)
	}
	return geo.ParseRegions(data)
}

func (p *Portal) fetchDatapackage(ctx context.Context, url string) (*datapackage, error) {
	payload, err := p.get(ctx, url)
	if err != nil {
		return nil, err
	}
	var pkg datapackage
	if err := json.Unmarshal(payload, &pkg); err != nil {
		return nil, fmt.Errorf("decode datapackage: %w", err)
	}
	return &pkg, nil
}

func (p *Portal) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if ua := strings.TrimSpace(p.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "dfswatch/1.0")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}
	return payload, nil
}

var (
	_ TableFetcher    = (*Portal)(nil)
	_ BoundaryFetcher = (*Portal)(nil)
)
