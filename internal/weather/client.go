package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"
	defaultTimeout = 30 * time.Second

	hourlyTimeLayout = "2006-01-02T15:04"
)

// ClientOptions configure the archive API client.
type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches hourly temperature history from an Open-Meteo style
// archive API.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

// NewClient builds the archive client, falling back to the public endpoint
// when no base URL is given.
func NewClient(logger zerolog.Logger, opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: opts.UserAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.With().Str("component", "weather_client").Logger(),
	}
}

// archiveResponse is the slice of the archive payload we read. Missing
// hours arrive as nulls.
type archiveResponse struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature2M []*float64 `json:"temperature_2m"`
	} `json:"hourly"`
	Reason string `json:"reason"`
}

// FetchHourly returns the hourly temperature readings for one point across
// the window's calendar days, restricted to [start, end].
func (c *Client) FetchHourly(ctx context.Context, lat, lon float64, start, end time.Time) ([]Sample, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	query.Set("start_date", start.UTC().Format("2006-01-02"))
	query.Set("end_date", end.UTC().Format("2006-01-02"))
	query.Set("hourly", "temperature_2m")
	query.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded archiveResponse
	if resp.StatusCode != http.StatusOK {
		if err := json.Unmarshal(payload, &decoded); err == nil && decoded.Reason != "" {
			return nil, fmt.Errorf("archive error (%d): %s", resp.StatusCode, decoded.Reason)
		}
		return nil, fmt.Errorf("archive error (%d)", resp.StatusCode)
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode archive response: %w", err)
	}
	if len(decoded.Hourly.Time) != len(decoded.Hourly.Temperature2M) {
		return nil, fmt.Errorf("archive response misaligned: %d times, %d temperatures",
			len(decoded.Hourly.Time), len(decoded.Hourly.Temperature2M))
	}

	samples := make([]Sample, 0, len(decoded.Hourly.Time))
	for i, stamp := range decoded.Hourly.Time {
		ts, err := time.ParseInLocation(hourlyTimeLayout, stamp, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse archive timestamp %q: %w", stamp, err)
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		value := math.NaN()
		if v := decoded.Hourly.Temperature2M[i]; v != nil {
			value = *v
		}
		samples = append(samples, Sample{Time: ts, TemperatureC: value})
	}

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("samples", len(samples)).
		Msg("fetched hourly weather")

	return samples, nil
}

var _ HourlyFetcher = (*Client)(nil)
