package weather

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const archivePayload = `{
	"latitude": 51.5,
	"longitude": -0.13,
	"hourly_units": {"temperature_2m": "°C"},
	"hourly": {
		"time": ["2023-01-23T16:00", "2023-01-23T17:00", "2023-01-23T18:00", "2023-01-23T19:00"],
		"temperature_2m": [5.1, 4.5, null, 3.9]
	}
}`

func TestClientFetchHourly(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(archivePayload))
	}))
	defer srv.Close()

	client := NewClient(zerolog.Nop(), ClientOptions{BaseURL: srv.URL})
	start := time.Date(2023, 1, 23, 17, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 23, 19, 0, 0, 0, time.UTC)

	samples, err := client.FetchHourly(context.Background(), 51.5, -0.13, start, end)
	if err != nil {
		t.Fatalf("FetchHourly failed: %v", err)
	}

	if gotQuery["latitude"] != "51.5000" || gotQuery["longitude"] != "-0.1300" {
		t.Fatalf("unexpected point query: %v", gotQuery)
	}
	if gotQuery["start_date"] != "2023-01-23" || gotQuery["end_date"] != "2023-01-23" {
		t.Fatalf("unexpected date query: %v", gotQuery)
	}
	if gotQuery["hourly"] != "temperature_2m" || gotQuery["timezone"] != "UTC" {
		t.Fatalf("unexpected series query: %v", gotQuery)
	}

	// The 16:00 reading falls before the window and drops out.
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if !samples[0].Time.Equal(start) || samples[0].TemperatureC != 4.5 {
		t.Fatalf("unexpected first sample: %+v", samples[0])
	}
	if !math.IsNaN(samples[1].TemperatureC) {
		t.Fatalf("null reading should decode as NaN, got %v", samples[1].TemperatureC)
	}
	if samples[2].TemperatureC != 3.9 {
		t.Fatalf("unexpected last sample: %+v", samples[2])
	}
}

func TestClientFetchHourlyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": true, "reason": "Invalid date range"}`))
	}))
	defer srv.Close()

	client := NewClient(zerolog.Nop(), ClientOptions{BaseURL: srv.URL})
	start := time.Date(2023, 1, 23, 17, 0, 0, 0, time.UTC)

	_, err := client.FetchHourly(context.Background(), 51.5, -0.13, start, start.Add(time.Hour))
	if err == nil {
		t.Fatal("expected an error for a rejected request")
	}
	if !strings.Contains(err.Error(), "Invalid date range") {
		t.Fatalf("error should carry the archive reason, got %v", err)
	}
}

func TestClientFetchHourlyMisaligned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly": {"time": ["2023-01-23T17:00"], "temperature_2m": []}}`))
	}))
	defer srv.Close()

	client := NewClient(zerolog.Nop(), ClientOptions{BaseURL: srv.URL})
	start := time.Date(2023, 1, 23, 17, 0, 0, 0, time.UTC)

	_, err := client.FetchHourly(context.Background(), 51.5, -0.13, start, start.Add(time.Hour))
	if err == nil {
		t.Fatal("expected an error for misaligned series")
	}
}
