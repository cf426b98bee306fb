package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"consumer-flex-app/internal/dfs"
	"consumer-flex-app/internal/weather"
)

func TestWriteWeatherTable(t *testing.T) {
	observations := []weather.Observation{
		{Date: "2023-01-23", Region: "London", Time: time.Date(2023, 1, 23, 17, 0, 0, 0, time.UTC), TemperatureC: 4.5},
		{Date: "2023-01-23", Region: "London", Time: time.Date(2023, 1, 23, 17, 30, 0, 0, time.UTC), TemperatureC: dfs.NaN()},
	}

	var buf bytes.Buffer
	if err := WriteWeatherTable(&buf, observations); err != nil {
		t.Fatalf("WriteWeatherTable failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "London") || !strings.Contains(out, "17:00") {
		t.Fatalf("missing observation row:\n%s", out)
	}
	if !strings.Contains(out, "4.5") {
		t.Fatalf("missing temperature:\n%s", out)
	}
	if !strings.Contains(out, "n/a") {
		t.Fatalf("undefined temperature should show n/a:\n%s", out)
	}

	buf.Reset()
	if err := WriteWeatherTable(&buf, nil); err != nil {
		t.Fatalf("WriteWeatherTable failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no weather observations found") {
		t.Fatalf("expected the empty notice, got:\n%s", buf.String())
	}
}
