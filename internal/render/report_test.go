package render

import (
	"bytes"
	"testing"
)

func TestWriteEventReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEventReport(&buf, testResult(), "2023-01-24"); err != nil {
		t.Fatalf("WriteEventReport failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output does not look like a PDF (%d bytes)", buf.Len())
	}
	if buf.Len() < 1000 {
		t.Fatalf("report suspiciously small: %d bytes", buf.Len())
	}
}

func TestWriteEventReportUnknownDate(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEventReport(&buf, testResult(), "2020-01-01"); err == nil {
		t.Fatal("expected an error for an unknown event date")
	}
}

func TestPreviousEventDate(t *testing.T) {
	dates := []string{"2023-01-23", "2023-01-24", "2023-02-01"}

	if got := PreviousEventDate(dates, "2023-01-23"); got != "2023-01-23" {
		t.Fatalf("first date should compare against itself, got %q", got)
	}
	if got := PreviousEventDate(dates, "2023-02-01"); got != "2023-01-24" {
		t.Fatalf("expected 2023-01-24, got %q", got)
	}
	if got := PreviousEventDate(dates, "2024-01-01"); got != "2024-01-01" {
		t.Fatalf("unknown date should return itself, got %q", got)
	}
}
