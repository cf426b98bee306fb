package render

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, testResult()); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reading back workbook failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{sheetMetrics, sheetProviders, sheetRegional, sheetRegionalCumulative}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Fatalf("expected sheets %v, got %v", want, sheets)
		}
	}

	date, err := f.GetCellValue(sheetMetrics, "A2")
	if err != nil {
		t.Fatalf("reading cell failed: %v", err)
	}
	if date != "2023-01-23" {
		t.Fatalf("expected first event date 2023-01-23, got %q", date)
	}

	settled, err := f.GetCellValue(sheetMetrics, "H3")
	if err != nil {
		t.Fatalf("reading cell failed: %v", err)
	}
	if settled != "" {
		t.Fatalf("undefined settled volume should leave the cell empty, got %q", settled)
	}

	region, err := f.GetCellValue(sheetRegionalCumulative, "B3")
	if err != nil {
		t.Fatalf("reading cell failed: %v", err)
	}
	if region != "North East England" {
		t.Fatalf("unexpected cumulative region name: %q", region)
	}
}
