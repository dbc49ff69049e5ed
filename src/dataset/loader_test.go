package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

// TestLoad_NativeTimeColumn verifies the canonical sensor export is parsed,
// sorted ascending, and typed as numeric.
func TestLoad_NativeTimeColumn(t *testing.T) {
	p := writeFixture(t, "log.csv",
		"YYMMDD_HHMMSS,AT-100,Mode\n"+
			"240105_120010,410.2,Capture\n"+
			"240105_120000,409.8,Capture\n"+
			"240105_120020,411.0,Purge\n")
	ds, err := NewLoader().Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.TimeColumn != "YYMMDD_HHMMSS" {
		t.Fatalf("time column = %q, want YYMMDD_HHMMSS", ds.TimeColumn)
	}
	if ds.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", ds.Rows())
	}
	for i := 1; i < ds.Rows(); i++ {
		if ds.Times[i].Before(ds.Times[i-1]) {
			t.Fatalf("times not ascending at row %d", i)
		}
	}
	at, ok := ds.ColumnByName("AT-100")
	if !ok || !at.Numeric {
		t.Fatalf("AT-100 missing or not numeric")
	}
	if at.Values[0] != 409.8 {
		t.Fatalf("first (sorted) AT-100 value = %v, want 409.8", at.Values[0])
	}
	md, ok := ds.ColumnByName("Mode")
	if !ok || md.Numeric {
		t.Fatalf("Mode should be a non-numeric column")
	}
}

// TestLoad_FallbackTimeHeader exercises substring-based time column inference
// and the generic timestamp layouts.
func TestLoad_FallbackTimeHeader(t *testing.T) {
	p := writeFixture(t, "log.csv",
		"Timestamp,Value\n"+
			"2024-01-05 12:00:00,1.5\n"+
			"2024-01-05 12:00:10,2.5\n")
	ds, err := NewLoader().Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.TimeColumn != "Timestamp" {
		t.Fatalf("time column = %q, want Timestamp", ds.TimeColumn)
	}
	if ds.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", ds.Rows())
	}
}

// TestLoad_TabDelimitedTXT checks the .txt extension switches to tab parsing.
func TestLoad_TabDelimitedTXT(t *testing.T) {
	p := writeFixture(t, "log.txt",
		"YYMMDD_HHMMSS\tFT-100\n"+
			"240105_120000\t5.0\n")
	ds, err := NewLoader().Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := ds.ColumnByName("FT-100"); !ok {
		t.Fatalf("FT-100 column not found; tab delimiting likely not applied")
	}
}

// TestLoad_DropsUnparseableTimeRows verifies rows whose timestamp fails to
// parse are skipped rather than aborting the load.
func TestLoad_DropsUnparseableTimeRows(t *testing.T) {
	p := writeFixture(t, "log.csv",
		"YYMMDD_HHMMSS,AT-100\n"+
			"garbage,1.0\n"+
			"240105_120000,2.0\n")
	ds, err := NewLoader().Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Rows() != 1 {
		t.Fatalf("rows = %d, want 1 (bad-time row dropped)", ds.Rows())
	}
}

// TestLoad_Errors maps degenerate inputs to their sentinel errors.
func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"empty", "", ErrEmptyFile},
		{"header only", "YYMMDD_HHMMSS,AT-100\n", ErrEmptyFile},
		{"no time column", "foo,bar\n1,2\n", ErrNoTimeColumn},
		{"no timestamps", "YYMMDD_HHMMSS,AT-100\nx,1\ny,2\n", ErrNoTimestamps},
		{"no numeric", "YYMMDD_HHMMSS,Mode\n240105_120000,Capture\n", ErrNoNumericColumns},
	}
	for _, tc := range cases {
		p := writeFixture(t, "log.csv", tc.content)
		_, err := NewLoader().Load(p)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

// TestLoad_DisplayLabels checks sensor description lookup is substring and
// case-insensitive on the header name.
func TestLoad_DisplayLabels(t *testing.T) {
	p := writeFixture(t, "log.csv",
		"YYMMDD_HHMMSS,at-100 raw,Unknown\n"+
			"240105_120000,410.0,1.0\n")
	ds, err := NewLoader().Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	col, _ := ds.ColumnByName("at-100 raw")
	if col.Display != "at-100 raw - "+SensorDescriptions["AT-100"] {
		t.Fatalf("display = %q", col.Display)
	}
	unk, _ := ds.ColumnByName("Unknown")
	if unk.Display != "Unknown" {
		t.Fatalf("undescribed column display = %q, want bare name", unk.Display)
	}
}

// TestSeriesIDs_DistinguishDuplicateHeaders verifies two identically named
// columns get distinct IDs.
func TestSeriesIDs_DistinguishDuplicateHeaders(t *testing.T) {
	p := writeFixture(t, "log.csv",
		"YYMMDD_HHMMSS,AT-100,AT-100\n"+
			"240105_120000,1.0,2.0\n")
	ds, err := NewLoader().Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(ds.Columns))
	}
	if ds.Columns[0].ID == ds.Columns[1].ID {
		t.Fatalf("duplicate headers share a SeriesID: %s", ds.Columns[0].ID)
	}
	if ds.Columns[0].Values[0] != 1.0 || ds.Columns[1].Values[0] != 2.0 {
		t.Fatalf("values = %v, %v", ds.Columns[0].Values[0], ds.Columns[1].Values[0])
	}
}

// TestParseTimestamp_DisplayTimezone verifies naive timestamps are interpreted
// in the loader's location.
func TestParseTimestamp_DisplayTimezone(t *testing.T) {
	l := NewLoader()
	got, ok := l.parseTimestamp("240105_120000")
	if !ok {
		t.Fatalf("parse failed")
	}
	want := time.Date(2024, 1, 5, 12, 0, 0, 0, l.Location)
	if !got.Equal(want) {
		t.Fatalf("parsed %v, want %v", got, want)
	}
}
