package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/babygramps/CPUGraph/src/logx"
)

// Load failure reasons, wrapped with path context by Load.
var (
	ErrEmptyFile        = errors.New("the selected file is empty")
	ErrNoTimeColumn     = errors.New("could not locate a time-like column (e.g. 'YYMMDD_HHMMSS', 'time', or 'timestamp')")
	ErrNoTimestamps     = errors.New("could not parse any timestamps in the time column")
	ErrNoNumericColumns = errors.New("no numeric columns were detected to plot")
)

// Loader reads CSV/TXT sensor exports and prepares them for plotting.
type Loader struct {
	Descriptions map[string]string
	Location     *time.Location
}

// NewLoader returns a loader using the package defaults. The display timezone
// falls back to UTC when the zone database does not know DisplayTZName.
func NewLoader() *Loader {
	loc, err := time.LoadLocation(DisplayTZName)
	if err != nil {
		logx.Warnf("[Loader] timezone %s unavailable, using UTC: %v", DisplayTZName, err)
		loc = time.UTC
	}
	return &Loader{Descriptions: SensorDescriptions, Location: loc}
}

// Timestamp layouts tried in order. The sensor logger's native format
// (YYMMDD_HHMMSS) comes first.
var timeLayouts = []string{
	"060102_150405",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006 15:04:05",
	"01/02/2006 3:04:05 PM",
	"2006-01-02",
}

// Load reads the given data file and returns a Dataset sorted by time.
// Tab-delimited files are recognized by the .txt extension.
func (l *Loader) Load(path string) (*Dataset, error) {
	start := time.Now()
	defer logx.TimeTrack(start, "dataset load")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		r.Comma = '\t'
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimPrefix(strings.TrimSpace(header[i]), "\ufeff")
	}
	rows := records[1:]

	timeIx := inferTimeColumn(header)
	if timeIx < 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTimeColumn)
	}

	// Parse timestamps; drop rows that do not parse.
	type timedRow struct {
		t    time.Time
		cols []string
	}
	kept := make([]timedRow, 0, len(rows))
	for _, row := range rows {
		if timeIx >= len(row) {
			continue
		}
		t, ok := l.parseTimestamp(row[timeIx])
		if !ok {
			continue
		}
		kept = append(kept, timedRow{t: t, cols: row})
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s column %q: %w", path, header[timeIx], ErrNoTimestamps)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].t.Before(kept[j].t) })

	ds := &Dataset{
		Path:       path,
		TimeColumn: header[timeIx],
		Times:      make([]time.Time, len(kept)),
		Location:   l.Location,
		byID:       map[SeriesID]int{},
	}
	for i, kr := range kept {
		ds.Times[i] = kr.t
	}

	numericCount := 0
	for ci, name := range header {
		if ci == timeIx {
			continue
		}
		col := Column{
			ID:      SeriesID(fmt.Sprintf("c%d:%s", ci, name)),
			Name:    name,
			Display: l.displayName(name),
			Raw:     make([]string, len(kept)),
			Values:  make([]float64, len(kept)),
		}
		parsed := 0
		for ri, kr := range kept {
			var cell string
			if ci < len(kr.cols) {
				cell = strings.TrimSpace(kr.cols[ci])
			}
			col.Raw[ri] = cell
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				col.Values[ri] = v
				parsed++
			} else {
				col.Values[ri] = math.NaN()
			}
		}
		col.Numeric = parsed > 0
		if col.Numeric {
			numericCount++
		}
		ds.byID[col.ID] = len(ds.Columns)
		ds.Columns = append(ds.Columns, col)
	}
	if numericCount == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoNumericColumns)
	}

	logx.Infof("[Loader] %s: %d rows, %d numeric columns, time column %q",
		filepath.Base(path), ds.Rows(), numericCount, ds.TimeColumn)
	return ds, nil
}

// inferTimeColumn prefers the logger's native YYMMDD_HHMMSS header, then the
// first column whose name mentions time, date, or timestamp.
func inferTimeColumn(header []string) int {
	for i, name := range header {
		if name == "YYMMDD_HHMMSS" {
			return i
		}
	}
	for i, name := range header {
		lowered := strings.ToLower(name)
		if strings.Contains(lowered, "time") || strings.Contains(lowered, "date") || strings.Contains(lowered, "timestamp") {
			return i
		}
	}
	return -1
}

// parseTimestamp interprets naive timestamps in the display timezone.
func (l *Loader) parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, l.Location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (l *Loader) displayName(column string) string {
	upper := strings.ToUpper(column)
	for tag, desc := range l.Descriptions {
		if strings.Contains(upper, strings.ToUpper(tag)) {
			return column + " - " + desc
		}
	}
	return column
}
