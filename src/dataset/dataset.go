package dataset

import (
	"time"
)

// SeriesID is a stable, opaque key for one data column. It is derived from the
// column's position and raw header so that two columns with identical display
// labels still select and plot independently.
type SeriesID string

// Column is one non-time column of a loaded file.
type Column struct {
	ID      SeriesID
	Name    string  // raw header as it appears in the file
	Display string  // human-readable label; may collide across columns
	Raw     []string
	Values  []float64 // parsed values, NaN where the cell is not numeric
	Numeric bool      // at least one cell parsed as a number
}

// Dataset is an ordered, row-indexed view of a sensor log, sorted by time.
type Dataset struct {
	Path       string
	TimeColumn string
	Times      []time.Time // display timezone, ascending
	Columns    []Column    // file order, time column excluded
	Location   *time.Location

	byID map[SeriesID]int
}

// Rows returns the number of retained rows.
func (d *Dataset) Rows() int { return len(d.Times) }

// ColumnByID looks a column up by its stable identity.
func (d *Dataset) ColumnByID(id SeriesID) (*Column, bool) {
	ix, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return &d.Columns[ix], true
}

// ColumnByName returns the first column with the given raw header.
func (d *Dataset) ColumnByName(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumns returns the plottable columns in file order.
func (d *Dataset) NumericColumns() []Column {
	out := make([]Column, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Numeric {
			out = append(out, c)
		}
	}
	return out
}

// CounterColumn returns the cycle counter values ("Time (s)") when present.
// Values that did not parse are NaN so segmentation can skip them.
func (d *Dataset) CounterColumn() ([]float64, bool) {
	c, ok := d.ColumnByName(counterColumnName)
	if !ok {
		return nil, false
	}
	return c.Values, true
}

// ModeColumn returns the per-row mode labels when present.
func (d *Dataset) ModeColumn() ([]string, bool) {
	c, ok := d.ColumnByName(modeColumnName)
	if !ok {
		return nil, false
	}
	return c.Raw, true
}

// XUnix returns the time axis as Unix seconds (fractional), the coordinate
// space shared with the hover resolver and the selection machine.
func (d *Dataset) XUnix() []float64 {
	xs := make([]float64, len(d.Times))
	for i, t := range d.Times {
		xs[i] = float64(t.UnixNano()) / float64(time.Second)
	}
	return xs
}
