// Package timewindow clips a dataset to a [start, end] interval and applies
// optional moving-average smoothing to the clipped values.
package timewindow

import (
	"errors"
	"math"
	"time"

	"github.com/babygramps/CPUGraph/src/dataset"
)

// ErrEmptyWindow is returned when no rows fall inside the window.
var ErrEmptyWindow = errors.New("no data points in the selected time window")

// Window bounds a filter. A nil bound is open on that side.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Canonical returns the window with Start <= End. Callers that treat the
// window as an interval (calculators, the plot x-range) use this; the raw
// predicate in Apply keeps the bounds as given.
func (w Window) Canonical() Window {
	if w.Start != nil && w.End != nil && w.End.Before(*w.Start) {
		return Window{Start: w.End, End: w.Start}
	}
	return w
}

// Contains reports whether t falls inside the window. Both bounds are
// inclusive.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// Filtered is a contiguous row range of a dataset with per-series smoothed
// values. Row indices refer to the filtered view, not the source dataset.
type Filtered struct {
	Source   *dataset.Dataset
	Lo, Hi   int // source row range, inclusive
	Times    []time.Time
	values   map[dataset.SeriesID][]float64
	smoothed bool
}

func (f *Filtered) Rows() int { return len(f.Times) }

// Values returns the (possibly smoothed) series values inside the window.
func (f *Filtered) Values(id dataset.SeriesID) ([]float64, bool) {
	v, ok := f.values[id]
	return v, ok
}

// XUnix returns the window's timestamps as fractional Unix seconds.
func (f *Filtered) XUnix() []float64 {
	xs := make([]float64, len(f.Times))
	for i, t := range f.Times {
		xs[i] = float64(t.UnixNano()) / float64(time.Second)
	}
	return xs
}

// Smoothed reports whether smoothing was applied when the view was built.
func (f *Filtered) Smoothed() bool { return f.smoothed }

// Apply clips ds to win and, when smoothWindow > 1, replaces every numeric
// series with its centered moving average. Timestamps are ascending, so the
// clipped view is a contiguous row range.
func Apply(ds *dataset.Dataset, win Window, smoothWindow int) (*Filtered, error) {
	lo, hi := -1, -1
	for i, t := range ds.Times {
		if !win.Contains(t) {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	if lo < 0 {
		return nil, ErrEmptyWindow
	}

	f := &Filtered{
		Source:   ds,
		Lo:       lo,
		Hi:       hi,
		Times:    ds.Times[lo : hi+1],
		values:   make(map[dataset.SeriesID][]float64, len(ds.Columns)),
		smoothed: smoothWindow > 1,
	}
	for _, col := range ds.Columns {
		if !col.Numeric {
			continue
		}
		vals := col.Values[lo : hi+1]
		if smoothWindow > 1 {
			vals = Smooth(vals, smoothWindow)
		}
		f.values[col.ID] = vals
	}
	return f, nil
}

// Smooth returns the centered moving average of vals. An even window is
// widened to the next odd so the kernel stays centered; at the edges the
// mean runs over however many samples are available. NaN samples are left
// out of each mean.
func Smooth(vals []float64, window int) []float64 {
	if window <= 1 || len(vals) == 0 {
		return append([]float64(nil), vals...)
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2
	out := make([]float64, len(vals))
	for i := range vals {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(vals)-1 {
			hi = len(vals) - 1
		}
		sum, n := 0.0, 0
		for j := lo; j <= hi; j++ {
			if math.IsNaN(vals[j]) {
				continue
			}
			sum += vals[j]
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(n)
		}
	}
	return out
}
