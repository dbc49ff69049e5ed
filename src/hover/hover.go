// Package hover resolves the cursor position to the nearest plotted samples
// and formats the tooltip shown next to the crosshair.
package hover

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/babygramps/CPUGraph/src/dataset"
)

// snapFraction is the largest cursor-to-sample x distance, as a fraction of
// the visible range, that still produces a hit.
const snapFraction = 0.02

// groupFraction bounds how far a series' nearest sample may sit from the
// overall nearest x and still join the same tooltip.
const groupFraction = 0.001

// tooltipTimeLayout matches the status-bar clock.
const tooltipTimeLayout = "01/02/2006 03:04:05 PM"

// Axis identifies which y-axis a series is drawn against.
type Axis int

const (
	AxisLeft Axis = iota
	AxisRight
)

// Series is one line currently on the plot, registered in draw order.
// Overlay series (cycle shading, range markers) are never hover targets.
type Series struct {
	ID      dataset.SeriesID
	Label   string
	Axis    Axis
	XS      []float64
	YS      []float64
	Overlay bool
}

// Hit is one sample under the cursor.
type Hit struct {
	ID    dataset.SeriesID
	Label string
	Axis  Axis
	X     float64
	Y     float64
}

// Resolve returns the samples to show for a cursor at x, given the visible
// x-range. Each series contributes its nearest sample; the closest of those
// anchors the group, and only series whose nearest sample lies within
// groupFraction of the anchor join it. Returns nil when the anchor is
// farther than snapFraction of the range, or when the range is empty.
func Resolve(series []Series, x, xMin, xMax float64) []Hit {
	span := xMax - xMin
	if span <= 0 {
		return nil
	}

	type candidate struct {
		hit  Hit
		dist float64
	}
	var cands []candidate
	bestDist := math.Inf(1)
	for _, s := range series {
		if s.Overlay || len(s.XS) == 0 {
			continue
		}
		bi, bd := -1, math.Inf(1)
		for i, sx := range s.XS {
			if i < len(s.YS) && math.IsNaN(s.YS[i]) {
				continue
			}
			if d := math.Abs(sx - x); d < bd {
				bi, bd = i, d
			}
		}
		if bi < 0 {
			continue
		}
		cands = append(cands, candidate{
			hit:  Hit{ID: s.ID, Label: s.Label, Axis: s.Axis, X: s.XS[bi], Y: s.YS[bi]},
			dist: bd,
		})
		if bd < bestDist {
			bestDist = bd
		}
	}
	if len(cands) == 0 || bestDist > snapFraction*span {
		return nil
	}

	var anchorX float64
	for _, c := range cands {
		if c.dist == bestDist {
			anchorX = c.hit.X
			break
		}
	}
	var hits []Hit
	for _, c := range cands {
		if math.Abs(c.hit.X-anchorX) <= groupFraction*span {
			hits = append(hits, c.hit)
		}
	}
	return hits
}

// FormatValue renders a sample value with precision scaled to its magnitude,
// so tiny vacuum readings keep their digits without padding large ones.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	av := math.Abs(v)
	switch {
	case av < 0.01:
		return fmt.Sprintf("%.6f", v)
	case av < 1:
		return fmt.Sprintf("%.4f", v)
	case av < 100:
		return fmt.Sprintf("%.3f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// tooltipSeparator sits between the timestamp header and the value lines.
var tooltipSeparator = strings.Repeat("─", 40)

// Tooltip renders the hover box: a timestamp header for the anchor sample, a
// separator rule, then one "Label: value" line per hit.
func Tooltip(hits []Hit, loc *time.Location) string {
	if len(hits) == 0 {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	sec, frac := math.Modf(hits[0].X)
	ts := time.Unix(int64(sec), int64(frac*float64(time.Second))).In(loc)
	var b strings.Builder
	b.WriteString("Time: ")
	b.WriteString(ts.Format(tooltipTimeLayout))
	b.WriteString("\n")
	b.WriteString(tooltipSeparator)
	for _, h := range hits {
		b.WriteString("\n")
		b.WriteString(h.Label)
		b.WriteString(": ")
		b.WriteString(FormatValue(h.Y))
	}
	return b.String()
}
