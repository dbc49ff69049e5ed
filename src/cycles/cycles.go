// Package cycles segments a run into process cycles by watching the elapsed
// counter column reset, and produces the shaded spans and labels drawn
// behind the plotted series.
package cycles

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// colorSeed keeps cycle shading stable across renders of the same file.
const colorSeed = 42

// spanAlpha is the opacity of the shaded background bands.
const spanAlpha = 0.15

// labelYFraction places cycle labels near the top of the plot area.
const labelYFraction = 0.98

// Cycle is one segment between counter resets. Row indices are inclusive and
// refer to the rows the caller passed in; XStart/XEnd are the x coordinates
// (Unix seconds) of those rows.
type Cycle struct {
	Index     int
	RowStart  int
	RowEnd    int
	XStart    float64
	XEnd      float64
	ModeLabel string
	Color     drawing.Color
}

// Label returns the text drawn in the span, e.g. "Cycle 3\nCapture", or ""
// for a cycle with no mode label. Unlabeled cycles are not annotated.
func (c Cycle) Label() string {
	if c.ModeLabel == "" {
		return ""
	}
	return "Cycle " + strconv.Itoa(c.Index) + "\n" + c.ModeLabel
}

// Segment splits the rows into cycles. A new cycle starts at row 0 and at
// every row where the counter drops below its previous value. NaN counter
// samples never start a cycle. modes may be nil; when present, each cycle's
// label is the first non-empty mode string inside it. A nil or empty counter
// yields no cycles.
func Segment(counter []float64, modes []string, xs []float64) []Cycle {
	if len(counter) == 0 || len(counter) != len(xs) {
		return nil
	}

	starts := []int{0}
	for i := 1; i < len(counter); i++ {
		if math.IsNaN(counter[i]) || math.IsNaN(counter[i-1]) {
			continue
		}
		if counter[i] < counter[i-1] {
			starts = append(starts, i)
		}
	}

	rng := rand.New(rand.NewSource(colorSeed))
	out := make([]Cycle, 0, len(starts))
	for ci, lo := range starts {
		hi := len(counter) - 1
		if ci+1 < len(starts) {
			hi = starts[ci+1] - 1
		}
		c := Cycle{
			Index:    ci,
			RowStart: lo,
			RowEnd:   hi,
			XStart:   xs[lo],
			XEnd:     xs[hi],
			Color:    nextColor(rng),
		}
		if modes != nil {
			for i := lo; i <= hi && i < len(modes); i++ {
				if modes[i] != "" {
					c.ModeLabel = modes[i]
					break
				}
			}
		}
		out = append(out, c)
	}
	return out
}

// nextColor draws a translucent pastel from the seeded generator. Channels
// are uniform in [0.2, 0.9) so bands stay visible on white without
// overpowering the series lines.
func nextColor(rng *rand.Rand) drawing.Color {
	ch := func() uint8 { return uint8((0.2 + 0.7*rng.Float64()) * 255) }
	return drawing.Color{R: ch(), G: ch(), B: ch(), A: uint8(math.Round(spanAlpha * 255))}
}

// LabelY returns the y coordinate (data space) for cycle labels given the
// final axis limits.
func LabelY(yMin, yMax float64) float64 {
	return yMin + labelYFraction*(yMax-yMin)
}

// LabelX returns the x midpoint of a cycle's span.
func (c Cycle) LabelX() float64 {
	return (c.XStart + c.XEnd) / 2
}

// Placement is a label with its data-space anchor point. Placements can only
// be computed once the axis limits are final, which is why labels are a
// second pass over the cycles rather than part of Segment.
type Placement struct {
	X, Y float64
	Text string
}

// Labels returns one placement per labeled cycle at the span's x midpoint,
// near the top of the y range. Cycles without a mode label get none.
func Labels(cs []Cycle, yMin, yMax float64) []Placement {
	if len(cs) == 0 {
		return nil
	}
	y := LabelY(yMin, yMax)
	var out []Placement
	for _, c := range cs {
		if c.ModeLabel == "" {
			continue
		}
		out = append(out, Placement{X: c.LabelX(), Y: y, Text: c.Label()})
	}
	return out
}
