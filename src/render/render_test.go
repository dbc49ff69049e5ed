package render

import (
	"math"
	"testing"
	"time"

	"github.com/babygramps/CPUGraph/src/cycles"
	"github.com/babygramps/CPUGraph/src/hover"
)

func sampleSeries(n int) Series {
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = float64(1700000000 + 10*i)
		ys[i] = 400 + float64(i)
	}
	return Series{ID: "c1:AT-100", Label: "AT-100", XS: xs, YS: ys}
}

// TestRender_ProducesImageAndGeometry smoke-tests a render with both axes,
// cycle shading, and markers.
func TestRender_ProducesImageAndGeometry(t *testing.T) {
	left := sampleSeries(30)
	right := sampleSeries(30)
	right.ID = "c2:PT-100"
	right.Label = "PT-100"
	right.Axis = hover.AxisRight
	for i := range right.YS {
		right.YS[i] = 14 + 0.01*float64(i)
	}

	cyc := cycles.Segment([]float64{0, 1, 2, 0, 1}, nil, left.XS[:5])
	p := Render([]Series{left, right}, Options{
		Width: 800, Height: 420,
		Title:      "Sensor Log",
		ShowLegend: true,
		Cycles:     cyc,
		Markers:    []Marker{{X: left.XS[10], Color: SeriesColor(2)}},
		Watermark:  "CPUGraph",
	})
	if p.Img == nil {
		t.Fatalf("nil image")
	}
	b := p.Img.Bounds()
	if b.Dx() != 800 || b.Dy() != 420 {
		t.Fatalf("image size = %dx%d, want 800x420", b.Dx(), b.Dy())
	}
	if p.XMin != left.XS[0] || p.XMax != left.XS[len(left.XS)-1] {
		t.Fatalf("x-range = [%v, %v]", p.XMin, p.XMax)
	}
	if p.YMinLeft >= p.YMaxLeft {
		t.Fatalf("left y-range empty: [%v, %v]", p.YMinLeft, p.YMaxLeft)
	}
	if p.YMinRight >= p.YMaxRight {
		t.Fatalf("right y-range empty: [%v, %v]", p.YMinRight, p.YMaxRight)
	}
}

// TestRender_EmptySeriesFallsBackToBlank verifies the UI always gets an
// image to show.
func TestRender_EmptySeriesFallsBackToBlank(t *testing.T) {
	p := Render(nil, Options{Width: 400, Height: 200})
	if p.Img == nil {
		t.Fatalf("nil image for empty render")
	}
	b := p.Img.Bounds()
	if b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("blank size = %dx%d", b.Dx(), b.Dy())
	}
}

// TestPlotPixelMapping_RoundTrips verifies XToPx and PxToX invert each other
// inside the plot area and PxToX rejects the margins.
func TestPlotPixelMapping_RoundTrips(t *testing.T) {
	p := &Plot{Width: 800, Height: 420, XMin: 1000, XMax: 2000}
	for _, x := range []float64{1000, 1250, 1999, 2000} {
		px := p.XToPx(x)
		got, ok := p.PxToX(px)
		if !ok || math.Abs(got-x) > 1e-6 {
			t.Fatalf("round trip %v -> %v -> %v ok=%v", x, px, got, ok)
		}
	}
	if _, ok := p.PxToX(3); ok {
		t.Fatalf("PxToX inside the left margin should miss")
	}
	if _, ok := p.PxToX(float64(p.Width) - 3); ok {
		t.Fatalf("PxToX inside the right margin should miss")
	}
}

// TestPlotPixelMapping_AxisGutters verifies the mapping lands on the painted
// data area, not the padding box: go-chart insets the canvas further to fit
// the axis tick labels, so the data edges sit well inside the padding. On an
// 800px render the first sample paints near column 94 and the last near 690.
func TestPlotPixelMapping_AxisGutters(t *testing.T) {
	p := &Plot{Width: 800, Height: 420, XMin: 1000, XMax: 2000}
	left, right := p.PlotAreaX()
	if left != float64(PadLeft+axisLeftGutterPx) || right != float64(800-PadRight-axisRightGutterPx) {
		t.Fatalf("plot area = [%v, %v]", left, right)
	}
	if got := p.XToPx(p.XMin); got != left {
		t.Fatalf("XToPx(xMin) = %v, want %v", got, left)
	}
	if got := p.XToPx(p.XMax); got != right {
		t.Fatalf("XToPx(xMax) = %v, want %v", got, right)
	}
	// A cursor in the left tick-label gutter resolves to nothing.
	if _, ok := p.PxToX(left - 10); ok {
		t.Fatalf("PxToX inside the left axis gutter should miss")
	}
	if _, ok := p.PxToX(right + 10); ok {
		t.Fatalf("PxToX inside the right axis gutter should miss")
	}
	// The midpoint of the painted area maps to the middle of the data range.
	mid, ok := p.PxToX((left + right) / 2)
	if !ok || math.Abs(mid-1500) > 1e-6 {
		t.Fatalf("midpoint maps to %v ok=%v, want 1500", mid, ok)
	}
}

// TestNiceAxisBounds verifies rounding is outward and degenerate spans get
// a positive height.
func TestNiceAxisBounds(t *testing.T) {
	a, b := niceAxisBounds(12, 87)
	if a > 12 || b < 87 {
		t.Fatalf("bounds [%v, %v] clip the data", a, b)
	}
	a, b = niceAxisBounds(5, 5)
	if b <= a {
		t.Fatalf("degenerate span not widened: [%v, %v]", a, b)
	}
}

// TestNiceTicks verifies tick counts stay readable and cover the range.
func TestNiceTicks(t *testing.T) {
	ticks := niceTicks(0, 100, 6)
	if len(ticks) < 2 || len(ticks) > 9 {
		t.Fatalf("tick count = %d", len(ticks))
	}
	if ticks[0].Value > 0 || ticks[len(ticks)-1].Value < 100 {
		t.Fatalf("ticks [%v, %v] do not cover the range", ticks[0].Value, ticks[len(ticks)-1].Value)
	}
	if niceTicks(0, 1, 1) != nil {
		t.Fatalf("n<2 should yield no ticks")
	}
}

// TestFormatTick spot-checks the precision tiers.
func TestFormatTick(t *testing.T) {
	cases := map[float64]string{
		0:      "0",
		1500:   "1500",
		250:    "250",
		42.25:  "42.2",
		3.75:   "3.75",
		0.0042: "0.0042",
	}
	for v, want := range cases {
		if got := formatTick(v); got != want {
			t.Fatalf("formatTick(%v) = %q, want %q", v, got, want)
		}
	}
}

// TestPickTimeStep verifies steps grow with the span.
func TestPickTimeStep(t *testing.T) {
	short, _ := pickTimeStep(90 * time.Second)
	long, _ := pickTimeStep(12 * time.Hour)
	if short >= long {
		t.Fatalf("step for 90s (%v) should be below step for 12h (%v)", short, long)
	}
}

// TestMakeNiceTimeTicks verifies tick values are Unix seconds aligned to the
// step.
func TestMakeNiceTimeTicks(t *testing.T) {
	minT := time.Unix(1700000003, 0)
	maxT := minT.Add(90 * time.Second)
	ticks := makeNiceTimeTicks(minT, maxT, 10*time.Second, "15:04:05")
	if len(ticks) == 0 {
		t.Fatalf("no ticks")
	}
	for _, tk := range ticks {
		if int64(tk.Value)%10 != 0 {
			t.Fatalf("tick %v not aligned to 10s", tk.Value)
		}
	}
}
