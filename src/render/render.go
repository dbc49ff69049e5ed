// Package render draws the sensor chart to an image with go-chart and
// composites the pieces go-chart has no primitive for: cycle shading, cycle
// labels, range-selection markers, and the watermark.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/babygramps/CPUGraph/src/cycles"
	"github.com/babygramps/CPUGraph/src/dataset"
	"github.com/babygramps/CPUGraph/src/hover"
	"github.com/babygramps/CPUGraph/src/logx"
)

// Chart paddings in image pixel space. The crosshair overlay mirrors these
// when it maps cursor positions back to data coordinates, so keep them in
// one place.
const (
	PadTop    = 14
	PadLeft   = 16
	PadRight  = 12
	PadBottom = 48
)

// go-chart shrinks its canvas box past the padding to make room for axis
// tick labels and names. The gutters below measure that extra inset on a
// rendered chart; the data area spans
// [PadLeft+axisLeftGutterPx, Width-PadRight-axisRightGutterPx].
const (
	axisLeftGutterPx  = 78
	axisRightGutterPx = 98
)

// PlotAreaX returns the pixel bounds of the painted data area.
func (p *Plot) PlotAreaX() (left, right float64) {
	return float64(PadLeft + axisLeftGutterPx), float64(p.Width - PadRight - axisRightGutterPx)
}

// lineStyle renders a thin connected line without dots.
func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 1.5,
		StrokeColor: col,
	}
}

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorCyan,
	chart.ColorAlternateGreen,
	chart.ColorAlternateGray,
	chart.ColorYellow,
}

// SeriesColor returns the stable palette color for the i-th plotted series.
func SeriesColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// Series is one line to plot. XS are Unix seconds.
type Series struct {
	ID    dataset.SeriesID
	Label string
	Axis  hover.Axis
	XS    []float64
	YS    []float64
}

// Marker is a pinned vertical line, e.g. a range-selection bound.
type Marker struct {
	X     float64
	Color drawing.Color
}

// Options controls one render.
type Options struct {
	Width, Height int
	Title         string
	LeftAxisName  string
	RightAxisName string
	ShowLegend    bool
	Watermark     string
	Logo          image.Image
	Hint          string
	Cycles        []cycles.Cycle
	Markers       []Marker
}

// Plot is a rendered chart plus the geometry needed to map between pixels
// and data coordinates.
type Plot struct {
	Img           image.Image
	Width, Height int
	XMin, XMax    float64
	YMinLeft      float64
	YMaxLeft      float64
	YMinRight     float64
	YMaxRight     float64
}

// XToPx maps a data x (Unix seconds) to an image pixel column.
func (p *Plot) XToPx(x float64) float64 {
	left, right := p.PlotAreaX()
	if p.XMax <= p.XMin || right <= left {
		return left
	}
	return left + (x-p.XMin)/(p.XMax-p.XMin)*(right-left)
}

// PxToX maps an image pixel column back to data x. ok is false outside the
// plot area.
func (p *Plot) PxToX(px float64) (float64, bool) {
	left, right := p.PlotAreaX()
	if right <= left || p.XMax <= p.XMin {
		return 0, false
	}
	f := (px - left) / (right - left)
	if f < 0 || f > 1 {
		return 0, false
	}
	return p.XMin + f*(p.XMax-p.XMin), true
}

// yToPx maps a left-axis data y to an image pixel row.
func (p *Plot) yToPx(y float64) float64 {
	plotH := float64(p.Height - PadTop - PadBottom)
	if p.YMaxLeft <= p.YMinLeft || plotH <= 0 {
		return float64(PadTop)
	}
	return float64(PadTop) + (p.YMaxLeft-y)/(p.YMaxLeft-p.YMinLeft)*plotH
}

// Render draws the chart. An empty series list yields a blank image with
// valid (zeroed) geometry so the UI still refreshes.
func Render(series []Series, opts Options) *Plot {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 420
	}
	out := &Plot{Width: opts.Width, Height: opts.Height}
	if len(series) == 0 {
		out.Img = Blank(opts.Width, opts.Height)
		return out
	}

	xMin, xMax := math.MaxFloat64, -math.MaxFloat64
	lMin, lMax := math.MaxFloat64, -math.MaxFloat64
	rMin, rMax := math.MaxFloat64, -math.MaxFloat64
	var chSeries []chart.Series
	haveRight := false
	for i, s := range series {
		for j, x := range s.XS {
			if x < xMin {
				xMin = x
			}
			if x > xMax {
				xMax = x
			}
			v := s.YS[j]
			if math.IsNaN(v) {
				continue
			}
			if s.Axis == hover.AxisRight {
				if v < rMin {
					rMin = v
				}
				if v > rMax {
					rMax = v
				}
			} else {
				if v < lMin {
					lMin = v
				}
				if v > lMax {
					lMax = v
				}
			}
		}
		cs := chart.ContinuousSeries{
			Name:    s.Label,
			XValues: padSingle(s.XS),
			YValues: padSingleY(s.XS, s.YS),
			Style:   lineStyle(SeriesColor(i)),
		}
		if s.Axis == hover.AxisRight {
			cs.YAxis = chart.YAxisSecondary
			haveRight = true
		}
		chSeries = append(chSeries, cs)
	}
	if xMax <= xMin {
		xMax = xMin + 1
	}
	out.XMin, out.XMax = xMin, xMax

	yAxis := chart.YAxis{Name: opts.LeftAxisName}
	if lMin != math.MaxFloat64 {
		nMin, nMax := niceAxisBounds(lMin, lMax)
		yAxis.Range = &chart.ContinuousRange{Min: nMin, Max: nMax}
		yAxis.Ticks = niceTicks(nMin, nMax, 6)
		out.YMinLeft, out.YMaxLeft = nMin, nMax
	}
	ySecondary := chart.YAxis{Name: opts.RightAxisName}
	if haveRight && rMin != math.MaxFloat64 {
		nMin, nMax := niceAxisBounds(rMin, rMax)
		ySecondary.Range = &chart.ContinuousRange{Min: nMin, Max: nMax}
		ySecondary.Ticks = niceTicks(nMin, nMax, 6)
		out.YMinRight, out.YMaxRight = nMin, nMax
	}

	minT := time.Unix(int64(xMin), 0)
	maxT := time.Unix(int64(xMax), 0)
	step, labelFmt := pickTimeStep(maxT.Sub(minT))
	xAxis := chart.XAxis{
		Name:  "Time",
		Ticks: makeNiceTimeTicks(minT, maxT, step, labelFmt),
		Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		ValueFormatter: func(v interface{}) string {
			f, ok := v.(float64)
			if !ok {
				return ""
			}
			return time.Unix(int64(f), 0).Format(labelFmt)
		},
	}

	ch := chart.Chart{
		Title:          opts.Title,
		Background:     chart.Style{Padding: chart.Box{Top: PadTop, Left: PadLeft, Right: PadRight, Bottom: PadBottom}},
		XAxis:          xAxis,
		YAxis:          yAxis,
		YAxisSecondary: ySecondary,
		Series:         chSeries,
		Width:          opts.Width,
		Height:         opts.Height,
	}
	if opts.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		logx.Warnf("[viewer] chart render error: %v; showing blank fallback", err)
		out.Img = Blank(opts.Width, opts.Height)
		return out
	}
	img, err := png.Decode(&buf)
	if err != nil {
		logx.Warnf("[viewer] chart decode error: %v; showing blank fallback", err)
		out.Img = Blank(opts.Width, opts.Height)
		return out
	}

	rgba := toRGBA(img)
	drawCycleSpans(rgba, out, opts.Cycles)
	drawMarkers(rgba, out, opts.Markers)
	if opts.Logo != nil {
		drawLogoTopRight(rgba, opts.Logo)
	}
	if opts.Watermark != "" {
		drawTextTopRight(rgba, opts.Watermark)
	}
	if opts.Hint != "" {
		drawTextBottomLeft(rgba, opts.Hint)
	}
	out.Img = rgba
	return out
}

// padSingle works around go-chart rejecting single-point series by
// duplicating the lone x one second later.
func padSingle(xs []float64) []float64 {
	if len(xs) != 1 {
		return xs
	}
	return []float64{xs[0], xs[0] + 1}
}

func padSingleY(xs, ys []float64) []float64 {
	if len(xs) != 1 {
		return ys
	}
	return []float64{ys[0], ys[0]}
}

func toRGBA(img image.Image) *image.RGBA {
	if r, ok := img.(*image.RGBA); ok {
		return r
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// drawCycleSpans shades each cycle's x-range and writes its label near the
// top of the plot area.
func drawCycleSpans(rgba *image.RGBA, p *Plot, cs []cycles.Cycle) {
	if len(cs) == 0 {
		return
	}
	plotTop := PadTop
	plotBottom := p.Height - PadBottom
	for _, c := range cs {
		x0 := int(p.XToPx(c.XStart))
		x1 := int(p.XToPx(c.XEnd))
		if x1 <= x0 {
			x1 = x0 + 1
		}
		col := c.Color
		tint := image.NewUniform(color.RGBA{R: col.R, G: col.G, B: col.B, A: col.A})
		draw.Draw(rgba, image.Rect(x0, plotTop, x1, plotBottom), tint, image.Point{}, draw.Over)
	}
	for _, pl := range cycles.Labels(cs, p.YMinLeft, p.YMaxLeft) {
		drawCenteredText(rgba, pl.Text, int(p.XToPx(pl.X)), int(p.yToPx(pl.Y)))
	}
}

// drawMarkers draws 1px vertical lines across the plot area.
func drawMarkers(rgba *image.RGBA, p *Plot, ms []Marker) {
	left, right := p.PlotAreaX()
	for _, m := range ms {
		x := int(p.XToPx(m.X))
		if x < int(left) || x > int(right) {
			continue
		}
		col := color.RGBA{R: m.Color.R, G: m.Color.G, B: m.Color.B, A: m.Color.A}
		for y := PadTop; y < p.Height-PadBottom; y++ {
			rgba.SetRGBA(x, y, col)
		}
	}
}

// Blank returns a dark placeholder image used when there is nothing to draw
// or rendering failed.
func Blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 18, G: 18, B: 18, A: 255})
		}
	}
	return img
}

// logoAlpha fades the logo so it never competes with the data.
const logoAlpha = 0.15

// LoadLogo reads an optional PNG logo asset. A missing or unreadable file is
// not an error; callers get nil and render without a logo.
func LoadLogo(path string) image.Image {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		logx.Warnf("[viewer] logo %s unreadable: %v", path, err)
		return nil
	}
	return img
}

// drawLogoTopRight composites the logo at reduced opacity into the top-right
// corner of the plot area.
func drawLogoTopRight(rgba *image.RGBA, logo image.Image) {
	lb := logo.Bounds()
	x0 := rgba.Bounds().Dx() - PadRight - lb.Dx() - 6
	if x0 < PadLeft {
		x0 = PadLeft
	}
	dst := image.Rect(x0, PadTop+6, x0+lb.Dx(), PadTop+6+lb.Dy())
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(logoAlpha * 255))})
	draw.DrawMask(rgba, dst, logo, lb.Min, mask, image.Point{}, draw.Over)
}

// WatermarkText is the default stamp for exported charts.
func WatermarkText(path string) string {
	return fmt.Sprintf("CPUGraph  %s", path)
}
