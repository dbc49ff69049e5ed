package main

import (
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/babygramps/CPUGraph/src/hover"
	"github.com/babygramps/CPUGraph/src/logx"
	"github.com/babygramps/CPUGraph/src/rangesel"
)

// chartOverlay draws a crosshair over the chart image, shows the nearest
// sample values in a tooltip, and feeds clicks to the range selection
// machine. The chart is rendered with ImageFillContain, so cursor positions
// are mapped through the contain-fit rectangle back to image pixels.
type chartOverlay struct {
	widget.BaseWidget
	state    *uiState
	enabled  bool
	mouse    fyne.Position
	hovering bool
}

func newChartOverlay(state *uiState) *chartOverlay {
	c := &chartOverlay{state: state, enabled: state != nil && state.hoverEnabled}
	c.ExtendBaseWidget(c)
	return c
}

func (c *chartOverlay) CreateRenderer() fyne.WidgetRenderer {
	lineV := canvas.NewLine(theme.Color(theme.ColorNameDisabled))
	lineH := canvas.NewLine(theme.Color(theme.ColorNameDisabled))
	dot := canvas.NewCircle(theme.Color(theme.ColorNamePrimary))
	label := widget.NewRichTextWithText("")
	labelBG := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: 190})
	r := &overlayRenderer{
		c: c, lineV: lineV, lineH: lineH, dot: dot, label: label, labelBG: labelBG,
		objs: []fyne.CanvasObject{lineV, lineH, dot, labelBG, label},
	}
	return r
}

type overlayRenderer struct {
	c       *chartOverlay
	lineV   *canvas.Line
	lineH   *canvas.Line
	dot     *canvas.Circle
	label   *widget.RichText
	labelBG *canvas.Rectangle
	objs    []fyne.CanvasObject
}

func (r *overlayRenderer) Destroy() {}

func (r *overlayRenderer) hideAll() {
	r.lineV.Position1 = fyne.NewPos(-10, -10)
	r.lineV.Position2 = fyne.NewPos(-10, -10)
	r.lineH.Position1 = fyne.NewPos(-10, -10)
	r.lineH.Position2 = fyne.NewPos(-10, -10)
	r.dot.Move(fyne.NewPos(-10, -10))
	r.labelBG.Resize(fyne.NewSize(0, 0))
	r.labelBG.Move(fyne.NewPos(-1000, -1000))
	r.label.Move(fyne.NewPos(-1000, -1000))
}

// containRect returns the drawn image rectangle inside the overlay plus the
// scale from image pixels to view points.
func (r *overlayRenderer) containRect(size fyne.Size) (drawX, drawY, drawW, drawH, scale float32) {
	var imgW, imgH float32
	if st := r.c.state; st != nil && st.imgCanvas != nil && st.imgCanvas.Image != nil {
		b := st.imgCanvas.Image.Bounds()
		imgW = float32(b.Dx())
		imgH = float32(b.Dy())
	}
	if imgW <= 0 || imgH <= 0 {
		return 0, 0, size.Width, size.Height, 1
	}
	return computeContainRect(imgW, imgH, size.Width, size.Height)
}

// computeContainRect mirrors ImageFillContain: the image is scaled to fit
// inside the view and centered.
func computeContainRect(imgW, imgH, viewW, viewH float32) (drawX, drawY, drawW, drawH, scale float32) {
	sx := viewW / imgW
	sy := viewH / imgH
	scale = sx
	if sy < sx {
		scale = sy
	}
	drawW = imgW * scale
	drawH = imgH * scale
	drawX = (viewW - drawW) / 2
	drawY = (viewH - drawH) / 2
	return
}

func (r *overlayRenderer) Layout(size fyne.Size) {
	if r.c == nil {
		return
	}
	if !r.c.enabled || !r.c.hovering {
		r.hideAll()
		return
	}
	st := r.c.state
	x := r.c.mouse.X
	y := r.c.mouse.Y
	drawX, drawY, drawW, drawH, scale := r.containRect(size)
	if x < drawX || x > drawX+drawW || y < drawY || y > drawY+drawH || scale <= 0 {
		r.hideAll()
		return
	}

	r.lineV.Position1 = fyne.NewPos(x, drawY)
	r.lineV.Position2 = fyne.NewPos(x, drawY+drawH)
	r.lineH.Position1 = fyne.NewPos(drawX, y)
	r.lineH.Position2 = fyne.NewPos(drawX+drawW, y)
	r.dot.Resize(fyne.NewSize(6, 6))
	r.dot.Move(fyne.NewPos(x-3, y-3))

	// view -> image pixel -> data x, then resolve the nearest samples
	var text string
	if st != nil && st.plot != nil {
		imgPx := float64((x - drawX) / scale)
		if dataX, ok := st.plot.PxToX(imgPx); ok {
			var loc *time.Location
			if st.ds != nil {
				loc = st.ds.Location
			}
			hits := hover.Resolve(st.hoverSeries, dataX, st.plot.XMin, st.plot.XMax)
			text = hover.Tooltip(hits, loc)
		}
	}
	if text == "" {
		r.labelBG.Resize(fyne.NewSize(0, 0))
		r.labelBG.Move(fyne.NewPos(-1000, -1000))
		r.label.Move(fyne.NewPos(-1000, -1000))
		return
	}
	r.label.Segments = []widget.RichTextSegment{&widget.TextSegment{Text: text}}
	r.label.Refresh()
	pad := float32(6)
	ts := r.label.MinSize()
	bgW := ts.Width + 2*pad
	bgH := ts.Height + 2*pad
	tx, ty := x+8, y+8
	if tx+bgW > size.Width {
		tx = size.Width - bgW
	}
	if ty+bgH > size.Height {
		ty = size.Height - bgH
	}
	r.labelBG.Resize(fyne.NewSize(bgW, bgH))
	r.labelBG.Move(fyne.NewPos(tx, ty))
	r.label.Move(fyne.NewPos(tx+pad, ty+pad))
}

func (r *overlayRenderer) MinSize() fyne.Size           { return fyne.NewSize(10, 10) }
func (r *overlayRenderer) Objects() []fyne.CanvasObject { return r.objs }
func (r *overlayRenderer) Refresh() {
	r.Layout(r.c.Size())
	r.lineV.StrokeColor = theme.Color(theme.ColorNameDisabled)
	r.lineV.StrokeWidth = 1
	r.lineH.StrokeColor = theme.Color(theme.ColorNameDisabled)
	r.lineH.StrokeWidth = 1
	r.lineV.Refresh()
	r.lineH.Refresh()
	r.dot.Refresh()
	r.labelBG.Refresh()
	r.label.Refresh()
}

func (c *chartOverlay) MouseMoved(ev *desktop.MouseEvent) {
	if !c.enabled {
		return
	}
	c.mouse = ev.Position
	c.Refresh()
}
func (c *chartOverlay) MouseIn(ev *desktop.MouseEvent) { c.hovering = true; c.Refresh() }
func (c *chartOverlay) MouseOut()                      { c.hovering = false; c.Refresh() }

// Tapped feeds chart clicks to the range selection machine.
func (c *chartOverlay) Tapped(ev *fyne.PointEvent) {
	st := c.state
	if st == nil || st.plot == nil || !st.rangeSel.Active() {
		return
	}
	drawX, _, _, _, scale := (&overlayRenderer{c: c}).containRect(c.Size())
	if scale <= 0 {
		return
	}
	imgPx := float64((ev.Position.X - drawX) / scale)
	switch st.rangeSel.OnClick(imgPx) {
	case rangesel.StartSet, rangesel.StartReset:
		if start, ok := st.rangeSel.Start(); ok {
			st.statusLabel.SetText("Start: " + start.Format(windowEntryLayout) + " (click again for the end)")
			setWindowEntries(st, start, time.Time{})
		}
		updateRangeButton(st)
		redrawChart(st)
	case rangesel.RangeSet:
		start, end, _ := st.rangeSel.Range()
		st.statusLabel.SetText("Window: " + start.Format(windowEntryLayout) + " - " + end.Format(windowEntryLayout))
		setWindowEntries(st, start, end)
		logx.Infof("[viewer] range selected: %s to %s", start, end)
		updateRangeButton(st)
		redrawChart(st)
	}
}
