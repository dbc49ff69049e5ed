// Sensor log viewer entrypoint.
//
// Loads a CSV/TXT sensor export and plots any columns against time on two
// y-axes, with cycle shading from the counter column, a hover crosshair
// with value tooltips, click-to-select time ranges, moving-average
// smoothing, CO2/RH calculations over the visible window, and PNG/PDF
// export.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/babygramps/CPUGraph/src/cycles"
	"github.com/babygramps/CPUGraph/src/dataset"
	"github.com/babygramps/CPUGraph/src/hover"
	"github.com/babygramps/CPUGraph/src/logx"
	"github.com/babygramps/CPUGraph/src/rangesel"
	"github.com/babygramps/CPUGraph/src/render"
	"github.com/babygramps/CPUGraph/src/report"
	"github.com/babygramps/CPUGraph/src/selection"
	"github.com/babygramps/CPUGraph/src/timewindow"
)

type uiState struct {
	app      fyne.App
	window   fyne.Window
	filePath string

	ds       *dataset.Dataset
	filtered *timewindow.Filtered

	leftSel  *selection.Manager
	rightSel *selection.Manager

	smoothWindow int
	showCycles   bool
	showLegend   bool
	hoverEnabled bool
	showRHLine   bool

	rangeSel *rangesel.Machine

	// optional logo asset, stamped faintly on rendered charts
	logo image.Image

	// calc settings
	tempC    float64
	pressPsi float64
	zFactor  float64

	// last render, consumed by the overlay for pixel mapping
	plot        *render.Plot
	hoverSeries []hover.Series
	spans       []cycles.Cycle

	// widgets
	imgCanvas     *canvas.Image
	overlay       *chartOverlay
	pickerRefresh []func()
	rangeBtn      *widget.Button
	statusLabel   *widget.Label
	startEntry    *widget.Entry
	endEntry      *widget.Entry
}

func main() {
	var fileFlag string
	var logLevel string
	flag.StringVar(&fileFlag, "file", "", "Path to a sensor log (.csv or tab-delimited .txt)")
	flag.StringVar(&logLevel, "loglevel", "info", "debug|info|warn|error")
	flag.Parse()
	logx.SetLevel(logLevel)

	a := app.NewWithID("com.cpugraph.viewer")
	w := a.NewWindow("Sensor Grapher")
	w.Resize(fyne.NewSize(1280, 860))

	state := &uiState{
		app:          a,
		window:       w,
		filePath:     fileFlag,
		leftSel:      selection.NewManager(),
		rightSel:     selection.NewManager(),
		smoothWindow: 0,
		showCycles:   true,
		showLegend:   true,
		hoverEnabled: true,
		tempC:        25,
		pressPsi:     14.696,
		zFactor:      1.0,
	}
	state.logo = render.LoadLogo("logo.png")
	state.rangeSel = rangesel.New(func(x float64) (time.Time, bool) {
		if state.plot == nil || state.ds == nil {
			return time.Time{}, false
		}
		sec, ok := state.plot.PxToX(x)
		if !ok {
			return time.Time{}, false
		}
		return time.Unix(int64(sec), 0).In(state.ds.Location), true
	})
	state.hoverEnabled = a.Preferences().BoolWithFallback("hover", true)
	state.showCycles = a.Preferences().BoolWithFallback("showCycles", true)

	fileLabel := widget.NewLabel(truncatePath(state.filePath, 60))

	// chart placeholder + overlay
	state.imgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.imgCanvas.FillMode = canvas.ImageFillContain
	state.imgCanvas.SetMinSize(fyne.NewSize(980, 520))
	state.overlay = newChartOverlay(state)

	// series pickers, one per axis
	leftPanel := buildPickerPanel(state, state.leftSel, "Left axis", func() { redrawChart(state) })
	rightPanel := buildPickerPanel(state, state.rightSel, "Right axis", func() { redrawChart(state) })

	// smoothing
	smoothSelect := widget.NewSelect([]string{"Off", "3", "5", "9", "15", "31"}, nil)
	smoothSelect.Selected = "Off"
	smoothSelect.OnChanged = func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			state.smoothWindow = n
		} else {
			state.smoothWindow = 0
		}
		savePrefs(state)
		redrawChart(state)
	}

	cyclesChk := widget.NewCheck("Cycles", func(b bool) {
		state.showCycles = b
		savePrefs(state)
		redrawChart(state)
	})
	cyclesChk.SetChecked(state.showCycles)
	hoverChk := widget.NewCheck("Crosshair", func(b bool) {
		state.hoverEnabled = b
		savePrefs(state)
		if state.overlay != nil {
			state.overlay.enabled = b
			state.overlay.Refresh()
		}
	})
	hoverChk.SetChecked(state.hoverEnabled)
	legendChk := widget.NewCheck("Legend", func(b bool) {
		state.showLegend = b
		savePrefs(state)
		redrawChart(state)
	})
	legendChk.SetChecked(state.showLegend)

	// manual window bounds, also filled in by click selection
	state.startEntry = widget.NewEntry()
	state.startEntry.SetPlaceHolder("start (" + windowEntryLayout + ")")
	state.endEntry = widget.NewEntry()
	state.endEntry.SetPlaceHolder("end (" + windowEntryLayout + ")")
	applyEntries := func(string) {
		state.rangeSel.Clear()
		updateRangeButton(state)
		redrawChart(state)
	}
	state.startEntry.OnSubmitted = applyEntries
	state.endEntry.OnSubmitted = applyEntries

	// range selection controls
	state.rangeBtn = widget.NewButton("Select Range", func() {
		active := state.rangeSel.ToggleMode()
		updateRangeButton(state)
		if active {
			state.statusLabel.SetText("Click the chart to set the window start")
		} else {
			state.statusLabel.SetText("")
		}
	})
	clearRangeBtn := widget.NewButton("Clear Range", func() {
		state.rangeSel.Clear()
		state.startEntry.SetText("")
		state.endEntry.SetText("")
		updateRangeButton(state)
		state.statusLabel.SetText("")
		redrawChart(state)
	})

	co2Btn := widget.NewButton("CO2 Capture…", func() { showCO2Dialog(state) })
	rhBtn := widget.NewButton("Humidity…", func() { showRHDialog(state) })

	state.statusLabel = widget.NewLabel("")

	top := container.NewVBox(
		container.NewHBox(
			widget.NewButton("Open…", func() { openFileDialog(state, fileLabel) }),
			widget.NewButton("Reload", func() { loadAll(state, fileLabel) }),
			widget.NewLabel("Smoothing:"), smoothSelect,
			cyclesChk, hoverChk, legendChk,
			co2Btn, rhBtn,
			widget.NewLabel("File:"), fileLabel,
		),
		container.NewHBox(
			widget.NewLabel("Window:"),
			container.NewGridWrap(fyne.NewSize(190, 36), state.startEntry),
			widget.NewLabel("to"),
			container.NewGridWrap(fyne.NewSize(190, 36), state.endEntry),
			state.rangeBtn, clearRangeBtn,
		),
	)

	chartStack := container.NewStack(state.imgCanvas, state.overlay)
	pickers := container.NewVSplit(leftPanel, rightPanel)
	pickers.SetOffset(0.5)
	split := container.NewHSplit(pickers, container.NewBorder(nil, state.statusLabel, nil, nil, chartStack))
	split.SetOffset(0.22)
	w.SetContent(container.NewBorder(top, nil, nil, nil, split))

	// Redraw on window resize so the chart scales with width.
	if w.Canvas() != nil {
		prevW := int(w.Canvas().Size().Width)
		done := make(chan struct{})
		w.SetOnClosed(func() {
			savePrefs(state)
			close(done)
		})
		go func() {
			t := time.NewTicker(300 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c := w.Canvas()
					if c == nil {
						continue
					}
					if cur := int(c.Size().Width); cur != prevW {
						prevW = cur
						fyne.Do(func() { redrawChart(state) })
					}
				}
			}
		}()
	}

	buildMenus(state, fileLabel)
	loadPrefs(state, fileLabel, smoothSelect, cyclesChk, hoverChk)
	loadAll(state, fileLabel)

	w.ShowAndRun()
}

func buildMenus(state *uiState, fileLabel *widget.Label) {
	if state == nil || state.window == nil || state.app == nil {
		return
	}
	var items []*fyne.MenuItem
	for _, f := range recentFiles(state) {
		f := f
		items = append(items, fyne.NewMenuItem(truncatePath(f, 60), func() {
			state.filePath = f
			fileLabel.SetText(truncatePath(state.filePath, 60))
			savePrefs(state)
			loadAll(state, fileLabel)
		}))
	}
	clearRecent := fyne.NewMenuItem("Clear Recent", func() { clearRecentFiles(state); buildMenus(state, fileLabel) })
	recentMenu := fyne.NewMenu("Open Recent", append(items, clearRecent)...)
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", func() { openFileDialog(state, fileLabel) }),
		fyne.NewMenuItem("Reload", func() { loadAll(state, fileLabel) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Chart PNG…", func() { exportChartPNG(state, "sensor_chart.png") }),
		fyne.NewMenuItem("Export Chart JPEG…", func() { exportChartJPEG(state, "sensor_chart.jpg") }),
		fyne.NewMenuItem("Export Report…", func() { exportReportPDF(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, recentMenu))

	canv := state.window.Canvas()
	if canv != nil {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { openFileDialog(state, fileLabel) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { openFileDialog(state, fileLabel) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { loadAll(state, fileLabel) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { loadAll(state, fileLabel) })
	}
}

func openFileDialog(state *uiState, fileLabel *widget.Label) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.filePath = rc.URI().Path()
		fileLabel.SetText(truncatePath(state.filePath, 60))
		addRecentFile(state, state.filePath)
		savePrefs(state)
		loadAll(state, fileLabel)
	}, state.window)
	d.Show()
}

// loadAll reads the file, rebuilds both axis catalogs, applies the default
// selections, and renders.
func loadAll(state *uiState, fileLabel *widget.Label) {
	if state.filePath == "" {
		return
	}
	ds, err := dataset.NewLoader().Load(state.filePath)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.ds = ds
	state.rangeSel.Clear()
	state.showRHLine = false
	if state.startEntry != nil {
		state.startEntry.SetText("")
		state.endEntry.SetText("")
	}
	updateRangeButton(state)

	items := make([]selection.Item, 0, len(ds.Columns))
	for _, col := range ds.NumericColumns() {
		items = append(items, selection.Item{ID: col.ID, Label: col.Display})
	}
	state.leftSel.UpdateCatalog(items)
	state.rightSel.UpdateCatalog(items)

	// Default selections: CO2 analyzers on the left axis.
	for _, col := range ds.NumericColumns() {
		for _, tag := range dataset.DefaultLeftAxisSensors {
			if strings.Contains(strings.ToUpper(col.Name), strings.ToUpper(tag)) {
				state.leftSel.SetSelected(col.ID, true)
			}
		}
	}

	logx.Infof("[viewer] loaded %s: %d rows, %d numeric columns", ds.Path, ds.Rows(), len(items))
	refreshPickers(state)
	redrawChart(state)
}

// windowEntryLayout is the format of the manual start/end fields and of the
// text written into them by click selection.
const windowEntryLayout = "01/02/2006 03:04:05 PM"

// parseWindowEntry reads one bound field. Blank or unparseable text means an
// open bound.
func parseWindowEntry(state *uiState, s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || state.ds == nil {
		return nil
	}
	for _, layout := range []string{windowEntryLayout, "2006-01-02 15:04:05", "2006-01-02 15:04", "060102_150405"} {
		if t, err := time.ParseInLocation(layout, s, state.ds.Location); err == nil {
			return &t
		}
	}
	logx.Warnf("[viewer] window bound %q not understood, ignoring", s)
	return nil
}

// currentWindow derives the filter bounds from the click selection when one
// is complete, otherwise from the manual entry fields. Inverted bounds are
// swapped either way.
func currentWindow(state *uiState) timewindow.Window {
	if start, end, ok := state.rangeSel.Range(); ok {
		return timewindow.Window{Start: &start, End: &end}.Canonical()
	}
	w := timewindow.Window{
		Start: parseWindowEntry(state, state.startEntry.Text),
		End:   parseWindowEntry(state, state.endEntry.Text),
	}
	return w.Canonical()
}

// setWindowEntries mirrors click-selected bounds into the entry fields so
// they can be inspected and hand-edited.
func setWindowEntries(state *uiState, start, end time.Time) {
	if state.startEntry == nil || state.endEntry == nil {
		return
	}
	if !start.IsZero() {
		state.startEntry.SetText(start.Format(windowEntryLayout))
	}
	if end.IsZero() {
		state.endEntry.SetText("")
	} else {
		state.endEntry.SetText(end.Format(windowEntryLayout))
	}
}

// redrawChart re-filters, re-renders, and updates the overlay's view of the
// plotted series.
func redrawChart(state *uiState) {
	if state.ds == nil || state.imgCanvas == nil {
		return
	}
	f, err := timewindow.Apply(state.ds, currentWindow(state), state.smoothWindow)
	if err != nil {
		logx.Warnf("[viewer] window filter: %v", err)
		state.imgCanvas.Image = render.Blank(980, 520)
		state.imgCanvas.Refresh()
		return
	}
	state.filtered = f
	xs := f.XUnix()

	var series []render.Series
	var hoverS []hover.Series
	var renderedLeft, renderedRight []dataset.SeriesID
	addAxis := func(mgr *selection.Manager, axis hover.Axis, rendered *[]dataset.SeriesID) {
		for _, id := range mgr.Selected() {
			col, ok := state.ds.ColumnByID(id)
			if !ok {
				continue
			}
			ys, ok := f.Values(id)
			if !ok {
				continue
			}
			series = append(series, render.Series{ID: id, Label: col.Display, Axis: axis, XS: xs, YS: ys})
			hoverS = append(hoverS, hover.Series{ID: id, Label: col.Display, Axis: axis, XS: xs, YS: ys})
			*rendered = append(*rendered, id)
		}
	}
	addAxis(state.leftSel, hover.AxisLeft, &renderedLeft)
	addAxis(state.rightSel, hover.AxisRight, &renderedRight)
	state.leftSel.SyncRendered(renderedLeft)
	state.rightSel.SyncRendered(renderedRight)

	if state.showRHLine {
		if r, err := computeRH(state); err == nil {
			id := dataset.SeriesID("derived:rh")
			series = append(series, render.Series{ID: id, Label: "RH (%)", Axis: hover.AxisRight, XS: xs, YS: r.Series})
			hoverS = append(hoverS, hover.Series{ID: id, Label: "RH (%)", Axis: hover.AxisRight, XS: xs, YS: r.Series})
		}
	}

	state.spans = nil
	if state.showCycles {
		if counter, ok := state.ds.CounterColumn(); ok {
			var modes []string
			if mraw, ok := state.ds.ModeColumn(); ok {
				modes = mraw[f.Lo : f.Hi+1]
			}
			state.spans = cycles.Segment(counter[f.Lo:f.Hi+1], modes, xs)
		}
	}

	var markers []render.Marker
	if start, ok := state.rangeSel.Start(); ok {
		if _, _, complete := state.rangeSel.Range(); !complete {
			markers = append(markers, render.Marker{X: float64(start.Unix()), Color: render.SeriesColor(2)})
		}
	}

	cw, chh := chartSize(state)
	title := "Sensor Log"
	if f.Smoothed() {
		title = fmt.Sprintf("Sensor Log (smoothed, %d samples)", state.smoothWindow)
	}
	state.plot = render.Render(series, render.Options{
		Width: cw, Height: chh,
		Title:      title,
		ShowLegend: state.showLegend,
		Cycles:     state.spans,
		Markers:    markers,
		Logo:       state.logo,
		Watermark:  render.WatermarkText(truncatePath(state.filePath, 40)),
	})
	state.hoverSeries = hoverS
	state.imgCanvas.Image = state.plot.Img
	state.imgCanvas.Refresh()
	if state.overlay != nil {
		state.overlay.Refresh()
	}
}

// chartSize scales the render to the window width like the chart canvases
// are laid out.
func chartSize(state *uiState) (int, int) {
	w := 980
	if state.window != nil && state.window.Canvas() != nil {
		if cw := int(state.window.Canvas().Size().Width * 0.75); cw > w {
			w = cw
		}
	}
	return w, 520
}

func updateRangeButton(state *uiState) {
	if state.rangeBtn == nil {
		return
	}
	if state.rangeSel.Active() {
		state.rangeBtn.SetText("Selecting… (click chart)")
	} else {
		state.rangeBtn.SetText("Select Range")
	}
}

func exportChart(state *uiState, defaultName string, encode func(io.Writer, image.Image) error) {
	if state == nil || state.window == nil || state.imgCanvas == nil || state.imgCanvas.Image == nil {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := encode(wc, state.imgCanvas.Image); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}

func exportChartPNG(state *uiState, defaultName string) {
	exportChart(state, defaultName, func(w io.Writer, img image.Image) error {
		return png.Encode(w, img)
	})
}

func exportChartJPEG(state *uiState, defaultName string) {
	exportChart(state, defaultName, func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	})
}

// renderedLabels reports what is actually on the chart, straight from the
// rendered sets the last redraw synced.
func renderedLabels(state *uiState) []string {
	var out []string
	add := func(mgr *selection.Manager, axis string) {
		for _, id := range mgr.Rendered() {
			if col, ok := state.ds.ColumnByID(id); ok {
				out = append(out, col.Display+" ("+axis+")")
			}
		}
	}
	add(state.leftSel, "left")
	add(state.rightSel, "right")
	if state.showRHLine {
		out = append(out, "RH (%) (right)")
	}
	return out
}

func exportReportPDF(state *uiState) {
	if state == nil || state.ds == nil || state.filtered == nil {
		dialog.ShowInformation("Report", "Load a file first.", state.window)
		return
	}
	data := report.Data{
		SourcePath: state.filePath,
		Generated:  time.Now(),
		WindowLabel: state.filtered.Times[0].Format(windowEntryLayout) + " - " +
			state.filtered.Times[state.filtered.Rows()-1].Format(windowEntryLayout),
		Series: renderedLabels(state),
	}
	if state.plot != nil {
		data.Chart = state.plot.Img
	}
	if r, err := computeCO2(state); err == nil {
		data.CO2 = r
	}
	if r, err := computeRH(state); err == nil {
		data.RH = r
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		wc.Close()
		if err := report.Write(path, data); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
	fs.SetFileName("sensor_report.pdf")
	fs.Show()
}

// recent files helpers
func recentFiles(state *uiState) []string {
	raw := state.app.Preferences().StringWithFallback("recentFiles", "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func addRecentFile(state *uiState, path string) {
	list := recentFiles(state)
	filtered := []string{path}
	for _, f := range list {
		if f != path && len(filtered) < 10 {
			filtered = append(filtered, f)
		}
	}
	state.app.Preferences().SetString("recentFiles", strings.Join(filtered, "\n"))
}

func clearRecentFiles(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	state.app.Preferences().SetString("recentFiles", "")
}

// prefs
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	prefs.SetString("lastFile", state.filePath)
	prefs.SetInt("smoothWindow", state.smoothWindow)
	prefs.SetBool("showCycles", state.showCycles)
	prefs.SetBool("hover", state.hoverEnabled)
	prefs.SetBool("showLegend", state.showLegend)
}

func loadPrefs(state *uiState, fileLabel *widget.Label, smoothSelect *widget.Select, cyclesChk, hoverChk *widget.Check) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	if f := prefs.StringWithFallback("lastFile", state.filePath); f != "" {
		state.filePath = f
		if fileLabel != nil {
			fileLabel.SetText(truncatePath(state.filePath, 60))
		}
	}
	state.smoothWindow = prefs.IntWithFallback("smoothWindow", state.smoothWindow)
	if smoothSelect != nil {
		if state.smoothWindow > 1 {
			smoothSelect.Selected = strconv.Itoa(state.smoothWindow)
		} else {
			smoothSelect.Selected = "Off"
		}
	}
	state.showCycles = prefs.BoolWithFallback("showCycles", state.showCycles)
	state.showLegend = prefs.BoolWithFallback("showLegend", state.showLegend)
	if cyclesChk != nil {
		cyclesChk.SetChecked(state.showCycles)
	}
	state.hoverEnabled = prefs.BoolWithFallback("hover", state.hoverEnabled)
	if hoverChk != nil {
		hoverChk.SetChecked(state.hoverEnabled)
	}
}

// utils
func truncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	return "..." + p[len(p)-n+3:]
}
