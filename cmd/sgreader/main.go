package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/babygramps/CPUGraph/src/calc"
	"github.com/babygramps/CPUGraph/src/cycles"
	"github.com/babygramps/CPUGraph/src/dataset"
	"github.com/babygramps/CPUGraph/src/logx"
	"github.com/babygramps/CPUGraph/src/render"
	"github.com/babygramps/CPUGraph/src/report"
	"github.com/babygramps/CPUGraph/src/timewindow"
)

// sgreader inspects a sensor log without the viewer: prints a column
// summary, runs the CO2/RH calculations over an optional time window, and
// can write the chart PNG and the PDF report.
func main() {
	var (
		file      string
		startStr  string
		endStr    string
		smooth    int
		chartOut  string
		reportOut string
		doCO2     bool
		doRH      bool
		tempC     float64
		pressPsi  float64
		zFactor   float64
		sensors   string
		logoPath  string
		logLevel  string
	)
	flag.StringVar(&file, "file", "", "Path to the sensor log (.csv or tab-delimited .txt)")
	flag.StringVar(&startStr, "start", "", "Window start, e.g. 2024-01-05 12:00:00 (file timezone)")
	flag.StringVar(&endStr, "end", "", "Window end")
	flag.IntVar(&smooth, "smooth", 0, "Moving-average window in samples (0/1 = off)")
	flag.StringVar(&chartOut, "chart", "", "Write the chart PNG to this path")
	flag.StringVar(&reportOut, "report", "", "Write the PDF report to this path")
	flag.BoolVar(&doCO2, "co2", false, "Run the CO2 capture calculation")
	flag.BoolVar(&doRH, "rh", false, "Run the relative humidity calculation")
	flag.Float64Var(&tempC, "temp", 25, "Gas temperature in C for the CO2 calculation")
	flag.Float64Var(&pressPsi, "pressure", 14.696, "Gas pressure in psi")
	flag.Float64Var(&zFactor, "z", 1.0, "Compressibility factor")
	flag.StringVar(&sensors, "sensors", "", "Comma-separated sensor names to chart (default: CO2 analyzers)")
	flag.StringVar(&logoPath, "logo", "", "Optional PNG logo to stamp on the chart")
	flag.StringVar(&logLevel, "loglevel", "info", "debug|info|warn|error")
	flag.Parse()

	logx.SetLevel(logLevel)
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: sgreader -file <log.csv> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ds, err := dataset.NewLoader().Load(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	printSummary(ds)

	win, err := parseWindow(ds, startStr, endStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	f, err := timewindow.Apply(ds, win.Canonical(), smooth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Window rows: %d (%s to %s)\n", f.Rows(),
		f.Times[0].Format("01/02/2006 03:04:05 PM"),
		f.Times[len(f.Times)-1].Format("01/02/2006 03:04:05 PM"))

	rep := report.Data{SourcePath: file, Generated: time.Now(), WindowLabel: windowLabel(f)}

	if doCO2 {
		r, err := runCO2(ds, f, tempC, pressPsi, zFactor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "co2: %v\n", err)
		} else {
			printCO2(r)
			rep.CO2 = r
		}
	}
	if doRH {
		r, err := runRH(ds, f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rh: %v\n", err)
		} else {
			printRH(r)
			rep.RH = r
		}
	}

	if chartOut != "" || reportOut != "" {
		plot, plotted := buildChart(ds, f, sensors, logoPath)
		rep.Chart = plot.Img
		rep.Series = plotted
		if chartOut != "" {
			if err := writePNG(chartOut, plot); err != nil {
				fmt.Fprintf(os.Stderr, "chart: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Wrote chart: %s\n", chartOut)
		}
	}
	if reportOut != "" {
		if err := report.Write(reportOut, rep); err != nil {
			fmt.Fprintf(os.Stderr, "report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote report: %s\n", reportOut)
	}
}

func printSummary(ds *dataset.Dataset) {
	fmt.Printf("File: %s\n", ds.Path)
	fmt.Printf("Rows: %d (%s to %s)\n", ds.Rows(),
		ds.Times[0].Format("01/02/2006 03:04:05 PM"),
		ds.Times[ds.Rows()-1].Format("01/02/2006 03:04:05 PM"))
	fmt.Printf("Time column: %s\n", ds.TimeColumn)
	fmt.Println("Columns:")
	for _, col := range ds.Columns {
		kind := "text"
		if col.Numeric {
			kind = "numeric"
		}
		fmt.Printf("  %-8s %s\n", kind, col.Display)
	}
}

func parseWindow(ds *dataset.Dataset, startStr, endStr string) (timewindow.Window, error) {
	var win timewindow.Window
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02", "060102_150405"} {
			if t, err := time.ParseInLocation(layout, s, ds.Location); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("cannot parse time %q", s)
	}
	var err error
	if win.Start, err = parse(startStr); err != nil {
		return win, err
	}
	win.End, err = parse(endStr)
	return win, err
}

func windowLabel(f *timewindow.Filtered) string {
	return f.Times[0].Format("01/02/2006 03:04:05 PM") + " - " +
		f.Times[len(f.Times)-1].Format("01/02/2006 03:04:05 PM")
}

// roleSeries averages the windowed values of every numeric column whose name
// matches one of the role's sensor tags.
func roleSeries(ds *dataset.Dataset, f *timewindow.Filtered, tags []string) []float64 {
	var cols [][]float64
	for _, col := range ds.Columns {
		if !col.Numeric {
			continue
		}
		for _, tag := range tags {
			if strings.Contains(strings.ToUpper(col.Name), strings.ToUpper(tag)) {
				if v, ok := f.Values(col.ID); ok {
					cols = append(cols, v)
				}
				break
			}
		}
	}
	if len(cols) == 0 {
		return nil
	}
	return calc.RowMean(cols...)
}

func runCO2(ds *dataset.Dataset, f *timewindow.Filtered, tempC, pressPsi, z float64) (*calc.CO2Result, error) {
	inlet := roleSeries(ds, f, dataset.DefaultInletSensors)
	outlet := roleSeries(ds, f, dataset.DefaultOutletSensors)
	flow := roleSeries(ds, f, dataset.DefaultFlowSensors)
	if inlet == nil || outlet == nil || flow == nil {
		return nil, fmt.Errorf("missing inlet/outlet/flow sensors (need %v, %v, %v)",
			dataset.DefaultInletSensors, dataset.DefaultOutletSensors, dataset.DefaultFlowSensors)
	}
	return calc.ComputeCO2(calc.CO2Inputs{
		Times:           f.Times,
		InletPPM:        inlet,
		OutletPPM:       outlet,
		FlowSLPM:        flow,
		TemperatureC:    tempC,
		PressurePsi:     pressPsi,
		Compressibility: z,
	})
}

func runRH(ds *dataset.Dataset, f *timewindow.Filtered) (*calc.RHResult, error) {
	temp := roleSeries(ds, f, []string{"TT-200"})
	dew := roleSeries(ds, f, []string{"AT-300"})
	if temp == nil || dew == nil {
		return nil, fmt.Errorf("missing temperature (TT-200) or dew point (AT-300) sensors")
	}
	return calc.ComputeRH(calc.RHInputs{Times: f.Times, TemperatureC: temp, DewPointC: dew})
}

func printCO2(r *calc.CO2Result) {
	fmt.Printf("CO2 captured: %.2f g (%.4f kg) over %.1f min\n", r.MassG, r.MassKg, r.SpanMinutes)
	fmt.Printf("  rate %.2f g/hr, %d points\n", r.RateGPerHour, r.Points)
	fmt.Printf("  avg inlet %.1f ppm, outlet %.1f ppm, flow %.2f SLPM\n",
		r.AvgInletPPM, r.AvgOutletPPM, r.AvgFlowSLPM)
}

func printRH(r *calc.RHResult) {
	fmt.Printf("RH: avg %.1f%% (min %.1f%%, max %.1f%%) over %.1f min\n",
		r.AvgRH, r.MinRH, r.MaxRH, r.SpanMinutes)
	fmt.Printf("  avg temp %.2f C, avg dew point %.2f C, %d points\n",
		r.AvgTempC, r.AvgDewC, r.Points)
}

// buildChart plots either the requested sensors or the default CO2 pair,
// with cycle shading from the counter column. It also returns the display
// labels of the plotted series for the report header.
func buildChart(ds *dataset.Dataset, f *timewindow.Filtered, sensors, logoPath string) (*render.Plot, []string) {
	tags := dataset.DefaultLeftAxisSensors
	if sensors != "" {
		tags = strings.Split(sensors, ",")
	}
	xs := f.XUnix()
	var series []render.Series
	var plotted []string
	for _, col := range ds.Columns {
		if !col.Numeric {
			continue
		}
		for _, tag := range tags {
			if strings.Contains(strings.ToUpper(col.Name), strings.ToUpper(strings.TrimSpace(tag))) {
				ys, _ := f.Values(col.ID)
				series = append(series, render.Series{ID: col.ID, Label: col.Display, XS: xs, YS: ys})
				plotted = append(plotted, col.Display)
				break
			}
		}
	}

	var spans []cycles.Cycle
	if counter, ok := ds.CounterColumn(); ok {
		var modes []string
		if mraw, ok := ds.ModeColumn(); ok {
			modes = mraw[f.Lo : f.Hi+1]
		}
		spans = cycles.Segment(counter[f.Lo:f.Hi+1], modes, xs)
	}

	return render.Render(series, render.Options{
		Width: 1200, Height: 500,
		Title:      "Sensor Log",
		ShowLegend: true,
		Cycles:     spans,
		Logo:       render.LoadLogo(logoPath),
		Watermark:  render.WatermarkText(ds.Path),
	}), plotted
}

func writePNG(path string, p *render.Plot) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, p.Img)
}
