// Package report writes the calculation results and the current chart to a
// PDF so a run summary can leave the viewer.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/babygramps/CPUGraph/src/calc"
	"github.com/babygramps/CPUGraph/src/logx"
)

const (
	pageWidth    = 215.9 // Letter portrait, mm
	pageMargin   = 12.7
	contentWidth = pageWidth - 2*pageMargin
	lineHeight   = 6
)

// Data bundles everything that can appear in the report. Nil sections are
// skipped.
type Data struct {
	SourcePath  string
	WindowLabel string
	Generated   time.Time
	Series      []string
	CO2         *calc.CO2Result
	RH          *calc.RHResult
	Chart       image.Image
}

// Write renders the report to path.
func Write(path string, d Data) error {
	start := time.Now()
	defer logx.TimeTrack(start, "pdf report")

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentWidth, 10, "Sensor Log Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(contentWidth, lineHeight, "Source: "+d.SourcePath, "", 1, "L", false, 0, "")
	if d.WindowLabel != "" {
		pdf.CellFormat(contentWidth, lineHeight, "Window: "+d.WindowLabel, "", 1, "L", false, 0, "")
	}
	gen := d.Generated
	if gen.IsZero() {
		gen = time.Now()
	}
	pdf.CellFormat(contentWidth, lineHeight, "Generated: "+gen.Format("01/02/2006 03:04:05 PM"), "", 1, "L", false, 0, "")
	if len(d.Series) > 0 {
		pdf.CellFormat(contentWidth, lineHeight, "Plotted series: "+strings.Join(d.Series, "; "), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if d.Chart != nil {
		writeChart(pdf, d.Chart)
	}
	if d.CO2 != nil {
		writeTable(pdf, "CO2 Capture", co2Rows(d.CO2))
	}
	if d.RH != nil {
		writeTable(pdf, "Relative Humidity", rhRows(d.RH))
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	logx.Infof("[Report] wrote %s", path)
	return nil
}

func writeChart(pdf *gofpdf.Fpdf, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logx.Warnf("[Report] chart encode failed, skipping image: %v", err)
		return
	}
	pdf.RegisterImageOptionsReader("chart", gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	b := img.Bounds()
	w := contentWidth
	h := w * float64(b.Dy()) / float64(b.Dx())
	pdf.ImageOptions("chart", pageMargin, pdf.GetY(), w, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetY(pdf.GetY() + h + 4)
}

func writeTable(pdf *gofpdf.Fpdf, title string, rows [][2]string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(contentWidth, 8, title, "", 1, "L", false, 0, "")

	labelW := contentWidth * 0.55
	valueW := contentWidth - labelW
	for i, row := range rows {
		if i == 0 {
			pdf.SetFont("Arial", "B", 9)
			pdf.SetFillColor(200, 200, 200)
		} else {
			pdf.SetFont("Arial", "", 9)
			pdf.SetFillColor(245, 245, 245)
		}
		fill := i == 0 || i%2 == 0
		pdf.CellFormat(labelW, lineHeight, row[0], "1", 0, "L", fill, 0, "")
		pdf.CellFormat(valueW, lineHeight, row[1], "1", 1, "R", fill, 0, "")
	}
	pdf.Ln(4)
}

func co2Rows(r *calc.CO2Result) [][2]string {
	return [][2]string{
		{"Metric", "Value"},
		{"Captured mass", fmt.Sprintf("%.2f g (%.4f kg)", r.MassG, r.MassKg)},
		{"Capture rate", fmt.Sprintf("%.2f g/hr", r.RateGPerHour)},
		{"Window span", fmt.Sprintf("%.1f min (%.2f hr)", r.SpanMinutes, r.SpanHours)},
		{"Data points", fmt.Sprintf("%d", r.Points)},
		{"Avg inlet CO2", fmt.Sprintf("%.1f ppm", r.AvgInletPPM)},
		{"Avg outlet CO2", fmt.Sprintf("%.1f ppm", r.AvgOutletPPM)},
		{"Avg flow", fmt.Sprintf("%.2f SLPM", r.AvgFlowSLPM)},
	}
}

func rhRows(r *calc.RHResult) [][2]string {
	return [][2]string{
		{"Metric", "Value"},
		{"Average RH", fmt.Sprintf("%.1f %%", r.AvgRH)},
		{"Min / Max RH", fmt.Sprintf("%.1f %% / %.1f %%", r.MinRH, r.MaxRH)},
		{"Avg temperature", fmt.Sprintf("%.2f C", r.AvgTempC)},
		{"Avg dew point", fmt.Sprintf("%.2f C", r.AvgDewC)},
		{"Window span", fmt.Sprintf("%.1f min", r.SpanMinutes)},
		{"Data points", fmt.Sprintf("%d", r.Points)},
	}
}
