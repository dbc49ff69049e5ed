package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/babygramps/CPUGraph/src/calc"
	"github.com/babygramps/CPUGraph/src/dataset"
)

var errMissingSensors = errors.New("required sensors not found in this file")

// roleSeries averages every numeric column matching one of the role's
// sensor tags over the current window.
func roleSeries(state *uiState, tags []string) []float64 {
	var cols [][]float64
	for _, col := range state.ds.Columns {
		if !col.Numeric {
			continue
		}
		for _, tag := range tags {
			if strings.Contains(strings.ToUpper(col.Name), strings.ToUpper(tag)) {
				if v, ok := state.filtered.Values(col.ID); ok {
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

func computeCO2(state *uiState) (*calc.CO2Result, error) {
	if state.ds == nil || state.filtered == nil {
		return nil, errMissingSensors
	}
	inlet := roleSeries(state, dataset.DefaultInletSensors)
	outlet := roleSeries(state, dataset.DefaultOutletSensors)
	flow := roleSeries(state, dataset.DefaultFlowSensors)
	if inlet == nil || outlet == nil || flow == nil {
		return nil, errMissingSensors
	}
	return calc.ComputeCO2(calc.CO2Inputs{
		Times:           state.filtered.Times,
		InletPPM:        inlet,
		OutletPPM:       outlet,
		FlowSLPM:        flow,
		TemperatureC:    state.tempC,
		PressurePsi:     state.pressPsi,
		Compressibility: state.zFactor,
	})
}

func computeRH(state *uiState) (*calc.RHResult, error) {
	if state.ds == nil || state.filtered == nil {
		return nil, errMissingSensors
	}
	temp := roleSeries(state, []string{"TT-200"})
	dew := roleSeries(state, []string{"AT-300"})
	if temp == nil || dew == nil {
		return nil, errMissingSensors
	}
	return calc.ComputeRH(calc.RHInputs{
		Times:        state.filtered.Times,
		TemperatureC: temp,
		DewPointC:    dew,
	})
}

// showCO2Dialog asks for the gas conditions, runs the capture calculation
// over the visible window, and shows the result.
func showCO2Dialog(state *uiState) {
	if state.ds == nil || state.filtered == nil {
		dialog.ShowInformation("CO2 Capture", "Load a file first.", state.window)
		return
	}
	tempEntry := widget.NewEntry()
	tempEntry.SetText(strconv.FormatFloat(state.tempC, 'f', -1, 64))
	pressEntry := widget.NewEntry()
	pressEntry.SetText(strconv.FormatFloat(state.pressPsi, 'f', -1, 64))
	zEntry := widget.NewEntry()
	zEntry.SetText(strconv.FormatFloat(state.zFactor, 'f', -1, 64))

	form := []*widget.FormItem{
		widget.NewFormItem("Temperature (C)", tempEntry),
		widget.NewFormItem("Pressure (psi)", pressEntry),
		widget.NewFormItem("Compressibility Z", zEntry),
	}
	dialog.ShowForm("CO2 Capture", "Calculate", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		if v, err := strconv.ParseFloat(tempEntry.Text, 64); err == nil {
			state.tempC = v
		}
		if v, err := strconv.ParseFloat(pressEntry.Text, 64); err == nil {
			state.pressPsi = v
		}
		if v, err := strconv.ParseFloat(zEntry.Text, 64); err == nil {
			state.zFactor = v
		}
		r, err := computeCO2(state)
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		msg := fmt.Sprintf(
			"Captured: %.2f g (%.4f kg)\nRate: %.2f g/hr\nSpan: %.1f min (%.2f hr)\nPoints: %d\n\nAvg inlet: %.1f ppm\nAvg outlet: %.1f ppm\nAvg flow: %.2f SLPM",
			r.MassG, r.MassKg, r.RateGPerHour, r.SpanMinutes, r.SpanHours, r.Points,
			r.AvgInletPPM, r.AvgOutletPPM, r.AvgFlowSLPM)
		dialog.ShowInformation("CO2 Capture", msg, state.window)
	}, state.window)
}

// showRHDialog runs the humidity calculation over the visible window and
// optionally keeps the derived RH series plotted on the right axis.
func showRHDialog(state *uiState) {
	if state.ds == nil || state.filtered == nil {
		dialog.ShowInformation("Humidity", "Load a file first.", state.window)
		return
	}
	lineChk := widget.NewCheck("", nil)
	lineChk.SetChecked(state.showRHLine)
	form := []*widget.FormItem{
		widget.NewFormItem("Plot RH line (right axis)", lineChk),
	}
	dialog.ShowForm("Humidity", "Calculate", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		state.showRHLine = lineChk.Checked
		r, err := computeRH(state)
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		msg := fmt.Sprintf(
			"Average RH: %.1f%%\nMin / Max: %.1f%% / %.1f%%\nAvg temperature: %.2f C\nAvg dew point: %.2f C\nSpan: %.1f min\nPoints: %d",
			r.AvgRH, r.MinRH, r.MaxRH, r.AvgTempC, r.AvgDewC, r.SpanMinutes, r.Points)
		dialog.ShowInformation("Humidity", msg, state.window)
		redrawChart(state)
	}, state.window)
}
