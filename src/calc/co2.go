// Package calc derives process results from windowed sensor series: captured
// CO2 mass via ideal-gas integration and relative humidity from paired
// temperature and dew point readings.
package calc

import (
	"errors"
	"math"
	"time"
)

// ErrNoDataInWindow is returned when, after dropping rows with missing
// samples, nothing remains to integrate.
var ErrNoDataInWindow = errors.New("no usable data points in the selected window")

// ErrMismatchedSeries is returned when input slices disagree in length.
var ErrMismatchedSeries = errors.New("input series lengths do not match")

const (
	// gasConstant is R in L·atm/(mol·K).
	gasConstant = 0.082057
	// psiPerAtm converts gauge readings to atmospheres.
	psiPerAtm = 14.696
	// co2MolarMass is g/mol.
	co2MolarMass = 44.01
)

// MolarVolume returns Z·R·T/P in L/mol for temperature in °C and pressure
// in psi.
func MolarVolume(tempC, pressurePsi, compressibility float64) float64 {
	tK := tempC + 273.15
	pAtm := pressurePsi / psiPerAtm
	return compressibility * gasConstant * tK / pAtm
}

// CO2Inputs are the row-aligned series feeding the capture calculation.
// Concentrations are ppm, flow is standard liters per minute. Temperature,
// pressure, and compressibility describe the gas at the flow meter.
type CO2Inputs struct {
	Times           []time.Time
	InletPPM        []float64
	OutletPPM       []float64
	FlowSLPM        []float64
	TemperatureC    float64
	PressurePsi     float64
	Compressibility float64
}

// CO2Result summarizes the integration.
type CO2Result struct {
	MassG        float64
	MassKg       float64
	SpanMinutes  float64
	SpanHours    float64
	RateGPerHour float64
	Points       int
	AvgInletPPM  float64
	AvgOutletPPM float64
	AvgFlowSLPM  float64
}

// ComputeCO2 integrates the captured CO2 mass over the window. Per row, the
// molar capture rate is flow·(x_in − x_out)/60/Vm with x the ppm fraction;
// the mass is the trapezoidal integral of that rate over elapsed seconds,
// times the CO2 molar mass. Rows with any NaN input are dropped first.
func ComputeCO2(in CO2Inputs) (*CO2Result, error) {
	n := len(in.Times)
	if len(in.InletPPM) != n || len(in.OutletPPM) != n || len(in.FlowSLPM) != n {
		return nil, ErrMismatchedSeries
	}

	vm := MolarVolume(in.TemperatureC, in.PressurePsi, in.Compressibility)

	var (
		secs, molPerSec       []float64
		sumIn, sumOut, sumFlo float64
	)
	for i := 0; i < n; i++ {
		if math.IsNaN(in.InletPPM[i]) || math.IsNaN(in.OutletPPM[i]) || math.IsNaN(in.FlowSLPM[i]) {
			continue
		}
		deltaX := (in.InletPPM[i] - in.OutletPPM[i]) / 1e6
		molPerSec = append(molPerSec, in.FlowSLPM[i]*deltaX/60/vm)
		secs = append(secs, in.Times[i].Sub(in.Times[0]).Seconds())
		sumIn += in.InletPPM[i]
		sumOut += in.OutletPPM[i]
		sumFlo += in.FlowSLPM[i]
	}
	if len(secs) < 2 {
		return nil, ErrNoDataInWindow
	}

	mol := trapezoid(secs, molPerSec)
	massG := co2MolarMass * mol
	spanMin := (secs[len(secs)-1] - secs[0]) / 60

	r := &CO2Result{
		MassG:        massG,
		MassKg:       massG / 1000,
		SpanMinutes:  spanMin,
		SpanHours:    spanMin / 60,
		Points:       len(secs),
		AvgInletPPM:  sumIn / float64(len(secs)),
		AvgOutletPPM: sumOut / float64(len(secs)),
		AvgFlowSLPM:  sumFlo / float64(len(secs)),
	}
	if r.SpanHours > 0 {
		r.RateGPerHour = massG / r.SpanHours
	}
	return r, nil
}

// trapezoid integrates ys over xs.
func trapezoid(xs, ys []float64) float64 {
	var sum float64
	for i := 1; i < len(xs); i++ {
		sum += (ys[i] + ys[i-1]) / 2 * (xs[i] - xs[i-1])
	}
	return sum
}

// RowMean averages the given columns row-wise, skipping NaN cells. A row
// with no finite cell yields NaN. Used when several sensors back one role
// (e.g. two inlet analyzers).
func RowMean(cols ...[]float64) []float64 {
	if len(cols) == 0 {
		return nil
	}
	n := len(cols[0])
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum, cnt := 0.0, 0
		for _, c := range cols {
			if i >= len(c) || math.IsNaN(c[i]) {
				continue
			}
			sum += c[i]
			cnt++
		}
		if cnt == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(cnt)
		}
	}
	return out
}
