package calc

import (
	"math"
	"time"
)

// Magnus-Tetens saturation vapor pressure coefficients (hPa, °C).
const (
	magnusA = 6.112
	magnusB = 17.62
	magnusC = 243.12
)

// saturationVaporPressure returns e(T) in hPa for T in °C.
func saturationVaporPressure(tempC float64) float64 {
	return magnusA * math.Exp(magnusB*tempC/(magnusC+tempC))
}

// RelativeHumidity returns RH in percent from air temperature and dew point,
// both °C. Equal temperatures give 100%.
func RelativeHumidity(tempC, dewC float64) float64 {
	return 100 * saturationVaporPressure(dewC) / saturationVaporPressure(tempC)
}

// RHInputs are row-aligned temperature and dew point series.
type RHInputs struct {
	Times        []time.Time
	TemperatureC []float64
	DewPointC    []float64
}

// RHResult summarizes the humidity over the window. Series holds the
// per-row RH values aligned with the input rows (NaN where an input was
// missing), so it can be plotted alongside the source sensors.
type RHResult struct {
	AvgRH       float64
	MinRH       float64
	MaxRH       float64
	AvgTempC    float64
	AvgDewC     float64
	SpanMinutes float64
	Points      int
	Series      []float64
}

// ComputeRH derives relative humidity per row and aggregates it.
func ComputeRH(in RHInputs) (*RHResult, error) {
	n := len(in.Times)
	if len(in.TemperatureC) != n || len(in.DewPointC) != n {
		return nil, ErrMismatchedSeries
	}

	r := &RHResult{
		MinRH:  math.Inf(1),
		MaxRH:  math.Inf(-1),
		Series: make([]float64, n),
	}
	var sumRH, sumT, sumTd float64
	first, last := -1, -1
	for i := 0; i < n; i++ {
		t, td := in.TemperatureC[i], in.DewPointC[i]
		if math.IsNaN(t) || math.IsNaN(td) {
			r.Series[i] = math.NaN()
			continue
		}
		rh := RelativeHumidity(t, td)
		r.Series[i] = rh
		sumRH += rh
		sumT += t
		sumTd += td
		if rh < r.MinRH {
			r.MinRH = rh
		}
		if rh > r.MaxRH {
			r.MaxRH = rh
		}
		if first < 0 {
			first = i
		}
		last = i
		r.Points++
	}
	if r.Points == 0 {
		return nil, ErrNoDataInWindow
	}
	r.AvgRH = sumRH / float64(r.Points)
	r.AvgTempC = sumT / float64(r.Points)
	r.AvgDewC = sumTd / float64(r.Points)
	r.SpanMinutes = in.Times[last].Sub(in.Times[first]).Minutes()
	return r, nil
}
