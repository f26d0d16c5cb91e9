// Package probability builds normal probability plot coordinates with
// per-point confidence bands
package probability

import (
	"math"
	"sort"

	"gospc/domain/spc"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// CIMultiplier is the two-sided 95% normal critical value
const CIMultiplier = 1.96

// FittedPercentiles are the percentiles at which the theoretical line is drawn
var FittedPercentiles = []float64{1, 5, 10, 25, 50, 75, 90, 95, 99}

// BlomPosition is the plotting position of the i-th (1-based) of n sorted values
func BlomPosition(i, n int) float64 {
	return (float64(i) - 0.375) / (float64(n) + 0.25)
}

// NormalQuantile is the inverse standard normal CDF; exactly 0 at p = 0.5
func NormalQuantile(p float64) float64 {
	if p == 0.5 {
		return 0
	}
	return distuv.UnitNormal.Quantile(p)
}

// CalculatePlotData sorts the sample and returns one point per value with its
// expected percentile, z-score and 95% confidence band. The input is not modified.
func CalculatePlotData(data []float64) []spc.PlotPoint {
	n := len(data)
	if n == 0 {
		return []spc.PlotPoint{}
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	stdDev := 0.0
	if n > 1 {
		if sd, err := stats.StandardDeviationSample(sorted); err == nil {
			stdDev = sd
		}
	}

	points := make([]spc.PlotPoint, n)
	for i, v := range sorted {
		p := BlomPosition(i+1, n)
		z := NormalQuantile(p)
		density := distuv.UnitNormal.Prob(z)

		se := 0.0
		if density > 0 {
			se = stdDev * math.Sqrt(p*(1-p)/float64(n)) / density
		}

		points[i] = spc.PlotPoint{
			Value:              v,
			ExpectedPercentile: p * 100,
			ZScore:             z,
			LowerCI:            v - CIMultiplier*se,
			UpperCI:            v + CIMultiplier*se,
		}
	}
	return points
}

// FittedLine returns the theoretical normal line through the sample's mean
// and standard deviation
func FittedLine(mean, stdDev float64) []spc.FittedPoint {
	out := make([]spc.FittedPoint, len(FittedPercentiles))
	for i, pct := range FittedPercentiles {
		out[i] = spc.FittedPoint{
			Percentile: pct,
			Value:      mean + NormalQuantile(pct/100)*stdDev,
		}
	}
	return out
}
