package engine

import (
	"math"

	"gospc/domain/spc"

	"github.com/montanaflynn/stats"
)

// StatsEngine computes control limits and capability for a sample against a
// fixed set of specification limits and grade bands
type StatsEngine struct {
	limits spc.SpecLimits
	grades []spc.GradeBand
}

// NewStatsEngine creates a new statistical engine
func NewStatsEngine(limits spc.SpecLimits, grades []spc.GradeBand) *StatsEngine {
	return &StatsEngine{
		limits: limits,
		grades: append([]spc.GradeBand(nil), grades...),
	}
}

// Limits returns the configured specification limits
func (e *StatsEngine) Limits() spc.SpecLimits {
	return e.limits
}

// Calculate summarizes a sample with the engine's limits and grades
func (e *StatsEngine) Calculate(values []float64) spc.StatsResult {
	return CalculateStats(values, e.limits, e.grades)
}

// CalculateStats computes mean, sample standard deviation, 3σ control limits,
// capability indices, out-of-spec share and grade distribution.
//
// An empty sample yields an all-zero result. A zero standard deviation makes
// Cp/Cpk ±Inf or NaN; those values are returned as computed.
func CalculateStats(values []float64, limits spc.SpecLimits, grades []spc.GradeBand) spc.StatsResult {
	if len(values) == 0 {
		return spc.StatsResult{}
	}

	mean, stdDev := meanAndStdDev(values)

	result := spc.StatsResult{
		Mean:   mean,
		StdDev: stdDev,
		UCL:    mean + 3*stdDev,
		LCL:    mean - 3*stdDev,
		Count:  len(values),
	}

	usl, lsl := limits.USL, limits.LSL
	switch {
	case usl != nil && lsl != nil:
		cp := (*usl - *lsl) / (6 * stdDev)
		cpu := (*usl - mean) / (3 * stdDev)
		cpl := (mean - *lsl) / (3 * stdDev)
		cpk := math.Min(cpu, cpl)
		result.Cp = &cp
		result.Cpk = &cpk
	case usl != nil:
		cpk := (*usl - mean) / (3 * stdDev)
		result.Cpk = &cpk
	case lsl != nil:
		cpk := (mean - *lsl) / (3 * stdDev)
		result.Cpk = &cpk
	}

	result.OutOfSpecPercentage = outOfSpecPercentage(values, limits)

	if len(grades) > 0 {
		result.GradeCounts = gradeCounts(values, grades)
	}

	return result
}

// meanAndStdDev uses the n-1 denominator; a single value has no spread
func meanAndStdDev(values []float64) (float64, float64) {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, 0
	}
	if len(values) < 2 {
		return mean, 0
	}
	stdDev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return mean, 0
	}
	return mean, stdDev
}

// outOfSpecPercentage counts values strictly outside the limits; values on a
// limit are in spec
func outOfSpecPercentage(values []float64, limits spc.SpecLimits) float64 {
	if limits.IsEmpty() {
		return 0
	}
	out := 0
	for _, v := range values {
		if limits.USL != nil && v > *limits.USL {
			out++
		} else if limits.LSL != nil && v < *limits.LSL {
			out++
		}
	}
	return float64(out) / float64(len(values)) * 100
}

// gradeCounts buckets each value into the first band whose Max is at least the
// value; values above every band land in the last band
func gradeCounts(values []float64, grades []spc.GradeBand) []spc.GradeCount {
	counts := make([]int, len(grades))
	for _, v := range values {
		idx := len(grades) - 1
		for i, g := range grades {
			if v <= g.Max {
				idx = i
				break
			}
		}
		counts[idx]++
	}

	out := make([]spc.GradeCount, len(grades))
	for i, g := range grades {
		out[i] = spc.GradeCount{
			Label:      g.Label,
			Color:      g.Color,
			Count:      counts[i],
			Percentage: float64(counts[i]) / float64(len(values)) * 100,
		}
	}
	return out
}
