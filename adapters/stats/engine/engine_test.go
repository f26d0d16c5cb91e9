package engine

import (
	"math"
	"testing"

	"gospc/domain/spc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStats_TwoSidedCapability(t *testing.T) {
	result := CalculateStats([]float64{10, 12, 11, 13}, spc.SpecLimits{USL: spc.Limit(15), LSL: spc.Limit(8)}, nil)

	assert.InDelta(t, 11.5, result.Mean, 1e-12)
	assert.InDelta(t, 1.29, result.StdDev, 0.005)
	require.NotNil(t, result.Cp)
	require.NotNil(t, result.Cpk)
	assert.InDelta(t, 0.90, *result.Cp, 0.005)
	assert.InDelta(t, 0.90, *result.Cpk, 0.005)
	assert.Equal(t, 0.0, result.OutOfSpecPercentage)
	assert.Equal(t, 4, result.Count)
}

func TestCalculateStats_OneSidedCpk(t *testing.T) {
	values := []float64{10, 12, 11, 13}

	upper := CalculateStats(values, spc.SpecLimits{USL: spc.Limit(14)}, nil)
	assert.Nil(t, upper.Cp)
	require.NotNil(t, upper.Cpk)
	assert.InDelta(t, (14-11.5)/(3*upper.StdDev), *upper.Cpk, 1e-12)

	lower := CalculateStats(values, spc.SpecLimits{LSL: spc.Limit(10)}, nil)
	assert.Nil(t, lower.Cp)
	require.NotNil(t, lower.Cpk)
	assert.InDelta(t, (11.5-10)/(3*lower.StdDev), *lower.Cpk, 1e-12)

	none := CalculateStats(values, spc.SpecLimits{}, nil)
	assert.Nil(t, none.Cp)
	assert.Nil(t, none.Cpk)
}

func TestCalculateStats_Empty(t *testing.T) {
	result := CalculateStats(nil, spc.SpecLimits{USL: spc.Limit(1)}, []spc.GradeBand{{Max: 1, Label: "A"}})
	assert.Equal(t, spc.StatsResult{}, result)
}

func TestCalculateStats_ZeroSpreadPassesThroughInfinity(t *testing.T) {
	result := CalculateStats([]float64{5, 5, 5}, spc.SpecLimits{USL: spc.Limit(6), LSL: spc.Limit(4)}, nil)

	assert.Equal(t, 0.0, result.StdDev)
	require.NotNil(t, result.Cp)
	assert.True(t, math.IsInf(*result.Cp, 1))
	assert.True(t, math.IsInf(*result.Cpk, 1))
}

func TestCalculateStats_SingleValue(t *testing.T) {
	result := CalculateStats([]float64{7}, spc.SpecLimits{}, nil)
	assert.Equal(t, 7.0, result.Mean)
	assert.Equal(t, 0.0, result.StdDev)
	assert.Equal(t, 7.0, result.UCL)
	assert.Equal(t, 7.0, result.LCL)
}

func TestCalculateStats_InvertedLimitsDoNotPanic(t *testing.T) {
	result := CalculateStats([]float64{1, 2, 3}, spc.SpecLimits{USL: spc.Limit(0), LSL: spc.Limit(4)}, nil)
	require.NotNil(t, result.Cpk)
	assert.Less(t, *result.Cpk, 0.0)
	assert.Less(t, *result.Cp, 0.0)
}

func TestCalculateStats_OutOfSpecBoundaries(t *testing.T) {
	values := []float64{8, 9, 15, 16, 7}
	result := CalculateStats(values, spc.SpecLimits{USL: spc.Limit(15), LSL: spc.Limit(8)}, nil)

	// 8 and 15 sit on the limits and count as in spec
	assert.InDelta(t, 40.0, result.OutOfSpecPercentage, 1e-12)
}

func TestCalculateStats_ControlLimitSymmetry(t *testing.T) {
	samples := [][]float64{
		{1, 2, 3, 4, 5},
		{-3.2, 8.1, 0.5, 12.75},
		{100, 100.1, 99.9},
	}
	for _, values := range samples {
		r := CalculateStats(values, spc.SpecLimits{}, nil)
		assert.InDelta(t, r.UCL-r.Mean, r.Mean-r.LCL, 1e-9)
	}
}

func TestCalculateStats_Idempotent(t *testing.T) {
	values := []float64{3.1, 4.7, 2.2, 9.9, 5.5}
	limits := spc.SpecLimits{USL: spc.Limit(9), LSL: spc.Limit(2)}

	first := CalculateStats(values, limits, nil)
	second := CalculateStats(values, limits, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, []float64{3.1, 4.7, 2.2, 9.9, 5.5}, values, "input must not be reordered")
}

func TestCalculateStats_GradeCounts(t *testing.T) {
	grades := []spc.GradeBand{
		{Max: 10, Label: "Low", Color: "green"},
		{Max: 20, Label: "Mid", Color: "amber"},
		{Max: 30, Label: "High", Color: "red"},
	}
	values := []float64{5, 10, 10.5, 20, 25, 99}

	result := CalculateStats(values, spc.SpecLimits{}, grades)

	require.Len(t, result.GradeCounts, 3)
	assert.Equal(t, "Low", result.GradeCounts[0].Label)
	assert.Equal(t, 2, result.GradeCounts[0].Count)
	assert.Equal(t, 2, result.GradeCounts[1].Count)
	assert.Equal(t, 2, result.GradeCounts[2].Count, "value above every band falls into the last band")
	assert.InDelta(t, 100.0/3, result.GradeCounts[2].Percentage, 1e-9)
	assert.Equal(t, "red", result.GradeCounts[2].Color)
}

func TestStatsEngine_UsesConfiguredLimits(t *testing.T) {
	e := NewStatsEngine(spc.SpecLimits{USL: spc.Limit(15), LSL: spc.Limit(8)}, nil)
	result := e.Calculate([]float64{10, 12, 11, 13})
	require.NotNil(t, result.Cp)
	assert.Equal(t, 15.0, *e.Limits().USL)
}
