package probability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePlotData_Empty(t *testing.T) {
	points := CalculatePlotData(nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestCalculatePlotData_BlomPositions(t *testing.T) {
	data := []float64{5, 1, 3}
	points := CalculatePlotData(data)
	require.Len(t, points, 3)

	assert.Equal(t, []float64{5, 1, 3}, data, "input must not be sorted in place")

	assert.Equal(t, 1.0, points[0].Value)
	assert.Equal(t, 3.0, points[1].Value)
	assert.Equal(t, 5.0, points[2].Value)

	assert.InDelta(t, (1-0.375)/3.25*100, points[0].ExpectedPercentile, 1e-12)
	assert.InDelta(t, 50.0, points[1].ExpectedPercentile, 1e-12)
	assert.Equal(t, 0.0, points[1].ZScore)
	assert.InDelta(t, -points[0].ZScore, points[2].ZScore, 1e-9)
}

func TestCalculatePlotData_ConfidenceBand(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	points := CalculatePlotData(data)
	require.Len(t, points, len(data))

	sd := 2.138089935299395 // sample standard deviation of data
	n := float64(len(data))
	for i, pt := range points {
		p := (float64(i+1) - 0.375) / (n + 0.25)
		z := pt.ZScore
		phi := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)
		se := sd * math.Sqrt(p*(1-p)/n) / phi

		assert.InDelta(t, pt.Value-1.96*se, pt.LowerCI, 1e-6)
		assert.InDelta(t, pt.Value+1.96*se, pt.UpperCI, 1e-6)
		assert.Less(t, pt.LowerCI, pt.UpperCI)
	}
	// bands widen toward the tails
	mid := points[3].UpperCI - points[3].LowerCI
	tail := points[0].UpperCI - points[0].LowerCI
	assert.Greater(t, tail, mid)
}

func TestCalculatePlotData_SingleValueHasNoBand(t *testing.T) {
	points := CalculatePlotData([]float64{4})
	require.Len(t, points, 1)
	assert.Equal(t, 4.0, points[0].LowerCI)
	assert.Equal(t, 4.0, points[0].UpperCI)
	assert.InDelta(t, 50.0, points[0].ExpectedPercentile, 1e-12)
}

func TestNormalQuantile(t *testing.T) {
	assert.Equal(t, 0.0, NormalQuantile(0.5))
	assert.InDelta(t, 1.959963985, NormalQuantile(0.975), 1e-9)
	assert.InDelta(t, -2.326347874, NormalQuantile(0.01), 1e-9)
	assert.InDelta(t, -4.264890794, NormalQuantile(1e-5), 1e-8)
}

func TestFittedLine(t *testing.T) {
	line := FittedLine(10, 2)
	require.Len(t, line, 9)

	assert.Equal(t, 1.0, line[0].Percentile)
	assert.Equal(t, 50.0, line[4].Percentile)
	assert.Equal(t, 10.0, line[4].Value)
	assert.InDelta(t, 10-2*2.326347874, line[0].Value, 1e-8)
	assert.InDelta(t, 10+2*2.326347874, line[8].Value, 1e-8)
	for i := 1; i < len(line); i++ {
		assert.Greater(t, line[i].Value, line[i-1].Value)
	}
}
