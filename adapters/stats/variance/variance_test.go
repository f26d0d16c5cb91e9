package variance

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"gospc/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoMachines: A = {10, 12}, B = {20, 22}; grand mean 16, SST 104, SSB 100
func twoMachines() []dataset.Row {
	return []dataset.Row{
		{"Machine": "A", "Shift": "Day", "Weight": 10.0},
		{"Machine": "A", "Shift": "Night", "Weight": 12.0},
		{"Machine": "B", "Shift": "Day", "Weight": 20.0},
		{"Machine": "B", "Shift": "Night", "Weight": 22.0},
		{"Machine": "B", "Shift": "Night", "Weight": "bad"},
		{"Shift": "Day", "Weight": 99.0},
	}
}

func TestEtaSquared(t *testing.T) {
	rows := twoMachines()
	assert.InDelta(t, 100.0/104.0, EtaSquared(rows, "Machine", "Weight"), 1e-12)
	assert.InDelta(t, 4.0/104.0, EtaSquared(rows[:4], "Shift", "Weight"), 1e-12)
}

func TestEtaSquared_ConstantOutcomeIsZero(t *testing.T) {
	rows := []dataset.Row{
		{"Machine": "A", "Weight": 5.0},
		{"Machine": "B", "Weight": 5.0},
		{"Machine": "C", "Weight": 5.0},
	}
	assert.Equal(t, 0.0, EtaSquared(rows, "Machine", "Weight"))
}

func TestEtaSquared_SingleLevelIsZero(t *testing.T) {
	rows := []dataset.Row{
		{"Machine": "A", "Weight": 1.0},
		{"Machine": "A", "Weight": 7.0},
		{"Machine": "A", "Weight": 3.0},
	}
	assert.InDelta(t, 0.0, EtaSquared(rows, "Machine", "Weight"), 1e-12)
}

func TestEtaSquared_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	levels := []string{"A", "B", "C", "D"}
	for trial := 0; trial < 50; trial++ {
		rows := make([]dataset.Row, 40)
		for i := range rows {
			rows[i] = dataset.Row{
				"F": levels[rng.Intn(len(levels))],
				"Y": rng.NormFloat64()*3 + float64(rng.Intn(3)),
			}
		}
		eta := EtaSquared(rows, "F", "Y")
		assert.GreaterOrEqual(t, eta, 0.0)
		assert.LessOrEqual(t, eta, 1+1e-9)
	}
}

func TestEtaSquared_EmptyRows(t *testing.T) {
	assert.Equal(t, 0.0, EtaSquared(nil, "F", "Y"))
}

func TestCalculateAnova(t *testing.T) {
	result := CalculateAnova(twoMachines(), "Weight", "Machine")
	require.NotNil(t, result)

	assert.Equal(t, "Machine", result.Factor)
	assert.Equal(t, 1, result.DFBetween)
	assert.Equal(t, 2, result.DFWithin)
	assert.InDelta(t, 100.0, result.SSBetween, 1e-9)
	assert.InDelta(t, 4.0, result.SSWithin, 1e-9)
	assert.InDelta(t, 50.0, result.FStatistic, 1e-9)
	assert.InDelta(t, 0.0194, result.PValue, 5e-4)
	assert.True(t, result.IsSignificant)
	assert.InDelta(t, 100.0/104.0, result.EtaSquared, 1e-12)

	require.Len(t, result.Groups, 2)
	assert.Equal(t, "A", result.Groups[0].Name)
	assert.Equal(t, 2, result.Groups[0].N)
	assert.InDelta(t, 11.0, result.Groups[0].Mean, 1e-12)
	assert.InDelta(t, math.Sqrt2, result.Groups[0].StdDev, 1e-12)
}

func TestCalculateAnova_NotComputable(t *testing.T) {
	t.Run("single group", func(t *testing.T) {
		rows := []dataset.Row{{"M": "A", "Y": 1.0}, {"M": "A", "Y": 2.0}}
		assert.Nil(t, CalculateAnova(rows, "Y", "M"))
	})
	t.Run("no within-group freedom", func(t *testing.T) {
		rows := []dataset.Row{{"M": "A", "Y": 1.0}, {"M": "B", "Y": 2.0}}
		assert.Nil(t, CalculateAnova(rows, "Y", "M"))
	})
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, CalculateAnova(nil, "Y", "M"))
	})
}

func TestCalculateAnova_NoWithinVariation(t *testing.T) {
	rows := []dataset.Row{
		{"M": "A", "Y": 1.0}, {"M": "A", "Y": 1.0},
		{"M": "B", "Y": 3.0}, {"M": "B", "Y": 3.0},
	}
	result := CalculateAnova(rows, "Y", "M")
	require.NotNil(t, result)
	assert.True(t, math.IsInf(result.FStatistic, 1))
	assert.Equal(t, 0.0, result.PValue)

	flat := []dataset.Row{
		{"M": "A", "Y": 2.0}, {"M": "A", "Y": 2.0},
		{"M": "B", "Y": 2.0}, {"M": "B", "Y": 2.0},
	}
	result = CalculateAnova(flat, "Y", "M")
	require.NotNil(t, result)
	assert.Equal(t, 1.0, result.PValue)
	assert.False(t, result.IsSignificant)
}

func cellRows(cells map[[2]string][]float64) []dataset.Row {
	var rows []dataset.Row
	for _, key := range [][2]string{{"a1", "b1"}, {"a1", "b2"}, {"a2", "b1"}, {"a2", "b2"}} {
		for _, y := range cells[key] {
			rows = append(rows, dataset.Row{"A": key[0], "B": key[1], "Y": y})
		}
	}
	return rows
}

func TestInteractionStrength_Crossover(t *testing.T) {
	rows := cellRows(map[[2]string][]float64{
		{"a1", "b1"}: {10, 11},
		{"a1", "b2"}: {20, 21},
		{"a2", "b1"}: {20, 21},
		{"a2", "b2"}: {10, 11},
	})

	result := InteractionStrength(rows, "A", "B", "Y")
	require.NotNil(t, result)

	assert.Equal(t, "A", result.FactorA)
	assert.Equal(t, "B", result.FactorB)
	assert.Equal(t, 8, result.N)
	assert.InDelta(t, 0.0, result.RSquaredMain, 1e-9)
	assert.InDelta(t, 200.0/202.0, result.RSquaredFull, 1e-9)
	assert.InDelta(t, 200.0/202.0, result.DeltaRSquared, 1e-9)
	assert.Less(t, result.PValue, 0.001)
	assert.Less(t, result.StandardizedBeta, -1.0)
}

func TestInteractionStrength_AdditiveEffects(t *testing.T) {
	rows := cellRows(map[[2]string][]float64{
		{"a1", "b1"}: {10, 12},
		{"a1", "b2"}: {15, 17},
		{"a2", "b1"}: {20, 22},
		{"a2", "b2"}: {25, 27},
	})

	result := InteractionStrength(rows, "A", "B", "Y")
	require.NotNil(t, result)
	assert.InDelta(t, 0.0, result.DeltaRSquared, 1e-9)
	assert.Greater(t, result.PValue, 0.9)
	assert.Greater(t, result.RSquaredMain, 0.9)
}

func TestInteractionStrength_EmptyCellStillFits(t *testing.T) {
	rows := cellRows(map[[2]string][]float64{
		{"a1", "b1"}: {10, 11, 12},
		{"a1", "b2"}: {20, 21, 22},
		{"a2", "b1"}: {30, 31, 32},
	})
	result := InteractionStrength(rows, "A", "B", "Y")
	require.NotNil(t, result)
	assert.InDelta(t, 0.0, result.DeltaRSquared, 1e-9, "an unobserved cell cannot carry interaction")
	assert.Equal(t, 1.0, result.PValue)
}

func TestInteractionStrength_NotComputable(t *testing.T) {
	t.Run("single level", func(t *testing.T) {
		rows := []dataset.Row{
			{"A": "a1", "B": "b1", "Y": 1.0}, {"A": "a2", "B": "b1", "Y": 2.0},
			{"A": "a1", "B": "b1", "Y": 3.0}, {"A": "a2", "B": "b1", "Y": 4.0},
			{"A": "a1", "B": "b1", "Y": 5.0},
		}
		assert.Nil(t, InteractionStrength(rows, "A", "B", "Y"))
	})
	t.Run("too few rows", func(t *testing.T) {
		rows := []dataset.Row{
			{"A": "a1", "B": "b1", "Y": 1.0}, {"A": "a2", "B": "b2", "Y": 2.0},
			{"A": "a1", "B": "b2", "Y": 3.0}, {"A": "a2", "B": "b1", "Y": 4.0},
		}
		assert.Nil(t, InteractionStrength(rows, "A", "B", "Y"))
	})
	t.Run("constant outcome", func(t *testing.T) {
		rows := cellRows(map[[2]string][]float64{
			{"a1", "b1"}: {5, 5}, {"a1", "b2"}: {5, 5}, {"a2", "b1"}: {5, 5}, {"a2", "b2"}: {5, 5},
		})
		assert.Nil(t, InteractionStrength(rows, "A", "B", "Y"))
	})
}

func TestCategoryStats(t *testing.T) {
	stats := CategoryStats(twoMachines(), "Machine", "Weight")
	require.Len(t, stats, 2)

	a := stats[0]
	assert.Equal(t, "A", a.Value)
	assert.Equal(t, 2, a.Count)
	assert.InDelta(t, 11.0, a.Mean, 1e-12)
	assert.Equal(t, 10.0, a.Min)
	assert.Equal(t, 10.0, a.Q1)
	assert.Equal(t, 11.0, a.Median)
	assert.Equal(t, 12.0, a.Q3)
	assert.Equal(t, 12.0, a.Max)
	assert.InDelta(t, 50.0/104.0*100, a.Contribution, 1e-9)

	total := 0.0
	for _, s := range stats {
		total += s.Contribution
	}
	assert.InDelta(t, EtaSquared(twoMachines(), "Machine", "Weight")*100, total, 1e-9)
}

func TestCategoryStats_SingleObservation(t *testing.T) {
	stats := CategoryStats([]dataset.Row{{"M": "A", "Y": 4.0}}, "M", "Y")
	require.Len(t, stats, 1)
	assert.Equal(t, 4.0, stats[0].Q1)
	assert.Equal(t, 4.0, stats[0].Q3)
	assert.Equal(t, 0.0, stats[0].Contribution)
}

func TestRankFactors(t *testing.T) {
	rows := twoMachines()[:4]
	for _, r := range rows {
		r["Plant"] = "North"
	}

	effects, err := RankFactors(context.Background(), rows, []string{"Plant", "Shift", "Machine"}, "Weight")
	require.NoError(t, err)
	require.Len(t, effects, 3)
	assert.Equal(t, "Machine", effects[0].Factor)
	assert.Equal(t, 2, effects[0].Levels)
	assert.Equal(t, "Shift", effects[1].Factor)
	assert.Equal(t, "Plant", effects[2].Factor)
	assert.Equal(t, 0.0, effects[2].EtaSquared)
}

func TestRankFactors_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RankFactors(ctx, twoMachines(), []string{"Machine"}, "Weight")
	assert.ErrorIs(t, err, context.Canceled)
}
