package app

import (
	"context"
	"strings"
	"testing"

	"gospc/domain/dataset"
	"gospc/domain/drill"
	"gospc/domain/spc"
	"gospc/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plantTable() *dataset.Table {
	return &dataset.Table{
		Headers: []string{"Machine", "Shift", "Fill"},
		Rows: []dataset.Row{
			{"Machine": "A", "Shift": "Day", "Fill": 10.0},
			{"Machine": "A", "Shift": "Day", "Fill": 12.0},
			{"Machine": "A", "Shift": "Night", "Fill": 20.0},
			{"Machine": "A", "Shift": "Night", "Fill": 22.0},
			{"Machine": "B", "Shift": "Day", "Fill": 30.0},
			{"Machine": "B", "Shift": "Day", "Fill": 32.0},
			{"Machine": "B", "Shift": "Night", "Fill": 40.0},
			{"Machine": "B", "Shift": "Night", "Fill": 42.0},
		},
	}
}

func plantConfig() AnalysisConfig {
	return AnalysisConfig{
		Outcome: "Fill",
		Factors: []string{"Machine", "Shift"},
		Limits:  spc.SpecLimits{USL: spc.Limit(50), LSL: spc.Limit(0)},
	}
}

func newTestService(t *testing.T) *AnalysisService {
	t.Helper()
	svc, err := NewAnalysisService(plantTable(), plantConfig())
	require.NoError(t, err)
	return svc
}

func TestNewAnalysisService_Validation(t *testing.T) {
	_, err := NewAnalysisService(nil, plantConfig())
	assert.Equal(t, errors.CodeUnprocessable, errors.GetCode(err))

	cfg := plantConfig()
	cfg.Outcome = ""
	_, err = NewAnalysisService(plantTable(), cfg)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	cfg = plantConfig()
	cfg.Outcome = "Torque"
	_, err = NewAnalysisService(plantTable(), cfg)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	cfg = plantConfig()
	cfg.Factors = []string{"Machine", "Line"}
	_, err = NewAnalysisService(plantTable(), cfg)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	cfg = plantConfig()
	cfg.Factors = []string{"Fill"}
	_, err = NewAnalysisService(plantTable(), cfg)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestAnalyze_Root(t *testing.T) {
	svc := newTestService(t)

	snap, err := svc.Analyze(context.Background(), drill.State{})
	require.NoError(t, err)

	assert.Equal(t, 8, snap.Stats.Count)
	assert.InDelta(t, 26.0, snap.Stats.Mean, 1e-12)
	assert.Len(t, snap.Points, 8)
	assert.Empty(t, snap.Projection)
	assert.Len(t, snap.Breadcrumbs, 1)

	require.Len(t, snap.Ranking, 2)
	assert.Equal(t, "Machine", snap.Ranking[0].Factor)
	assert.InDelta(t, 800.0/1008.0, snap.Ranking[0].EtaSquared, 1e-12)
	assert.Equal(t, "Machine", snap.SuggestedFactor)

	require.Contains(t, snap.Anova, "Machine")
	assert.Equal(t, 6, snap.Anova["Machine"].DFWithin)
	assert.Len(t, snap.Categories["Shift"], 2)
	require.Len(t, snap.Interactions, 1)
	assert.InDelta(t, 0, snap.Interactions[0].DeltaRSquared, 1e-9)

	assert.Len(t, snap.Probability, 8)
	assert.Len(t, snap.FittedLine, 9)
	assert.Empty(t, snap.Variation.Steps)
	assert.NotNil(t, snap.Violations.RunOfNine)
}

func TestAnalyze_Drilled(t *testing.T) {
	svc := newTestService(t)
	nav := newTestNavigator(nil, false)
	nav.DrillDown(filterOn("Machine", "A"))
	orig := 2
	state := nav.SetHighlight(2, 20, &orig)

	snap, err := svc.Analyze(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{"Machine": {"A"}}, snap.Projection)
	require.Len(t, snap.Points, 4)
	assert.Equal(t, ChartPoint{Index: 3, OriginalIndex: 3, Value: 22}, snap.Points[3])
	assert.InDelta(t, 16.0, snap.Stats.Mean, 1e-12)
	assert.Equal(t, "Shift", snap.SuggestedFactor)
	assert.Len(t, snap.Breadcrumbs, 2)
	require.NotNil(t, snap.Highlight)
	assert.Equal(t, 2, snap.Highlight.RowIndex)
	require.Len(t, snap.Variation.Steps, 1)
	assert.Equal(t, 4, snap.Variation.Steps[0].CountAfter)
	assert.NotContains(t, snap.Anova, "Machine", "one level left after filtering")
}

func TestAnalyze_OriginalIndexSkipsFilteredRows(t *testing.T) {
	svc := newTestService(t)
	nav := newTestNavigator(nil, false)
	state := nav.DrillDown(filterOn("Shift", "Night"))

	snap, err := svc.Analyze(context.Background(), state)
	require.NoError(t, err)

	originals := make([]int, len(snap.Points))
	for i, p := range snap.Points {
		originals[i] = p.OriginalIndex
		assert.Equal(t, i, p.Index)
	}
	assert.Equal(t, []int{2, 3, 6, 7}, originals)
}

func TestAnalyze_MemoizesByProjection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	nav := newTestNavigator(nil, false)
	nav.DrillDown(filterOn("Machine", "A"))
	viaA := nav.DrillDown(filterOn("Machine", "B"))

	direct := newTestNavigator(nil, false).DrillDown(filterOn("Machine", "B"))

	first, err := svc.Analyze(ctx, viaA)
	require.NoError(t, err)
	second, err := svc.Analyze(ctx, direct)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.memo.Len())
	assert.Equal(t, first.Stats, second.Stats)
	assert.Len(t, first.Variation.Steps, 2)
	assert.Len(t, second.Variation.Steps, 1)
}

func TestAnalyze_EmptySubset(t *testing.T) {
	svc := newTestService(t)
	state := newTestNavigator(nil, false).DrillDown(filterOn("Machine", "Z"))

	snap, err := svc.Analyze(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Stats.Count)
	assert.Empty(t, snap.Points)
	assert.Empty(t, snap.Probability)
	assert.Nil(t, snap.FittedLine)
	assert.Equal(t, "", snap.SuggestedFactor)
}

func TestAnalyze_Cancelled(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, drill.State{})
	assert.Error(t, err)
	assert.Equal(t, 0, svc.memo.Len())
}

func TestReplacePurgesMemo(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Analyze(ctx, drill.State{})
	require.NoError(t, err)
	require.Equal(t, 1, svc.memo.Len())

	table := plantTable()
	table.Rows = table.Rows[:4]
	require.NoError(t, svc.Replace(table))
	assert.Equal(t, 0, svc.memo.Len())

	snap, err := svc.Analyze(ctx, drill.State{})
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Stats.Count)

	assert.Error(t, svc.Replace(&dataset.Table{Headers: []string{"Machine"}}))
}

func TestReload(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	smaller := plantTable()
	smaller.Rows = smaller.Rows[4:]
	reader := new(MockTableReader)
	reader.On("ReadTable", ctx).Return(smaller, nil).Once()
	reader.On("ReadTable", ctx).Return(nil, assert.AnError).Once()

	require.NoError(t, svc.Reload(ctx, reader))
	snap, err := svc.Analyze(ctx, drill.State{})
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Stats.Count)
	assert.InDelta(t, 36.0, snap.Stats.Mean, 1e-9)

	err = svc.Reload(ctx, reader)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, svc.Table().Rows, 4)

	reader.AssertExpectations(t)
}

func TestReport(t *testing.T) {
	svc := newTestService(t)
	state := newTestNavigator(nil, false).DrillDown(filterOn("Machine", "A"))

	snap, html, err := svc.Report(context.Background(), state, "Fill weight")
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Stats.Count)
	assert.True(t, strings.Contains(string(html), "<table"))
	assert.Contains(t, string(html), "Filler: A explains")
}
