package app

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"gospc/adapters/stats/engine"
	"gospc/adapters/stats/probability"
	"gospc/adapters/stats/rules"
	"gospc/adapters/stats/variance"
	"gospc/domain/core"
	"gospc/domain/dataset"
	"gospc/domain/drill"
	"gospc/domain/spc"
	"gospc/internal"
	"gospc/internal/errors"
	"gospc/internal/report"
	"gospc/internal/variation"
	"gospc/ports"

	lru "github.com/hashicorp/golang-lru/v2"
)

// AnalysisConfig fixes what is analysed
type AnalysisConfig struct {
	Outcome   string
	Factors   []string
	Limits    spc.SpecLimits
	Grades    []spc.GradeBand
	RootLabel string
	MemoSize  int
}

// ChartPoint is one I-chart observation of the current subset
type ChartPoint struct {
	Index         int     `json:"index"`
	OriginalIndex int     `json:"original_index"`
	Value         float64 `json:"value"`
}

// Snapshot is everything the charts need for one drill state
type Snapshot struct {
	Outcome         string                         `json:"outcome"`
	Projection      map[string][]string            `json:"projection"`
	Breadcrumbs     []drill.BreadcrumbItem         `json:"breadcrumbs"`
	Highlight       *drill.HighlightState          `json:"highlight,omitempty"`
	Points          []ChartPoint                   `json:"points"`
	Stats           spc.StatsResult                `json:"stats"`
	Violations      spc.RuleViolations             `json:"violations"`
	Ranking         []spc.FactorEffect             `json:"ranking"`
	SuggestedFactor string                         `json:"suggested_factor,omitempty"`
	Anova           map[string]*spc.AnovaResult    `json:"anova"`
	Categories      map[string][]spc.CategoryStats `json:"categories"`
	Interactions    []spc.InteractionResult        `json:"interactions"`
	Probability     []spc.PlotPoint                `json:"probability"`
	FittedLine      []spc.FittedPoint              `json:"fitted_line"`
	Variation       variation.Result               `json:"variation"`
}

// subsetAnalysis is the part of a snapshot that depends only on the active filters
type subsetAnalysis struct {
	points       []ChartPoint
	stats        spc.StatsResult
	violations   spc.RuleViolations
	ranking      []spc.FactorEffect
	anova        map[string]*spc.AnovaResult
	categories   map[string][]spc.CategoryStats
	interactions []spc.InteractionResult
	probability  []spc.PlotPoint
	fitted       []spc.FittedPoint
}

// AnalysisService computes snapshots over the loaded table. Results for a
// filter set are memoized until the table is replaced.
type AnalysisService struct {
	mu         sync.RWMutex
	table      *dataset.Table
	generation int

	cfg     AnalysisConfig
	engine  *engine.StatsEngine
	tracker *variation.Tracker
	memo    *lru.Cache[core.Hash, *subsetAnalysis]
	logger  *internal.Logger
}

// NewAnalysisService validates the configuration against the table
func NewAnalysisService(table *dataset.Table, cfg AnalysisConfig) (*AnalysisService, error) {
	if table == nil {
		return nil, errors.Wrap(core.ErrNoDataset, "failed to create analysis service")
	}
	if err := validateColumns(table, cfg); err != nil {
		return nil, err
	}
	if cfg.MemoSize <= 0 {
		cfg.MemoSize = 128
	}
	if cfg.RootLabel == "" {
		cfg.RootLabel = drill.DefaultRootLabel
	}
	memo, err := lru.New[core.Hash, *subsetAnalysis](cfg.MemoSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create analysis memo")
	}

	return &AnalysisService{
		table:   table,
		cfg:     cfg,
		engine:  engine.NewStatsEngine(cfg.Limits, cfg.Grades),
		tracker: variation.NewTracker(cfg.Limits),
		memo:    memo,
		logger:  internal.DefaultLogger.With("AnalysisService"),
	}, nil
}

func validateColumns(table *dataset.Table, cfg AnalysisConfig) error {
	if cfg.Outcome == "" {
		return errors.InvalidInput("outcome column is required")
	}
	if !table.HasColumn(cfg.Outcome) {
		return errors.Wrap(core.NewNotFoundError("column", cfg.Outcome), "unknown outcome column")
	}
	for _, f := range cfg.Factors {
		if !table.HasColumn(f) {
			return errors.Wrap(core.NewNotFoundError("column", f), "unknown factor column")
		}
		if f == cfg.Outcome {
			return errors.InvalidInput(fmt.Sprintf("%s cannot be both outcome and factor", f))
		}
	}
	return nil
}

// Config returns the analysis configuration
func (s *AnalysisService) Config() AnalysisConfig {
	return s.cfg
}

// Table returns the current table
func (s *AnalysisService) Table() *dataset.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Replace swaps in a reloaded table and drops every memoized result
func (s *AnalysisService) Replace(table *dataset.Table) error {
	if table == nil {
		return errors.Wrap(core.ErrNoDataset, "failed to replace table")
	}
	if err := validateColumns(table, s.cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.table = table
	s.generation++
	s.mu.Unlock()
	s.memo.Purge()
	s.logger.Info("table replaced (%d rows)", len(table.Rows))
	return nil
}

// Reload reads a fresh table from reader and swaps it in. The current table
// stays active when the read fails or the new table lacks a configured column.
func (s *AnalysisService) Reload(ctx context.Context, reader ports.TableReader) error {
	table, err := reader.ReadTable(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to reload table")
	}
	return s.Replace(table)
}

// Analyze builds the snapshot for a drill state
func (s *AnalysisService) Analyze(ctx context.Context, state drill.State) (*Snapshot, error) {
	s.mu.RLock()
	table, generation := s.table, s.generation
	s.mu.RUnlock()

	proj := state.Projection()
	key := proj.Hash(s.cfg.Outcome, strconv.Itoa(generation))

	subset, ok := s.memo.Get(key)
	if ok {
		s.logger.Debug("memo hit %s", key)
	} else {
		var err error
		subset, err = s.analyzeSubset(ctx, table, proj)
		if err != nil {
			return nil, err
		}
		s.memo.Add(key, subset)
	}

	return &Snapshot{
		Outcome:         s.cfg.Outcome,
		Projection:      proj.Strings(),
		Breadcrumbs:     state.Breadcrumbs(s.cfg.RootLabel),
		Highlight:       state.Highlight,
		Points:          subset.points,
		Stats:           subset.stats,
		Violations:      subset.violations,
		Ranking:         subset.ranking,
		SuggestedFactor: suggestFactor(subset.ranking, proj),
		Anova:           subset.anova,
		Categories:      subset.categories,
		Interactions:    subset.interactions,
		Probability:     subset.probability,
		FittedLine:      subset.fitted,
		Variation:       s.tracker.Track(table.Rows, s.cfg.Outcome, state.Stack),
	}, nil
}

func (s *AnalysisService) analyzeSubset(ctx context.Context, table *dataset.Table, proj drill.FilterProjection) (*subsetAnalysis, error) {
	indices := dataset.MatchingIndices(table.Rows, proj)
	rows := make([]dataset.Row, len(indices))
	points := make([]ChartPoint, 0, len(indices))
	values := make([]float64, 0, len(indices))
	for i, idx := range indices {
		rows[i] = table.Rows[idx]
		if v, ok := table.Rows[idx].Number(s.cfg.Outcome); ok {
			points = append(points, ChartPoint{Index: len(points), OriginalIndex: idx, Value: v})
			values = append(values, v)
		}
	}

	stats := s.engine.Calculate(values)
	ranking, err := variance.RankFactors(ctx, rows, s.cfg.Factors, s.cfg.Outcome)
	if err != nil {
		return nil, errors.Wrap(err, "failed to rank factors")
	}

	subset := &subsetAnalysis{
		points:      points,
		stats:       stats,
		violations:  rules.Detect(values, stats),
		ranking:     ranking,
		anova:       make(map[string]*spc.AnovaResult, len(s.cfg.Factors)),
		categories:  make(map[string][]spc.CategoryStats, len(s.cfg.Factors)),
		probability: probability.CalculatePlotData(values),
	}
	if len(values) > 0 {
		subset.fitted = probability.FittedLine(stats.Mean, stats.StdDev)
	}

	for i, f := range s.cfg.Factors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a := variance.CalculateAnova(rows, s.cfg.Outcome, f); a != nil {
			subset.anova[f] = a
		}
		subset.categories[f] = variance.CategoryStats(rows, f, s.cfg.Outcome)
		for _, g := range s.cfg.Factors[i+1:] {
			if r := variance.InteractionStrength(rows, f, g, s.cfg.Outcome); r != nil {
				subset.interactions = append(subset.interactions, *r)
			}
		}
	}

	return subset, nil
}

// suggestFactor is the strongest factor not already filtered
func suggestFactor(ranking []spc.FactorEffect, proj drill.FilterProjection) string {
	for _, f := range ranking {
		if _, filtered := proj[f.Factor]; filtered {
			continue
		}
		if f.EtaSquared > 0 {
			return f.Factor
		}
	}
	return ""
}

// Report renders the snapshot narrative for a drill state
func (s *AnalysisService) Report(ctx context.Context, state drill.State, title string) (*Snapshot, []byte, error) {
	snap, err := s.Analyze(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	return snap, report.HTML(ReportInput(snap, title)), nil
}

// ReportInput maps a snapshot onto the report renderer's input
func ReportInput(snap *Snapshot, title string) report.Input {
	return report.Input{
		Title:       title,
		Outcome:     snap.Outcome,
		Stats:       snap.Stats,
		Violations:  snap.Violations,
		Variation:   snap.Variation,
		Ranking:     snap.Ranking,
		Breadcrumbs: snap.Breadcrumbs,
	}
}
