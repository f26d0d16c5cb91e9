// Package variation replays a drill history and attributes outcome variation
// to each step, always relative to the unfiltered population.
package variation

import (
	"fmt"

	"gospc/adapters/stats/engine"
	"gospc/adapters/stats/variance"
	"gospc/domain/core"
	"gospc/domain/dataset"
	"gospc/domain/drill"
	"gospc/domain/spc"

	"github.com/dustin/go-humanize"
)

// Step is the variation accounting of one drill step
type Step struct {
	ActionID core.ActionID `json:"action_id"`
	Factor   string        `json:"factor"`
	Values   []string      `json:"values"`
	Label    string        `json:"label"`

	// LocalEtaSquared is the factor's η² within the subset the step was taken from
	LocalEtaSquared float64 `json:"local_eta_squared"`
	// ExplainedOfTotal is the factor's between-group variation in that subset
	// divided by the original population's total variation
	ExplainedOfTotal float64 `json:"explained_of_total"`
	// SelectedOfTotal is the part of ExplainedOfTotal carried by the chosen values
	SelectedOfTotal      float64 `json:"selected_of_total"`
	CumulativeEtaSquared float64 `json:"cumulative_eta_squared"`

	MeanBefore  float64  `json:"mean_before"`
	MeanAfter   float64  `json:"mean_after"`
	CpkBefore   *float64 `json:"cpk_before,omitempty"`
	CpkAfter    *float64 `json:"cpk_after,omitempty"`
	CountBefore int      `json:"count_before"`
	CountAfter  int      `json:"count_after"`

	// CategoryContributions maps every level of the factor to its share of the
	// original total variation
	CategoryContributions map[string]float64 `json:"category_contributions"`
	Narrative             string             `json:"narrative"`
}

// Result is the cumulative variation narrative of a drill history
type Result struct {
	Outcome              string             `json:"outcome"`
	TotalSumOfSquares    float64            `json:"total_sum_of_squares"`
	TotalCount           int                `json:"total_count"`
	Steps                []Step             `json:"steps"`
	CumulativeEtaSquared float64            `json:"cumulative_eta_squared"`
	Contributions        map[string]float64 `json:"contributions"`
	Summary              string             `json:"summary"`
}

// Tracker computes variation narratives against fixed specification limits
type Tracker struct {
	limits spc.SpecLimits
}

// NewTracker creates a tracker; limits feed the before/after Cpk
func NewTracker(limits spc.SpecLimits) *Tracker {
	return &Tracker{limits: limits}
}

// Track replays the stack step by step. Step k is evaluated on the rows
// selected by the first k-1 steps, and its explained variation is divided by
// the total sum of squares of the full dataset so that steps add up.
func (t *Tracker) Track(rows []dataset.Row, outcome string, stack []drill.Action) Result {
	totalSS := variance.TotalSumOfSquares(rows, outcome)
	result := Result{
		Outcome:           outcome,
		TotalSumOfSquares: totalSS,
		TotalCount:        len(dataset.Sample(rows, outcome)),
		Steps:             make([]Step, 0, len(stack)),
		Contributions:     make(map[string]float64, len(stack)),
	}

	before := rows
	cumulative := 0.0
	for k, action := range stack {
		after := dataset.ApplyFilters(rows, drill.Projection(stack[:k+1]))

		d := variance.Decompose(before, action.Factor, outcome)
		sampleBefore := dataset.Sample(before, outcome)
		sampleAfter := dataset.Sample(after, outcome)
		statsBefore := engine.CalculateStats(sampleBefore, t.limits, nil)
		statsAfter := engine.CalculateStats(sampleAfter, t.limits, nil)

		step := Step{
			ActionID:              action.ID,
			Factor:                action.Factor,
			Values:                dataset.Strings(action.Values),
			Label:                 action.Label,
			LocalEtaSquared:       d.EtaSquared(),
			MeanBefore:            statsBefore.Mean,
			MeanAfter:             statsAfter.Mean,
			CpkBefore:             spc.Finite(statsBefore.Cpk),
			CpkAfter:              spc.Finite(statsAfter.Cpk),
			CountBefore:           len(sampleBefore),
			CountAfter:            len(sampleAfter),
			CategoryContributions: make(map[string]float64, len(d.Groups)),
		}

		if totalSS > 0 {
			step.ExplainedOfTotal = d.SSBetween / totalSS
			selected := make(map[string]bool, len(action.Values))
			for _, v := range action.Values {
				selected[v.String()] = true
			}
			for _, g := range d.Groups {
				diff := g.Mean - d.GrandMean
				share := float64(len(g.Values)) * diff * diff / totalSS
				step.CategoryContributions[g.Level.String()] = share
				if selected[g.Level.String()] {
					step.SelectedOfTotal += share
				}
			}
		}

		cumulative += step.ExplainedOfTotal
		step.CumulativeEtaSquared = cumulative
		step.Narrative = Narrative(step.Label, step.ExplainedOfTotal, step.CountBefore, step.CountAfter)

		result.Steps = append(result.Steps, step)
		result.Contributions[step.Label] = step.SelectedOfTotal
		before = after
	}

	result.CumulativeEtaSquared = cumulative
	result.Summary = summary(result)
	return result
}

// Narrative renders one step as a sentence
func Narrative(label string, explained float64, countBefore, countAfter int) string {
	return fmt.Sprintf("%s explains %.1f%% of variation, narrowing from %s to %s rows",
		label, explained*100, humanize.Comma(int64(countBefore)), humanize.Comma(int64(countAfter)))
}

func summary(r Result) string {
	if len(r.Steps) == 0 {
		return fmt.Sprintf("No drill applied; all %s rows in scope", humanize.Comma(int64(r.TotalCount)))
	}
	last := r.Steps[len(r.Steps)-1]
	noun := "steps"
	if len(r.Steps) == 1 {
		noun = "step"
	}
	return fmt.Sprintf("%d drill %s explain %.1f%% of total variation, focusing on %s of %s rows",
		len(r.Steps), noun, r.CumulativeEtaSquared*100,
		humanize.Comma(int64(last.CountAfter)), humanize.Comma(int64(r.TotalCount)))
}
