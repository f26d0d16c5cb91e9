// Package drill is the filter-navigation state machine. Every operation takes
// a State and returns a new one; the input is never modified, so readers of a
// previous State keep a consistent view.
package drill

import (
	"strings"

	"gospc/domain/core"
	"gospc/domain/dataset"
)

// ActionType distinguishes persisted filters from transient highlights
type ActionType string

const (
	TypeFilter    ActionType = "filter"
	TypeHighlight ActionType = "highlight"
)

// Source names the chart a drill gesture originated from
type Source string

const (
	SourceIChart      Source = "ichart"
	SourceBoxplot     Source = "boxplot"
	SourcePareto      Source = "pareto"
	SourceHistogram   Source = "histogram"
	SourceProbability Source = "probability"
	SourceMindmap     Source = "mindmap"
	SourceURL         Source = "url"
	SourceRoot        Source = "root"
)

// Action is one persisted step of the drill history
type Action struct {
	ID       core.ActionID   `json:"id"`
	Type     ActionType      `json:"type"`
	Source   Source          `json:"source"`
	Factor   string          `json:"factor,omitempty"`
	Values   []dataset.Value `json:"values"`
	RowIndex *int            `json:"row_index,omitempty"`
	Label    string          `json:"label"`
}

// Matches reports whether the action filters the same factor to the same value set
func (a Action) Matches(factor string, values []dataset.Value) bool {
	return a.Factor == factor && dataset.SameSet(a.Values, values)
}

func (a Action) clone() Action {
	out := a
	out.Values = append([]dataset.Value(nil), a.Values...)
	if a.RowIndex != nil {
		idx := *a.RowIndex
		out.RowIndex = &idx
	}
	return out
}

// HighlightState marks a single point across charts. It never enters the stack.
type HighlightState struct {
	RowIndex      int     `json:"row_index"`
	Value         float64 `json:"value"`
	OriginalIndex *int    `json:"original_index,omitempty"`
}

// Params is a drill gesture: either FilterParams or HighlightParams
type Params interface {
	actionType() ActionType
}

// FilterParams narrows the dataset to the given values of a factor
type FilterParams struct {
	Source   Source
	Factor   string
	Values   []dataset.Value
	RowIndex *int
}

// HighlightParams marks one point without filtering
type HighlightParams struct {
	Source        Source
	RowIndex      int
	Value         float64
	OriginalIndex *int
}

func (FilterParams) actionType() ActionType    { return TypeFilter }
func (HighlightParams) actionType() ActionType { return TypeHighlight }

// Options tunes labels and id generation
type Options struct {
	// FactorLabels maps column names to display aliases
	FactorLabels map[string]string
	// NewID overrides id generation; defaults to time-ordered UUIDs
	NewID func() core.ActionID
}

func (o Options) newID() core.ActionID {
	if o.NewID != nil {
		return o.NewID()
	}
	return core.NewActionID()
}

// Label renders "{factor alias}: {v1, v2}"
func (o Options) Label(factor string, values []dataset.Value) string {
	joined := strings.Join(dataset.Strings(values), ", ")
	if factor == "" {
		return joined
	}
	name := factor
	if alias, ok := o.FactorLabels[factor]; ok && alias != "" {
		name = alias
	}
	return name + ": " + joined
}
