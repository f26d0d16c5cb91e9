package api

import (
	"gospc/domain/dataset"
	"gospc/domain/drill"
	"gospc/internal/errors"
)

// drillRequest is the body of POST /api/drill/down. A request carrying a
// factor is a filter; one carrying only a row index is a highlight.
type drillRequest struct {
	Type          drill.ActionType `json:"type"`
	Source        drill.Source     `json:"source"`
	Factor        string           `json:"factor"`
	Values        []dataset.Value  `json:"values"`
	RowIndex      *int             `json:"row_index"`
	Value         *float64         `json:"value"`
	OriginalIndex *int             `json:"original_index"`
}

// highlightRequest is the body of POST /api/highlight
type highlightRequest struct {
	RowIndex      *int     `json:"row_index"`
	Value         *float64 `json:"value"`
	OriginalIndex *int     `json:"original_index"`
}

var knownSources = map[drill.Source]bool{
	drill.SourceIChart:      true,
	drill.SourceBoxplot:     true,
	drill.SourcePareto:      true,
	drill.SourceHistogram:   true,
	drill.SourceProbability: true,
	drill.SourceMindmap:     true,
}

func (r drillRequest) kind() drill.ActionType {
	if r.Type != "" {
		return r.Type
	}
	if r.Factor == "" && r.RowIndex != nil {
		return drill.TypeHighlight
	}
	return drill.TypeFilter
}

// params validates the request against the analysed factors
func (r drillRequest) params(factors []string) (drill.Params, error) {
	if r.Source != "" && !knownSources[r.Source] {
		return nil, errors.InvalidInput("unknown drill source " + string(r.Source))
	}

	switch r.kind() {
	case drill.TypeHighlight:
		h := highlightRequest{RowIndex: r.RowIndex, Value: r.Value, OriginalIndex: r.OriginalIndex}
		if err := h.validate(); err != nil {
			return nil, err
		}
		source := r.Source
		if source == "" {
			source = drill.SourceIChart
		}
		return drill.HighlightParams{
			Source:        source,
			RowIndex:      *r.RowIndex,
			Value:         *r.Value,
			OriginalIndex: r.OriginalIndex,
		}, nil

	case drill.TypeFilter:
		if r.Factor == "" {
			return nil, errors.InvalidInput("factor is required")
		}
		if len(factors) > 0 && !contains(factors, r.Factor) {
			return nil, errors.InvalidInput("factor " + r.Factor + " is not analysed")
		}
		if len(r.Values) == 0 {
			return nil, errors.InvalidInput("at least one value is required")
		}
		for _, v := range r.Values {
			if v.IsZero() {
				return nil, errors.InvalidInput("filter values must not be empty")
			}
		}
		source := r.Source
		if source == "" {
			source = drill.SourceBoxplot
		}
		return drill.FilterParams{
			Source:   source,
			Factor:   r.Factor,
			Values:   r.Values,
			RowIndex: r.RowIndex,
		}, nil
	}

	return nil, errors.InvalidInput("unknown drill type " + string(r.Type))
}

func (r highlightRequest) validate() error {
	if r.RowIndex == nil {
		return errors.InvalidInput("row_index is required")
	}
	if *r.RowIndex < 0 {
		return errors.InvalidInput("row_index must not be negative")
	}
	if r.Value == nil {
		return errors.InvalidInput("value is required")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
