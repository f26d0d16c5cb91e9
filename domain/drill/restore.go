package drill

import (
	"gospc/domain/dataset"
)

// Restore resumes from a persisted stack without replaying the gestures that
// built it. Non-filter entries are dropped, as are entries repeating an earlier
// factor and value set or an earlier id. Missing ids and labels are filled in.
func Restore(actions []Action, opts Options) State {
	stack := make([]Action, 0, len(actions))
	seenIDs := make(map[string]bool, len(actions))

	for _, a := range actions {
		if a.Type != TypeFilter {
			continue
		}
		duplicate := false
		for _, kept := range stack {
			if kept.Matches(a.Factor, a.Values) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		restored := a.clone()
		if restored.ID == "" || restored.ID.IsRoot() || seenIDs[restored.ID.String()] {
			restored.ID = opts.newID()
		}
		if restored.Label == "" {
			restored.Label = opts.Label(restored.Factor, restored.Values)
		}
		seenIDs[restored.ID.String()] = true
		stack = append(stack, restored)
	}

	return State{Stack: stack}
}

// FromProjection rebuilds a stack from an active filter set, one step per
// factor in sorted factor order. Used when filters arrive from a URL.
func FromProjection(proj FilterProjection, source Source, opts Options) State {
	s := State{}
	for _, factor := range proj.Factors() {
		values := proj[factor]
		if len(values) == 0 {
			continue
		}
		s = DrillDown(s, FilterParams{
			Source: source,
			Factor: factor,
			Values: append([]dataset.Value(nil), values...),
		}, opts)
	}
	return s
}
