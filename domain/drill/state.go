package drill

import (
	"gospc/domain/core"
)

// State is the whole navigation state: the filter history plus an optional highlight
type State struct {
	Stack     []Action        `json:"stack"`
	Highlight *HighlightState `json:"highlight,omitempty"`
}

// IsEmpty reports whether no filter is applied
func (s State) IsEmpty() bool { return len(s.Stack) == 0 }

// Current returns the most recent drill step, if any
func (s State) Current() (Action, bool) {
	if len(s.Stack) == 0 {
		return Action{}, false
	}
	return s.Stack[len(s.Stack)-1].clone(), true
}

// IndexOf returns the position of an action in the stack, or -1
func (s State) IndexOf(id core.ActionID) int {
	for i, a := range s.Stack {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s State) withStack(stack []Action) State {
	return State{Stack: stack, Highlight: s.Highlight}
}

func copyStack(stack []Action, extra int) []Action {
	if len(stack) == 0 && extra == 0 {
		return nil
	}
	out := make([]Action, len(stack), len(stack)+extra)
	for i, a := range stack {
		out[i] = a.clone()
	}
	return out
}

// DrillDown applies a drill gesture. Highlights replace the highlight and leave
// the stack alone. Filters toggle: an entry with the same factor and value set
// is removed in place, otherwise a new entry is appended.
func DrillDown(s State, p Params, opts Options) State {
	switch params := p.(type) {
	case HighlightParams:
		return SetHighlight(s, params.RowIndex, params.Value, params.OriginalIndex)
	case FilterParams:
		return applyFilter(s, params, opts)
	default:
		return s
	}
}

func applyFilter(s State, p FilterParams, opts Options) State {
	for i, existing := range s.Stack {
		if existing.Matches(p.Factor, p.Values) {
			stack := copyStack(s.Stack[:i], 0)
			stack = append(stack, copyStack(s.Stack[i+1:], 0)...)
			return s.withStack(stack)
		}
	}

	action := Action{
		ID:       opts.newID(),
		Type:     TypeFilter,
		Source:   p.Source,
		Factor:   p.Factor,
		Values:   p.Values,
		RowIndex: p.RowIndex,
		Label:    opts.Label(p.Factor, p.Values),
	}

	stack := copyStack(s.Stack, 1)
	stack = append(stack, action.clone())
	return s.withStack(stack)
}

// DrillUp removes the most recent step
func DrillUp(s State) State {
	if len(s.Stack) == 0 {
		return s
	}
	return s.withStack(copyStack(s.Stack[:len(s.Stack)-1], 0))
}

// DrillTo navigates to a breadcrumb. The root id clears the stack; a known id
// truncates the stack after that entry; an unknown id leaves the state as is.
func DrillTo(s State, id core.ActionID) State {
	if id.IsRoot() {
		return s.withStack(nil)
	}
	idx := s.IndexOf(id)
	if idx < 0 {
		return s
	}
	return s.withStack(copyStack(s.Stack[:idx+1], 0))
}

// Clear drops every filter and the highlight
func Clear(State) State {
	return State{}
}

// SetHighlight replaces the highlight
func SetHighlight(s State, rowIndex int, value float64, originalIndex *int) State {
	h := &HighlightState{RowIndex: rowIndex, Value: value}
	if originalIndex != nil {
		idx := *originalIndex
		h.OriginalIndex = &idx
	}
	return State{Stack: s.Stack, Highlight: h}
}

// ClearHighlight removes the highlight
func ClearHighlight(s State) State {
	return State{Stack: s.Stack}
}
