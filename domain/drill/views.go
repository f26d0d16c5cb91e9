package drill

import (
	"sort"

	"gospc/domain/core"
	"gospc/domain/dataset"
)

// DefaultRootLabel is the breadcrumb label for the unfiltered dataset
const DefaultRootLabel = "All Data"

// FilterProjection maps factor to the values currently allowed
type FilterProjection map[string][]dataset.Value

// Factors returns the projected factors in sorted order
func (p FilterProjection) Factors() []string {
	out := make([]string, 0, len(p))
	for f := range p {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Strings renders the projection for hashing and display
func (p FilterProjection) Strings() map[string][]string {
	out := make(map[string][]string, len(p))
	for f, values := range p {
		out[f] = dataset.Strings(values)
	}
	return out
}

// Hash fingerprints the projection
func (p FilterProjection) Hash(extra ...string) core.Hash {
	return core.ComputeFilterHash(p.Strings(), extra...)
}

// Projection folds the stack oldest-first. When a factor was drilled more than
// once, the latest value set is the active filter even though every step stays
// in the history.
func Projection(stack []Action) FilterProjection {
	proj := make(FilterProjection)
	for _, a := range stack {
		if a.Type != TypeFilter || a.Factor == "" {
			continue
		}
		proj[a.Factor] = append([]dataset.Value(nil), a.Values...)
	}
	return proj
}

// Projection is the active filter set of the state
func (s State) Projection() FilterProjection {
	return Projection(s.Stack)
}

// BreadcrumbItem is one entry of the navigation trail
type BreadcrumbItem struct {
	ID       core.ActionID `json:"id"`
	Label    string        `json:"label"`
	IsActive bool          `json:"is_active"`
	Source   Source        `json:"source"`
}

// Breadcrumbs lists the root plus one item per step; only the last item is active
func Breadcrumbs(stack []Action, rootLabel string) []BreadcrumbItem {
	if rootLabel == "" {
		rootLabel = DefaultRootLabel
	}
	items := make([]BreadcrumbItem, 0, len(stack)+1)
	items = append(items, BreadcrumbItem{
		ID:       core.RootActionID,
		Label:    rootLabel,
		IsActive: len(stack) == 0,
		Source:   SourceRoot,
	})
	for i, a := range stack {
		items = append(items, BreadcrumbItem{
			ID:       a.ID,
			Label:    a.Label,
			IsActive: i == len(stack)-1,
			Source:   a.Source,
		})
	}
	return items
}

// Breadcrumbs is the navigation trail of the state
func (s State) Breadcrumbs(rootLabel string) []BreadcrumbItem {
	return Breadcrumbs(s.Stack, rootLabel)
}
