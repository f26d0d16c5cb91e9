package app

import (
	"context"
	"sync"

	"gospc/adapters/urlsync"
	"gospc/domain/core"
	"gospc/domain/drill"
	"gospc/internal"
	"gospc/internal/errors"
	"gospc/ports"
)

// NavigatorConfig wires the optional collaborators of a Navigator
type NavigatorConfig struct {
	Outcome       string
	RootLabel     string
	FactorLabels  map[string]string
	EnableURLSync bool
	// Sessions is nil when persistence is disabled
	Sessions ports.DrillSessionRepository
	// NewID overrides action id generation, mainly for tests
	NewID func() core.ActionID
}

// Navigator owns the live drill state. Every gesture computes a new state
// from the current one and swaps it in whole, so readers never observe a
// partially applied step.
type Navigator struct {
	mu    sync.RWMutex
	state drill.State

	opts          drill.Options
	outcome       string
	rootLabel     string
	enableURLSync bool
	sessions      ports.DrillSessionRepository
	logger        *internal.Logger
}

// NewNavigator creates a navigator at the root
func NewNavigator(cfg NavigatorConfig) *Navigator {
	rootLabel := cfg.RootLabel
	if rootLabel == "" {
		rootLabel = drill.DefaultRootLabel
	}
	return &Navigator{
		opts:          drill.Options{FactorLabels: cfg.FactorLabels, NewID: cfg.NewID},
		outcome:       cfg.Outcome,
		rootLabel:     rootLabel,
		enableURLSync: cfg.EnableURLSync,
		sessions:      cfg.Sessions,
		logger:        internal.DefaultLogger.With("Navigator"),
	}
}

// State returns the current drill state
func (n *Navigator) State() drill.State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

func (n *Navigator) apply(op string, fn func(drill.State) drill.State) drill.State {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = fn(n.state)
	n.logger.Debug("%s -> depth %d", op, len(n.state.Stack))
	return n.state
}

// DrillDown applies a filter toggle or a highlight
func (n *Navigator) DrillDown(p drill.Params) drill.State {
	return n.apply("drill down", func(s drill.State) drill.State {
		return drill.DrillDown(s, p, n.opts)
	})
}

// DrillUp removes the latest step
func (n *Navigator) DrillUp() drill.State {
	return n.apply("drill up", drill.DrillUp)
}

// DrillTo jumps to a breadcrumb; unknown ids leave the state untouched
func (n *Navigator) DrillTo(id core.ActionID) drill.State {
	return n.apply("drill to "+id.String(), func(s drill.State) drill.State {
		return drill.DrillTo(s, id)
	})
}

// Clear returns to the root
func (n *Navigator) Clear() drill.State {
	return n.apply("clear", drill.Clear)
}

// SetHighlight marks a point
func (n *Navigator) SetHighlight(rowIndex int, value float64, originalIndex *int) drill.State {
	return n.apply("highlight", func(s drill.State) drill.State {
		return drill.SetHighlight(s, rowIndex, value, originalIndex)
	})
}

// ClearHighlight removes the point mark
func (n *Navigator) ClearHighlight() drill.State {
	return n.apply("clear highlight", drill.ClearHighlight)
}

// Breadcrumbs is the trail of the current state
func (n *Navigator) Breadcrumbs() []drill.BreadcrumbItem {
	return n.State().Breadcrumbs(n.rootLabel)
}

// URLSyncEnabled reports whether the URL collaborator is active
func (n *Navigator) URLSyncEnabled() bool {
	return n.enableURLSync
}

// Query encodes the active filters for the address bar, or "" when URL sync is off
func (n *Navigator) Query() string {
	if !n.enableURLSync {
		return ""
	}
	return urlsync.Encode(n.State().Projection())
}

// ApplyQuery rebuilds the stack from an encoded filter set. It does nothing
// when URL sync is off or when the query already matches the active filters.
func (n *Navigator) ApplyQuery(raw string) (drill.State, bool) {
	if !n.enableURLSync {
		return n.State(), false
	}
	proj := urlsync.Decode(raw)

	n.mu.Lock()
	defer n.mu.Unlock()
	if proj.Hash() == n.state.Projection().Hash() {
		return n.state, false
	}
	next := drill.FromProjection(proj, drill.SourceURL, n.opts)
	next.Highlight = n.state.Highlight
	n.state = next
	n.logger.Debug("applied url filters %q -> depth %d", raw, len(n.state.Stack))
	return n.state, true
}

// Save persists the current state under id; an empty id allocates one
func (n *Navigator) Save(ctx context.Context, id core.SessionID) (*ports.DrillSession, error) {
	if n.sessions == nil {
		return nil, errors.New(errors.CodeUnprocessable, "session persistence is disabled")
	}
	if id == "" {
		id = core.NewSessionID()
	}
	session := &ports.DrillSession{ID: id, Outcome: n.outcome, State: n.State()}
	if err := n.sessions.Save(ctx, session); err != nil {
		return nil, errors.Wrapf(err, "failed to save session %s", id)
	}
	n.logger.Info("saved session %s (depth %d, version %d)", id, len(session.State.Stack), session.Version)
	return session, nil
}

// Load replaces the current state with a persisted one
func (n *Navigator) Load(ctx context.Context, id core.SessionID) (*ports.DrillSession, error) {
	if n.sessions == nil {
		return nil, errors.New(errors.CodeUnprocessable, "session persistence is disabled")
	}
	session, err := n.sessions.Load(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load session %s", id)
	}
	if session.Outcome != "" && n.outcome != "" && session.Outcome != n.outcome {
		return nil, errors.InvalidInput("session " + id.String() + " was recorded for outcome " + session.Outcome)
	}

	n.mu.Lock()
	n.state = session.State
	n.mu.Unlock()
	n.logger.Info("loaded session %s (depth %d)", id, len(session.State.Stack))
	return session, nil
}

// Sessions lists persisted sessions
func (n *Navigator) Sessions(ctx context.Context, limit int) ([]ports.DrillSessionSummary, error) {
	if n.sessions == nil {
		return nil, errors.New(errors.CodeUnprocessable, "session persistence is disabled")
	}
	list, err := n.sessions.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	return list, nil
}

// DeleteSession removes a persisted session
func (n *Navigator) DeleteSession(ctx context.Context, id core.SessionID) error {
	if n.sessions == nil {
		return errors.New(errors.CodeUnprocessable, "session persistence is disabled")
	}
	return errors.Wrapf(n.sessions.Delete(ctx, id), "failed to delete session %s", id)
}
