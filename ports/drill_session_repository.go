package ports

import (
	"context"

	"gospc/domain/core"
	"gospc/domain/drill"
)

// DrillSession is a persisted drill history
type DrillSession struct {
	ID        core.SessionID `json:"id"`
	Outcome   string         `json:"outcome"`
	State     drill.State    `json:"state"`
	Version   int            `json:"version"`
	UpdatedAt core.Timestamp `json:"updated_at"`
}

// DrillSessionSummary is the list view of a persisted session
type DrillSessionSummary struct {
	ID        core.SessionID `json:"id"`
	Outcome   string         `json:"outcome"`
	Depth     int            `json:"depth"`
	Version   int            `json:"version"`
	UpdatedAt core.Timestamp `json:"updated_at"`
}

// DrillSessionRepository persists drill histories
type DrillSessionRepository interface {
	// Save inserts or replaces a session and bumps its version
	Save(ctx context.Context, session *DrillSession) error

	// Load returns core.ErrSessionNotFound when the id is unknown
	Load(ctx context.Context, id core.SessionID) (*DrillSession, error)

	Delete(ctx context.Context, id core.SessionID) error

	// List returns the most recently updated sessions first
	List(ctx context.Context, limit int) ([]DrillSessionSummary, error)
}
