// Package sqlstore persists drill sessions through sqlx. The same queries run
// against postgres (lib/pq) and sqlite (modernc.org/sqlite).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"gospc/domain/core"
	"gospc/domain/drill"
	"gospc/internal/errors"
	"gospc/ports"

	"github.com/jmoiron/sqlx"
)

type sessionRecord struct {
	ID        string         `db:"id"`
	Outcome   string         `db:"outcome"`
	Stack     string         `db:"stack"`
	Highlight sql.NullString `db:"highlight"`
	Depth     int            `db:"depth"`
	Version   int            `db:"version"`
	UpdatedAt int64          `db:"updated_at"`
}

// SessionRepository implements ports.DrillSessionRepository
type SessionRepository struct {
	db   *sqlx.DB
	opts drill.Options
}

var _ ports.DrillSessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a repository; opts label and id restored steps
func NewSessionRepository(db *sqlx.DB, opts drill.Options) *SessionRepository {
	return &SessionRepository{db: db, opts: opts}
}

// Save upserts the session. On success session.Version and UpdatedAt reflect
// the stored row.
func (r *SessionRepository) Save(ctx context.Context, session *ports.DrillSession) error {
	if session == nil || session.ID == "" {
		return errors.InvalidInput("session id is required")
	}

	stack := session.State.Stack
	if stack == nil {
		stack = []drill.Action{}
	}
	stackJSON, err := json.Marshal(stack)
	if err != nil {
		return fmt.Errorf("failed to marshal drill stack: %w", err)
	}

	var highlight sql.NullString
	if session.State.Highlight != nil {
		raw, err := json.Marshal(session.State.Highlight)
		if err != nil {
			return fmt.Errorf("failed to marshal highlight: %w", err)
		}
		highlight = sql.NullString{String: string(raw), Valid: true}
	}

	updatedAt := core.Now()
	query := `
		INSERT INTO drill_sessions (id, outcome, stack, highlight, depth, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			stack = EXCLUDED.stack,
			highlight = EXCLUDED.highlight,
			depth = EXCLUDED.depth,
			version = drill_sessions.version + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING version`

	var version int
	err = r.db.QueryRowxContext(ctx, query,
		session.ID.String(),
		session.Outcome,
		string(stackJSON),
		highlight,
		len(stack),
		updatedAt.UnixMilli(),
	).Scan(&version)
	if err != nil {
		return errors.DatabaseError("failed to save drill session", err)
	}

	session.Version = version
	session.UpdatedAt = updatedAt
	return nil
}

// Load reads a session back. The stored stack goes through drill.Restore so a
// hand-edited or stale row cannot break the toggle invariant.
func (r *SessionRepository) Load(ctx context.Context, id core.SessionID) (*ports.DrillSession, error) {
	var rec sessionRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT id, outcome, stack, highlight, depth, version, updated_at
		FROM drill_sessions
		WHERE id = $1`, id.String())
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
		}
		return nil, errors.DatabaseError("failed to load drill session", err)
	}

	var actions []drill.Action
	if err := json.Unmarshal([]byte(rec.Stack), &actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drill stack: %w", err)
	}
	state := drill.Restore(actions, r.opts)

	if rec.Highlight.Valid && rec.Highlight.String != "" {
		var h drill.HighlightState
		if err := json.Unmarshal([]byte(rec.Highlight.String), &h); err != nil {
			return nil, fmt.Errorf("failed to unmarshal highlight: %w", err)
		}
		state = drill.SetHighlight(state, h.RowIndex, h.Value, h.OriginalIndex)
	}

	return &ports.DrillSession{
		ID:        core.SessionID(rec.ID),
		Outcome:   rec.Outcome,
		State:     state,
		Version:   rec.Version,
		UpdatedAt: core.FromUnixMilli(rec.UpdatedAt),
	}, nil
}

// Delete removes a session; deleting an unknown id reports not found
func (r *SessionRepository) Delete(ctx context.Context, id core.SessionID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drill_sessions WHERE id = $1`, id.String())
	if err != nil {
		return errors.DatabaseError("failed to delete drill session", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	return nil
}

// List returns session summaries, newest first
func (r *SessionRepository) List(ctx context.Context, limit int) ([]ports.DrillSessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []sessionRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, outcome, stack, highlight, depth, version, updated_at
		FROM drill_sessions
		ORDER BY updated_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list drill sessions", err)
	}

	summaries := make([]ports.DrillSessionSummary, len(records))
	for i, rec := range records {
		summaries[i] = ports.DrillSessionSummary{
			ID:        core.SessionID(rec.ID),
			Outcome:   rec.Outcome,
			Depth:     rec.Depth,
			Version:   rec.Version,
			UpdatedAt: core.FromUnixMilli(rec.UpdatedAt),
		}
	}
	return summaries, nil
}
