package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gospc/domain/core"
	"gospc/domain/dataset"
	"gospc/domain/drill"
	"gospc/internal/migration"
	"gospc/ports"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestRepository(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return NewSessionRepository(db, drill.Options{})
}

func sampleState() drill.State {
	n := 0
	opts := drill.Options{NewID: func() core.ActionID {
		n++
		return core.ActionID(fmt.Sprintf("a%d", n))
	}}
	s := drill.DrillDown(drill.State{}, drill.FilterParams{
		Source: drill.SourceBoxplot,
		Factor: "Machine",
		Values: []dataset.Value{dataset.StringValue("A"), dataset.StringValue("C")},
	}, opts)
	s = drill.DrillDown(s, drill.FilterParams{
		Source: drill.SourcePareto,
		Factor: "Line",
		Values: []dataset.Value{dataset.NumberValue(3)},
	}, opts)
	orig := 7
	return drill.SetHighlight(s, 2, 11.5, &orig)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	session := &ports.DrillSession{ID: "s1", Outcome: "Fill", State: sampleState()}
	require.NoError(t, repo.Save(ctx, session))
	assert.Equal(t, 1, session.Version)
	assert.False(t, session.UpdatedAt.IsZero())

	loaded, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Fill", loaded.Outcome)
	assert.Equal(t, session.State, loaded.State)
	assert.Equal(t, 1, loaded.Version)
	assert.Equal(t, session.UpdatedAt.UnixMilli(), loaded.UpdatedAt.UnixMilli())
}

func TestSaveBumpsVersion(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	session := &ports.DrillSession{ID: "s1", Outcome: "Fill", State: sampleState()}
	require.NoError(t, repo.Save(ctx, session))

	session.State = drill.DrillUp(session.State)
	require.NoError(t, repo.Save(ctx, session))
	assert.Equal(t, 2, session.Version)

	loaded, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, loaded.State.Stack, 1)
	assert.Equal(t, 2, loaded.Version)
}

func TestSaveEmptyState(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &ports.DrillSession{ID: "empty", Outcome: "Fill"}))

	loaded, err := repo.Load(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, loaded.State.IsEmpty())
	assert.Nil(t, loaded.State.Highlight)
}

func TestSaveRequiresID(t *testing.T) {
	repo := newTestRepository(t)
	assert.Error(t, repo.Save(context.Background(), &ports.DrillSession{}))
	assert.Error(t, repo.Save(context.Background(), nil))
}

func TestLoadUnknown(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Load(context.Background(), "missing")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestLoadRepairsStoredStack(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// a duplicate step and a highlight entry written by hand
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO drill_sessions (id, outcome, stack, depth, version, updated_at)
		VALUES ($1, $2, $3, 3, 1, 0)`,
		"hand", "Fill",
		`[{"id":"x","type":"filter","factor":"Machine","values":["A"],"label":"Machine: A"},
		  {"id":"y","type":"filter","factor":"Machine","values":["A"],"label":"Machine: A"},
		  {"id":"z","type":"highlight","values":[]}]`)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, "hand")
	require.NoError(t, err)
	require.Len(t, loaded.State.Stack, 1)
	assert.Equal(t, core.ActionID("x"), loaded.State.Stack[0].ID)
}

func TestDeleteAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &ports.DrillSession{ID: "s1", Outcome: "Fill", State: sampleState()}))
	require.NoError(t, repo.Save(ctx, &ports.DrillSession{ID: "s2", Outcome: "Weight"}))

	summaries, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	depths := map[core.SessionID]int{}
	for _, s := range summaries {
		depths[s.ID] = s.Depth
	}
	assert.Equal(t, map[core.SessionID]int{"s1": 2, "s2": 0}, depths)

	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.True(t, errors.Is(repo.Delete(ctx, "s1"), core.ErrNotFound))

	summaries, err = repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, core.SessionID("s2"), summaries[0].ID)
}
