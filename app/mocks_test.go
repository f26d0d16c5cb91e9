package app

import (
	"context"

	"gospc/domain/core"
	"gospc/domain/dataset"
	"gospc/ports"

	"github.com/stretchr/testify/mock"
)

// MockSessionRepository implements ports.DrillSessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, session *ports.DrillSession) error {
	args := m.Called(ctx, session)
	if args.Error(0) == nil {
		session.Version++
		session.UpdatedAt = core.Now()
	}
	return args.Error(0)
}

func (m *MockSessionRepository) Load(ctx context.Context, id core.SessionID) (*ports.DrillSession, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*ports.DrillSession); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id core.SessionID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) List(ctx context.Context, limit int) ([]ports.DrillSessionSummary, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]ports.DrillSessionSummary), args.Error(1)
}

// MockTableReader implements ports.TableReader
type MockTableReader struct {
	mock.Mock
}

func (m *MockTableReader) ReadTable(ctx context.Context) (*dataset.Table, error) {
	args := m.Called(ctx)
	if t, ok := args.Get(0).(*dataset.Table); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
