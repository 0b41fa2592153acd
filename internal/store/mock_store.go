package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"feedback-insights/internal/embeddings"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateRun(ctx context.Context, source string) (Run, error) {
	args := m.Called(ctx, source)
	return args.Get(0).(Run), args.Error(1)
}

func (m *MockStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Run), args.Error(1)
}

func (m *MockStore) UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) SaveItems(ctx context.Context, runID uuid.UUID, items []Item) error {
	args := m.Called(ctx, runID, items)
	return args.Error(0)
}

func (m *MockStore) ListItems(ctx context.Context, runID uuid.UUID) ([]Item, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockStore) SaveLabels(ctx context.Context, runID uuid.UUID, labels []ClusterLabel) error {
	args := m.Called(ctx, runID, labels)
	return args.Error(0)
}

func (m *MockStore) ListLabels(ctx context.Context, runID uuid.UUID) ([]ClusterLabel, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClusterLabel), args.Error(1)
}

func (m *MockStore) SaveReport(ctx context.Context, runID uuid.UUID, body []byte) error {
	args := m.Called(ctx, runID, body)
	return args.Error(0)
}

func (m *MockStore) GetReport(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) SimilarItems(ctx context.Context, runID uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error) {
	args := m.Called(ctx, runID, vector, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SearchResult), args.Error(1)
}
