package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GenerateFeedback(ctx context.Context, count int) ([]string, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) ClassifySentiment(ctx context.Context, text string) (Sentiment, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(Sentiment), args.Error(1)
}

func (m *MockClient) LabelCluster(ctx context.Context, texts []string) (string, error) {
	args := m.Called(ctx, texts)
	return args.String(0), args.Error(1)
}

func (m *MockClient) SuggestFeatures(ctx context.Context, texts []string) ([]string, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) DraftReply(ctx context.Context, text string, sentiment Sentiment) (string, error) {
	args := m.Called(ctx, text, sentiment)
	return args.String(0), args.Error(1)
}
