package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"feedback-insights/internal/embeddings"
)

type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusReady      RunStatus = "ready"
	StatusFailed     RunStatus = "failed"
)

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrReportNotFound = errors.New("report not found")
)

// Run is one batch of feedback moving through the pipeline.
type Run struct {
	ID        uuid.UUID
	Source    string // "synthetic" or "import"
	Status    RunStatus
	CreatedAt time.Time
}

// Item is one persisted feedback entry with its analysis results.
// Embedding is nil for items the embedder failed on.
type Item struct {
	ID              uuid.UUID
	RunID           uuid.UUID
	Index           int
	Text            string
	Sentiment       string
	ClusterID       int
	Similarity      float64
	ClusteringError string
	Reply           string
	Embedding       embeddings.Vector
}

// ClusterLabel is the derived label and feature suggestions for one
// cluster within a run.
type ClusterLabel struct {
	ClusterID   int
	Label       string
	Suggestions []string
}

// SearchResult is one similarity hit within a run.
type SearchResult struct {
	Item  Item
	Score float32
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateRun(ctx context.Context, source string) (Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus) error
	SaveItems(ctx context.Context, runID uuid.UUID, items []Item) error
	ListItems(ctx context.Context, runID uuid.UUID) ([]Item, error)
	SaveLabels(ctx context.Context, runID uuid.UUID, labels []ClusterLabel) error
	ListLabels(ctx context.Context, runID uuid.UUID) ([]ClusterLabel, error)
	SaveReport(ctx context.Context, runID uuid.UUID, body []byte) error
	GetReport(ctx context.Context, runID uuid.UUID) ([]byte, error)
	SimilarItems(ctx context.Context, runID uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error)
}
