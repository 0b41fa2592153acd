package cache

import (
	"context"
	"time"
)

// Cache provides report caching for the gateway's read path.
type Cache interface {
	// GetReport retrieves a cached report body by run id.
	// Returns nil if not found
	GetReport(ctx context.Context, runID string) ([]byte, error)

	// SetReport stores a report body with TTL
	SetReport(ctx context.Context, runID string, body []byte, ttl time.Duration) error

	// InvalidateRun removes the cached report for a run
	InvalidateRun(ctx context.Context, runID string) error

	// Close closes the cache connection
	Close() error
}
