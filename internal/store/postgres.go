package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"feedback-insights/internal/embeddings"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Use advisory lock to prevent concurrent migrations from multiple services.
	// Note: In production, use dedicated migration tools (e.g., golang-migrate/migrate)
	// that run as a separate deployment step before app services start.
	const lockID = 874120553 // arbitrary number for this application's migration lock

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	// Ensure lock is released when done
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	// Enable pgvector extension
	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			source TEXT,
			status TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS feedback_items (
			id UUID PRIMARY KEY,
			run_id UUID REFERENCES runs(id) ON DELETE CASCADE,
			ord INT,
			text TEXT,
			sentiment TEXT,
			cluster_id INT,
			similarity DOUBLE PRECISION,
			clustering_error TEXT,
			reply TEXT,
			embedding vector(1536)
		);`,
		`CREATE TABLE IF NOT EXISTS cluster_labels (
			run_id UUID REFERENCES runs(id) ON DELETE CASCADE,
			cluster_id INT,
			label TEXT,
			suggestions TEXT[],
			PRIMARY KEY (run_id, cluster_id)
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			run_id UUID PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
			body JSONB
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// Create IVFFlat index for fast similarity search
	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS feedback_items_embedding_idx
		ON feedback_items USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, source string) (Run, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs(id, source, status) VALUES($1,$2,$3)`,
		id, source, StatusPending)
	if err != nil {
		return Run{}, err
	}
	return Run{ID: id, Source: source, Status: StatusPending, CreatedAt: time.Now()}, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	var run Run
	row := s.db.QueryRowContext(ctx, `SELECT id, source, status, created_at FROM runs WHERE id=$1`, id)
	if err := row.Scan(&run.ID, &run.Source, &run.Status, &run.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, err
	}
	return run, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *PostgresStore) SaveItems(ctx context.Context, runID uuid.UUID, items []Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		var vec any
		if len(it.Embedding) > 0 {
			vec = vectorToString(it.Embedding)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO feedback_items(id, run_id, ord, text, sentiment, cluster_id, similarity, clustering_error, reply, embedding)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10::vector)`,
			it.ID, runID, it.Index, it.Text, it.Sentiment, it.ClusterID, it.Similarity, it.ClusteringError, it.Reply, vec)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListItems(ctx context.Context, runID uuid.UUID) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ord, text, sentiment, cluster_id, similarity, clustering_error, reply
		FROM feedback_items WHERE run_id=$1 ORDER BY ord`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Index, &it.Text, &it.Sentiment, &it.ClusterID, &it.Similarity, &it.ClusteringError, &it.Reply); err != nil {
			return nil, err
		}
		it.RunID = runID
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveLabels(ctx context.Context, runID uuid.UUID, labels []ClusterLabel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, l := range labels {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cluster_labels(run_id, cluster_id, label, suggestions)
			VALUES($1,$2,$3,$4)
			ON CONFLICT (run_id, cluster_id) DO UPDATE SET label=excluded.label, suggestions=excluded.suggestions`,
			runID, l.ClusterID, l.Label, pq.Array(pqStringArray(l.Suggestions)))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListLabels(ctx context.Context, runID uuid.UUID) ([]ClusterLabel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cluster_id, label, COALESCE(suggestions, ARRAY[]::TEXT[])
		FROM cluster_labels WHERE run_id=$1 ORDER BY cluster_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ClusterLabel
	for rows.Next() {
		var l ClusterLabel
		if err := rows.Scan(&l.ClusterID, &l.Label, pq.Array(&l.Suggestions)); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveReport(ctx context.Context, runID uuid.UUID, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports(run_id, body)
		VALUES($1,$2)
		ON CONFLICT (run_id) DO UPDATE SET body=excluded.body`,
		runID, body)
	return err
}

func (s *PostgresStore) GetReport(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	var body []byte
	row := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE run_id=$1`, runID)
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report for run %s: %w", runID, err)
	}
	return body, nil
}

func (s *PostgresStore) SimilarItems(ctx context.Context, runID uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error) {
	// Convert query vector to pgvector format
	queryVec := vectorToString(vector)

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id,
			ord,
			text,
			sentiment,
			cluster_id,
			clustering_error,
			reply,
			1 - (embedding <=> $1::vector) as similarity
		FROM feedback_items
		WHERE run_id = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $3
	`, queryVec, runID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			it    Item
			score float32
		)
		if err := rows.Scan(&it.ID, &it.Index, &it.Text, &it.Sentiment, &it.ClusterID, &it.ClusteringError, &it.Reply, &score); err != nil {
			return nil, err
		}
		it.RunID = runID
		results = append(results, SearchResult{Item: it, Score: score})
	}

	return results, rows.Err()
}

func pqStringArray(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return items
}

// vectorToString converts a Vector ([]float32) to pgvector array format.
// Format: "[0.1,0.2,0.3,...]"
func vectorToString(v embeddings.Vector) string {
	if len(v) == 0 {
		return "[]"
	}
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
