package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"feedback-insights/internal/app"
	"feedback-insights/internal/httputil"
	"feedback-insights/internal/pipeline"
	"feedback-insights/internal/queue"
	"feedback-insights/internal/store"
)

type runTaskPayload struct {
	RunID string   `json:"run_id"`
	Count int      `json:"count,omitempty"`
	Texts []string `json:"texts,omitempty"`
}

func main() {
	deps, err := app.BuildWorker()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("insights worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeRun, func(ctx context.Context, task queue.Task) error {
			var payload runTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleRun(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.Port, "insights")
	})

	// Wait for either to fail
	if err := g.Wait(); err != nil {
		deps.Log.Error("insights service stopped", "err", err)
	}
}

func handleRun(ctx context.Context, deps app.WorkerDeps, payload runTaskPayload) error {
	runID, err := uuid.Parse(payload.RunID)
	if err != nil {
		return err
	}
	log := deps.Log.With("run_id", runID)

	if err := deps.Store.UpdateRunStatus(ctx, runID, store.StatusProcessing); err != nil {
		return err
	}

	p, err := pipeline.New(log, deps.LLM, deps.Embedder, pipeline.Options{
		Threshold:  deps.Config.SimilarityThreshold,
		SampleSize: deps.Config.ClusterSampleSize,
	})
	if err != nil {
		return markFailed(ctx, deps, runID, err)
	}

	texts := payload.Texts
	if len(texts) == 0 {
		count := payload.Count
		if count <= 0 {
			count = deps.Config.FeedbackCount
		}
		texts, err = p.Generate(ctx, count)
		if err != nil {
			return markFailed(ctx, deps, runID, err)
		}
	}

	res, err := p.Run(ctx, texts)
	if err != nil {
		return markFailed(ctx, deps, runID, err)
	}

	if err := persistReport(ctx, deps, runID, res); err != nil {
		return markFailed(ctx, deps, runID, err)
	}

	// A fresh report supersedes anything cached for this run.
	if err := deps.Cache.InvalidateRun(ctx, runID.String()); err != nil {
		log.Warn("failed to invalidate cached report", "err", err)
	}

	log.Info("run completed", "items", len(res.Report.Items), "clusters", len(res.Report.Clusters))
	return deps.Store.UpdateRunStatus(ctx, runID, store.StatusReady)
}

func persistReport(ctx context.Context, deps app.WorkerDeps, runID uuid.UUID, res pipeline.Result) error {
	rep := res.Report
	items := make([]store.Item, len(rep.Items))
	for i, it := range rep.Items {
		id, err := uuid.Parse(it.ID)
		if err != nil {
			id = uuid.New()
		}
		items[i] = store.Item{
			ID:              id,
			RunID:           runID,
			Index:           i,
			Text:            it.Text,
			Sentiment:       it.Sentiment,
			ClusterID:       it.ClusterID,
			Similarity:      it.Similarity,
			ClusteringError: it.ClusteringError,
			Reply:           it.Reply,
			Embedding:       res.Embeddings[it.ID],
		}
	}
	if err := deps.Store.SaveItems(ctx, runID, items); err != nil {
		return fmt.Errorf("save items: %w", err)
	}

	labels := make([]store.ClusterLabel, len(rep.Clusters))
	for i, c := range rep.Clusters {
		labels[i] = store.ClusterLabel{
			ClusterID:   c.ID,
			Label:       c.Label,
			Suggestions: c.Suggestions,
		}
	}
	if err := deps.Store.SaveLabels(ctx, runID, labels); err != nil {
		return fmt.Errorf("save labels: %w", err)
	}

	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := deps.Store.SaveReport(ctx, runID, body); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func markFailed(ctx context.Context, deps app.WorkerDeps, runID uuid.UUID, cause error) error {
	if err := deps.Store.UpdateRunStatus(ctx, runID, store.StatusFailed); err != nil {
		deps.Log.Error("failed to mark run failed", "run_id", runID, "err", err)
	}
	return cause
}
