// Package pipeline runs the feedback analysis batch: classify, embed,
// cluster, label, suggest, reply. Processing is strictly sequential, one
// item or cluster at a time; throughput is bounded by the remote model
// service, not by anything here.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"feedback-insights/internal/cluster"
	"feedback-insights/internal/embeddings"
	"feedback-insights/internal/llm"
	"feedback-insights/internal/report"
)

const defaultSampleSize = 5

// fallbackReply is used when the model fails to draft one.
const fallbackReply = "Thank you for your feedback. We have recorded it and will follow up."

// Pipeline analyzes batches of feedback texts. The LLM and embedder are
// injected capabilities, never ambient singletons.
type Pipeline struct {
	log        *slog.Logger
	llm        llm.Client
	embedder   embeddings.Embedder
	clusterer  *cluster.Clusterer
	sampleSize int
}

// Options configures a Pipeline.
type Options struct {
	Threshold  float64
	SampleSize int
}

// New builds a Pipeline. Threshold must be in (0,1].
func New(log *slog.Logger, client llm.Client, embedder embeddings.Embedder, opts Options) (*Pipeline, error) {
	c, err := cluster.New(opts.Threshold)
	if err != nil {
		return nil, err
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = defaultSampleSize
	}
	return &Pipeline{
		log:        log,
		llm:        client,
		embedder:   embedder,
		clusterer:  c,
		sampleSize: opts.SampleSize,
	}, nil
}

// Generate asks the model for count synthetic feedback texts.
func (p *Pipeline) Generate(ctx context.Context, count int) ([]string, error) {
	texts, err := p.llm.GenerateFeedback(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("generate feedback: %w", err)
	}
	p.log.Info("generated feedback batch", "requested", count, "received", len(texts))
	return texts, nil
}

// Result pairs the rendered report with the raw embeddings by item id.
// Embeddings stay out of the report itself (the JSON blob would balloon)
// but callers that persist items need them.
type Result struct {
	Report     report.Report
	Embeddings map[string]embeddings.Vector
}

// Run analyzes the given texts and returns the full report.
//
// Remote-call failures degrade per item or per cluster: classification
// falls back to neutral, a failed embedding routes the item to the
// no-embedding singleton path, a failed label becomes "Cluster {id}", a
// failed suggestion list is skipped, a failed reply becomes a generic
// one. Only a clustering error (mismatched vector dimensions) fails the
// whole run.
func (p *Pipeline) Run(ctx context.Context, texts []string) (Result, error) {
	items := make([]cluster.Item, 0, len(texts))
	sentiments := make(map[string]llm.Sentiment, len(texts))

	for _, text := range texts {
		id := uuid.NewString()

		sentiment, err := p.llm.ClassifySentiment(ctx, text)
		if err != nil {
			p.log.Warn("sentiment classification failed, defaulting to neutral", "item", id, "err", err)
			sentiment = llm.SentimentNeutral
		}
		sentiments[id] = sentiment

		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			p.log.Warn("embedding failed, item will form a singleton", "item", id, "err", err)
			vec = nil
		}
		items = append(items, cluster.Item{ID: id, Text: text, Embedding: vec})
	}

	assigned, err := p.clusterer.Assign(items)
	if err != nil {
		return Result{}, fmt.Errorf("cluster assignment: %w", err)
	}

	members := cluster.Members(assigned)
	clusters := make([]report.Cluster, 0, len(members))
	for id := 1; id <= len(members); id++ {
		sample := cluster.SampleTexts(assigned, id, p.sampleSize)

		label, err := p.llm.LabelCluster(ctx, sample)
		if err != nil || label == "" {
			p.log.Warn("cluster labeling failed, using default", "cluster", id, "err", err)
			label = fmt.Sprintf("Cluster %d", id)
		}

		suggestions, err := p.llm.SuggestFeatures(ctx, sample)
		if err != nil {
			p.log.Warn("feature suggestion failed, skipping cluster", "cluster", id, "err", err)
			suggestions = nil
		}

		clusters = append(clusters, report.Cluster{
			ID:          id,
			Label:       label,
			Size:        len(members[id]),
			Suggestions: suggestions,
		})
	}

	counts := make(map[string]int)
	vectors := make(map[string]embeddings.Vector, len(assigned))
	reportItems := make([]report.Item, 0, len(assigned))
	for _, it := range assigned {
		if len(it.Embedding) > 0 {
			vectors[it.ID] = it.Embedding
		}
		sentiment := sentiments[it.ID]
		counts[string(sentiment)]++

		reply, err := p.llm.DraftReply(ctx, it.Text, sentiment)
		if err != nil || reply == "" {
			p.log.Warn("reply drafting failed, using generic reply", "item", it.ID, "err", err)
			reply = fallbackReply
		}

		reportItems = append(reportItems, report.Item{
			ID:              it.ID,
			Text:            it.Text,
			Sentiment:       string(sentiment),
			ClusterID:       it.ClusterID,
			Similarity:      it.Similarity,
			ClusteringError: it.Error,
			Reply:           reply,
		})
	}

	return Result{
		Report: report.Report{
			GeneratedAt:     time.Now().UTC(),
			Threshold:       p.clusterer.Threshold(),
			SentimentCounts: counts,
			Clusters:        clusters,
			Items:           reportItems,
		},
		Embeddings: vectors,
	}, nil
}
