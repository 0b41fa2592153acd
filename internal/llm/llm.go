package llm

import "context"

// Sentiment is the coarse category assigned to a feedback item.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Client is a minimal LLM interface to allow pluggable providers.
//
// The model output for every operation is free text parsed best-effort;
// callers substitute safe fallbacks (neutral sentiment, "Cluster {id}"
// labels, a generic reply) rather than aborting a run.
type Client interface {
	// GenerateFeedback produces count synthetic user feedback texts.
	GenerateFeedback(ctx context.Context, count int) ([]string, error)
	// ClassifySentiment categorizes a single feedback text.
	ClassifySentiment(ctx context.Context, text string) (Sentiment, error)
	// LabelCluster returns a short descriptive label for a sample of
	// texts drawn from one cluster.
	LabelCluster(ctx context.Context, texts []string) (string, error)
	// SuggestFeatures derives candidate product-feature suggestions
	// from a sample of related feedback texts.
	SuggestFeatures(ctx context.Context, texts []string) ([]string, error)
	// DraftReply writes a reply to one feedback item, adjusted for its
	// sentiment.
	DraftReply(ctx context.Context, text string, sentiment Sentiment) (string, error)
}
