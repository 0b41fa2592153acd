// Package report holds the pipeline's output model and its two renderings:
// an indented JSON blob on disk and a human-readable console summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Item is one analyzed feedback entry.
type Item struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	Sentiment       string  `json:"sentiment"`
	ClusterID       int     `json:"cluster_id"`
	Similarity      float64 `json:"similarity_score,omitempty"`
	ClusteringError string  `json:"clustering_error,omitempty"`
	Reply           string  `json:"reply,omitempty"`
}

// Cluster is one group of related feedback with its derived label and
// feature suggestions.
type Cluster struct {
	ID          int      `json:"id"`
	Label       string   `json:"label"`
	Size        int      `json:"size"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Report is the full result of one pipeline run.
type Report struct {
	GeneratedAt     time.Time      `json:"generated_at"`
	Threshold       float64        `json:"similarity_threshold"`
	SentimentCounts map[string]int `json:"sentiment_counts"`
	Clusters        []Cluster      `json:"clusters"`
	Items           []Item         `json:"items"`
}

// WriteFile writes the report as indented JSON to path.
func (r Report) WriteFile(path string) error {
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Render prints a console summary of the report.
func Render(w io.Writer, r Report) {
	fmt.Fprintf(w, "Feedback report: %d items, %d clusters (threshold %.2f)\n",
		len(r.Items), len(r.Clusters), r.Threshold)

	fmt.Fprintln(w, "\nSentiment:")
	for _, s := range []string{"positive", "negative", "neutral"} {
		if n := r.SentimentCounts[s]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", s, n)
		}
	}

	for _, c := range r.Clusters {
		fmt.Fprintf(w, "\n[%d] %s (%d items)\n", c.ID, c.Label, c.Size)
		for _, it := range r.Items {
			if it.ClusterID != c.ID {
				continue
			}
			fmt.Fprintf(w, "  - (%s) %s\n", it.Sentiment, truncate(it.Text, 80))
			if it.ClusteringError != "" {
				fmt.Fprintf(w, "    ! %s\n", it.ClusteringError)
			}
		}
		for _, s := range c.Suggestions {
			fmt.Fprintf(w, "  > suggestion: %s\n", s)
		}
	}
}

// truncate limits text to maxLen runes, cutting at a word boundary so
// multi-byte characters are never split.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	for i := maxLen; i > 0; i-- {
		if runes[i-1] == ' ' {
			return string(runes[:i-1]) + "..."
		}
	}
	return string(runes[:maxLen]) + "..."
}
