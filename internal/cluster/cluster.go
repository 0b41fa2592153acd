// Package cluster groups feedback items by embedding similarity using
// greedy single-link clustering: a single pass over the input, where each
// item joins the first existing cluster containing any member within the
// similarity threshold, or founds a new one.
//
// An item joins the first qualifying cluster scanned in creation order,
// not the most similar one, so cluster membership and cluster count depend
// on input order. Callers that need stable output must feed items in a
// stable order.
package cluster

import (
	"fmt"

	"feedback-insights/internal/embeddings"
)

// NoEmbeddingError marks items that could not be clustered because the
// upstream embedder produced no vector for them.
const NoEmbeddingError = "No embedding available"

// Item is a single feedback entry flowing through the clusterer.
// ClusterID, Similarity and Error are output fields; any values present on
// input are ignored, so running Assign on its own output reproduces the
// same assignments.
type Item struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding embeddings.Vector `json:"embedding,omitempty"`

	// Assigned by the clusterer. Cluster ids start at 1 and grow in
	// creation order. Similarity is 1.0 for the item that founded a
	// cluster and the matched similarity for items that joined one.
	ClusterID  int     `json:"cluster_id,omitempty"`
	Similarity float64 `json:"similarity_score,omitempty"`
	Error      string  `json:"clustering_error,omitempty"`
}

// Clusterer assigns cluster ids to items. Safe to reuse across batches;
// each Assign call starts from an empty cluster set.
type Clusterer struct {
	threshold float64
}

// New returns a Clusterer with the given similarity threshold.
// The threshold must be in (0, 1]; a similarity exactly equal to the
// threshold counts as a match.
func New(threshold float64) (*Clusterer, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in (0,1], got %g", threshold)
	}
	return &Clusterer{threshold: threshold}, nil
}

// Threshold reports the configured similarity threshold.
func (c *Clusterer) Threshold() float64 { return c.threshold }

// Assign tags every item with a cluster id in a single greedy pass.
//
// Items carrying an embedding are processed first, in input order. Each is
// compared against the members of existing clusters (clusters in ascending
// id order, members in assignment order) and joins the first cluster with
// any member at cosine similarity >= threshold; both scans stop at the
// first hit. If none qualifies the item founds a new cluster with
// similarity 1.0. Items without an embedding are appended afterwards, each
// in its own fresh singleton cluster tagged with NoEmbeddingError.
//
// The only failure mode is comparing vectors of different lengths, which
// returns an error wrapping embeddings.ErrDimensionMismatch.
func (c *Clusterer) Assign(items []Item) ([]Item, error) {
	withEmbedding := make([]Item, 0, len(items))
	withoutEmbedding := make([]Item, 0)
	for _, it := range items {
		// Prior assignments never carry over.
		it.ClusterID = 0
		it.Similarity = 0
		it.Error = ""
		if len(it.Embedding) == 0 {
			withoutEmbedding = append(withoutEmbedding, it)
		} else {
			withEmbedding = append(withEmbedding, it)
		}
	}

	// members[i] holds the items assigned to cluster i+1, in assignment
	// order. Keeping the lists explicit avoids re-filtering the whole
	// output on every lookup without changing first-fit semantics.
	var members [][]Item
	out := make([]Item, 0, len(items))

	for _, it := range withEmbedding {
		joined := false
	clusters:
		for ci := range members {
			for _, m := range members[ci] {
				sim, err := embeddings.CosineSimilarity(it.Embedding, m.Embedding)
				if err != nil {
					return nil, fmt.Errorf("comparing item %q with cluster %d: %w", it.ID, ci+1, err)
				}
				if sim >= c.threshold {
					it.ClusterID = ci + 1
					it.Similarity = sim
					members[ci] = append(members[ci], it)
					joined = true
					break clusters
				}
			}
		}
		if !joined {
			it.ClusterID = len(members) + 1
			it.Similarity = 1.0
			members = append(members, []Item{it})
		}
		out = append(out, it)
	}

	for _, it := range withoutEmbedding {
		it.ClusterID = len(members) + 1
		it.Error = NoEmbeddingError
		members = append(members, []Item{it})
		out = append(out, it)
	}

	return out, nil
}

// Members derives cluster membership from assigned items, preserving
// assignment order within each cluster.
func Members(items []Item) map[int][]Item {
	byCluster := make(map[int][]Item)
	for _, it := range items {
		byCluster[it.ClusterID] = append(byCluster[it.ClusterID], it)
	}
	return byCluster
}

// SampleTexts returns up to n texts from the front of the cluster's member
// order, the sample handed to the labeling collaborator.
func SampleTexts(items []Item, clusterID, n int) []string {
	var texts []string
	for _, it := range items {
		if it.ClusterID != clusterID {
			continue
		}
		texts = append(texts, it.Text)
		if len(texts) == n {
			break
		}
	}
	return texts
}
