package cluster

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"feedback-insights/internal/embeddings"
)

// unit returns a 2D unit vector at the given angle in degrees. Cosine
// similarity between two of these is the cosine of the angle between them,
// which keeps the geometry of each scenario easy to read.
func unit(degrees float64) embeddings.Vector {
	rad := degrees * math.Pi / 180
	return embeddings.Vector{float32(math.Cos(rad)), float32(math.Sin(rad))}
}

func ids(items []Item) map[string]int {
	m := make(map[string]int, len(items))
	for _, it := range items {
		m[it.ID] = it.ClusterID
	}
	return m
}

func TestNewThresholdValidation(t *testing.T) {
	for _, bad := range []float64{0, -0.1, 1.0001, 2} {
		if _, err := New(bad); err == nil {
			t.Errorf("New(%g): expected error", bad)
		}
	}
	for _, ok := range []float64{0.001, 0.75, 1} {
		if _, err := New(ok); err != nil {
			t.Errorf("New(%g): unexpected error %v", ok, err)
		}
	}
}

func TestAssignSingleLinkChaining(t *testing.T) {
	// sim(A,B) = cos 40 ~= 0.766, sim(B,C) = cos 40, sim(A,C) = cos 80 ~= 0.17.
	// With t = 0.7 a founder-only comparison would split C off; single-link
	// chains all three through B.
	c, err := New(0.7)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Assign([]Item{
		{ID: "a", Embedding: unit(0)},
		{ID: "b", Embedding: unit(40)},
		{ID: "c", Embedding: unit(80)},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := ids(out)
	if got["a"] != 1 || got["b"] != 1 || got["c"] != 1 {
		t.Errorf("expected all items in cluster 1, got %v", got)
	}
}

func TestAssignOrderDependence(t *testing.T) {
	// Same vectors as the chaining test, processed A, C, B. A and C are
	// too far apart to share a cluster, so the batch now produces two
	// clusters. Reordering input legitimately changes the result.
	c, err := New(0.7)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Assign([]Item{
		{ID: "a", Embedding: unit(0)},
		{ID: "c", Embedding: unit(80)},
		{ID: "b", Embedding: unit(40)},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := ids(out)
	if got["a"] != 1 || got["c"] != 2 {
		t.Fatalf("expected a=1 c=2, got %v", got)
	}
	if got["b"] != 1 {
		t.Errorf("expected b to join cluster 1, got %d", got["b"])
	}
}

func TestAssignFirstFitNotBestFit(t *testing.T) {
	// B at 45 degrees is closer to C (cos 35 ~= 0.82) than to A
	// (cos 45 ~= 0.707), but cluster 1 is scanned first and qualifies,
	// so B joins it. Best-fit would pick cluster 2 instead.
	c, err := New(0.7)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Assign([]Item{
		{ID: "a", Embedding: unit(0)},
		{ID: "c", Embedding: unit(80)},
		{ID: "b", Embedding: unit(45)},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := ids(out)
	if got["b"] != 1 {
		t.Errorf("first-fit should place b in cluster 1, got %d", got["b"])
	}
}

func TestAssignThresholdBoundary(t *testing.T) {
	// sim((1,0),(0.6,0.8)) is exactly 0.6; >= means it matches at t=0.6.
	c, err := New(0.6)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Assign([]Item{
		{ID: "a", Embedding: embeddings.Vector{1, 0}},
		{ID: "b", Embedding: embeddings.Vector{0.6, 0.8}},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := ids(out)
	if got["b"] != 1 {
		t.Errorf("similarity equal to threshold should match, got cluster %d", got["b"])
	}
}

func TestAssignFounderSimilarity(t *testing.T) {
	c, err := New(0.9)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Assign([]Item{
		{ID: "a", Embedding: unit(0)},
		{ID: "b", Embedding: unit(5)},
		{ID: "c", Embedding: unit(90)},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range out {
		switch it.ID {
		case "a", "c":
			if it.Similarity != 1.0 {
				t.Errorf("founder %s: similarity = %f, want exactly 1.0", it.ID, it.Similarity)
			}
		case "b":
			if it.Similarity < 0.9 || it.Similarity >= 1.0 {
				t.Errorf("joiner b: similarity = %f, want matched value in [0.9, 1)", it.Similarity)
			}
		}
	}
}

func TestAssignNoEmbeddings(t *testing.T) {
	c, err := New(0.75)
	if err != nil {
		t.Fatal(err)
	}
	items := []Item{
		{ID: "a", Text: "first"},
		{ID: "b", Text: "second"},
		{ID: "c", Text: "third"},
	}
	out, err := c.Assign(items)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 items, got %d", len(out))
	}
	for i, it := range out {
		if it.ClusterID != i+1 {
			t.Errorf("item %s: cluster %d, want %d", it.ID, it.ClusterID, i+1)
		}
		if it.Error != NoEmbeddingError {
			t.Errorf("item %s: error %q, want %q", it.ID, it.Error, NoEmbeddingError)
		}
		if it.Similarity != 0 {
			t.Errorf("item %s: similarity %f, want none", it.ID, it.Similarity)
		}
	}
}

func TestAssignMixedEmbeddingsOrdering(t *testing.T) {
	// Embedding-less items are routed to the end, each in a fresh
	// singleton cluster, after every embedded item has been assigned.
	c, err := New(0.75)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Assign([]Item{
		{ID: "bad1"},
		{ID: "a", Embedding: unit(0)},
		{ID: "bad2"},
		{ID: "b", Embedding: unit(5)},
	})
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []string{"a", "b", "bad1", "bad2"}
	for i, want := range wantOrder {
		if out[i].ID != want {
			t.Fatalf("output order = %v, want %v", out, wantOrder)
		}
	}
	got := ids(out)
	if got["a"] != 1 || got["b"] != 1 {
		t.Errorf("expected a,b in cluster 1, got %v", got)
	}
	if got["bad1"] != 2 || got["bad2"] != 3 {
		t.Errorf("expected singletons 2 and 3 for embedding-less items, got %v", got)
	}
}

func TestAssignIdempotent(t *testing.T) {
	c, err := New(0.7)
	if err != nil {
		t.Fatal(err)
	}
	items := []Item{
		{ID: "a", Embedding: unit(0)},
		{ID: "b", Embedding: unit(40)},
		{ID: "c", Embedding: unit(80)},
		{ID: "d"},
	}
	first, err := c.Assign(items)
	if err != nil {
		t.Fatal(err)
	}
	// Re-run on the clusterer's own output; stale assignments are ignored.
	second, err := c.Assign(first)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].ClusterID != second[i].ClusterID {
			t.Errorf("rerun diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].Similarity != second[i].Similarity {
			t.Errorf("rerun similarity diverged for %s", first[i].ID)
		}
	}
}

func TestAssignDimensionMismatch(t *testing.T) {
	c, err := New(0.75)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Assign([]Item{
		{ID: "a", Embedding: embeddings.Vector{1, 0}},
		{ID: "b", Embedding: embeddings.Vector{1, 0, 0}},
	})
	if !errors.Is(err, embeddings.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestAssignEmptyInput(t *testing.T) {
	c, err := New(0.75)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Assign(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output, got %d items", len(out))
	}
}

func TestMembersAndSampleTexts(t *testing.T) {
	c, err := New(0.7)
	if err != nil {
		t.Fatal(err)
	}
	var items []Item
	for i := 0; i < 8; i++ {
		items = append(items, Item{
			ID:        fmt.Sprintf("item-%d", i),
			Text:      fmt.Sprintf("text %d", i),
			Embedding: unit(float64(i)), // all within a few degrees, one cluster
		})
	}
	out, err := c.Assign(items)
	if err != nil {
		t.Fatal(err)
	}
	members := Members(out)
	if len(members) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(members))
	}
	if len(members[1]) != 8 {
		t.Fatalf("expected 8 members in cluster 1, got %d", len(members[1]))
	}

	sample := SampleTexts(out, 1, 5)
	if len(sample) != 5 {
		t.Fatalf("expected sample of 5, got %d", len(sample))
	}
	// Sample comes from the front of the member order.
	for i, txt := range sample {
		want := fmt.Sprintf("text %d", i)
		if txt != want {
			t.Errorf("sample[%d] = %q, want %q", i, txt, want)
		}
	}
}
