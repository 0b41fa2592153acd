package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func sampleReport() Report {
	return Report{
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Threshold:   0.75,
		SentimentCounts: map[string]int{
			"positive": 1,
			"negative": 1,
		},
		Clusters: []Cluster{
			{ID: 1, Label: "Login problems", Size: 1, Suggestions: []string{"Add SSO support"}},
			{ID: 2, Label: "Cluster 2", Size: 1},
		},
		Items: []Item{
			{ID: "a", Text: "Cannot log in after the update", Sentiment: "negative", ClusterID: 1, Similarity: 1.0, Reply: "Sorry about that."},
			{ID: "b", Text: "Great app!", Sentiment: "positive", ClusterID: 2, ClusteringError: "No embedding available"},
		},
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := sampleReport().WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(decoded.Items) != 2 || len(decoded.Clusters) != 2 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
	if decoded.Items[1].ClusteringError != "No embedding available" {
		t.Errorf("clustering error not preserved: %+v", decoded.Items[1])
	}
	// Founder score survives; absent scores stay absent.
	if decoded.Items[0].Similarity != 1.0 {
		t.Errorf("similarity not preserved: %+v", decoded.Items[0])
	}
	if strings.Contains(string(body), `"similarity_score": 0`) {
		t.Error("zero similarity should be omitted from JSON")
	}
}

func TestRender(t *testing.T) {
	var buf strings.Builder
	Render(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"2 items, 2 clusters",
		"Login problems",
		"Add SSO support",
		"No embedding available",
		"positive 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 80); got != "short" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("word ", 30)
	got := truncate(long, 20)
	if len(got) > 24 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate produced %q", got)
	}
	multibyte := strings.Repeat("\u00e9", 40)
	got = truncate(multibyte, 20)
	if !utf8.ValidString(got) {
		t.Errorf("truncate split a multi-byte rune: %q", got)
	}
	if got != strings.Repeat("\u00e9", 20)+"..." {
		t.Errorf("expected 20-rune cut, got %q", got)
	}
}
