package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"feedback-insights/internal/app"
	"feedback-insights/internal/httputil"
	"feedback-insights/internal/ingest"
	"feedback-insights/internal/queue"
	"feedback-insights/internal/store"
)

type runTaskPayload struct {
	RunID string   `json:"run_id"`
	Count int      `json:"count,omitempty"`
	Texts []string `json:"texts,omitempty"`
}

type createRunRequest struct {
	Count int `json:"count" validate:"omitempty,min=1,max=100"`
}

type searchRequest struct {
	Text string `json:"text" validate:"required,min=3,max=2000"`
	TopK int    `json:"top_k" validate:"omitempty,min=1,max=20"`
}

func main() {
	deps, err := app.BuildGateway()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/runs", createRunHandler(deps))
	r.Post("/api/runs/import", importRunHandler(deps))
	r.Get("/api/runs/{id}", runStatusHandler(deps))
	r.Get("/api/runs/{id}/report", reportHandler(deps))
	r.Post("/api/runs/{id}/search", searchHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func createRunHandler(deps app.GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if req.Count == 0 {
			req.Count = deps.Config.FeedbackCount
		}

		ctx := r.Context()
		run, err := deps.Store.CreateRun(ctx, "synthetic")
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist run", err, http.StatusInternalServerError)
			return
		}

		if err := enqueueRun(ctx, deps, runTaskPayload{RunID: run.ID.String(), Count: req.Count}); err != nil {
			failRun(deps, ctx, w, "failed to enqueue run; please retry", err, run.ID)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"run_id": run.ID.String(),
			"status": run.Status,
		})
	}
}

func importRunHandler(deps app.GatewayDeps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		if !allowedUpload(header.Filename, header.Header.Get("Content-Type")) {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text := extractText(header.Filename, content, deps)
		texts := ingest.SplitEntries(text, ingest.Options{})
		if len(texts) == 0 {
			httputil.Fail(deps.Log, w, "no feedback entries found in file", nil, http.StatusBadRequest)
			return
		}

		run, err := deps.Store.CreateRun(ctx, "import")
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist run", err, http.StatusInternalServerError)
			return
		}

		if err := enqueueRun(ctx, deps, runTaskPayload{RunID: run.ID.String(), Texts: texts}); err != nil {
			failRun(deps, ctx, w, "failed to enqueue run; please retry", err, run.ID)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"run_id": run.ID.String(),
			"status": run.Status,
			"items":  len(texts),
		})
	}
}

func runStatusHandler(deps app.GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, ok := parseRunID(deps, w, r)
		if !ok {
			return
		}
		run, err := deps.Store.GetRun(r.Context(), runID)
		if err != nil {
			httputil.Fail(deps.Log, w, "run not found", err, http.StatusNotFound)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"run_id":     run.ID.String(),
			"source":     run.Source,
			"status":     run.Status,
			"created_at": run.CreatedAt,
		})
	}
}

func reportHandler(deps app.GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, ok := parseRunID(deps, w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		// Check cache first
		if cached, err := deps.Cache.GetReport(ctx, runID.String()); err == nil && cached != nil {
			deps.Log.Info("report cache hit", "run_id", runID)
			writeReportBody(w, cached)
			return
		}

		body, err := deps.Store.GetReport(ctx, runID)
		if err != nil {
			httputil.Fail(deps.Log, w, "report not ready", err, http.StatusNotFound)
			return
		}

		cacheTTL := time.Duration(deps.Config.CacheTTL) * time.Second
		if err := deps.Cache.SetReport(ctx, runID.String(), body, cacheTTL); err != nil {
			// Log cache write failure but don't fail the request
			deps.Log.Warn("failed to cache report", "err", err)
		}
		writeReportBody(w, body)
	}
}

func searchHandler(deps app.GatewayDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, ok := parseRunID(deps, w, r)
		if !ok {
			return
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if req.TopK == 0 {
			req.TopK = 5
		}

		ctx := r.Context()
		vec, err := deps.Embedder.Embed(ctx, req.Text)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to embed query", err, http.StatusInternalServerError)
			return
		}
		results, err := deps.Store.SimilarItems(ctx, runID, vec, req.TopK)
		if err != nil {
			httputil.Fail(deps.Log, w, "search failed", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"results": buildMatches(results),
		})
	}
}

type match struct {
	ItemID    string  `json:"item_id"`
	ClusterID int     `json:"cluster_id"`
	Sentiment string  `json:"sentiment"`
	Score     float32 `json:"score"`
	Preview   string  `json:"preview"` // Truncated text preview
}

func buildMatches(results []store.SearchResult) []match {
	matches := make([]match, len(results))
	for i, res := range results {
		matches[i] = match{
			ItemID:    res.Item.ID.String(),
			ClusterID: res.Item.ClusterID,
			Sentiment: res.Item.Sentiment,
			Score:     res.Score,
			Preview:   truncate(res.Item.Text, 150),
		}
	}
	return matches
}

func enqueueRun(ctx context.Context, deps app.GatewayDeps, payload runTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	task := queue.Task{Type: queue.TaskTypeRun, Payload: body}
	return queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond)
}

// failRun is gateway-specific error handling that marks the run failed.
func failRun(deps app.GatewayDeps, ctx context.Context, w http.ResponseWriter, message string, err error, runID uuid.UUID) {
	log := deps.Log.With("run_id", runID)
	if upErr := deps.Store.UpdateRunStatus(ctx, runID, store.StatusFailed); upErr != nil {
		log.Error("failed to mark run failed", "err", upErr)
	}
	httputil.Fail(log, w, message, err, http.StatusInternalServerError)
}

func parseRunID(deps app.GatewayDeps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	runID, err := uuid.Parse(idStr)
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid run id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return runID, true
}

func writeReportBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func allowedUpload(filename, contentType string) bool {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	switch contentType {
	case "text/plain", "application/pdf":
		return true
	}
	// Many clients (curl -F, Go's multipart writer) send
	// application/octet-stream or nothing; fall back to the extension.
	if contentType == "" || contentType == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".txt", ".pdf":
			return true
		}
	}
	return false
}

// extractText extracts text from uploaded files, with PDF support.
func extractText(filename string, content []byte, deps app.GatewayDeps) string {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		text, err := extractPDF(content)
		if err != nil {
			deps.Log.Warn("pdf extraction failed, using raw bytes", "err", err, "filename", filename)
			return string(content)
		}
		return text
	}
	// Treat other files as plain text
	return string(content)
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

// truncate limits text to maxLen runes, cutting at a word boundary so
// multi-byte characters are never split.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	cut := string(runes[:maxLen])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return cut[:idx] + "..."
	}
	return cut + "..."
}
