package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"feedback-insights/internal/app"
	"feedback-insights/internal/pipeline"
	"feedback-insights/internal/report"
)

func main() {
	deps, err := app.BuildPipeline()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	if err := run(context.Background(), deps, os.Stdin, os.Stdout); err != nil {
		deps.Log.Error("pipeline run failed", "err", err)
		os.Exit(1)
	}
}

// run executes the pipeline once, then offers to regenerate with a fresh
// batch until the operator declines.
func run(ctx context.Context, deps app.PipelineDeps, in io.Reader, out io.Writer) error {
	p, err := pipeline.New(deps.Log, deps.LLM, deps.Embedder, pipeline.Options{
		Threshold:  deps.Config.SimilarityThreshold,
		SampleSize: deps.Config.ClusterSampleSize,
	})
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	for {
		if err := runOnce(ctx, deps, p, out); err != nil {
			return err
		}
		fmt.Fprint(out, "\nGenerate a new batch? [y/N]: ")
		if !askYes(reader) {
			return nil
		}
	}
}

func runOnce(ctx context.Context, deps app.PipelineDeps, p *pipeline.Pipeline, out io.Writer) error {
	texts, err := p.Generate(ctx, deps.Config.FeedbackCount)
	if err != nil {
		return fmt.Errorf("generate feedback: %w", err)
	}

	res, err := p.Run(ctx, texts)
	if err != nil {
		return err
	}

	report.Render(out, res.Report)
	if err := res.Report.WriteFile(deps.Config.ReportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(out, "\nReport written to %s\n", deps.Config.ReportPath)
	return nil
}

// askYes reads a single line and treats anything but y/yes as no.
func askYes(r *bufio.Reader) bool {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
