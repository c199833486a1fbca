package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"fairFin/business/artifact"
	"fairFin/business/review"
	"fairFin/business/scoring"
	"fairFin/internal/repository"
	"fairFin/pkg/config"
	"fairFin/pkg/logger"

	"github.com/urfave/cli/v3"
)

func bundleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "record",
			Usage:    "Path to a JSON object with one applicant",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Read artifacts from this directory (optional, default: MODEL_SOURCE and MODEL_DIR)",
		},
		&cli.StringFlag{
			Name:    "version",
			Usage:   "Artifact version (optional, default: MODEL_VERSION)",
			Sources: cli.EnvVars("MODEL_VERSION"),
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Explainer mode [precomputed, on_demand, auto] (optional, default: MODEL_EXPLAINER_MODE)",
		},
	}
}

func scoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "Score one applicant record",
		UsageText: "fairfin score --record rec.json",
		Flags:     bundleFlags(),
		Action:    cmdScore,
	}
}

func explainCmd() *cli.Command {
	flags := append(bundleFlags(),
		&cli.IntFlag{
			Name:  "top",
			Usage: "Number of contributors to list (optional, default: MODEL_DEFAULT_TOP_N)",
		},
		&cli.StringFlag{
			Name:  "svg",
			Usage: "Write the contribution chart to this file (optional)",
		},
	)
	return &cli.Command{
		Name:      "explain",
		Usage:     "Explain the decision for one applicant record",
		UsageText: "fairfin explain --record rec.json --top 3 --svg out.svg",
		Flags:     flags,
		Action:    cmdExplain,
	}
}

func cmdScore(ctx context.Context, cmd *cli.Command) error {
	rec, err := readRecord(cmd.String("record"))
	if err != nil {
		return err
	}

	svc, closeFn, err := newReviewService(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := svc.Score(ctx, rec)
	if err != nil {
		return err
	}
	if err := printJSON(cmd, out); err != nil {
		return err
	}
	if !out.Available {
		return fmt.Errorf("%s %w", review.UnavailablePrediction, out.Err)
	}
	return nil
}

func cmdExplain(ctx context.Context, cmd *cli.Command) error {
	rec, err := readRecord(cmd.String("record"))
	if err != nil {
		return err
	}

	svc, closeFn, err := newReviewService(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := svc.Explain(ctx, rec, cmd.Int("top"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, out.Text)

	path := cmd.String("svg")
	if path == "" || !out.Available || out.Explanation.Chart == nil {
		return nil
	}

	svg, err := out.Explanation.Chart.SVG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	logger.FromContext(ctx).Info("chart written", "path", path)
	return nil
}

// newReviewService wires the same service the HTTP server runs, with
// command-line overrides applied to the environment config.
func newReviewService(ctx context.Context, cmd *cli.Command) (*review.ReviewService, func(), error) {
	cfg, err := config.LoadTooling()
	if err != nil {
		return nil, nil, err
	}
	if dir := cmd.String("dir"); dir != "" {
		cfg.Model.Source = config.ModelSourceFile
		cfg.Model.Dir = dir
	}
	if m := cmd.String("mode"); m != "" {
		cfg.Model.ExplainerMode = m
	}

	mode, err := review.ParseExplainerMode(cfg.Model.ExplainerMode)
	if err != nil {
		return nil, nil, err
	}

	backend, err := repository.OpenBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	svc := review.NewReviewService(artifact.NewCache(artifact.NewLoader(backend.Store)), nil, review.Config{
		Version:     cmd.String("version"),
		Mode:        mode,
		DefaultTopN: cfg.Model.DefaultTopN,
	})
	return svc, func() { _ = backend.Close() }, nil
}

func readRecord(path string) (scoring.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec scoring.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("record %s is empty", path)
	}
	return rec, nil
}
