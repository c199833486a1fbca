package main

import (
	"context"
	"fmt"

	"fairFin/business/training"
	"fairFin/internal/repository/filesystem"
	"fairFin/pkg/logger"

	"github.com/urfave/cli/v3"
)

type trainSummary struct {
	Version   string  `json:"version,omitempty"`
	Dir       string  `json:"dir"`
	Token     string  `json:"token"`
	Accuracy  float64 `json:"accuracy"`
	Loss      float64 `json:"loss"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
	Features  int     `json:"features"`
}

func trainCmd() *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train a model on synthetic applicants and write its artifacts",
		UsageText: `fairfin train --out models/                    # flat layout, defaults
   fairfin train --config training.yaml --out models/ --version v2`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the YAML training config (optional, defaults built in)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Artifact directory",
				Value: "models",
			},
			&cli.StringFlag{
				Name:  "version",
				Usage: "Version sub-directory (optional, default: write flat into --out)",
			},
		},
		Action: cmdTrain,
	}
}

func cmdTrain(ctx context.Context, cmd *cli.Command) error {
	cfg, err := training.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info("training started", "rows", cfg.Rows, "epochs", cfg.Epochs, "seed", cfg.Seed)

	res, err := training.Train(ctx, cfg)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	out, ver := cmd.String("out"), cmd.String("version")
	if err := training.Publish(ctx, filesystem.NewArtifactStore(out), ver, res); err != nil {
		return err
	}
	log.Info("model written", "dir", out, "version", ver, "accuracy", res.Accuracy)

	return printJSON(cmd, trainSummary{
		Version:   ver,
		Dir:       out,
		Token:     res.Token,
		Accuracy:  res.Accuracy,
		Loss:      res.Loss,
		TrainRows: res.TrainRows,
		TestRows:  res.TestRows,
		Features:  len(res.FeatureNames),
	})
}
