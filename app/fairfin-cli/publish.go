package main

import (
	"context"
	"errors"
	"fmt"

	"fairFin/business/artifact"
	"fairFin/business/training"
	"fairFin/internal/repository"
	"fairFin/internal/repository/filesystem"
	"fairFin/pkg/config"
	"fairFin/pkg/logger"

	"github.com/urfave/cli/v3"
)

func publishCmd() *cli.Command {
	return &cli.Command{
		Name:      "publish",
		Usage:     "Copy a trained bundle from disk into the artifact database",
		UsageText: "fairfin publish --dir models/ --version v1",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Artifact directory written by train",
				Value: "models",
			},
			&cli.StringFlag{
				Name:  "from-version",
				Usage: "Version sub-directory to read (optional, default: flat layout)",
			},
			&cli.StringFlag{
				Name:     "version",
				Usage:    "Version to publish as",
				Required: true,
			},
		},
		Action: cmdPublish,
	}
}

func cmdPublish(ctx context.Context, cmd *cli.Command) error {
	src := filesystem.NewArtifactStore(cmd.String("dir"))
	from, ver := cmd.String("from-version"), cmd.String("version")

	// refuse to publish anything the server would reject
	if _, err := artifact.NewLoader(src).Load(ctx, from); err != nil {
		return fmt.Errorf("source bundle: %w", err)
	}

	encoded := make(map[string][]byte, len(artifact.Names))
	for _, n := range artifact.Names {
		data, err := src.Get(ctx, from, n)
		if errors.Is(err, artifact.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		encoded[n] = data
	}

	cfg, err := config.LoadTooling()
	if err != nil {
		return err
	}
	cfg.Model.Source = config.ModelSourceDB

	backend, err := repository.OpenBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := training.Copy(ctx, backend.Store, ver, encoded); err != nil {
		return err
	}

	b, err := artifact.NewLoader(backend.Store).Load(ctx, ver)
	if err != nil {
		return fmt.Errorf("published bundle does not load: %w", err)
	}
	logger.FromContext(ctx).Info("bundle published", "version", ver, "token", b.Token, "artifacts", len(encoded))

	return printJSON(cmd, b.Info())
}
