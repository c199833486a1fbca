package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fairFin/pkg/logger"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

var (
	name    = "fairfin"
	version = "v0.0.1-default"
	commit  = ""
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logger.Fatal("fatal error", "error", err)
	}
}

func newApp() *cli.Command {
	debugFlag := &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	return &cli.Command{
		Name:            name,
		Version:         fmt.Sprintf("%s - (commit: %s)", version, commit),
		Usage:           "Train, publish and query loan review models",
		HideHelpCommand: true,
		Flags:           []cli.Flag{debugFlag},
		Commands: []*cli.Command{
			trainCmd(),
			publishCmd(),
			scoreCmd(),
			explainCmd(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := "info"
			if cmd.Bool(debugFlag.Name) {
				level = "debug"
			}

			// stdout carries command output, logs go to stderr
			var w io.Writer = os.Stderr
			if cmd.Root().ErrWriter != nil {
				w = cmd.Root().ErrWriter
			}
			logger.InitWithWriter("development", level, w)

			return logger.WithTraceID(ctx, uuid.NewString()), nil
		},
	}
}

func printJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
