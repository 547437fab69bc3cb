// Command bookdist plans school book distribution: it serves the HTTP API,
// writes export files and runs one-off carton calculations.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"bookdist/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string
	root := &cobra.Command{
		Use:           "bookdist",
		Short:         "School book distribution planner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	load := func() (config.Config, *slog.Logger, error) {
		cfg, err := config.Load(envFiles...)
		if err != nil {
			return config.Config{}, nil, err
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		return cfg, logger, nil
	}

	root.AddCommand(newServeCmd(load), newExportCmd(load), newCalcCmd())
	return root
}

type loader func() (config.Config, *slog.Logger, error)
