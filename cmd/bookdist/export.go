package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bookdist/internal/core"
	"bookdist/internal/export"
)

func newExportCmd(load loader) *cobra.Command {
	var (
		snapshot string
		outDir   string
		rawFmts  []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current data or an archived snapshot",
		Long: "Renders the export files. With --out the files are written to that directory;\n" +
			"otherwise they are published to the configured blob store.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			formats := make([]export.Format, 0, len(rawFmts))
			for _, raw := range rawFmts {
				f, err := export.ParseFormat(raw)
				if err != nil {
					return err
				}
				formats = append(formats, f)
			}
			if len(formats) == 0 {
				formats = export.DefaultFormats()
			}
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := core.Open(ctx, cfg, core.WithLogger(logger))
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				for _, f := range formats {
					artifact, payload, err := svc.Render(ctx, snapshot, f)
					if err != nil {
						return err
					}
					path := filepath.Join(outDir, artifact.FileName)
					if err := os.WriteFile(path, payload, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", path, err)
					}
					fmt.Fprintln(out, path)
				}
				return nil
			}
			published, err := svc.Export(ctx, snapshot, formats...)
			if err != nil {
				return err
			}
			for _, p := range published {
				if p.Blob.URL != "" {
					fmt.Fprintf(out, "%s\t%s\n", p.Blob.Key, p.Blob.URL)
					continue
				}
				fmt.Fprintln(out, p.Blob.Key)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "archive entry id (default: current data)")
	cmd.Flags().StringVar(&outDir, "out", "", "write files to this directory instead of the blob store")
	cmd.Flags().StringSliceVar(&rawFmts, "format", nil, "formats to render: xls, doc, xlsx (default xls,doc)")
	return cmd
}
