package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/auqa/internal/app"
	"github.com/five82/auqa/internal/config"
	"github.com/five82/auqa/internal/export"
	"github.com/five82/auqa/internal/logging"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file-id>",
		Short: "Print the report for a processed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, nil, func(rt *app.Runtime) error {
				primeFileNames(cmd, rt)
				c, err := rt.Engine.Report(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("fetch report: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), export.Render(c, time.Now()))
				return nil
			})
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <file-id>...",
		Short: "Write reports as text files to the export directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adjust := func(cfg *config.Config) {
				if strings.TrimSpace(dir) != "" {
					cfg.ExportDir = dir
				}
			}
			return ctx.withRuntime(cmd, adjust, func(rt *app.Runtime) error {
				primeFileNames(cmd, rt)
				out := cmd.OutOrStdout()

				if len(args) == 1 {
					path, err := rt.Engine.ExportOne(cmd.Context(), args[0])
					if err != nil {
						return fmt.Errorf("export %s: %w", args[0], err)
					}
					fmt.Fprintln(out, path)
					return nil
				}

				result, err := rt.Engine.ExportMany(cmd.Context(), args)
				for _, path := range result.Written {
					fmt.Fprintln(out, path)
				}
				for _, f := range result.Failed {
					fmt.Fprintf(cmd.ErrOrStderr(), "could not export %s: %s\n", f.FileID, f.Error)
				}
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write reports to (defaults to export_dir)")
	return cmd
}

// primeFileNames loads the file list so reports without a name inside them
// are titled and saved under the uploaded name.
func primeFileNames(cmd *cobra.Command, rt *app.Runtime) {
	if err := rt.Engine.Refresh(cmd.Context()); err != nil {
		rt.Logger.Warn("file list unavailable; using fallback names", logging.Error(err))
	}
}
