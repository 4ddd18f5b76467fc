package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/auqa/internal/app"
	"github.com/five82/auqa/internal/auqa"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"ls"},
		Short:   "List processed files, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, nil, func(rt *app.Runtime) error {
				files, err := rt.Client.FetchFiles(cmd.Context())
				if err != nil {
					return fmt.Errorf("list files: %w", err)
				}
				if asJSON {
					if files == nil {
						files = []auqa.ProcessedFile{}
					}
					return writeJSON(cmd, files)
				}
				out := cmd.OutOrStdout()
				if len(files) == 0 {
					fmt.Fprintln(out, "No processed files")
					return nil
				}
				headers := []string{"ID", "Name", "Issues", "Processed"}
				if isTerminal(out) {
					rows := fileRows(files, func(t time.Time, raw string) string {
						if t.IsZero() {
							return raw
						}
						return humanize.Time(t)
					})
					fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
					return nil
				}
				fmt.Fprint(out, renderTSV(headers, fileRows(files, func(_ time.Time, raw string) string { return raw })))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func fileRows(files []auqa.ProcessedFile, when func(time.Time, string) string) [][]string {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.ID,
			f.Name,
			strconv.Itoa(f.IssueCount),
			when(f.ParsedProcessedDate(), f.ProcessedDate),
		})
	}
	return rows
}
