package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/auqa/internal/logtail"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var level string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the client log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			keep := func(line string) bool { return true }
			if strings.TrimSpace(level) != "" {
				minLevel, ok := logtail.ParseLevel(level)
				if !ok {
					return fmt.Errorf("unknown log level %q", level)
				}
				keep = logtail.Keeper(minLevel)
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			emit := func(line string) {
				if !keep(line) {
					return
				}
				if colorize {
					line = logtail.Colorize(line)
				}
				fmt.Fprintln(out, line)
			}

			path := cfg.LogPath()
			tail, offset, err := logtail.Read(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}
			return logtail.Follow(cmd.Context(), path, offset, emit)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&level, "level", "", "Only show lines at or above this level (debug, info, warn, error)")
	return cmd
}
