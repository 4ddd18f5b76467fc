package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/auqa/internal/app"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the session queue counts are measured from",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print when the current session started",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, nil, func(rt *app.Runtime) error {
				anchor := rt.Clock.Anchor()
				fmt.Fprintf(cmd.OutOrStdout(), "Session started %s (%d)\n", formatAnchor(anchor), anchor)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Start a new session so queue counts begin from zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, nil, func(rt *app.Runtime) error {
				anchor := rt.Engine.ResetSession()
				fmt.Fprintf(cmd.OutOrStdout(), "New session started %s (%d)\n", formatAnchor(anchor), anchor)
				return nil
			})
		},
	})

	return cmd
}

func formatAnchor(anchor int64) string {
	return time.Unix(anchor, 0).Local().Format("Jan 2 15:04:05")
}
