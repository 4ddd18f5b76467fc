package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/auqa/internal/app"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var apiURLFlag string

	ctx := newCommandContext(&configFlag, &apiURLFlag)

	rootCmd := &cobra.Command{
		Use:           "auqa",
		Short:         "Terminal client for the AuQA audio analysis server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runTUI(cmd, 0)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "AuQA server URL (overrides api_url)")

	rootCmd.AddCommand(newTUICommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newFilesCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newSessionCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}

func newTUICommand(ctx *commandContext) *cobra.Command {
	var poll time.Duration

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runTUI(cmd, poll)
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", 0, "Queue status poll interval (defaults to queue_poll_seconds)")
	return cmd
}

func (c *commandContext) runTUI(cmd *cobra.Command, poll time.Duration) error {
	return app.Run(cmd.Context(), app.Options{
		ConfigPath: c.configPath(),
		APIURL:     c.apiURL(),
		PollEvery:  poll,
	})
}
