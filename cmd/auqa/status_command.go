package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/auqa/internal/app"
	"github.com/five82/auqa/internal/auqa"
)

const healthTimeout = 3 * time.Second

type statusReport struct {
	Server       string            `json:"server"`
	Online       bool              `json:"online"`
	Error        string            `json:"error,omitempty"`
	SessionStart int64             `json:"session_start"`
	Queue        *auqa.QueueStatus `json:"queue,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server health and queue progress for the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, nil, func(rt *app.Runtime) error {
				report := gatherStatus(cmd.Context(), rt)
				if asJSON {
					return writeJSON(cmd, report)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderStatus(report, time.Now()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func gatherStatus(ctx context.Context, rt *app.Runtime) statusReport {
	report := statusReport{
		Server:       rt.Client.BaseURL(),
		SessionStart: rt.Clock.Anchor(),
	}

	hctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := rt.Client.Health(hctx); err != nil {
		report.Error = err.Error()
		return report
	}
	report.Online = true

	qs, err := rt.Client.FetchQueueStatus(ctx, report.SessionStart)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Queue = &qs
	return report
}

func renderStatus(r statusReport, now time.Time) string {
	var b strings.Builder
	state := "online"
	if !r.Online {
		state = "offline"
	}
	fmt.Fprintf(&b, "Server:   %s (%s)\n", r.Server, state)

	started := time.Unix(r.SessionStart, 0)
	fmt.Fprintf(&b, "Session:  started %s (%s)\n",
		started.Local().Format("Jan 2 15:04"),
		humanize.RelTime(started, now, "ago", "from now"))

	switch {
	case r.Queue == nil:
	case r.Queue.Total == 0:
		b.WriteString("Queue:    no jobs this session\n")
	default:
		q := r.Queue
		fmt.Fprintf(&b, "Queue:    %d/%d done (%.0f%%) · %d running · %d queued\n",
			q.Completed, q.Total, q.Percent()*100, q.InProgress, q.Queued)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "Error:    %s\n", r.Error)
	}
	return b.String()
}
