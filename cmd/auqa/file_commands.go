package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/auqa/internal/app"
	"github.com/five82/auqa/internal/config"
)

var errNothingDeleted = errors.New("no files were deleted")

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <file-id>...",
		Aliases: []string{"rm"},
		Short:   "Delete processed files and their reports from the server",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, nil, func(rt *app.Runtime) error {
				resp, err := rt.Engine.Delete(cmd.Context(), args)
				if err != nil {
					return fmt.Errorf("delete: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(resp.Deleted) == len(args) {
					fmt.Fprintf(out, "Deleted %d file(s)\n", len(resp.Deleted))
					return nil
				}
				fmt.Fprintf(out, "Deleted %d of %d files\n", len(resp.Deleted), len(args))
				for _, id := range args {
					if !slices.Contains(resp.Deleted, id) {
						fmt.Fprintf(cmd.ErrOrStderr(), "not deleted: %s\n", id)
					}
				}
				if len(resp.Deleted) == 0 {
					return errNothingDeleted
				}
				return nil
			})
		},
	}
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload audio files for analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, nil, func(rt *app.Runtime) error {
				var errs []error
				for _, arg := range args {
					if err := uploadOne(cmd, rt, arg); err != nil {
						errs = append(errs, err)
					}
				}
				return errors.Join(errs...)
			})
		},
	}
}

func uploadOne(cmd *cobra.Command, rt *app.Runtime, arg string) error {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return fmt.Errorf("upload %s: %w", arg, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("upload %s: %w", arg, err)
	}
	if info.IsDir() {
		return fmt.Errorf("upload %s: is a directory", arg)
	}
	if _, err := rt.Engine.Upload(cmd.Context(), path); err != nil {
		return fmt.Errorf("upload %s: %w", arg, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s), analysis queued\n",
		filepath.Base(path), humanize.Bytes(uint64(info.Size())))
	return nil
}
