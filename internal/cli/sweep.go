package cli

import (
	"github.com/spf13/cobra"

	"lanshare-backend/internal/bootstrap"
)

func newSweepCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reaper pass",
		Args:  cobra.NoArgs,
	}
	noOrphans := cmd.Flags().Bool("no-orphans", false, "Skip the orphaned blob sweep")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, open, func(app *bootstrap.App) error {
			if *noOrphans {
				app.Reaper.Opts.OrphanSweep = false
			}
			res, err := app.Reaper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		})
	}
	return cmd
}
