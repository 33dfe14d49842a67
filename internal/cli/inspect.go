package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lanshare-backend/internal/bootstrap"
	"lanshare-backend/internal/shares"
)

func newInspectCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <id>",
		Short: "Print artifact metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(app *bootstrap.App) error {
				meta, err := app.SharesService.Inspect(cmd.Context(), args[0])
				if errors.Is(err, shares.ErrNotFound) {
					return fmt.Errorf("artifact %s not found", args[0])
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), meta)
			})
		},
	}
}
