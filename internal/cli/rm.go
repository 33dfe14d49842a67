package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lanshare-backend/internal/bootstrap"
	"lanshare-backend/internal/shares"
)

func newRmCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an artifact and its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(app *bootstrap.App) error {
				err := app.SharesService.Delete(cmd.Context(), args[0])
				if errors.Is(err, shares.ErrNotFound) {
					return fmt.Errorf("artifact %s not found", args[0])
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", args[0])
				return err
			})
		},
	}
}
