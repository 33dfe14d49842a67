package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"lanshare-backend/internal/bootstrap"
	"lanshare-backend/internal/shares"
)

type listedArtifact struct {
	shares.Metadata
	IsExpired bool `json:"expired"`
}

func newLsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List artifacts with their expiry state",
		Args:  cobra.NoArgs,
	}
	format := cmd.Flags().StringP("format", "f", "text", "Output format: json or text")
	expiredOnly := cmd.Flags().Bool("expired", false, "Only list expired artifacts")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, open, func(app *bootstrap.App) error {
			metas, err := app.SharesService.List(cmd.Context())
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			if app.SharesService.Now != nil {
				now = app.SharesService.Now().UTC()
			}

			out := make([]listedArtifact, 0, len(metas))
			for _, m := range metas {
				expired := m.Expired(now)
				if *expiredOnly && !expired {
					continue
				}
				out = append(out, listedArtifact{Metadata: m, IsExpired: expired})
			}

			if *format == "json" {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tEXPIRES\tSTATE")
			for _, a := range out {
				state := "live"
				if a.IsExpired {
					state = "expired"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", a.ID, a.OriginalName, a.SizeBytes, a.ExpiresAt.Format(time.RFC3339), state)
			}
			return tw.Flush()
		})
	}
	return cmd
}
