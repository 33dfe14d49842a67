// Package cli implements the lanshare operator commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lanshare-backend/internal/bootstrap"
	"lanshare-backend/internal/shared/config"
)

// Opener builds the application the commands operate on.
type Opener func(ctx context.Context) (*bootstrap.App, error)

// DefaultOpener loads config from the environment and builds the app.
func DefaultOpener(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.Build(ctx, config.Load())
}

// NewRootCmd returns the top-level command wired to open.
func NewRootCmd(open Opener) *cobra.Command {
	if open == nil {
		open = DefaultOpener
	}
	root := &cobra.Command{
		Use:           "lanshare",
		Short:         "Operate a LAN share data directory",
		Long:          "Inspect, list, delete and reap shared artifacts using the same storage configuration as the API server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newSweepCmd(open),
		newInspectCmd(open),
		newLsCmd(open),
		newRmCmd(open),
	)
	return root
}

func withApp(cmd *cobra.Command, open Opener, fn func(*bootstrap.App) error) error {
	app, err := open(cmd.Context())
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer app.Close()
	return fn(app)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
