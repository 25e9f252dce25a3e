// Command portalctl drives the portal API from a terminal. The session is
// kept in a file so consecutive invocations share it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"planportal/internal/portalclient"
)

type app struct {
	apiURL      string
	sessionPath string
	client      *portalclient.Client
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "planportal", "session.json")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (a *app) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Command-line client for the building-plan portal API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.client = portalclient.New(a.apiURL, portalclient.WithStore(portalclient.NewFileStore(a.sessionPath)))
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", envOr("PORTAL_API", "http://localhost:8080/api"), "API base URL")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", envOr("PORTAL_SESSION", defaultSessionPath()), "session file")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.otpCmd(),
		a.loginIDCmd(),
		a.draftCmd(),
		a.projectCmd(),
		a.dashboardCmd(),
		a.uploadCmd(),
		a.letterheadCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
