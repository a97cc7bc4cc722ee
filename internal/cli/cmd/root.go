// Package cmd provides Cobra CLI commands for pagetitle.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/pagetitle/internal/cli"
	"github.com/bnema/pagetitle/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	configDir string
	rootCmd   = &cobra.Command{
		Use:   build.Name,
		Short: build.Description,
		Long: `pagetitle - show the page title and host parts in the address bar.

pagetitle attaches to a running Chrome through the DevTools protocol and
mirrors its windows and tabs. For every browser window it keeps the page
title, subdomain, registrable domain and port of the selected tab in sync,
the way an address bar overlay would, and styles them from a TOML rule file.

Use 'pagetitle run' to attach to a browser, or explore the subcommands to
decompose addresses or edit the add-on preferences.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp(cli.Options{
				ConfigDir: configDir,
				// the dashboard owns the terminal
				LogToStderr: cmd != runCmd || runNoDashboard || !isTerminal(os.Stdout.Fd()),
			})
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			// Set build info from main.go
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default $XDG_CONFIG_HOME/pagetitle)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
