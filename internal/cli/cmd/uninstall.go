package cmd

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/pagetitle/internal/bootstrap"
	"github.com/bnema/pagetitle/internal/cli/styles"
	"github.com/bnema/pagetitle/internal/infrastructure/prefs"
)

var uninstallYes bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the add-on preferences",
	Long: `Run the add-on's uninstall hook: every preference under
extensions.pagetitle. is deleted, unless deletePrefsOnUninstall is false.

Examples:
  pagetitle uninstall
  pagetitle uninstall --yes`,
	Args: cobra.NoArgs,
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	if !uninstallYes {
		msg := fmt.Sprintf("Delete every %s preference?", prefs.Namespace)
		final, err := tea.NewProgram(styles.NewConfirm(app.Theme, msg)).Run()
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if c, ok := final.(styles.ConfirmModel); !ok || !c.Result() {
			fmt.Fprintln(cmd.OutOrStdout(), app.Theme.Subtle.Render("Canceled"))
			return nil
		}
	}

	return uninstall(app.Ctx(), cmd.OutOrStdout(), app.Theme, bootstrap.NewAddon(nil, app.Preferences))
}

func uninstall(ctx context.Context, w io.Writer, theme *styles.Theme, addon *bootstrap.Addon) error {
	if err := addon.Uninstall(ctx, bootstrap.AddonUninstall); err != nil {
		return err
	}
	fmt.Fprintln(w, theme.SuccessStyle.Render(styles.IconTrash+" Uninstalled"))
	return nil
}
