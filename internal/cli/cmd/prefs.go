package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/bnema/pagetitle/internal/cli"
	"github.com/bnema/pagetitle/internal/cli/styles"
	"github.com/bnema/pagetitle/internal/infrastructure/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Inspect and edit the add-on preferences",
	Long: `Inspect and edit the extensions.pagetitle. preference branch.

User values are stored in the [preferences] table of the config file; a
running 'pagetitle run' picks changes up immediately.

Examples:
  pagetitle prefs list
  pagetitle prefs set debug true
  pagetitle prefs reset debug`,
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List preferences with their values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		writePrefsTable(cmd.OutOrStdout(), app)
		return nil
	},
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a preference value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if !app.Preferences.Has(args[0]) {
			return fmt.Errorf("no preference %s%s", prefs.Namespace, args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.Preferences.Get(args[0], nil))
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a preference",
	Long: `Set a preference. Known preferences keep their type; a new preference
is stored as a bool, an integer or a string, whichever the value parses as.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		name, raw := args[0], args[1]
		var value any = raw
		if !app.Preferences.Has(name) {
			value = parsePrefValue(raw)
		}
		if err := app.Preferences.Set(name, value); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.Theme.SuccessStyle.Render(
			fmt.Sprintf("%s %s = %v", styles.IconCheck, name, app.Preferences.Get(name, value))))
		return nil
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset <name>",
	Short: "Drop the user value of a preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if err := app.Preferences.Reset(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.Theme.SuccessStyle.Render(
			fmt.Sprintf("%s %s reset", styles.IconCheck, args[0])))
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsListCmd, prefsGetCmd, prefsSetCmd, prefsResetCmd)
	rootCmd.AddCommand(prefsCmd)
}

func requireApp() (*cli.App, error) {
	app := GetApp()
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// parsePrefValue reads a command line value as a bool, an integer or a
// string, in that order.
func parsePrefValue(raw string) any {
	s := strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return raw
}

// prefSource tells whether name carries a user value or only its default.
func prefSource(app *cli.App, name string) string {
	if _, ok := app.ConfigManager.Get().Preferences[strings.ToLower(name)]; ok {
		return "user"
	}
	if _, ok := app.Defaults.Get(prefs.Namespace + name); ok {
		return "default"
	}
	return "-"
}

func writePrefsTable(w io.Writer, app *cli.App) {
	names := app.Preferences.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, app.Theme.Subtle.Render("No preferences"))
		return
	}

	cols := styles.PrefTableColumns()
	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		value := app.Preferences.Get(name, nil)
		rows = append(rows, table.Row{
			styles.Truncate(name, cols[0].Width),
			styles.Truncate(fmt.Sprint(value), cols[1].Width),
			prefs.KindOf(value).String(),
			prefSource(app, name),
		})
	}

	width := 0
	for _, c := range cols {
		width += c.Width + 2
	}
	// header and its border take two lines
	t := styles.NewStyledTable(app.Theme, cols, rows, width, len(rows)+2)
	t.Blur()
	fmt.Fprintln(w, app.Theme.Title.Render(styles.IconConfig+" "+strings.TrimSuffix(prefs.Namespace, ".")))
	fmt.Fprintln(w, t.View())
}
