package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/pagetitle/internal/application/usecase"
	"github.com/bnema/pagetitle/internal/cli/styles"
	"github.com/bnema/pagetitle/internal/domain/address"
	"github.com/bnema/pagetitle/internal/domain/title"
	"github.com/bnema/pagetitle/internal/infrastructure/publicsuffix"
	"github.com/bnema/pagetitle/internal/infrastructure/stylesheet"
)

const decomposeBarWidth = 72

var (
	decomposeTitle string
	decomposeLabel string
	decomposeTheme string
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <url>...",
	Short: "Show how addresses are split in the address bar",
	Long: `Split each address into subdomain, registrable domain and port, and
render the address bar the way the configured style sheet draws it.

Examples:
  pagetitle decompose https://mail.google.com/
  pagetitle decompose --title "BBC News" https://www.bbc.co.uk/news
  pagetitle decompose --theme 14 about:config`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecompose,
}

func init() {
	decomposeCmd.Flags().StringVarP(&decomposeTitle, "title", "t", "", "page title shown next to the host parts")
	decomposeCmd.Flags().StringVar(&decomposeLabel, "label", "", "fixed tab label overriding the title")
	decomposeCmd.Flags().StringVar(&decomposeTheme, "theme", "", "theme style whose rules apply")
	rootCmd.AddCommand(decomposeCmd)
}

func runDecompose(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	sheets := stylesheet.NewService()
	if path := app.Config.Appearance.StyleSheet; path != "" {
		sheets.Provide(stylesheet.OverlayURI, stylesheet.FileSource(path))
	}
	if err := sheets.Load(stylesheet.OverlayURI); err != nil {
		return fmt.Errorf("load style sheet: %w", err)
	}

	label := title.NoLabel
	if decomposeLabel != "" {
		label = title.FixedLabel(decomposeLabel)
	}

	lookup := publicsuffix.New()
	d := &decomposer{
		lookup:  lookup,
		display: usecase.NewResolveDisplayUseCase(lookup),
		bar:     styles.NewAddressBarRenderer(app.Theme),
		theme:   app.Theme,
		rules:   sheets.Rules(decomposeTheme),
	}
	return d.Write(app.Ctx(), cmd.OutOrStdout(), decomposeTitle, label, args)
}

type decomposer struct {
	lookup  *publicsuffix.Lookup
	display *usecase.ResolveDisplayUseCase
	bar     *styles.AddressBarRenderer
	theme   *styles.Theme
	rules   map[string]stylesheet.Rule
}

// Write renders one address bar per url followed by its parts. The parts are
// listed even when the bar shows the plain address. A url that cannot be
// decomposed is reported and the rest are still written.
func (d *decomposer) Write(ctx context.Context, w io.Writer, pageTitle string, label title.Label, urls []string) error {
	failed := 0
	for _, raw := range urls {
		out, err := d.display.Execute(ctx, usecase.DisplayInput{Title: pageTitle, URL: raw, Label: label})
		if err != nil {
			failed++
			fmt.Fprintln(w, d.theme.ErrorStyle.Render(fmt.Sprintf("%s %s: %v", styles.IconX, raw, err)))
			continue
		}

		parts := out.Parts
		if !out.ShowTitle {
			if parts, err = address.Decompose(out.Address, d.lookup); err != nil {
				failed++
				fmt.Fprintln(w, d.theme.ErrorStyle.Render(fmt.Sprintf("%s %s: %v", styles.IconX, raw, err)))
				continue
			}
		}

		bar := styles.AddressBar{NoTitle: !out.ShowTitle, Address: out.Address}
		if out.ShowTitle {
			bar.Title = out.Title
			bar.Subdomain, bar.Domain, bar.Port = displayParts(parts)
		}
		fmt.Fprintln(w, d.bar.Render(bar, d.rules, decomposeBarWidth))
		fmt.Fprintln(w, d.theme.Subtle.Render(describeParts(parts, d.suffix(parts), out.ShowTitle)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d addresses could not be decomposed", failed, len(urls))
	}
	return nil
}

// displayParts returns what the subdomain, domain and port labels hold.
func displayParts(p address.Parts) (subdomain, domain, port string) {
	if p.Kind == address.KindProtocol {
		return "", p.Token, ""
	}
	return p.Subdomain, p.Domain, p.Port
}

// suffix returns the public suffix of a named host, or "" for protocol
// tokens and IP literals.
func (d *decomposer) suffix(p address.Parts) string {
	if p.Kind != address.KindHostParts || net.ParseIP(strings.Trim(p.Domain, "[]")) != nil {
		return ""
	}
	s, _ := d.lookup.PublicSuffix(p.Domain)
	return s
}

func describeParts(p address.Parts, suffix string, titled bool) string {
	var s string
	if p.Kind == address.KindProtocol {
		s = fmt.Sprintf("  %s token=%q", p.Kind, p.Token)
	} else {
		s = fmt.Sprintf("  %s subdomain=%q domain=%q port=%q", p.Kind, p.Subdomain, p.Domain, p.Port)
		if suffix != "" {
			s += fmt.Sprintf(" suffix=%q", suffix)
		}
	}
	if !titled {
		s += " (no title)"
	}
	return s
}
