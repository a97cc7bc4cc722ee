package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/pagetitle/internal/infrastructure/stylesheet"
	"github.com/bnema/pagetitle/internal/ui/coordinator"
)

// AddressBar is what the injected address bar elements hold.
type AddressBar struct {
	Title     string
	Subdomain string
	Domain    string
	Port      string
	NoTitle   bool
	// Address is shown in place of the hidden elements.
	Address string
}

// AddressBarFromSnapshot converts a controller snapshot.
func AddressBarFromSnapshot(snap coordinator.DisplaySnapshot, address string) AddressBar {
	return AddressBar{
		Title:     snap.Title,
		Subdomain: snap.Subdomain,
		Domain:    snap.Domain,
		Port:      snap.Port,
		NoTitle:   snap.NoTitle,
		Address:   address,
	}
}

// RuleStyle converts a style sheet rule to a lipgloss style.
func RuleStyle(rule stylesheet.Rule) lipgloss.Style {
	s := lipgloss.NewStyle().
		Bold(rule.Bold).
		Italic(rule.Italic).
		Faint(rule.Faint)
	if rule.Foreground != "" {
		s = s.Foreground(lipgloss.Color(rule.Foreground))
	}
	if rule.Background != "" {
		s = s.Background(lipgloss.Color(rule.Background))
	}
	return s
}

// AddressBarRenderer draws an address bar the way the style sheet rules
// style the injected elements.
type AddressBarRenderer struct {
	theme *Theme
}

// NewAddressBarRenderer creates a renderer with the given theme.
func NewAddressBarRenderer(theme *Theme) *AddressBarRenderer {
	return &AddressBarRenderer{theme: theme}
}

// Render draws bar within width cells. Elements whose rule names a boolean
// attribute that the bar carries are left out.
func (r *AddressBarRenderer) Render(bar AddressBar, rules map[string]stylesheet.Rule, width int) string {
	attrs := map[string]bool{coordinator.NoTitleAttr: bar.NoTitle}
	hidden := func(id string) bool {
		rule := rules[id]
		return rule.HiddenWhen != "" && attrs[rule.HiddenWhen]
	}

	var identity strings.Builder
	if !hidden(coordinator.HostPortBoxID) {
		for _, el := range []struct{ id, value string }{
			{coordinator.SubdomainLabelID, bar.Subdomain},
			{coordinator.DomainLabelID, bar.Domain},
			{coordinator.PortLabelID, bar.Port},
		} {
			if el.value == "" || hidden(el.id) {
				continue
			}
			identity.WriteString(RuleStyle(rules[el.id]).Render(el.value))
		}
	}

	var parts []string
	if identity.Len() > 0 {
		parts = append(parts, identity.String())
	}
	switch {
	case !hidden(coordinator.TitleSlotID) && bar.Title != "":
		parts = append(parts, RuleStyle(rules[coordinator.TitleSlotID]).Render(bar.Title))
	case bar.Address != "":
		parts = append(parts, r.theme.Subtle.Render(bar.Address))
	}

	sep := lipgloss.NewStyle().Foreground(r.theme.Border).Render(" │ ")
	content := strings.Join(parts, sep)

	style := r.theme.URLBar
	if width > 0 {
		style = style.Width(width).MaxHeight(3)
		content = lipgloss.NewStyle().MaxWidth(width - style.GetHorizontalFrameSize()).Render(content)
	}
	return style.Render(content)
}
