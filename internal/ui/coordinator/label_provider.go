package coordinator

import (
	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/domain/title"
)

// Globals installed into a window by tab labeling extensions.
const (
	tabMixPlusGlobal   = "TMP_TabView"
	tabUtilitiesGlobal = "tabutils"
	tabRenamizerGlobal = "TabRenamizer"
)

// LabelProvider reads the tab label fixed by a tab labeling extension.
type LabelProvider interface {
	Name() string
	Label(tab port.Tab) title.Label
}

// probeLabelProvider picks the labeling extension present in w. The
// extensions are mutually exclusive; the first one found wins.
func probeLabelProvider(w port.Window) LabelProvider {
	switch {
	case w.HasGlobal(tabMixPlusGlobal):
		return tabMixPlusProvider{}
	case w.HasGlobal(tabUtilitiesGlobal):
		return tabUtilitiesProvider{}
	case w.HasGlobal(tabRenamizerGlobal):
		return tabRenamizerProvider{}
	default:
		return noLabelProvider{}
	}
}

type noLabelProvider struct{}

func (noLabelProvider) Name() string { return "none" }

func (noLabelProvider) Label(port.Tab) title.Label { return title.NoLabel }

// tabMixPlusProvider reads the "fixed-label" attribute. A present but empty
// attribute still fixes the label.
type tabMixPlusProvider struct{}

func (tabMixPlusProvider) Name() string { return "tab-mix-plus" }

func (tabMixPlusProvider) Label(tab port.Tab) title.Label {
	return attributeLabel(tab, "fixed-label")
}

// tabUtilitiesProvider reads the "title" attribute.
type tabUtilitiesProvider struct{}

func (tabUtilitiesProvider) Name() string { return "tab-utilities" }

func (tabUtilitiesProvider) Label(tab port.Tab) title.Label {
	return attributeLabel(tab, "title")
}

// tabRenamizerProvider reads the "tr_label" property; only a non-empty
// value fixes the label.
type tabRenamizerProvider struct{}

func (tabRenamizerProvider) Name() string { return "tab-renamizer" }

func (tabRenamizerProvider) Label(tab port.Tab) title.Label {
	if v, ok := tab.Property("tr_label"); ok && v != "" {
		return title.FixedLabel(v)
	}
	return title.NoLabel
}

func attributeLabel(tab port.Tab, name string) title.Label {
	if v, ok := tab.Attribute(name); ok {
		return title.FixedLabel(v)
	}
	return title.NoLabel
}
