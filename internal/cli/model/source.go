package model

import (
	"context"
	"fmt"

	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
	"github.com/bnema/pagetitle/internal/infrastructure/stylesheet"
	"github.com/bnema/pagetitle/internal/ui/coordinator"
)

// WindowView is one row of the dashboard.
type WindowView struct {
	Snapshot coordinator.DisplaySnapshot
	// Address is the selected tab's address, empty without tabs.
	Address string
	Tabs    int
}

// DashboardSource feeds the dashboard.
type DashboardSource interface {
	Windows(ctx context.Context) ([]WindowView, error)
	ReloadStyles(ctx context.Context) error
	Rules(themeStyle string) map[string]stylesheet.Rule
}

// RegistrySource reads the window registry of a running host. Every read
// runs on the host's UI loop, so Host.Run must be active.
type RegistrySource struct {
	Host        *memhost.Host
	Registry    *coordinator.WindowRegistry
	StyleSheets *stylesheet.Service
}

var _ DashboardSource = (*RegistrySource)(nil)

// Windows snapshots every controlled window.
func (s *RegistrySource) Windows(ctx context.Context) ([]WindowView, error) {
	var views []WindowView
	err := s.Host.Call(ctx, func() {
		for _, c := range s.Registry.Controllers() {
			view := WindowView{Snapshot: c.Snapshot()}
			if tab := c.Window().SelectedTab(); tab != nil {
				view.Address = tab.URL()
			}
			if w, ok := s.Host.Window(c.Window().ID()); ok {
				view.Tabs = len(w.Tabs())
			}
			views = append(views, view)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("read windows: %w", err)
	}
	return views, nil
}

// ReloadStyles reloads the style sheet on the UI loop.
func (s *RegistrySource) ReloadStyles(ctx context.Context) error {
	return s.Host.Call(ctx, func() { s.Registry.ReloadStyles(ctx) })
}

// Rules returns the merged style rules for themeStyle.
func (s *RegistrySource) Rules(themeStyle string) map[string]stylesheet.Rule {
	return s.StyleSheets.Rules(themeStyle)
}
