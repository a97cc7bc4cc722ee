package bootstrap

import (
	"context"
	"sync"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/application/usecase"
	"github.com/bnema/pagetitle/internal/infrastructure/addons"
	"github.com/bnema/pagetitle/internal/infrastructure/config"
	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
	"github.com/bnema/pagetitle/internal/infrastructure/publicsuffix"
	"github.com/bnema/pagetitle/internal/infrastructure/stylesheet"
	"github.com/bnema/pagetitle/internal/logging"
	"github.com/bnema/pagetitle/internal/ui/coordinator"
)

// ComponentsInput holds what NewComponents wires together.
type ComponentsInput struct {
	Config      *config.Config
	Preferences port.PreferenceStore
	Host        *memhost.Host
	// DebugGate follows the debug preference; nil leaves debug logs as
	// the logger level decides.
	DebugGate *logging.DebugGate
}

// Components is the assembled add-on running against one host.
type Components struct {
	Host        *memhost.Host
	StyleSheets *stylesheet.Service
	Addons      *addons.Inventory
	Display     *usecase.ResolveDisplayUseCase
	Registry    *coordinator.WindowRegistry
	Addon       *Addon

	mu         sync.Mutex
	sheetPath  string
	configured *config.Config
}

// NewComponents builds the services and the window registry. Nothing runs
// until Addon.Startup.
func NewComponents(in ComponentsInput) *Components {
	cfg := in.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	sheets := stylesheet.NewService()
	if cfg.Appearance.StyleSheet != "" {
		sheets.Provide(stylesheet.OverlayURI, stylesheet.FileSource(cfg.Appearance.StyleSheet))
	}
	inventory := addons.NewInventory(cfg.Addons.Installed)
	display := usecase.NewResolveDisplayUseCase(publicsuffix.New())

	registry := coordinator.NewWindowRegistry(coordinator.RegistryConfig{
		Mediator:           in.Host,
		Preferences:        in.Preferences,
		StyleSheets:        sheets,
		Platform:           in.Host,
		Addons:             inventory,
		Dispatcher:         in.Host,
		Display:            display,
		StyleSheetURI:      stylesheet.OverlayURI,
		WindowType:         cfg.Host.WindowType,
		MinPlatformVersion: cfg.Host.MinPlatformVersion,
		SelectedSkin:       cfg.Host.SelectedSkin,
		DebugGate:          in.DebugGate,
	})

	return &Components{
		Host:        in.Host,
		StyleSheets: sheets,
		Addons:      inventory,
		Display:     display,
		Registry:    registry,
		Addon:       NewAddon(registry, in.Preferences),
		sheetPath:   cfg.Appearance.StyleSheet,
		configured:  cfg,
	}
}

// OnConfigChange applies a reloaded configuration: the installed add-on list
// is replaced and the style sheet is reloaded on the UI thread.
func (c *Components) OnConfigChange(ctx context.Context, cfg *config.Config) {
	log := logging.FromContext(ctx)

	c.Addons.Replace(cfg.Addons.Installed)

	c.mu.Lock()
	pathChanged := cfg.Appearance.StyleSheet != c.sheetPath
	c.sheetPath = cfg.Appearance.StyleSheet
	c.configured = cfg
	c.mu.Unlock()

	if pathChanged {
		if cfg.Appearance.StyleSheet == "" {
			c.StyleSheets.Provide(stylesheet.OverlayURI, stylesheet.BuiltinSource)
		} else {
			c.StyleSheets.Provide(stylesheet.OverlayURI, stylesheet.FileSource(cfg.Appearance.StyleSheet))
		}
		log.Info().Str("stylesheet", cfg.Appearance.StyleSheet).Msg("style sheet source changed")
	}

	c.Host.Post(func() { c.Registry.ReloadStyles(ctx) })
}

// Config returns the configuration last applied.
func (c *Components) Config() *config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configured
}
