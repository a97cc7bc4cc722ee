// Package bootstrap provides the add-on lifecycle entry points and wires the
// address bar components together.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/logging"
)

// Reason tells a lifecycle entry point why it is called.
type Reason int

const (
	AppStartup Reason = iota + 1
	AppShutdown
	AddonEnable
	AddonDisable
	AddonInstall
	AddonUninstall
	AddonUpgrade
	AddonDowngrade
)

func (r Reason) String() string {
	switch r {
	case AppStartup:
		return "app-startup"
	case AppShutdown:
		return "app-shutdown"
	case AddonEnable:
		return "addon-enable"
	case AddonDisable:
		return "addon-disable"
	case AddonInstall:
		return "addon-install"
	case AddonUninstall:
		return "addon-uninstall"
	case AddonUpgrade:
		return "addon-upgrade"
	case AddonDowngrade:
		return "addon-downgrade"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// deletePrefsOnUninstallPref controls whether Uninstall clears the branch.
const deletePrefsOnUninstallPref = "deletePrefsOnUninstall"

// Registry is the part of the window registry driven by the lifecycle.
type Registry interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context, exiting bool)
}

// Addon exposes the lifecycle entry points the host calls.
type Addon struct {
	registry Registry
	prefs    port.PreferenceStore
}

// NewAddon creates the lifecycle for registry. prefs may be nil when no
// preference branch is available.
func NewAddon(registry Registry, prefs port.PreferenceStore) *Addon {
	return &Addon{registry: registry, prefs: prefs}
}

// Startup starts tracking windows. It must run on the UI thread.
func (a *Addon) Startup(ctx context.Context, reason Reason) error {
	ctx = logging.WithComponent(ctx, "bootstrap")
	logging.FromContext(ctx).Info().Stringer("reason", reason).Msg("startup")

	if err := a.registry.Start(ctx); err != nil {
		return fmt.Errorf("startup (%s): %w", reason, err)
	}
	return nil
}

// Shutdown stops tracking windows. On application shutdown the windows are
// going away, so their chrome is left as it is.
func (a *Addon) Shutdown(ctx context.Context, reason Reason) {
	ctx = logging.WithComponent(ctx, "bootstrap")
	logging.FromContext(ctx).Info().Stringer("reason", reason).Msg("shutdown")

	a.registry.Stop(ctx, reason == AppShutdown)
}

// Install has nothing to set up; default preferences are read lazily.
func (a *Addon) Install(ctx context.Context, reason Reason) {
	logging.FromContext(logging.WithComponent(ctx, "bootstrap")).
		Info().Stringer("reason", reason).Msg("install")
}

// Uninstall deletes the preference branch when the add-on is removed and
// the deletePrefsOnUninstall preference allows it.
func (a *Addon) Uninstall(ctx context.Context, reason Reason) error {
	ctx = logging.WithComponent(ctx, "bootstrap")
	log := logging.FromContext(ctx)
	log.Info().Stringer("reason", reason).Msg("uninstall")

	if reason != AddonUninstall || a.prefs == nil {
		return nil
	}
	if !a.prefs.Bool(deletePrefsOnUninstallPref, true) {
		log.Debug().Msg("keeping preferences")
		return nil
	}
	if err := a.prefs.DeleteBranch(); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	log.Info().Msg("preferences deleted")
	return nil
}
