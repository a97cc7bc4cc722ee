// Package coordinator tracks browser windows and drives the address bar
// display of each one.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/application/usecase"
	"github.com/bnema/pagetitle/internal/domain/entity"
	"github.com/bnema/pagetitle/internal/logging"
)

// ErrUnsupportedPlatform is returned by Start when the host is too old.
var ErrUnsupportedPlatform = errors.New("unsupported platform version")

// DefaultMinPlatformVersion is the oldest host platform supported.
const DefaultMinPlatformVersion = 24

// debugPref is the only preference the registry reacts to.
const debugPref = "debug"

// RegistryConfig holds the dependencies of a WindowRegistry.
type RegistryConfig struct {
	Mediator    port.WindowMediator
	Preferences port.PreferenceStore
	StyleSheets port.StyleSheetService
	Platform    port.PlatformInfo
	Addons      port.AddonInventory
	Dispatcher  port.Dispatcher
	Display     *usecase.ResolveDisplayUseCase

	StyleSheetURI      string
	WindowType         string
	MinPlatformVersion float64
	SelectedSkin       string

	// DebugGate follows the "debug" preference when set.
	DebugGate *logging.DebugGate
}

// trackedWindow is the registry's record of one window.
type trackedWindow struct {
	window     port.Window
	state      *entity.TrackedWindow
	removeLoad func()
	controller *WindowController
}

// WindowRegistry maps browser windows to their controllers.
type WindowRegistry struct {
	cfg RegistryConfig

	mu           sync.Mutex
	ctx          context.Context
	started      bool
	active       bool
	stylesLoaded bool
	windows      map[entity.WindowID]*trackedWindow
	unregister   func()
	cancelPrefs  func()
}

var _ port.WindowObserver = (*WindowRegistry)(nil)

// NewWindowRegistry creates a registry. Nothing happens until Start.
func NewWindowRegistry(cfg RegistryConfig) *WindowRegistry {
	if cfg.WindowType == "" {
		cfg.WindowType = port.BrowserWindowType
	}
	if cfg.MinPlatformVersion == 0 {
		cfg.MinPlatformVersion = DefaultMinPlatformVersion
	}
	return &WindowRegistry{
		cfg:     cfg,
		ctx:     context.Background(),
		windows: make(map[entity.WindowID]*trackedWindow),
	}
}

// Start checks the platform version, attaches to every open browser window,
// subscribes to window openings and registers the stylesheet. Only the first
// call does anything; a platform check failure is not retried.
func (r *WindowRegistry) Start(ctx context.Context) error {
	ctx = logging.WithComponent(ctx, "window-registry")
	log := logging.FromContext(ctx)

	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.ctx = ctx
	r.mu.Unlock()

	if r.cfg.Platform != nil {
		if v := r.cfg.Platform.PlatformVersion(); v < r.cfg.MinPlatformVersion {
			log.Error().Float64("version", v).Float64("min_version", r.cfg.MinPlatformVersion).Msg("startup error: version")
			return fmt.Errorf("%w: %g < %g", ErrUnsupportedPlatform, v, r.cfg.MinPlatformVersion)
		}
	}

	r.mu.Lock()
	r.active = true
	r.mu.Unlock()

	if prefs := r.cfg.Preferences; prefs != nil {
		r.cancelPrefs = prefs.Observe(r.PrefChanged)
		if r.cfg.DebugGate != nil {
			r.cfg.DebugGate.SetEnabled(prefs.Bool(debugPref, false))
		}
	}

	windows := r.cfg.Mediator.Windows(r.cfg.WindowType)
	for _, w := range windows {
		r.initWindow(w)
	}
	r.unregister = r.cfg.Mediator.RegisterNotification(r)
	r.loadStyles()

	log.Info().Int("windows", len(windows)).Msg("window registry started")
	return nil
}

// Stop detaches from every window. When exiting is true the application is
// going away: controllers leave the chrome untouched and the stylesheet stays
// registered.
func (r *WindowRegistry) Stop(ctx context.Context, exiting bool) {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	active := r.active
	r.active = false
	entries := make([]*trackedWindow, 0, len(r.windows))
	for _, entry := range r.windows {
		entries = append(entries, entry)
	}
	r.mu.Unlock()

	if !active {
		return
	}
	log := logging.FromContext(r.ctx)

	if r.unregister != nil {
		r.unregister()
		r.unregister = nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].state.ID < entries[j].state.ID })
	for _, entry := range entries {
		if entry.controller != nil {
			entry.controller.teardown(exiting)
		}
		r.releaseController(entry.state.ID)
	}

	if !exiting {
		r.unloadStyles()
	}
	if r.cancelPrefs != nil {
		r.cancelPrefs()
		r.cancelPrefs = nil
	}

	log.Info().Bool("exiting", exiting).Int("windows", len(entries)).Msg("window registry stopped")
}

// WindowOpened implements port.WindowObserver.
func (r *WindowRegistry) WindowOpened(w port.Window) {
	r.OnWindowOpened(w)
}

// WindowClosed implements port.WindowObserver.
func (r *WindowRegistry) WindowClosed(w port.Window) {
	r.OnWindowClosed(w, false)
}

// OnWindowOpened waits for w to finish loading before attaching to it.
func (r *WindowRegistry) OnWindowOpened(w port.Window) {
	log := logging.FromContext(r.ctx)

	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	entry := r.trackLocked(w)
	if err := entry.state.MarkPendingLoad(); err != nil {
		r.mu.Unlock()
		log.Debug().Err(err).Msg("window already tracked")
		return
	}
	r.mu.Unlock()

	// Registered outside the lock: a host may fire load synchronously.
	remove := w.AddEventListener(port.EventLoad, func(port.Event) {
		r.windowLoaded(w)
	})

	r.mu.Lock()
	if current, ok := r.windows[w.ID()]; ok && current == entry && entry.state.State == entity.WindowPendingLoad {
		entry.removeLoad = remove
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	remove()
}

// windowLoaded attaches to w if it is a browser window.
func (r *WindowRegistry) windowLoaded(w port.Window) {
	r.mu.Lock()
	entry, ok := r.windows[w.ID()]
	var remove func()
	if ok {
		remove = entry.removeLoad
		entry.removeLoad = nil
	}
	r.mu.Unlock()
	if remove != nil {
		remove()
	}

	if !r.IsMonitoredWindow(w) {
		r.releaseController(w.ID())
		return
	}
	r.initWindow(w)
}

// initWindow creates the controller of w. A failed creation releases the
// window again.
func (r *WindowRegistry) initWindow(w port.Window) {
	log := logging.FromContext(r.ctx)

	r.mu.Lock()
	entry := r.trackLocked(w)
	exists := entry.controller != nil
	r.mu.Unlock()
	if exists {
		return
	}

	c, err := newWindowController(r.ctx, controllerConfig{
		Window:       w,
		Display:      r.cfg.Display,
		Addons:       r.cfg.Addons,
		Dispatcher:   r.cfg.Dispatcher,
		SelectedSkin: r.cfg.SelectedSkin,
		OnRelease:    r.releaseController,
	})
	if err != nil {
		log.Error().Err(err).Str("window_id", string(w.ID())).Msg("startup error: cannot attach to window")
		r.releaseController(w.ID())
		return
	}

	r.mu.Lock()
	if err := entry.state.Activate(); err != nil {
		r.mu.Unlock()
		log.Error().Err(err).Msg("window vanished while attaching")
		c.teardown(false)
		return
	}
	entry.controller = c
	r.mu.Unlock()
}

// OnWindowClosed forgets a pending load of w and, on a genuine close, shuts
// its controller down. With appExit the controllers are left to Stop.
func (r *WindowRegistry) OnWindowClosed(w port.Window, appExit bool) {
	r.mu.Lock()
	entry, ok := r.windows[w.ID()]
	var remove func()
	var controller *WindowController
	if ok {
		remove = entry.removeLoad
		entry.removeLoad = nil
		controller = entry.controller
	}
	r.mu.Unlock()

	if remove != nil {
		remove()
		if controller == nil {
			r.releaseController(w.ID())
		}
	}

	if appExit || !r.IsMonitoredWindow(w) {
		return
	}
	if controller != nil {
		controller.Shutdown()
	}
}

// IsMonitoredWindow reports whether w is a top-level browser window.
func (r *WindowRegistry) IsMonitoredWindow(w port.Window) bool {
	root := w.Document().Root()
	if root == nil {
		return false
	}
	v, ok := root.Attribute("windowtype")
	return ok && v == r.cfg.WindowType
}

// PrefChanged receives preference changes.
func (r *WindowRegistry) PrefChanged(name string, value any) {
	if name != debugPref {
		return
	}
	enabled, _ := value.(bool)
	if r.cfg.DebugGate != nil {
		r.cfg.DebugGate.SetEnabled(enabled)
	}
	logging.FromContext(r.ctx).Info().Bool("debug", enabled).Msg("debug logging toggled")
}

// ReloadStyles unregisters and registers the stylesheet again. It does
// nothing while the stylesheet is not loaded.
func (r *WindowRegistry) ReloadStyles(ctx context.Context) {
	if !r.StylesLoaded() {
		return
	}
	logging.FromContext(ctx).Debug().Str("uri", r.cfg.StyleSheetURI).Msg("reloading styles")
	r.unloadStyles()
	r.loadStyles()
}

func (r *WindowRegistry) loadStyles() {
	if r.cfg.StyleSheets == nil {
		return
	}
	r.mu.Lock()
	if r.stylesLoaded {
		r.mu.Unlock()
		return
	}
	r.stylesLoaded = true
	r.mu.Unlock()

	if r.cfg.StyleSheets.IsRegistered(r.cfg.StyleSheetURI) {
		return
	}
	if err := r.cfg.StyleSheets.Load(r.cfg.StyleSheetURI); err != nil {
		logging.FromContext(r.ctx).Error().Err(err).Str("uri", r.cfg.StyleSheetURI).Msg("failed to load stylesheet")
	}
}

func (r *WindowRegistry) unloadStyles() {
	if r.cfg.StyleSheets == nil {
		return
	}
	r.mu.Lock()
	if !r.stylesLoaded {
		r.mu.Unlock()
		return
	}
	r.stylesLoaded = false
	r.mu.Unlock()

	if !r.cfg.StyleSheets.IsRegistered(r.cfg.StyleSheetURI) {
		return
	}
	if err := r.cfg.StyleSheets.Unload(r.cfg.StyleSheetURI); err != nil {
		logging.FromContext(r.ctx).Error().Err(err).Str("uri", r.cfg.StyleSheetURI).Msg("failed to unload stylesheet")
	}
}

// StylesLoaded reports whether the registry holds the stylesheet registration.
func (r *WindowRegistry) StylesLoaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stylesLoaded
}

// releaseController forgets the window with id. Every teardown path ends
// here.
func (r *WindowRegistry) releaseController(id entity.WindowID) {
	r.mu.Lock()
	entry, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	entry.state.Destroy()
	remove := entry.removeLoad
	entry.removeLoad = nil
	entry.controller = nil
	delete(r.windows, id)
	r.mu.Unlock()

	if remove != nil {
		remove()
	}
}

func (r *WindowRegistry) trackLocked(w port.Window) *trackedWindow {
	entry, ok := r.windows[w.ID()]
	if !ok {
		entry = &trackedWindow{window: w, state: entity.NewTrackedWindow(w.ID())}
		r.windows[w.ID()] = entry
	}
	return entry
}

// Controllers returns the live controllers ordered by window id.
func (r *WindowRegistry) Controllers() []*WindowController {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*WindowController, 0, len(r.windows))
	for _, entry := range r.windows {
		if entry.controller != nil && entry.state.IsActive() {
			out = append(out, entry.controller)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].window.ID() < out[j].window.ID() })
	return out
}

// Controller returns the controller of the window with id.
func (r *WindowRegistry) Controller(id entity.WindowID) (*WindowController, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.windows[id]
	if !ok || entry.controller == nil || !entry.state.IsActive() {
		return nil, false
	}
	return entry.controller, true
}

// State returns the lifecycle state of the window with id.
func (r *WindowRegistry) State(id entity.WindowID) entity.WindowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.windows[id]; ok {
		return entry.state.State
	}
	return entity.WindowUnregistered
}
