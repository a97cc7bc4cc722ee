package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/application/usecase"
	"github.com/bnema/pagetitle/internal/domain/address"
	"github.com/bnema/pagetitle/internal/domain/entity"
	"github.com/bnema/pagetitle/internal/logging"
)

// ErrInjectionTargetMissing is returned when the browser chrome lacks an
// element the display slots are attached to.
var ErrInjectionTargetMissing = errors.New("injection target missing")

// Ids of the injected display elements.
const (
	TitleSlotID      = "urlbar-pagetitle"
	HostPortBoxID    = "identity-icon-hostport-box"
	SubdomainLabelID = "identity-icon-subdomain"
	DomainLabelID    = "identity-icon-domain"
	PortLabelID      = "identity-icon-port"
)

// Ids of the chrome elements the display slots are anchored to.
const (
	titleAnchorID    = "urlbar-display-box"
	identityBoxID    = "identity-box"
	hostPortAnchorID = "identity-icon-labels"
)

// Attributes read by stylesheets.
const (
	NoTitleAttr      = "no-title"
	SelectedSkinAttr = "selectedSkin"
	ThemeStyleAttr   = "pageTitleThemeStyle"
)

// DisplaySnapshot is what a window's display slots currently show.
type DisplaySnapshot struct {
	WindowID   entity.WindowID
	Title      string
	Subdomain  string
	Domain     string
	Port       string
	NoTitle    bool
	ThemeStyle string
	Labels     string
}

// controllerConfig carries the dependencies of one window controller.
type controllerConfig struct {
	Window       port.Window
	Display      *usecase.ResolveDisplayUseCase
	Addons       port.AddonInventory
	Dispatcher   port.Dispatcher
	SelectedSkin string
	// OnRelease is called once when the controller is torn down.
	OnRelease func(id entity.WindowID)
}

// WindowController owns the display slots of one browser window and keeps
// them in sync with the selected tab.
type WindowController struct {
	ctx     context.Context
	cancel  context.CancelFunc
	window  port.Window
	display *usecase.ResolveDisplayUseCase
	labels  LabelProvider

	titleSlot   port.Element
	hostPortBox port.Element
	subdomain   port.Element
	domain      port.Element
	port        port.Element

	onRelease func(id entity.WindowID)
	removers  []func()
	state     entity.SyncState

	mu        sync.Mutex
	destroyed bool
}

// newWindowController injects the display slots into cfg.Window, subscribes
// to its tab and document events and runs a first synchronization.
func newWindowController(ctx context.Context, cfg controllerConfig) (*WindowController, error) {
	w := cfg.Window
	ctx = logging.WithWindowID(ctx, string(w.ID()))
	log := logging.FromContext(ctx)

	doc := w.Document()
	titleAnchor := doc.ElementByID(titleAnchorID)
	identityBox := doc.ElementByID(identityBoxID)
	hostPortAnchor := doc.ElementByID(hostPortAnchorID)
	switch {
	case titleAnchor == nil || titleAnchor.Parent() == nil:
		return nil, fmt.Errorf("window %s: %w: #%s", w.ID(), ErrInjectionTargetMissing, titleAnchorID)
	case identityBox == nil:
		return nil, fmt.Errorf("window %s: %w: #%s", w.ID(), ErrInjectionTargetMissing, identityBoxID)
	case hostPortAnchor == nil || hostPortAnchor.Parent() == nil:
		return nil, fmt.Errorf("window %s: %w: #%s", w.ID(), ErrInjectionTargetMissing, hostPortAnchorID)
	}

	lookupCtx, cancel := context.WithCancel(ctx)
	c := &WindowController{
		ctx:       lookupCtx,
		cancel:    cancel,
		window:    w,
		display:   cfg.Display,
		labels:    probeLabelProvider(w),
		onRelease: cfg.OnRelease,
	}

	doc.Root().SetAttribute(SelectedSkinAttr, cfg.SelectedSkin)
	c.lookupThemeStyle(cfg.Addons, cfg.Dispatcher)

	c.titleSlot = doc.CreateElement("textbox")
	c.titleSlot.SetAttribute("id", TitleSlotID)
	c.titleSlot.SetAttribute("align", "center")
	c.titleSlot.SetAttribute("readonly", "true")
	titleAnchor.Parent().InsertAfter(c.titleSlot, titleAnchor)

	c.hostPortBox = doc.CreateElement("hbox")
	c.hostPortBox.SetAttribute("id", HostPortBoxID)
	c.hostPortBox.SetAttribute("flex", "1")
	c.hostPortBox.SetAttribute("align", "center")
	hostPortAnchor.Parent().InsertAfter(c.hostPortBox, hostPortAnchor)

	c.subdomain = c.newLabel(doc, SubdomainLabelID)
	c.domain = c.newLabel(doc, DomainLabelID)
	c.port = c.newLabel(doc, PortLabelID)

	c.removers = append(c.removers,
		w.AddEventListener(port.EventUnload, c.HandleEvent),
		w.TabContainer().AddEventListener(port.EventTabAttrModified, c.HandleEvent),
		w.TabContainer().AddEventListener(port.EventTabSelect, c.HandleEvent),
	)
	if content, ok := w.ContentArea(); ok {
		c.removers = append(c.removers, content.AddEventListener(port.EventDocumentLoaded, c.HandleEvent))
	}

	c.Synchronize(nil)

	log.Debug().Str("labels", c.labels.Name()).Msg("window controller created")
	return c, nil
}

func (c *WindowController) newLabel(doc port.Document, id string) port.Element {
	label := doc.CreateElement("label")
	label.SetAttribute("id", id)
	label.SetAttribute("flex", "1")
	label.SetAttribute("class", "plain")
	label.SetAttribute("crop", "end")
	c.hostPortBox.AppendChild(label)
	return label
}

// lookupThemeStyle tags the window root with the classic theme bucket once
// the add-on inventory answers. The answer is applied on the UI thread and
// dropped when the controller is gone by then.
func (c *WindowController) lookupThemeStyle(addons port.AddonInventory, dispatcher port.Dispatcher) {
	if addons == nil {
		return
	}
	log := logging.FromContext(c.ctx)

	addons.AddonVersion(c.ctx, entity.ClassicThemeAddonID, func(version string, ok bool) {
		apply := func() {
			if c.Destroyed() {
				return
			}
			if !ok {
				log.Debug().Msg("classic theme add-on not installed")
				return
			}
			style, valid := entity.ClassifyThemeVersion(version)
			if !valid {
				log.Warn().Str("version", version).Msg("unrecognized classic theme version")
				return
			}
			c.window.Document().Root().SetAttribute(ThemeStyleAttr, style.String())
		}
		if dispatcher == nil {
			apply()
			return
		}
		dispatcher.Post(apply)
	})
}

// Window returns the controlled window.
func (c *WindowController) Window() port.Window { return c.window }

// Destroyed reports whether the controller was torn down.
func (c *WindowController) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Destroy removes the listeners, root attributes and display slots, and
// releases the window from its registry. Calling it again does nothing.
func (c *WindowController) Destroy() {
	c.teardown(false)
}

// Shutdown is Destroy on the window close path.
func (c *WindowController) Shutdown() {
	logging.FromContext(c.ctx).Debug().Msg("window controller shutdown")
	c.teardown(false)
}

// teardown destroys the controller. When the application is exiting the
// window's chrome is left as it is.
func (c *WindowController) teardown(exiting bool) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.mu.Unlock()

	c.cancel()
	for _, remove := range c.removers {
		remove()
	}
	c.removers = nil

	if !exiting {
		root := c.window.Document().Root()
		root.RemoveAttribute(SelectedSkinAttr)
		root.RemoveAttribute(ThemeStyleAttr)
		if parent := c.titleSlot.Parent(); parent != nil {
			parent.RemoveAttribute(NoTitleAttr)
		}
		c.titleSlot.Remove()
		c.hostPortBox.Remove()
	}

	if c.onRelease != nil {
		c.onRelease(c.window.ID())
	}
	logging.FromContext(c.ctx).Debug().Bool("exiting", exiting).Msg("window controller destroyed")
}

// HandleEvent routes a host event to the controller.
func (c *WindowController) HandleEvent(ev port.Event) {
	switch ev.Kind {
	case port.EventUnload:
		c.Destroy()
	case port.EventDocumentLoaded, port.EventTabAttrModified, port.EventTabSelect:
		c.Synchronize(&ev)
	}
}

// Synchronize renders the selected tab's title and address parts. ev is the
// triggering event, or nil for an unconditional pass.
func (c *WindowController) Synchronize(ev *port.Event) {
	if c.Destroyed() {
		return
	}
	selected := c.window.SelectedTab()
	if selected == nil {
		return
	}
	if ev != nil && !c.concernsSelectedTab(*ev, selected) {
		return
	}

	url, rawTitle := selected.URL(), selected.Title()
	if c.state.Matches(url, rawTitle) {
		return
	}
	c.state.Record(url, rawTitle)

	c.clearSlots()
	shown := c.render(selected)
	if parent := c.titleSlot.Parent(); parent != nil {
		parent.SetAttribute(NoTitleAttr, strconv.FormatBool(!shown))
	}
}

// concernsSelectedTab reports whether ev is about the tab currently shown in
// the address bar. Loads of background documents are ignored.
func (c *WindowController) concernsSelectedTab(ev port.Event, selected port.Tab) bool {
	var tab port.Tab
	switch {
	case ev.Kind == port.EventDocumentLoaded:
		tab = c.window.TabForDocument(ev.Document)
	case ev.TargetKind == port.TargetTab:
		tab = ev.Tab
	case ev.TargetKind == port.TargetWindow:
		tab = selected
	default:
		return false
	}
	return tab != nil && tab.URL() == selected.URL()
}

// render fills the slots for tab and reports whether a title is shown.
// Failures leave every slot empty.
func (c *WindowController) render(tab port.Tab) (shown bool) {
	log := logging.FromContext(c.ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("url", tab.URL()).Msg("failed to synchronize page title")
			c.clearSlots()
			shown = false
		}
	}()

	out, err := c.display.Execute(c.ctx, usecase.DisplayInput{
		Title: tab.Title(),
		URL:   tab.ASCIIURL(),
		Label: c.labels.Label(tab),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve page title display")
		c.clearSlots()
		return false
	}
	if !out.ShowTitle {
		return false
	}

	c.titleSlot.SetValue(out.Title)
	switch out.Parts.Kind {
	case address.KindProtocol:
		c.domain.SetValue(out.Parts.Token)
	case address.KindHostParts:
		c.subdomain.SetValue(out.Parts.Subdomain)
		c.domain.SetValue(out.Parts.Domain)
		c.port.SetValue(out.Parts.Port)
	}
	return true
}

func (c *WindowController) clearSlots() {
	for _, el := range []port.Element{c.titleSlot, c.subdomain, c.domain, c.port} {
		el.SetValue("")
	}
}

// Snapshot returns what the display slots show.
func (c *WindowController) Snapshot() DisplaySnapshot {
	snap := DisplaySnapshot{
		WindowID:  c.window.ID(),
		Title:     c.titleSlot.Value(),
		Subdomain: c.subdomain.Value(),
		Domain:    c.domain.Value(),
		Port:      c.port.Value(),
		Labels:    c.labels.Name(),
	}
	if parent := c.titleSlot.Parent(); parent != nil {
		v, _ := parent.Attribute(NoTitleAttr)
		snap.NoTitle = v == "true"
	}
	snap.ThemeStyle, _ = c.window.Document().Root().Attribute(ThemeStyleAttr)
	return snap
}
