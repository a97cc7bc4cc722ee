package memhost

import (
	"slices"
	"sync"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/domain/entity"
)

// WindowOptions shape a new window.
type WindowOptions struct {
	// Type is the windowtype root attribute; defaults to a browser window.
	Type string
	// WithoutURLBar leaves out the address bar and identity box.
	WithoutURLBar bool
	// WithoutContentArea leaves out the content area.
	WithoutContentArea bool
	// Globals are names HasGlobal reports, as if set by other extensions.
	Globals []string
}

// Window is an in-memory top-level window.
type Window struct {
	host       *Host
	id         entity.WindowID
	windowType string
	doc        *Document

	events       target
	tabContainer target
	contentArea  *target

	// loaded and closed are guarded by host.mu.
	loaded bool
	closed bool

	mu       sync.Mutex
	tabs     []*Tab
	selected *Tab
	globals  map[string]bool
}

var _ port.Window = (*Window)(nil)

// OpenWindow creates a window and notifies observers. The window is not
// loaded until FinishLoad.
func (h *Host) OpenWindow(opts WindowOptions) *Window {
	if opts.Type == "" {
		opts.Type = port.BrowserWindowType
	}

	h.mu.Lock()
	w := &Window{
		host:       h,
		id:         h.newWindowID(),
		windowType: opts.Type,
		doc:        buildChrome(opts),
		globals:    make(map[string]bool),
	}
	if !opts.WithoutContentArea {
		w.contentArea = &target{}
	}
	for _, g := range opts.Globals {
		w.globals[g] = true
	}
	h.windows = append(h.windows, w)
	h.mu.Unlock()

	for _, obs := range h.observersSnapshot() {
		obs.WindowOpened(w)
	}
	return w
}

// buildChrome creates the browser chrome document:
//
//	window[windowtype]
//	  toolbar
//	    identity-box > identity-icon-labels
//	    urlbar > urlbar-display-box
//	  appcontent
func buildChrome(opts WindowOptions) *Document {
	doc := newDocument("window")
	root := doc.RootElement()
	root.SetAttribute("windowtype", opts.Type)

	if !opts.WithoutURLBar {
		toolbar := doc.NewElement("toolbar", "nav-bar")
		root.AppendChild(toolbar)

		identity := doc.NewElement("box", IdentityBoxID)
		identity.AppendChild(doc.NewElement("box", IdentityLabelsID))
		toolbar.AppendChild(identity)

		urlbar := doc.NewElement("textbox", URLBarID)
		urlbar.AppendChild(doc.NewElement("box", DisplayBoxID))
		toolbar.AppendChild(urlbar)
	}
	if !opts.WithoutContentArea {
		root.AppendChild(doc.NewElement("vbox", ContentAreaID))
	}
	return doc
}

// FinishLoad marks the window loaded and dispatches its load event.
func (w *Window) FinishLoad() {
	w.host.mu.Lock()
	if w.loaded || w.closed {
		w.host.mu.Unlock()
		return
	}
	w.loaded = true
	w.host.mu.Unlock()

	w.events.dispatch(port.Event{Kind: port.EventLoad, TargetKind: port.TargetWindow})
}

// CloseWindow unloads w, forgets it and notifies observers.
func (h *Host) CloseWindow(w *Window) {
	h.mu.Lock()
	if w.closed {
		h.mu.Unlock()
		return
	}
	w.closed = true
	loaded := w.loaded
	if idx := slices.Index(h.windows, w); idx >= 0 {
		h.windows = slices.Delete(h.windows, idx, idx+1)
	}
	h.mu.Unlock()

	if loaded {
		w.events.dispatch(port.Event{Kind: port.EventUnload, TargetKind: port.TargetWindow})
	}
	for _, obs := range h.observersSnapshot() {
		obs.WindowClosed(w)
	}
}

// ID implements port.Window.
func (w *Window) ID() entity.WindowID { return w.id }

// WindowType returns the window's type.
func (w *Window) WindowType() string { return w.windowType }

// Document implements port.Window.
func (w *Window) Document() port.Document { return w.doc }

// Doc is Document with the concrete type.
func (w *Window) Doc() *Document { return w.doc }

// Loaded reports whether FinishLoad ran.
func (w *Window) Loaded() bool {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	return w.loaded
}

// Closed reports whether the window was closed.
func (w *Window) Closed() bool {
	w.host.mu.Lock()
	defer w.host.mu.Unlock()
	return w.closed
}

// AddEventListener implements port.EventTarget for window events.
func (w *Window) AddEventListener(kind port.EventKind, handler port.EventHandler) func() {
	return w.events.AddEventListener(kind, handler)
}

// TabContainer implements port.Window.
func (w *Window) TabContainer() port.EventTarget {
	return &w.tabContainer
}

// ContentArea implements port.Window.
func (w *Window) ContentArea() (port.EventTarget, bool) {
	if w.contentArea == nil {
		return nil, false
	}
	return w.contentArea, true
}

// HasGlobal implements port.Window.
func (w *Window) HasGlobal(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.globals[name]
}

// SelectedTab implements port.Window.
func (w *Window) SelectedTab() port.Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil {
		return nil
	}
	return w.selected
}

// Selected is SelectedTab with the concrete type.
func (w *Window) Selected() *Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// TabForDocument implements port.Window.
func (w *Window) TabForDocument(doc entity.DocumentID) port.Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.tabs {
		if t.Doc() == doc {
			return t
		}
	}
	return nil
}

// Tabs returns the window's tabs in order.
func (w *Window) Tabs() []*Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Tab(nil), w.tabs...)
}

// Tab returns the tab with id.
func (w *Window) Tab(id entity.TabID) (*Tab, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.tabs {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// OpenTab adds a tab showing url. The first tab of a window becomes the
// selected one; on an already loaded window TabSelect is dispatched for it.
func (w *Window) OpenTab(url, title string) *Tab {
	h := w.host
	h.mu.Lock()
	h.nextDoc++
	t := &Tab{
		window: w,
		id:     h.newTabID(),
		url:    url,
		title:  title,
		doc:    h.nextDoc,
		attrs:  make(map[string]string),
		props:  make(map[string]string),
	}
	loaded := w.loaded
	h.mu.Unlock()

	w.mu.Lock()
	w.tabs = append(w.tabs, t)
	first := w.selected == nil
	if first {
		w.selected = t
	}
	w.mu.Unlock()

	if first && loaded {
		w.tabContainer.dispatch(port.Event{Kind: port.EventTabSelect, TargetKind: port.TargetTab, Tab: t})
	}
	return t
}

// SelectTab makes t the selected tab and dispatches TabSelect.
func (w *Window) SelectTab(t *Tab) {
	w.mu.Lock()
	if w.selected == t || !slices.Contains(w.tabs, t) {
		w.mu.Unlock()
		return
	}
	w.selected = t
	w.mu.Unlock()

	w.tabContainer.dispatch(port.Event{Kind: port.EventTabSelect, TargetKind: port.TargetTab, Tab: t})
}

// CloseTab removes t. When t was selected its right neighbour, or else its
// left one, becomes selected.
func (w *Window) CloseTab(t *Tab) {
	w.mu.Lock()
	idx := slices.Index(w.tabs, t)
	if idx < 0 {
		w.mu.Unlock()
		return
	}
	w.tabs = slices.Delete(w.tabs, idx, idx+1)
	var next *Tab
	if w.selected == t {
		w.selected = nil
		switch {
		case idx < len(w.tabs):
			next = w.tabs[idx]
		case len(w.tabs) > 0:
			next = w.tabs[len(w.tabs)-1]
		}
		w.selected = next
	}
	w.mu.Unlock()

	if next != nil {
		w.tabContainer.dispatch(port.Event{Kind: port.EventTabSelect, TargetKind: port.TargetTab, Tab: next})
	}
}

// ListenerCount returns the number of listeners of kind on the window, its
// tab container and its content area together.
func (w *Window) ListenerCount(kind port.EventKind) int {
	n := w.events.count(kind) + w.tabContainer.count(kind)
	if w.contentArea != nil {
		n += w.contentArea.count(kind)
	}
	return n
}

// DispatchToContent dispatches ev on the content area, if any.
func (w *Window) DispatchToContent(ev port.Event) {
	if w.contentArea != nil {
		w.contentArea.dispatch(ev)
	}
}

// DispatchToTabs dispatches ev on the tab container.
func (w *Window) DispatchToTabs(ev port.Event) {
	w.tabContainer.dispatch(ev)
}
