package cdp

import (
	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"

	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
)

// pageTargetType is the target type of browser tabs.
const pageTargetType = "page"

type mirroredTab struct {
	window browser.WindowID
	tab    *memhost.Tab
}

// Mirror reflects Chrome page targets into a memhost.Host: one host window
// per browser window and one host tab per page target. It is not safe for
// concurrent use; the driver calls it from the host's UI loop only.
type Mirror struct {
	host    *memhost.Host
	windows map[browser.WindowID]*memhost.Window
	tabs    map[target.ID]*mirroredTab
}

// NewMirror creates a mirror writing into host.
func NewMirror(host *memhost.Host) *Mirror {
	return &Mirror{
		host:    host,
		windows: make(map[browser.WindowID]*memhost.Window),
		tabs:    make(map[target.ID]*mirroredTab),
	}
}

// AddTarget mirrors a page target living in browser window win. With
// activate the new tab becomes the selected one. Known targets are updated
// instead.
func (m *Mirror) AddTarget(info *target.Info, win browser.WindowID, activate bool) {
	if info == nil || info.Type != pageTargetType {
		return
	}
	if _, ok := m.tabs[info.TargetID]; ok {
		m.UpdateTarget(info)
		return
	}

	w, ok := m.windows[win]
	if !ok {
		w = m.host.OpenWindow(memhost.WindowOptions{})
		w.FinishLoad()
		m.windows[win] = w
	}

	tab := w.OpenTab(info.URL, info.Title)
	m.tabs[info.TargetID] = &mirroredTab{window: win, tab: tab}
	if activate {
		w.SelectTab(tab)
	}
}

// UpdateTarget applies a changed address or title. A changed address
// without a document load keeps the current document, like a same-document
// navigation.
func (m *Mirror) UpdateTarget(info *target.Info) {
	if info == nil {
		return
	}
	t, ok := m.tabs[info.TargetID]
	if !ok {
		return
	}

	switch {
	case t.tab.URL() != info.URL:
		t.tab.Update(info.URL, t.tab.Title())
		t.tab.SetTitle(info.Title)
	case t.tab.Title() != info.Title:
		t.tab.SetTitle(info.Title)
	}
}

// DocumentLoaded records that the target finished parsing a new document.
func (m *Mirror) DocumentLoaded(id target.ID) {
	if t, ok := m.tabs[id]; ok {
		t.tab.Navigate(t.tab.URL(), t.tab.Title())
	}
}

// Activate selects the tab of target id.
func (m *Mirror) Activate(id target.ID) {
	t, ok := m.tabs[id]
	if !ok {
		return
	}
	if w, ok := m.windows[t.window]; ok {
		w.SelectTab(t.tab)
	}
}

// RemoveTarget forgets a target. A window losing its last tab is closed.
func (m *Mirror) RemoveTarget(id target.ID) {
	t, ok := m.tabs[id]
	if !ok {
		return
	}
	delete(m.tabs, id)

	w, ok := m.windows[t.window]
	if !ok {
		return
	}
	w.CloseTab(t.tab)
	if len(w.Tabs()) == 0 {
		delete(m.windows, t.window)
		m.host.CloseWindow(w)
	}
}

// Close closes every mirrored window.
func (m *Mirror) Close() {
	for id, w := range m.windows {
		delete(m.windows, id)
		m.host.CloseWindow(w)
	}
	m.tabs = make(map[target.ID]*mirroredTab)
}

// Tab returns the host tab of target id.
func (m *Mirror) Tab(id target.ID) (*memhost.Tab, bool) {
	t, ok := m.tabs[id]
	if !ok {
		return nil, false
	}
	return t.tab, true
}

// Window returns the host window of browser window win.
func (m *Mirror) Window(win browser.WindowID) (*memhost.Window, bool) {
	w, ok := m.windows[win]
	return w, ok
}

// TabCount returns the number of mirrored targets.
func (m *Mirror) TabCount() int {
	return len(m.tabs)
}
