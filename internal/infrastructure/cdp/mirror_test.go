package cdp

import (
	"context"
	"testing"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/bootstrap"
	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
)

func pageInfo(id, url, title string) *target.Info {
	return &target.Info{TargetID: target.ID(id), Type: "page", URL: url, Title: title}
}

func TestMirror_GroupsTargetsByWindow(t *testing.T) {
	h := memhost.New(0)
	m := NewMirror(h)

	m.AddTarget(pageInfo("A", "https://example.com/", "Example"), 1, false)
	m.AddTarget(pageInfo("B", "https://example.org/", "Org"), 1, false)
	m.AddTarget(pageInfo("C", "https://example.net/", "Net"), 2, false)
	m.AddTarget(&target.Info{TargetID: "W", Type: "service_worker", URL: "https://example.com/sw.js"}, 1, false)

	assert.Equal(t, 3, m.TabCount())
	require.Len(t, h.Windows(port.BrowserWindowType), 2)

	w1, ok := m.Window(1)
	require.True(t, ok)
	assert.Len(t, w1.Tabs(), 2)
	assert.Equal(t, "https://example.com/", w1.SelectedTab().URL(), "first tab stays selected")
}

func TestMirror_ActivateOnCreate(t *testing.T) {
	h := memhost.New(0)
	m := NewMirror(h)

	m.AddTarget(pageInfo("A", "https://example.com/", "Example"), 1, false)
	w, _ := m.Window(1)

	selects := 0
	w.TabContainer().AddEventListener(port.EventTabSelect, func(port.Event) { selects++ })

	m.AddTarget(pageInfo("B", "https://example.org/", "Org"), 1, true)
	assert.Equal(t, "https://example.org/", w.SelectedTab().URL())
	assert.Equal(t, 1, selects)

	m.Activate("A")
	assert.Equal(t, "https://example.com/", w.SelectedTab().URL())
	m.Activate("missing")
}

func TestMirror_UpdateTarget(t *testing.T) {
	h := memhost.New(0)
	m := NewMirror(h)
	m.AddTarget(pageInfo("A", "https://example.com/", "Example"), 1, false)
	w, _ := m.Window(1)

	var events []port.Event
	w.TabContainer().AddEventListener(port.EventTabAttrModified, func(ev port.Event) { events = append(events, ev) })

	m.UpdateTarget(pageInfo("A", "https://example.com/", "Example"))
	assert.Empty(t, events, "unchanged info dispatches nothing")

	m.UpdateTarget(pageInfo("A", "https://example.com/", "Renamed"))
	require.Len(t, events, 1)

	tab, ok := m.Tab("A")
	require.True(t, ok)
	doc := tab.Doc()

	m.UpdateTarget(pageInfo("A", "https://example.com/#section", "Renamed"))
	assert.Equal(t, "https://example.com/#section", tab.URL())
	assert.Equal(t, doc, tab.Doc(), "same-document navigation keeps the document")
	assert.Len(t, events, 2)

	m.UpdateTarget(pageInfo("unknown", "https://example.com/", ""))
	m.UpdateTarget(nil)
}

func TestMirror_DocumentLoaded(t *testing.T) {
	h := memhost.New(0)
	m := NewMirror(h)
	m.AddTarget(pageInfo("A", "https://example.com/", "Example"), 1, false)
	w, _ := m.Window(1)

	var loaded []port.Event
	content, ok := w.ContentArea()
	require.True(t, ok)
	content.AddEventListener(port.EventDocumentLoaded, func(ev port.Event) { loaded = append(loaded, ev) })

	tab, _ := m.Tab("A")
	before := tab.Doc()
	m.DocumentLoaded("A")

	require.Len(t, loaded, 1)
	assert.NotEqual(t, before, tab.Doc())
	assert.Equal(t, port.Tab(tab), w.TabForDocument(loaded[0].Document))

	m.DocumentLoaded("missing")
	assert.Len(t, loaded, 1)
}

func TestMirror_RemoveTargetClosesEmptyWindow(t *testing.T) {
	h := memhost.New(0)
	m := NewMirror(h)
	m.AddTarget(pageInfo("A", "https://example.com/", "Example"), 7, false)
	m.AddTarget(pageInfo("B", "https://example.org/", "Org"), 7, false)
	w, _ := m.Window(7)

	m.RemoveTarget("A")
	assert.False(t, w.Closed())
	assert.Equal(t, "https://example.org/", w.SelectedTab().URL())

	m.RemoveTarget("B")
	assert.True(t, w.Closed())
	_, ok := m.Window(browser.WindowID(7))
	assert.False(t, ok)
	assert.Zero(t, m.TabCount())

	m.RemoveTarget("B")
}

func TestMirror_Close(t *testing.T) {
	h := memhost.New(0)
	m := NewMirror(h)
	m.AddTarget(pageInfo("A", "https://example.com/", "Example"), 1, false)
	m.AddTarget(pageInfo("B", "https://example.org/", "Org"), 2, false)

	m.Close()

	assert.Empty(t, h.AllWindows())
	assert.Zero(t, m.TabCount())
}

func TestParseProductVersion(t *testing.T) {
	tests := []struct {
		product string
		want    float64
		wantErr bool
	}{
		{product: "Chrome/120.0.6099.109", want: 120},
		{product: "HeadlessChrome/119.0.6045.105", want: 119},
		{product: "Chrome/24", want: 24},
		{product: "Chrome", wantErr: true},
		{product: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			got, err := ParseProductVersion(tt.product)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestMirror_WindowOpenedWhileRunning(t *testing.T) {
	h := memhost.New(120)
	comps := bootstrap.NewComponents(bootstrap.ComponentsInput{Host: h})
	ctx := context.Background()
	require.NoError(t, comps.Addon.Startup(ctx, bootstrap.AppStartup))
	t.Cleanup(func() { comps.Addon.Shutdown(ctx, bootstrap.AppShutdown) })

	m := NewMirror(h)
	m.AddTarget(pageInfo("A", "https://mail.example.com/inbox", "Inbox"), 7, true)
	comps.Addons.Wait()
	h.Drain()

	w, ok := m.Window(7)
	require.True(t, ok)
	ctrl, ok := comps.Registry.Controller(w.ID())
	require.True(t, ok)

	snap := ctrl.Snapshot()
	assert.Equal(t, "Inbox", snap.Title)
	assert.Equal(t, "mail.", snap.Subdomain)
	assert.Equal(t, "example.com", snap.Domain)
	assert.False(t, snap.NoTitle)
}
