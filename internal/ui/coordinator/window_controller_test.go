package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/application/usecase"
	"github.com/bnema/pagetitle/internal/domain/address"
	"github.com/bnema/pagetitle/internal/domain/entity"
	"github.com/bnema/pagetitle/internal/infrastructure/addons"
	"github.com/bnema/pagetitle/internal/infrastructure/config"
	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
)

func childIDs(el port.Element) []string {
	var ids []string
	for _, child := range el.Children() {
		ids = append(ids, child.ID())
	}
	return ids
}

func TestWindowController_InjectsDisplaySlots(t *testing.T) {
	f := newFixture(t)
	w := f.openWindow(memhost.WindowOptions{})
	w.OpenTab("https://mail.example.co.uk/inbox", "Inbox")
	f.start(t)

	doc := w.Doc()
	assert.Equal(t, []string{memhost.DisplayBoxID, TitleSlotID}, childIDs(doc.Find(memhost.URLBarID)))
	assert.Equal(t, []string{memhost.IdentityLabelsID, HostPortBoxID}, childIDs(doc.Find(memhost.IdentityBoxID)))
	assert.Equal(t, []string{SubdomainLabelID, DomainLabelID, PortLabelID}, childIDs(doc.Find(HostPortBoxID)))

	titleSlot := doc.Find(TitleSlotID)
	assert.Equal(t, "textbox", titleSlot.Tag())
	readonly, _ := titleSlot.Attribute("readonly")
	assert.Equal(t, "true", readonly)
	crop, _ := doc.Find(DomainLabelID).Attribute("crop")
	assert.Equal(t, "end", crop)

	skin, ok := doc.Root().Attribute(SelectedSkinAttr)
	assert.True(t, ok)
	assert.Equal(t, "classic/1.0", skin)

	snap := f.controller(t, w).Snapshot()
	assert.Equal(t, "Inbox", snap.Title)
	assert.Equal(t, "mail.", snap.Subdomain)
	assert.Equal(t, "example.co.uk", snap.Domain)
	assert.Empty(t, snap.Port)
	assert.False(t, snap.NoTitle)
	assert.Equal(t, "none", snap.Labels)

	noTitle, ok := doc.Find(memhost.URLBarID).Attribute(NoTitleAttr)
	assert.True(t, ok)
	assert.Equal(t, "false", noTitle)
}

func TestWindowController_SynchronizeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	w := f.openWindow(memhost.WindowOptions{})
	w.OpenTab("https://example.com:8443/", "Example")
	f.start(t)

	c := f.controller(t, w)
	c.Synchronize(nil)
	first, firstState := c.Snapshot(), c.state
	c.Synchronize(nil)

	assert.Equal(t, first, c.Snapshot())
	assert.Equal(t, firstState, c.state)
	assert.Equal(t, ":8443", first.Port)
	assert.Empty(t, first.Subdomain)
	assert.Equal(t, "example.com", first.Domain)
}

func TestWindowController_FollowsSelectedTab(t *testing.T) {
	f := newFixture(t)
	w := f.openWindow(memhost.WindowOptions{})
	first := w.OpenTab("https://mail.example.co.uk/inbox", "Inbox")
	second := w.OpenTab("https://example.org/", "Org")
	f.start(t)
	c := f.controller(t, w)

	// background load
	second.Navigate("https://news.example.org/", "News")
	assert.Equal(t, "Inbox", c.Snapshot().Title)

	w.SelectTab(second)
	snap := c.Snapshot()
	assert.Equal(t, "News", snap.Title)
	assert.Equal(t, "news.", snap.Subdomain)
	assert.Equal(t, "example.org", snap.Domain)

	w.SelectTab(first)
	first.Navigate("ftp://files.example.org/pub/", "Files")
	snap = c.Snapshot()
	assert.Equal(t, "Files", snap.Title)
	assert.Equal(t, "files.", snap.Subdomain)
	assert.Equal(t, "example.org", snap.Domain)

	first.SetTitle("Files (2)")
	assert.Equal(t, "Files (2)", c.Snapshot().Title)
}

func TestWindowController_EventTargets(t *testing.T) {
	f := newFixture(t)
	w := f.openWindow(memhost.WindowOptions{})
	tab := w.OpenTab("https://example.com/", "Example")
	f.start(t)
	c := f.controller(t, w)

	tab.Update("https://example.com/other", "Other")

	c.HandleEvent(port.Event{Kind: port.EventTabSelect, TargetKind: port.TargetOther})
	assert.Equal(t, "Example", c.Snapshot().Title)

	c.HandleEvent(port.Event{Kind: port.EventLoad, TargetKind: port.TargetWindow})
	assert.Equal(t, "Example", c.Snapshot().Title, "load is not a synchronization trigger")

	c.HandleEvent(port.Event{Kind: port.EventDocumentLoaded, TargetKind: port.TargetDocument, Document: 9999})
	assert.Equal(t, "Example", c.Snapshot().Title, "unknown documents are ignored")

	c.HandleEvent(port.Event{Kind: port.EventTabAttrModified, TargetKind: port.TargetWindow})
	assert.Equal(t, "Other", c.Snapshot().Title)
}

func TestWindowController_NoTitle(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		title string
	}{
		{name: "placeholder", url: "about:newtab", title: "New Tab"},
		{name: "private browsing", url: "about:privatebrowsing", title: "Private Browsing"},
		{name: "network error", url: "about:neterror?e=connectionFailure", title: "Problem loading page"},
		{name: "title repeats address", url: "https://example.com/", title: "https://example.com/"},
		{name: "empty title", url: "https://example.com/", title: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.openWindow(memhost.WindowOptions{})
			w.OpenTab(tt.url, tt.title)
			f.start(t)

			snap := f.controller(t, w).Snapshot()
			assert.True(t, snap.NoTitle)
			assert.Empty(t, snap.Title)
			assert.Empty(t, snap.Subdomain)
			assert.Empty(t, snap.Domain)
			assert.Empty(t, snap.Port)
		})
	}
}

func TestWindowController_ClearsSlotsBetweenPages(t *testing.T) {
	f := newFixture(t)
	w := f.openWindow(memhost.WindowOptions{})
	tab := w.OpenTab("https://www.example.com:8080/", "Example")
	f.start(t)
	c := f.controller(t, w)
	require.Equal(t, ":8080", c.Snapshot().Port)

	tab.Navigate("about:home", "Home")
	snap := c.Snapshot()
	assert.True(t, snap.NoTitle)
	assert.Empty(t, snap.Port)
	assert.Empty(t, snap.Subdomain)
}

func TestWindowController_AddressForms(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		subdomain string
		domain    string
		port      string
	}{
		{name: "protocol token", url: "about:config", domain: "about:"},
		{name: "file", url: "file:///etc/hosts", domain: "file:"},
		{name: "ipv6", url: "https://[2001:db8::1]/", domain: "[2001:db8::1]"},
		{name: "ipv4", url: "http://192.168.0.10:8080/", domain: "192.168.0.10", port: ":8080"},
		{name: "legacy wrapper", url: "chrome://ietab/content/ie.xul#http://www.example.com/", subdomain: "www.", domain: "example.com"},
		{name: "uppercase scheme and host", url: "HTTPS://WWW.Example.com/", subdomain: "www.", domain: "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.openWindow(memhost.WindowOptions{})
			w.OpenTab(tt.url, "Page")
			f.start(t)

			snap := f.controller(t, w).Snapshot()
			assert.False(t, snap.NoTitle)
			assert.Equal(t, "Page", snap.Title)
			assert.Equal(t, tt.subdomain, snap.Subdomain)
			assert.Equal(t, tt.domain, snap.Domain)
			assert.Equal(t, tt.port, snap.Port)
		})
	}
}

func TestWindowController_DecomposeFailureShowsNoTitle(t *testing.T) {
	broken := address.BaseDomainFunc(func(host string) (string, error) {
		return "deeper." + host, nil
	})
	f := newFixture(t, func(cfg *RegistryConfig) {
		cfg.Display = usecase.NewResolveDisplayUseCase(broken)
	})
	w := f.openWindow(memhost.WindowOptions{})
	tab := w.OpenTab("https://www.example.com/", "Example")
	f.start(t)
	c := f.controller(t, w)

	snap := c.Snapshot()
	assert.True(t, snap.NoTitle)
	assert.Empty(t, snap.Title)
	assert.Empty(t, snap.Domain)

	// the controller survives and keeps handling events
	tab.Navigate("about:config", "Config")
	assert.False(t, c.Destroyed())
	assert.Equal(t, "about:", c.Snapshot().Domain)
}

func TestWindowController_FixedLabels(t *testing.T) {
	f := newFixture(t)

	tmp := f.openWindow(memhost.WindowOptions{Globals: []string{tabMixPlusGlobal}})
	tmp.OpenTab("https://example.com/", "Example").SetAttribute("fixed-label", "Pinned")

	renamed := f.openWindow(memhost.WindowOptions{Globals: []string{tabRenamizerGlobal}})
	renamed.OpenTab("https://example.com/", "Example").SetProperty("tr_label", "Renamed")

	f.start(t)

	assert.Equal(t, "Pinned", f.controller(t, tmp).Snapshot().Title)
	assert.Equal(t, "tab-mix-plus", f.controller(t, tmp).Snapshot().Labels)
	assert.Equal(t, "Renamed", f.controller(t, renamed).Snapshot().Title)
}

func TestWindowController_ThemeStyle(t *testing.T) {
	inventory := addons.NewInventory([]config.InstalledAddon{
		{ID: entity.ClassicThemeAddonID, Version: "25.0.1"},
	})
	f := newFixture(t, func(cfg *RegistryConfig) { cfg.Addons = inventory })
	w := f.openWindow(memhost.WindowOptions{})
	f.start(t)

	inventory.Wait()
	f.host.Drain()

	style, ok := w.Doc().Root().Attribute(ThemeStyleAttr)
	assert.True(t, ok)
	assert.Equal(t, "25", style)
	assert.Equal(t, "25", f.controller(t, w).Snapshot().ThemeStyle)
}

func TestWindowController_ThemeStyleAfterDestroyIsInert(t *testing.T) {
	inventory := addons.NewInventory([]config.InstalledAddon{
		{ID: entity.ClassicThemeAddonID, Version: "14.2"},
	})
	f := newFixture(t, func(cfg *RegistryConfig) { cfg.Addons = inventory })
	w := f.openWindow(memhost.WindowOptions{})
	f.start(t)

	inventory.Wait()
	f.controller(t, w).Destroy()
	f.host.Drain()

	_, ok := w.Doc().Root().Attribute(ThemeStyleAttr)
	assert.False(t, ok)
}

func TestWindowController_ThemeAddonMissing(t *testing.T) {
	inventory := addons.NewInventory(nil)
	f := newFixture(t, func(cfg *RegistryConfig) { cfg.Addons = inventory })
	w := f.openWindow(memhost.WindowOptions{})
	f.start(t)

	inventory.Wait()
	f.host.Drain()

	_, ok := w.Doc().Root().Attribute(ThemeStyleAttr)
	assert.False(t, ok)
}

func TestWindowController_Destroy(t *testing.T) {
	f := newFixture(t)
	w := f.openWindow(memhost.WindowOptions{})
	w.OpenTab("https://example.com/", "Example")
	f.start(t)
	c := f.controller(t, w)

	c.Destroy()
	c.Destroy()

	doc := w.Doc()
	assert.Nil(t, doc.Find(TitleSlotID))
	assert.Nil(t, doc.Find(HostPortBoxID))
	_, ok := doc.Root().Attribute(SelectedSkinAttr)
	assert.False(t, ok)
	_, ok = doc.Find(memhost.URLBarID).Attribute(NoTitleAttr)
	assert.False(t, ok)

	for _, kind := range []port.EventKind{port.EventUnload, port.EventTabSelect, port.EventTabAttrModified, port.EventDocumentLoaded} {
		assert.Zero(t, w.ListenerCount(kind), kind)
	}

	_, ok = f.registry.Controller(w.ID())
	assert.False(t, ok)
	assert.Equal(t, entity.WindowUnregistered, f.registry.State(w.ID()))
	assert.True(t, c.Destroyed())

	// events after teardown change nothing
	c.Synchronize(nil)
	assert.Nil(t, doc.Find(TitleSlotID))
}

func TestWindowController_UnloadDestroys(t *testing.T) {
	f := newFixture(t)
	w := f.openWindow(memhost.WindowOptions{})
	w.OpenTab("https://example.com/", "Example")
	f.start(t)
	c := f.controller(t, w)

	f.host.CloseWindow(w)

	assert.True(t, c.Destroyed())
	assert.Empty(t, f.registry.Controllers())
	assert.Zero(t, w.ListenerCount(port.EventUnload))
}

func TestWindowController_WindowsAreIndependent(t *testing.T) {
	f := newFixture(t)
	a := f.openWindow(memhost.WindowOptions{})
	tabA := a.OpenTab("https://mail.example.com/", "Mail")
	b := f.openWindow(memhost.WindowOptions{})
	b.OpenTab("https://docs.example.org/", "Docs")
	f.start(t)

	before := f.controller(t, b).Snapshot()
	tabA.Navigate("https://www.example.net/", "Net")

	assert.Equal(t, "Net", f.controller(t, a).Snapshot().Title)
	assert.Equal(t, before, f.controller(t, b).Snapshot())
	assert.Equal(t, "https://docs.example.org/", f.controller(t, b).state.LastURL)
}

func TestWindowController_MissingAnchor(t *testing.T) {
	f := newFixture(t)
	bare := f.openWindow(memhost.WindowOptions{WithoutURLBar: true})
	ok := f.openWindow(memhost.WindowOptions{})
	f.start(t)

	_, found := f.registry.Controller(bare.ID())
	assert.False(t, found)
	assert.Nil(t, bare.Doc().Find(TitleSlotID))
	_, skin := bare.Doc().Root().Attribute(SelectedSkinAttr)
	assert.False(t, skin)
	assert.Zero(t, bare.ListenerCount(port.EventTabSelect))

	f.controller(t, ok)
}

func TestNewWindowController_MissingAnchorError(t *testing.T) {
	f := newFixture(t)
	bare := f.openWindow(memhost.WindowOptions{WithoutURLBar: true})

	c, err := newWindowController(context.Background(), controllerConfig{
		Window:  bare,
		Display: usecase.NewResolveDisplayUseCase(nil),
	})

	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrInjectionTargetMissing)
}

func TestWindowController_WithoutContentArea(t *testing.T) {
	f := newFixture(t)
	w := f.openWindow(memhost.WindowOptions{WithoutContentArea: true})
	tab := w.OpenTab("https://example.com/", "Example")
	f.start(t)
	c := f.controller(t, w)

	tab.SetTitle("Changed")
	assert.Equal(t, "Changed", c.Snapshot().Title)
}
