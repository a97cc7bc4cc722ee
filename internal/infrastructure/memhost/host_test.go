package memhost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pagetitle/internal/application/port"
)

type windowEvents struct {
	opened []port.Window
	closed []port.Window
}

func (e *windowEvents) WindowOpened(w port.Window) { e.opened = append(e.opened, w) }
func (e *windowEvents) WindowClosed(w port.Window) { e.closed = append(e.closed, w) }

func TestHost_WindowLifecycle(t *testing.T) {
	h := New(60)
	obs := &windowEvents{}
	unregister := h.RegisterNotification(obs)

	w := h.OpenWindow(WindowOptions{})
	require.Len(t, obs.opened, 1)
	assert.Empty(t, h.Windows(port.BrowserWindowType), "unloaded windows are not listed")

	loads := 0
	w.AddEventListener(port.EventLoad, func(port.Event) { loads++ })
	unloads := 0
	w.AddEventListener(port.EventUnload, func(port.Event) { unloads++ })

	w.FinishLoad()
	w.FinishLoad()
	assert.Equal(t, 1, loads)
	assert.Len(t, h.Windows(port.BrowserWindowType), 1)
	assert.Empty(t, h.Windows("mail:3pane"))

	h.CloseWindow(w)
	h.CloseWindow(w)
	assert.Equal(t, 1, unloads)
	assert.Len(t, obs.closed, 1)
	assert.True(t, w.Closed())
	assert.Empty(t, h.AllWindows())

	unregister()
	assert.Zero(t, h.ObserverCount())
}

func TestHost_ChromeDocument(t *testing.T) {
	h := New(60)
	w := h.OpenWindow(WindowOptions{})
	doc := w.Document()

	v, ok := doc.Root().Attribute("windowtype")
	assert.True(t, ok)
	assert.Equal(t, port.BrowserWindowType, v)

	for _, id := range []string{IdentityBoxID, IdentityLabelsID, URLBarID, DisplayBoxID, ContentAreaID} {
		assert.NotNil(t, doc.ElementByID(id), id)
	}
	assert.Nil(t, doc.ElementByID("nope"))

	bare := h.OpenWindow(WindowOptions{Type: "devtools", WithoutURLBar: true, WithoutContentArea: true})
	assert.Nil(t, bare.Document().ElementByID(DisplayBoxID))
	_, ok = bare.ContentArea()
	assert.False(t, ok)
}

func TestElement_InsertAfterAndRemove(t *testing.T) {
	doc := newDocument("window")
	root := doc.RootElement()
	a := doc.NewElement("box", "a")
	c := doc.NewElement("box", "c")
	root.AppendChild(a)
	root.AppendChild(c)

	b := doc.CreateElement("label")
	b.SetAttribute("id", "b")
	root.InsertAfter(b, a)

	var ids []string
	for _, child := range root.Children() {
		ids = append(ids, child.ID())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, port.Element(root), b.Parent())
	assert.NotNil(t, doc.ElementByID("b"))

	b.Remove()
	assert.Nil(t, doc.ElementByID("b"))
	assert.Nil(t, b.Parent())
	assert.Len(t, root.Children(), 2)

	// ref as last child appends
	root.InsertAfter(b, c)
	assert.Equal(t, "b", root.Children()[2].ID())
}

func TestElement_Attributes(t *testing.T) {
	doc := newDocument("window")
	el := doc.NewElement("label", "x")

	el.SetAttribute("no-title", "true")
	v, ok := el.Attribute("no-title")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	el.RemoveAttribute("no-title")
	_, ok = el.Attribute("no-title")
	assert.False(t, ok)

	el.SetValue("Title")
	assert.Equal(t, "Title", el.Value())
	assert.False(t, el.Attached())
}

func TestWindow_TabsAndEvents(t *testing.T) {
	h := New(60)
	w := h.OpenWindow(WindowOptions{})
	w.FinishLoad()

	var got []port.Event
	record := func(ev port.Event) { got = append(got, ev) }
	w.TabContainer().AddEventListener(port.EventTabSelect, record)
	w.TabContainer().AddEventListener(port.EventTabAttrModified, record)
	content, ok := w.ContentArea()
	require.True(t, ok)
	remove := content.AddEventListener(port.EventDocumentLoaded, record)

	assert.Nil(t, w.SelectedTab())
	first := w.OpenTab("https://example.com/", "Example")
	second := w.OpenTab("about:blank", "")
	assert.Equal(t, port.Tab(first), w.SelectedTab())
	require.Len(t, got, 1, "only the first tab of a loaded window is selected on open")
	assert.Equal(t, port.EventTabSelect, got[0].Kind)
	assert.Equal(t, port.Tab(first), got[0].Tab)
	got = nil

	w.SelectTab(second)
	require.Len(t, got, 1)
	assert.Equal(t, port.EventTabSelect, got[0].Kind)
	assert.Equal(t, port.Tab(second), got[0].Tab)

	oldDoc := second.Doc()
	second.Navigate("https://news.example.org/", "News")
	require.Len(t, got, 3)
	assert.Equal(t, port.EventDocumentLoaded, got[1].Kind)
	assert.NotEqual(t, oldDoc, got[1].Document)
	assert.Equal(t, port.Tab(second), w.TabForDocument(got[1].Document))
	assert.Equal(t, port.EventTabAttrModified, got[2].Kind)

	remove()
	remove()
	second.Navigate("https://example.net/", "Net")
	assert.Equal(t, port.EventTabAttrModified, got[len(got)-1].Kind)
	assert.Equal(t, 2, w.ListenerCount(port.EventTabSelect)+w.ListenerCount(port.EventTabAttrModified))
	assert.Zero(t, w.ListenerCount(port.EventDocumentLoaded))

	w.CloseTab(second)
	assert.Equal(t, port.Tab(first), w.SelectedTab())
	assert.Equal(t, port.EventTabSelect, got[len(got)-1].Kind)
}

func TestTab_AttributesAndProperties(t *testing.T) {
	h := New(60)
	w := h.OpenWindow(WindowOptions{})
	tab := w.OpenTab("https://example.com/", "Example")

	modified := 0
	w.TabContainer().AddEventListener(port.EventTabAttrModified, func(port.Event) { modified++ })

	tab.SetAttribute("fixed-label", "Pinned")
	v, ok := tab.Attribute("fixed-label")
	assert.True(t, ok)
	assert.Equal(t, "Pinned", v)

	tab.SetProperty("tr_label", "Renamed")
	v, ok = tab.Property("tr_label")
	assert.True(t, ok)
	assert.Equal(t, "Renamed", v)
	assert.Equal(t, 1, modified)

	tab.SetAttribute("fixed-label", "")
	_, ok = tab.Attribute("fixed-label")
	assert.False(t, ok)
}

func TestTab_ASCIIURL(t *testing.T) {
	h := New(60)
	w := h.OpenWindow(WindowOptions{})

	tab := w.OpenTab("https://bücher.example:8443/path", "")
	assert.Equal(t, "https://xn--bcher-kva.example:8443/path", tab.ASCIIURL())

	plain := w.OpenTab("https://example.com/a?b=c", "")
	assert.Equal(t, "https://example.com/a?b=c", plain.ASCIIURL())

	about := w.OpenTab("about:blank", "")
	assert.Equal(t, "about:blank", about.ASCIIURL())

	upper := w.OpenTab("HTTPS://Example.COM/Path", "")
	assert.Equal(t, "https://example.com/Path", upper.ASCIIURL())

	upperAbout := w.OpenTab("ABOUT:config", "")
	assert.Equal(t, "about:config", upperAbout.ASCIIURL())

	v6 := w.OpenTab("http://[::1]:8080/", "")
	assert.Equal(t, "http://[::1]:8080/", v6.ASCIIURL())
}

func TestHost_Dispatcher(t *testing.T) {
	h := New(60)

	var order []int
	h.Post(func() {
		order = append(order, 1)
		h.Post(func() { order = append(order, 3) })
	})
	h.Post(func() { order = append(order, 2) })
	assert.Equal(t, 2, h.Pending())

	assert.Equal(t, 3, h.Drain())
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Zero(t, h.Pending())
}

func TestHost_RunAndCall(t *testing.T) {
	h := New(60)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	ran := false
	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	require.NoError(t, h.Call(callCtx, func() { ran = true }))
	assert.True(t, ran)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestHost_PlatformVersion(t *testing.T) {
	h := New(23.5)
	assert.InDelta(t, 23.5, h.PlatformVersion(), 0.0001)
	h.SetPlatformVersion(60)
	assert.InDelta(t, 60.0, h.PlatformVersion(), 0.0001)
}
