package memhost

import (
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/idna"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/domain/entity"
)

// Tab is an in-memory browser tab.
type Tab struct {
	window *Window
	id     entity.TabID

	mu    sync.Mutex
	url   string
	title string
	doc   entity.DocumentID
	attrs map[string]string
	props map[string]string
}

var _ port.Tab = (*Tab)(nil)

// ID implements port.Tab.
func (t *Tab) ID() entity.TabID { return t.id }

// Window returns the window holding the tab.
func (t *Tab) Window() *Window { return t.window }

// URL implements port.Tab.
func (t *Tab) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// ASCIIURL implements port.Tab.
func (t *Tab) ASCIIURL() string {
	return asciiURL(t.URL())
}

// Title implements port.Tab.
func (t *Tab) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// Doc returns the id of the tab's current document.
func (t *Tab) Doc() entity.DocumentID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc
}

// Attribute implements port.Tab.
func (t *Tab) Attribute(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.attrs[name]
	return v, ok
}

// Property implements port.Tab.
func (t *Tab) Property(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.props[name]
	return v, ok
}

// Navigate loads url in a new document: DOMContentLoaded reaches the content
// area, then TabAttrModified reports the new title.
func (t *Tab) Navigate(url, title string) {
	h := t.window.host
	h.mu.Lock()
	h.nextDoc++
	doc := h.nextDoc
	h.mu.Unlock()

	t.mu.Lock()
	t.url = url
	t.title = title
	t.doc = doc
	t.mu.Unlock()

	t.window.DispatchToContent(port.Event{
		Kind:       port.EventDocumentLoaded,
		TargetKind: port.TargetDocument,
		Document:   doc,
	})
	t.modified()
}

// SetTitle changes the content title and dispatches TabAttrModified.
func (t *Tab) SetTitle(title string) {
	t.mu.Lock()
	t.title = title
	t.mu.Unlock()
	t.modified()
}

// SetAttribute sets an attribute of the tab element and dispatches
// TabAttrModified. An empty value removes it.
func (t *Tab) SetAttribute(name, value string) {
	t.mu.Lock()
	if value == "" {
		delete(t.attrs, name)
	} else {
		t.attrs[name] = value
	}
	t.mu.Unlock()
	t.modified()
}

// SetProperty sets a script property. No event is dispatched.
func (t *Tab) SetProperty(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if value == "" {
		delete(t.props, name)
	} else {
		t.props[name] = value
	}
}

// Update replaces url and title without dispatching anything.
func (t *Tab) Update(url, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.url = url
	t.title = title
}

func (t *Tab) modified() {
	t.window.DispatchToTabs(port.Event{Kind: port.EventTabAttrModified, TargetKind: port.TargetTab, Tab: t})
}

// asciiURL lowercases the scheme of raw and converts its host to lowercase
// ASCII. raw is returned unchanged when it cannot be parsed.
func asciiURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	if u.Host == "" {
		return u.Scheme + raw[len(u.Scheme):]
	}
	hostname := u.Hostname()
	ascii, err := idna.Lookup.ToASCII(hostname)
	if err != nil {
		ascii = strings.ToLower(hostname)
	}
	if strings.Contains(ascii, ":") {
		ascii = "[" + ascii + "]"
	}
	if port := u.Port(); port != "" {
		u.Host = ascii + ":" + port
	} else {
		u.Host = ascii
	}
	return u.String()
}
