// Package port defines the interfaces the address bar core consumes from the
// host browser and its services.
package port

import "github.com/bnema/pagetitle/internal/domain/entity"

// BrowserWindowType is the window type of top-level browser windows.
const BrowserWindowType = "navigator:browser"

// EventKind names a host event.
type EventKind string

const (
	EventLoad            EventKind = "load"
	EventUnload          EventKind = "unload"
	EventDocumentLoaded  EventKind = "DOMContentLoaded"
	EventTabAttrModified EventKind = "TabAttrModified"
	EventTabSelect       EventKind = "TabSelect"
)

// TargetKind classifies what an event was dispatched to.
type TargetKind string

const (
	TargetTab      TargetKind = "tab"
	TargetWindow   TargetKind = "window"
	TargetDocument TargetKind = "document"
	TargetOther    TargetKind = "other"
)

// Event is a host event delivered to a listener.
type Event struct {
	Kind       EventKind
	TargetKind TargetKind
	// Tab is set when TargetKind is TargetTab.
	Tab Tab
	// Document is set for EventDocumentLoaded: the top-level document that
	// finished loading.
	Document entity.DocumentID
}

// EventHandler receives host events.
type EventHandler func(Event)

// EventTarget accepts listeners. The returned func removes the listener and
// is safe to call more than once.
type EventTarget interface {
	AddEventListener(kind EventKind, handler EventHandler) (remove func())
}

// Window is a top-level host window.
type Window interface {
	EventTarget

	ID() entity.WindowID
	// Document is the window's chrome document.
	Document() Document
	// SelectedTab returns nil when the window has no tabs.
	SelectedTab() Tab
	// TabForDocument returns the tab whose current document is doc, or nil.
	TabForDocument(doc entity.DocumentID) Tab
	// TabContainer receives tab selection and attribute events.
	TabContainer() EventTarget
	// ContentArea receives document load events; false when the window has
	// no content area.
	ContentArea() (EventTarget, bool)
	// HasGlobal probes for a global installed in the window by an extension.
	HasGlobal(name string) bool
}

// Tab is a browser tab.
type Tab interface {
	ID() entity.TabID
	// URL is the address of the tab's current document.
	URL() string
	// ASCIIURL is URL with the host converted to its ASCII form.
	ASCIIURL() string
	// Title is the content title of the current document.
	Title() string
	// Attribute reads an attribute of the tab element.
	Attribute(name string) (string, bool)
	// Property reads a script property set on the tab by an extension.
	Property(name string) (string, bool)
}

// WindowObserver is notified of window open and close.
type WindowObserver interface {
	WindowOpened(w Window)
	WindowClosed(w Window)
}

// WindowMediator enumerates windows and reports their lifecycle.
type WindowMediator interface {
	// Windows returns the open windows of windowType in opening order.
	Windows(windowType string) []Window
	// RegisterNotification subscribes obs; the returned func unsubscribes.
	RegisterNotification(obs WindowObserver) (unregister func())
}

// Dispatcher runs functions on the host's single UI thread.
type Dispatcher interface {
	Post(fn func())
}

// PlatformInfo describes the host runtime.
type PlatformInfo interface {
	PlatformVersion() float64
}
