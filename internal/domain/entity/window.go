// Package entity holds the window tracking state shared by the address bar
// controllers.
package entity

import "fmt"

// WindowID identifies a host browser window.
type WindowID string

// TabID identifies a tab inside a host window.
type TabID string

// DocumentID identifies one loaded content document. Every navigation of a
// tab produces a new document.
type DocumentID uint64

// WindowState is the lifecycle state of a tracked window.
type WindowState int

const (
	WindowUnregistered WindowState = iota
	WindowPendingLoad
	WindowActive
	WindowDestroyed
)

func (s WindowState) String() string {
	switch s {
	case WindowUnregistered:
		return "unregistered"
	case WindowPendingLoad:
		return "pending-load"
	case WindowActive:
		return "active"
	case WindowDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("window-state(%d)", int(s))
	}
}

// TrackedWindow records where a window is in its lifecycle.
// A window controller exists for the window iff State is WindowActive.
type TrackedWindow struct {
	ID    WindowID
	State WindowState
}

// NewTrackedWindow creates an unregistered window record.
func NewTrackedWindow(id WindowID) *TrackedWindow {
	return &TrackedWindow{ID: id, State: WindowUnregistered}
}

// MarkPendingLoad records that the window was opened and its load is awaited.
func (w *TrackedWindow) MarkPendingLoad() error {
	if w.State != WindowUnregistered {
		return w.invalid(WindowPendingLoad)
	}
	w.State = WindowPendingLoad
	return nil
}

// Activate records that a controller now exists for the window. Windows that
// were already loaded when tracking started go straight from Unregistered.
func (w *TrackedWindow) Activate() error {
	if w.State != WindowUnregistered && w.State != WindowPendingLoad {
		return w.invalid(WindowActive)
	}
	w.State = WindowActive
	return nil
}

// Destroy records that the window is gone. Destroying twice is allowed.
func (w *TrackedWindow) Destroy() {
	w.State = WindowDestroyed
}

// IsActive reports whether the window has a live controller.
func (w *TrackedWindow) IsActive() bool {
	return w.State == WindowActive
}

func (w *TrackedWindow) invalid(to WindowState) error {
	return fmt.Errorf("window %s: invalid transition %s -> %s", w.ID, w.State, to)
}
