// Package memhost is an in-process browser host: windows with chrome
// documents, tabs, events and a single-threaded dispatcher. The CLI drives it
// from a real browser through the cdp package; tests drive it directly.
package memhost

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/domain/entity"
)

// Element ids of the browser chrome that add-ons attach to.
const (
	IdentityBoxID    = "identity-box"
	IdentityLabelsID = "identity-icon-labels"
	URLBarID         = "urlbar"
	DisplayBoxID     = "urlbar-display-box"
	ContentAreaID    = "appcontent"
)

var (
	_ port.WindowMediator = (*Host)(nil)
	_ port.Dispatcher     = (*Host)(nil)
	_ port.PlatformInfo   = (*Host)(nil)
)

// Host owns every window and the UI queue.
type Host struct {
	platformVersion float64

	mu        sync.Mutex
	windows   []*Window
	observers map[int]port.WindowObserver
	nextObs   int
	nextWin   int
	nextTab   int
	nextDoc   entity.DocumentID

	qmu    sync.Mutex
	queue  []func()
	wakeup chan struct{}
}

// New creates a host reporting platformVersion.
func New(platformVersion float64) *Host {
	return &Host{
		platformVersion: platformVersion,
		observers:       make(map[int]port.WindowObserver),
		wakeup:          make(chan struct{}, 1),
	}
}

// PlatformVersion implements port.PlatformInfo.
func (h *Host) PlatformVersion() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.platformVersion
}

// SetPlatformVersion changes the reported version.
func (h *Host) SetPlatformVersion(v float64) {
	h.mu.Lock()
	h.platformVersion = v
	h.mu.Unlock()
}

// Windows implements port.WindowMediator. Only loaded, open windows of
// windowType are listed.
func (h *Host) Windows(windowType string) []port.Window {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []port.Window
	for _, w := range h.windows {
		if w.loaded && !w.closed && w.windowType == windowType {
			out = append(out, w)
		}
	}
	return out
}

// AllWindows returns every open window in opening order.
func (h *Host) AllWindows() []*Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Window(nil), h.windows...)
}

// newWindowID and newTabID must be called with h.mu held.
func (h *Host) newWindowID() entity.WindowID {
	h.nextWin++
	return entity.WindowID(fmt.Sprintf("win-%d", h.nextWin))
}

func (h *Host) newTabID() entity.TabID {
	h.nextTab++
	return entity.TabID(fmt.Sprintf("tab-%d", h.nextTab))
}

// Window returns the open window with id.
func (h *Host) Window(id entity.WindowID) (*Window, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.windows {
		if w.id == id {
			return w, true
		}
	}
	return nil, false
}

// RegisterNotification implements port.WindowMediator.
func (h *Host) RegisterNotification(obs port.WindowObserver) func() {
	h.mu.Lock()
	id := h.nextObs
	h.nextObs++
	h.observers[id] = obs
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.observers, id)
		h.mu.Unlock()
	}
}

// ObserverCount returns the number of registered window observers.
func (h *Host) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

func (h *Host) observersSnapshot() []port.WindowObserver {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]int, 0, len(h.observers))
	for id := range h.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]port.WindowObserver, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.observers[id])
	}
	return out
}

// Post implements port.Dispatcher. It never blocks.
func (h *Host) Post(fn func()) {
	h.qmu.Lock()
	h.queue = append(h.queue, fn)
	h.qmu.Unlock()

	select {
	case h.wakeup <- struct{}{}:
	default:
	}
}

// Drain runs queued functions on the calling goroutine until the queue is
// empty, including functions queued while draining. It returns how many ran.
func (h *Host) Drain() int {
	n := 0
	for {
		h.qmu.Lock()
		if len(h.queue) == 0 {
			h.qmu.Unlock()
			return n
		}
		fn := h.queue[0]
		h.queue = h.queue[1:]
		h.qmu.Unlock()

		fn()
		n++
	}
}

// Pending returns the number of queued functions.
func (h *Host) Pending() int {
	h.qmu.Lock()
	defer h.qmu.Unlock()
	return len(h.queue)
}

// Run is the UI loop: it drains the queue whenever work is posted, until ctx
// is done.
func (h *Host) Run(ctx context.Context) error {
	for {
		h.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.wakeup:
		}
	}
}

// Call runs fn on the UI loop and waits for it. Run must be active.
func (h *Host) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	h.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
