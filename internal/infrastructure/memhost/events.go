package memhost

import (
	"sync"

	"github.com/bnema/pagetitle/internal/application/port"
)

type listener struct {
	id      int
	kind    port.EventKind
	handler port.EventHandler
}

// target is an event target with listeners called in registration order.
type target struct {
	mu        sync.Mutex
	listeners []listener
	nextID    int
}

var _ port.EventTarget = (*target)(nil)

// AddEventListener implements port.EventTarget.
func (t *target) AddEventListener(kind port.EventKind, handler port.EventHandler) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners = append(t.listeners, listener{id: id, kind: kind, handler: handler})
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, l := range t.listeners {
			if l.id == id {
				t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// dispatch calls every listener of ev.Kind. Listeners added or removed
// during dispatch take effect for the next event.
func (t *target) dispatch(ev port.Event) {
	t.mu.Lock()
	var handlers []port.EventHandler
	for _, l := range t.listeners {
		if l.kind == ev.Kind {
			handlers = append(handlers, l.handler)
		}
	}
	t.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// count returns the number of listeners of kind.
func (t *target) count(kind port.EventKind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, l := range t.listeners {
		if l.kind == kind {
			n++
		}
	}
	return n
}
