// Package addons answers add-on version queries from the configured list of
// installed add-ons.
package addons

import (
	"context"
	"sync"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/infrastructure/config"
)

var _ port.AddonInventory = (*Inventory)(nil)

// Inventory is an in-memory add-on list.
type Inventory struct {
	mu       sync.RWMutex
	versions map[string]string
	wg       sync.WaitGroup
}

// NewInventory creates an inventory holding installed.
func NewInventory(installed []config.InstalledAddon) *Inventory {
	inv := &Inventory{}
	inv.Replace(installed)
	return inv
}

// Replace swaps the installed list, for example after a config reload.
func (inv *Inventory) Replace(installed []config.InstalledAddon) {
	versions := make(map[string]string, len(installed))
	for _, addon := range installed {
		versions[addon.ID] = addon.Version
	}

	inv.mu.Lock()
	inv.versions = versions
	inv.mu.Unlock()
}

// AddonVersion answers on a new goroutine. cb is not called when ctx is done
// before the answer is ready.
func (inv *Inventory) AddonVersion(ctx context.Context, id string, cb port.AddonVersionCallback) {
	inv.wg.Add(1)
	go func() {
		defer inv.wg.Done()

		inv.mu.RLock()
		version, ok := inv.versions[id]
		inv.mu.RUnlock()

		select {
		case <-ctx.Done():
			return
		default:
		}
		cb(version, ok)
	}()
}

// Wait blocks until every pending query has answered.
func (inv *Inventory) Wait() {
	inv.wg.Wait()
}
