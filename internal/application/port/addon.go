package port

import "context"

// AddonVersionCallback receives an installed add-on's version; ok is false
// when the add-on is not installed.
type AddonVersionCallback func(version string, ok bool)

// AddonInventory answers questions about installed add-ons.
type AddonInventory interface {
	// AddonVersion looks up id asynchronously and calls cb from any
	// goroutine once the answer is known.
	AddonVersion(ctx context.Context, id string, cb AddonVersionCallback)
}
