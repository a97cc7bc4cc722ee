package port

// PreferenceObserver is called with the short name and new value of a
// changed preference.
type PreferenceObserver func(name string, value any)

// PreferenceStore is a namespaced preference branch.
type PreferenceStore interface {
	// Get returns the value of name, or def when it is not set.
	Get(name string, def any) any
	Bool(name string, def bool) bool
	String(name string, def string) string
	Set(name string, value any) error
	Has(name string) bool
	// Reset drops the user value of name; resetting an unset name is a no-op.
	Reset(name string) error
	// Observe subscribes to changes; the returned func unsubscribes.
	Observe(fn PreferenceObserver) (cancel func())
	// DeleteBranch removes every preference of the namespace.
	DeleteBranch() error
}
