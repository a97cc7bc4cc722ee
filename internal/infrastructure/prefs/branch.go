package prefs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/infrastructure/config"
	"github.com/bnema/pagetitle/internal/logging"
)

// ErrBranchClosed is returned by writes after Close.
var ErrBranchClosed = errors.New("preference branch closed")

// Store persists user values. *config.Manager implements it.
type Store interface {
	Get() *config.Config
	UpdatePreferences(fn func(prefs map[string]any)) error
	OnConfigChange(callback func(*config.Config))
}

var _ port.PreferenceStore = (*Branch)(nil)

// Branch is the add-on's preference branch. User values live in the
// [preferences] table of the config file, defaults in a Defaults table.
// Names are case-insensitive; observers see the spelling used by the
// defaults or by the first Get/Set of the name.
type Branch struct {
	ns       string
	store    Store
	defaults *Defaults
	log      zerolog.Logger

	mu        sync.Mutex
	closed    bool
	cache     map[string]any
	names     map[string]string
	effective map[string]any
	observers map[int]port.PreferenceObserver
	nextID    int
}

// NewBranch opens the branch and subscribes to store changes.
func NewBranch(ctx context.Context, store Store, defaults *Defaults) *Branch {
	if defaults == nil {
		defaults = NewDefaults()
	}
	b := &Branch{
		ns:        Namespace,
		store:     store,
		defaults:  defaults,
		log:       logging.FromContext(logging.WithComponent(ctx, "prefs")).With().Logger(),
		cache:     make(map[string]any),
		names:     make(map[string]string),
		observers: make(map[int]port.PreferenceObserver),
	}
	for short := range defaults.Branch(b.ns) {
		b.names[strings.ToLower(short)] = short
	}
	b.effective = b.effectiveValues(store.Get())
	store.OnConfigChange(b.onConfigChange)
	return b
}

// Get returns the value of name, or def when neither a user value nor a
// default exists. Results are cached until the preference changes.
func (b *Branch) Get(name string, def any) any {
	key := b.remember(name)

	b.mu.Lock()
	defer b.mu.Unlock()

	if v, ok := b.cache[key]; ok {
		return v
	}
	v, ok := b.effective[key]
	if !ok {
		v = def
	}
	if !b.closed {
		b.cache[key] = v
	}
	return v
}

// Bool returns a boolean preference, or def when it is unset or not a bool.
func (b *Branch) Bool(name string, def bool) bool {
	if v, ok := b.Get(name, def).(bool); ok {
		return v
	}
	return def
}

// String returns a string preference, or def when it is unset or not a string.
func (b *Branch) String(name string, def string) string {
	if v, ok := b.Get(name, def).(string); ok {
		return v
	}
	return def
}

// Set stores a user value. The value is converted to the kind the
// preference already has; strings are parsed for bool and int preferences.
func (b *Branch) Set(name string, value any) error {
	key := b.remember(name)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBranchClosed
	}
	kind := KindOf(b.effective[key])
	b.mu.Unlock()

	coerced, err := coerce(value, kind)
	if err != nil {
		return fmt.Errorf("set %s%s: %w", b.ns, name, err)
	}

	return b.store.UpdatePreferences(func(prefs map[string]any) {
		prefs[key] = coerced
	})
}

// Has reports whether name has a user value or a default.
func (b *Branch) Has(name string) bool {
	key := strings.ToLower(name)

	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.effective[key]
	return ok
}

// Reset drops the user value of name. Resetting a preference without a user
// value does nothing.
func (b *Branch) Reset(name string) error {
	key := strings.ToLower(name)
	if _, ok := b.store.Get().Preferences[key]; !ok {
		return nil
	}
	return b.store.UpdatePreferences(func(prefs map[string]any) {
		delete(prefs, key)
	})
}

// Observe subscribes fn to preference changes.
func (b *Branch) Observe(fn port.PreferenceObserver) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.observers, id)
			b.mu.Unlock()
		})
	}
}

// DeleteBranch removes every user value and default of the branch.
func (b *Branch) DeleteBranch() error {
	b.defaults.DeleteBranch(b.ns)
	return b.store.UpdatePreferences(func(prefs map[string]any) {
		clear(prefs)
	})
}

// Close stops notifications and clears the cache.
func (b *Branch) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	clear(b.cache)
	clear(b.observers)
}

// Names returns the canonical names of every preference with a value.
func (b *Branch) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.effective))
	for key := range b.effective {
		names = append(names, b.canonicalLocked(key))
	}
	sort.Strings(names)
	return names
}

func (b *Branch) onConfigChange(cfg *config.Config) {
	next := b.effectiveValues(cfg)

	type change struct {
		name  string
		value any
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	var changes []change
	for key, value := range next {
		if old, ok := b.effective[key]; !ok || old != value {
			changes = append(changes, change{b.canonicalLocked(key), value})
			b.cache[key] = value
		}
	}
	for key := range b.effective {
		if _, ok := next[key]; !ok {
			changes = append(changes, change{b.canonicalLocked(key), nil})
			delete(b.cache, key)
		}
	}
	b.effective = next

	observers := make([]port.PreferenceObserver, 0, len(b.observers))
	ids := make([]int, 0, len(b.observers))
	for id := range b.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		observers = append(observers, b.observers[id])
	}
	b.mu.Unlock()

	sort.Slice(changes, func(i, j int) bool { return changes[i].name < changes[j].name })
	for _, c := range changes {
		b.log.Debug().Str("pref", c.name).Interface("value", c.value).Msg("preference changed")
		for _, fn := range observers {
			fn(c.name, c.value)
		}
	}
}

// effectiveValues merges defaults and user values, keyed by lower-cased
// short name.
func (b *Branch) effectiveValues(cfg *config.Config) map[string]any {
	out := make(map[string]any)
	for short, value := range b.defaults.Branch(b.ns) {
		out[strings.ToLower(short)] = value
	}
	if cfg != nil {
		for key, value := range cfg.Preferences {
			out[strings.ToLower(key)] = normalize(value)
		}
	}
	return out
}

func (b *Branch) remember(name string) string {
	key := strings.ToLower(name)
	b.mu.Lock()
	if _, ok := b.names[key]; !ok {
		b.names[key] = name
	}
	b.mu.Unlock()
	return key
}

func (b *Branch) canonicalLocked(key string) string {
	if name, ok := b.names[key]; ok {
		return name
	}
	return key
}

// coerce converts value to kind. KindInvalid keeps the value's own kind.
func coerce(value any, kind Kind) (any, error) {
	if value == nil {
		return nil, errors.New("nil value")
	}
	if kind == KindInvalid {
		return normalize(value), nil
	}

	s, isString := value.(string)
	switch kind {
	case KindBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
		if isString {
			v, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("%q is not a bool", s)
			}
			return v, nil
		}
	case KindInt:
		if KindOf(value) == KindInt {
			return normalize(value), nil
		}
		if isString {
			v, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", s)
			}
			return v, nil
		}
	case KindString:
		if isString {
			return s, nil
		}
		return fmt.Sprint(value), nil
	}
	return nil, fmt.Errorf("cannot store %T as %s", value, kind)
}
