// Package prefs implements the add-on preference branch on top of the
// configuration file, with defaults read from a preference script.
package prefs

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/grafana/sobek"

	"github.com/bnema/pagetitle/internal/logging"
)

// Namespace is the preference branch owned by the add-on.
const Namespace = "extensions.pagetitle."

// Kind is the stored type of a preference.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// KindOf reports the preference kind a value is stored as. Numbers are
// integers; anything that is not a bool or a number is a string.
func KindOf(value any) Kind {
	switch value.(type) {
	case nil:
		return KindInvalid
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, float32, float64:
		return KindInt
	default:
		return KindString
	}
}

// normalize converts value to the Go type used for its kind.
func normalize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return v
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case float32:
		return int(math.Trunc(float64(v)))
	case float64:
		return int(math.Trunc(v))
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Defaults is the default preference table, keyed by full preference name.
type Defaults struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewDefaults creates an empty default table.
func NewDefaults() *Defaults {
	return &Defaults{values: make(map[string]any)}
}

// Load evaluates a preference script. Each pref(name, value) call sets a
// default; a default that changes kind is reported and replaced.
func (d *Defaults) Load(ctx context.Context, script string) error {
	log := logging.FromContext(ctx)
	vm := sobek.New()

	err := vm.Set("pref", func(call sobek.FunctionCall) sobek.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("pref expects a name and a value"))
		}
		name := call.Argument(0).String()
		value := normalize(call.Argument(1).Export())

		d.mu.Lock()
		defer d.mu.Unlock()

		if old, ok := d.values[name]; ok && KindOf(old) != KindOf(value) {
			log.Error().
				Str("pref", name).
				Str("old_kind", KindOf(old).String()).
				Str("new_kind", KindOf(value).String()).
				Msg("changed preference type, old value will be lost")
			delete(d.values, name)
		}
		d.values[name] = value
		return sobek.Undefined()
	})
	if err != nil {
		return fmt.Errorf("install pref(): %w", err)
	}

	if _, err := vm.RunString(script); err != nil {
		return fmt.Errorf("evaluate default preferences: %w", err)
	}

	log.Debug().Int("count", d.Len()).Msg("default preferences loaded")
	return nil
}

// Get returns the default of a full preference name.
func (d *Defaults) Get(name string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[name]
	return v, ok
}

// Branch returns the defaults under prefix with the prefix stripped.
func (d *Defaults) Branch(prefix string) map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]any)
	for name, value := range d.values {
		if short, ok := strings.CutPrefix(name, prefix); ok && short != "" {
			out[short] = value
		}
	}
	return out
}

// DeleteBranch drops every default under prefix.
func (d *Defaults) DeleteBranch(prefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for name := range d.values {
		if strings.HasPrefix(name, prefix) {
			delete(d.values, name)
		}
	}
}

// Len returns the number of defaults.
func (d *Defaults) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.values)
}
