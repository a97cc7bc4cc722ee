package coordinator

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/application/usecase"
	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
	"github.com/bnema/pagetitle/internal/infrastructure/publicsuffix"
	"github.com/bnema/pagetitle/internal/logging"
)

// fakePrefs is an in-memory port.PreferenceStore.
type fakePrefs struct {
	values    map[string]any
	observers map[int]port.PreferenceObserver
	next      int
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{values: map[string]any{}, observers: map[int]port.PreferenceObserver{}}
}

func (p *fakePrefs) Get(name string, def any) any {
	if v, ok := p.values[name]; ok {
		return v
	}
	return def
}

func (p *fakePrefs) Bool(name string, def bool) bool {
	if v, ok := p.values[name].(bool); ok {
		return v
	}
	return def
}

func (p *fakePrefs) String(name string, def string) string {
	if v, ok := p.values[name].(string); ok {
		return v
	}
	return def
}

func (p *fakePrefs) Set(name string, value any) error {
	p.values[name] = value
	p.notify(name, value)
	return nil
}

func (p *fakePrefs) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p *fakePrefs) Reset(name string) error {
	delete(p.values, name)
	return nil
}

func (p *fakePrefs) Observe(fn port.PreferenceObserver) func() {
	id := p.next
	p.next++
	p.observers[id] = fn
	return func() { delete(p.observers, id) }
}

func (p *fakePrefs) DeleteBranch() error {
	p.values = map[string]any{}
	return nil
}

func (p *fakePrefs) notify(name string, value any) {
	ids := make([]int, 0, len(p.observers))
	for id := range p.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		p.observers[id](name, value)
	}
}

type fixture struct {
	host     *memhost.Host
	prefs    *fakePrefs
	gate     *logging.DebugGate
	registry *WindowRegistry
}

func newFixture(t *testing.T, mutate ...func(*RegistryConfig)) *fixture {
	t.Helper()

	f := &fixture{
		host:  memhost.New(60),
		prefs: newFakePrefs(),
		gate:  logging.NewDebugGate(true),
	}
	cfg := RegistryConfig{
		Mediator:     f.host,
		Preferences:  f.prefs,
		Platform:     f.host,
		Dispatcher:   f.host,
		Display:      usecase.NewResolveDisplayUseCase(publicsuffix.New()),
		SelectedSkin: "classic/1.0",
		DebugGate:    f.gate,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	f.registry = NewWindowRegistry(cfg)
	return f
}

// start starts the registry and stops it when the test ends.
func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.registry.Start(context.Background()))
	t.Cleanup(func() { f.registry.Stop(context.Background(), true) })
}

// openWindow opens and loads a browser window.
func (f *fixture) openWindow(opts memhost.WindowOptions) *memhost.Window {
	w := f.host.OpenWindow(opts)
	w.FinishLoad()
	return w
}

func (f *fixture) controller(t *testing.T, w *memhost.Window) *WindowController {
	t.Helper()
	c, ok := f.registry.Controller(w.ID())
	require.True(t, ok, "window %s has no controller", w.ID())
	return c
}
