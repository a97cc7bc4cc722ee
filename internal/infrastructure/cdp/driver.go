// Package cdp drives the in-process host from a running Chrome through the
// DevTools protocol.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	cdpproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
	"github.com/bnema/pagetitle/internal/logging"
)

// ErrNotConnected is returned by operations that need a browser connection.
var ErrNotConnected = errors.New("not connected to browser")

const defaultCommandTimeout = 10 * time.Second

var productVersionPattern = regexp.MustCompile(`/(\d+(?:\.\d+)?)`)

// ParseProductVersion extracts the platform version from a browser product
// string such as "Chrome/120.0.6099.109".
func ParseProductVersion(product string) (float64, error) {
	m := productVersionPattern.FindStringSubmatch(product)
	if m == nil {
		return 0, fmt.Errorf("no version in product %q", product)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parse product version %q: %w", m[1], err)
	}
	return v, nil
}

// Driver connects to Chrome and mirrors its windows and tabs into a host.
type Driver struct {
	url    string
	host   *memhost.Host
	mirror *Mirror

	// PlatformVersion, when non-zero, overrides the version reported by
	// the browser.
	PlatformVersion float64

	mu            sync.Mutex
	ctx           context.Context
	ownTarget     target.ID
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	attached      map[target.ID]context.CancelFunc
	closed        bool
	wg            sync.WaitGroup
}

// NewDriver creates a driver for the DevTools endpoint url.
func NewDriver(host *memhost.Host, url string) *Driver {
	return &Driver{
		url:      url,
		host:     host,
		mirror:   NewMirror(host),
		attached: make(map[target.ID]context.CancelFunc),
	}
}

// Connect attaches to the browser, reports its version to the host and
// mirrors every open page. Later target changes are followed until Close.
func (d *Driver) Connect(ctx context.Context) error {
	ctx = logging.WithComponent(ctx, "cdp")
	log := logging.FromContext(ctx)
	log.Info().Str("url", d.url).Msg("connecting to browser")

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, d.url)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("connect to browser: %w", err)
	}

	d.mu.Lock()
	d.ctx = ctx
	d.closed = false
	if c := chromedp.FromContext(browserCtx); c != nil && c.Target != nil {
		d.ownTarget = c.Target.TargetID
	}
	d.browserCtx = browserCtx
	d.allocCancel = allocCancel
	d.browserCancel = browserCancel
	d.mu.Unlock()

	version, err := d.browserVersion(browserCtx)
	if err != nil {
		d.Close()
		return err
	}
	if d.PlatformVersion != 0 {
		version = d.PlatformVersion
	}
	d.host.Post(func() { d.host.SetPlatformVersion(version) })
	log.Info().Float64("platform_version", version).Msg("connected to browser")

	chromedp.ListenBrowser(browserCtx, d.onBrowserEvent)
	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return target.SetDiscoverTargets(true).Do(browserExecutor(ctx))
	})); err != nil {
		d.Close()
		return fmt.Errorf("discover targets: %w", err)
	}

	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		d.Close()
		return fmt.Errorf("enumerate targets: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	pages := 0
	for _, info := range targets {
		if !d.isPage(info) {
			continue
		}
		pages++
		info := info
		g.Go(func() error {
			if err := d.attach(gctx, info, false); err != nil {
				log.Error().Err(err).Str("target_id", string(info.TargetID)).Msg("failed to attach to page")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.Close()
		return err
	}

	log.Info().Int("pages", pages).Msg("mirrored browser pages")
	return nil
}

// isPage reports whether info is a user page, not the session's own target.
func (d *Driver) isPage(info *target.Info) bool {
	if info == nil || info.Type != pageTargetType {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return info.TargetID != d.ownTarget
}

// browserExecutor routes commands of ctx to the browser instead of the
// page target.
func browserExecutor(ctx context.Context) context.Context {
	c := chromedp.FromContext(ctx)
	if c == nil || c.Browser == nil {
		return ctx
	}
	return cdpproto.WithExecutor(ctx, c.Browser)
}

func (d *Driver) browserVersion(browserCtx context.Context) (float64, error) {
	var product string
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		_, product, _, _, _, err = browser.GetVersion().Do(browserExecutor(ctx))
		return err
	}))
	if err != nil {
		return 0, fmt.Errorf("get browser version: %w", err)
	}
	return ParseProductVersion(product)
}

// attach resolves the window of a page target, mirrors it and subscribes to
// its document loads.
func (d *Driver) attach(ctx context.Context, info *target.Info, activate bool) error {
	id := info.TargetID
	d.mu.Lock()
	browserCtx := d.browserCtx
	_, known := d.attached[id]
	if browserCtx != nil && !known {
		// reserved until the session is up
		d.attached[id] = nil
	}
	d.mu.Unlock()
	if browserCtx == nil {
		return ErrNotConnected
	}
	if known {
		return nil
	}

	if err := d.attachSession(ctx, browserCtx, info, activate); err != nil {
		d.mu.Lock()
		delete(d.attached, id)
		d.mu.Unlock()
		return err
	}
	return nil
}

func (d *Driver) attachSession(ctx, browserCtx context.Context, info *target.Info, activate bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var win browser.WindowID
	cmdCtx, cancel := context.WithTimeout(browserCtx, defaultCommandTimeout)
	defer cancel()
	err := chromedp.Run(cmdCtx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		win, _, err = browser.GetWindowForTarget().WithTargetID(info.TargetID).Do(browserExecutor(c))
		return err
	}))
	if err != nil {
		return fmt.Errorf("window of target %s: %w", info.TargetID, err)
	}

	d.host.Post(func() { d.addAttached(info, win, activate) })

	tabCtx, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(info.TargetID))
	if err := chromedp.Run(tabCtx, page.Enable()); err != nil {
		tabCancel()
		return fmt.Errorf("enable page domain of %s: %w", info.TargetID, err)
	}

	id := info.TargetID
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if _, ok := ev.(*page.EventDomContentEventFired); ok {
			d.host.Post(func() { d.mirror.DocumentLoaded(id) })
		}
	})

	d.mu.Lock()
	if _, ok := d.attached[id]; ok {
		d.attached[id] = tabCancel
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()
	// destroyed while attaching
	tabCancel()
	return nil
}

// addAttached mirrors info unless its target was destroyed or the driver
// closed since the attach started. It runs on the host loop.
func (d *Driver) addAttached(info *target.Info, win browser.WindowID, activate bool) {
	d.mu.Lock()
	_, reserved := d.attached[info.TargetID]
	d.mu.Unlock()
	if !reserved {
		return
	}
	d.mirror.AddTarget(info, win, activate)
}

// onBrowserEvent runs on a chromedp goroutine and must not block.
func (d *Driver) onBrowserEvent(ev interface{}) {
	switch e := ev.(type) {
	case *target.EventTargetCreated:
		if !d.isPage(e.TargetInfo) {
			return
		}
		info := e.TargetInfo
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return
		}
		ctx := d.ctx
		d.wg.Add(1)
		d.mu.Unlock()
		go func() {
			defer d.wg.Done()
			if err := d.attach(ctx, info, true); err != nil {
				logging.FromContext(ctx).Error().Err(err).Str("target_id", string(info.TargetID)).Msg("failed to attach to new page")
			}
		}()
	case *target.EventTargetInfoChanged:
		info := e.TargetInfo
		d.host.Post(func() { d.mirror.UpdateTarget(info) })
	case *target.EventTargetDestroyed:
		id := e.TargetID
		d.mu.Lock()
		cancel, ok := d.attached[id]
		delete(d.attached, id)
		d.mu.Unlock()
		if ok && cancel != nil {
			go cancel()
		}
		d.host.Post(func() { d.mirror.RemoveTarget(id) })
	}
}

// Activate brings the page target id to the front and selects its tab.
func (d *Driver) Activate(ctx context.Context, id target.ID) error {
	d.mu.Lock()
	browserCtx := d.browserCtx
	d.mu.Unlock()
	if browserCtx == nil {
		return ErrNotConnected
	}

	cmdCtx, cancel := context.WithTimeout(browserCtx, defaultCommandTimeout)
	defer cancel()
	err := chromedp.Run(cmdCtx, chromedp.ActionFunc(func(c context.Context) error {
		return target.ActivateTarget(id).Do(browserExecutor(c))
	}))
	if err != nil {
		return fmt.Errorf("activate target %s: %w", id, err)
	}
	d.host.Post(func() { d.mirror.Activate(id) })
	logging.FromContext(ctx).Debug().Str("target_id", string(id)).Msg("activated page")
	return nil
}

// Close drops the browser connection. The browser and its pages keep
// running; page sessions end with the connection.
func (d *Driver) Close() {
	d.mu.Lock()
	d.closed = true
	d.attached = make(map[target.ID]context.CancelFunc)
	browserCancel, allocCancel := d.browserCancel, d.allocCancel
	d.browserCtx = nil
	d.browserCancel, d.allocCancel = nil, nil
	d.mu.Unlock()

	d.wg.Wait()
	if browserCancel != nil {
		browserCancel()
	}
	if allocCancel != nil {
		allocCancel()
	}
	d.host.Post(d.mirror.Close)
}
