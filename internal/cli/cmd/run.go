package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/pagetitle/internal/bootstrap"
	"github.com/bnema/pagetitle/internal/cli"
	"github.com/bnema/pagetitle/internal/cli/model"
	"github.com/bnema/pagetitle/internal/infrastructure/cdp"
	"github.com/bnema/pagetitle/internal/infrastructure/config"
	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
	"github.com/bnema/pagetitle/internal/logging"
)

const (
	shutdownTimeout     = 5 * time.Second
	demoPlatformVersion = 120
	demoTabInterval     = 3 * time.Second
)

var (
	runCDPURL      string
	runNoDashboard bool
	runDemo        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attach to a browser and keep its address bars in sync",
	Long: `Attach to a running Chrome through its DevTools endpoint and start the add-on.

The endpoint comes from --cdp-url or host.cdp_url in the config file. Start
Chrome with --remote-debugging-port=9222 and pass http://localhost:9222.

With --demo no browser is needed: an in-memory window with a few tabs is
opened instead.

Examples:
  pagetitle run --cdp-url http://localhost:9222
  pagetitle run --demo
  pagetitle run --no-dashboard    # log only, stop with Ctrl+C`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runCDPURL, "cdp-url", "", "DevTools endpoint of the browser")
	runCmd.Flags().BoolVar(&runNoDashboard, "no-dashboard", false, "run without the terminal dashboard")
	runCmd.Flags().BoolVar(&runDemo, "demo", false, "use an in-memory demo window instead of a browser")
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	cfg := app.Config
	url := runCDPURL
	if url == "" {
		url = cfg.Host.CDPURL
	}
	if url == "" && !runDemo {
		return errors.New("no DevTools endpoint: pass --cdp-url or set host.cdp_url")
	}

	ctx, stop := signal.NotifyContext(app.Ctx(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithComponent(ctx, "run")
	log := logging.FromContext(ctx)
	timer := bootstrap.NewStartupTimer()

	host := memhost.New(cfg.Host.PlatformVersion)
	comps := bootstrap.NewComponents(bootstrap.ComponentsInput{
		Config:      cfg,
		Preferences: app.Preferences,
		Host:        host,
		DebugGate:   app.DebugGate,
	})
	timer.Mark("components")

	// The loop outlives ctx so shutdown can still run on it.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = host.Run(loopCtx)
	}()
	defer func() {
		stopLoop()
		<-loopDone
	}()

	var driver *cdp.Driver
	var demo *memhost.Window
	if runDemo {
		if err := host.Call(ctx, func() { demo = openDemoWindow(host, cfg.Host.PlatformVersion) }); err != nil {
			return err
		}
	} else {
		driver = cdp.NewDriver(host, url)
		driver.PlatformVersion = cfg.Host.PlatformVersion
		if err := driver.Connect(ctx); err != nil {
			return err
		}
	}
	timer.Mark("connect")

	var startErr error
	if err := host.Call(ctx, func() { startErr = comps.Addon.Startup(ctx, bootstrap.AppStartup) }); err != nil {
		return err
	}
	if startErr != nil {
		if driver != nil {
			driver.Close()
		}
		return startErr
	}
	timer.Mark("startup")
	timer.Log(ctx)

	if demo != nil {
		go cycleDemoTabs(ctx, host, demo, demoTabInterval)
	}

	defer shutdown(ctx, host, comps, driver)

	app.ConfigManager.OnConfigChange(func(c *config.Config) {
		comps.OnConfigChange(ctx, c)
	})
	if err := app.ConfigManager.Watch(); err != nil {
		log.Warn().Err(err).Msg("config file watching disabled")
	}

	if !runNoDashboard && !isTerminal(os.Stdout.Fd()) {
		log.Info().Msg("stdout is not a terminal, running without dashboard")
		runNoDashboard = true
	}
	if runNoDashboard {
		log.Info().Msg("running, press Ctrl+C to stop")
		<-ctx.Done()
		return nil
	}
	return runDashboard(ctx, app, host, comps)
}

func runDashboard(ctx context.Context, app *cli.App, host *memhost.Host, comps *bootstrap.Components) error {
	m := model.NewDashboardModel(ctx, app.Theme, model.DashboardConfig{
		Source: &model.RegistrySource{
			Host:        host,
			Registry:    comps.Registry,
			StyleSheets: comps.StyleSheets,
		},
		Preferences: app.Preferences,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// shutdown stops the add-on as the application exits, then drops the
// browser connection.
func shutdown(ctx context.Context, host *memhost.Host, comps *bootstrap.Components, driver *cdp.Driver) {
	log := logging.FromContext(ctx)
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := host.Call(sctx, func() { comps.Addon.Shutdown(sctx, bootstrap.AppShutdown) }); err != nil {
		log.Warn().Err(err).Msg("add-on shutdown timed out")
	}
	if driver != nil {
		driver.Close()
	}
	// flush what Close posted
	_ = host.Call(sctx, func() {})
	log.Info().Msg("stopped")
}

// openDemoWindow opens a browser window with a few tabs. It runs on the UI
// loop.
func openDemoWindow(host *memhost.Host, platformVersion float64) *memhost.Window {
	if platformVersion == 0 {
		host.SetPlatformVersion(demoPlatformVersion)
	}
	w := host.OpenWindow(memhost.WindowOptions{})
	w.FinishLoad()
	w.OpenTab("https://mail.google.com/mail/u/0/#inbox", "Inbox (3)")
	w.OpenTab("http://localhost:8080/debug", "Debug console")
	w.OpenTab("about:newtab", "")
	w.OpenTab("https://www.bbc.co.uk/news", "BBC News")
	return w
}

// cycleDemoTabs selects the next demo tab every interval until ctx is done.
func cycleDemoTabs(ctx context.Context, host *memhost.Host, w *memhost.Window, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			host.Post(func() { selectNextTab(w) })
		}
	}
}

func selectNextTab(w *memhost.Window) {
	tabs := w.Tabs()
	if len(tabs) == 0 {
		return
	}
	next := 0
	if cur := w.Selected(); cur != nil {
		for i, t := range tabs {
			if t == cur {
				next = (i + 1) % len(tabs)
				break
			}
		}
	}
	w.SelectTab(tabs[next])
}
