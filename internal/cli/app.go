// Package cli provides CLI commands using Bubble Tea TUI.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bnema/pagetitle/assets"
	"github.com/bnema/pagetitle/internal/cli/styles"
	"github.com/bnema/pagetitle/internal/domain/build"
	"github.com/bnema/pagetitle/internal/infrastructure/config"
	"github.com/bnema/pagetitle/internal/infrastructure/prefs"
	"github.com/bnema/pagetitle/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config        *config.Config
	ConfigManager *config.Manager
	Theme         *styles.Theme
	BuildInfo     build.Info

	// Preferences is the add-on branch over the config file.
	Preferences *prefs.Branch
	Defaults    *prefs.Defaults
	// DebugGate follows the debug preference once the add-on starts.
	DebugGate *logging.DebugGate

	ctx        context.Context
	logCleanup func()
}

// Options customize NewApp.
type Options struct {
	// ConfigDir overrides the XDG config directory.
	ConfigDir string
	// LogToStderr mirrors the log to stderr. Interactive commands leave it
	// off so the TUI owns the terminal.
	LogToStderr bool
}

// NewApp loads the configuration and default preferences and builds the
// logger.
func NewApp(opts Options) (*App, error) {
	var mgrOpts []config.Option
	if opts.ConfigDir != "" {
		mgrOpts = append(mgrOpts, config.WithConfigDir(opts.ConfigDir))
	}
	mgr, err := config.NewManager(mgrOpts...)
	if err != nil {
		return nil, fmt.Errorf("create config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()

	logPath := cfg.Logging.File
	if cfg.Logging.EnableFileLog && logPath == "" {
		if logPath, err = config.GetLogFile(); err != nil {
			return nil, fmt.Errorf("resolve log file: %w", err)
		}
	}

	logger, logCleanup, err := logging.NewWithFile(
		logging.Config{
			Level:      logging.ParseLevel(cfg.Logging.Level),
			Format:     cfg.Logging.Format,
			TimeFormat: "15:04:05",
		},
		logging.FileConfig{
			Enabled:       cfg.Logging.EnableFileLog,
			Path:          logPath,
			MaxSizeMB:     cfg.Logging.MaxSizeMB,
			MaxBackups:    cfg.Logging.MaxBackups,
			MaxAgeDays:    cfg.Logging.MaxAgeDays,
			Compress:      true,
			WriteToStderr: opts.LogToStderr,
		},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}

	gate := logging.NewDebugGate(true)
	logger = logging.Gated(logger, gate)
	ctx := logging.WithContext(context.Background(), logger)
	logger.Debug().Str("config", mgr.GetConfigFile()).Msg("configuration loaded")

	defaults := prefs.NewDefaults()
	if err := defaults.Load(ctx, assets.DefaultPrefs); err != nil {
		logger.Warn().Err(err).Msg("failed to load default preferences")
	}

	return &App{
		Config:        cfg,
		ConfigManager: mgr,
		Theme:         styles.NewTheme(cfg),
		Preferences:   prefs.NewBranch(ctx, mgr, defaults),
		Defaults:      defaults,
		DebugGate:     gate,
		ctx:           ctx,
		logCleanup:    logCleanup,
	}, nil
}

// Close releases all resources.
func (a *App) Close() error {
	if a.Preferences != nil {
		a.Preferences.Close()
	}
	if a.logCleanup != nil {
		a.logCleanup()
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}
