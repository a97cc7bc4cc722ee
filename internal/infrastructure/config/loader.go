package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const configFileName = "config.toml"

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config         *Config
	viper          *viper.Viper
	configDir      string
	mu             sync.RWMutex
	callbacks      []func(*Config)
	watching       bool
	skipNextReload bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithConfigDir reads and writes config.toml in dir instead of the XDG
// config directory.
func WithConfigDir(dir string) Option {
	return func(m *Manager) {
		m.configDir = dir
	}
}

// NewManager creates a new configuration manager.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		viper:     viper.New(),
		callbacks: make([]func(*Config), 0),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.configDir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
		}
		m.configDir = configDir
	}

	v := m.viper
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(m.configDir)

	// PAGETITLE_HOST_CDP_URL, PAGETITLE_LOGGING_LEVEL, ...
	v.SetEnvPrefix("PAGETITLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "PAGETITLE_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind PAGETITLE_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "PAGETITLE_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind PAGETITLE_LOG_FORMAT: %w", err)
	}
	if err := v.BindEnv("host.cdp_url", "PAGETITLE_CDP_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind PAGETITLE_CDP_URL: %w", err)
	}

	return m, nil
}

// Load loads the configuration from file and environment variables. A
// missing file is created with defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.unmarshalConfig()
	if err != nil {
		return err
	}

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var configFileNotFoundError viper.ConfigFileNotFoundError
	if !errors.As(err, &configFileNotFoundError) {
		return fmt.Errorf("error reading config file: %w", err)
	}

	if createErr := m.createDefaultConfig(); createErr != nil {
		return fmt.Errorf(
			"failed to create default config at %s: %w\nTry creating the directory manually or check permissions",
			m.configDir,
			createErr,
		)
	}
	if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
		return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
	}
	return nil
}

func (m *Manager) unmarshalConfig() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	normalizeConfig(config)
	return config, nil
}

// normalizeConfig fills zero values the file may leave out.
func normalizeConfig(config *Config) {
	if config.Preferences == nil {
		config.Preferences = map[string]any{}
	} else {
		lowered := make(map[string]any, len(config.Preferences))
		for name, value := range config.Preferences {
			lowered[strings.ToLower(name)] = value
		}
		config.Preferences = lowered
	}
	if config.Addons.Installed == nil {
		config.Addons.Installed = []InstalledAddon{}
	}
	config.Logging.Format = strings.ToLower(config.Logging.Format)
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	return cloneConfig(m.config)
}

// Save validates cfg, writes it to disk and notifies change callbacks.
func (m *Manager) Save(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	m.mu.Lock()
	if err := m.writeLocked(cloneConfig(cfg)); err != nil {
		m.mu.Unlock()
		return err
	}
	m.notifyCallbacksLocked()
	return nil
}

// UpdatePreferences applies fn to a copy of the preference table and saves
// the result. fn sees lower-cased keys.
func (m *Manager) UpdatePreferences(fn func(prefs map[string]any)) error {
	m.mu.Lock()
	cfg := DefaultConfig()
	if m.config != nil {
		cfg = cloneConfig(m.config)
	}
	fn(cfg.Preferences)

	if err := m.writeLocked(cfg); err != nil {
		m.mu.Unlock()
		return err
	}
	m.notifyCallbacksLocked()
	return nil
}

// writeLocked persists cfg and makes it current. Must be called with m.mu
// held for write.
func (m *Manager) writeLocked(cfg *Config) error {
	normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	path := m.configFilePath()
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := WriteConfigOrdered(cfg, path); err != nil {
		return err
	}

	// The watcher sees our own write; its reload would only repeat this one.
	if m.watching {
		m.skipNextReload = true
	}
	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to re-read config: %w", err)
	}

	m.config = cfg
	return nil
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	if used := m.viper.ConfigFileUsed(); used != "" {
		return used
	}
	return m.configFilePath()
}

func (m *Manager) configFilePath() string {
	return filepath.Join(m.configDir, configFileName)
}

// createDefaultConfig writes the default configuration file.
func (m *Manager) createDefaultConfig() error {
	configFile := m.configFilePath()
	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}
	return WriteConfigOrdered(DefaultConfig(), configFile)
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.enable_file_log", defaults.Logging.EnableFileLog)
	m.viper.SetDefault("logging.file", defaults.Logging.File)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)

	m.viper.SetDefault("host.cdp_url", defaults.Host.CDPURL)
	m.viper.SetDefault("host.window_type", defaults.Host.WindowType)
	m.viper.SetDefault("host.min_platform_version", defaults.Host.MinPlatformVersion)
	m.viper.SetDefault("host.platform_version", defaults.Host.PlatformVersion)
	m.viper.SetDefault("host.selected_skin", defaults.Host.SelectedSkin)

	m.viper.SetDefault("appearance.stylesheet", defaults.Appearance.StyleSheet)
}

func cloneConfig(cfg *Config) *Config {
	out := *cfg
	out.Preferences = maps.Clone(cfg.Preferences)
	if out.Preferences == nil {
		out.Preferences = map[string]any{}
	}
	out.Addons.Installed = append([]InstalledAddon(nil), cfg.Addons.Installed...)
	return &out
}
