// Package config loads, validates and watches the pagetitle configuration
// file with Viper.
package config

// File permission constants
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Config represents the complete configuration for pagetitle.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging" toml:"logging"`
	Host       HostConfig       `mapstructure:"host" toml:"host"`
	Appearance AppearanceConfig `mapstructure:"appearance" toml:"appearance"`
	Addons     AddonsConfig     `mapstructure:"addons" toml:"addons"`
	// Preferences holds user values of the add-on preference branch, keyed
	// by short name. Keys are case-insensitive.
	Preferences map[string]any `mapstructure:"preferences" toml:"preferences"`
}

// LoggingConfig controls log level, format and the rotated log file.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`

	// File output configuration
	EnableFileLog bool   `mapstructure:"enable_file_log" toml:"enable_file_log"`
	File          string `mapstructure:"file" toml:"file"`
	MaxSizeMB     int    `mapstructure:"max_size_mb" toml:"max_size_mb"`
	MaxBackups    int    `mapstructure:"max_backups" toml:"max_backups"`
	MaxAgeDays    int    `mapstructure:"max_age_days" toml:"max_age_days"`
}

// HostConfig describes the browser the add-on runs against.
type HostConfig struct {
	// CDPURL is the DevTools websocket or http endpoint of the browser.
	CDPURL string `mapstructure:"cdp_url" toml:"cdp_url"`
	// WindowType is the window type treated as a browser window.
	WindowType string `mapstructure:"window_type" toml:"window_type"`
	// MinPlatformVersion is the lowest platform version the add-on starts on.
	MinPlatformVersion float64 `mapstructure:"min_platform_version" toml:"min_platform_version"`
	// PlatformVersion overrides the version reported by the browser when set.
	PlatformVersion float64 `mapstructure:"platform_version" toml:"platform_version"`
	// SelectedSkin is mirrored onto each window's root element.
	SelectedSkin string `mapstructure:"selected_skin" toml:"selected_skin"`
}

// AppearanceConfig selects the stylesheet applied to injected elements.
type AppearanceConfig struct {
	// StyleSheet is a path to a TOML rule file; empty uses the built-in one.
	StyleSheet string `mapstructure:"stylesheet" toml:"stylesheet"`
	// Palette colors the terminal UI. Empty fields keep the dark defaults.
	Palette ColorPalette `mapstructure:"palette" toml:"palette"`
}

// ColorPalette holds the terminal UI colors.
type ColorPalette struct {
	Background     string `mapstructure:"background" toml:"background"`
	Surface        string `mapstructure:"surface" toml:"surface"`
	SurfaceVariant string `mapstructure:"surface_variant" toml:"surface_variant"`
	Text           string `mapstructure:"text" toml:"text"`
	Muted          string `mapstructure:"muted" toml:"muted"`
	Accent         string `mapstructure:"accent" toml:"accent"`
	Border         string `mapstructure:"border" toml:"border"`
}

// AddonsConfig lists add-ons the inventory reports as installed.
type AddonsConfig struct {
	Installed []InstalledAddon `mapstructure:"installed" toml:"installed"`
}

// InstalledAddon is one installed add-on.
type InstalledAddon struct {
	ID      string `mapstructure:"id" toml:"id"`
	Version string `mapstructure:"version" toml:"version"`
}
