package config

// Default configuration constants
const (
	// Logging defaults
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"
	defaultLogSizeMB  = 10 // megabytes
	defaultLogBackups = 3
	defaultLogAgeDays = 7 // days

	// Host defaults
	defaultWindowType         = "navigator:browser"
	defaultMinPlatformVersion = 24
	defaultSelectedSkin       = "classic/1.0"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:         defaultLogLevel,
			Format:        defaultLogFormat,
			EnableFileLog: false,
			MaxSizeMB:     defaultLogSizeMB,
			MaxBackups:    defaultLogBackups,
			MaxAgeDays:    defaultLogAgeDays,
		},
		Host: HostConfig{
			CDPURL:             "",
			WindowType:         defaultWindowType,
			MinPlatformVersion: defaultMinPlatformVersion,
			SelectedSkin:       defaultSelectedSkin,
		},
		Appearance: AppearanceConfig{},
		Addons: AddonsConfig{
			Installed: []InstalledAddon{},
		},
		Preferences: map[string]any{},
	}
}
