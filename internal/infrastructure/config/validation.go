package config

import (
	"fmt"
	"strings"

	"github.com/bnema/pagetitle/internal/domain/validation"
)

// validateConfig performs validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	switch strings.ToLower(config.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.level must be one of: trace, debug, info, warn, error, disabled (got: %s)", config.Logging.Level))
	}

	switch config.Logging.Format {
	case "json", "console":
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.format must be one of: json, console (got: %s)", config.Logging.Format))
	}

	if config.Logging.MaxSizeMB < 0 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be non-negative")
	}
	if config.Logging.MaxBackups < 0 {
		validationErrors = append(validationErrors, "logging.max_backups must be non-negative")
	}
	if config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_age_days must be non-negative")
	}

	if strings.TrimSpace(config.Host.WindowType) == "" {
		validationErrors = append(validationErrors, "host.window_type cannot be empty")
	}
	if config.Host.MinPlatformVersion < 0 {
		validationErrors = append(validationErrors, "host.min_platform_version must be non-negative")
	}
	if config.Host.PlatformVersion < 0 {
		validationErrors = append(validationErrors, "host.platform_version must be non-negative")
	}
	if config.Host.CDPURL != "" && !hasAnyPrefix(config.Host.CDPURL, "ws://", "wss://", "http://", "https://") {
		validationErrors = append(validationErrors,
			fmt.Sprintf("host.cdp_url must be a ws:// or http:// endpoint (got: %s)", config.Host.CDPURL))
	}

	p := config.Appearance.Palette
	validationErrors = append(validationErrors, validation.ValidateColors("appearance.palette", true,
		validation.ColorField{Name: "background", Value: p.Background},
		validation.ColorField{Name: "surface", Value: p.Surface},
		validation.ColorField{Name: "surface_variant", Value: p.SurfaceVariant},
		validation.ColorField{Name: "text", Value: p.Text},
		validation.ColorField{Name: "muted", Value: p.Muted},
		validation.ColorField{Name: "accent", Value: p.Accent},
		validation.ColorField{Name: "border", Value: p.Border},
	)...)

	seen := make(map[string]bool, len(config.Addons.Installed))
	for i, addon := range config.Addons.Installed {
		if addon.ID == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("addons.installed[%d].id cannot be empty", i))
			continue
		}
		if seen[addon.ID] {
			validationErrors = append(validationErrors, fmt.Sprintf("addons.installed: duplicate id %s", addon.ID))
		}
		seen[addon.ID] = true
	}

	for name, value := range config.Preferences {
		switch value.(type) {
		case bool, string, int, int64, float64:
		default:
			validationErrors = append(validationErrors,
				fmt.Sprintf("preferences.%s must be a boolean, integer or string (got: %T)", name, value))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
