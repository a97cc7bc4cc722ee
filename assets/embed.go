package assets

import _ "embed"

// DefaultPrefs is the default preference script. It calls pref(name, value)
// once per preference.
//
//go:embed defaults/preferences/prefs.js
var DefaultPrefs string

// OverlayRules holds the built-in style rules for the injected address bar
// elements.
//
//go:embed overlay.toml
var OverlayRules []byte
