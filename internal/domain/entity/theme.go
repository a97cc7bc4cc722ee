package entity

import (
	"strconv"
	"strings"
)

// ClassicThemeAddonID is the add-on whose version selects the theme style.
const ClassicThemeAddonID = "{972ce4c6-7e08-4474-a285-3208198ce6fd}"

// ThemeStyle is a coarse bucket of the classic theme version, consumed by
// stylesheets only.
type ThemeStyle int

const (
	ThemeStyleLegacy ThemeStyle = 4
	ThemeStyle14     ThemeStyle = 14
	ThemeStyle25     ThemeStyle = 25
)

// String returns the attribute value for the style.
func (s ThemeStyle) String() string {
	return strconv.Itoa(int(s))
}

// ClassifyThemeVersion buckets an add-on version string by its leading
// integer. Versions without a leading integer are rejected.
func ClassifyThemeVersion(version string) (ThemeStyle, bool) {
	major, ok := leadingInt(version)
	if !ok {
		return 0, false
	}
	switch {
	case major >= 25:
		return ThemeStyle25, true
	case major >= 14:
		return ThemeStyle14, true
	default:
		return ThemeStyleLegacy, true
	}
}

// leadingInt parses the integer prefix of s, like "25" in "25.0.1".
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
