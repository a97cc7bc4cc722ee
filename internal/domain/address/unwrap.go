package address

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// LegacyWrapperPrefix marks addresses of tabs rendered by the legacy IE Tab
// extension, which wraps the real page address inside its own chrome URL.
const LegacyWrapperPrefix = "chrome://ietab"

// ErrLabelExtraction is returned when a wrapped address has no inner address.
var ErrLabelExtraction = errors.New("cannot extract wrapped address")

var (
	wrappedPattern = regexp.MustCompile(`((?:\?url=)|(?:\.xul#)).+`)
	wrapperMarker  = regexp.MustCompile(`\?url=|\.xul#`)
)

// IsLegacyWrapped reports whether raw is a legacy tab-wrapper address.
func IsLegacyWrapped(raw string) bool {
	return strings.HasPrefix(raw, LegacyWrapperPrefix)
}

// UnwrapLegacy returns the inner page address of a legacy tab-wrapper
// address. Addresses without the wrapper prefix are returned unchanged.
func UnwrapLegacy(raw string) (string, error) {
	if !IsLegacyWrapped(raw) {
		return raw, nil
	}

	match := wrappedPattern.FindString(raw)
	if match == "" {
		return raw, fmt.Errorf("%w: %q", ErrLabelExtraction, raw)
	}

	// Only the first marker is stripped; the inner address may itself carry
	// a "?url=" query.
	loc := wrapperMarker.FindStringIndex(match)
	return match[:loc[0]] + match[loc[1]:], nil
}
