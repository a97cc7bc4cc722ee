// Package validation checks user supplied style values.
package validation

import (
	"regexp"
	"strconv"
)

var hexColorRE = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether value is #RGB or #RRGGBB.
func IsHexColor(value string) bool {
	return hexColorRE.MatchString(value)
}

// IsTerminalColor reports whether value is a hex color or an ANSI palette
// index from 0 to 255.
func IsTerminalColor(value string) bool {
	if IsHexColor(value) {
		return true
	}
	n, err := strconv.Atoi(value)
	return err == nil && n >= 0 && n <= 255
}

// ColorField is one named color of a larger structure.
type ColorField struct {
	Name  string
	Value string
}

// ValidateColors returns one message per field whose value is not a
// terminal color. Empty values are accepted when optional is true.
func ValidateColors(prefix string, optional bool, fields ...ColorField) []string {
	var errs []string
	for _, f := range fields {
		if f.Value == "" && optional {
			continue
		}
		if !IsTerminalColor(f.Value) {
			errs = append(errs, prefix+"."+f.Name+" must be a color like #RRGGBB or 0-255 (got: "+strconv.Quote(f.Value)+")")
		}
	}
	return errs
}
