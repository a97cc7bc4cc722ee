// Package stylesheet registers user style sheets for the injected address
// bar elements. Sheets are TOML rule files addressed by URI.
package stylesheet

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/bnema/pagetitle/assets"
	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/domain/validation"
)

// OverlayURI addresses the add-on's own style sheet.
const OverlayURI = "resource://pagetitle/overlay.toml"

// ErrUnknownSheet is returned when no source was provided for a URI.
var ErrUnknownSheet = errors.New("unknown style sheet")

// ErrInvalidRule is returned by Parse for rules with unusable values.
var ErrInvalidRule = errors.New("invalid style rule")

var _ port.StyleSheetService = (*Service)(nil)

// Rule styles one element.
type Rule struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Bold       bool   `toml:"bold"`
	Italic     bool   `toml:"italic"`
	Faint      bool   `toml:"faint"`
	// HiddenWhen names a boolean attribute; the element is hidden while its
	// parent carries the attribute with value "true".
	HiddenWhen string `toml:"hidden_when"`
}

// Sheet is a parsed style sheet.
type Sheet struct {
	Elements map[string]Rule `toml:"elements"`
	// Themes holds element overrides keyed by theme style value.
	Themes map[string]ThemeRules `toml:"themes"`
}

// ThemeRules are the overrides of one theme style.
type ThemeRules struct {
	Elements map[string]Rule `toml:"elements"`
}

// Source reads the raw bytes of a sheet.
type Source func() ([]byte, error)

// FileSource reads a sheet from disk on every load.
func FileSource(path string) Source {
	return func() ([]byte, error) {
		return os.ReadFile(path)
	}
}

// BuiltinSource reads the overlay rules embedded in the binary.
func BuiltinSource() ([]byte, error) {
	return assets.OverlayRules, nil
}

// Service keeps the set of registered sheets.
type Service struct {
	mu         sync.RWMutex
	sources    map[string]Source
	registered map[string]*Sheet
	order      []string
}

// NewService creates a service that knows the built-in overlay sheet.
func NewService() *Service {
	s := &Service{
		sources:    make(map[string]Source),
		registered: make(map[string]*Sheet),
	}
	s.Provide(OverlayURI, BuiltinSource)
	return s
}

// Provide sets the source behind uri. A registered sheet keeps its rules
// until it is loaded again.
func (s *Service) Provide(uri string, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[uri] = src
}

// Load parses and registers the sheet at uri. Loading a registered sheet
// replaces its rules.
func (s *Service) Load(uri string) error {
	s.mu.RLock()
	src, ok := s.sources[uri]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", uri, ErrUnknownSheet)
	}

	data, err := src()
	if err != nil {
		return fmt.Errorf("read style sheet %s: %w", uri, err)
	}
	sheet, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parse style sheet %s: %w", uri, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registered[uri]; !exists {
		s.order = append(s.order, uri)
	}
	s.registered[uri] = sheet
	return nil
}

// Unload unregisters the sheet at uri. Unloading an unregistered sheet does
// nothing.
func (s *Service) Unload(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registered[uri]; !ok {
		return nil
	}
	delete(s.registered, uri)
	for i, u := range s.order {
		if u == uri {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// IsRegistered reports whether the sheet at uri is registered.
func (s *Service) IsRegistered(uri string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registered[uri]
	return ok
}

// Registered returns the registered URIs in load order.
func (s *Service) Registered() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Rules merges every registered sheet, later sheets winning, and returns the
// rule set for the given theme style ("" for none).
func (s *Service) Rules(themeStyle string) map[string]Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Rule)
	for _, uri := range s.order {
		sheet := s.registered[uri]
		maps.Copy(out, sheet.Elements)
		if theme, ok := sheet.Themes[themeStyle]; ok && themeStyle != "" {
			maps.Copy(out, theme.Elements)
		}
	}
	return out
}

// Parse decodes a TOML style sheet.
func Parse(data []byte) (*Sheet, error) {
	var sheet Sheet
	if err := toml.Unmarshal(data, &sheet); err != nil {
		return nil, err
	}
	if sheet.Elements == nil {
		sheet.Elements = map[string]Rule{}
	}

	errs := validateRules("elements", sheet.Elements)
	for _, style := range sheet.ThemeStyles() {
		errs = append(errs, validateRules("themes."+style+".elements", sheet.Themes[style].Elements)...)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRule, strings.Join(errs, "; "))
	}
	return &sheet, nil
}

func validateRules(prefix string, rules map[string]Rule) []string {
	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []string
	for _, id := range ids {
		rule := rules[id]
		errs = append(errs, validation.ValidateColors(prefix+"."+id, true,
			validation.ColorField{Name: "foreground", Value: rule.Foreground},
			validation.ColorField{Name: "background", Value: rule.Background},
		)...)
	}
	return errs
}

// ThemeStyles lists the theme styles a sheet overrides, sorted.
func (s *Sheet) ThemeStyles() []string {
	styles := make([]string, 0, len(s.Themes))
	for style := range s.Themes {
		styles = append(styles, style)
	}
	sort.Strings(styles)
	return styles
}
