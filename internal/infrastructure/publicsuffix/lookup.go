// Package publicsuffix resolves registrable base domains with the public
// suffix list.
package publicsuffix

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/bnema/pagetitle/internal/domain/address"
)

var (
	// ErrHostIsIPAddress is returned for IP literals, which have no base domain.
	ErrHostIsIPAddress = errors.New("host is an IP address")
	// ErrInsufficientDomainLevels is returned when the host is itself a
	// public suffix, like "co.uk".
	ErrInsufficientDomainLevels = errors.New("insufficient domain levels")
	// ErrEmptyHost is returned for an empty host.
	ErrEmptyHost = errors.New("empty host")
)

var _ address.BaseDomainLookup = (*Lookup)(nil)

// Lookup implements address.BaseDomainLookup with golang.org/x/net/publicsuffix.
type Lookup struct {
	profile *idna.Profile
}

// New creates a Lookup.
func New() *Lookup {
	return &Lookup{profile: idna.Lookup}
}

// BaseDomain returns the public suffix plus one label of host. A trailing dot
// is kept, and internationalized hosts are answered in the form they were
// given.
func (l *Lookup) BaseDomain(host string) (string, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return "", ErrEmptyHost
	}

	bare := strings.Trim(host, "[]")
	if net.ParseIP(bare) != nil {
		return "", fmt.Errorf("%s: %w", host, ErrHostIsIPAddress)
	}

	trailingDot := strings.HasSuffix(host, ".")
	name := strings.TrimSuffix(host, ".")

	ascii, err := l.profile.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", host, err)
	}

	base, err := publicsuffix.EffectiveTLDPlusOne(ascii)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", host, ErrInsufficientDomainLevels, err)
	}

	if ascii != name {
		if unicode, uerr := l.profile.ToUnicode(base); uerr == nil {
			base = unicode
		}
	}
	if trailingDot {
		base += "."
	}
	return base, nil
}

// PublicSuffix returns the public suffix of host and whether it comes from
// an ICANN-managed rule.
func (l *Lookup) PublicSuffix(host string) (string, bool) {
	return publicsuffix.PublicSuffix(strings.TrimSuffix(strings.ToLower(host), "."))
}
