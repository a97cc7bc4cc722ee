// Package address splits page addresses into the parts shown beside the
// address bar: a protocol token for non-web schemes, or subdomain, domain and
// port for http, https and ftp.
package address

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrMalformedAddress is returned when an address cannot be parsed.
var ErrMalformedAddress = errors.New("malformed address")

// Kind tells which fields of Parts are populated.
type Kind int

const (
	// KindProtocol means only Token is set.
	KindProtocol Kind = iota
	// KindHostParts means Subdomain, Domain and Port are set.
	KindHostParts
)

func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindHostParts:
		return "host-parts"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Parts is the decomposed form of an address.
type Parts struct {
	Kind      Kind
	Token     string // e.g. "about:"
	Subdomain string // e.g. "mail." (always dot-terminated, or empty)
	Domain    string // e.g. "example.co.uk"
	Port      string // e.g. ":8443", empty for the scheme default
}

//go:generate mockery --name=BaseDomainLookup --output=mocks --outpkg=mocks --with-expecter

// BaseDomainLookup resolves the registrable domain of a host using public
// suffix rules.
type BaseDomainLookup interface {
	BaseDomain(host string) (string, error)
}

// BaseDomainFunc adapts a plain function to BaseDomainLookup.
type BaseDomainFunc func(host string) (string, error)

// BaseDomain calls f(host).
func (f BaseDomainFunc) BaseDomain(host string) (string, error) {
	return f(host)
}

var (
	// A colon-terminated scheme that is not followed by a digit, so that
	// "localhost:8080" is not read as scheme "localhost:".
	schemePattern = regexp.MustCompile(`^([a-z0-9.+\-]+:)[^0-9]`)
	// Splits a pre-path into (scheme://userinfo@, host) dropping the port.
	prePathPattern = regexp.MustCompile(`^((?:[a-z]+://)?(?:[^/]+@)?)(.+?)(?::\d+)?(?:/|$)`)
)

var webSchemes = map[string]bool{
	"http:":  true,
	"https:": true,
	"ftp:":   true,
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ftp":   "21",
}

// Scheme returns the scheme token of raw including its trailing colon.
func Scheme(raw string) (string, bool) {
	m := schemePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Decompose splits raw into a protocol token or host parts.
//
// The base domain comes from lookup; when the lookup fails the whole host is
// treated as its own base domain. IPv6 literals skip the lookup entirely.
func Decompose(raw string, lookup BaseDomainLookup) (Parts, error) {
	scheme, ok := Scheme(raw)
	if !ok {
		return Parts{}, fmt.Errorf("%w: no scheme in %q", ErrMalformedAddress, raw)
	}

	if !webSchemes[scheme] {
		return Parts{Kind: KindProtocol, Token: scheme}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Parts{}, fmt.Errorf("%w: %w", ErrMalformedAddress, err)
	}
	if u.Host == "" {
		return Parts{}, fmt.Errorf("%w: no host in %q", ErrMalformedAddress, raw)
	}

	m := prePathPattern.FindStringSubmatch(prePath(u))
	if m == nil {
		return Parts{}, fmt.Errorf("%w: cannot split pre-path of %q", ErrMalformedAddress, raw)
	}
	host := m[2]

	baseDomain := host
	if !strings.HasPrefix(host, "[") && lookup != nil {
		if base, lookupErr := lookup.BaseDomain(host); lookupErr == nil {
			baseDomain = base
		}
	}

	subdomain, err := subdomainOf(host, baseDomain)
	if err != nil {
		return Parts{}, err
	}

	return Parts{
		Kind:      KindHostParts,
		Subdomain: subdomain,
		Domain:    host[len(subdomain):],
		Port:      explicitPort(u),
	}, nil
}

// SegmentCount returns the number of dot-separated labels in host.
func SegmentCount(host string) int {
	return strings.Count(host, ".") + 1
}

// subdomainOf returns the leading labels of host that are not part of
// baseDomain, keeping their trailing dots.
func subdomainOf(host, baseDomain string) (string, error) {
	if baseDomain == host {
		return "", nil
	}

	n := SegmentCount(host) - SegmentCount(baseDomain)
	if n < 0 {
		return "", fmt.Errorf("%w: base domain %q is longer than host %q", ErrMalformedAddress, baseDomain, host)
	}
	if n == 0 {
		return "", nil
	}

	re, err := regexp.Compile(fmt.Sprintf(`(?:[^.]*\.){%d}`, n))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedAddress, err)
	}
	sub := re.FindString(host)
	if sub == "" {
		return "", fmt.Errorf("%w: cannot take %d labels from %q", ErrMalformedAddress, n, host)
	}
	return sub, nil
}

func prePath(u *url.URL) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	if u.User != nil {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}
	b.WriteString(strings.ToLower(u.Host))
	return b.String()
}

func explicitPort(u *url.URL) string {
	port := u.Port()
	if port == "" || port == defaultPorts[strings.ToLower(u.Scheme)] {
		return ""
	}
	return ":" + port
}
