package publicsuffix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pagetitle/internal/domain/address"
)

func TestBaseDomain(t *testing.T) {
	lookup := New()

	tests := []struct {
		host string
		want string
	}{
		{"www.example.com", "example.com"},
		{"mail.example.co.uk", "example.co.uk"},
		{"EXAMPLE.org", "example.org"},
		{"a.b.c.example.net", "example.net"},
		{"www.example.com.", "example.com."},
		{"www.bücher.de", "bücher.de"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			got, err := lookup.BaseDomain(tt.host)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseDomain_Errors(t *testing.T) {
	lookup := New()

	_, err := lookup.BaseDomain("192.168.1.1")
	assert.ErrorIs(t, err, ErrHostIsIPAddress)

	_, err = lookup.BaseDomain("[::1]")
	assert.ErrorIs(t, err, ErrHostIsIPAddress)

	_, err = lookup.BaseDomain("co.uk")
	assert.ErrorIs(t, err, ErrInsufficientDomainLevels)

	_, err = lookup.BaseDomain("")
	assert.ErrorIs(t, err, ErrEmptyHost)
}

func TestPublicSuffix(t *testing.T) {
	suffix, icann := New().PublicSuffix("www.example.co.uk")
	assert.Equal(t, "co.uk", suffix)
	assert.True(t, icann)
}

func TestDecomposeWithPublicSuffix(t *testing.T) {
	lookup := New()

	tests := []struct {
		url  string
		want address.Parts
	}{
		{
			url:  "https://mail.google.com/mail/u/0",
			want: address.Parts{Kind: address.KindHostParts, Subdomain: "mail.", Domain: "google.com"},
		},
		{
			url:  "http://news.bbc.co.uk:8080/",
			want: address.Parts{Kind: address.KindHostParts, Subdomain: "news.", Domain: "bbc.co.uk", Port: ":8080"},
		},
		{
			url:  "http://192.168.0.10/admin",
			want: address.Parts{Kind: address.KindHostParts, Domain: "192.168.0.10"},
		},
		{
			url:  "http://localhost:3000/",
			want: address.Parts{Kind: address.KindHostParts, Domain: "localhost", Port: ":3000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := address.Decompose(tt.url, lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
