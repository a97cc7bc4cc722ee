package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConfigOrdered_SortsSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Addons.Installed = []InstalledAddon{{ID: "b", Version: "1"}, {ID: "a", Version: "2"}}
	cfg.Preferences["debug"] = true

	require.NoError(t, WriteConfigOrdered(cfg, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var headers []string
	for _, line := range strings.Split(string(content), "\n") {
		if match := sectionHeader.FindStringSubmatch(line); match != nil {
			headers = append(headers, match[1])
		}
	}
	require.NotEmpty(t, headers)
	for i := 1; i < len(headers); i++ {
		assert.LessOrEqual(t, headers[i-1], headers[i])
	}

	// array entries keep their order
	text := string(content)
	assert.Less(t, strings.Index(text, `id = 'b'`), strings.Index(text, `id = 'a'`))
}

func TestWriteConfigOrdered_NilConfig(t *testing.T) {
	assert.Error(t, WriteConfigOrdered(nil, filepath.Join(t.TempDir(), "x.toml")))
}

func TestSortTOMLSections(t *testing.T) {
	in := "[zeta]\nk = 1\n\n[alpha]\nk = 2\n\n[[alpha.items]]\nn = 1\n\n[[alpha.items]]\nn = 2\n"
	want := "[alpha]\nk = 2\n\n[[alpha.items]]\nn = 1\n\n[[alpha.items]]\nn = 2\n\n[zeta]\nk = 1\n"
	assert.Equal(t, want, sortTOMLSections(in))
}
