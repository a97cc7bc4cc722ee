package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/pagetitle/internal/application/usecase"
	"github.com/bnema/pagetitle/internal/bootstrap"
	"github.com/bnema/pagetitle/internal/cli"
	"github.com/bnema/pagetitle/internal/cli/styles"
	"github.com/bnema/pagetitle/internal/domain/title"
	"github.com/bnema/pagetitle/internal/infrastructure/memhost"
	"github.com/bnema/pagetitle/internal/infrastructure/publicsuffix"
	"github.com/bnema/pagetitle/internal/infrastructure/stylesheet"
)

func newTestApp(t *testing.T) *cli.App {
	t.Helper()
	a, err := cli.NewApp(cli.Options{ConfigDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func newDecomposer(t *testing.T) *decomposer {
	t.Helper()
	sheets := stylesheet.NewService()
	require.NoError(t, sheets.Load(stylesheet.OverlayURI))
	theme := styles.NewTheme(nil)
	lookup := publicsuffix.New()
	return &decomposer{
		lookup:  lookup,
		display: usecase.NewResolveDisplayUseCase(lookup),
		bar:     styles.NewAddressBarRenderer(theme),
		theme:   theme,
		rules:   sheets.Rules(""),
	}
}

func TestDecomposer_Write(t *testing.T) {
	d := newDecomposer(t)

	var out bytes.Buffer
	err := d.Write(context.Background(), &out, "Inbox", title.NoLabel, []string{
		"https://mail.google.com/",
		"http://www.bbc.co.uk:8080/news",
	})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Inbox")
	assert.Contains(t, s, `host-parts subdomain="mail." domain="google.com" port=""`)
	assert.Contains(t, s, `host-parts subdomain="www." domain="bbc.co.uk" port=":8080" suffix="co.uk"`)
	assert.Contains(t, s, `port="" suffix="com"`)
}

func TestDecomposer_IPHasNoSuffix(t *testing.T) {
	d := newDecomposer(t)

	var out bytes.Buffer
	require.NoError(t, d.Write(context.Background(), &out, "Router", title.NoLabel, []string{"http://192.168.0.10:8080/"}))
	assert.Contains(t, out.String(), `domain="192.168.0.10" port=":8080"`)
	assert.NotContains(t, out.String(), "suffix=")
}

func TestDecomposer_WriteWithoutTitle(t *testing.T) {
	d := newDecomposer(t)

	var out bytes.Buffer
	require.NoError(t, d.Write(context.Background(), &out, "", title.NoLabel, []string{"about:config"}))
	s := out.String()
	assert.Contains(t, s, "about:config")
	assert.Contains(t, s, `protocol token="about:" (no title)`)
}

func TestDecomposer_WriteFixedLabel(t *testing.T) {
	d := newDecomposer(t)

	var out bytes.Buffer
	require.NoError(t, d.Write(context.Background(), &out, "raw", title.FixedLabel("Pinned"), []string{"https://example.com/"}))
	assert.Contains(t, out.String(), "Pinned")
	assert.NotContains(t, out.String(), "raw")
}

func TestDecomposer_WriteReportsFailures(t *testing.T) {
	d := newDecomposer(t)

	var out bytes.Buffer
	err := d.Write(context.Background(), &out, "T", title.NoLabel, []string{"no scheme here", "https://example.com/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out.String(), "no scheme here")
	assert.Contains(t, out.String(), `domain="example.com"`)
}

func TestParsePrefValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"false", false},
		{"42", 42},
		{" -3 ", -3},
		{"hello", "hello"},
		{"1.5", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePrefValue(tt.raw))
		})
	}
}

func TestWritePrefsTable(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Preferences.Set("debug", "true"))
	require.NoError(t, a.Preferences.Set("extra", parsePrefValue("7")))

	var out bytes.Buffer
	writePrefsTable(&out, a)
	s := out.String()
	assert.Contains(t, s, "extensions.pagetitle")
	assert.Contains(t, s, "debug")
	assert.Contains(t, s, "deletePrefsOnUninstall")
	assert.Contains(t, s, "extra")

	assert.Equal(t, "user", prefSource(a, "debug"))
	assert.Equal(t, "default", prefSource(a, "deletePrefsOnUninstall"))
	assert.Equal(t, "user", prefSource(a, "extra"))
	assert.Equal(t, "-", prefSource(a, "missing"))
	assert.True(t, a.Preferences.Bool("debug", false))
}

func TestUninstall(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Preferences.Set("debug", true))

	var out bytes.Buffer
	require.NoError(t, uninstall(a.Ctx(), &out, a.Theme, bootstrap.NewAddon(nil, a.Preferences)))
	assert.Contains(t, out.String(), "Uninstalled")
	assert.Empty(t, a.ConfigManager.Get().Preferences)
	assert.False(t, a.Preferences.Has("debug"))
}

func TestUninstall_KeepsPreferencesWhenDisabled(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Preferences.Set("deletePrefsOnUninstall", false))
	require.NoError(t, a.Preferences.Set("debug", true))

	var out bytes.Buffer
	require.NoError(t, uninstall(a.Ctx(), &out, a.Theme, bootstrap.NewAddon(nil, a.Preferences)))
	assert.True(t, a.Preferences.Bool("debug", false))
}

func TestSelectNextTab(t *testing.T) {
	host := memhost.New(120)
	w := host.OpenWindow(memhost.WindowOptions{})
	w.FinishLoad()
	a := w.OpenTab("https://a.example/", "A")
	b := w.OpenTab("https://b.example/", "B")

	selectNextTab(w)
	assert.Same(t, b, w.Selected())
	selectNextTab(w)
	assert.Same(t, a, w.Selected())
}

func TestOpenDemoWindow(t *testing.T) {
	host := memhost.New(0)
	w := openDemoWindow(host, 0)
	assert.Equal(t, float64(demoPlatformVersion), host.PlatformVersion())
	assert.Len(t, w.Tabs(), 4)
	assert.True(t, w.Loaded())

	host = memhost.New(90)
	openDemoWindow(host, 90)
	assert.Equal(t, float64(90), host.PlatformVersion())
}
