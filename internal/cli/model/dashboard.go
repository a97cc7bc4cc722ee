// Package model provides Bubble Tea models for CLI commands.
package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/pagetitle/internal/application/port"
	"github.com/bnema/pagetitle/internal/cli/styles"
	"github.com/bnema/pagetitle/internal/logging"
)

const (
	defaultRefreshInterval = 500 * time.Millisecond
	debugPref              = "debug"
	// rows taken by header, preview, status and help
	dashboardChrome = 12
)

// DashboardModel shows what each browser window's address bar displays.
type DashboardModel struct {
	help  help.Model
	keys  styles.DashboardKeyMap
	table table.Model
	bar   *styles.AddressBarRenderer

	windows []WindowView
	width   int
	height  int
	err     error
	status  string

	ctx     context.Context
	source  DashboardSource
	prefs   port.PreferenceStore
	theme   *styles.Theme
	refresh time.Duration
}

// DashboardConfig holds the dashboard's dependencies.
type DashboardConfig struct {
	Source DashboardSource
	// Preferences backs the debug toggle; nil disables it.
	Preferences     port.PreferenceStore
	RefreshInterval time.Duration
}

// NewDashboardModel creates the window dashboard.
func NewDashboardModel(ctx context.Context, theme *styles.Theme, cfg DashboardConfig) DashboardModel {
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}
	return DashboardModel{
		help:    styles.NewStyledHelp(theme),
		keys:    styles.DefaultDashboardKeyMap(),
		table:   styles.NewStyledTable(theme, styles.WindowTableColumns(), nil, 80, 10),
		bar:     styles.NewAddressBarRenderer(theme),
		width:   80,
		height:  24,
		ctx:     ctx,
		source:  cfg.Source,
		prefs:   cfg.Preferences,
		theme:   theme,
		refresh: refresh,
	}
}

type windowsLoadedMsg struct {
	windows []WindowView
	err     error
}

type stylesReloadedMsg struct {
	err error
}

type debugToggledMsg struct {
	enabled bool
	err     error
}

type tickMsg time.Time

// Init implements tea.Model.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadWindows, m.tick())
}

func (m DashboardModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m DashboardModel) loadWindows() tea.Msg {
	windows, err := m.source.Windows(m.ctx)
	return windowsLoadedMsg{windows: windows, err: err}
}

func (m DashboardModel) reloadStyles() tea.Msg {
	logging.FromContext(m.ctx).Debug().Msg("reloading styles from dashboard")
	return stylesReloadedMsg{err: m.source.ReloadStyles(m.ctx)}
}

func (m DashboardModel) toggleDebug() tea.Msg {
	enabled := !m.prefs.Bool(debugPref, false)
	return debugToggledMsg{enabled: enabled, err: m.prefs.Set(debugPref, enabled)}
}

// Update implements tea.Model.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(3, msg.Height-dashboardChrome))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tickMsg:
		return m, tea.Batch(m.loadWindows, m.tick())

	case windowsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.windows = msg.windows
		m.table.SetRows(m.rows())
		return m, nil

	case stylesReloadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = "Styles reloaded"
		}
		return m, nil

	case debugToggledMsg:
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("Error: %v", msg.err)
		case msg.enabled:
			m.status = "Debug logging on"
		default:
			m.status = "Debug logging off"
		}
		return m, nil
	}

	return m, nil
}

func (m DashboardModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ReloadStyle):
		return m, m.reloadStyles

	case key.Matches(msg, m.keys.Debug):
		if m.prefs == nil {
			m.status = "Preferences not available"
			return m, nil
		}
		return m, m.toggleDebug

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DashboardModel) rows() []table.Row {
	cols := styles.WindowTableColumns()
	rows := make([]table.Row, 0, len(m.windows))
	for _, w := range m.windows {
		snap := w.Snapshot
		title := snap.Title
		if snap.NoTitle {
			title = "(address)"
		}
		host := snap.Subdomain + snap.Domain + snap.Port
		theme := snap.ThemeStyle
		if theme == "" {
			theme = "-"
		}
		rows = append(rows, table.Row{
			string(snap.WindowID),
			styles.Truncate(title, cols[1].Width),
			styles.Truncate(host, cols[2].Width),
			theme,
			snap.Labels,
		})
	}
	return rows
}

// Selected returns the highlighted window.
func (m DashboardModel) Selected() (WindowView, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.windows) {
		return WindowView{}, false
	}
	return m.windows[i], true
}

// View implements tea.Model.
func (m DashboardModel) View() string {
	t := m.theme
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		t.Title.Render(styles.IconGlobe+" pagetitle"),
		"  ",
		t.Badge.Render(fmt.Sprintf("%d windows", len(m.windows))),
	)
	if m.prefs != nil && m.prefs.Bool(debugPref, false) {
		header = lipgloss.JoinHorizontal(lipgloss.Center, header, " ", t.BadgeMuted.Render("debug"))
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(t.ErrorStyle.Render(fmt.Sprintf("%s %v", styles.IconX, m.err)))
		b.WriteString("\n\n")
	}

	if len(m.windows) == 0 {
		b.WriteString(t.Subtle.Render("No browser windows"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
		if w, ok := m.Selected(); ok {
			rules := m.source.Rules(w.Snapshot.ThemeStyle)
			bar := styles.AddressBarFromSnapshot(w.Snapshot, w.Address)
			b.WriteString(t.Subtitle.Render(fmt.Sprintf("%s %s · %d tabs", styles.IconWindow, w.Snapshot.WindowID, w.Tabs)))
			b.WriteString("\n")
			b.WriteString(m.bar.Render(bar, rules, min(m.width, 100)))
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(t.Subtle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
