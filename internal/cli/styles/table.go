package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// NewStyledTable creates a themed table model.
func NewStyledTable(theme *Theme, columns []table.Column, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Accent).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.Text).
		Background(theme.SurfaceVariant).
		Bold(true)
	s.Cell = s.Cell.
		Foreground(theme.Text)

	t.SetStyles(s)
	return t
}

// WindowTableColumns returns columns for the dashboard window table.
func WindowTableColumns() []table.Column {
	return []table.Column{
		{Title: "Window", Width: 8},
		{Title: "Title", Width: 32},
		{Title: "Host", Width: 32},
		{Title: "Theme", Width: 6},
		{Title: "Labels", Width: 14},
	}
}

// PrefTableColumns returns columns for the preference list.
func PrefTableColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Value", Width: 20},
		{Title: "Type", Width: 8},
		{Title: "Source", Width: 8},
	}
}

// Truncate shortens s to width cells, ending with an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
