package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/unbound-force/typesafe/internal/taxonomy"
)

// Styles defines the visual theme for terminal report output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for per-file headers.
	Header lipgloss.Style

	// Source styles ordinary listing lines.
	Source lipgloss.Style

	// Marker styles "E|" mismatch lines.
	Marker lipgloss.Style

	// Internal styles the banner shown for internal failures.
	Internal lipgloss.Style

	// TableHeader styles the header row of tables.
	TableHeader lipgloss.Style

	// TableCell styles regular table cells.
	TableCell lipgloss.Style

	// Pass styles PASS indicators.
	Pass lipgloss.Style

	// Fail styles FAIL indicators.
	Fail lipgloss.Style

	// Border is used for table borders.
	Border lipgloss.Style

	// Muted is used for de-emphasized text.
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Source: lipgloss.NewStyle(),
		Marker: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		Internal: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		Pass: lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		Fail: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// ClassStyle returns the appropriate style for a mismatch class.
func (s Styles) ClassStyle(class taxonomy.Class) lipgloss.Style {
	switch class {
	case taxonomy.ClassAssertion:
		return s.Fail
	case taxonomy.ClassInternal:
		return s.Internal
	default:
		return s.Muted
	}
}
