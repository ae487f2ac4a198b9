package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/unbound-force/covtree/internal/tier"
)

// Styles defines the visual theme for terminal report output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for section headers.
	Header lipgloss.Style

	// SubHeader is used for secondary information lines.
	SubHeader lipgloss.Style

	// TierHigh, TierMedium, TierLow, and TierUnrated color-code
	// coverage tiers.
	TierHigh    lipgloss.Style
	TierMedium  lipgloss.Style
	TierLow     lipgloss.Style
	TierUnrated lipgloss.Style

	// TableHeader styles the header row of tables.
	TableHeader lipgloss.Style

	// Dir styles directory rows in the tree table.
	Dir lipgloss.Style

	// SummaryLabel styles summary line labels.
	SummaryLabel lipgloss.Style

	// Border is used for table borders.
	Border lipgloss.Style

	// Muted is used for de-emphasized text (diagnostics, paths).
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		TierHigh:    lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		TierMedium:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		TierLow:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		TierUnrated: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),

		Dir: lipgloss.NewStyle().Bold(true),

		SummaryLabel: lipgloss.NewStyle().Bold(true).Width(20),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// TierStyle returns the appropriate style for a coverage tier.
func (s Styles) TierStyle(t tier.Tier) lipgloss.Style {
	switch t {
	case tier.High:
		return s.TierHigh
	case tier.Medium:
		return s.TierMedium
	case tier.Low:
		return s.TierLow
	default:
		return s.TierUnrated
	}
}
