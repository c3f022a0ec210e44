package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/studymd/internal/config"
)

// palette is one theme's base colors
type palette struct {
	text     lipgloss.Color
	border   lipgloss.Color
	selected lipgloss.Color
	codeBg   lipgloss.Color
}

var (
	darkPalette = palette{
		text:     lipgloss.Color("252"),
		border:   lipgloss.Color("240"),
		selected: lipgloss.Color("236"),
		codeBg:   lipgloss.Color("235"),
	}
	lightPalette = palette{
		text:     lipgloss.Color("235"),
		border:   lipgloss.Color("250"),
		selected: lipgloss.Color("254"),
		codeBg:   lipgloss.Color("255"),
	}
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// Document styles
	Title    lipgloss.Style
	Section  lipgloss.Style
	Sub      lipgloss.Style
	Text     lipgloss.Style
	Term     lipgloss.Style
	Bullet   lipgloss.Style
	Caption  lipgloss.Style
	Code     lipgloss.Style
	CodeLang lipgloss.Style
	Mark     lipgloss.Style

	// Chrome styles
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style
	Border   lipgloss.Style
	Focused  lipgloss.Style
	Divider  lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default dark styles
func DefaultStyles() *StyleManager {
	s := &StyleManager{}
	s.apply(darkPalette, lipgloss.Color("212"), lipgloss.Color("245"), lipgloss.Color("114"))
	return s
}

// LoadFromConfig updates styles based on configuration and the current theme
func (s *StyleManager) LoadFromConfig(dark bool) {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	s.apply(p,
		lipgloss.Color(config.GetColorAccent()),
		lipgloss.Color(config.GetColorDim()),
		lipgloss.Color(config.GetColorCode()))
}

func (s *StyleManager) apply(p palette, accent, dim, code lipgloss.Color) {
	s.Title = lipgloss.NewStyle().Bold(true).Foreground(accent)
	s.Section = lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true)
	s.Sub = lipgloss.NewStyle().Bold(true).Foreground(p.text)
	s.Text = lipgloss.NewStyle().Foreground(p.text)
	s.Term = lipgloss.NewStyle().Bold(true).Foreground(accent)
	s.Bullet = lipgloss.NewStyle().Foreground(accent)
	s.Caption = lipgloss.NewStyle().Italic(true).Foreground(dim)
	s.Code = lipgloss.NewStyle().Foreground(code).Background(p.codeBg)
	s.CodeLang = lipgloss.NewStyle().Foreground(dim).Italic(true)
	s.Mark = lipgloss.NewStyle().Bold(true).Foreground(accent).Reverse(true)

	s.Selected = lipgloss.NewStyle().Background(p.selected)
	s.Cursor = lipgloss.NewStyle().Foreground(accent)
	s.Dim = lipgloss.NewStyle().Foreground(dim)
	s.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border)
	s.Focused = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent)
	s.Divider = lipgloss.NewStyle().Foreground(p.border)
	s.Status = lipgloss.NewStyle().Foreground(dim)
	s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	s.SelectedBg = p.selected
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// Frame picks the border style for a pane
func (s *StyleManager) Frame(focused bool) lipgloss.Style {
	if focused {
		return s.Focused
	}
	return s.Border
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles(dark bool) {
	styles.LoadFromConfig(dark)
}
