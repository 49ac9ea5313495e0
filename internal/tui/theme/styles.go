package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	// Modal chrome
	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style

	// Text
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Emphasis lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style

	// Lists
	Selected   lipgloss.Style
	Unselected lipgloss.Style

	// Hint bar
	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	// Buttons
	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	return &Styles{
		ModalContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Tertiary)).
			Background(lipgloss.Color(t.BgBase)).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true).
			Align(lipgloss.Center),

		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
		Emphasis: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)).Bold(true),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)),

		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Tertiary)).
			Bold(true),
		Unselected: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),

		HintKey:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgSurface2)),

		ButtonNormal: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.BgOverlay)).
			Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Tertiary)).
			Bold(true),
	}
}
