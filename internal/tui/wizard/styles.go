package wizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/tui/theme"
)

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("↑↓", "navigate", "enter", "select", "esc", "back")
// Returns: "↑↓ navigate • enter select • esc back"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	s := theme.Current().S()
	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + s.HintSeparator.Render("•") + " ")
		}
		b.WriteString(s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1]))
	}
	return b.String()
}

// renderChips renders options in a row, highlighting the selected one.
// focused dims the row when another row owns the cursor.
func renderChips(options []string, selected int, focused bool) string {
	s := theme.Current().S()
	chips := make([]string, len(options))
	for i, opt := range options {
		switch {
		case i == selected && focused:
			chips[i] = s.Selected.Render(" " + opt + " ")
		case i == selected:
			chips[i] = s.Emphasis.Render("[" + opt + "]")
		default:
			chips[i] = s.Label.Render(" " + opt + " ")
		}
	}
	return strings.Join(chips, " ")
}

// methodBadge renders a delivery method in its accent color.
func methodBadge(m distribution.Method) string {
	t := theme.Current()
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.MethodColor(string(m)))).
		Bold(m != distribution.MethodUnset).
		Render(m.Label())
}

// renderErrors renders validation errors one per line.
func renderErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	s := theme.Current().S()
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = s.Error.Render("✗ " + e)
	}
	return strings.Join(lines, "\n")
}

// newInput creates a themed single-line text input.
func newInput(placeholder string, limit int) textinput.Model {
	t := theme.Current()
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = ""
	input.CharLimit = limit
	input.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Tertiary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	input.SetWidth(50)
	return input
}

// progressBar renders done/total as a gradient bar of width cells.
func progressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	t := theme.Current()
	filled := done * width / total
	colors := theme.Gradient(t.Secondary, t.Primary, width)

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i])).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgSurface1)).Render("░"))
		}
	}
	return b.String()
}
