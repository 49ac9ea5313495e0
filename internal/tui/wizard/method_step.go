package wizard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/tui/theme"
)

// methodKeys maps per-card keys to methods. The upper-case variants apply
// to the whole batch.
var methodKeys = map[string]distribution.Method{
	"p": distribution.MethodPhysical,
	"e": distribution.MethodEmail,
	"s": distribution.MethodSMS,
	"u": distribution.MethodUnset,
}

// MethodStep assigns a delivery method to each card.
type MethodStep struct {
	manager *distribution.Manager

	cards  []distribution.GiftCard
	counts distribution.MethodCounts
	cursor int
	offset int // First visible card
	width  int
	height int
}

// NewMethodStep creates the method step for the stored batch.
func NewMethodStep(manager *distribution.Manager, state distribution.AppState) *MethodStep {
	m := &MethodStep{
		manager: manager,
		width:   60,
		height:  10,
	}
	m.Sync(state)
	return m
}

// Init initializes the method step.
func (m *MethodStep) Init() tea.Cmd {
	m.cursor = 0
	m.offset = 0
	return nil
}

// SetSize updates the dimensions for the method step.
func (m *MethodStep) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampOffset()
}

// Sync refreshes the card list and counts from the store.
func (m *MethodStep) Sync(state distribution.AppState) {
	m.cards = state.GiftCards
	m.counts = distribution.CountByMethod(state.GiftCards)
	if m.cursor >= len(m.cards) {
		m.cursor = max(len(m.cards)-1, 0)
	}
	m.clampOffset()
}

// Update handles messages for the method step.
func (m *MethodStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.cards) == 0 {
		return nil
	}

	key := keyMsg.String()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.cards) - 1
	case "enter":
		return func() tea.Msg { return NextStepMsg{} }
	default:
		if method, ok := methodKeys[key]; ok {
			m.manager.SelectMethod(m.cards[m.cursor].ID, method)
			if m.cursor < len(m.cards)-1 {
				m.cursor++
			}
		} else if method, ok := methodKeys[strings.ToLower(key)]; ok && key != strings.ToLower(key) {
			m.manager.SelectAllMethod(method)
		}
	}
	m.clampOffset()
	return nil
}

// visibleRows is the number of card rows that fit below the summary.
func (m *MethodStep) visibleRows() int {
	return max(m.height-8, 3)
}

func (m *MethodStep) clampOffset() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(min(m.offset, len(m.cards)-rows), 0)
}

// View renders the method step.
func (m *MethodStep) View() string {
	st := theme.Current().S()
	var b strings.Builder

	total := len(m.cards)
	selected := m.counts.Selected()
	b.WriteString(fmt.Sprintf("%s %s  %s",
		progressBar(selected, total, 20),
		st.Emphasis.Render(fmt.Sprintf("%d/%d", selected, total)),
		st.Label.Render("with a delivery method")))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %d  %s %d  %s %d  %s %d",
		methodBadge(distribution.MethodPhysical), m.counts.Physical,
		methodBadge(distribution.MethodEmail), m.counts.Email,
		methodBadge(distribution.MethodSMS), m.counts.SMS,
		methodBadge(distribution.MethodUnset), m.counts.Unselected))
	b.WriteString("\n\n")

	end := min(m.offset+m.visibleRows(), total)
	for i := m.offset; i < end; i++ {
		card := m.cards[i]
		line := fmt.Sprintf("#%02d  %s  %s", card.ID, card.Code, distribution.FormatCurrency(card.Value))
		if i == m.cursor {
			b.WriteString(st.Selected.Render("▸ "+line) + "  " + methodBadge(card.Method))
		} else {
			b.WriteString(st.Unselected.Render("  "+line) + "  " + methodBadge(card.Method))
		}
		b.WriteString("\n")
	}
	if end < total {
		b.WriteString(st.Muted.Render(fmt.Sprintf("  … %d more", total-end)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(renderHintBar(
		"↑↓", "card",
		"p/e/s/u", "method",
		"P/E/S/U", "all cards",
		"enter", "next",
		"esc", "back",
	))
	return b.String()
}

// Cursor returns the index of the highlighted card.
func (m *MethodStep) Cursor() int {
	return m.cursor
}
