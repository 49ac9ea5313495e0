package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/tui/theme"
)

// ConfirmModal shows the batch summary and asks for the terms before the
// batch is confirmed and sent.
type ConfirmModal struct {
	nav      *distribution.Navigator
	viewport viewport.Model
	summary  string // Raw markdown summary
	accepted bool
	err      string
	width    int
	height   int
}

// NewConfirmModal creates the modal for the current state.
func NewConfirmModal(nav *distribution.Navigator, state distribution.AppState) *ConfirmModal {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(12),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := &ConfirmModal{
		nav:      nav,
		viewport: vp,
		width:    60,
		height:   20,
	}
	m.Sync(state)
	return m
}

// SetSize updates the dimensions of the modal.
func (m *ConfirmModal) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.SetWidth(width)
	m.viewport.SetHeight(max(height-8, 5))
	m.viewport.SetContent(renderMarkdown(m.summary, width))
}

// Sync refreshes the summary and terms flag from the store.
func (m *ConfirmModal) Sync(state distribution.AppState) {
	m.accepted = state.TermsAccepted
	summary := BuildSummary(state.GiftCards)
	if summary != m.summary {
		m.summary = summary
		m.viewport.SetContent(renderMarkdown(m.summary, m.width))
	}
}

// SetError shows why confirming failed.
func (m *ConfirmModal) SetError(err error) {
	if err == nil {
		m.err = ""
		return
	}
	m.err = err.Error()
}

// Update handles messages for the modal.
func (m *ConfirmModal) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "space", "t":
			m.nav.AcceptTerms(!m.accepted)
			m.err = ""
			return nil
		case "enter", "y":
			if !m.accepted {
				m.err = distribution.ErrTermsNotAccepted.Error()
				return nil
			}
			return func() tea.Msg { return ConfirmRequestedMsg{} }
		case "esc", "n":
			return func() tea.Msg { return ConfirmCancelledMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// View renders the modal body.
func (m *ConfirmModal) View() string {
	st := theme.Current().S()
	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	box := "[ ]"
	if m.accepted {
		box = st.Success.Render("[x]")
	}
	b.WriteString(box + " " + st.Unselected.Render("I accept the terms for distributing gift cards"))
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(renderErrors([]string{m.err}))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	bar := NewButtonBar(CreateCancelConfirmButtons(m.accepted))
	bar.SetWidth(m.width)
	b.WriteString(bar.Render())
	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"space", "accept terms",
		"enter", "confirm",
		"↑↓", "scroll",
		"esc", "cancel",
	))
	return b.String()
}

// Accepted reports whether the terms box is ticked.
func (m *ConfirmModal) Accepted() bool {
	return m.accepted
}

// BuildSummary renders the batch as markdown: totals followed by one
// section per delivery method that has cards.
func BuildSummary(cards []distribution.GiftCard) string {
	selected := distribution.SelectedCards(cards)
	groups := distribution.GroupGiftCardsByMethod(selected)

	var b strings.Builder
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Gift cards:** %d\n", len(selected))
	fmt.Fprintf(&b, "- **Total value:** %s\n", distribution.FormatCurrency(distribution.CalculateTotalValue(selected)))

	if physical := groups[string(distribution.MethodPhysical)]; len(physical) > 0 {
		fmt.Fprintf(&b, "\n### Physical print (%d)\n\n", len(physical))
		motif := "none"
		if d := physical[0].Details.Physical; d != nil && d.Motif != "" {
			motif = d.Motif
		}
		fmt.Fprintf(&b, "- Motif: %s\n", motif)
		b.WriteString("- A PDF is prepared for printing\n")
	}

	for _, method := range []distribution.Method{distribution.MethodEmail, distribution.MethodSMS} {
		group := groups[string(method)]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s (%d)\n\n", method.Label(), len(group))
		for _, card := range group {
			fmt.Fprintf(&b, "- %s\n", recipientLine(card))
		}
	}
	return b.String()
}

func recipientLine(card distribution.GiftCard) string {
	cfg := distribution.CardConfig{}
	if card.Config != nil {
		cfg = *card.Config
	}
	contact := cfg.Email
	if card.Method == distribution.MethodSMS {
		contact = cfg.Phone
	}
	if contact == "" {
		contact = "not set"
	}
	if cfg.Name != "" {
		contact = cfg.Name + " - " + contact
	}

	when := sendTimeLabel(distribution.SendNow)
	if d := card.Details.Digital; d != nil {
		when = sendTimeLabel(d.SendTime)
		if d.SendTime == distribution.SendScheduled {
			when = d.ScheduledDate + " " + d.ScheduledTime
		}
	}
	return fmt.Sprintf("#%d %s (%s)", card.ID, contact, when)
}

// renderMarkdown renders markdown with glamour, falling back to plain text
// if rendering fails.
func renderMarkdown(content string, width int) string {
	// Cap width to 120 for readability
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	// Remove trailing newline that glamour adds
	return strings.TrimSuffix(rendered, "\n")
}

// ConfirmRequestedMsg is sent when the user confirms the batch.
type ConfirmRequestedMsg struct{}

// ConfirmCancelledMsg is sent when the user closes the modal.
type ConfirmCancelledMsg struct{}
