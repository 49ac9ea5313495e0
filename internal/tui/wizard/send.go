package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/giftdist/internal/dispatch"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/logger"
	"github.com/mark3labs/giftdist/internal/nats"
	"github.com/mark3labs/giftdist/internal/tui/theme"
)

// sendResultMsg carries the outcome of Dispatcher.Send.
type sendResultMsg struct {
	receipt *dispatch.Receipt
	err     error
}

// deliveriesLoadedMsg reports how many delivery events were read back.
type deliveriesLoadedMsg struct {
	count int
	err   error
}

// startSend hands the confirmed state to the dispatcher in the background.
func (m *WizardModel) startSend() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelSend = cancel
	m.phase = phaseSending
	m.confirm = nil

	state := m.state
	d := m.dispatcher
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			receipt, err := d.Send(ctx, state)
			return sendResultMsg{receipt: receipt, err: err}
		},
	)
}

func (m *WizardModel) handleSendResult(msg sendResultMsg) tea.Cmd {
	if m.cancelSend != nil {
		m.cancelSend()
		m.cancelSend = nil
	}

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) && !m.cancelled {
			// Reopen the batch so it can be reviewed and sent again.
			m.store.SetState(distribution.WithConfirmed(false))
			m.phase = phaseSteps
			m.notice = "Sending cancelled. No gift cards were sent."
			return m.initCurrentStep()
		}
		logger.Error("Send failed: %v", msg.err)
		m.sendErr = msg.err
		m.phase = phaseDone
		return nil
	}

	m.receipt = msg.receipt
	m.phase = phaseDone
	if !m.dispatcher.Recording() {
		return nil
	}

	d := m.dispatcher
	ctx := m.ctx
	batch := msg.receipt.Batch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		deliveries, err := d.Deliveries(ctx, batch)
		return deliveriesLoadedMsg{count: len(deliveries), err: err}
	}
}

// sendingView renders the spinner shown while the dispatcher runs.
func (m *WizardModel) sendingView() string {
	st := theme.Current().S()
	var b strings.Builder

	selected := m.counts.Selected()
	b.WriteString(m.spinner.View() + " " + st.Emphasis.Render(
		fmt.Sprintf("Sending %d gift cards (%s)…", selected, distribution.FormatCurrency(m.total))))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar("esc", "cancel", "ctrl+c", "quit"))
	return b.String()
}

// doneView renders the receipt, or the error that stopped the send.
func (m *WizardModel) doneView() string {
	st := theme.Current().S()
	var b strings.Builder

	if m.sendErr != nil {
		b.WriteString(renderErrors([]string{m.sendErr.Error()}))
		b.WriteString("\n\n")
		b.WriteString(renderHintBar("n", "new batch", "q", "quit"))
		return b.String()
	}

	r := m.receipt
	b.WriteString(st.Success.Render("✓ The gift cards have been sent to the recipients"))
	b.WriteString("\n\n")
	b.WriteString(st.Label.Render("Order number"))
	b.WriteString("\n")
	b.WriteString(st.Emphasis.Render("#" + r.Batch))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %d  %s %d  %s %d\n",
		methodBadge(distribution.MethodPhysical), r.Counts.Physical,
		methodBadge(distribution.MethodEmail), r.Counts.Email,
		methodBadge(distribution.MethodSMS), r.Counts.SMS)
	b.WriteString(st.Label.Render(fmt.Sprintf("%d cards, %s in total, sent %s",
		r.Sent, distribution.FormatCurrency(r.TotalValue), r.SentAt.Format("2006-01-02 15:04"))))
	b.WriteString("\n")

	if m.dispatcher.Recording() {
		b.WriteString(st.Muted.Render(fmt.Sprintf("%d delivery events on %s",
			m.deliveries, nats.SubjectForBatch(r.Batch))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderHintBar("n", "new batch", "q", "quit"))
	return b.String()
}
