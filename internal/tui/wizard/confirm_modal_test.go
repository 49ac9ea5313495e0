package wizard

import (
	"testing"

	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/tui/testfixtures"
	"github.com/stretchr/testify/require"
)

func TestBuildSummary(t *testing.T) {
	t.Parallel()

	w := testfixtures.AtConfirm()
	summary := BuildSummary(w.Store.State().GiftCards)

	require.Contains(t, summary, "**Gift cards:** 3")
	require.Contains(t, summary, "### Physical print (1)")
	require.Contains(t, summary, "Motif: christmas")
	require.Contains(t, summary, "### Email (1)")
	require.Contains(t, summary, "#2 Kari - kari@example.no (immediately)")
	require.Contains(t, summary, "### SMS (1)")
	require.Contains(t, summary, "#3 91234567 (immediately)")
	require.NotContains(t, summary, "#4")
}

func TestBuildSummary_Scheduled(t *testing.T) {
	t.Parallel()

	w := testfixtures.AtConfirm()
	require.NoError(t, w.Manager.SetSchedule(3, "2026-12-24", "18:00"))

	summary := BuildSummary(w.Store.State().GiftCards)
	require.Contains(t, summary, "#3 91234567 (2026-12-24 18:00)")
}

func TestBuildSummary_NoPhysicalSection(t *testing.T) {
	t.Parallel()

	cards := distribution.GenerateTestGiftCards(2, 100)
	cards[0].Method = distribution.MethodEmail
	summary := BuildSummary(cards)

	require.Contains(t, summary, "**Gift cards:** 1")
	require.NotContains(t, summary, "Physical")
	require.Contains(t, summary, "#1 not set (immediately)")
}

func TestConfirmModal_TermsGateConfirm(t *testing.T) {
	t.Parallel()

	w := testfixtures.AtConfirm()
	modal := NewConfirmModal(w.Navigator, w.Store.State())
	t.Cleanup(w.Store.SubscribeFunc(modal.Sync))

	require.Nil(t, modal.Update(testfixtures.Key("enter")))
	require.Contains(t, testfixtures.Plain(modal.View()), distribution.ErrTermsNotAccepted.Error())

	_ = modal.Update(testfixtures.Key("space"))
	require.True(t, w.Store.State().TermsAccepted)
	require.True(t, modal.Accepted())
	require.NotContains(t, testfixtures.Plain(modal.View()), distribution.ErrTermsNotAccepted.Error())

	cmd := modal.Update(testfixtures.Key("enter"))
	require.NotNil(t, cmd)
	require.IsType(t, ConfirmRequestedMsg{}, cmd())

	// Toggling again withdraws acceptance
	_ = modal.Update(testfixtures.Key("t"))
	require.False(t, w.Store.State().TermsAccepted)
}

func TestConfirmModal_Cancel(t *testing.T) {
	t.Parallel()

	w := testfixtures.AtConfirm()
	modal := NewConfirmModal(w.Navigator, w.Store.State())

	cmd := modal.Update(testfixtures.Key("esc"))
	require.NotNil(t, cmd)
	require.IsType(t, ConfirmCancelledMsg{}, cmd())
}

func TestConfirmModal_ShowsSummary(t *testing.T) {
	t.Parallel()

	w := testfixtures.AtConfirm()
	modal := NewConfirmModal(w.Navigator, w.Store.State())
	modal.SetSize(90, 30)

	view := testfixtures.Plain(modal.View())
	require.Contains(t, view, "Summary")
	require.Contains(t, view, "kari@example.no")
	require.Contains(t, view, "Confirm & send")
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	out := testfixtures.Plain(renderMarkdown("# Title\n\nSome **bold** text", 200))
	require.Contains(t, out, "Title")
	require.Contains(t, out, "bold")
}
