package wizard

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/tui/testfixtures"
	"github.com/stretchr/testify/require"
)

func newTestMethodStep(t *testing.T, count int) (*MethodStep, testfixtures.Wizard) {
	t.Helper()
	w := testfixtures.AtMethods(count)
	step := NewMethodStep(w.Manager, w.Store.State())
	t.Cleanup(w.Store.SubscribeFunc(step.Sync))
	_ = step.Init()
	return step, w
}

func methods(cards []distribution.GiftCard) []distribution.Method {
	out := make([]distribution.Method, len(cards))
	for i, c := range cards {
		out[i] = c.Method
	}
	return out
}

func TestMethodStep_PerCardKeys(t *testing.T) {
	t.Parallel()

	step, w := newTestMethodStep(t, 4)

	_ = step.Update(testfixtures.Key("e"))
	_ = step.Update(testfixtures.Key("s"))
	_ = step.Update(testfixtures.Key("p"))
	require.Equal(t, 3, step.Cursor())

	require.Equal(t, []distribution.Method{
		distribution.MethodEmail,
		distribution.MethodSMS,
		distribution.MethodPhysical,
		distribution.MethodUnset,
	}, methods(w.Store.State().GiftCards))

	_ = step.Update(testfixtures.Key("up"))
	_ = step.Update(testfixtures.Key("u"))
	require.Equal(t, distribution.MethodUnset, w.Store.State().GiftCards[2].Method)
}

func TestMethodStep_BulkKeys(t *testing.T) {
	t.Parallel()

	step, w := newTestMethodStep(t, 3)

	notified := 0
	t.Cleanup(w.Store.SubscribeFunc(func(distribution.AppState) { notified++ }))

	_ = step.Update(testfixtures.Key("S"))
	require.Equal(t, 1, notified)
	require.Equal(t, distribution.MethodCounts{SMS: 3}, distribution.CountByMethod(w.Store.State().GiftCards))

	_ = step.Update(testfixtures.Key("U"))
	require.Equal(t, distribution.MethodCounts{Unselected: 3}, distribution.CountByMethod(w.Store.State().GiftCards))
}

func TestMethodStep_CursorBounds(t *testing.T) {
	t.Parallel()

	step, _ := newTestMethodStep(t, 3)

	_ = step.Update(testfixtures.Key("up"))
	require.Equal(t, 0, step.Cursor())

	_ = step.Update(testfixtures.Key("G"))
	require.Equal(t, 2, step.Cursor())
	_ = step.Update(testfixtures.Key("down"))
	require.Equal(t, 2, step.Cursor())

	_ = step.Update(testfixtures.Key("g"))
	require.Equal(t, 0, step.Cursor())
}

func TestMethodStep_ViewShowsLiveCounts(t *testing.T) {
	t.Parallel()

	step, _ := newTestMethodStep(t, 4)
	view := testfixtures.Plain(step.View())
	require.Contains(t, view, "0/4")
	require.Contains(t, view, "TEST-001")

	_ = step.Update(testfixtures.Key("E"))
	require.Contains(t, testfixtures.Plain(step.View()), "4/4")
}

func TestMethodStep_Scrolls(t *testing.T) {
	t.Parallel()

	step, _ := newTestMethodStep(t, 50)
	step.SetSize(80, 15)

	_ = step.Update(testfixtures.Key("G"))
	view := testfixtures.Plain(step.View())
	require.Contains(t, view, "TEST-050")
	require.NotContains(t, view, "TEST-001")
}

func TestMethodStep_EnterRequestsNext(t *testing.T) {
	t.Parallel()

	step, _ := newTestMethodStep(t, 2)
	cmd := step.Update(testfixtures.Key("enter"))
	require.NotNil(t, cmd)
	require.Equal(t, tea.Msg(NextStepMsg{}), cmd())
}
