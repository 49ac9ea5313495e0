package distribution

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// countingListener counts notifications and remembers the last snapshot.
type countingListener struct {
	calls int
	last  AppState
}

func (l *countingListener) OnStateChange(s AppState) {
	l.calls++
	l.last = s
}

func TestStore_Defaults(t *testing.T) {
	t.Parallel()

	s := NewStore().State()
	require.Equal(t, StepSetup, s.CurrentStep)
	require.Equal(t, 10, s.TestCount)
	require.Equal(t, 500, s.TestValue)
	require.Empty(t, s.GiftCards)
	require.False(t, s.TermsAccepted)
	require.False(t, s.Confirmed)
}

func TestStore_SetStateRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.SetState(WithTestCount(7))

	s := store.State()
	require.Equal(t, 7, s.TestCount)
	require.Equal(t, 500, s.TestValue, "unrelated fields are kept")
}

func TestStore_StateIsDecoupled(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.SetState(WithGiftCards(GenerateTestGiftCards(2, 100)))
	store.UpdateGiftCard(1, WithConfig(&CardConfig{Email: "a@b.co"}))

	snap := store.State()
	snap.TestCount = 99
	snap.GiftCards[0].Method = MethodSMS
	snap.GiftCards[0].Config.Email = "changed@x.no"
	snap.GiftCards = append(snap.GiftCards, GiftCard{ID: 3})

	fresh := store.State()
	require.Equal(t, 10, fresh.TestCount)
	require.Len(t, fresh.GiftCards, 2)
	require.Equal(t, MethodUnset, fresh.GiftCards[0].Method)
	require.Equal(t, "a@b.co", fresh.GiftCards[0].Config.Email)
}

func TestStore_WithGiftCardsCopiesInput(t *testing.T) {
	t.Parallel()

	cards := GenerateTestGiftCards(1, 100)
	store := NewStore()
	store.SetState(WithGiftCards(cards))

	cards[0].Method = MethodEmail
	card, ok := store.GiftCard(1)
	require.True(t, ok)
	require.Equal(t, MethodUnset, card.Method)
}

func TestStore_UpdateGiftCard(t *testing.T) {
	t.Parallel()

	t.Run("merges into matching card", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		store.SetState(WithGiftCards(GenerateTestGiftCards(3, 100)))

		store.UpdateGiftCard(2, WithMethod(MethodEmail))

		card, ok := store.GiftCard(2)
		require.True(t, ok)
		require.Equal(t, MethodEmail, card.Method)
		require.Equal(t, "TEST-002", card.Code, "untouched fields are kept")

		other, _ := store.GiftCard(1)
		require.Equal(t, MethodUnset, other.Method)
	})

	t.Run("unknown id is a no-op that still notifies", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		store.SetState(WithGiftCards(GenerateTestGiftCards(2, 100)))
		before := store.State()

		l := &countingListener{}
		store.Subscribe(l)
		store.UpdateGiftCard(42, WithMethod(MethodSMS))

		require.Equal(t, 1, l.calls)
		require.Equal(t, before, store.State())
	})
}

func TestStore_GiftCardMiss(t *testing.T) {
	t.Parallel()

	_, ok := NewStore().GiftCard(1)
	require.False(t, ok)
}

func TestStore_Reset(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.SetState(
		WithCurrentStep(StepConfigure),
		WithTestCount(3),
		WithGiftCards(GenerateTestGiftCards(3, 100)),
		WithTermsAccepted(true),
		WithConfirmed(true),
	)

	l := &countingListener{}
	store.Subscribe(l)
	store.Reset()

	require.Equal(t, 1, l.calls)
	require.Equal(t, initialState(), store.State())
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("listener receives new snapshot", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		l := &countingListener{}
		store.Subscribe(l)

		store.SetState(WithTestValue(1000))

		require.Equal(t, 1, l.calls)
		require.Equal(t, 1000, l.last.TestValue)
	})

	t.Run("duplicate registration is deduplicated", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		l := &countingListener{}
		store.Subscribe(l)
		store.Subscribe(l)

		store.SetState(WithTestCount(5))

		require.Equal(t, 1, l.calls)
	})

	t.Run("unsubscribe stops notifications", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		l := &countingListener{}
		unsubscribe := store.Subscribe(l)

		store.SetState(WithTestCount(5))
		unsubscribe()
		unsubscribe()
		store.SetState(WithTestCount(6))

		require.Equal(t, 1, l.calls)
	})

	t.Run("func listeners are independent", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		var a, b int
		store.SubscribeFunc(func(AppState) { a++ })
		unsubB := store.SubscribeFunc(func(AppState) { b++ })

		store.SetState(WithTestCount(5))
		unsubB()
		store.SetState(WithTestCount(6))

		require.Equal(t, 2, a)
		require.Equal(t, 1, b)
	})

	t.Run("nil listener", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		unsubscribe := store.SubscribeFunc(nil)
		require.NotPanics(t, func() {
			store.SetState(WithTestCount(5))
			unsubscribe()
		})
	})
}

func TestStore_PanickingListenerIsIsolated(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.SubscribeFunc(func(AppState) { panic("boom") })
	l := &countingListener{}
	store.Subscribe(l)

	require.NotPanics(t, func() {
		store.SetState(WithTestCount(3))
	})
	require.Equal(t, 1, l.calls)
	require.Equal(t, 3, store.State().TestCount)
}

func TestStore_ReentrantListener(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var seen []int
	store.SubscribeFunc(func(s AppState) {
		seen = append(seen, s.TestCount)
		if s.TestCount == 1 {
			store.SetState(WithTestCount(2))
		}
	})

	store.SetState(WithTestCount(1))

	require.Equal(t, 2, store.State().TestCount)
	require.Equal(t, []int{1, 2}, seen)
}

func TestStore_ListenerAddedDuringNotifyWaitsForNextMutation(t *testing.T) {
	t.Parallel()

	store := NewStore()
	late := &countingListener{}
	store.SubscribeFunc(func(AppState) {
		store.Subscribe(late)
	})

	store.SetState(WithTestCount(2))
	require.Equal(t, 0, late.calls, "listener set is snapshotted before notifying")

	store.SetState(WithTestCount(3))
	require.Equal(t, 1, late.calls)
}
