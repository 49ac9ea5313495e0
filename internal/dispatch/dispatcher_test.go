package dispatch

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

func setupStream(t *testing.T) (jetstream.JetStream, jetstream.Stream) {
	t.Helper()
	ctx := context.Background()

	ns, err := nats.StartEmbeddedNATS(t.TempDir())
	require.NoError(t, err)

	nc, err := nats.ConnectInProcess(ns)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nats.Shutdown(nc, ns) })

	js, err := nats.CreateJetStream(nc)
	require.NoError(t, err)

	stream, err := nats.SetupStream(ctx, js)
	require.NoError(t, err)
	return js, stream
}

// confirmedState runs a four card batch through the wizard: one email, one
// scheduled sms, one physical and one left without a method.
func confirmedState(t *testing.T) distribution.AppState {
	t.Helper()
	plan, err := distribution.ParsePlan([]byte(`
count: 4
value: 250
motif: birthday
accept_terms: true
cards:
  - id: 1
    method: email
    email: ola@example.no
    name: Ola
  - id: 2
    method: sms
    phone: "91234567"
    scheduled_date: "2026-12-24"
  - id: 3
    method: physical
`))
	require.NoError(t, err)

	store := distribution.NewStore()
	manager := distribution.NewManager(store)
	require.NoError(t, plan.Run(store, manager, distribution.NewNavigator(store, manager)))
	return store.State()
}

func TestNewBatchID(t *testing.T) {
	t.Parallel()

	id := NewBatchID("Julegaver 2026")
	require.Regexp(t, regexp.MustCompile(`^julegaver-2026-[0-9a-f]{8}$`), id)
	require.NotEqual(t, id, NewBatchID("Julegaver 2026"))

	require.Regexp(t, `^batch-[0-9a-f]{8}$`, NewBatchID(""))
}

func TestSend_RequiresConfirmation(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil, nil, WithDelay(0))
	state := confirmedState(t)
	state.Confirmed = false

	_, err := d.Send(context.Background(), state)
	require.ErrorIs(t, err, ErrNotConfirmed)
}

func TestSend_NothingSelected(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil, nil, WithDelay(0))
	state := distribution.AppState{
		Confirmed: true,
		GiftCards: distribution.GenerateTestGiftCards(2, 100),
	}

	_, err := d.Send(context.Background(), state)
	require.ErrorIs(t, err, ErrNothingToSend)
}

func TestSend_WithoutRecording(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil, nil, WithDelay(time.Millisecond), WithLabel("dry run"))
	require.False(t, d.Recording())

	receipt, err := d.Send(context.Background(), confirmedState(t))
	require.NoError(t, err)
	require.Equal(t, 3, receipt.Sent)
	require.Equal(t, 750, receipt.TotalValue)
	require.Equal(t, distribution.MethodCounts{Physical: 1, Email: 1, SMS: 1}, receipt.Counts)
	require.Regexp(t, `^dry-run-`, receipt.Batch)

	deliveries, err := d.Deliveries(context.Background(), receipt.Batch)
	require.NoError(t, err)
	require.Empty(t, deliveries)
}

func TestSend_Cancelled(t *testing.T) {
	t.Parallel()

	js, stream := setupStream(t)
	d := NewDispatcher(js, stream, WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := d.Send(ctx, confirmedState(t))
	require.ErrorIs(t, err, context.Canceled)

	info, err := stream.Info(context.Background())
	require.NoError(t, err)
	require.Zero(t, info.State.Msgs)
}

func TestSend_RecordsDeliveries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	js, stream := setupStream(t)
	d := NewDispatcher(js, stream, WithDelay(0), WithLabel("test"))
	require.True(t, d.Recording())

	receipt, err := d.Send(ctx, confirmedState(t))
	require.NoError(t, err)
	require.Equal(t, 3, receipt.Sent)

	// A second batch must not leak into the first one's deliveries.
	_, err = d.Send(ctx, confirmedState(t))
	require.NoError(t, err)

	deliveries, err := d.Deliveries(ctx, receipt.Batch)
	require.NoError(t, err)
	require.Len(t, deliveries, 3)

	email := deliveries[0]
	require.Equal(t, receipt.Batch, email.Batch)
	require.Equal(t, 1, email.CardID)
	require.Equal(t, distribution.MethodEmail, email.Method)
	require.Equal(t, "ola@example.no", email.Recipient.Email)
	require.Equal(t, "Ola", email.Recipient.Name)
	require.NotEmpty(t, email.ID)

	sms := deliveries[1]
	require.Equal(t, distribution.MethodSMS, sms.Method)
	require.Equal(t, distribution.SendScheduled, sms.SendTime)
	require.Equal(t, "2026-12-24", sms.ScheduledDate)
	require.Equal(t, distribution.DefaultScheduledTime, sms.ScheduledTime)

	physical := deliveries[2]
	require.Equal(t, distribution.MethodPhysical, physical.Method)
	require.Equal(t, "birthday", physical.Motif)
	require.Empty(t, physical.SendTime)

	for _, dl := range deliveries {
		require.Equal(t, 250, dl.Value)
		require.NotEmpty(t, dl.Code)
	}
}
