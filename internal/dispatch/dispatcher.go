// Package dispatch simulates sending a confirmed gift card batch. Each
// delivered card is recorded as an event on an in-memory JetStream stream.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mark3labs/giftdist/internal/distribution"
	"github.com/mark3labs/giftdist/internal/logger"
	"github.com/mark3labs/giftdist/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultDelay is the simulated network delay before a batch is sent.
const DefaultDelay = 1500 * time.Millisecond

var (
	ErrNotConfirmed  = errors.New("batch is not confirmed")
	ErrNothingToSend = errors.New("no gift card has a delivery method")
)

// Delivery is the event recorded for one sent card.
type Delivery struct {
	ID            string                  `json:"id"` // stream sequence
	Batch         string                  `json:"batch"`
	CardID        int                     `json:"card_id"`
	Code          string                  `json:"code"`
	Value         int                     `json:"value"`
	Method        distribution.Method     `json:"method"`
	Recipient     *distribution.Recipient `json:"recipient,omitempty"`
	Motif         string                  `json:"motif,omitempty"`
	SendTime      distribution.SendTime   `json:"send_time,omitempty"`
	ScheduledDate string                  `json:"scheduled_date,omitempty"`
	ScheduledTime string                  `json:"scheduled_time,omitempty"`
	Timestamp     time.Time               `json:"timestamp"`
}

// Receipt summarizes a sent batch.
type Receipt struct {
	Batch      string
	Counts     distribution.MethodCounts
	TotalValue int
	Sent       int
	SentAt     time.Time
}

// Dispatcher sends confirmed batches. Without a JetStream context it only
// simulates the delay and produces a receipt.
type Dispatcher struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	delay  time.Duration
	label  string
	now    func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDelay overrides the simulated send delay.
func WithDelay(d time.Duration) Option {
	return func(ds *Dispatcher) { ds.delay = d }
}

// WithLabel sets the human-readable prefix of batch ids.
func WithLabel(label string) Option {
	return func(ds *Dispatcher) { ds.label = label }
}

// NewDispatcher creates a dispatcher publishing to stream through js.
// Both may be nil to run without recording deliveries.
func NewDispatcher(js jetstream.JetStream, stream jetstream.Stream, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		js:     js,
		stream: stream,
		delay:  DefaultDelay,
		label:  "batch",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Recording reports whether deliveries are published to JetStream.
func (d *Dispatcher) Recording() bool {
	return d.js != nil
}

// NewBatchID builds a subject-safe batch id from label.
func NewBatchID(label string) string {
	s := slug.Make(label)
	if s == "" {
		s = "batch"
	}
	return s + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Send waits for the simulated delay and then records one delivery per card
// that has a method. Cancelling ctx during the delay aborts the send before
// anything is published.
func (d *Dispatcher) Send(ctx context.Context, state distribution.AppState) (*Receipt, error) {
	if !state.Confirmed {
		return nil, ErrNotConfirmed
	}
	cards := distribution.SelectedCards(state.GiftCards)
	if len(cards) == 0 {
		return nil, ErrNothingToSend
	}

	batch := NewBatchID(d.label)
	logger.Info("Sending batch %s: %d cards after %s", batch, len(cards), d.delay)

	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			logger.Warn("Send of batch %s cancelled: %v", batch, ctx.Err())
			return nil, fmt.Errorf("send cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	sentAt := d.now()
	if d.js != nil {
		for _, card := range cards {
			if err := d.publish(ctx, batch, card, sentAt); err != nil {
				return nil, err
			}
		}
	}

	receipt := &Receipt{
		Batch:      batch,
		Counts:     distribution.CountByMethod(cards),
		TotalValue: distribution.CalculateTotalValue(cards),
		Sent:       len(cards),
		SentAt:     sentAt,
	}
	logger.Info("Batch %s sent: %d cards, total %d", batch, receipt.Sent, receipt.TotalValue)
	return receipt, nil
}

func (d *Dispatcher) publish(ctx context.Context, batch string, card distribution.GiftCard, at time.Time) error {
	delivery := Delivery{
		Batch:     batch,
		CardID:    card.ID,
		Code:      card.Code,
		Value:     card.Value,
		Method:    card.Method,
		Recipient: card.Recipient,
		Timestamp: at,
	}
	if p := card.Details.Physical; p != nil {
		delivery.Motif = p.Motif
	}
	if dg := card.Details.Digital; dg != nil && card.Method.IsDigital() {
		delivery.SendTime = dg.SendTime
		delivery.ScheduledDate = dg.ScheduledDate
		delivery.ScheduledTime = dg.ScheduledTime
	}

	data, err := json.Marshal(delivery)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery: %w", err)
	}

	subject := nats.SubjectForDelivery(batch, string(card.Method))
	ack, err := d.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish delivery to subject %s: %v", subject, err)
		return fmt.Errorf("failed to publish delivery for card #%d: %w", card.ID, err)
	}

	logger.Debug("Delivery published: card=%d seq=%d", card.ID, ack.Sequence)
	return nil
}

// Deliveries reads back every delivery recorded for batch, in publish order.
func (d *Dispatcher) Deliveries(ctx context.Context, batch string) ([]Delivery, error) {
	if d.stream == nil {
		return nil, nil
	}

	consumer, err := d.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectForBatch(batch),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	var deliveries []Delivery
	const batchSize = 1000
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		msgCount := 0
		for msg := range msgs.Messages() {
			msgCount++
			var delivery Delivery
			if err := json.Unmarshal(msg.Data(), &delivery); err != nil {
				meta, _ := msg.Metadata()
				if meta != nil {
					logger.Warn("Skipping malformed delivery (seq=%d): %v", meta.Sequence.Stream, err)
				}
				_ = msg.Ack()
				continue
			}
			if meta, err := msg.Metadata(); err == nil {
				delivery.ID = strconv.FormatUint(meta.Sequence.Stream, 10)
			}
			deliveries = append(deliveries, delivery)
			_ = msg.Ack()
		}

		if msgCount == 0 {
			break
		}
	}

	return deliveries, nil
}
