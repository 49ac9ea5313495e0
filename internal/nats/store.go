package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "giftdist_deliveries"
	subjectPrefix = "giftdist"
)

// SubjectForBatch returns the wildcard subject for every delivery of a batch.
// Example: "giftdist.test-1a2b3c.>"
func SubjectForBatch(batch string) string {
	return fmt.Sprintf("%s.%s.>", subjectPrefix, batch)
}

// SubjectForDelivery returns the subject a card delivered by method is
// published on. Example: "giftdist.test-1a2b3c.email"
func SubjectForDelivery(batch, method string) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, batch, method)
}

// SetupStream creates or updates the delivery stream. Deliveries are kept in
// memory only and expire after a day.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  jetstream.MemoryStorage,
		MaxAge:   24 * time.Hour,
	})
}
