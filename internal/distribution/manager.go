package distribution

import (
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/giftdist/internal/logger"
)

// GroupUnselected is the group key for cards without a method.
const GroupUnselected = "unselected"

// Default schedule applied when a card switches to scheduled delivery.
const DefaultScheduledTime = "09:00"

var (
	ErrBatchSize   = fmt.Errorf("batch size must be between %d and %d", MinGiftCards, MaxGiftCards)
	ErrFaceValue   = errors.New("face value must be positive")
	ErrUnknownCard = errors.New("unknown gift card")
)

// Manager applies batch and per-card mutations through a Store.
type Manager struct {
	store *Store
	now   func() time.Time
}

// NewManager creates a manager operating on store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// GenerateTestGiftCards builds count fresh cards with sequential ids.
func GenerateTestGiftCards(count, value int) []GiftCard {
	cards := make([]GiftCard, count)
	for i := range cards {
		cards[i] = GiftCard{
			ID:     i + 1,
			Value:  value,
			Code:   fmt.Sprintf("TEST-%03d", i+1),
			Method: MethodUnset,
		}
	}
	return cards
}

// InitializeGiftCards replaces the batch with count new cards of value.
func (m *Manager) InitializeGiftCards(count, value int) {
	logger.Info("Initializing batch: %d cards of %d", count, value)
	m.store.SetState(WithGiftCards(GenerateTestGiftCards(count, value)))
}

// SetBatchSize sets the number of cards the next batch will hold.
func (m *Manager) SetBatchSize(count int) error {
	if count < MinGiftCards || count > MaxGiftCards {
		return fmt.Errorf("%w: got %d", ErrBatchSize, count)
	}
	m.store.SetState(WithTestCount(count))
	return nil
}

// SetFaceValue sets the value every card of the next batch will carry.
func (m *Manager) SetFaceValue(value int) error {
	if value <= 0 {
		return fmt.Errorf("%w: got %d", ErrFaceValue, value)
	}
	m.store.SetState(WithTestValue(value))
	return nil
}

// SelectMethod sets the delivery method of one card.
func (m *Manager) SelectMethod(cardID int, method Method) {
	m.store.UpdateGiftCard(cardID, WithMethod(method))
}

// SelectAllMethod sets the same method on every card with one notification.
func (m *Manager) SelectAllMethod(method Method) {
	m.replaceWhere(func(GiftCard) bool { return true }, func(c *GiftCard) {
		c.Method = method
	})
}

// UpdateConfig sets one contact field of a card's configuration.
func (m *Manager) UpdateConfig(cardID int, field Field, value string) error {
	card, ok := m.store.GiftCard(cardID)
	if !ok {
		return fmt.Errorf("%w: #%d", ErrUnknownCard, cardID)
	}

	cfg := CardConfig{}
	if card.Config != nil {
		cfg = *card.Config
	}
	switch field {
	case FieldEmail:
		cfg.Email = value
	case FieldPhone:
		cfg.Phone = value
	case FieldName:
		cfg.Name = value
	case FieldMessage:
		cfg.Message = value
	default:
		return fmt.Errorf("unknown config field %q", field)
	}

	m.store.UpdateGiftCard(cardID, WithConfig(&cfg))
	return nil
}

// SetSendTime sets when a digital card is delivered. Switching to
// scheduled delivery fills tomorrow at 09:00 when no schedule exists.
func (m *Manager) SetSendTime(cardID int, sendTime SendTime) error {
	card, ok := m.store.GiftCard(cardID)
	if !ok {
		return fmt.Errorf("%w: #%d", ErrUnknownCard, cardID)
	}

	d := card.Details.Clone()
	if d.Digital == nil {
		d.Digital = &DigitalDetails{}
	}
	d.Digital.SendTime = sendTime
	if sendTime == SendScheduled {
		if d.Digital.ScheduledDate == "" {
			d.Digital.ScheduledDate = m.now().AddDate(0, 0, 1).Format(time.DateOnly)
		}
		if d.Digital.ScheduledTime == "" {
			d.Digital.ScheduledTime = DefaultScheduledTime
		}
	}

	m.store.UpdateGiftCard(cardID, WithDetails(d))
	return nil
}

// SetSchedule sets the scheduled delivery date (YYYY-MM-DD) and time (HH:MM).
func (m *Manager) SetSchedule(cardID int, date, clock string) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("invalid scheduled date %q: %w", date, err)
	}
	if _, err := time.Parse("15:04", clock); err != nil {
		return fmt.Errorf("invalid scheduled time %q: %w", clock, err)
	}

	card, ok := m.store.GiftCard(cardID)
	if !ok {
		return fmt.Errorf("%w: #%d", ErrUnknownCard, cardID)
	}

	d := card.Details.Clone()
	if d.Digital == nil {
		d.Digital = &DigitalDetails{}
	}
	d.Digital.SendTime = SendScheduled
	d.Digital.ScheduledDate = date
	d.Digital.ScheduledTime = clock

	m.store.UpdateGiftCard(cardID, WithDetails(d))
	return nil
}

// SetMotif applies a print motif to every physical card with one notification.
func (m *Manager) SetMotif(motif string) {
	m.replaceWhere(func(c GiftCard) bool { return c.Method == MethodPhysical }, func(c *GiftCard) {
		c.Details.Physical = &PhysicalDetails{Motif: motif}
	})
}

// replaceWhere applies fn to matching cards and stores the whole sequence
// in a single SetState.
func (m *Manager) replaceWhere(match func(GiftCard) bool, fn func(*GiftCard)) {
	cards := m.store.State().GiftCards
	for i := range cards {
		if match(cards[i]) {
			fn(&cards[i])
		}
	}
	m.store.SetState(WithGiftCards(cards))
}

// GroupGiftCardsByMethod groups cards by method name, keeping their
// relative order. Cards without a method go under GroupUnselected.
// Methods with no cards have no key.
func GroupGiftCardsByMethod(cards []GiftCard) map[string][]GiftCard {
	groups := make(map[string][]GiftCard)
	for _, c := range cards {
		key := string(c.Method)
		if c.Method == MethodUnset {
			key = GroupUnselected
		}
		groups[key] = append(groups[key], c)
	}
	return groups
}

// MethodCounts is the number of cards per method.
type MethodCounts struct {
	Physical   int `json:"physical"`
	Email      int `json:"email"`
	SMS        int `json:"sms"`
	Unselected int `json:"unselected"`
}

// Selected returns the number of cards with a method.
func (c MethodCounts) Selected() int {
	return c.Physical + c.Email + c.SMS
}

// CountByMethod counts cards per method.
func CountByMethod(cards []GiftCard) MethodCounts {
	groups := GroupGiftCardsByMethod(cards)
	return MethodCounts{
		Physical:   len(groups[string(MethodPhysical)]),
		Email:      len(groups[string(MethodEmail)]),
		SMS:        len(groups[string(MethodSMS)]),
		Unselected: len(groups[GroupUnselected]),
	}
}

// CalculateTotalValue sums the face value of cards.
func CalculateTotalValue(cards []GiftCard) int {
	total := 0
	for _, c := range cards {
		total += c.Value
	}
	return total
}

// SelectedCards returns the cards that have a delivery method.
func SelectedCards(cards []GiftCard) []GiftCard {
	var out []GiftCard
	for _, c := range cards {
		if c.Method != MethodUnset {
			out = append(out, c)
		}
	}
	return out
}

// DigitalCards returns the email and SMS cards.
func DigitalCards(cards []GiftCard) []GiftCard {
	var out []GiftCard
	for _, c := range cards {
		if c.Method.IsDigital() {
			out = append(out, c)
		}
	}
	return out
}
