package distribution

import (
	"reflect"
	"sync"

	"github.com/mark3labs/giftdist/internal/logger"
)

// Listener receives a state snapshot after every mutation.
type Listener interface {
	OnStateChange(AppState)
}

type funcListener struct {
	fn func(AppState)
}

func (f *funcListener) OnStateChange(s AppState) { f.fn(s) }

// StateOption sets one field of AppState in SetState.
type StateOption func(*AppState)

func WithCurrentStep(step int) StateOption {
	return func(s *AppState) { s.CurrentStep = step }
}

func WithTestCount(count int) StateOption {
	return func(s *AppState) { s.TestCount = count }
}

func WithTestValue(value int) StateOption {
	return func(s *AppState) { s.TestValue = value }
}

// WithGiftCards replaces the whole card sequence.
func WithGiftCards(cards []GiftCard) StateOption {
	cards = cloneCards(cards)
	return func(s *AppState) { s.GiftCards = cards }
}

func WithTermsAccepted(accepted bool) StateOption {
	return func(s *AppState) { s.TermsAccepted = accepted }
}

func WithConfirmed(confirmed bool) StateOption {
	return func(s *AppState) { s.Confirmed = confirmed }
}

// CardOption sets one field of a GiftCard in UpdateGiftCard.
type CardOption func(*GiftCard)

func WithMethod(m Method) CardOption {
	return func(c *GiftCard) { c.Method = m }
}

// WithConfig replaces the card's config. A nil config clears it.
func WithConfig(cfg *CardConfig) CardOption {
	if cfg != nil {
		cp := *cfg
		cfg = &cp
	}
	return func(c *GiftCard) { c.Config = cfg }
}

// WithRecipient replaces the card's recipient snapshot.
func WithRecipient(r *Recipient) CardOption {
	if r != nil {
		cp := *r
		r = &cp
	}
	return func(c *GiftCard) { c.Recipient = r }
}

func WithDetails(d Details) CardOption {
	d = d.Clone()
	return func(c *GiftCard) { c.Details = d }
}

// Store owns the wizard state and notifies subscribers synchronously after
// each mutation.
//
// Listeners run on the mutating goroutine after the store lock is released,
// so a listener may call back into the store. Such calls recurse: the nested
// mutation notifies every listener again before the outer notification
// continues.
type Store struct {
	mu        sync.Mutex
	state     AppState
	listeners map[Listener]struct{}
}

// NewStore creates a store holding the initial defaults.
func NewStore() *Store {
	return &Store{
		state:     initialState(),
		listeners: make(map[Listener]struct{}),
	}
}

// State returns a deep copy of the current state.
func (s *Store) State() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetState merges the given fields into the state and notifies.
func (s *Store) SetState(opts ...StateOption) {
	s.mu.Lock()
	for _, opt := range opts {
		opt(&s.state)
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateGiftCard merges the given fields into the card with id.
// Unknown ids change nothing but still notify.
func (s *Store) UpdateGiftCard(id int, opts ...CardOption) {
	s.mu.Lock()
	found := false
	for i := range s.state.GiftCards {
		if s.state.GiftCards[i].ID != id {
			continue
		}
		card := s.state.GiftCards[i].Clone()
		for _, opt := range opts {
			opt(&card)
		}
		s.state.GiftCards[i] = card
		found = true
		break
	}
	s.mu.Unlock()

	if !found {
		logger.Debug("UpdateGiftCard: no card with id %d", id)
	}
	s.notify()
}

// GiftCard returns a copy of the card with id.
func (s *Store) GiftCard(id int) (GiftCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.GiftCards {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return GiftCard{}, false
}

// Reset restores the initial defaults and notifies.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = initialState()
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers l and returns a function that removes it.
// Registering an equal listener twice keeps a single registration.
// Listeners run synchronously after the store lock is released; a listener
// that mutates the store is notified again before the mutation returns.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	if !reflect.TypeOf(l).Comparable() {
		// Uncomparable values cannot key the set; register them by identity.
		l = &funcListener{fn: l.OnStateChange}
	}

	s.mu.Lock()
	s.listeners[l] = struct{}{}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, l)
		s.mu.Unlock()
	}
}

// SubscribeFunc registers fn. Each call creates a distinct registration.
func (s *Store) SubscribeFunc(fn func(AppState)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	return s.Subscribe(&funcListener{fn: fn})
}

func (s *Store) notify() {
	s.mu.Lock()
	snapshot := s.state.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		// Each listener gets its own copy so one cannot corrupt another's view.
		callListener(l, snapshot.Clone())
	}
}

func callListener(l Listener, state AppState) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("State listener panicked: %v", r)
		}
	}()
	l.OnStateChange(state)
}
