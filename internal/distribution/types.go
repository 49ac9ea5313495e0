// Package distribution holds the gift card wizard's state store, validators,
// step navigation and batch management.
package distribution

// Batch limits and presets offered by the setup step.
const (
	MinGiftCards     = 1
	MaxGiftCards     = 100
	MaxMessageLength = 500

	DefaultTestCount = 10
	DefaultTestValue = 500
)

var (
	TestAmounts = []int{1, 5, 10, 25, 50}
	TestValues  = []int{100, 200, 500, 1000, 2000, 5000, 10000}

	// Motifs printed on physical cards.
	Motifs = []string{"birthday", "christmas", "love", "neutral"}
)

// Method is the delivery channel chosen for a card.
type Method string

const (
	MethodUnset    Method = ""
	MethodPhysical Method = "physical"
	MethodEmail    Method = "email"
	MethodSMS      Method = "sms"
)

// Methods lists the selectable delivery methods in display order.
var Methods = []Method{MethodPhysical, MethodEmail, MethodSMS}

// IsDigital reports whether the method needs recipient contact details.
func (m Method) IsDigital() bool {
	return m == MethodEmail || m == MethodSMS
}

// Label returns the human-readable name of the method.
func (m Method) Label() string {
	switch m {
	case MethodPhysical:
		return "Physical"
	case MethodEmail:
		return "Email"
	case MethodSMS:
		return "SMS"
	default:
		return "Not selected"
	}
}

// ParseMethod converts user input to a Method.
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodPhysical, MethodEmail, MethodSMS:
		return Method(s), true
	case "", "unset", GroupUnselected:
		return MethodUnset, true
	}
	return MethodUnset, false
}

// SendTime controls when a digital card is delivered.
type SendTime string

const (
	SendNow       SendTime = "now"
	SendTomorrow  SendTime = "tomorrow"
	SendScheduled SendTime = "scheduled"
)

// CardConfig is the recipient form data entered in the configuration step.
type CardConfig struct {
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Recipient is the contact snapshot taken when the batch is confirmed.
type Recipient struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message,omitempty"`
}

// PhysicalDetails holds print options for physical cards.
type PhysicalDetails struct {
	Motif string `json:"motif,omitempty" yaml:"motif,omitempty"`
}

// DigitalDetails holds delivery timing for email and SMS cards.
type DigitalDetails struct {
	SendTime      SendTime `json:"send_time,omitempty" yaml:"send_time,omitempty"`
	ScheduledDate string   `json:"scheduled_date,omitempty" yaml:"scheduled_date,omitempty"` // YYYY-MM-DD
	ScheduledTime string   `json:"scheduled_time,omitempty" yaml:"scheduled_time,omitempty"` // HH:MM
}

// Details carries the per-method extras of a card.
type Details struct {
	Physical *PhysicalDetails `json:"physical,omitempty" yaml:"physical,omitempty"`
	Digital  *DigitalDetails  `json:"digital,omitempty" yaml:"digital,omitempty"`
}

// GiftCard is one card of the batch. ID and Code never change after creation.
type GiftCard struct {
	ID        int
	Value     int
	Code      string
	Method    Method
	Recipient *Recipient
	Config    *CardConfig
	Details   Details
}

// AppState is the whole mutable wizard state owned by a Store.
type AppState struct {
	CurrentStep   int
	TestCount     int
	TestValue     int
	GiftCards     []GiftCard
	TermsAccepted bool
	Confirmed     bool
}

// ValidationResult reports whether a check passed and why not.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

func initialState() AppState {
	return AppState{
		CurrentStep:   StepSetup,
		TestCount:     DefaultTestCount,
		TestValue:     DefaultTestValue,
		GiftCards:     []GiftCard{},
		TermsAccepted: false,
	}
}

// Clone returns a deep copy of the card.
func (c GiftCard) Clone() GiftCard {
	out := c
	if c.Recipient != nil {
		r := *c.Recipient
		out.Recipient = &r
	}
	if c.Config != nil {
		cfg := *c.Config
		out.Config = &cfg
	}
	out.Details = c.Details.Clone()
	return out
}

// Clone returns a deep copy of the details.
func (d Details) Clone() Details {
	var out Details
	if d.Physical != nil {
		p := *d.Physical
		out.Physical = &p
	}
	if d.Digital != nil {
		dg := *d.Digital
		out.Digital = &dg
	}
	return out
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	out := s
	out.GiftCards = cloneCards(s.GiftCards)
	return out
}

func cloneCards(cards []GiftCard) []GiftCard {
	out := make([]GiftCard, len(cards))
	for i, c := range cards {
		out[i] = c.Clone()
	}
	return out
}
