package distribution

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Norwegian mobile numbers, optional country code.
	phonePattern = regexp.MustCompile(`^(\+47)?[4-9][0-9]{7}$`)
)

// Validation messages.
const (
	ErrMsgMethodRequired = "delivery method required"
	ErrMsgEmailRequired  = "email address is required"
	ErrMsgEmailInvalid   = "invalid email address"
	ErrMsgPhoneRequired  = "phone number is required"
	ErrMsgPhoneInvalid   = "invalid phone number"
)

// ErrMsgMessageTooLong is reported when a greeting exceeds MaxMessageLength.
var ErrMsgMessageTooLong = fmt.Sprintf("message cannot exceed %d characters", MaxMessageLength)

// ValidateEmail performs a shape check only, not full RFC 5322 parsing.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone accepts Norwegian mobile numbers; whitespace is ignored.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(stripSpace(phone))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ValidateCardConfiguration checks the method-specific contact fields and
// the message length of one card. Errors accumulate.
func ValidateCardConfiguration(card GiftCard) ValidationResult {
	var errs []string

	if card.Method == MethodUnset {
		return ValidationResult{IsValid: false, Errors: []string{ErrMsgMethodRequired}}
	}

	cfg := card.Config
	if cfg == nil {
		cfg = &CardConfig{}
	}

	switch card.Method {
	case MethodEmail:
		if cfg.Email == "" {
			errs = append(errs, ErrMsgEmailRequired)
		} else if !ValidateEmail(cfg.Email) {
			errs = append(errs, ErrMsgEmailInvalid)
		}
	case MethodSMS:
		if cfg.Phone == "" {
			errs = append(errs, ErrMsgPhoneRequired)
		} else if !ValidatePhone(cfg.Phone) {
			errs = append(errs, ErrMsgPhoneInvalid)
		}
	}

	if utf8.RuneCountInString(cfg.Message) > MaxMessageLength {
		errs = append(errs, ErrMsgMessageTooLong)
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateAllConfigurations validates every card and prefixes each failing
// card's errors with its id.
func ValidateAllConfigurations(cards []GiftCard) ValidationResult {
	var errs []string
	for _, card := range cards {
		result := ValidateCardConfiguration(card)
		if !result.IsValid {
			errs = append(errs, fmt.Sprintf("gift card #%d: %s", card.ID, strings.Join(result.Errors, ", ")))
		}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// Field names a single form input of the configuration step.
type Field string

const (
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldName    Field = "name"
	FieldMessage Field = "message"
)

// ValidateInput is the live check used while a field is being edited.
// Empty contact fields are accepted here; ValidateCardConfiguration reports
// them as missing.
func ValidateInput(field Field, value string) bool {
	switch field {
	case FieldEmail:
		return value == "" || ValidateEmail(value)
	case FieldPhone:
		return value == "" || ValidatePhone(value)
	case FieldMessage:
		return utf8.RuneCountInString(value) <= MaxMessageLength
	default:
		return true
	}
}
