package distribution

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{"ola.nordmann@example.no", true},
		{"abc", false},
		{"a@b", false},
		{"", false},
		{"a b@c.no", false},
		{"a@@b.no", false},
		{"@b.no", false},
		{"a@b.", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEmail(tt.email))
		})
	}
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phone string
		want  bool
	}{
		{"+4791234567", true},
		{"91234567", true},
		{"41234567", true},
		{"+47 912 34 567", true},
		{" 912 34 567 ", true},
		{"12345678", false},
		{"31234567", false},
		{"9123456", false},
		{"912345678", false},
		{"+4691234567", false},
		{"9123456a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhone(tt.phone))
		})
	}
}

func TestValidateCardConfiguration(t *testing.T) {
	t.Parallel()

	longMessage := strings.Repeat("x", MaxMessageLength+1)

	tests := []struct {
		name string
		card GiftCard
		want []string
	}{
		{
			name: "unset method stops further checks",
			card: GiftCard{ID: 1, Config: &CardConfig{Message: longMessage}},
			want: []string{ErrMsgMethodRequired},
		},
		{
			name: "email missing config",
			card: GiftCard{ID: 1, Method: MethodEmail},
			want: []string{ErrMsgEmailRequired},
		},
		{
			name: "email invalid",
			card: GiftCard{ID: 1, Method: MethodEmail, Config: &CardConfig{Email: "nope"}},
			want: []string{ErrMsgEmailInvalid},
		},
		{
			name: "email valid",
			card: GiftCard{ID: 1, Method: MethodEmail, Config: &CardConfig{Email: "a@b.co"}},
		},
		{
			name: "sms missing phone",
			card: GiftCard{ID: 1, Method: MethodSMS, Config: &CardConfig{Email: "a@b.co"}},
			want: []string{ErrMsgPhoneRequired},
		},
		{
			name: "sms invalid phone",
			card: GiftCard{ID: 1, Method: MethodSMS, Config: &CardConfig{Phone: "12345678"}},
			want: []string{ErrMsgPhoneInvalid},
		},
		{
			name: "sms valid",
			card: GiftCard{ID: 1, Method: MethodSMS, Config: &CardConfig{Phone: "+47 912 34 567"}},
		},
		{
			name: "physical needs no contact",
			card: GiftCard{ID: 1, Method: MethodPhysical},
		},
		{
			name: "physical message too long",
			card: GiftCard{ID: 1, Method: MethodPhysical, Config: &CardConfig{Message: longMessage}},
			want: []string{ErrMsgMessageTooLong},
		},
		{
			name: "errors accumulate",
			card: GiftCard{ID: 1, Method: MethodEmail, Config: &CardConfig{Email: "bad", Message: longMessage}},
			want: []string{ErrMsgEmailInvalid, ErrMsgMessageTooLong},
		},
		{
			name: "message at limit is fine",
			card: GiftCard{ID: 1, Method: MethodPhysical, Config: &CardConfig{Message: strings.Repeat("å", MaxMessageLength)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateCardConfiguration(tt.card)
			require.Equal(t, len(tt.want) == 0, got.IsValid)
			require.Equal(t, tt.want, got.Errors)
		})
	}
}

func TestValidateAllConfigurations(t *testing.T) {
	t.Parallel()

	cards := []GiftCard{
		{ID: 1, Method: MethodPhysical},
		{ID: 2, Method: MethodEmail},
		{ID: 3, Method: MethodSMS, Config: &CardConfig{Phone: "91234567"}},
		{ID: 4},
	}

	got := ValidateAllConfigurations(cards)
	require.False(t, got.IsValid)
	require.Equal(t, []string{
		"gift card #2: " + ErrMsgEmailRequired,
		"gift card #4: " + ErrMsgMethodRequired,
	}, got.Errors)

	ok := ValidateAllConfigurations(cards[:1])
	require.True(t, ok.IsValid)
	require.Empty(t, ok.Errors)

	empty := ValidateAllConfigurations(nil)
	require.True(t, empty.IsValid)
}

func TestValidateAllConfigurations_JoinsCardErrors(t *testing.T) {
	t.Parallel()

	card := GiftCard{ID: 9, Method: MethodSMS, Config: &CardConfig{Message: strings.Repeat("m", 501)}}
	got := ValidateAllConfigurations([]GiftCard{card})
	require.Equal(t, []string{"gift card #9: " + ErrMsgPhoneRequired + ", " + ErrMsgMessageTooLong}, got.Errors)
}

func TestValidateInput(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidateInput(FieldEmail, ""))
	assert.True(t, ValidateInput(FieldEmail, "a@b.co"))
	assert.False(t, ValidateInput(FieldEmail, "a@b"))
	assert.True(t, ValidateInput(FieldPhone, ""))
	assert.False(t, ValidateInput(FieldPhone, "123"))
	assert.True(t, ValidateInput(FieldMessage, strings.Repeat("x", 500)))
	assert.False(t, ValidateInput(FieldMessage, strings.Repeat("x", 501)))
	assert.True(t, ValidateInput(FieldName, "anything"))
}
