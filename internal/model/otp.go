package model

import "time"

// OTPChannel is the delivery channel of a one-time code.
type OTPChannel string

const (
	ChannelSMS   OTPChannel = "sms"
	ChannelEmail OTPChannel = "email"
)

// CodeLength is the number of digits sent on the channel.
func (c OTPChannel) CodeLength() int {
	if c == ChannelEmail {
		return 8
	}
	return 6
}

// Valid reports whether c is a supported channel.
func (c OTPChannel) Valid() bool {
	return c == ChannelSMS || c == ChannelEmail
}

// OTPChallenge is one issued code for a contact.
type OTPChallenge struct {
	ID         string
	Channel    OTPChannel
	Contact    string
	CodeHash   string
	CreateUser bool
	Attempts   int
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Identity is what a successful verification proves: control of Contact.
// UserID is empty when no account is bound to the contact. Token is the
// signed proof a later submission presents for the contact.
type Identity struct {
	Channel OTPChannel `json:"channel"`
	Contact string     `json:"contact"`
	UserID  string     `json:"user_id,omitempty"`
	Token   string     `json:"verification_token,omitempty"`
}

// Verification is the result of a verified code. Session is nil when the
// contact has no account and none was created.
type Verification struct {
	Identity Identity `json:"identity"`
	Session  *Session `json:"session,omitempty"`
}
