// Package entity defines the domain entities for the messages feature.
package entity

import "time"

// Message represents a short text message exchanged between two users.
// A message is visible only to its sender and recipient; read paths
// are additionally scoped to the recipient.
type Message struct {
	// ID is the message's unique identifier (UUID string).
	ID string

	// SenderID references the user the message was sent as.
	// It is always derived from the authenticated session.
	SenderID uint

	// RecipientID references the user the message is addressed to.
	RecipientID uint

	// Subject is an optional short title.
	Subject string

	// Body is the message text. Required.
	Body string

	// CreatedAt is set once when the message is stored.
	CreatedAt time.Time

	// ReadAt is nil until the recipient first views the message,
	// then holds that timestamp forever.
	ReadAt *time.Time
}

// IsRead returns true once the recipient has viewed the message.
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}
