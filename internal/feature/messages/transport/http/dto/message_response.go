package dto

import "time"

// MessageRes is the JSON representation of a single message.
type MessageRes struct {
	ID          string     `json:"id"`
	SenderID    uint       `json:"sender_id"`
	RecipientID uint       `json:"recipient_id"`
	Subject     string     `json:"subject,omitempty"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at"`
}

// SendRes is the response body for a successfully sent message.
type SendRes struct {
	ID string `json:"id"`
}

// ErrorRes is the uniform error response body.
type ErrorRes struct {
	Error string `json:"error"`
}
