// Package usecase implements the business logic for the messages feature.
package usecase

import "errors"

var (
	// ErrMessageNotFound is returned when a message does not exist or
	// the caller is not its recipient. Both cases are reported
	// identically so other users' messages cannot be probed.
	ErrMessageNotFound = errors.New("message not found")

	// ErrRecipientNotFound is returned when the recipient email does not
	// match any registered user.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrEmptyBody is returned when a message is sent without a body.
	ErrEmptyBody = errors.New("message body is required")

	// ErrBodyTooLong is returned when the body exceeds MaxBodyLength.
	ErrBodyTooLong = errors.New("message body is too long")

	// ErrSubjectTooLong is returned when the subject exceeds MaxSubjectLength.
	ErrSubjectTooLong = errors.New("message subject is too long")
)
