// Package usecase はmessagesフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bluemind_backend/internal/feature/messages/domain/entity"
)

const (
	// MaxBodyLength は本文の最大文字数です。
	MaxBodyLength = 10000
	// MaxSubjectLength は件名の最大文字数です。
	MaxSubjectLength = 200
	// DefaultInboxLimit は受信トレイのデフォルト返却件数です。
	DefaultInboxLimit = 50
	// MaxInboxLimit は受信トレイの最大返却件数です。
	MaxInboxLimit = 200
)

// MessageRepository はメッセージエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type MessageRepository interface {
	// Create persists a new message.
	Create(ctx context.Context, message *entity.Message) error

	// FindByID retrieves a message by its ID.
	// Returns ErrMessageNotFound if no such message exists.
	FindByID(ctx context.Context, id string) (*entity.Message, error)

	// ListByRecipient retrieves up to limit messages addressed to the
	// given user, most recent first.
	ListByRecipient(ctx context.Context, recipientID uint, limit int) ([]entity.Message, error)

	// MarkRead sets read_at to the given time if it is still null.
	// A message that is already read is left untouched.
	MarkRead(ctx context.Context, id string, at time.Time) error

	// DeleteByRecipient deletes a message if the given user is its
	// recipient. Returns ErrMessageNotFound otherwise.
	DeleteByRecipient(ctx context.Context, id string, recipientID uint) error
}

// UserDirectory resolves recipient emails to user IDs.
type UserDirectory interface {
	// IDByEmail returns the ID of the user registered under the given
	// (lowercased) email. Returns ErrRecipientNotFound if none exists.
	IDByEmail(ctx context.Context, email string) (uint, error)
}

// messageUsecase はメッセージ操作のユースケースを実装します。
type messageUsecase struct {
	messages MessageRepository
	users    UserDirectory
}

// NewMessageUsecase はmessageUsecaseの新しいインスタンスを生成します。
func NewMessageUsecase(messages MessageRepository, users UserDirectory) *messageUsecase {
	return &messageUsecase{messages: messages, users: users}
}

// Send は認証済みユーザーから宛先ユーザーへメッセージを送信します。
// 送信者IDは常に検証済みセッション由来の値を使います。リクエストボディの
// 送信者フィールドを信用してはいけません。
func (u *messageUsecase) Send(ctx context.Context, senderID uint, recipientEmail, subject, body string) (*entity.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	if len(body) > MaxBodyLength {
		return nil, ErrBodyTooLong
	}
	if len(subject) > MaxSubjectLength {
		return nil, ErrSubjectTooLong
	}

	recipientID, err := u.users.IDByEmail(ctx, strings.ToLower(strings.TrimSpace(recipientEmail)))
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
		CreatedAt:   time.Now(),
	}
	if err := u.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return message, nil
}

// Inbox は指定ユーザー宛のメッセージを新しい順に返します。
// 結果は再クエリ可能な有限リストです。limitが不正な場合はデフォルト値を使います。
func (u *messageUsecase) Inbox(ctx context.Context, userID uint, limit int) ([]entity.Message, error) {
	if limit <= 0 {
		limit = DefaultInboxLimit
	}
	if limit > MaxInboxLimit {
		limit = MaxInboxLimit
	}
	return u.messages.ListByRecipient(ctx, userID, limit)
}

// View は1件のメッセージを返します。受信者本人以外からの参照は、
// メッセージの存在を漏らさないようErrMessageNotFoundになります。
// 初回閲覧時にread_atを一度だけ設定します（再閲覧では変化しません）。
func (u *messageUsecase) View(ctx context.Context, userID uint, messageID string) (*entity.Message, error) {
	message, err := u.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.RecipientID != userID {
		// 他人のメッセージは「存在しない」と同じ扱い
		return nil, ErrMessageNotFound
	}

	if message.ReadAt == nil {
		now := time.Now()
		if err := u.messages.MarkRead(ctx, message.ID, now); err != nil {
			return nil, fmt.Errorf("failed to mark message read: %w", err)
		}
		message.ReadAt = &now
	}
	return message, nil
}

// Delete は受信者本人によるメッセージ削除です。
// 受信者以外が指定した場合はErrMessageNotFoundを返します。
func (u *messageUsecase) Delete(ctx context.Context, userID uint, messageID string) error {
	return u.messages.DeleteByRecipient(ctx, messageID, userID)
}
