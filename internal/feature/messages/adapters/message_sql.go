// Package adapters provides repository implementations for the messages feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bluemind_backend/internal/feature/messages/domain/entity"
	"bluemind_backend/internal/feature/messages/usecase"
)

type messageSQL struct {
	db *gorm.DB
}

var _ usecase.MessageRepository = (*messageSQL)(nil)

// NewMessageSQL creates a new SQL-backed message repository.
func NewMessageSQL(db *gorm.DB) *messageSQL {
	return &messageSQL{db: db}
}

// MessageModel is the GORM model for the messages table.
type MessageModel struct {
	ID          string     `gorm:"primaryKey;size:36"`
	SenderID    uint       `gorm:"index;not null"`
	RecipientID uint       `gorm:"index:msg_recipient_created,priority:1;not null"`
	Subject     string     `gorm:"size:200"`
	Body        string     `gorm:"type:text;not null"`
	CreatedAt   time.Time  `gorm:"index:msg_recipient_created,priority:2;not null"`
	ReadAt      *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (MessageModel) TableName() string {
	return "messages"
}

func toModel(m *entity.Message) *MessageModel {
	return &MessageModel{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Subject:     m.Subject,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
		ReadAt:      m.ReadAt,
	}
}

func (m *MessageModel) toEntity() *entity.Message {
	return &entity.Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Subject:     m.Subject,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
		ReadAt:      m.ReadAt,
	}
}

// Create persists a new message.
func (r *messageSQL) Create(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Create(toModel(message)).Error
}

// FindByID retrieves a message by its ID.
func (r *messageSQL) FindByID(ctx context.Context, id string) (*entity.Message, error) {
	var model MessageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrMessageNotFound
		}
		return nil, err
	}
	return model.toEntity(), nil
}

// ListByRecipient retrieves messages addressed to a user, most recent first.
func (r *messageSQL) ListByRecipient(ctx context.Context, recipientID uint, limit int) ([]entity.Message, error) {
	var models []MessageModel
	q := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Message, 0, len(models))
	for _, m := range models {
		out = append(out, *m.toEntity())
	}
	return out, nil
}

// MarkRead sets read_at once. The WHERE clause keeps the transition
// one-way: a message that already has read_at is never updated again.
func (r *messageSQL) MarkRead(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}

// DeleteByRecipient deletes a message scoped to its recipient.
// Deleting someone else's message reports ErrMessageNotFound, the same
// as a message that does not exist.
func (r *messageSQL) DeleteByRecipient(ctx context.Context, id string, recipientID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&MessageModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrMessageNotFound
	}
	return nil
}
