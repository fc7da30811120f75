package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bluemind_backend/internal/feature/auth/domain/entity"
	"bluemind_backend/internal/feature/auth/usecase"
)

// sessionSQL is the SQL implementation of the SessionRepository interface.
// It is the fallback store used when Redis is unavailable.
type sessionSQL struct {
	db *gorm.DB
}

// Compile-time check to ensure sessionSQL implements SessionRepository.
var _ usecase.SessionRepository = (*sessionSQL)(nil)

// NewSessionSQL creates a new instance of sessionSQL.
func NewSessionSQL(db *gorm.DB) *sessionSQL {
	return &sessionSQL{db: db}
}

// Create persists a new session to the database.
func (r *sessionSQL) Create(ctx context.Context, session *entity.Session) error {
	model := SessionModelFromEntity(session)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID retrieves a session by its token.
func (r *sessionSQL) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var model SessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Revoke marks a session as revoked by its token.
func (r *sessionSQL) Revoke(ctx context.Context, id string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("id = ?", id).
		Update("revoked_at", now)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID revokes all sessions for a given user.
func (r *sessionSQL) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

// CountByUserID returns the number of active sessions for a user.
func (r *sessionSQL) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Count(&count).Error
	return count, err
}

// DeleteOldestByUserID deletes the oldest active session for a user.
func (r *sessionSQL) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	// Find the oldest session
	var oldest SessionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("created_at ASC").
		First(&oldest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // No sessions to delete
		}
		return err
	}

	// Delete it
	return r.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", oldest.ID).Error
}

// DeleteExpired removes all expired sessions from storage.
func (r *sessionSQL) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&SessionModel{})
	return result.RowsAffected, result.Error
}
