package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bluemind_backend/internal/feature/messages/usecase"
)

// userDirectorySQL resolves recipient emails against the users table.
// It reads the auth feature's table directly instead of importing the
// auth packages, keeping the two features decoupled.
type userDirectorySQL struct {
	db *gorm.DB
}

var _ usecase.UserDirectory = (*userDirectorySQL)(nil)

// NewUserDirectorySQL creates a new SQL-backed user directory.
func NewUserDirectorySQL(db *gorm.DB) *userDirectorySQL {
	return &userDirectorySQL{db: db}
}

// IDByEmail returns the user ID registered under the given email.
func (r *userDirectorySQL) IDByEmail(ctx context.Context, email string) (uint, error) {
	var row struct{ ID uint }
	err := r.db.WithContext(ctx).
		Table("users").
		Select("id").
		Where("email = ?", email).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, usecase.ErrRecipientNotFound
		}
		return 0, err
	}
	return row.ID, nil
}
