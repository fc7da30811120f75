// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bluemind_backend/internal/feature/auth/domain/entity"
	"bluemind_backend/internal/feature/auth/usecase"
)

// userSQL はUserRepositoryインターフェースのSQL実装です。
// GORMを使用してデータベース操作を行います。
type userSQL struct {
	db *gorm.DB
}

// userSQLがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userSQL)(nil)

// NewUserSQL は指定されたgorm.DB接続でuserSQLの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserSQL(db *gorm.DB) *userSQL {
	return &userSQL{db: db}
}

// Create はユーザーをデータベースに追加します。
// メールアドレスの一意性はアプリケーション側のチェックではなく、
// ストレージのユニーク制約で保証します（check-then-actの競合を避けるため）。
// 重複時はusecase.ErrEmailAlreadyExistsを返します。
func (r *userSQL) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userSQL) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userSQL) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
