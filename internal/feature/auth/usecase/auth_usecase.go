// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bluemind_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// sessionTokenBytes はセッショントークンの乱数バイト数です（hexエンコード後64文字）。
	sessionTokenBytes = 32
)

// dummyPasswordHash はユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュです。
// ログイン処理で必ず1回bcrypt比較が実行されることを保証します。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
type JWTGenerator interface {
	// GenerateToken は指定されたユーザーの署名済みJWTトークンを生成します。
	GenerateToken(userID uint, email string) (string, error)
}

// SessionPolicy はセッション発行のパラメータです。設定から一度だけ構築されます。
type SessionPolicy struct {
	// TTL は通常ログイン時のセッション有効期間です。
	TTL time.Duration
	// PublicTTL は共用端末（public computer）ログイン時の短縮有効期間です。
	PublicTTL time.Duration
	// MaxPerUser はユーザーあたりの同時セッション数の上限です。
	// 上限に達した場合、最も古いセッションが破棄されます。
	MaxPerUser int
	// AccessTokenTTL はアクセストークン（JWT）の有効期間です。
	AccessTokenTTL time.Duration
}

// LoginInput はログイン試行の入力です。
// UserAgentとIPAddressは監査用にセッションへ記録されます。
type LoginInput struct {
	Email          string
	Password       string
	PublicComputer bool
	UserAgent      string
	IPAddress      string
}

// LoginResult はログインまたはリフレッシュ成功時に発行される資格情報です。
type LoginResult struct {
	// AccessToken は短命の署名済みJWTです。
	AccessToken string
	// ExpiresIn はアクセストークンの有効期間（秒）です。
	ExpiresIn int64
	// Session は発行された不透明セッションです。IDがトークン値になります。
	Session *entity.Session
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users        UserRepository
	sessions     SessionRepository
	jwtGenerator JWTGenerator
	policy       SessionPolicy
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, jwtGenerator JWTGenerator, policy SessionPolicy) *authUsecase {
	return &authUsecase{
		users:        users,
		sessions:     sessions,
		jwtGenerator: jwtGenerator,
		policy:       policy,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// normalizeEmail はメールアドレスを小文字化します。
// メールアドレスの一意性は大文字小文字を区別しないため、保存・検索の前に必ず通します。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newSessionToken は暗号論的乱数からセッショントークンを生成します。
// タイムスタンプ由来のIDは推測可能なため使用しません。
func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
func (u *authUsecase) Signup(ctx context.Context, email, password string) error {
	// パスワード強度を検証
	if err := validatePassword(password); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Email: normalizeEmail(email), Password: string(hashed)}
	return u.users.Create(ctx, user)
}

// Login はユーザーを認証し、成功時にアクセストークンとセッションを発行します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	// メールアドレスでユーザーを検索
	user, err := u.users.FindByEmail(ctx, normalizeEmail(in.Email))

	// タイミング攻撃防止のため、常にパスワードを検証
	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(in.Password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := u.issueSession(ctx, user.ID, in.PublicComputer, in.UserAgent, in.IPAddress)
	if err != nil {
		return nil, err
	}

	return u.buildResult(user, session)
}

// Refresh はセッショントークンをローテーションし、新しいアクセストークンを発行します。
// 旧セッションは失効し、再利用できなくなります。
func (u *authUsecase) Refresh(ctx context.Context, token, userAgent, ipAddress string) (*LoginResult, error) {
	session, err := u.activeSession(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	// ローテーション：旧セッションを失効させてから新規発行
	if err := u.sessions.Revoke(ctx, session.ID); err != nil {
		return nil, err
	}
	next, err := u.issueSession(ctx, user.ID, false, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return u.buildResult(user, next)
}

// ValidateSession はセッショントークンを検証し、認証済みユーザーIDを返します。
// 読み取り専用であり、有効期限の暗黙的な延長は行いません。
func (u *authUsecase) ValidateSession(ctx context.Context, token string) (uint, error) {
	session, err := u.activeSession(ctx, token)
	if err != nil {
		return 0, err
	}
	return session.UserID, nil
}

// Logout はセッションを失効させます。冪等であり、トークンが不明・失効済みでも成功します。
func (u *authUsecase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := u.sessions.Revoke(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// activeSession はトークンに対応する有効なセッションを取得します。
func (u *authUsecase) activeSession(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	session, err := u.sessions.FindByID(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// issueSession は新しい不透明セッションを発行します。
// ユーザーあたりのセッション数が上限に達している場合、最も古いものを破棄します。
func (u *authUsecase) issueSession(ctx context.Context, userID uint, publicComputer bool, userAgent, ipAddress string) (*entity.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	ttl := u.policy.TTL
	if publicComputer && u.policy.PublicTTL > 0 {
		ttl = u.policy.PublicTTL
	}

	if u.policy.MaxPerUser > 0 {
		count, err := u.sessions.CountByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if count >= int64(u.policy.MaxPerUser) {
			if err := u.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
				return nil, err
			}
		}
	}

	now := time.Now()
	session := &entity.Session{
		ID:        token,
		UserID:    userID,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// buildResult はユーザーとセッションからログイン結果を組み立てます。
func (u *authUsecase) buildResult(user *entity.User, session *entity.Session) (*LoginResult, error) {
	accessToken, err := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(u.policy.AccessTokenTTL.Seconds()),
		Session:     session,
	}, nil
}
