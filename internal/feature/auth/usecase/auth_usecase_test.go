package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bluemind_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
// It simulates database operations during testing.
type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc    func(ctx context.Context, id uint) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil // Default: success
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

// mockSessionRepository is an in-memory implementation of SessionRepository.
type mockSessionRepository struct {
	sessions map[string]*entity.Session

	CreateFunc func(ctx context.Context, session *entity.Session) error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*entity.Session)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSessionRepository) Revoke(ctx context.Context, id string) error {
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *mockSessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := time.Now()
	for _, s := range m.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockSessionRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsValid() {
			count++
		}
	}
	return count, nil
}

func (m *mockSessionRepository) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	var oldest *entity.Session
	for _, s := range m.sessions {
		if s.UserID != userID || !s.IsValid() {
			continue
		}
		if oldest == nil || s.CreatedAt.Before(oldest.CreatedAt) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.sessions, oldest.ID)
	}
	return nil
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// mockJWTGenerator is a mock implementation of JWTGenerator interface.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

func testPolicy() SessionPolicy {
	return SessionPolicy{
		TTL:            24 * time.Hour,
		PublicTTL:      time.Hour,
		MaxPerUser:     5,
		AccessTokenTTL: 15 * time.Minute,
	}
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Run("successful signup", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				// Verify that the password is hashed
				if len(user.Password) == 0 || user.Password == "password123" {
					t.Errorf("password is not hashed")
				}
				// Verify that it's a valid bcrypt hash
				if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
					t.Errorf("invalid bcrypt hash: %v", err)
				}
				return nil
			},
		}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		err := uc.Signup(context.Background(), "test@example.com", "password123")

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("email is lowercased before storage", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				if user.Email != "alice@example.com" {
					t.Errorf("expected normalized email, got %q", user.Email)
				}
				return nil
			},
		}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		if err := uc.Signup(context.Background(), "  Alice@Example.COM ", "password123"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("password shorter than 8 characters is rejected", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				t.Error("Create should not be called")
				return nil
			},
		}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		err := uc.Signup(context.Background(), "test@example.com", "short")

		if err == nil {
			t.Fatal("expected error but got nil")
		}
	})

	t.Run("duplicate email error passes through", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				return ErrEmailAlreadyExists
			},
		}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		err := uc.Signup(context.Background(), "test@example.com", "password123")

		if !errors.Is(err, ErrEmailAlreadyExists) {
			t.Errorf("expected ErrEmailAlreadyExists, got: %v", err)
		}
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	// Hashed password for testing
	password := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	testUser := &entity.User{
		ID:       1,
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	findTestUser := func(ctx context.Context, email string) (*entity.User, error) {
		if email == testUser.Email {
			return testUser, nil
		}
		return nil, ErrUserNotFound
	}

	t.Run("successful login issues access token and session", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		sessions := newMockSessionRepository()
		mockJWT := &mockJWTGenerator{
			GenerateTokenFunc: func(userID uint, email string) (string, error) {
				if userID != testUser.ID || email != testUser.Email {
					t.Errorf("unexpected userID or email: got userID=%d, email=%s", userID, email)
				}
				return "mock-jwt-token", nil
			},
		}

		uc := NewAuthUsecase(mockRepo, sessions, mockJWT, testPolicy())
		result, err := uc.Login(context.Background(), LoginInput{
			Email:     "test@example.com",
			Password:  "password123",
			UserAgent: "test-agent",
			IPAddress: "127.0.0.1",
		})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.AccessToken != "mock-jwt-token" {
			t.Errorf("expected token 'mock-jwt-token', got: %q", result.AccessToken)
		}
		if result.ExpiresIn != int64((15 * time.Minute).Seconds()) {
			t.Errorf("unexpected expires_in: %d", result.ExpiresIn)
		}
		if result.Session == nil {
			t.Fatal("expected session to be issued")
		}
		if len(result.Session.ID) != 64 {
			t.Errorf("expected 64-character session token, got %d characters", len(result.Session.ID))
		}
		if result.Session.UserID != testUser.ID {
			t.Errorf("session bound to wrong user: %d", result.Session.UserID)
		}
		if _, ok := sessions.sessions[result.Session.ID]; !ok {
			t.Error("session was not persisted")
		}
	})

	t.Run("login email is case-insensitive", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		_, err := uc.Login(context.Background(), LoginInput{Email: "TEST@Example.com", Password: "password123"})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("public computer login uses the short TTL", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		result, err := uc.Login(context.Background(), LoginInput{
			Email:          "test@example.com",
			Password:       "password123",
			PublicComputer: true,
		})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ttl := result.Session.ExpiresAt.Sub(result.Session.CreatedAt)
		if ttl != time.Hour {
			t.Errorf("expected 1h TTL for public computer, got %v", ttl)
		}
	})

	t.Run("user not found", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return nil, ErrUserNotFound
			},
		}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		_, err := uc.Login(context.Background(), LoginInput{Email: "wrong@example.com", Password: "password123"})

		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got: %v", err)
		}
	})

	t.Run("incorrect password", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		_, err := uc.Login(context.Background(), LoginInput{Email: "test@example.com", Password: "wrong-password"})

		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got: %v", err)
		}
	})

	t.Run("unknown user and wrong password yield the same error", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())
		_, errUnknown := uc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "password123"})
		_, errWrongPw := uc.Login(context.Background(), LoginInput{Email: "test@example.com", Password: "wrong-password"})

		if errUnknown == nil || errWrongPw == nil {
			t.Fatal("expected both logins to fail")
		}
		if errUnknown.Error() != errWrongPw.Error() {
			t.Errorf("error messages differ: %q vs %q", errUnknown, errWrongPw)
		}
	})

	t.Run("oldest session is evicted at the per-user cap", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		sessions := newMockSessionRepository()
		policy := testPolicy()
		policy.MaxPerUser = 2

		uc := NewAuthUsecase(mockRepo, sessions, &mockJWTGenerator{}, policy)
		login := func() *LoginResult {
			result, err := uc.Login(context.Background(), LoginInput{Email: "test@example.com", Password: "password123"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// CreatedAt resolution is coarse; keep ordering deterministic
			time.Sleep(2 * time.Millisecond)
			return result
		}

		first := login()
		login()
		login()

		if len(sessions.sessions) != 2 {
			t.Errorf("expected 2 sessions after eviction, got %d", len(sessions.sessions))
		}
		if _, ok := sessions.sessions[first.Session.ID]; ok {
			t.Error("oldest session should have been evicted")
		}
	})

	t.Run("JWT generation failure", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		mockJWT := &mockJWTGenerator{
			GenerateTokenFunc: func(userID uint, email string) (string, error) {
				return "", errors.New("failed to sign token")
			},
		}

		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), mockJWT, testPolicy())
		_, err := uc.Login(context.Background(), LoginInput{Email: "test@example.com", Password: "password123"})

		if err == nil {
			t.Fatal("expected error but got nil")
		}
	})
}

func TestAuthUsecase_ValidateSession(t *testing.T) {
	newUC := func(sessions SessionRepository) *authUsecase {
		return NewAuthUsecase(&mockUserRepository{}, sessions, &mockJWTGenerator{}, testPolicy())
	}

	t.Run("valid session yields its user id", func(t *testing.T) {
		sessions := newMockSessionRepository()
		now := time.Now()
		sessions.sessions["token-1"] = &entity.Session{
			ID: "token-1", UserID: 42, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		}

		userID, err := newUC(sessions).ValidateSession(context.Background(), "token-1")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if userID != 42 {
			t.Errorf("expected user 42, got %d", userID)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := newUC(newMockSessionRepository()).ValidateSession(context.Background(), "missing")

		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got: %v", err)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := newUC(newMockSessionRepository()).ValidateSession(context.Background(), "")

		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got: %v", err)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		sessions := newMockSessionRepository()
		now := time.Now()
		sessions.sessions["token-1"] = &entity.Session{
			ID: "token-1", UserID: 42, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
		}

		_, err := newUC(sessions).ValidateSession(context.Background(), "token-1")

		if !errors.Is(err, ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired, got: %v", err)
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		sessions := newMockSessionRepository()
		now := time.Now()
		sessions.sessions["token-1"] = &entity.Session{
			ID: "token-1", UserID: 42, CreatedAt: now, ExpiresAt: now.Add(time.Hour), RevokedAt: &now,
		}

		_, err := newUC(sessions).ValidateSession(context.Background(), "token-1")

		if !errors.Is(err, ErrSessionRevoked) {
			t.Errorf("expected ErrSessionRevoked, got: %v", err)
		}
	})
}

func TestAuthUsecase_Logout(t *testing.T) {
	newUC := func(sessions SessionRepository) *authUsecase {
		return NewAuthUsecase(&mockUserRepository{}, sessions, &mockJWTGenerator{}, testPolicy())
	}

	t.Run("logout revokes the session", func(t *testing.T) {
		sessions := newMockSessionRepository()
		now := time.Now()
		sessions.sessions["token-1"] = &entity.Session{
			ID: "token-1", UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		}
		uc := newUC(sessions)

		if err := uc.Logout(context.Background(), "token-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// validate must fail after logout
		if _, err := uc.ValidateSession(context.Background(), "token-1"); err == nil {
			t.Error("expected validation to fail after logout")
		}
	})

	t.Run("logout is idempotent for unknown tokens", func(t *testing.T) {
		uc := newUC(newMockSessionRepository())

		if err := uc.Logout(context.Background(), "never-existed"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := uc.Logout(context.Background(), ""); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestAuthUsecase_Refresh(t *testing.T) {
	password := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	testUser := &entity.User{ID: 7, Email: "test@example.com", Password: string(hashedPassword)}

	mockRepo := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			if email == testUser.Email {
				return testUser, nil
			}
			return nil, ErrUserNotFound
		},
		FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
			if id == testUser.ID {
				return testUser, nil
			}
			return nil, ErrUserNotFound
		},
	}

	t.Run("refresh rotates the session", func(t *testing.T) {
		sessions := newMockSessionRepository()
		uc := NewAuthUsecase(mockRepo, sessions, &mockJWTGenerator{}, testPolicy())

		loginResult, err := uc.Login(context.Background(), LoginInput{Email: "test@example.com", Password: "password123"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		oldToken := loginResult.Session.ID

		refreshed, err := uc.Refresh(context.Background(), oldToken, "agent", "127.0.0.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if refreshed.Session.ID == oldToken {
			t.Error("expected a new session token after refresh")
		}

		// The old token must be dead
		if _, err := uc.ValidateSession(context.Background(), oldToken); !errors.Is(err, ErrSessionRevoked) {
			t.Errorf("expected old token to be revoked, got: %v", err)
		}
		// The new one must validate
		if userID, err := uc.ValidateSession(context.Background(), refreshed.Session.ID); err != nil || userID != testUser.ID {
			t.Errorf("expected new token to validate for user %d, got userID=%d err=%v", testUser.ID, userID, err)
		}
	})

	t.Run("refresh with unknown token fails", func(t *testing.T) {
		uc := NewAuthUsecase(mockRepo, newMockSessionRepository(), &mockJWTGenerator{}, testPolicy())

		_, err := uc.Refresh(context.Background(), "unknown", "agent", "127.0.0.1")

		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got: %v", err)
		}
	})
}
