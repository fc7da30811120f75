// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bluemind_backend/internal/feature/auth/transport/http/dto"
	"bluemind_backend/internal/feature/auth/transport/middleware"
	"bluemind_backend/internal/feature/auth/usecase"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は指定されたメールアドレスとパスワードで新規ユーザーを登録します。
	Signup(ctx context.Context, email, password string) error
	// Login はユーザーを認証し、成功時にアクセストークンとセッションを発行します。
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
	// Refresh はセッションをローテーションし、新しいトークンペアを発行します。
	Refresh(ctx context.Context, token, userAgent, ipAddress string) (*usecase.LoginResult, error)
	// Logout はセッションを失効させます。冪等です。
	Logout(ctx context.Context, token string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth         AuthUsecase
	cookieSecure bool
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// cookieSecureはTLS配下で運用する場合にtrueを設定します。
func NewAuthHandler(auth AuthUsecase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メールアドレス重複時は409を返却（詳細は漏らさない）
// - 成功時は201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}
	if err := h.auth.Signup(c.Request.Context(), req.Email, req.Password); err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("signup failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			c.JSON(http.StatusConflict, dto.ErrorRes{Error: "signup failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal error"})
		return
	}
	slog.Info("user signup successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.MessageRes{Message: "ok"})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 成功時はアクセストークンをJSONで返し、セッショントークンを
// HttpOnlyクッキーとして設定します。認証失敗は原因を問わず401です。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}
	result, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:          req.Email,
		Password:       req.Password,
		PublicComputer: req.PublicComputer,
		UserAgent:      c.Request.UserAgent(),
		IPAddress:      c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "invalid email or password"})
			return
		}
		slog.Error("login error", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal error"})
		return
	}

	h.setSessionCookie(c, result)
	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenRes{
		AccessToken:  result.AccessToken,
		RefreshToken: result.Session.ID,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Refresh はセッションローテーションAPIエンドポイントを処理します。
// トークンはリクエストボディまたはセッションクッキーから取得します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	// ボディは省略可能（クッキーのみのブラウザクライアント向け）
	_ = c.ShouldBindJSON(&req)

	token := req.RefreshToken
	if token == "" {
		token = middleware.SessionToken(c)
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "missing refresh token"})
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), token, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSessionNotFound),
			errors.Is(err, usecase.ErrSessionExpired),
			errors.Is(err, usecase.ErrSessionRevoked),
			errors.Is(err, usecase.ErrUserNotFound):
			slog.Warn("refresh rejected", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "invalid session"})
		default:
			slog.Error("refresh error", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal error"})
		}
		return
	}

	h.setSessionCookie(c, result)
	c.JSON(http.StatusOK, dto.TokenRes{
		AccessToken:  result.AccessToken,
		RefreshToken: result.Session.ID,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Logout はログアウトAPIエンドポイントを処理します。
// セッションが存在しなくても常に200を返し、クッキーを削除します。
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		slog.Error("logout error", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal error"})
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, dto.MessageRes{Message: "ok"})
}

// setSessionCookie はセッショントークンをHttpOnlyクッキーとして設定します。
func (h *AuthHandler) setSessionCookie(c *gin.Context, result *usecase.LoginResult) {
	maxAge := int(result.Session.ExpiresAt.Sub(result.Session.CreatedAt).Seconds())
	c.SetCookie(middleware.SessionCookie, result.Session.ID, maxAge, "/", "", h.cookieSecure, true)
}
