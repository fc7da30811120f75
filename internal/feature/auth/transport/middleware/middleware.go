// Package middleware provides the authentication middleware for protected routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserID is the gin context key holding the authenticated user's ID.
	ContextUserID = "userID"

	// SessionCookie is the name of the HttpOnly session cookie.
	SessionCookie = "session"

	// HeaderSessionToken lets non-browser clients present the opaque
	// session token without a cookie jar.
	HeaderSessionToken = "X-Session-Token"
)

// SessionValidator checks an opaque session token against the session store.
// Following Go convention: interfaces are defined by the consumer (middleware), not the provider (usecase).
type SessionValidator interface {
	// ValidateSession returns the user ID the token was issued to.
	ValidateSession(ctx context.Context, token string) (uint, error)
}

// TokenVerifier verifies a signed access token (JWT).
type TokenVerifier interface {
	// Verify returns the user ID embedded in a valid token.
	Verify(token string) (uint, error)
}

// AuthRequired returns a Gin middleware that restricts access to
// authenticated users. Two credentials are accepted:
//
//   - Authorization: Bearer <jwt>  — the short-lived access token
//   - session cookie or X-Session-Token header — the opaque session token,
//     validated against the session store on every request
//
// On success the user ID is stored in the gin context under ContextUserID.
func AuthRequired(sessions SessionValidator, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			userID, err := verifier.Verify(tokenStr)
			if err != nil {
				slog.Warn("bearer token rejected", "error", err, "remote_addr", c.ClientIP())
				abortUnauthorized(c)
				return
			}
			c.Set(ContextUserID, userID)
			c.Next()
			return
		}

		token := SessionToken(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}
		userID, err := sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			// 失効・期限切れ・不明はすべて同一の401として扱う
			slog.Warn("session token rejected", "error", err, "remote_addr", c.ClientIP())
			abortUnauthorized(c)
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// SessionToken extracts the opaque session token from the request,
// preferring the cookie over the header. Returns "" if absent.
func SessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	return c.GetHeader(HeaderSessionToken)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
}
