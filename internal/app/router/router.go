package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authhandler "bluemind_backend/internal/feature/auth/transport/handler"
	msghandler "bluemind_backend/internal/feature/messages/transport/handler"
	"bluemind_backend/internal/platform/http/handler"
	"bluemind_backend/internal/shared/ratelimiter"
)

func NewRouter(authHandler *authhandler.AuthHandler, messages *msghandler.MessagesHandler,
	authRequired gin.HandlerFunc, loginLimiter *ratelimiter.Limiter) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// 新規ユーザー登録
	r.POST("/signup", authHandler.Signup)
	// ログイン（セッション発行）。ブルートフォース対策のIP別レート制限付き
	r.POST("/login", rateLimit(loginLimiter), authHandler.Login)
	// セッションローテーション
	r.POST("/refresh", authHandler.Refresh)
	// ログアウト（セッションがなくても成功する）
	r.POST("/logout", authHandler.Logout)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(authRequired)
	{
		auth.GET("/inbox", messages.Inbox)
		auth.GET("/messages/:id", messages.View)
		auth.POST("/messages", messages.Send)
		auth.DELETE("/messages/:id", messages.Delete)
	}

	return r
}

// rateLimit はクライアントIPごとの試行回数を制限するミドルウェアです。
func rateLimit(limiter *ratelimiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "too many login attempts, please try again later"})
			return
		}
		c.Next()
	}
}
