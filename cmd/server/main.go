package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"bluemind_backend/internal/app/di"
	"bluemind_backend/internal/app/router"
	"bluemind_backend/internal/config"
	authadapters "bluemind_backend/internal/feature/auth/adapters"
	authhandler "bluemind_backend/internal/feature/auth/transport/handler"
	authmw "bluemind_backend/internal/feature/auth/transport/middleware"
	authusecase "bluemind_backend/internal/feature/auth/usecase"
	msgadapters "bluemind_backend/internal/feature/messages/adapters"
	msghandler "bluemind_backend/internal/feature/messages/transport/handler"
	msgusecase "bluemind_backend/internal/feature/messages/usecase"
	infradb "bluemind_backend/internal/platform/db"
	platformjwt "bluemind_backend/internal/platform/jwt"
	infraredis "bluemind_backend/internal/platform/redis"
	"bluemind_backend/internal/shared/ratelimiter"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// 設定は起動時に一度だけ読み込む（JWT_SECRET未設定ならここで落ちる）
	cfg := config.MustLoad()

	// db
	db := infradb.Open(cfg.DB)

	// Redis（未設定・接続不可の場合はSQLセッションストアへフォールバック）
	var rdb *redisv9.Client
	if cfg.Redis.Addr != "" {
		if tmp, err := infraredis.NewClient(cfg.Redis); err != nil {
			log.Println("[WARN] Redis unavailable. Falling back to SQL session store.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// Repository
	userRepo := authadapters.NewUserSQL(db)
	sessionRepo := di.NewSessionRepository(rdb, db)
	messageRepo := msgadapters.NewMessageSQL(db)
	userDirectory := msgadapters.NewUserDirectorySQL(db)

	// Token
	jwtGenerator := platformjwt.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	jwtVerifier := platformjwt.NewVerifier(cfg.Auth.JWTSecret)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, jwtGenerator, authusecase.SessionPolicy{
		TTL:            cfg.Auth.SessionTTL,
		PublicTTL:      cfg.Auth.PublicSessionTTL,
		MaxPerUser:     cfg.Auth.MaxSessionsPerUser,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	})
	messageUC := msgusecase.NewMessageUsecase(messageRepo, userDirectory)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, cfg.Auth.CookieSecure)
	messageH := msghandler.NewMessagesHandler(messageUC)

	// ルータ生成
	engine := router.NewRouter(
		authH,
		messageH,
		authmw.AuthRequired(authUC, jwtVerifier),
		ratelimiter.New(5, 15*time.Minute),
	)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	log.Printf("listening on %s", cfg.HTTPServer.Address)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
