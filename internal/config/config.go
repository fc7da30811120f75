// Package config はサービス全体の設定を読み込みます。
// 設定はプロセス起動時に一度だけ読み込まれ、以降は不変の値として各コンストラクタへ渡されます。
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every runtime setting for the service.
type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	DB         `yaml:"db"`
	Redis      `yaml:"redis"`
	Auth       `yaml:"auth"`
}

// HTTPServer configures the listener and request timeouts.
type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// DB configures the relational store.
// A postgres:// DSN selects the Postgres driver; anything else is
// treated as an SQLite path (used for local development and tests).
type DB struct {
	DSN           string `yaml:"dsn" env:"DB_DSN" env-default:"file:bluemind.db?cache=shared"`
	RunMigrations bool   `yaml:"run_migrations" env:"RUN_MIGRATIONS" env-default:"true"`
}

// Redis configures the optional session cache.
// An empty address disables Redis and sessions fall back to SQL.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:""`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
}

// Auth configures token issuance.
// JWTSecret は必須項目です。ソースコードへの秘密鍵の埋め込みは禁止されているため、
// デフォルト値は存在せず、未設定の場合は起動に失敗します。
type Auth struct {
	JWTSecret          string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	SessionTTL         time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	PublicSessionTTL   time.Duration `yaml:"public_session_ttl" env:"PUBLIC_SESSION_TTL" env-default:"1h"`
	MaxSessionsPerUser int           `yaml:"max_sessions_per_user" env:"MAX_SESSIONS_PER_USER" env-default:"5"`
	CookieSecure       bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
}

// MustLoad は設定を読み込み、失敗した場合はpanicします。
// CONFIG_PATHが指す設定ファイルが存在すればファイル＋環境変数、
// なければ環境変数のみから読み込みます。
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load reads the configuration from an optional yaml file plus the
// environment. Environment variables always win over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
