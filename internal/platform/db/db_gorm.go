// Package db opens the relational store and runs schema migrations.
package db

import (
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bluemind_backend/internal/config"
	authadapters "bluemind_backend/internal/feature/auth/adapters"
	authentity "bluemind_backend/internal/feature/auth/domain/entity"
	msgadapters "bluemind_backend/internal/feature/messages/adapters"
)

// Open は設定のDSNでデータベースへ接続します。
// postgres:// で始まるDSNはPostgres、それ以外はSQLiteファイルとして扱います。
// 起動直後のDB未準備に備えて60秒間リトライします。
func Open(cfg config.DB) *gorm.DB {
	dialector := dialectorFor(cfg.DSN)

	// TranslateError によりドライバ固有のユニーク制約違反が
	// gorm.ErrDuplicatedKey に正規化される
	gormCfg := &gorm.Config{TranslateError: true}

	var (
		conn *gorm.DB
		err  error
	)
	deadline := time.Now().Add(60 * time.Second)
	for {
		conn, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if cfg.RunMigrations {
		// マイグレーション（User, Session, Message）
		if err := conn.AutoMigrate(
			&authentity.User{},
			&authadapters.SessionModel{},
			&msgadapters.MessageModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return conn
}

func dialectorFor(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}
