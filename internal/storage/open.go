// Package storage picks the relational store implementation from config.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/memory"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

// Open returns the configured store, migrated when asked to. The caller closes it.
func Open(ctx context.Context, cfg shared.Config) (domain.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using the in-memory store; data is lost on exit")
		return memory.New(), nil
	case "mysql", "":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info().Msg("database connection ok")

	if cfg.MigrateOnStart {
		if err := mysqlrepo.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return mysqlrepo.New(db), nil
}
