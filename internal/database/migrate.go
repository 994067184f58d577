package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/database/migrations"
)

func ensureDatabase(ctx context.Context, databaseURL string, log *zap.Logger) error {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return fmt.Errorf("database name is empty in url")
	}
	u.Path = "/postgres"
	adminURL := u.String()
	db, err := sql.Open("postgres", adminURL)
	if err != nil {
		return fmt.Errorf("open admin connection: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping admin connection: %w", err)
	}
	var exists bool
	err = db.QueryRowContext(ctx, "SELECT true FROM pg_database WHERE datname = $1", dbName).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check database existence: %w", err)
	}
	if exists {
		return nil
	}
	if _, err = db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName)); err != nil {
		return fmt.Errorf("create database %q: %w", dbName, err)
	}
	log.Info("database created", zap.String("database", dbName))
	return nil
}

func withGoose(ctx context.Context, databaseURL string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}

// MigrateUp creates the target database when missing and applies all pending migrations.
func MigrateUp(ctx context.Context, databaseURL string, log *zap.Logger) error {
	if err := ensureDatabase(ctx, databaseURL, log); err != nil {
		return fmt.Errorf("ensure database: %w", err)
	}
	return withGoose(ctx, databaseURL, func(db *sql.DB) error {
		before, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("db version: %w", err)
		}
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return err
		}
		after, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("db version: %w", err)
		}
		if after == before {
			log.Info("migrate: no pending migrations", zap.Int64("version", after))
		} else {
			log.Info("migrate: up ok", zap.Int64("from", before), zap.Int64("to", after))
		}
		return nil
	})
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, databaseURL string) error {
	return withGoose(ctx, databaseURL, func(db *sql.DB) error {
		return goose.DownContext(ctx, db, ".")
	})
}

// MigrateStatus prints the applied/pending state of every migration through goose's logger.
func MigrateStatus(ctx context.Context, databaseURL string) error {
	return withGoose(ctx, databaseURL, func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, ".")
	})
}
