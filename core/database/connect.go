package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/regbot/core/logger"
)

const component = "db"

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(cfg Config) (*sqlx.DB, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	took := time.Since(start)
	if err != nil {
		logger.Error(ctx, component, "db.connect",
			append(targetAttrs(cfg),
				slog.Duration("duration", took),
				slog.String("err", err.Error()),
			)...,
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pool := cfg.MaxConnections
	if cfg.InMemory() {
		// Each connection to :memory: is a separate database.
		pool = 1
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	db.SetMaxOpenConns(pool)
	db.SetMaxIdleConns(pool)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		logger.Error(ctx, component, "db.ping",
			append(targetAttrs(cfg), slog.String("err", pingErr.Error()))...,
		)
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", pingErr)
	}

	logger.Info(ctx, component, "db.connect",
		append(targetAttrs(cfg),
			slog.Int("pool_open", pool),
			slog.Duration("duration", took),
		)...,
	)
	return db, nil
}

func targetAttrs(cfg Config) []slog.Attr {
	attrs := []slog.Attr{slog.String("driver", cfg.Driver)}
	if cfg.Driver == DriverPostgres {
		return append(attrs,
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("db", cfg.Name),
		)
	}
	return append(attrs, slog.String("db", cfg.Path))
}

// WaitForPostgres tries to connect to the DB until it is ready or timeout is reached.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	start := time.Now()
	var lastErr error
	for {
		db, err := sql.Open(DriverPostgres, dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				_ = db.Close()
				return nil
			}
			_ = db.Close()
		}
		lastErr = err
		if time.Since(start) > timeout {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}
