package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/regbot/core/logger"
)

const migrateComponent = "db.migrate"

// RunMigrations applies all up migrations found in fsys under the directory named
// after the configured driver. Already-applied migrations are skipped, so it is safe
// to call on every start.
func RunMigrations(db *sqlx.DB, cfg Config, fsys fs.FS) error {
	ctx := context.Background()
	if err := cfg.Normalize(); err != nil {
		return err
	}
	if fsys == nil {
		return errors.New("migrations: nil source")
	}

	dir := cfg.Driver
	files := listMigrationFiles(fsys, dir)
	preview, truncated := logger.SummarizeStrings(files, 6)
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("path", dir),
		slog.Int("files_total", len(files)),
	}
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	logger.Debug(ctx, migrateComponent, "resolve", attrs...)

	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("open migrations %s: %w", dir, err)
	}

	m, closeFn, err := newMigrate(db, cfg, src)
	if err != nil {
		_ = src.Close()
		logger.Error(ctx, migrateComponent, "init",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer closeFn()

	fromVer, _, _ := m.Version()

	start := time.Now()
	upErr := m.Up()
	took := time.Since(start)

	switch {
	case upErr == nil:
	case errors.Is(upErr, migrate.ErrNoChange):
		logger.Info(ctx, migrateComponent, "summary",
			slog.String("status", "ok"),
			slog.Uint64("from_ver", uint64(fromVer)),
			slog.Uint64("to_ver", uint64(fromVer)),
			slog.Int("files", 0),
			slog.Duration("duration", took),
		)
		return nil
	default:
		logger.Error(ctx, migrateComponent, "apply",
			slog.String("status", "fail"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer, _, _ := m.Version()
	applied := selectApplied(files, uint64(fromVer), uint64(toVer))
	if len(applied) > 0 {
		previewApplied, _ := logger.SummarizeStrings(applied, 6)
		logger.Debug(ctx, migrateComponent, "apply",
			slog.String("status", "ok"),
			slog.Int("files_total", len(applied)),
			slog.String("files_preview", previewApplied),
		)
	}
	logger.Info(ctx, migrateComponent, "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}

// newMigrate builds a migrator for the driver. SQLite reuses the open handle so
// in-memory databases see the schema; closing that migrator would close db, so
// only the source is released.
func newMigrate(db *sqlx.DB, cfg Config, src source.Driver) (*migrate.Migrate, func(), error) {
	switch cfg.Driver {
	case DriverSQLite:
		if db == nil {
			return nil, nil, errors.New("migrations: nil db")
		}
		inst, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
		if err != nil {
			return nil, nil, err
		}
		m, err := migrate.NewWithInstance("iofs", src, DriverSQLite, inst)
		if err != nil {
			return nil, nil, err
		}
		return m, func() { _ = src.Close() }, nil
	case DriverPostgres:
		if err := WaitForPostgres(cfg.DSN(), 30*time.Second); err != nil {
			return nil, nil, fmt.Errorf("database not ready: %w", err)
		}
		m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL())
		if err != nil {
			return nil, nil, err
		}
		return m, func() { _, _ = m.Close() }, nil
	}
	return nil, nil, fmt.Errorf("migrations: unsupported driver %q", cfg.Driver)
}

func listMigrationFiles(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(name, ".up.sql") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	head, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(head, 10, 64)
	return v
}

func selectApplied(files []string, from, to uint64) []string {
	if to <= from {
		return nil
	}
	var out []string
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
