package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaultsToSQLite(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, defaultSQLitePath, cfg.Path)
	assert.Equal(t, 4, cfg.MaxConnections)
	assert.Contains(t, cfg.DSN(), "file:regbot.db?")
	assert.Contains(t, cfg.DSN(), "busy_timeout(5000)")
}

func TestNormalizeAliases(t *testing.T) {
	cfg := Config{Driver: " PG ", Host: "db", Name: "regbot"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)

	cfg = Config{Driver: "sqlite3", Path: MemoryPath}
	require.NoError(t, cfg.Normalize())
	assert.True(t, cfg.InMemory())
	assert.Equal(t, MemoryPath, cfg.DSN())
}

func TestNormalizeRejects(t *testing.T) {
	cfg := Config{Driver: "postgres"}
	assert.Error(t, cfg.Normalize())

	cfg = Config{Driver: "mysql"}
	assert.Error(t, cfg.Normalize())
}

func TestPostgresDSNAndURL(t *testing.T) {
	cfg := Config{Driver: DriverPostgres, Host: "db", Name: "regbot", User: "bot", Password: "p@ss word"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "user=bot password=p@ss word host=db port=5432 dbname=regbot sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://bot:p%40ss%20word@db:5432/regbot?sslmode=disable", cfg.URL())
}
