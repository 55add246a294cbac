// Package participanttest provides a migrated in-memory participant store for tests.
package participanttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/regbot/core/database"
	"github.com/m3rciful/regbot/internal/participant"
)

// NewStore opens a private in-memory SQLite database, applies the schema and
// returns a store backed by it. The database is closed when the test ends.
func NewStore(t testing.TB) *participant.SQLStore {
	t.Helper()
	cfg := database.Config{Driver: database.DriverSQLite, Path: database.MemoryPath}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunMigrations(db, cfg, participant.Migrations()))

	store, err := participant.NewSQLStore(context.Background(), db)
	require.NoError(t, err)
	return store
}
