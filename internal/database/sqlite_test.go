package database

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/BradenHooton/roster/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := OpenSQLite(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenSQLite_LowerFoldsUnicode(t *testing.T) {
	db := openTestSQLite(t)

	tests := []struct {
		input string
		want  string
	}{
		{"ALICE", "alice"},
		{"ÖDÖN ÉVA", "ödön éva"},
		{"JÖRG-ÄBC", "jörg-äbc"},
		{"ΣΩ", "σω"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got string
			err := db.DB.QueryRowContext(context.Background(), "SELECT lower(?)", tt.input).Scan(&got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteDB_MigrateAndMapErrors(t *testing.T) {
	db := openTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	insert := `INSERT INTO accounts (id, login, name, email) VALUES (?, ?, ?, ?)`
	_, err := db.DB.ExecContext(ctx, insert, "1", "carol", "Carol", "carol@example.com")
	require.NoError(t, err)

	_, err = db.DB.ExecContext(ctx, insert, "2", "carol", "Carol", "carol@example.com")
	assert.ErrorIs(t, MapSQLiteError(err), models.ErrConflict)

	var id string
	err = db.DB.QueryRowContext(ctx, `SELECT id FROM accounts WHERE login = ?`, "nobody").Scan(&id)
	assert.ErrorIs(t, MapSQLiteError(err), models.ErrNotFound)

	assert.NoError(t, db.HealthCheck(ctx))
}
