package database

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neobeach/core/internal/config"
	"github.com/neobeach/core/internal/shared/testutil"
)

type user struct{}

func (user) TableName() string { return "users" }
func (user) Schema() string {
	return `CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL UNIQUE
	)`
}

type post struct{}

func (post) TableName() string { return "posts" }
func (post) Schema() string {
	return `CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id)
	)`
}

type broken struct{}

func (broken) TableName() string { return "broken" }
func (broken) Schema() string    { return `CREATE TABLE broken (` }

type anonymous struct{}

func (anonymous) TableName() string { return "" }
func (anonymous) Schema() string    { return "" }

func openTestDB(t *testing.T) (*DB, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, logs
}

func TestInit(t *testing.T) {
	ctx := context.Background()
	db, logs := openTestDB(t)

	require.NoError(t, db.Init(ctx, user{}, post{}))
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "database initialized")
	testutil.AssertLogAttr(t, logs, "models", int64(2))

	names, err := db.Models(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"posts", "users"}, names)

	_, err = db.ExecContext(ctx, `INSERT INTO users (id, email) VALUES (1, 'a@example.com')`)
	require.NoError(t, err)

	// Running again is harmless.
	require.NoError(t, db.Init(ctx, user{}, post{}))
}

func TestInit_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		models []Model
		want   error
	}{
		{"nil model", []Model{user{}, nil}, ErrNilModel},
		{"empty table name", []Model{anonymous{}}, ErrNoTableName},
		{"duplicate table", []Model{user{}, user{}}, ErrDuplicateModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := openTestDB(t)
			assert.ErrorIs(t, db.Init(context.Background(), tt.models...), tt.want)

			names, err := db.Models(context.Background())
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestInit_RollsBackOnSchemaError(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestDB(t)

	err := db.Init(ctx, user{}, broken{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&count))
	assert.Zero(t, count)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"}, nil)
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	db, _ := openTestDB(t)
	require.NoError(t, db.Check(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.Check(context.Background()))
}
