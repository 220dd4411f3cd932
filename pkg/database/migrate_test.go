package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/migrations"
)

type gooseCall struct {
	command string
	dir     string
	db      *sql.DB
	args    []string
}

func stubGoose(t *testing.T, runErr error, version int64) *[]gooseCall {
	t.Helper()
	var calls []gooseCall
	origRun, origVersion := gooseRun, gooseVersion
	gooseRun = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
		calls = append(calls, gooseCall{command: command, dir: dir, db: db, args: args})
		return runErr
	}
	gooseVersion = func(ctx context.Context, db *sql.DB) (int64, error) {
		return version, nil
	}
	t.Cleanup(func() {
		gooseRun, gooseVersion = origRun, origVersion
		goose.SetBaseFS(nil)
	})
	return &calls
}

func newMigratorForTest(t *testing.T) (*Migrator, *sql.DB) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMigrator(sqlx.NewDb(db, "postgres"), migrations.FS, nil), db
}

func TestMigratorUpRunsGoose(t *testing.T) {
	calls := stubGoose(t, nil, 2)
	m, db := newMigratorForTest(t)

	version, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "up", call.command)
	assert.Equal(t, ".", call.dir)
	assert.Same(t, db, call.db)
}

func TestMigratorRunPassesArguments(t *testing.T) {
	calls := stubGoose(t, nil, 0)
	m, _ := newMigratorForTest(t)

	require.NoError(t, m.Run(context.Background(), "down-to", "1"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "down-to", (*calls)[0].command)
	assert.Equal(t, []string{"1"}, (*calls)[0].args)
}

func TestMigratorUpWrapsFailures(t *testing.T) {
	stubGoose(t, errors.New("syntax error at or near \"TABEL\""), 0)
	m, _ := newMigratorForTest(t)

	_, err := m.Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate up")
	assert.Contains(t, err.Error(), "TABEL")
}

func TestEmbeddedMigrationsAreGooseMigrations(t *testing.T) {
	goose.SetBaseFS(migrations.FS)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	collected, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, collected, 2)
	assert.Equal(t, int64(1), collected[0].Version)
	assert.Equal(t, int64(2), collected[1].Version)

	names, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	for _, name := range names {
		content, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- +goose Up", name)
		assert.Contains(t, string(content), "-- +goose Down", name)
	}
}
