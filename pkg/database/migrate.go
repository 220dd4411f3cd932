package database

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Swapped out in tests; goose keeps its configuration in package globals.
var (
	gooseRun     = goose.RunContext
	gooseVersion = goose.GetDBVersionContext
)

// Migrator runs the embedded goose migrations against Postgres.
type Migrator struct {
	db     *sqlx.DB
	files  fs.FS
	logger *zap.Logger
}

// NewMigrator constructs a Migrator reading scripts from the root of files.
func NewMigrator(db *sqlx.DB, files fs.FS, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, files: files, logger: logger}
}

// Up applies every pending migration and returns the resulting schema version.
func (m *Migrator) Up(ctx context.Context) (int64, error) {
	if err := m.Run(ctx, "up"); err != nil {
		return 0, err
	}
	version, err := gooseVersion(ctx, m.db.DB)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Run executes a goose command (up, down, status, version, redo, reset, ...).
func (m *Migrator) Run(ctx context.Context, command string, args ...string) error {
	goose.SetBaseFS(m.files)
	goose.SetLogger(gooseLogger{m.logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := gooseRun(ctx, command, m.db.DB, ".", args...); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

// gooseLogger routes goose progress output through zap.
type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.Infof(strings.TrimSpace(format), v...)
}

var _ goose.Logger = gooseLogger{}
