// Package migrator applies the embedded goose migrations to Postgres.
package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/caelus-deploy/caelus/pkg/logger"
)

// Migrator runs one migration set against one database.
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
	log      logger.Logger
}

// Open connects to dbURL and loads the migrations in files (SQL files at the root).
func Open(dbURL string, files fs.FS, log logger.Logger) (*Migrator, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("migrator: open database: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, files)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrator: load migrations: %w", err)
	}
	return &Migrator{db: db, provider: provider, log: log}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	m.logResults(ctx, results)
	if err != nil {
		return fmt.Errorf("migrator: up: %w", err)
	}
	if len(results) == 0 {
		m.log.InfoContext(ctx, "migrations: schema up to date")
	}
	return nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) error {
	result, err := m.provider.Down(ctx)
	if result != nil {
		m.logResults(ctx, []*goose.MigrationResult{result})
	}
	if errors.Is(err, goose.ErrNoNextVersion) {
		m.log.InfoContext(ctx, "migrations: nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrator: down: %w", err)
	}
	return nil
}

// Status logs the state of every known migration.
func (m *Migrator) Status(ctx context.Context) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("migrator: status: %w", err)
	}
	for _, s := range statuses {
		args := []any{"version", s.Source.Version, "file", s.Source.Path, "state", string(s.State)}
		if s.State == goose.StateApplied {
			args = append(args, "applied_at", s.AppliedAt)
		}
		m.log.InfoContext(ctx, "migration", args...)
	}
	return nil
}

func (m *Migrator) logResults(ctx context.Context, results []*goose.MigrationResult) {
	for _, r := range results {
		if r.Error != nil {
			m.log.ErrorContext(ctx, "migration failed",
				"version", r.Source.Version, "file", r.Source.Path, "direction", r.Direction, "error", r.Error)
			continue
		}
		m.log.InfoContext(ctx, "migration applied",
			"version", r.Source.Version, "file", r.Source.Path, "direction", r.Direction,
			"duration_ms", r.Duration.Milliseconds())
	}
}

// Close releases the database handle.
func (m *Migrator) Close() error {
	return m.provider.Close()
}
