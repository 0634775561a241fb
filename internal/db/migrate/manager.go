package dbmigrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/roivaz/ragsplit/internal/db/migrations"
)

// Manager applies and rolls back the chunk table migrations with the bun
// migrator.
type Manager struct {
	migrator *migrate.Migrator
}

// NewManagerWithFS discovers the *.up.sql/*.down.sql pairs in fsys. Pass
// migrations.FS for the embedded chunks migrations (create_chunks and
// chunks_search_indexes); Open does that when no directory is configured.
func NewManagerWithFS(db *bun.DB, fsys fs.FS) (*Manager, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if fsys == nil {
		return nil, errors.New("migrations filesystem is required")
	}

	found := migrate.NewMigrations()
	if err := found.Discover(fsys); err != nil {
		return nil, fmt.Errorf("discover migrations: %w", err)
	}

	return &Manager{migrator: migrate.NewMigrator(db, found)}, nil
}

// NewManager reads migrations from dir on disk instead of the embedded
// chunks migrations, for trying out schema changes without a rebuild.
func NewManager(db *bun.DB, dir string) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("migrations directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	return NewManagerWithFS(db, os.DirFS(abs))
}

// Open returns a manager for the migrations in dir, or for the embedded
// migrations when dir is empty.
func Open(db *bun.DB, dir string) (*Manager, error) {
	if dir == "" {
		return NewManagerWithFS(db, migrations.FS)
	}
	return NewManager(db, dir)
}

// Discover lists the migrations found in fsys without touching a database.
func Discover(fsys fs.FS) (migrate.MigrationSlice, error) {
	m := migrate.NewMigrations()
	if err := m.Discover(fsys); err != nil {
		return nil, fmt.Errorf("discover migrations: %w", err)
	}
	return m.Sorted(), nil
}

func (m *Manager) Init(ctx context.Context) error {
	return m.migrator.Init(ctx)
}

func (m *Manager) MigrateUp(ctx context.Context) error {
	if _, err := m.migrator.Migrate(ctx); err != nil {
		return err
	}
	return nil
}

func (m *Manager) MigrateDownSteps(ctx context.Context, steps int) error {
	if steps < 0 {
		return errors.New("steps must be >= 0")
	}

	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}

	applied := status.Applied()
	if len(applied) == 0 {
		return nil
	}

	count := steps
	if steps <= 0 || steps > len(applied) {
		count = len(applied)
	}

	for i := 0; i < count; i++ {
		if _, err := m.migrator.Rollback(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) MigrateDownTo(ctx context.Context, target string) error {
	if target == "" {
		return errors.New("target version is required")
	}

	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, mig := range status {
		if mig.Name == target {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %s not found", target)
	}

	applied := status.Applied()
	steps := 0
	for _, mig := range applied {
		if mig.Name > target {
			steps++
		}
	}

	if steps == 0 {
		return nil
	}

	return m.MigrateDownSteps(ctx, steps)
}

func (m *Manager) Status(ctx context.Context) (migrate.MigrationSlice, error) {
	return m.migrator.MigrationsWithStatus(ctx)
}

func (m *Manager) Reset(ctx context.Context) error {
	return m.migrator.Reset(ctx)
}
