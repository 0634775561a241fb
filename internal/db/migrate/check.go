package dbmigrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// EnsureCurrent fails when migrations are pending, unless autoMigrate is
// set, in which case it applies them. An empty dir selects the embedded
// migrations.
func EnsureCurrent(ctx context.Context, bunDB *bun.DB, dir string, autoMigrate bool) error {
	manager, err := Open(bunDB, dir)
	if err != nil {
		return err
	}

	if err := manager.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		return fmt.Errorf("fetch migration status: %w", err)
	}

	pending := pendingNames(status)

	if len(pending) == 0 {
		return nil
	}

	if !autoMigrate {
		return fmt.Errorf("pending migrations: %s. Run 'dbctl migrate up' to apply them.", strings.Join(pending, ", "))
	}

	if err := manager.MigrateUp(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func pendingNames(status migrate.MigrationSlice) []string {
	var pending []string
	for _, mig := range status {
		if !mig.IsApplied() {
			pending = append(pending, fmt.Sprintf("%s_%s", mig.Name, mig.Comment))
		}
	}
	return pending
}
