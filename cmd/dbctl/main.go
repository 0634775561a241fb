package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"

	"github.com/roivaz/ragsplit/internal/config"
	"github.com/roivaz/ragsplit/internal/db"
	dbmigrate "github.com/roivaz/ragsplit/internal/db/migrate"
)

var rootCmd = &cobra.Command{
	Use:   "dbctl",
	Short: "Database schema management CLI",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the migration tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			return manager.Init(cmd.Context())
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or rollback schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			if err := manager.Init(cmd.Context()); err != nil {
				return err
			}
			return manager.MigrateUp(cmd.Context())
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		to, _ := cmd.Flags().GetString("to")

		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			if to != "" {
				return manager.MigrateDownTo(cmd.Context(), to)
			}
			return manager.MigrateDownSteps(cmd.Context(), steps)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:           "status",
	Short:         "Show applied and pending migrations and the stored chunk count",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			if err := manager.Init(cmd.Context()); err != nil {
				return err
			}
			status, err := manager.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pending := false
			for _, m := range status {
				state := "pending"
				if m.IsApplied() {
					state = "applied"
				} else {
					pending = true
				}
				fmt.Fprintf(out, "%s_%s\t%s\n", m.Name, m.Comment, state)
			}
			if pending {
				return nil
			}
			count, err := db.NewChunkRepository(database).Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "chunks\t%d\n", count)
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:           "verify",
	Short:         "Ensure database is on the latest schema version",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			return dbmigrate.EnsureCurrent(cmd.Context(), database.Bun(), migrationsDir(), false)
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the database accepts connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return runWithDatabase(func(database *db.Database) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			start := time.Now()
			if err := database.Ping(ctx); err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database connection successful (%s)\n", time.Since(start).Round(time.Millisecond))
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <file_key>...",
	Short: "Delete the stored chunks of files removed at their source",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			repo := db.NewChunkRepository(database)
			for _, key := range args {
				n, err := repo.DeleteFile(cmd.Context(), key)
				if err != nil {
					return fmt.Errorf("delete %s: %w", key, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d chunks deleted\n", key, n)
			}
			return nil
		})
	},
}

var recreateCmd = &cobra.Command{
	Use:   "recreate",
	Short: "Drop the chunks table and migration history, then migrate up (destructive)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.AllowDestructive() {
			return errors.New("DB_ALLOW_DESTRUCTIVE=yes must be set for recreate")
		}
		return runWithDatabase(func(database *db.Database) error {
			return recreate(cmd.Context(), database)
		})
	},
}

func main() {
	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides POSTGRES_URL)")
	rootCmd.PersistentFlags().String("migrations", "", "Migrations directory (default: embedded migrations)")
	rootCmd.PersistentFlags().Bool(config.KeyDBDebug, false, "Log every query")
	config.Init(rootCmd)
	_ = viper.BindPFlag(config.KeyPostgresURL, rootCmd.PersistentFlags().Lookup("dsn"))
	_ = viper.BindPFlag(config.KeyMigrationsDir, rootCmd.PersistentFlags().Lookup("migrations"))

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(initCmd, migrateCmd, statusCmd, verifyCmd, pingCmd, deleteCmd, recreateCmd)
	_ = migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back (0 = all)")
	_ = migrateDownCmd.Flags().String("to", "", "Roll back to the specified migration (inclusive)")
	_ = pingCmd.Flags().Duration("timeout", 5*time.Second, "Connection timeout")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dbctl: %v\n", err)
		os.Exit(1)
	}
}

func runWithDatabase(fn func(*db.Database) error) error {
	dsn := config.PostgresURL()
	if dsn == "" {
		return errors.New("postgres DSN must be provided via flag or environment")
	}
	database, err := db.NewDatabase(db.Config{DSN: dsn, Debug: config.DBDebug()})
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database)
}

// recreate drops the chunks table and the migration history, then applies
// every migration again.
func recreate(ctx context.Context, database *db.Database) error {
	manager, err := newManager(database)
	if err != nil {
		return err
	}
	if err := dropChunks(ctx, database.Bun()); err != nil {
		return err
	}
	if err := manager.Reset(ctx); err != nil {
		return fmt.Errorf("reset migrations: %w", err)
	}
	return manager.MigrateUp(ctx)
}

func dropChunks(ctx context.Context, bunDB *bun.DB) error {
	_, err := bunDB.NewDropTable().Model((*db.Chunk)(nil)).IfExists().Cascade().Exec(ctx)
	return err
}

func newManager(database *db.Database) (*dbmigrate.Manager, error) {
	return dbmigrate.Open(database.Bun(), migrationsDir())
}

func migrationsDir() string {
	return viper.GetString(config.KeyMigrationsDir)
}
