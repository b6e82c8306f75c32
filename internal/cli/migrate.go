package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	pgmigrations "daily-quiz-service/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the quizzes and streaks tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(*configPath, os.Stderr)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runMigrationsWithConfig(cmd.Context(), rt)
		},
	}
}

func runMigrationsWithConfig(ctx context.Context, rt *runtime) error {
	if rt.cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(rt.cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		rt.log.Info("no new migrations")
		return nil
	}
	rt.log.WithField("group", group.String()).Info("migrations applied")
	return nil
}
