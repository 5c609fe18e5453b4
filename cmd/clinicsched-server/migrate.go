package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"clinicsched/internal/store/postgres"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationGroup(cmd.Context(), "migrations applied", postgres.MigrateUp)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationGroup(cmd.Context(), "migrations rolled back", postgres.MigrateDown)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeDatabase(log, db)

			ms, err := postgres.MigrationStatus(ctx, db)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-20s %-30s %-10s %s\n", "VERSION", "NAME", "STATUS", "GROUP")
			for _, m := range ms {
				state := "pending"
				if m.IsApplied() {
					state = "applied"
				}
				fmt.Fprintf(out, "%-20s %-30s %-10s %d\n", m.Name, m.Comment, state, m.GroupID)
			}
			return nil
		},
	})

	return cmd
}

func withMigrationGroup(ctx context.Context, msg string, run func(context.Context, *bun.DB) (*migrate.MigrationGroup, error)) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDatabase(log, db)

	group, err := run(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no migrations to run")
		return nil
	}
	log.Info(msg, slog.Int64("group_id", group.ID), slog.String("migrations", group.Migrations.String()))
	return nil
}
