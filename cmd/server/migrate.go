package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pgstore "vouch/internal/ledger/store/postgres"
	"vouch/internal/platform/config"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/postgres"
	auditpg "vouch/pkg/platform/audit/store/postgres"
)

func newMigrateCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres ledger and audit tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg)
		},
	}
}

func migrate(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.Logging)
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("postgres dsn is required to migrate")
	}
	defer db.Close()

	store, err := pgstore.New(db, pgstore.WithTable(cfg.Postgres.Table))
	if err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := auditpg.New(db).Migrate(ctx); err != nil {
		return err
	}
	log.InfoContext(ctx, "migrations applied", "table", cfg.Postgres.Table)
	return nil
}
