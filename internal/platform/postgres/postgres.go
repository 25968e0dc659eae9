package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"vouch/internal/platform/config"
)

// Open connects to Postgres through the pgx database/sql driver and verifies
// connectivity. Returns nil if no DSN is configured.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLife)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}
