package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"vouch/internal/ledger"
	badgerstore "vouch/internal/ledger/store/badger"
	memorystore "vouch/internal/ledger/store/memory"
	pgstore "vouch/internal/ledger/store/postgres"
	redisstore "vouch/internal/ledger/store/redis"
	"vouch/internal/platform/config"
	"vouch/internal/platform/kafka"
	"vouch/internal/platform/postgres"
	"vouch/internal/platform/redis"
	audit "vouch/pkg/platform/audit"
	kafkasink "vouch/pkg/platform/audit/publishers/kafka"
	auditmemory "vouch/pkg/platform/audit/store/memory"
	auditpg "vouch/pkg/platform/audit/store/postgres"
	"vouch/pkg/platform/audit/worker"
)

// dependencies holds the infrastructure handles shared by the services.
type dependencies struct {
	store      ledger.Store
	events     audit.Store
	dispatcher *worker.Dispatcher

	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

// openDependencies connects the configured ledger backend and the audit
// sinks. Events are always kept in memory for the events endpoint; Postgres
// deployments also persist them, and Kafka receives a copy when enabled.
func openDependencies(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *dependencies, err error) {
	deps := &dependencies{}
	defer func() {
		if err != nil {
			deps.Close(log)
		}
	}()

	if deps.db, err = postgres.Open(ctx, cfg.Postgres); err != nil {
		return nil, err
	}
	if deps.store, err = openLedger(ctx, cfg, deps, log); err != nil {
		return nil, err
	}

	recent := auditmemory.NewInMemoryStore()
	deps.events = recent
	sinks := []audit.Sink{recent}
	if deps.db != nil {
		pgEvents := auditpg.New(deps.db)
		if err := pgEvents.Migrate(ctx); err != nil {
			return nil, err
		}
		deps.events = pgEvents
		sinks = append(sinks, pgEvents)
	}
	if cfg.Kafka.Enabled {
		if deps.kafka, err = kafka.New(cfg.Kafka); err != nil {
			return nil, err
		}
		if err := kafka.EnsureTopic(ctx, deps.kafka, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return nil, err
		}
		sink, err := kafkasink.New(deps.kafka, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	deps.dispatcher = worker.NewDispatcher(sinks, worker.WithLogger(log))
	return deps, nil
}

func openLedger(ctx context.Context, cfg *config.Config, deps *dependencies, log *slog.Logger) (ledger.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return memorystore.New(), nil
	case config.StorageBadger:
		store, err := badgerstore.Open(
			badgerstore.WithDataDir(cfg.Storage.BadgerDir),
			badgerstore.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		deps.redis = client
		store, err := redisstore.New(client.Client)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoragePostgres:
		if deps.db == nil {
			return nil, fmt.Errorf("postgres dsn is required for the postgres storage backend")
		}
		store, err := pgstore.New(deps.db, pgstore.WithTable(cfg.Postgres.Table))
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Close releases every handle that was opened.
func (d *dependencies) Close(log *slog.Logger) {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			log.Warn("failed to close ledger store", "error", err)
		}
	}
	if d.kafka != nil {
		d.kafka.Close()
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Warn("failed to close postgres", "error", err)
		}
	}
}
