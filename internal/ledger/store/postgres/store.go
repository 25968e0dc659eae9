// Package postgres stores ledger records in a single Postgres table keyed by
// address. Transactions run at SERIALIZABLE so a record read as missing is
// covered too: two transactions that both create it cannot both commit. Reads
// also lock existing rows (SELECT ... FOR UPDATE) so contended updates queue
// instead of aborting. Serialization failures re-run the transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"vouch/internal/ledger"
	"vouch/pkg/platform/sentinel"
)

const (
	DefaultTable = "ledger_records"

	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var txOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}

// Store is a ledger.Store backed by Postgres.
type Store struct {
	db          *sql.DB
	table       string
	maxAttempts int
}

type Option func(*Store)

// WithTable overrides the record table name.
func WithTable(name string) Option {
	return func(s *Store) { s.table = name }
}

func WithMaxAttempts(n int) Option {
	return func(s *Store) { s.maxAttempts = n }
}

// New creates a Postgres-backed ledger store. The caller owns db.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres db is required")
	}
	s := &Store{db: db, table: DefaultTable, maxAttempts: ledger.DefaultMaxAttempts}
	for _, opt := range opts {
		opt(s)
	}
	if s.table == "" {
		return nil, fmt.Errorf("record table name is required")
	}
	return s, nil
}

func (s *Store) quotedTable() string {
	return pq.QuoteIdentifier(s.table)
}

// Migrate creates the record table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	table := s.quotedTable()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			address TEXT PRIMARY KEY,
			namespace TEXT NOT NULL,
			payload BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (namespace)`,
			pq.QuoteIdentifier(s.table+"_namespace_idx"), table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ledger table: %w", err)
		}
	}
	return nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return ledger.Retry(ctx, s.maxAttempts, isRace, func() error {
		sqlTx, err := s.db.BeginTx(ctx, txOptions)
		if err != nil {
			return fmt.Errorf("begin ledger tx: %w", err)
		}
		defer func() { _ = sqlTx.Rollback() }()

		if err := fn(ctx, &pgTx{tx: sqlTx, table: s.quotedTable()}); err != nil {
			return err
		}
		if err := sqlTx.Commit(); err != nil {
			return fmt.Errorf("commit ledger tx: %w", err)
		}
		return nil
	})
}

func isRace(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// Close is a no-op; the *sql.DB is owned by the caller.
func (s *Store) Close() error { return nil }

type pgTx struct {
	tx    *sql.Tx
	table string
}

func (t *pgTx) Get(ctx context.Context, addr ledger.Address) ([]byte, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE address = $1 FOR UPDATE`, t.table)
	var payload []byte
	err := t.tx.QueryRowContext(ctx, query, string(addr)).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", addr.Namespace(), err)
	}
	return payload, nil
}

func (t *pgTx) Put(ctx context.Context, addr ledger.Address, value []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (address, namespace, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (address) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, t.table)
	if _, err := t.tx.ExecContext(ctx, query, string(addr), addr.Namespace(), value); err != nil {
		return fmt.Errorf("put %s: %w", addr.Namespace(), err)
	}
	return nil
}

func (t *pgTx) Create(ctx context.Context, addr ledger.Address, value []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (address, namespace, payload, updated_at)
		VALUES ($1, $2, $3, now())
	`, t.table)
	if _, err := t.tx.ExecContext(ctx, query, string(addr), addr.Namespace(), value); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create %s: %w", addr.Namespace(), err)
	}
	return nil
}
