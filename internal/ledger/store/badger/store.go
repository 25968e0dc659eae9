// Package badger stores ledger records in an embedded Badger database.
// Transactions map onto Badger's optimistic transactions; a commit that loses
// a race re-runs the whole unit of work.
package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"vouch/internal/ledger"
	"vouch/pkg/platform/sentinel"
)

const gcInterval = 5 * time.Minute

// Store is a ledger.Store backed by Badger.
type Store struct {
	db          *badger.DB
	logger      *slog.Logger
	dataDir     string
	maxAttempts int
	gcEnabled   bool
	gcStop      chan struct{}
	gcWg        sync.WaitGroup
}

type Option func(*Store)

// WithDataDir persists records under dir. Without it the database is in-memory.
func WithDataDir(dir string) Option {
	return func(s *Store) { s.dataDir = dir }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMaxAttempts bounds retries of transactions that lose a commit race.
func WithMaxAttempts(n int) Option {
	return func(s *Store) { s.maxAttempts = n }
}

// WithGC toggles periodic value log garbage collection for disk-backed stores.
func WithGC(enabled bool) Option {
	return func(s *Store) { s.gcEnabled = enabled }
}

// Open opens (or creates) the database.
func Open(opts ...Option) (*Store, error) {
	s := &Store{
		maxAttempts: ledger.DefaultMaxAttempts,
		gcEnabled:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var badgerOpts badger.Options
	if s.dataDir == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
		s.gcEnabled = false
	} else {
		if _, err := os.Stat(s.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(s.dataDir)
	}
	badgerOpts = badgerOpts.
		WithLogger(newBadgerLogger(s.logger)).
		// INFO is noisy during compactions
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	s.db = db

	if s.gcEnabled {
		s.gcStop = make(chan struct{})
		s.gcWg.Add(1)
		go s.runGC()
	}
	return s, nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return ledger.Retry(ctx, s.maxAttempts, isRace, func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			if err := fn(ctx, &badgerTx{txn: txn}); err != nil {
				return err
			}
			// Update commits when this returns nil.
			return ctx.Err()
		})
	})
}

func isRace(err error) bool {
	return errors.Is(err, badger.ErrConflict)
}

func (s *Store) Close() error {
	if s.gcStop != nil {
		close(s.gcStop)
		s.gcWg.Wait()
		s.gcStop = nil
	}
	return s.db.Close()
}

func (s *Store) runGC() {
	defer s.gcWg.Done()
	t := time.NewTicker(gcInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			for {
				err := s.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					s.logger.Warn("ledger value log GC failed", "error", err, "component", "ledger")
				}
				break
			}
		case <-s.gcStop:
			return
		}
	}
}

type badgerTx struct {
	txn *badger.Txn
}

func (t *badgerTx) Get(_ context.Context, addr ledger.Address) ([]byte, error) {
	item, err := t.txn.Get([]byte(addr))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", addr.Namespace(), err)
	}
	return item.ValueCopy(nil)
}

func (t *badgerTx) Put(_ context.Context, addr ledger.Address, value []byte) error {
	if err := t.txn.Set([]byte(addr), value); err != nil {
		return fmt.Errorf("set %s: %w", addr.Namespace(), err)
	}
	return nil
}

func (t *badgerTx) Create(ctx context.Context, addr ledger.Address, value []byte) error {
	_, err := t.Get(ctx, addr)
	if err == nil {
		return sentinel.ErrConflict
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return t.Put(ctx, addr, value)
}

// badgerLogger routes Badger's printf-style logging into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{logger: logger}
}

func (l *badgerLogger) Errorf(msg string, args ...any) {
	l.logger.Error(fmt.Sprintf(msg, args...), "component", "ledger")
}

func (l *badgerLogger) Warningf(msg string, args ...any) {
	l.logger.Warn(fmt.Sprintf(msg, args...), "component", "ledger")
}

func (l *badgerLogger) Infof(msg string, args ...any) {
	l.logger.Info(fmt.Sprintf(msg, args...), "component", "ledger")
}

func (l *badgerLogger) Debugf(msg string, args ...any) {
	l.logger.Debug(fmt.Sprintf(msg, args...), "component", "ledger")
}
