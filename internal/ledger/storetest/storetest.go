// Package storetest is the behavioural contract every ledger.Store backend
// must satisfy. Backend packages run it from their own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/suite"

	"vouch/internal/ledger"
	"vouch/pkg/platform/sentinel"
)

// Suite exercises a ledger.Store. NewStore must return an empty store.
type Suite struct {
	suite.Suite
	NewStore func() ledger.Store
	store    ledger.Store
}

func (s *Suite) SetupTest() {
	s.store = s.NewStore()
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.NoError(s.store.Close())
	}
}

type counter struct {
	Value uint64
}

var errAbort = errors.New("abort")

func (s *Suite) TestCommitAndRead() {
	ctx := context.Background()
	addr := ledger.Derive("counter", []byte("a"))

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		return ledger.Insert(ctx, tx, addr, &counter{Value: 1})
	})
	s.Require().NoError(err)

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		got, err := ledger.Load[counter](ctx, tx, addr)
		if err != nil {
			return err
		}
		s.Equal(uint64(1), got.Value)
		return nil
	})
	s.Require().NoError(err)
}

func (s *Suite) TestMissingRecord() {
	ctx := context.Background()
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		_, err := tx.Get(ctx, ledger.Derive("counter", []byte("missing")))
		return err
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *Suite) TestReadYourWrites() {
	ctx := context.Background()
	addr := ledger.Derive("counter", []byte("ryw"))
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		if err := ledger.Save(ctx, tx, addr, &counter{Value: 5}); err != nil {
			return err
		}
		got, err := ledger.Load[counter](ctx, tx, addr)
		if err != nil {
			return err
		}
		s.Equal(uint64(5), got.Value)
		return nil
	})
	s.Require().NoError(err)
}

func (s *Suite) TestCreateConflict() {
	ctx := context.Background()
	addr := ledger.Derive("counter", []byte("dup"))
	create := func(ctx context.Context, tx ledger.Tx) error {
		return ledger.Insert(ctx, tx, addr, &counter{Value: 1})
	}
	s.Require().NoError(s.store.RunInTx(ctx, create))
	s.ErrorIs(s.store.RunInTx(ctx, create), sentinel.ErrConflict)
}

func (s *Suite) TestAbortDiscardsAllWrites() {
	ctx := context.Background()
	first := ledger.Derive("counter", []byte("first"))
	second := ledger.Derive("counter", []byte("second"))

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		if err := ledger.Save(ctx, tx, first, &counter{Value: 1}); err != nil {
			return err
		}
		if err := ledger.Save(ctx, tx, second, &counter{Value: 2}); err != nil {
			return err
		}
		return errAbort
	})
	s.Require().ErrorIs(err, errAbort)

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		for _, addr := range []ledger.Address{first, second} {
			ok, err := ledger.Exists(ctx, tx, addr)
			if err != nil {
				return err
			}
			s.False(ok, "aborted write to %s must not be visible", addr)
		}
		return nil
	})
	s.Require().NoError(err)
}

func (s *Suite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	addr := ledger.Derive("counter", []byte("cancelled"))
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		return ledger.Save(ctx, tx, addr, &counter{Value: 1})
	})
	s.ErrorIs(err, context.Canceled)
}

func (s *Suite) TestNestedRunJoinsOuterTx() {
	ctx := context.Background()
	addr := ledger.Derive("counter", []byte("nested"))
	err := ledger.Run(ctx, s.store, func(ctx context.Context, outer ledger.Tx) error {
		if err := ledger.Save(ctx, outer, addr, &counter{Value: 1}); err != nil {
			return err
		}
		inner := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
			got, err := ledger.Load[counter](ctx, tx, addr)
			if err != nil {
				return err
			}
			got.Value++
			return ledger.Save(ctx, tx, addr, got)
		})
		if inner != nil {
			return inner
		}
		return errAbort
	})
	s.Require().ErrorIs(err, errAbort)

	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		ok, err := ledger.Exists(ctx, tx, addr)
		s.False(ok)
		return err
	})
	s.Require().NoError(err)
}

// TestConcurrentIncrements checks that racing read-modify-write transactions
// serialize: no increment is lost.
func (s *Suite) TestConcurrentIncrements() {
	ctx := context.Background()
	addr := ledger.Derive("counter", []byte("race"))
	s.Require().NoError(s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		return ledger.Insert(ctx, tx, addr, &counter{})
	}))

	const workers = 8
	var wg sync.WaitGroup
	var failures atomic.Int32
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
				c, err := ledger.Load[counter](ctx, tx, addr)
				if err != nil {
					return err
				}
				c.Value++
				return ledger.Save(ctx, tx, addr, c)
			})
			if err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	var final uint64
	s.Require().NoError(s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		c, err := ledger.Load[counter](ctx, tx, addr)
		if err != nil {
			return err
		}
		final = c.Value
		return nil
	}))
	s.Equal(uint64(workers)-uint64(failures.Load()), final)
}

// TestConcurrentIncrementsOnMissingKey races read-modify-write transactions
// on a record none of them can see yet. Each treats missing as zero, so a
// backend that lets two of them create it would lose an increment.
func (s *Suite) TestConcurrentIncrementsOnMissingKey() {
	ctx := context.Background()
	addr := ledger.Derive("counter", []byte("fresh"))

	const workers = 8
	var wg sync.WaitGroup
	var failures atomic.Int32
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
				c, err := ledger.Load[counter](ctx, tx, addr)
				switch {
				case errors.Is(err, sentinel.ErrNotFound):
					c = &counter{}
				case err != nil:
					return err
				}
				c.Value++
				return ledger.Save(ctx, tx, addr, c)
			})
			if err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	var final uint64
	s.Require().NoError(s.store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		c, err := ledger.Load[counter](ctx, tx, addr)
		if err != nil {
			return err
		}
		final = c.Value
		return nil
	}))
	s.Positive(final)
	s.Equal(uint64(workers)-uint64(failures.Load()), final)
}
