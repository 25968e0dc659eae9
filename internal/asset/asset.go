// Package asset is the token ledger campaigns pay out of. Balances are
// records in the shared ledger so transfers commit atomically with the
// bookkeeping of the operation that moves them.
package asset

import (
	"context"
	"errors"
	"log/slog"

	"vouch/internal/ledger"
	"vouch/internal/platform/tracing"
	"vouch/internal/protocol/models"
	"vouch/internal/protocol/records"
	"vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/audit"
	"vouch/pkg/platform/sentinel"
)

const NamespaceTokenAccount = "token_account"

var ErrInsufficientFunds = dErrors.NewReason(dErrors.CodeInsufficientFunds, "insufficient_funds", "insufficient funds")

// Account is one owner's balance of one asset.
type Account struct {
	Asset  domain.PublicKey `json:"asset"`
	Owner  domain.PublicKey `json:"owner"`
	Amount uint64           `json:"amount"`
}

func AccountAddress(asset, owner domain.PublicKey) ledger.Address {
	return ledger.Derive(NamespaceTokenAccount, asset.Bytes(), owner.Bytes())
}

// Load returns the account, or an empty one when the owner never held the asset.
func Load(ctx context.Context, tx ledger.Tx, asset, owner domain.PublicKey) (*Account, error) {
	acct, err := ledger.Load[Account](ctx, tx, AccountAddress(asset, owner))
	if errors.Is(err, sentinel.ErrNotFound) {
		return &Account{Asset: asset, Owner: owner}, nil
	}
	if err != nil {
		return nil, records.StoreError(err, "failed to load token account")
	}
	return acct, nil
}

// Credit adds amount to owner's balance.
func Credit(ctx context.Context, tx ledger.Tx, asset, owner domain.PublicKey, amount uint64) (*Account, error) {
	acct, err := Load(ctx, tx, asset, owner)
	if err != nil {
		return nil, err
	}
	if acct.Amount, err = models.AddU64(acct.Amount, amount); err != nil {
		return nil, err
	}
	return acct, records.Save(ctx, tx, AccountAddress(asset, owner), acct)
}

// Debit removes amount from owner's balance, failing with
// ErrInsufficientFunds rather than going negative.
func Debit(ctx context.Context, tx ledger.Tx, asset, owner domain.PublicKey, amount uint64) (*Account, error) {
	acct, err := Load(ctx, tx, asset, owner)
	if err != nil {
		return nil, err
	}
	if acct.Amount < amount {
		return nil, ErrInsufficientFunds
	}
	acct.Amount -= amount
	return acct, records.Save(ctx, tx, AccountAddress(asset, owner), acct)
}

// Transfer moves amount between two owners inside tx.
func Transfer(ctx context.Context, tx ledger.Tx, asset, from, to domain.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if _, err := Debit(ctx, tx, asset, from, amount); err != nil {
		return err
	}
	_, err := Credit(ctx, tx, asset, to, amount)
	return err
}

// Service exposes balances and deposits outside of other operations.
type Service struct {
	store     ledger.Store
	publisher audit.Publisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func New(store ledger.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Balance returns owner's holding of asset.
func (s *Service) Balance(ctx context.Context, asset, owner domain.PublicKey) (*Account, error) {
	var acct *Account
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		acct, err = Load(ctx, tx, asset, owner)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to load balance")
	}
	return acct, nil
}

// Deposit credits owner with amount of asset arriving from outside the ledger.
func (s *Service) Deposit(ctx context.Context, asset, owner domain.PublicKey, amount uint64) (acct *Account, err error) {
	ctx, span := tracing.Start(ctx, "asset.deposit")
	defer func() { tracing.End(span, err) }()

	if amount == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "deposit amount must be positive")
	}
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		acct, err = Credit(ctx, tx, asset, owner, amount)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to deposit")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventAssetDeposited,
		"subject", owner.String(),
		"asset", asset.String(),
		"amount", amount,
		"balance", acct.Amount,
	)
	return acct, nil
}
