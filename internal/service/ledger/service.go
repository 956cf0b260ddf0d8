// Package ledger is the transfer/deposit/withdraw orchestrator. It owns the
// locking discipline: every balance mutation happens under the account's
// exclusive lock handed out by the store, and multi-account operations
// acquire locks in canonical id order.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/danielokoh/accounts-transfer-service/internal/domain"
	"github.com/danielokoh/accounts-transfer-service/internal/logging"
	"github.com/danielokoh/accounts-transfer-service/internal/repository"
)

type accountStore interface {
	Create(ctx context.Context, id string, initialBalance decimal.Decimal) (*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	Exists(ctx context.Context, id string) bool
	GetForUpdate(ctx context.Context, id string) (*repository.LockedAccount, error)
	Clear(ctx context.Context)
}

type notifyQueue interface {
	Enqueue(account domain.Account, message string)
}

type Service struct {
	store  accountStore
	notify notifyQueue
}

func New(store accountStore, notify notifyQueue) *Service {
	return &Service{store: store, notify: notify}
}

// CreateAccount registers a new account with the given opening balance.
func (s *Service) CreateAccount(ctx context.Context, id string, initialBalance decimal.Decimal) (*domain.Account, error) {
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrInvalidBalance)
	}

	account, err := s.store.Create(ctx, id, initialBalance)
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account created",
		"account_id", account.ID,
		"balance", account.Balance,
	)
	return account, nil
}

// GetAccount returns a consistent snapshot of the account.
func (s *Service) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

// Deposit adds amount to the account and returns the new balance.
func (s *Service) Deposit(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("Deposit: %w", domain.ErrInvalidAmount)
	}

	locked, err := s.store.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("Deposit: %w", domain.ErrAccountNotFound)
		}
		return decimal.Zero, fmt.Errorf("Deposit: %w", err)
	}
	defer locked.Release()

	newBalance := locked.Balance().Add(amount)
	locked.SetBalance(newBalance)
	return newBalance, nil
}

// Withdraw subtracts amount from the account and returns the new balance.
// The sufficiency check and the mutation happen under the same held lock.
func (s *Service) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("Withdraw: %w", domain.ErrInvalidAmount)
	}

	locked, err := s.store.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("Withdraw: %w", domain.ErrAccountNotFound)
		}
		return decimal.Zero, fmt.Errorf("Withdraw: %w", err)
	}
	defer locked.Release()

	newBalance := locked.Balance().Sub(amount)
	if newBalance.IsNegative() {
		return decimal.Zero, fmt.Errorf("Withdraw: %w", domain.ErrInsufficientBalance)
	}
	locked.SetBalance(newBalance)
	return newBalance, nil
}

// ClearAll wipes every account. Test isolation only.
func (s *Service) ClearAll(ctx context.Context) {
	s.store.Clear(ctx)
}
