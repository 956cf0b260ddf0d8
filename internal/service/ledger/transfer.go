package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/danielokoh/accounts-transfer-service/internal/domain"
	"github.com/danielokoh/accounts-transfer-service/internal/logging"
	"github.com/danielokoh/accounts-transfer-service/internal/repository"
)

// Transfer moves amount from one account to another. Both balances change
// while both account locks are held, so no reader that goes through the
// store ever observes money in flight. Locks are acquired in canonical id
// order regardless of transfer direction; that single rule is what makes
// opposing concurrent transfers deadlock-free.
func (s *Service) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("Transfer: %w", domain.ErrInvalidAmount)
	}
	if fromID == toID {
		return fmt.Errorf("Transfer: %w", domain.ErrSelfTransfer)
	}

	// Fail fast before any lock is taken: a missing endpoint must leave
	// every balance untouched.
	if !s.store.Exists(ctx, fromID) {
		return fmt.Errorf("Transfer: source: %w", domain.ErrAccountNotFound)
	}
	if !s.store.Exists(ctx, toID) {
		return fmt.Errorf("Transfer: destination: %w", domain.ErrAccountNotFound)
	}

	locked, err := lockAccountsInOrder(ctx, s.store, fromID, toID)
	if err != nil {
		return fmt.Errorf("Transfer: %w", err)
	}

	source, dest := locked[fromID], locked[toID]

	// Re-check funds now that the source lock is held; the fail-fast read
	// above was unlocked and may be stale.
	newSourceBalance := source.Balance().Sub(amount)
	if newSourceBalance.IsNegative() {
		releaseAll(locked)
		return fmt.Errorf("Transfer: %w", domain.ErrInsufficientBalance)
	}

	source.SetBalance(newSourceBalance)
	dest.SetBalance(dest.Balance().Add(amount))

	sourceSnap, destSnap := source.Snapshot(), dest.Snapshot()
	releaseAll(locked)

	logging.FromContext(ctx).Info("transfer completed",
		"from_account", fromID,
		"to_account", toID,
		"amount", amount,
	)

	// Notifications are queued only after both locks are released; they
	// carry snapshots, so the dispatcher never touches a live record and
	// no lock is ever held across notifier code.
	s.notify.Enqueue(*sourceSnap, fmt.Sprintf("transferred %s to account %s", amount, toID))
	s.notify.Enqueue(*destSnap, fmt.Sprintf("received %s from account %s", amount, fromID))

	return nil
}

// lockAccountsInOrder acquires every requested account lock in lexicographic
// id order. Acquiring in request order instead would let two opposing
// transfers hold one lock each and wait on the other forever.
func lockAccountsInOrder(ctx context.Context, store accountStore, ids ...string) (map[string]*repository.LockedAccount, error) {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	locked := make(map[string]*repository.LockedAccount, len(ids))
	for _, id := range sorted {
		la, err := store.GetForUpdate(ctx, id)
		if err != nil {
			releaseAll(locked)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("lockAccountsInOrder: %w", domain.ErrAccountNotFound)
			}
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		locked[id] = la
	}
	return locked, nil
}

func releaseAll(locked map[string]*repository.LockedAccount) {
	for _, la := range locked {
		la.Release()
	}
}
