package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielokoh/accounts-transfer-service/internal/domain"
	"github.com/danielokoh/accounts-transfer-service/internal/repository"
)

type recordedNotification struct {
	AccountID string
	Balance   decimal.Decimal
	Message   string
}

type notifyRecorder struct {
	mu     sync.Mutex
	events []recordedNotification
}

func (r *notifyRecorder) Enqueue(account domain.Account, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedNotification{
		AccountID: account.ID,
		Balance:   account.Balance,
		Message:   message,
	})
}

func (r *notifyRecorder) Events() []recordedNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedNotification, len(r.events))
	copy(out, r.events)
	return out
}

func newTestService(t *testing.T) (*Service, *repository.AccountStore, *notifyRecorder) {
	t.Helper()
	store := repository.NewAccountStore()
	recorder := &notifyRecorder{}
	return New(store, recorder), store, recorder
}

func mustCreate(t *testing.T, svc *Service, id, balance string) {
	t.Helper()
	_, err := svc.CreateAccount(context.Background(), id, decimal.RequireFromString(balance))
	require.NoError(t, err)
}

func balanceOf(t *testing.T, svc *Service, id string) decimal.Decimal {
	t.Helper()
	account, err := svc.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return account.Balance
}

func TestCreateAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, "acc-1", decimal.RequireFromString("250.75"))
	require.NoError(t, err)
	assert.Equal(t, "acc-1", account.ID)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("250.75")))

	_, err = svc.CreateAccount(ctx, "acc-1", decimal.Zero)
	require.ErrorIs(t, err, domain.ErrDuplicateAccount)
}

func TestCreateAccountNegativeBalance(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "x", decimal.NewFromInt(-5))
	require.ErrorIs(t, err, domain.ErrInvalidBalance)
	assert.False(t, store.Exists(ctx, "x"))
}

func TestGetAccountMissing(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetAccount(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeposit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "acc-1", "100")

	tests := []struct {
		name        string
		accountID   string
		amount      string
		wantBalance string
		wantErr     error
	}{
		{name: "simple deposit", accountID: "acc-1", amount: "50.25", wantBalance: "150.25"},
		{name: "zero amount", accountID: "acc-1", amount: "0", wantErr: domain.ErrInvalidAmount},
		{name: "negative amount", accountID: "acc-1", amount: "-1", wantErr: domain.ErrInvalidAmount},
		{name: "missing account", accountID: "ghost", amount: "10", wantErr: domain.ErrAccountNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			newBalance, err := svc.Deposit(ctx, tc.accountID, decimal.RequireFromString(tc.amount))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, newBalance.Equal(decimal.RequireFromString(tc.wantBalance)))
		})
	}
}

func TestWithdraw(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("whole balance can be withdrawn", func(t *testing.T) {
		mustCreate(t, svc, "acc-1", "100")
		newBalance, err := svc.Withdraw(ctx, "acc-1", decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.True(t, newBalance.IsZero())
	})

	t.Run("overdraw leaves balance unchanged", func(t *testing.T) {
		mustCreate(t, svc, "acc-2", "30")
		_, err := svc.Withdraw(ctx, "acc-2", decimal.NewFromInt(31))
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)
		assert.True(t, balanceOf(t, svc, "acc-2").Equal(decimal.NewFromInt(30)))
	})

	t.Run("invalid amount", func(t *testing.T) {
		mustCreate(t, svc, "acc-3", "30")
		_, err := svc.Withdraw(ctx, "acc-3", decimal.Zero)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := svc.Withdraw(ctx, "ghost", decimal.NewFromInt(1))
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestClearAll(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "acc-1", "10")

	svc.ClearAll(ctx)

	assert.Equal(t, 0, store.Len(ctx))
}
