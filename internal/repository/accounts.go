package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielokoh/accounts-transfer-service/internal/domain"
)

// record is the authoritative copy of one account. Its mutex guards every
// read and write of balance; the mutex lives here rather than on
// domain.Account so lock discipline stays inside the store and the ledger
// service, never in callers' hands.
type record struct {
	mu        sync.Mutex
	id        string
	balance   decimal.Decimal
	createdAt time.Time
}

func (r *record) snapshot() *domain.Account {
	return &domain.Account{
		ID:        r.id,
		Balance:   r.balance,
		CreatedAt: r.createdAt,
	}
}

// AccountStore is a concurrent in-memory map of account id to record.
// The store mutex covers only structural changes (insert, clear, lookup);
// balances are guarded per record.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*record
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*record)}
}

// Create inserts a new account. Check-and-insert happens under a single
// critical section so two concurrent creates of the same id cannot both
// succeed.
func (s *AccountStore) Create(ctx context.Context, id string, initialBalance decimal.Decimal) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; ok {
		return nil, fmt.Errorf("Create: %w", domain.ErrDuplicateAccount)
	}

	rec := &record{
		id:        id,
		balance:   initialBalance,
		createdAt: time.Now().UTC(),
	}
	s.accounts[id] = rec
	return rec.snapshot(), nil
}

// Get returns a consistent snapshot of the account. The record mutex is
// taken for the read so a snapshot never observes a half-applied mutation.
func (s *AccountStore) Get(ctx context.Context, id string) (*domain.Account, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("Get: %w", domain.ErrNotFound)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.snapshot(), nil
}

// Exists reports whether the account is present without touching its balance.
func (s *AccountStore) Exists(ctx context.Context, id string) bool {
	_, ok := s.lookup(id)
	return ok
}

// GetForUpdate blocks until the account's mutex is held and returns a locked
// handle. The caller must Release it; all balance mutation goes through this
// path, mirroring a SELECT ... FOR UPDATE row lock.
func (s *AccountStore) GetForUpdate(ctx context.Context, id string) (*LockedAccount, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
	}

	rec.mu.Lock()
	return &LockedAccount{rec: rec}, nil
}

// Clear empties the store. Test isolation only, not a production operation.
func (s *AccountStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*record)
}

func (s *AccountStore) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func (s *AccountStore) lookup(id string) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	return rec, ok
}

// LockedAccount is an exclusively held view of one account. It stays valid
// until Release; using it afterwards is a caller bug.
type LockedAccount struct {
	rec *record
}

func (l *LockedAccount) ID() string { return l.rec.id }

func (l *LockedAccount) Balance() decimal.Decimal { return l.rec.balance }

func (l *LockedAccount) SetBalance(b decimal.Decimal) { l.rec.balance = b }

func (l *LockedAccount) Snapshot() *domain.Account { return l.rec.snapshot() }

func (l *LockedAccount) Release() { l.rec.mu.Unlock() }
