// Package inmemory keeps all data in process memory. It backs the "memory"
// data backend and the HTTP tests.
package inmemory

import (
	"sync"

	seminarsdomain "opsboard/internal/domain/seminars"
	transactionsdomain "opsboard/internal/domain/transactions"
	unitsdomain "opsboard/internal/domain/units"
	userdomain "opsboard/internal/domain/user"
)

// Store is shared by the repositories it hands out. Transaction holds the
// write lock for the whole callback; writes are not rolled back on error, so
// services perform their writes last.
type Store struct {
	mu           sync.RWMutex
	units        map[string]unitsdomain.Unit
	members      map[memberKey]unitsdomain.UnitMember
	seminars     map[string]seminarsdomain.Seminar
	transactions map[string]transactionsdomain.Transaction
	profiles     map[string]userdomain.Profile
}

type memberKey struct {
	unitID string
	userID string
}

func NewStore() *Store {
	return &Store{
		units:        make(map[string]unitsdomain.Unit),
		members:      make(map[memberKey]unitsdomain.UnitMember),
		seminars:     make(map[string]seminarsdomain.Seminar),
		transactions: make(map[string]transactionsdomain.Transaction),
		profiles:     make(map[string]userdomain.Profile),
	}
}

func (s *Store) Units() *UnitsRepository {
	return &UnitsRepository{lockable: lockable{store: s}}
}

func (s *Store) Seminars() *SeminarsRepository {
	return &SeminarsRepository{lockable: lockable{store: s}}
}

func (s *Store) Transactions() *TransactionsRepository {
	return &TransactionsRepository{lockable: lockable{store: s}}
}

func (s *Store) Analytics() *AnalyticsRepository {
	return &AnalyticsRepository{lockable: lockable{store: s}}
}

func (s *Store) Profiles() *ProfilesRepository {
	return &ProfilesRepository{lockable: lockable{store: s}}
}

// lockable skips locking when the caller already holds the write lock inside
// Transaction.
type lockable struct {
	store  *Store
	locked bool
}

func (l lockable) rlock() func() {
	if l.locked {
		return func() {}
	}
	l.store.mu.RLock()
	return l.store.mu.RUnlock
}

func (l lockable) lock() func() {
	if l.locked {
		return func() {}
	}
	l.store.mu.Lock()
	return l.store.mu.Unlock
}

func (l lockable) inTx(fn func(lockable) error) error {
	if l.locked {
		return fn(l)
	}
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return fn(lockable{store: l.store, locked: true})
}

func cloneMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}
	cloned := make(map[string]string, len(metadata))
	for key, value := range metadata {
		cloned[key] = value
	}
	return cloned
}
