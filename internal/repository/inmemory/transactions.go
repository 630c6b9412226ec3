package inmemory

import (
	"context"
	"sort"
	"time"

	"opsboard/internal/calendar"
	transactionsdomain "opsboard/internal/domain/transactions"
)

const defaultListLimit = 100

type TransactionsRepository struct {
	lockable
}

func (r *TransactionsRepository) Transaction(ctx context.Context, fn func(transactionsdomain.Repository) error) error {
	return r.inTx(func(l lockable) error {
		return fn(&TransactionsRepository{lockable: l})
	})
}

func (r *TransactionsRepository) ListTransactions(ctx context.Context, unitID string, filter transactionsdomain.ListFilter) ([]transactionsdomain.Transaction, int64, error) {
	defer r.rlock()()

	matched := make([]transactionsdomain.Transaction, 0)
	for _, item := range r.store.transactions {
		if item.UnitID != unitID || !matches(item, filter) {
			continue
		}
		item.Metadata = cloneMetadata(item.Metadata)
		matched = append(matched, item)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	start := min(max(filter.Offset, 0), len(matched))
	end := min(start+limit, len(matched))
	return matched[start:end], total, nil
}

func matches(item transactionsdomain.Transaction, filter transactionsdomain.ListFilter) bool {
	day := calendar.Civil(item.Date)
	if filter.From != nil && day.Before(calendar.Civil(*filter.From)) {
		return false
	}
	if filter.To != nil && day.After(calendar.Civil(*filter.To)) {
		return false
	}
	if filter.Type != "" && item.Type != filter.Type {
		return false
	}
	if filter.Category != "" && item.Category != filter.Category {
		return false
	}
	if filter.SeminarID != "" && item.SeminarID() != filter.SeminarID {
		return false
	}
	return true
}

func (r *TransactionsRepository) GetTransactionByID(ctx context.Context, unitID, transactionID string) (*transactionsdomain.Transaction, error) {
	defer r.rlock()()

	item, ok := r.store.transactions[transactionID]
	if !ok || item.UnitID != unitID {
		return nil, transactionsdomain.ErrTransactionNotFound
	}
	item.Metadata = cloneMetadata(item.Metadata)
	return &item, nil
}

func (r *TransactionsRepository) CreateTransaction(ctx context.Context, transaction *transactionsdomain.Transaction) error {
	defer r.lock()()

	now := time.Now().UTC()
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = now
	}
	if transaction.UpdatedAt.IsZero() {
		transaction.UpdatedAt = now
	}
	stored := *transaction
	stored.Metadata = cloneMetadata(transaction.Metadata)
	r.store.transactions[transaction.ID] = stored
	return nil
}

func (r *TransactionsRepository) UpdateTransaction(ctx context.Context, transaction *transactionsdomain.Transaction) error {
	defer r.lock()()

	existing, ok := r.store.transactions[transaction.ID]
	if !ok || existing.UnitID != transaction.UnitID {
		return transactionsdomain.ErrTransactionNotFound
	}
	stored := *transaction
	stored.CreatedAt = existing.CreatedAt
	stored.CreatedBy = existing.CreatedBy
	stored.Metadata = cloneMetadata(transaction.Metadata)
	r.store.transactions[transaction.ID] = stored
	return nil
}

func (r *TransactionsRepository) DeleteTransaction(ctx context.Context, unitID, transactionID string) (bool, error) {
	defer r.lock()()

	item, ok := r.store.transactions[transactionID]
	if !ok || item.UnitID != unitID {
		return false, nil
	}
	delete(r.store.transactions, transactionID)
	return true, nil
}

func (r *TransactionsRepository) SeminarExists(ctx context.Context, unitID, seminarID string) (bool, error) {
	defer r.rlock()()

	seminar, ok := r.store.seminars[seminarID]
	return ok && seminar.UnitID == unitID, nil
}
