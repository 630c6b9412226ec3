package inmemory

import (
	"context"
	"sort"

	analyticsdomain "opsboard/internal/domain/analytics"
)

// AnalyticsRepository projects stored transactions into the engine's shape,
// using the AED-normalized amount.
type AnalyticsRepository struct {
	lockable
}

type ledgerEntry struct {
	tx      analyticsdomain.Transaction
	created int64
}

func (r *AnalyticsRepository) ListTransactions(ctx context.Context, unitID string) ([]analyticsdomain.Transaction, error) {
	defer r.rlock()()

	stored := make([]ledgerEntry, 0)
	for _, item := range r.store.transactions {
		if item.UnitID != unitID {
			continue
		}
		tx := analyticsdomain.Transaction{
			Date:     item.Date,
			Type:     analyticsdomain.TransactionType(item.Type),
			Amount:   item.AmountAED,
			Category: item.Category,
		}
		if seminarID := item.SeminarID(); seminarID != "" {
			tx.Metadata = map[string]string{analyticsdomain.MetadataSeminarKey: seminarID}
		}
		stored = append(stored, ledgerEntry{tx: tx, created: item.CreatedAt.UnixNano()})
	}

	sort.SliceStable(stored, func(i, j int) bool {
		if !stored[i].tx.Date.Equal(stored[j].tx.Date) {
			return stored[i].tx.Date.Before(stored[j].tx.Date)
		}
		return stored[i].created < stored[j].created
	})

	items := make([]analyticsdomain.Transaction, len(stored))
	for i := range stored {
		items[i] = stored[i].tx
	}
	return items, nil
}

func (r *AnalyticsRepository) ListSeminarNames(ctx context.Context, unitID string) ([]analyticsdomain.NameRef, error) {
	defer r.rlock()()

	refs := make([]analyticsdomain.NameRef, 0)
	for _, seminar := range r.store.seminars {
		if seminar.UnitID == unitID {
			refs = append(refs, analyticsdomain.NameRef{ID: seminar.ID, Name: seminar.Name})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}
