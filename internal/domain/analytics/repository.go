package analytics

import "context"

// Repository provides the unit-scoped inputs of the reports. Amounts returned
// by ListTransactions must already be normalized to AED.
type Repository interface {
	ListTransactions(ctx context.Context, unitID string) ([]Transaction, error)
	ListSeminarNames(ctx context.Context, unitID string) ([]NameRef, error)
}
