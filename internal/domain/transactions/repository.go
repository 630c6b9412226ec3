package transactions

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListTransactions(ctx context.Context, unitID string, filter ListFilter) ([]Transaction, int64, error)
	GetTransactionByID(ctx context.Context, unitID, transactionID string) (*Transaction, error)
	CreateTransaction(ctx context.Context, transaction *Transaction) error
	UpdateTransaction(ctx context.Context, transaction *Transaction) error
	DeleteTransaction(ctx context.Context, unitID, transactionID string) (bool, error)
	SeminarExists(ctx context.Context, unitID, seminarID string) (bool, error)
}
