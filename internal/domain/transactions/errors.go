package transactions

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSeminarNotFound     = errors.New("seminar not found")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidDate         = errors.New("date is required")
	ErrDateOutOfRange      = errors.New("date must be between 1970-01-01 and 2099-12-31")
	ErrCategoryTooLong     = errors.New("category is too long")
	ErrDescriptionTooLong  = errors.New("description is too long")
)
