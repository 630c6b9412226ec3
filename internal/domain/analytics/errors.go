package analytics

import "errors"

var (
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrInvalidRange       = errors.New("invalid date range")
	ErrInvalidAmount      = errors.New("invalid transaction amount")
	ErrInvalidType        = errors.New("invalid transaction type")
)
