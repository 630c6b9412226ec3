package transactions

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

const (
	maxCategoryLength    = 64
	maxDescriptionLength = 500
)

// Transaction dates must fall inside [MinDate, MaxDate]. The bound keeps
// gap-filled report axes finite.
var (
	MinDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// ChangeHook is called with the unit id after a successful write.
type ChangeHook func(unitID string)

type Service struct {
	repo      Repository
	converter *Converter
	policy    *bluemonday.Policy
	hooks     []ChangeHook
}

func NewService(repo Repository, converter *Converter, hooks ...ChangeHook) *Service {
	if converter == nil {
		converter = NewConverter(nil)
	}
	return &Service{
		repo:      repo,
		converter: converter,
		policy:    bluemonday.StrictPolicy(),
		hooks:     hooks,
	}
}

func (s *Service) List(ctx context.Context, unitID string, filter ListFilter) ([]Transaction, int64, error) {
	items, total, err := s.repo.ListTransactions(ctx, unitID, filter)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []Transaction{}
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, unitID, transactionID string) (*Transaction, error) {
	return s.repo.GetTransactionByID(ctx, unitID, transactionID)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Transaction, error) {
	fields, err := s.normalize(input.Date, input.Type, input.Amount, input.Currency, input.Category, input.Description, input.SeminarID)
	if err != nil {
		return nil, err
	}

	transaction := Transaction{
		ID:        uuid.NewString(),
		UnitID:    input.UnitID,
		CreatedBy: input.UserID,
	}
	fields.apply(&transaction)

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := checkSeminar(ctx, tx, input.UnitID, fields.seminarID); err != nil {
			return err
		}
		return tx.CreateTransaction(ctx, &transaction)
	})
	if err != nil {
		return nil, err
	}

	s.notify(input.UnitID)
	return &transaction, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Transaction, error) {
	fields, err := s.normalize(input.Date, input.Type, input.Amount, input.Currency, input.Category, input.Description, input.SeminarID)
	if err != nil {
		return nil, err
	}

	var updated Transaction
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := checkSeminar(ctx, tx, input.UnitID, fields.seminarID); err != nil {
			return err
		}

		transaction, err := tx.GetTransactionByID(ctx, input.UnitID, input.ID)
		if err != nil {
			return err
		}

		fields.apply(transaction)
		transaction.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateTransaction(ctx, transaction); err != nil {
			return err
		}

		updated = *transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(input.UnitID)
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, unitID, transactionID string) error {
	deleted, err := s.repo.DeleteTransaction(ctx, unitID, transactionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTransactionNotFound
	}
	s.notify(unitID)
	return nil
}

type normalizedFields struct {
	date        time.Time
	kind        Type
	amount      decimal.Decimal
	currency    string
	amountAED   decimal.Decimal
	category    string
	description string
	seminarID   string
}

func (f normalizedFields) apply(t *Transaction) {
	t.Date = f.date
	t.Type = f.kind
	t.Amount = f.amount
	t.Currency = f.currency
	t.AmountAED = f.amountAED
	t.Category = f.category
	t.Description = f.description
	if f.seminarID != "" {
		t.Metadata = map[string]string{MetadataSeminarKey: f.seminarID}
	} else {
		t.Metadata = nil
	}
}

func (s *Service) normalize(date time.Time, kind Type, amount decimal.Decimal, currency, category, description, seminarID string) (normalizedFields, error) {
	if date.IsZero() {
		return normalizedFields{}, ErrInvalidDate
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(MinDate) || date.After(MaxDate) {
		return normalizedFields{}, fmt.Errorf("%w: %s", ErrDateOutOfRange, date.Format("2006-01-02"))
	}

	kind = Type(strings.ToUpper(strings.TrimSpace(string(kind))))
	if kind != TypeIncome && kind != TypeExpense {
		return normalizedFields{}, ErrInvalidType
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return normalizedFields{}, ErrInvalidAmount
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = ReportingCurrency
	}
	if !isCurrencyCode(currency) {
		return normalizedFields{}, ErrInvalidCurrency
	}
	amountAED, err := s.converter.ToAED(amount, currency)
	if err != nil {
		return normalizedFields{}, err
	}
	if !amountAED.IsPositive() {
		return normalizedFields{}, fmt.Errorf("%w: %s %s is below 0.01 %s", ErrInvalidAmount, amount, currency, ReportingCurrency)
	}

	category = s.sanitize(category)
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return normalizedFields{}, ErrCategoryTooLong
	}
	description = s.sanitize(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return normalizedFields{}, ErrDescriptionTooLong
	}

	return normalizedFields{
		date:        date,
		kind:        kind,
		amount:      amount,
		currency:    currency,
		amountAED:   amountAED,
		category:    category,
		description: description,
		seminarID:   strings.TrimSpace(seminarID),
	}, nil
}

// sanitize strips markup. The strict policy also escapes entities, which are
// decoded again so that "Food & drinks" is stored as typed.
func (s *Service) sanitize(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

func (s *Service) notify(unitID string) {
	for _, hook := range s.hooks {
		hook(unitID)
	}
}

func checkSeminar(ctx context.Context, tx Repository, unitID, seminarID string) error {
	if seminarID == "" {
		return nil
	}
	if _, err := uuid.Parse(seminarID); err != nil {
		return ErrSeminarNotFound
	}
	exists, err := tx.SeminarExists(ctx, unitID, seminarID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSeminarNotFound
	}
	return nil
}
