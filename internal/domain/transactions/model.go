package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

const MetadataSeminarKey = "seminar_id"

// Transaction is a ledger entry of a unit. Amount is in Currency as entered;
// AmountAED is the same value converted to the reporting currency.
type Transaction struct {
	ID          string            `gorm:"type:uuid;primaryKey"`
	UnitID      string            `gorm:"type:uuid;index;not null"`
	CreatedBy   string            `gorm:"not null"`
	Date        time.Time         `gorm:"type:date;not null"`
	Type        Type              `gorm:"type:varchar(16);not null"`
	Amount      decimal.Decimal   `gorm:"type:numeric(14,2);not null"`
	Currency    string            `gorm:"size:3;not null"`
	AmountAED   decimal.Decimal   `gorm:"column:amount_aed;type:numeric(14,2);not null"`
	Category    string            `gorm:"not null;default:''"`
	Description string            `gorm:"not null;default:''"`
	Metadata    map[string]string `gorm:"serializer:json;type:jsonb"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
}

func (t Transaction) SeminarID() string {
	if t.Metadata == nil {
		return ""
	}
	return t.Metadata[MetadataSeminarKey]
}

type ListFilter struct {
	From      *time.Time
	To        *time.Time
	Type      Type
	Category  string
	SeminarID string
	Limit     int
	Offset    int
}

type CreateInput struct {
	UnitID      string
	UserID      string
	Date        time.Time
	Type        Type
	Amount      decimal.Decimal
	Currency    string
	Category    string
	Description string
	SeminarID   string
}

type UpdateInput struct {
	ID          string
	UnitID      string
	Date        time.Time
	Type        Type
	Amount      decimal.Decimal
	Currency    string
	Category    string
	Description string
	SeminarID   string
}
