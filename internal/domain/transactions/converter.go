package transactions

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const ReportingCurrency = "AED"

// Converter turns entered amounts into AED using fixed rates (units of AED
// per one unit of the foreign currency). Results are rounded to fils.
type Converter struct {
	rates map[string]decimal.Decimal
}

func NewConverter(rates map[string]decimal.Decimal) *Converter {
	normalized := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	normalized[ReportingCurrency] = decimal.NewFromInt(1)
	return &Converter{rates: normalized}
}

// ParseRates reads "USD=3.6725,EUR=4.02" style rate lists.
func ParseRates(value string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, raw, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("rate %q: expected CODE=RATE", part)
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		if !isCurrencyCode(code) {
			return nil, fmt.Errorf("rate %q: %w", part, ErrInvalidCurrency)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("rate %q: %w", part, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate %q: must be positive", part)
		}
		rates[code] = rate
	}
	return rates, nil
}

func (c *Converter) ToAED(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	rate, ok := c.rates[strings.ToUpper(currency)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currency)
	}
	return amount.Mul(rate).Round(2), nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
