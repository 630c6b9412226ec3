package handler

import (
	"encoding/json"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"opsboard/internal/calendar"
	analyticsdomain "opsboard/internal/domain/analytics"
	seminarsdomain "opsboard/internal/domain/seminars"
	transactionsdomain "opsboard/internal/domain/transactions"
	unitsdomain "opsboard/internal/domain/units"
)

// money renders a decimal as a JSON number with two fraction digits.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

type unitResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type memberResponse struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	Email    *string   `json:"email"`
	Name     *string   `json:"name"`
}

type transactionResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Amount      money   `json:"amount"`
	Currency    string  `json:"currency"`
	AmountAED   money   `json:"amount_aed"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	SeminarID   *string `json:"seminar_id"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type seminarResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	StartsOn *string `json:"starts_on"`
	Location string  `json:"location"`
}

type summaryResponse struct {
	Revenue  money `json:"revenue"`
	Expenses money `json:"expenses"`
	Profit   money `json:"profit"`
	Count    int   `json:"count"`
}

type categoryTotalResponse struct {
	Category string `json:"category"`
	Amount   money  `json:"amount"`
}

type expenseBreakdownResponse struct {
	ProjectLinked []categoryTotalResponse `json:"project_linked"`
	Operational   []categoryTotalResponse `json:"operational"`
}

type seriesPointResponse struct {
	Label              string `json:"label"`
	Date               string `json:"date"`
	CumulativeRevenue  money  `json:"cumulative_revenue"`
	CumulativeExpenses money  `json:"cumulative_expenses"`
	Profit             money  `json:"profit"`
}

type profitabilityResponse struct {
	SeminarID   string `json:"seminar_id"`
	SeminarName string `json:"seminar_name"`
	Revenue     money  `json:"revenue"`
	Expenses    money  `json:"expenses"`
	Profit      money  `json:"profit"`
}

type dashboardResponse struct {
	Period               string                   `json:"period"`
	Granularity          string                   `json:"granularity"`
	From                 *string                  `json:"from"`
	To                   *string                  `json:"to"`
	Summary              summaryResponse          `json:"summary"`
	ExpenseBreakdown     expenseBreakdownResponse `json:"expense_breakdown"`
	RevenueByCategory    []categoryTotalResponse  `json:"revenue_by_category"`
	Series               []seriesPointResponse    `json:"series"`
	SeminarProfitability []profitabilityResponse  `json:"seminar_profitability"`
}

func toUnitResponse(unit unitsdomain.Unit, role string) unitResponse {
	return unitResponse{
		ID:        unit.ID,
		Name:      unit.Name,
		Code:      unit.Code,
		Role:      role,
		CreatedAt: unit.CreatedAt,
	}
}

func toTransactionResponse(item transactionsdomain.Transaction) transactionResponse {
	response := transactionResponse{
		ID:          item.ID,
		Date:        item.Date.Format(calendar.DateLayout),
		Type:        string(item.Type),
		Amount:      money(item.Amount),
		Currency:    item.Currency,
		AmountAED:   money(item.AmountAED),
		Category:    item.Category,
		Description: item.Description,
		CreatedBy:   item.CreatedBy,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if seminarID := item.SeminarID(); seminarID != "" {
		response.SeminarID = &seminarID
	}
	return response
}

func toSeminarResponse(item seminarsdomain.Seminar) seminarResponse {
	response := seminarResponse{
		ID:       item.ID,
		Name:     item.Name,
		Location: item.Location,
	}
	if item.StartsOn != nil {
		startsOn := item.StartsOn.Format(calendar.DateLayout)
		response.StartsOn = &startsOn
	}
	return response
}

func toSummaryResponse(summary analyticsdomain.Summary) summaryResponse {
	return summaryResponse{
		Revenue:  money(summary.Revenue),
		Expenses: money(summary.Expenses),
		Profit:   money(summary.Profit),
		Count:    summary.Count,
	}
}

func toCategoryTotals(items []analyticsdomain.CategoryTotal) []categoryTotalResponse {
	result := make([]categoryTotalResponse, 0, len(items))
	for _, item := range items {
		result = append(result, categoryTotalResponse{Category: item.Category, Amount: money(item.Amount)})
	}
	return result
}

func toExpenseBreakdown(breakdown analyticsdomain.ExpenseBreakdown) expenseBreakdownResponse {
	return expenseBreakdownResponse{
		ProjectLinked: toCategoryTotals(breakdown.ProjectLinked),
		Operational:   toCategoryTotals(breakdown.Operational),
	}
}

type timeseriesResponse struct {
	Granularity string                `json:"granularity"`
	From        string                `json:"from"`
	To          string                `json:"to"`
	Items       []seriesPointResponse `json:"items"`
}

func toSeries(points []analyticsdomain.TimeSeriesPoint) []seriesPointResponse {
	result := make([]seriesPointResponse, 0, len(points))
	for _, point := range points {
		result = append(result, seriesPointResponse{
			Label:              point.Label,
			Date:               point.Date.Format(calendar.DateLayout),
			CumulativeRevenue:  money(point.CumulativeRevenue),
			CumulativeExpenses: money(point.CumulativeExpenses),
			Profit:             money(point.Profit),
		})
	}
	return result
}

func toProfitability(rows []analyticsdomain.ProjectProfitability) []profitabilityResponse {
	result := make([]profitabilityResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, profitabilityResponse{
			SeminarID:   row.ProjectID,
			SeminarName: row.ProjectName,
			Revenue:     money(row.Revenue),
			Expenses:    money(row.Expenses),
			Profit:      money(row.Profit),
		})
	}
	return result
}

func toDashboardResponse(d analyticsdomain.Dashboard) dashboardResponse {
	response := dashboardResponse{
		Period:               string(d.Period),
		Granularity:          string(d.Granularity),
		Summary:              toSummaryResponse(d.Summary),
		ExpenseBreakdown:     toExpenseBreakdown(d.ExpenseBreakdown),
		RevenueByCategory:    toCategoryTotals(d.RevenueByCategory),
		Series:               toSeries(d.Series),
		SeminarProfitability: toProfitability(d.SeminarProfitability),
	}
	if !d.From.IsZero() {
		from := d.From.Format(calendar.DateLayout)
		to := d.To.Format(calendar.DateLayout)
		response.From = &from
		response.To = &to
	}
	return response
}

// EncodeDashboard writes d in the same JSON shape the dashboard endpoint uses.
func EncodeDashboard(w io.Writer, d analyticsdomain.Dashboard) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toDashboardResponse(d))
}
