package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsboard/internal/calendar"

	"github.com/shopspring/decimal"
)

type fakeAnalyticsRepo struct {
	transactions     map[string][]Transaction
	names            map[string][]NameRef
	transactionCalls int
	err              error
}

func (f *fakeAnalyticsRepo) ListTransactions(ctx context.Context, unitID string) ([]Transaction, error) {
	f.transactionCalls++
	if f.err != nil {
		return nil, f.err
	}
	items := make([]Transaction, len(f.transactions[unitID]))
	copy(items, f.transactions[unitID])
	return items, nil
}

func (f *fakeAnalyticsRepo) ListSeminarNames(ctx context.Context, unitID string) ([]NameRef, error) {
	return f.names[unitID], nil
}

func newFixedService(repo Repository, ttl time.Duration, now time.Time) *Service {
	svc := NewServiceWithConfig(repo, Config{CacheTTL: ttl})
	svc.now = func() time.Time { return now }
	return svc
}

func TestServiceSummaryUsesPeriod(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		transactions: map[string][]Transaction{
			"unit-1": {
				income(day(2025, 12, 20), 1000, "Tickets"),
				income(day(2026, 10, 2), 300, "Tickets"),
				expense(day(2026, 10, 3), 120, "Venue"),
			},
		},
	}
	svc := newFixedService(repo, 0, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))

	summary, err := svc.Summary(context.Background(), "unit-1", PeriodMonthToDate)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !summary.Revenue.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected revenue 300, got %s", summary.Revenue)
	}
	if !summary.Profit.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("expected profit 180, got %s", summary.Profit)
	}
	if summary.Count != 2 {
		t.Fatalf("expected count 2, got %d", summary.Count)
	}
}

func TestServiceCachesTransactionsUntilInvalidated(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		transactions: map[string][]Transaction{
			"unit-1": {income(day(2026, 10, 2), 300, "Tickets")},
		},
	}
	svc := newFixedService(repo, time.Minute, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := svc.Summary(ctx, "unit-1", PeriodAll); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := svc.RevenueByCategory(ctx, "unit-1", PeriodAll); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if repo.transactionCalls != 1 {
		t.Fatalf("expected cache hit without extra repo call, got %d", repo.transactionCalls)
	}

	repo.transactions["unit-1"] = append(repo.transactions["unit-1"], income(day(2026, 10, 5), 50, "Tickets"))
	svc.Invalidate("unit-1")

	summary, err := svc.Summary(ctx, "unit-1", PeriodAll)
	if err != nil {
		t.Fatalf("third call failed: %v", err)
	}
	if repo.transactionCalls != 2 {
		t.Fatalf("expected cache miss after invalidation, got %d repo calls", repo.transactionCalls)
	}
	if !summary.Revenue.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected fresh revenue 350, got %s", summary.Revenue)
	}
}

func TestServiceCacheIsPerUnit(t *testing.T) {
	repo := &fakeAnalyticsRepo{transactions: map[string][]Transaction{}}
	svc := newFixedService(repo, time.Minute, time.Now())

	if _, err := svc.Summary(context.Background(), "unit-1", PeriodAll); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := svc.Summary(context.Background(), "unit-2", PeriodAll); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if repo.transactionCalls != 2 {
		t.Fatalf("expected separate cache entries per unit, got %d repo calls", repo.transactionCalls)
	}
}

func TestServiceRejectsInvalidAmounts(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		transactions: map[string][]Transaction{
			"unit-1": {{Date: day(2026, 1, 1), Type: TypeExpense, Amount: decimal.NewFromInt(-5)}},
		},
	}
	svc := newFixedService(repo, time.Minute, time.Now())

	_, err := svc.Summary(context.Background(), "unit-1", PeriodAll)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestServiceTimeseriesScopesToRange(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		transactions: map[string][]Transaction{
			"unit-1": {
				income(day(2026, 1, 5), 100, ""),
				expense(day(2026, 1, 20), 30, ""),
				income(day(2026, 2, 3), 999, ""),
			},
		},
	}
	svc := newFixedService(repo, 0, time.Now())

	points, err := svc.Timeseries(context.Background(), "unit-1", TimeseriesFilter{
		Granularity: calendar.Daily,
		From:        day(2026, 1, 1),
		To:          day(2026, 1, 31),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 31 {
		t.Fatalf("expected 31 points, got %d", len(points))
	}
	if !points[30].Profit.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected final profit 70, got %s", points[30].Profit)
	}

	reversed, err := svc.Timeseries(context.Background(), "unit-1", TimeseriesFilter{
		Granularity: calendar.Daily,
		From:        day(2026, 1, 31),
		To:          day(2026, 1, 1),
	})
	if err != nil {
		t.Fatalf("expected no error for reversed range, got %v", err)
	}
	if len(reversed) != 0 {
		t.Fatalf("expected empty series, got %d points", len(reversed))
	}

	if _, err := svc.Timeseries(context.Background(), "unit-1", TimeseriesFilter{Granularity: "hourly"}); !errors.Is(err, ErrInvalidGranularity) {
		t.Fatalf("expected ErrInvalidGranularity, got %v", err)
	}
}

func TestServiceSeminarProfitability(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		transactions: map[string][]Transaction{
			"unit-1": {
				linked(income(day(2026, 3, 1), 500, "Tickets"), "sem-1"),
				linked(expense(day(2026, 3, 2), 200, "Venue"), "sem-1"),
			},
		},
		names: map[string][]NameRef{
			"unit-1": {{ID: "sem-1", Name: "Leadership Batch"}},
		},
	}
	svc := newFixedService(repo, 0, time.Now())

	rows, err := svc.SeminarProfitability(context.Background(), "unit-1", PeriodAll)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ProjectName != "Leadership Batch" || !rows[0].Profit.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestServiceDashboardMonthToDate(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		transactions: map[string][]Transaction{
			"unit-1": {
				income(day(2026, 9, 30), 1000, "Tickets"),
				linked(income(day(2026, 10, 2), 400, "Tickets"), "sem-1"),
				linked(expense(day(2026, 10, 4), 150, "Venue"), "sem-1"),
				expense(day(2026, 10, 10), 60, "Software"),
			},
		},
	}
	svc := newFixedService(repo, 0, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))

	dashboard, err := svc.Dashboard(context.Background(), "unit-1", DashboardFilter{Period: PeriodMonthToDate})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if dashboard.Granularity != calendar.Daily {
		t.Fatalf("expected daily granularity, got %s", dashboard.Granularity)
	}
	if len(dashboard.Series) != 18 {
		t.Fatalf("expected 18 daily points, got %d", len(dashboard.Series))
	}
	if !dashboard.Series[17].Profit.Equal(decimal.NewFromInt(190)) {
		t.Fatalf("expected profit 190, got %s", dashboard.Series[17].Profit)
	}
	if dashboard.Summary.Count != 3 {
		t.Fatalf("expected 3 transactions, got %d", dashboard.Summary.Count)
	}
	if len(dashboard.ExpenseBreakdown.ProjectLinked) != 1 || len(dashboard.ExpenseBreakdown.Operational) != 1 {
		t.Fatalf("unexpected breakdown: %+v", dashboard.ExpenseBreakdown)
	}
	if len(dashboard.SeminarProfitability) != 1 || dashboard.SeminarProfitability[0].ProjectName != "Seminar sem-1" {
		t.Fatalf("unexpected profitability: %+v", dashboard.SeminarProfitability)
	}
}

func TestServiceDashboardAllWithoutTransactions(t *testing.T) {
	svc := newFixedService(&fakeAnalyticsRepo{}, 0, time.Now())

	dashboard, err := svc.Dashboard(context.Background(), "unit-1", DashboardFilter{Period: PeriodAll})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(dashboard.Series) != 0 || len(dashboard.RevenueByCategory) != 0 || len(dashboard.SeminarProfitability) != 0 {
		t.Fatalf("expected empty dashboard, got %+v", dashboard)
	}
}

func TestServicePropagatesRepositoryErrors(t *testing.T) {
	repoErr := errors.New("db down")
	svc := newFixedService(&fakeAnalyticsRepo{err: repoErr}, time.Minute, time.Now())

	if _, err := svc.Dashboard(context.Background(), "unit-1", DashboardFilter{Period: PeriodAll}); !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestServiceTimeseriesRejectsOversizedRange(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newFixedService(repo, 0, time.Now())

	_, err := svc.Timeseries(context.Background(), "unit-1", TimeseriesFilter{
		Granularity: calendar.Daily,
		From:        day(1, 1, 1),
		To:          day(9999, 12, 31),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if repo.transactionCalls != 0 {
		t.Fatalf("expected no repository call, got %d", repo.transactionCalls)
	}

	points, err := svc.Timeseries(context.Background(), "unit-1", TimeseriesFilter{
		Granularity: calendar.Monthly,
		From:        day(1990, 1, 1),
		To:          day(2089, 12, 31),
	})
	if err != nil {
		t.Fatalf("expected a century of months to pass, got %v", err)
	}
	if len(points) != 1200 {
		t.Fatalf("expected 1200 points, got %d", len(points))
	}
}

func TestServiceDashboardRejectsOversizedAxis(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		transactions: map[string][]Transaction{
			"unit-1": {income(day(1, 1, 2), 10, "Legacy")},
		},
	}
	svc := newFixedService(repo, 0, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))

	_, err := svc.Dashboard(context.Background(), "unit-1", DashboardFilter{Period: PeriodAll, Granularity: calendar.Daily})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	dashboard, err := svc.Dashboard(context.Background(), "unit-1", DashboardFilter{Period: PeriodYearToDate, Granularity: calendar.Daily})
	if err != nil {
		t.Fatalf("expected ytd to pass, got %v", err)
	}
	if len(dashboard.Series) != 291 {
		t.Fatalf("expected 291 daily points, got %d", len(dashboard.Series))
	}
}
