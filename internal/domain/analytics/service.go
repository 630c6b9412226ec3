package analytics

import (
	"context"
	"fmt"
	"time"

	"opsboard/internal/calendar"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCacheTTL             = time.Minute
	defaultCacheCleanupInterval = 5 * time.Minute

	// MaxSeriesPoints caps gap-filled series: a little over ten years of
	// daily points.
	MaxSeriesPoints = 4000
)

type Config struct {
	CacheTTL time.Duration
}

type Service struct {
	repo  Repository
	cache *gocache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return NewServiceWithConfig(repo, Config{CacheTTL: defaultCacheTTL})
}

// NewServiceWithConfig builds a Service; a CacheTTL of zero or less turns
// working-set caching off.
func NewServiceWithConfig(repo Repository, cfg Config) *Service {
	s := &Service{
		repo: repo,
		ttl:  cfg.CacheTTL,
		now:  time.Now,
	}
	if cfg.CacheTTL > 0 {
		cleanup := defaultCacheCleanupInterval
		if cfg.CacheTTL > cleanup {
			cleanup = cfg.CacheTTL
		}
		s.cache = gocache.New(cfg.CacheTTL, cleanup)
	}
	return s
}

// Invalidate drops the cached transactions of a unit. Store services call it
// after every write.
func (s *Service) Invalidate(unitID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(transactionsCacheKey(unitID))
}

func (s *Service) Summary(ctx context.Context, unitID string, period Period) (Summary, error) {
	txs, err := s.workingSet(ctx, unitID, period)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(txs), nil
}

func (s *Service) ExpenseBreakdown(ctx context.Context, unitID string, period Period) (ExpenseBreakdown, error) {
	txs, err := s.workingSet(ctx, unitID, period)
	if err != nil {
		return ExpenseBreakdown{}, err
	}
	return ClassifyExpenses(txs), nil
}

func (s *Service) RevenueByCategory(ctx context.Context, unitID string, period Period) ([]CategoryTotal, error) {
	txs, err := s.workingSet(ctx, unitID, period)
	if err != nil {
		return nil, err
	}
	return AggregateByCategory(OfType(txs, TypeIncome)), nil
}

func (s *Service) CumulativeSeries(ctx context.Context, unitID string, period Period) ([]TimeSeriesPoint, error) {
	txs, err := s.workingSet(ctx, unitID, period)
	if err != nil {
		return nil, err
	}
	return BuildCumulativeSeries(txs), nil
}

// Timeseries builds the gap-filled series for an explicit range. The input is
// scoped to [From, To] before bucketing, so nothing is dropped silently.
func (s *Service) Timeseries(ctx context.Context, unitID string, filter TimeseriesFilter) ([]TimeSeriesPoint, error) {
	if !filter.Granularity.Valid() {
		return nil, ErrInvalidGranularity
	}
	if err := checkSeriesSize(filter.Granularity, filter.From, filter.To); err != nil {
		return nil, err
	}

	txs, err := s.transactions(ctx, unitID)
	if err != nil {
		return nil, err
	}

	scoped := FilterByRange(txs, filter.From, filter.To)
	return BuildContinuousSeries(scoped, filter.Granularity, filter.From, filter.To), nil
}

func (s *Service) SeminarProfitability(ctx context.Context, unitID string, period Period) ([]ProjectProfitability, error) {
	var (
		txs   []Transaction
		names []NameRef
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.workingSet(gctx, unitID, period)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = s.repo.ListSeminarNames(gctx, unitID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return AggregateProfitability(txs, names), nil
}

// Dashboard computes every view for one period from a single working set.
// The series axis runs from the start of the period (or the earliest
// transaction for PeriodAll) to today, extended to the latest transaction
// when it is dated in the future.
func (s *Service) Dashboard(ctx context.Context, unitID string, filter DashboardFilter) (Dashboard, error) {
	granularity := filter.Granularity
	if granularity == "" {
		granularity = defaultGranularity(filter.Period)
	}
	if !granularity.Valid() {
		return Dashboard{}, ErrInvalidGranularity
	}

	var (
		all   []Transaction
		names []NameRef
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.transactions(gctx, unitID)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = s.repo.ListSeminarNames(gctx, unitID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	now := s.now()
	txs := FilterByPeriod(all, filter.Period, now)

	result := Dashboard{
		Period:               filter.Period,
		Granularity:          granularity,
		Summary:              Summarize(txs),
		ExpenseBreakdown:     ClassifyExpenses(txs),
		RevenueByCategory:    AggregateByCategory(OfType(txs, TypeIncome)),
		SeminarProfitability: AggregateProfitability(txs, names),
		Series:               []TimeSeriesPoint{},
	}

	from, to, ok := seriesRange(filter.Period, txs, now)
	if ok {
		if err := checkSeriesSize(granularity, from, to); err != nil {
			return Dashboard{}, err
		}
		result.From = from
		result.To = to
		result.Series = BuildContinuousSeries(txs, granularity, from, to)
	}

	return result, nil
}

func (s *Service) workingSet(ctx context.Context, unitID string, period Period) ([]Transaction, error) {
	txs, err := s.transactions(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return FilterByPeriod(txs, period, s.now()), nil
}

func (s *Service) transactions(ctx context.Context, unitID string) ([]Transaction, error) {
	key := transactionsCacheKey(unitID)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if txs, ok := cached.([]Transaction); ok {
				return txs, nil
			}
		}
	}

	txs, err := s.repo.ListTransactions(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if err := Validate(txs); err != nil {
		return nil, fmt.Errorf("unit %s: %w", unitID, err)
	}

	if s.cache != nil {
		s.cache.Set(key, txs, s.ttl)
	}
	return txs, nil
}

func checkSeriesSize(g calendar.Granularity, from, to time.Time) error {
	if n := calendar.Count(g, from, to); n > MaxSeriesPoints {
		return fmt.Errorf("%w: %d %s points, at most %d allowed", ErrInvalidRange, n, g, MaxSeriesPoints)
	}
	return nil
}

func transactionsCacheKey(unitID string) string {
	return "transactions:" + unitID
}

func defaultGranularity(p Period) calendar.Granularity {
	if p == PeriodMonthToDate {
		return calendar.Daily
	}
	return calendar.Monthly
}

func seriesRange(p Period, txs []Transaction, now time.Time) (time.Time, time.Time, bool) {
	to := calendar.Civil(now)
	for _, tx := range txs {
		if day := calendar.Civil(tx.Date); day.After(to) {
			to = day
		}
	}

	if from, bounded := PeriodStart(p, now); bounded {
		return from, to, true
	}

	if len(txs) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from := calendar.Civil(txs[0].Date)
	for _, tx := range txs[1:] {
		if day := calendar.Civil(tx.Date); day.Before(from) {
			from = day
		}
	}
	return from, to, true
}
