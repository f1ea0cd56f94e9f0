package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"richr/internal/cache"
	"richr/internal/core"
	"richr/internal/report"
	"richr/internal/store"
)

const (
	dashboardCacheSize = 32
	dashboardCacheTTL  = time.Minute
)

// BudgetOverview is the monthly budget view: per-bucket totals, their
// shares of the month's spend, and how much of the income is gone.
type BudgetOverview struct {
	Month  core.MonthKey
	Totals report.BucketTotals
	Shares report.BucketShares
	Health decimal.Decimal
	Income decimal.Decimal
}

// DashboardService computes the read models behind the dashboard,
// caching them briefly because every page load asks for all of them.
type DashboardService struct {
	store   store.Store
	budgets *cache.LRU[BudgetOverview]
	heatmap *cache.LRU[map[core.Date]decimal.Decimal]
}

func NewDashboardService(st store.Store) *DashboardService {
	return &DashboardService{
		store:   st,
		budgets: cache.NewLRU[BudgetOverview](dashboardCacheSize, dashboardCacheTTL),
		heatmap: cache.NewLRU[map[core.Date]decimal.Decimal](dashboardCacheSize, dashboardCacheTTL),
	}
}

// Invalidate drops all cached views. Called after every write.
func (s *DashboardService) Invalidate() {
	s.budgets.Purge()
	s.heatmap.Purge()
}

// Budget returns the bucket breakdown and budget health for a month.
func (s *DashboardService) Budget(ctx context.Context, month core.MonthKey) (BudgetOverview, error) {
	key := "budget:" + month.String()
	if cached, ok := s.budgets.Get(key); ok {
		return cached, nil
	}

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("list transactions: %w", err)
	}
	totals, err := report.MonthlyBucketTotals(txs, month)
	if err != nil {
		return BudgetOverview{}, err
	}

	profile, err := s.store.Profile(ctx)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("read profile: %w", err)
	}

	overview := BudgetOverview{
		Month:  month,
		Totals: totals,
		Shares: totals.Shares(),
		Health: report.BudgetHealth(totals.Sum(), profile.MonthlyIncome),
		Income: profile.MonthlyIncome,
	}
	s.budgets.Set(key, overview)
	return overview, nil
}

// Heatmap returns daily spend totals over the trailing window ending
// today. Days without spend are absent.
func (s *DashboardService) Heatmap(ctx context.Context, today core.Date) (map[core.Date]decimal.Decimal, error) {
	key := "heatmap:" + today.String()
	if cached, ok := s.heatmap.Get(key); ok {
		return cached, nil
	}

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	totals, err := report.WindowedDailyTotals(txs, today)
	if err != nil {
		return nil, err
	}

	s.heatmap.Set(key, totals)
	return totals, nil
}

// Summary returns the headline numbers: today's and this month's
// spend. Cheap enough to skip the cache.
func (s *DashboardService) Summary(ctx context.Context, today core.Date) (report.SpendStats, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return report.SpendStats{}, fmt.Errorf("list transactions: %w", err)
	}
	return report.Stats(txs, today), nil
}

// Grouped returns the filtered transaction listing, newest day first.
func (s *DashboardService) Grouped(ctx context.Context, filter report.Filter) ([]report.DayGroup, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return report.GroupedByDay(txs, filter), nil
}
