package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradefolio/backend/src/analytics"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/matcher"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/storage"
)

const (
	// Cache key formats. Each embeds the filter so distinct queries never
	// collide; the whole cache is flushed whenever the trade set changes.
	ckStatistics  = "stats:%s"
	ckMonthly     = "monthly:%s"
	ckSymbols     = "symbols:%d:%s"
	ckSources     = "sources:%s"
	ckRatings     = "ratings:%s"
	ckPositions   = "positions:%s"
	ckSnapshot    = "snapshot:%s"
	ckMatchResult = "match:%s"
	cacheExpiry   = 10 * time.Minute
	cacheCleanup  = 15 * time.Minute
)

// AnalyticsService computes reports over the stored trades and memoizes them
// until the next write invalidates the cache.
type AnalyticsService struct {
	store       storage.TradeStore
	reportCache *cache.Cache
}

func NewAnalyticsService(store storage.TradeStore) *AnalyticsService {
	return &AnalyticsService{
		store:       store,
		reportCache: cache.New(cacheExpiry, cacheCleanup),
	}
}

// InvalidateCache drops every memoized report. Called after any import,
// create, update or delete so reads never serve stale aggregates.
func (s *AnalyticsService) InvalidateCache() {
	s.reportCache.Flush()
	logger.L.Debug("Invalidated analytics report cache")
}

func filterKey(filter models.TradeFilter) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		filter.Symbol, filter.SecurityType, filter.Source,
		filter.StartDate, filter.EndDate, filter.Limit)
}

// snapshot loads (or reuses) the trade list for a filter. Every report for
// one filter is computed off the same snapshot.
func (s *AnalyticsService) snapshot(ctx context.Context, filter models.TradeFilter) ([]models.Trade, error) {
	key := fmt.Sprintf(ckSnapshot, filterKey(filter))
	if cached, found := s.reportCache.Get(key); found {
		return cached.([]models.Trade), nil
	}
	trades, err := s.store.ListTrades(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for analytics: %w", err)
	}
	s.reportCache.Set(key, trades, cacheExpiry)
	return trades, nil
}

// match runs the position matcher over the filter's snapshot, memoized.
func (s *AnalyticsService) match(ctx context.Context, filter models.TradeFilter) ([]models.Trade, matcher.Result, error) {
	trades, err := s.snapshot(ctx, filter)
	if err != nil {
		return nil, matcher.Result{}, err
	}
	key := fmt.Sprintf(ckMatchResult, filterKey(filter))
	if cached, found := s.reportCache.Get(key); found {
		return trades, cached.(matcher.Result), nil
	}
	result := matcher.Match(trades)
	s.reportCache.Set(key, result, cacheExpiry)
	return trades, result, nil
}

func (s *AnalyticsService) ComputeStatistics(ctx context.Context, filter models.TradeFilter) (analytics.PortfolioStatistics, error) {
	key := fmt.Sprintf(ckStatistics, filterKey(filter))
	if cached, found := s.reportCache.Get(key); found {
		return cached.(analytics.PortfolioStatistics), nil
	}
	trades, err := s.snapshot(ctx, filter)
	if err != nil {
		return analytics.PortfolioStatistics{}, err
	}
	stats := analytics.Statistics(trades)
	s.reportCache.Set(key, stats, cacheExpiry)
	return stats, nil
}

func (s *AnalyticsService) ComputeMonthlyRollup(ctx context.Context, filter models.TradeFilter) ([]analytics.MonthlyBucket, error) {
	key := fmt.Sprintf(ckMonthly, filterKey(filter))
	if cached, found := s.reportCache.Get(key); found {
		return cached.([]analytics.MonthlyBucket), nil
	}
	trades, result, err := s.match(ctx, filter)
	if err != nil {
		return nil, err
	}
	buckets := analytics.MonthlyRollup(trades, result)
	s.reportCache.Set(key, buckets, cacheExpiry)
	return buckets, nil
}

func (s *AnalyticsService) ComputeSymbolRollup(ctx context.Context, filter models.TradeFilter, topN int) ([]analytics.SymbolBucket, error) {
	key := fmt.Sprintf(ckSymbols, topN, filterKey(filter))
	if cached, found := s.reportCache.Get(key); found {
		return cached.([]analytics.SymbolBucket), nil
	}
	trades, err := s.snapshot(ctx, filter)
	if err != nil {
		return nil, err
	}
	buckets := analytics.SymbolRollup(trades, topN)
	s.reportCache.Set(key, buckets, cacheExpiry)
	return buckets, nil
}

func (s *AnalyticsService) ComputeSourceRollup(ctx context.Context, filter models.TradeFilter) ([]analytics.SourceBucket, error) {
	key := fmt.Sprintf(ckSources, filterKey(filter))
	if cached, found := s.reportCache.Get(key); found {
		return cached.([]analytics.SourceBucket), nil
	}
	trades, result, err := s.match(ctx, filter)
	if err != nil {
		return nil, err
	}
	buckets := analytics.SourceRollup(trades, result)
	s.reportCache.Set(key, buckets, cacheExpiry)
	return buckets, nil
}

func (s *AnalyticsService) ComputeRatingDistribution(ctx context.Context, filter models.TradeFilter) ([]analytics.RatingBucket, error) {
	key := fmt.Sprintf(ckRatings, filterKey(filter))
	if cached, found := s.reportCache.Get(key); found {
		return cached.([]analytics.RatingBucket), nil
	}
	trades, err := s.snapshot(ctx, filter)
	if err != nil {
		return nil, err
	}
	buckets := analytics.RatingDistribution(trades)
	s.reportCache.Set(key, buckets, cacheExpiry)
	return buckets, nil
}

func (s *AnalyticsService) ComputePositions(ctx context.Context, filter models.TradeFilter) (matcher.Result, error) {
	key := fmt.Sprintf(ckPositions, filterKey(filter))
	if cached, found := s.reportCache.Get(key); found {
		return cached.(matcher.Result), nil
	}
	_, result, err := s.match(ctx, filter)
	if err != nil {
		return matcher.Result{}, err
	}
	s.reportCache.Set(key, result, cacheExpiry)
	return result, nil
}
