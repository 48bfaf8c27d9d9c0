package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/storage"
	"github.com/username/tradefolio/backend/src/validation"
)

func seedTrade(t *testing.T, svc *AnalyticsService, store *storage.SQLiteStore, symbol, date, action string, qty int64, price float64) {
	t.Helper()

	trade, err := validation.NormalizeTrade(models.Trade{
		SecurityType: models.SecurityStock,
		Action:       action,
		Symbol:       symbol,
		TradeDate:    date,
		TradeTime:    "09:30:00",
		Quantity:     qty,
		Price:        decimal.NewFromFloat(price),
	})
	require.NoError(t, err)

	_, err = store.CreateTrade(context.Background(), trade)
	require.NoError(t, err)
	svc.InvalidateCache()
}

func TestAnalyticsServiceCachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	svc := NewAnalyticsService(store)
	ctx := context.Background()

	seedTrade(t, svc, store, "AAPL", "2024-01-02", models.ActionBuy, 100, 10)

	stats, err := svc.ComputeStatistics(ctx, models.TradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTrades)

	// A write the service was not told about is invisible until invalidation.
	trade, err := validation.NormalizeTrade(models.Trade{
		SecurityType: models.SecurityStock,
		Action:       models.ActionSell,
		Symbol:       "AAPL",
		TradeDate:    "2024-02-01",
		TradeTime:    "09:30:00",
		Quantity:     100,
		Price:        decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	_, err = store.CreateTrade(ctx, trade)
	require.NoError(t, err)

	stats, err = svc.ComputeStatistics(ctx, models.TradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTrades)

	svc.InvalidateCache()
	stats, err = svc.ComputeStatistics(ctx, models.TradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTrades)
}

func TestAnalyticsServicePositionsAndRollups(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	svc := NewAnalyticsService(store)
	ctx := context.Background()

	seedTrade(t, svc, store, "AAPL", "2024-01-02", models.ActionBuy, 100, 10)
	seedTrade(t, svc, store, "AAPL", "2024-02-01", models.ActionSell, 60, 15)

	positions, err := svc.ComputePositions(ctx, models.TradeFilter{})
	require.NoError(t, err)
	assert.True(t, positions.RealizedPnL.Equal(decimal.NewFromInt(300)))
	require.Len(t, positions.OpenLots, 1)
	assert.Equal(t, int64(40), positions.OpenLots[0].QuantityRemaining)

	monthly, err := svc.ComputeMonthlyRollup(ctx, models.TradeFilter{})
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.True(t, monthly[1].RealizedPnL.Equal(decimal.NewFromInt(300)))

	symbols, err := svc.ComputeSymbolRollup(ctx, models.TradeFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "AAPL", symbols[0].Symbol)
	assert.Equal(t, 2, symbols[0].Trades)

	ratings, err := svc.ComputeRatingDistribution(ctx, models.TradeFilter{})
	require.NoError(t, err)
	assert.Len(t, ratings, 5)
}

func TestAnalyticsServiceFilterIsolation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	svc := NewAnalyticsService(store)
	ctx := context.Background()

	seedTrade(t, svc, store, "AAPL", "2024-01-02", models.ActionBuy, 100, 10)
	seedTrade(t, svc, store, "MSFT", "2024-01-03", models.ActionBuy, 10, 400)

	all, err := svc.ComputeStatistics(ctx, models.TradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalTrades)

	aaplOnly, err := svc.ComputeStatistics(ctx, models.TradeFilter{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 1, aaplOnly.TotalTrades)
}
