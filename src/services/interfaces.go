package services

import (
	"context"
	"errors"

	"github.com/username/tradefolio/backend/src/analytics"
	"github.com/username/tradefolio/backend/src/matcher"
	"github.com/username/tradefolio/backend/src/models"
)

var (
	ErrParsingFailed      = errors.New("statement parsing failed")
	ErrPersistenceFailure = errors.New("failed to persist imported trades")
)

// ImportServicer turns an uploaded broker statement into stored trades.
type ImportServicer interface {
	ImportFile(ctx context.Context, fileData []byte, filename, formatHint string) (models.ImportReport, error)
}

// AnalyticsServicer computes portfolio reports over the stored trade history.
// Implementations cache results until the trade set changes.
type AnalyticsServicer interface {
	ComputeStatistics(ctx context.Context, filter models.TradeFilter) (analytics.PortfolioStatistics, error)
	ComputeMonthlyRollup(ctx context.Context, filter models.TradeFilter) ([]analytics.MonthlyBucket, error)
	ComputeSymbolRollup(ctx context.Context, filter models.TradeFilter, topN int) ([]analytics.SymbolBucket, error)
	ComputeSourceRollup(ctx context.Context, filter models.TradeFilter) ([]analytics.SourceBucket, error)
	ComputeRatingDistribution(ctx context.Context, filter models.TradeFilter) ([]analytics.RatingBucket, error)
	ComputePositions(ctx context.Context, filter models.TradeFilter) (matcher.Result, error)
	InvalidateCache()
}
