// Package analytics computes portfolio-level statistics and groupings over a
// trade snapshot plus the position matcher's output. Every function here is a
// pure function of its arguments: identical input yields identical output,
// and nothing is cached or mutated across calls.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/tradefolio/backend/src/matcher"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/utils"
)

// DefaultTopN is the symbol-rollup cutoff when the caller does not override it.
const DefaultTopN = 10

// PortfolioStatistics is the dashboard headline block.
type PortfolioStatistics struct {
	TotalTrades     int             `json:"total_trades"`
	StockTrades     int             `json:"stock_trades"`
	OptionTrades    int             `json:"option_trades"`
	BuyTrades       int             `json:"buy_trades"`
	SellTrades      int             `json:"sell_trades"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	RatedTrades     int             `json:"rated_trades"`
	AverageRating   decimal.Decimal `json:"average_rating"` // over rated trades only
}

// Statistics aggregates the headline numbers. Unrated trades (rating 0) are
// excluded from the rating mean's denominator.
func Statistics(trades []models.Trade) PortfolioStatistics {
	stats := PortfolioStatistics{
		TotalAmount:     decimal.Zero,
		TotalCommission: decimal.Zero,
		AverageRating:   decimal.Zero,
	}
	ratingSum := 0
	for _, t := range trades {
		stats.TotalTrades++
		switch t.SecurityType {
		case models.SecurityStock:
			stats.StockTrades++
		case models.SecurityOption:
			stats.OptionTrades++
		}
		switch t.Action {
		case models.ActionBuy:
			stats.BuyTrades++
		case models.ActionSell:
			stats.SellTrades++
		}
		stats.TotalAmount = stats.TotalAmount.Add(t.Amount)
		stats.TotalCommission = stats.TotalCommission.Add(t.Commission)
		if t.TradeRating > 0 {
			stats.RatedTrades++
			ratingSum += t.TradeRating
		}
	}
	if stats.RatedTrades > 0 {
		stats.AverageRating = decimal.NewFromInt(int64(ratingSum)).
			Div(decimal.NewFromInt(int64(stats.RatedTrades))).Round(2)
	}
	return stats
}

// MonthlyBucket is one calendar month of activity. RealizedPnL is attributed
// to the month of the closing SELL.
type MonthlyBucket struct {
	Month       string          `json:"month"` // "2006-01"
	Trades      int             `json:"trades"`
	BuyTrades   int             `json:"buy_trades"`
	SellTrades  int             `json:"sell_trades"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

// MonthlyRollup groups trades by calendar month of trade_date, ascending.
func MonthlyRollup(trades []models.Trade, match matcher.Result) []MonthlyBucket {
	buckets := make(map[string]*MonthlyBucket)
	bucket := func(month string) *MonthlyBucket {
		b, ok := buckets[month]
		if !ok {
			b = &MonthlyBucket{Month: month, TotalAmount: decimal.Zero, RealizedPnL: decimal.Zero}
			buckets[month] = b
		}
		return b
	}

	for _, t := range trades {
		b := bucket(utils.MonthOf(t.TradeDate))
		b.Trades++
		switch t.Action {
		case models.ActionBuy:
			b.BuyTrades++
		case models.ActionSell:
			b.SellTrades++
		}
		b.TotalAmount = b.TotalAmount.Add(t.Amount)
	}
	for _, cl := range match.ClosedLots {
		b := bucket(utils.MonthOf(cl.CloseDate))
		b.RealizedPnL = b.RealizedPnL.Add(cl.Profit)
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlyBucket, 0, len(months))
	for _, m := range months {
		out = append(out, *buckets[m])
	}
	return out
}

// SymbolBucket is one symbol's share of activity.
type SymbolBucket struct {
	Symbol      string          `json:"symbol"`
	Trades      int             `json:"trades"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// SymbolRollup groups trades by symbol and returns the top-N by total amount,
// descending, ties broken by symbol lexical order ascending.
func SymbolRollup(trades []models.Trade, topN int) []SymbolBucket {
	if topN <= 0 {
		topN = DefaultTopN
	}
	buckets := make(map[string]*SymbolBucket)
	for _, t := range trades {
		b, ok := buckets[t.Symbol]
		if !ok {
			b = &SymbolBucket{Symbol: t.Symbol, TotalAmount: decimal.Zero}
			buckets[t.Symbol] = b
		}
		b.Trades++
		b.TotalAmount = b.TotalAmount.Add(t.Amount)
	}

	out := make([]SymbolBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalAmount.Equal(out[j].TotalAmount) {
			return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
		}
		return out[i].Symbol < out[j].Symbol
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// SourceBucket is one provenance tag's share of activity. RealizedPnL is
// attributed to the source of the opening BUY lot.
type SourceBucket struct {
	Source      string          `json:"source"`
	Trades      int             `json:"trades"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

// SourceRollup groups trades by provenance tag; untagged trades are excluded.
// Output is ordered by source name for determinism.
func SourceRollup(trades []models.Trade, match matcher.Result) []SourceBucket {
	buckets := make(map[string]*SourceBucket)
	bucket := func(source string) *SourceBucket {
		b, ok := buckets[source]
		if !ok {
			b = &SourceBucket{Source: source, RealizedPnL: decimal.Zero}
			buckets[source] = b
		}
		return b
	}

	for _, t := range trades {
		if t.Source == "" {
			continue
		}
		bucket(t.Source).Trades++
	}
	for _, cl := range match.ClosedLots {
		if cl.Source == "" {
			continue
		}
		bucket(cl.Source).RealizedPnL = bucket(cl.Source).RealizedPnL.Add(cl.Profit)
	}

	sources := make([]string, 0, len(buckets))
	for s := range buckets {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	out := make([]SourceBucket, 0, len(sources))
	for _, s := range sources {
		out = append(out, *buckets[s])
	}
	return out
}

// RatingBucket is one slot of the rating histogram.
type RatingBucket struct {
	Rating  int `json:"rating"`
	Count   int `json:"count"`
	Percent int `json:"percent"` // of rated trades, nearest integer
}

// RatingDistribution builds the histogram over ratings 1..5. Unrated trades
// (rating 0) are excluded from both counts and the percentage denominator;
// with zero rated trades every percentage is 0, never NaN.
func RatingDistribution(trades []models.Trade) []RatingBucket {
	counts := make(map[int]int)
	rated := 0
	for _, t := range trades {
		if t.TradeRating >= 1 && t.TradeRating <= 5 {
			counts[t.TradeRating]++
			rated++
		}
	}

	out := make([]RatingBucket, 0, 5)
	for rating := 1; rating <= 5; rating++ {
		out = append(out, RatingBucket{
			Rating:  rating,
			Count:   counts[rating],
			Percent: utils.RoundPct(counts[rating], rated),
		})
	}
	return out
}
