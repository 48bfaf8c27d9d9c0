package matcher

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/utils"
)

// ClosedLot is one realized matching event: a SELL consuming (part of) an
// open BUY lot. Profit is net of the commission allocated to the event from
// both legs, pro-rata by quantity.
type ClosedLot struct {
	Symbol       string          `json:"symbol"`
	ContractKey  string          `json:"contract_key"`
	SecurityType string          `json:"security_type"`
	Quantity     int64           `json:"quantity"`
	OpenDate     string          `json:"open_date"`
	CloseDate    string          `json:"close_date"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	Commission   decimal.Decimal `json:"commission"`
	Profit       decimal.Decimal `json:"profit"`
	BuyTradeID   int64           `json:"buy_trade_id"`
	SellTradeID  int64           `json:"sell_trade_id"`
	Source       string          `json:"source,omitempty"` // provenance tag of the opening BUY
}

// ShortLeg is SELL quantity with no open BUY lot to consume. Its profit is
// undefined and deliberately absent: reporting it as zero would contaminate
// aggregates.
type ShortLeg struct {
	Symbol      string          `json:"symbol"`
	ContractKey string          `json:"contract_key"`
	Quantity    int64           `json:"quantity"`
	SellDate    string          `json:"sell_date"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	SellTradeID int64           `json:"sell_trade_id"`
}

// OpenLot is unconsumed BUY quantity still awaiting a matching SELL.
type OpenLot struct {
	Symbol            string          `json:"symbol"`
	ContractKey       string          `json:"contract_key"`
	QuantityRemaining int64           `json:"quantity_remaining"`
	Price             decimal.Decimal `json:"price"`
	OpenDate          string          `json:"open_date"`
	TradeID           int64           `json:"trade_id"`
}

// Result is the matcher's full output over a trade snapshot.
type Result struct {
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	ClosedLots  []ClosedLot     `json:"closed_lots"`
	ShortLegs   []ShortLeg      `json:"short_legs"`
	OpenLots    []OpenLot       `json:"open_lots"`
}

// lot is the internal FIFO queue entry.
type lot struct {
	tradeID           int64
	symbol            string
	securityType      string
	source            string
	quantityRemaining int64
	originalQuantity  int64
	price             decimal.Decimal
	commission        decimal.Decimal
	openDate          string
}

// Match reconstructs opening/closing relationships across a trade snapshot
// and computes realized profit. Trades are processed in non-decreasing
// (trade_date, trade_time) order with input order breaking ties, so results
// are deterministic for a storage snapshot listed in import order. Stock
// positions match per symbol; option positions match per distinct contract.
//
// Match is a pure function of its input: it never mutates the given slice
// and holds no state between calls.
func Match(trades []models.Trade) Result {
	ordered := make([]models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TradeDate != ordered[j].TradeDate {
			return ordered[i].TradeDate < ordered[j].TradeDate
		}
		return ordered[i].TradeTime < ordered[j].TradeTime
	})

	queues := make(map[string][]*lot)
	var keyOrder []string // first-seen order, for deterministic open-lot output
	var result Result
	result.RealizedPnL = decimal.Zero

	for _, t := range ordered {
		key := t.ContractKey()
		if _, seen := queues[key]; !seen {
			keyOrder = append(keyOrder, key)
			queues[key] = nil
		}

		switch t.Action {
		case models.ActionBuy:
			queues[key] = append(queues[key], &lot{
				tradeID:           t.ID,
				symbol:            t.Symbol,
				securityType:      t.SecurityType,
				source:            t.Source,
				quantityRemaining: t.Quantity,
				originalQuantity:  t.Quantity,
				price:             t.Price,
				commission:        t.Commission,
				openDate:          t.TradeDate,
			})

		case models.ActionSell:
			remaining := t.Quantity
			sellQty := decimal.NewFromInt(t.Quantity)

			for remaining > 0 && len(queues[key]) > 0 {
				front := queues[key][0]
				if front.quantityRemaining <= 0 {
					// An empty lot can only come from a malformed snapshot;
					// consuming it keeps the loop finite.
					queues[key] = queues[key][1:]
					continue
				}
				matched := utils.MinInt64(remaining, front.quantityRemaining)
				matchedDec := decimal.NewFromInt(matched)

				sellAlloc := t.Commission.Mul(matchedDec).Div(sellQty)
				buyAlloc := front.commission.Mul(matchedDec).Div(decimal.NewFromInt(front.originalQuantity))
				allocated := sellAlloc.Add(buyAlloc)
				profit := t.Price.Sub(front.price).Mul(matchedDec).Sub(allocated)

				closed := ClosedLot{
					Symbol:       t.Symbol,
					ContractKey:  key,
					SecurityType: t.SecurityType,
					Quantity:     matched,
					OpenDate:     front.openDate,
					CloseDate:    t.TradeDate,
					BuyPrice:     front.price,
					SellPrice:    t.Price,
					Commission:   utils.Round2(allocated),
					Profit:       utils.Round2(profit),
					BuyTradeID:   front.tradeID,
					SellTradeID:  t.ID,
					Source:       front.source,
				}
				result.ClosedLots = append(result.ClosedLots, closed)
				result.RealizedPnL = result.RealizedPnL.Add(closed.Profit)

				remaining -= matched
				front.quantityRemaining -= matched
				if front.quantityRemaining == 0 {
					queues[key] = queues[key][1:]
				}
			}

			if remaining > 0 {
				result.ShortLegs = append(result.ShortLegs, ShortLeg{
					Symbol:      t.Symbol,
					ContractKey: key,
					Quantity:    remaining,
					SellDate:    t.TradeDate,
					SellPrice:   t.Price,
					SellTradeID: t.ID,
				})
			}
		}
	}

	for _, key := range keyOrder {
		for _, l := range queues[key] {
			result.OpenLots = append(result.OpenLots, OpenLot{
				Symbol:            l.symbol,
				ContractKey:       key,
				QuantityRemaining: l.quantityRemaining,
				Price:             l.price,
				OpenDate:          l.openDate,
				TradeID:           l.tradeID,
			})
		}
	}

	return result
}

// RealizedBySymbol sums closed-lot profit per symbol. Unmatched short legs
// are not part of any sum; callers surface them separately.
func (r *Result) RealizedBySymbol() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, cl := range r.ClosedLots {
		out[cl.Symbol] = out[cl.Symbol].Add(cl.Profit)
	}
	return out
}
