package parsers

import (
	"strings"

	"github.com/username/tradefolio/backend/src/models"
)

// IBKRAdapter parses Interactive Brokers trade-confirmation exports
// (capitalized English headers). Quantities arrive signed (negative on SELL);
// the sign is folded into the action and the magnitude kept.
type IBKRAdapter struct{}

func NewIBKRAdapter() *IBKRAdapter { return &IBKRAdapter{} }

func (a *IBKRAdapter) Name() string { return "ibkr" }

var ibkrSignature = []string{"date", "time", "symbol", "action", "quantity", "price"}

func (a *IBKRAdapter) CanHandle(header []string) float64 {
	idx := indexHeader(header)
	if _, ok := idx["action"]; !ok {
		return 0
	}
	return confidence(header, ibkrSignature)
}

func (a *IBKRAdapter) Parse(sheet *Sheet) ([]models.RawTradeRecord, []models.RowError) {
	idx := indexHeader(sheet.Header)
	var records []models.RawTradeRecord

	for i, row := range sheet.Rows {
		if rowEmpty(row) {
			continue
		}
		action := normalizeAction(idx.cell(row, "action"))
		quantity := idx.cell(row, "quantity")
		if strings.HasPrefix(quantity, "-") {
			quantity = strings.TrimPrefix(quantity, "-")
			if action == "" {
				action = models.ActionSell
			}
		}
		commission := strings.TrimPrefix(idx.cell(row, "commission"), "-")

		raw := models.RawTradeRecord{
			Row:          rowNumber(i),
			TradeDate:    idx.cell(row, "date"),
			TradeTime:    idx.cell(row, "time"),
			Symbol:       idx.cell(row, "symbol"),
			SecurityName: idx.cell(row, "description"),
			Action:       action,
			Quantity:     quantity,
			Price:        idx.cell(row, "price"),
			Amount:       strings.TrimPrefix(idx.cell(row, "amount"), "-"),
			Commission:   commission,
			AccountID:    idx.cell(row, "account"),
			Notes:        idx.cell(row, "notes"),
			Broker:       a.Name(),
		}
		applyOptionFields(&raw)
		records = append(records, raw)
	}
	return records, nil
}
