package parsers

import (
	"github.com/username/tradefolio/backend/src/models"
)

// TigerAdapter parses Tiger Brokers fill exports (lower-case English headers).
type TigerAdapter struct{}

func NewTigerAdapter() *TigerAdapter { return &TigerAdapter{} }

func (a *TigerAdapter) Name() string { return "tiger" }

var tigerSignature = []string{"date", "time", "symbol", "side", "quantity", "price"}

func (a *TigerAdapter) CanHandle(header []string) float64 {
	// "side" is what separates Tiger's layout from the IB confirmation layout;
	// without it the remaining columns are too generic to claim.
	idx := indexHeader(header)
	if _, ok := idx["side"]; !ok {
		return 0
	}
	return confidence(header, tigerSignature)
}

func (a *TigerAdapter) Parse(sheet *Sheet) ([]models.RawTradeRecord, []models.RowError) {
	idx := indexHeader(sheet.Header)
	var records []models.RawTradeRecord

	for i, row := range sheet.Rows {
		if rowEmpty(row) {
			continue
		}
		raw := models.RawTradeRecord{
			Row:          rowNumber(i),
			TradeDate:    idx.cell(row, "date"),
			TradeTime:    idx.cell(row, "time"),
			Symbol:       idx.cell(row, "symbol"),
			SecurityName: idx.cell(row, "name"),
			Action:       normalizeAction(idx.cell(row, "side")),
			Quantity:     idx.cell(row, "quantity"),
			Price:        idx.cell(row, "price"),
			Amount:       idx.cell(row, "amount"),
			Commission:   idx.cell(row, "commission"),
			AccountID:    idx.cell(row, "account"),
			Notes:        idx.cell(row, "notes"),
			Broker:       a.Name(),
		}
		applyOptionFields(&raw)
		records = append(records, raw)
	}
	return records, nil
}
