package parsers

import (
	"github.com/username/tradefolio/backend/src/models"
)

// SnowballAdapter parses Snowball (雪盈) fill exports (Chinese headers).
type SnowballAdapter struct{}

func NewSnowballAdapter() *SnowballAdapter { return &SnowballAdapter{} }

func (a *SnowballAdapter) Name() string { return "snowball" }

var snowballSignature = []string{"成交日期", "股票代码", "方向", "数量", "成交价"}

func (a *SnowballAdapter) CanHandle(header []string) float64 {
	return confidence(header, snowballSignature)
}

func (a *SnowballAdapter) Parse(sheet *Sheet) ([]models.RawTradeRecord, []models.RowError) {
	idx := indexHeader(sheet.Header)
	var records []models.RawTradeRecord

	for i, row := range sheet.Rows {
		if rowEmpty(row) {
			continue
		}
		raw := models.RawTradeRecord{
			Row:          rowNumber(i),
			TradeDate:    idx.cell(row, "成交日期"),
			TradeTime:    idx.cell(row, "成交时间"),
			Symbol:       idx.cell(row, "股票代码"),
			SecurityName: idx.cell(row, "股票名称"),
			Action:       normalizeAction(idx.cell(row, "方向")),
			Quantity:     idx.cell(row, "数量"),
			Price:        idx.cell(row, "成交价"),
			Amount:       idx.cell(row, "成交额"),
			Commission:   idx.cell(row, "手续费"),
			AccountID:    idx.cell(row, "账户"),
			Notes:        idx.cell(row, "备注"),
			Broker:       a.Name(),
		}
		applyOptionFields(&raw)
		records = append(records, raw)
	}
	return records, nil
}
