package parsers

import (
	"fmt"
	"strings"

	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
)

// FutuAdapter parses Futu order exports. The vendor has shipped two known
// header revisions: a newer English order-status layout and an older Chinese
// fills layout. One adapter covers both.
type FutuAdapter struct{}

func NewFutuAdapter() *FutuAdapter { return &FutuAdapter{} }

func (a *FutuAdapter) Name() string { return "futu" }

var (
	futuNewSignature = []string{"order status", "symbol", "direction", "executed qty", "avg price", "order time"}
	futuOldSignature = []string{"成交日期", "成交时间", "证券代码", "交易方向", "成交数量", "成交价格"}
)

func (a *FutuAdapter) CanHandle(header []string) float64 {
	newScore := confidence(header, futuNewSignature)
	oldScore := confidence(header, futuOldSignature)
	if newScore > oldScore {
		return newScore
	}
	return oldScore
}

func (a *FutuAdapter) Parse(sheet *Sheet) ([]models.RawTradeRecord, []models.RowError) {
	if confidence(sheet.Header, futuNewSignature) >= confidence(sheet.Header, futuOldSignature) {
		return a.parseNew(sheet)
	}
	return a.parseOld(sheet)
}

// parseNew handles the English order-status revision. Only executed orders are
// trades; pending and cancelled rows are vendor noise and are dropped.
func (a *FutuAdapter) parseNew(sheet *Sheet) ([]models.RawTradeRecord, []models.RowError) {
	idx := indexHeader(sheet.Header)
	var records []models.RawTradeRecord
	var rowErrs []models.RowError

	for i, row := range sheet.Rows {
		if rowEmpty(row) {
			continue
		}
		status := idx.cell(row, "order status")
		if status != "已成交" && !strings.EqualFold(status, "filled") {
			logger.L.Debug("futu: dropping non-executed order row", "row", rowNumber(i), "status", status)
			continue
		}
		qty := idx.cell(row, "executed qty")
		if qty == "" || qty == "0" {
			rowErrs = append(rowErrs, models.RowError{Row: rowNumber(i), Reason: "executed quantity missing"})
			continue
		}

		orderTime := idx.cell(row, "order time")
		tradeDate, tradeTime := splitFutuDateTime(orderTime)

		raw := models.RawTradeRecord{
			Row:          rowNumber(i),
			TradeDate:    tradeDate,
			TradeTime:    tradeTime,
			Symbol:       idx.cell(row, "symbol"),
			SecurityName: idx.cell(row, "stock name"),
			Action:       normalizeAction(idx.cell(row, "direction")),
			Quantity:     qty,
			Price:        idx.cell(row, "avg price"),
			// Turnover includes the option contract multiplier, so the canonical
			// amount is left for the validator to derive from quantity x price.
			Broker: a.Name(),
		}
		if orderNo := idx.cell(row, "order no."); orderNo != "" {
			raw.Notes = fmt.Sprintf("order %s", orderNo)
		}
		applyOptionFields(&raw)
		records = append(records, raw)
	}
	return records, rowErrs
}

// parseOld handles the Chinese fills revision.
func (a *FutuAdapter) parseOld(sheet *Sheet) ([]models.RawTradeRecord, []models.RowError) {
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
			Symbol:       idx.cell(row, "证券代码"),
			SecurityName: idx.cell(row, "证券名称"),
			Action:       normalizeAction(idx.cell(row, "交易方向")),
			Quantity:     idx.cell(row, "成交数量"),
			Price:        idx.cell(row, "成交价格"),
			Amount:       idx.cell(row, "成交金额"),
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

// splitFutuDateTime splits Futu's "2025-06-13 16:03:19 ET" order time into
// date and time parts, tolerating a trailing exchange-timezone token.
func splitFutuDateTime(s string) (string, string) {
	s = strings.TrimSuffix(strings.TrimSpace(s), " ET")
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}
