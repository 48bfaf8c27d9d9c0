package parsers

import (
	"strings"

	"github.com/username/tradefolio/backend/src/models"
)

// Adapter parses one vendor's spreadsheet dialect into raw trade records.
// Implementations are stateless; the pipeline selects one per file either by
// an explicit format hint or by CanHandle confidence scoring.
type Adapter interface {
	// Name is the stable format identifier ("futu", "tiger", ...), also used
	// as the default broker tag on records that carry none.
	Name() string
	// CanHandle scores how confidently this adapter recognizes the header row,
	// in [0, 1]. 1 means every signature column is present.
	CanHandle(header []string) float64
	// Parse maps the sheet's data rows to raw records. One malformed row never
	// aborts the file; it is returned as a RowError while valid rows continue.
	Parse(sheet *Sheet) ([]models.RawTradeRecord, []models.RowError)
}

// headerIndex maps normalized header names to their column positions.
type headerIndex map[string]int

func indexHeader(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// confidence is the fraction of signature columns present in the header.
func confidence(header []string, signature []string) float64 {
	idx := indexHeader(header)
	matched := 0
	for _, col := range signature {
		if _, ok := idx[normalizeHeader(col)]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(signature))
}

// cell returns the named column's value for a row, or "" when the column is
// absent or the row is short (vendors pad trailing columns inconsistently).
func (idx headerIndex) cell(row []string, column string) string {
	i, ok := idx[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// normalizeAction maps vendor buy/sell wording onto the canonical actions.
// Unknown values pass through for the validator to reject with the row index.
func normalizeAction(action string) string {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "BUY", "BOUGHT", "PURCHASE", "买", "买入":
		return models.ActionBuy
	case "SELL", "SOLD", "SALE", "卖", "卖出":
		return models.ActionSell
	default:
		return strings.ToUpper(strings.TrimSpace(action))
	}
}

// rowEmpty reports whether a spreadsheet row has no content at all. Exports
// routinely carry blank trailing rows; these are not data and not errors.
func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
