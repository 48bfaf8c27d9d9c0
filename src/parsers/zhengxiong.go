package parsers

import (
	"strings"

	"github.com/username/tradefolio/backend/src/models"
)

// ZhengxiongAdapter parses the generic journal layout, named after the
// spreadsheet it was first written for. Columns are matched by synonym rather
// than fixed position, and the layout is the only one that carries the full
// annotation set (message source, rating, trade type, closure columns) next
// to the execution facts.
type ZhengxiongAdapter struct{}

func NewZhengxiongAdapter() *ZhengxiongAdapter { return &ZhengxiongAdapter{} }

func (a *ZhengxiongAdapter) Name() string { return "zhengxiong" }

// columnSynonyms maps canonical field names to the header spellings seen
// across journal revisions.
var columnSynonyms = map[string][]string{
	"date":            {"日期", "date", "成交日期", "交易日期"},
	"time":            {"时间", "time", "成交时间", "交易时间"},
	"symbol":          {"代码", "symbol", "股票代码", "证券代码", "标的"},
	"name":            {"名称", "name", "股票名称", "证券名称"},
	"action":          {"方向", "action", "交易方向", "买卖方向", "side", "操作"},
	"quantity":        {"数量", "quantity", "成交数量", "交易数量"},
	"price":           {"价格", "price", "成交价", "成交价格"},
	"amount":          {"金额", "amount", "成交额", "成交金额"},
	"commission":      {"手续费", "commission", "佣金", "费用"},
	"strike_price":    {"行权价", "strike", "strike price"},
	"expiration_date": {"到期日", "expiration", "expiration date"},
	"option_type":     {"期权类型", "option type"},
	"source":          {"消息来源", "来源", "source"},
	"trade_rating":    {"交易评分", "评分", "rating"},
	"trade_type":      {"交易类型", "trade type"},
	"notes":           {"笔记", "备注", "notes"},
	"close_date":      {"平仓日期", "close date"},
	"close_price":     {"平仓价格", "close price"},
	"close_quantity":  {"平仓数量", "close quantity"},
	"close_reason":    {"平仓理由", "close reason"},
	"account":         {"账户", "account"},
}

var requiredColumns = []string{"date", "symbol", "action", "quantity", "price"}

// mapColumns resolves each canonical field to a header position, if any
// synonym is present.
func mapColumns(header []string) map[string]int {
	idx := indexHeader(header)
	mapped := make(map[string]int, len(columnSynonyms))
	for field, names := range columnSynonyms {
		for _, name := range names {
			if i, ok := idx[normalizeHeader(name)]; ok {
				mapped[field] = i
				break
			}
		}
	}
	return mapped
}

// CanHandle scores required-column coverage, scaled down so a vendor-specific
// adapter always outranks the generic mapping on its own files.
func (a *ZhengxiongAdapter) CanHandle(header []string) float64 {
	mapped := mapColumns(header)
	matched := 0
	for _, field := range requiredColumns {
		if _, ok := mapped[field]; ok {
			matched++
		}
	}
	return 0.9 * float64(matched) / float64(len(requiredColumns))
}

func (a *ZhengxiongAdapter) Parse(sheet *Sheet) ([]models.RawTradeRecord, []models.RowError) {
	mapped := mapColumns(sheet.Header)
	get := func(row []string, field string) string {
		i, ok := mapped[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.RawTradeRecord
	for i, row := range sheet.Rows {
		if rowEmpty(row) {
			continue
		}
		raw := models.RawTradeRecord{
			Row:            rowNumber(i),
			TradeDate:      get(row, "date"),
			TradeTime:      get(row, "time"),
			Symbol:         get(row, "symbol"),
			SecurityName:   get(row, "name"),
			Action:         normalizeAction(get(row, "action")),
			Quantity:       get(row, "quantity"),
			Price:          get(row, "price"),
			Amount:         get(row, "amount"),
			Commission:     get(row, "commission"),
			StrikePrice:    get(row, "strike_price"),
			ExpirationDate: get(row, "expiration_date"),
			OptionType:     get(row, "option_type"),
			Source:         normalizeSourceTag(get(row, "source")),
			TradeRating:    get(row, "trade_rating"),
			TradeType:      normalizeTradeTypeTag(get(row, "trade_type")),
			Notes:          get(row, "notes"),
			CloseDate:      get(row, "close_date"),
			ClosePrice:     get(row, "close_price"),
			CloseQuantity:  get(row, "close_quantity"),
			CloseReason:    normalizeCloseReasonTag(get(row, "close_reason")),
			AccountID:      get(row, "account"),
			Broker:         a.Name(),
		}
		applyOptionFields(&raw)
		records = append(records, raw)
	}
	return records, nil
}

// The journal records annotations as decorated Chinese labels; they are
// normalized to the stable tag set here so aggregation groups correctly.
func normalizeSourceTag(s string) string {
	switch strings.TrimSpace(s) {
	case "":
		return ""
	case "🐳巨鲸", "巨鲸":
		return "whale"
	case "🏫社区", "社区":
		return "community"
	case "✅判断", "判断":
		return "judgment"
	case "🛜社交媒体", "社交媒体":
		return "social_media"
	case "📰新闻", "新闻":
		return "news"
	case "📊技术分析", "技术分析":
		return "technical"
	case "其他":
		return "other"
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

func normalizeTradeTypeTag(s string) string {
	switch strings.TrimSpace(s) {
	case "":
		return ""
	case "日内交易":
		return "intraday"
	case "短线交易":
		return "short_term"
	case "波段交易":
		return "swing"
	case "长线投资":
		return "long_term"
	case "套利":
		return "arbitrage"
	case "其他":
		return "other"
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

func normalizeCloseReasonTag(s string) string {
	switch strings.TrimSpace(s) {
	case "":
		return ""
	case "✅止盈", "止盈":
		return "take_profit"
	case "❌止损", "止损":
		return "stop_loss"
	case "⬆️做T":
		return "scale_up"
	case "⬇️做T":
		return "scale_down"
	case "📅到期", "到期":
		return "expiration"
	case "📰突发消息", "突发消息":
		return "breaking_news"
	case "💰资金需求", "资金需求":
		return "cash_need"
	case "其他":
		return "other"
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}
