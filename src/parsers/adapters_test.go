package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradefolio/backend/src/models"
)

func TestFutuParseNewDropsNonExecutedOrders(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Header: []string{"Order Status", "Symbol", "Stock Name", "Direction", "Executed Qty", "Avg Price", "Order Time", "Order No."},
		Rows: [][]string{
			{"已成交", "AAPL", "Apple Inc", "买入", "100", "185.50", "2025-06-13 16:03:19 ET", "12345"},
			{"已撤单", "TSLA", "Tesla", "买入", "0", "200.00", "2025-06-13 16:05:00 ET", "12346"},
			{"Filled", "MSFT", "Microsoft", "SELL", "50", "430.00", "2025-06-14 09:31:00 ET", "12347"},
		},
	}

	records, rowErrs := NewFutuAdapter().Parse(sheet)
	require.Len(t, records, 2)
	assert.Empty(t, rowErrs)

	assert.Equal(t, "AAPL", records[0].Symbol)
	assert.Equal(t, "BUY", records[0].Action)
	assert.Equal(t, "2025-06-13", records[0].TradeDate)
	assert.Equal(t, "16:03:19", records[0].TradeTime)
	assert.Equal(t, "order 12345", records[0].Notes)
	assert.Equal(t, "futu", records[0].Broker)

	assert.Equal(t, "MSFT", records[1].Symbol)
	assert.Equal(t, "SELL", records[1].Action)
}

func TestFutuParseNewReportsMissingExecutedQty(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Header: []string{"Order Status", "Symbol", "Direction", "Executed Qty", "Avg Price", "Order Time"},
		Rows: [][]string{
			{"已成交", "AAPL", "买入", "", "185.50", "2025-06-13 16:03:19 ET"},
		},
	}

	records, rowErrs := NewFutuAdapter().Parse(sheet)
	assert.Empty(t, records)
	require.Len(t, rowErrs, 1)
	assert.Equal(t, 2, rowErrs[0].Row)
}

func TestFutuParseOldChineseColumns(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Header: []string{"成交日期", "成交时间", "证券代码", "证券名称", "交易方向", "成交数量", "成交价格", "成交金额", "手续费", "账户"},
		Rows: [][]string{
			{"2024-03-05", "10:15:00", "AAPL", "苹果", "卖出", "100", "170.00", "17000.00", "1.50", "主账户"},
		},
	}

	records, rowErrs := NewFutuAdapter().Parse(sheet)
	assert.Empty(t, rowErrs)
	require.Len(t, records, 1)

	assert.Equal(t, "SELL", records[0].Action)
	assert.Equal(t, "17000.00", records[0].Amount)
	assert.Equal(t, "1.50", records[0].Commission)
	assert.Equal(t, "主账户", records[0].AccountID)
}

func TestIBKRParseFoldsSignedQuantity(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Header: []string{"Date", "Time", "Symbol", "Action", "Quantity", "Price", "Commission", "Amount"},
		Rows: [][]string{
			{"2024-03-05", "10:15:00", "AAPL", "", "-100", "170.00", "-1.00", "-17000.00"},
			{"2024-03-06", "10:15:00", "MSFT", "BOT", "50", "400.00", "1.00", "20000.00"},
		},
	}

	records, rowErrs := NewIBKRAdapter().Parse(sheet)
	assert.Empty(t, rowErrs)
	require.Len(t, records, 2)

	assert.Equal(t, "SELL", records[0].Action)
	assert.Equal(t, "100", records[0].Quantity)
	assert.Equal(t, "1.00", records[0].Commission)
	assert.Equal(t, "17000.00", records[0].Amount)
}

func TestZhengxiongParseFullAnnotations(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Header: []string{"日期", "时间", "代码", "名称", "方向", "数量", "价格", "手续费", "消息来源", "交易评分", "交易类型", "平仓日期", "平仓价格", "平仓数量", "平仓理由", "备注"},
		Rows: [][]string{
			{"2024-03-05", "10:15:00", "AAPL", "苹果", "买入", "100", "170.00", "1.00", "🐳巨鲸", "4", "波段交易", "2024-04-01", "185.00", "100", "✅止盈", "earnings play"},
		},
	}

	records, rowErrs := NewZhengxiongAdapter().Parse(sheet)
	assert.Empty(t, rowErrs)
	require.Len(t, records, 1)
	r := records[0]

	assert.Equal(t, "BUY", r.Action)
	assert.Equal(t, "whale", r.Source)
	assert.Equal(t, "4", r.TradeRating)
	assert.Equal(t, "swing", r.TradeType)
	assert.Equal(t, "take_profit", r.CloseReason)
	assert.Equal(t, "2024-04-01", r.CloseDate)
	assert.Equal(t, "185.00", r.ClosePrice)
	assert.Equal(t, "earnings play", r.Notes)
}

func TestZhengxiongParseOptionColumns(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Header: []string{"日期", "代码", "方向", "数量", "价格", "行权价", "到期日", "期权类型", "金额"},
		Rows: [][]string{
			{"2024-03-05", "AVGO0919C", "买入", "2", "3.50", "170", "2025-09-19", "看涨", "700.00"},
		},
	}

	records, _ := NewZhengxiongAdapter().Parse(sheet)
	require.Len(t, records, 1)
	r := records[0]

	assert.Equal(t, models.SecurityOption, r.SecurityType)
	assert.Equal(t, "AVGO", r.UnderlyingSymbol)
	assert.Equal(t, models.OptionCall, r.OptionType)
	assert.Equal(t, "170", r.StrikePrice)
	assert.Empty(t, r.Amount, "vendor option amounts are dropped")
}

func TestAdaptersSkipEmptyRows(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Header: []string{"date", "time", "symbol", "side", "quantity", "price"},
		Rows: [][]string{
			{"", "", "", "", "", ""},
			{"2024-03-05", "10:15:00", "AAPL", "BUY", "100", "170.00"},
		},
	}

	records, _ := NewTigerAdapter().Parse(sheet)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Row)
}
