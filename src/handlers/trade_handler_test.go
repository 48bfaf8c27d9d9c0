package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradefolio/backend/src/config"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/storage"
)

func init() {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		Port:               "8080",
		MaxUploadSizeBytes: 16 << 20,
		SymbolRollupTopN:   10,
		ImportTimeout:      time.Minute,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *storage.SQLiteStore) {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	analyticsSvc := services.NewAnalyticsService(store)
	tradeHandler := NewTradeHandler(store, analyticsSvc)
	analyticsHandler := NewAnalyticsHandler(analyticsSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/trades", tradeHandler.HandleListTrades)
	mux.HandleFunc("POST /api/trades", tradeHandler.HandleCreateTrade)
	mux.HandleFunc("GET /api/trades/{id}", tradeHandler.HandleGetTrade)
	mux.HandleFunc("PUT /api/trades/{id}", tradeHandler.HandleUpdateTrade)
	mux.HandleFunc("DELETE /api/trades/{id}", tradeHandler.HandleDeleteTrade)
	mux.HandleFunc("GET /api/analytics/statistics", analyticsHandler.HandleStatistics)
	mux.HandleFunc("GET /api/analytics/ratings", analyticsHandler.HandleRatingDistribution)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func postTrade(t *testing.T, srv *httptest.Server, trade models.Trade) models.Trade {
	t.Helper()

	body, err := json.Marshal(trade)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/trades", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Trade
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func sampleTrade() models.Trade {
	return models.Trade{
		SecurityType: models.SecurityStock,
		Action:       models.ActionBuy,
		Symbol:       "AAPL",
		TradeDate:    "2024-01-02",
		TradeTime:    "09:30:00",
		Quantity:     100,
		Price:        decimal.NewFromFloat(10.50),
		Commission:   decimal.NewFromFloat(1.99),
	}
}

func TestCreateAndGetTradeEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	created := postTrade(t, srv, sampleTrade())
	assert.NotZero(t, created.ID)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(1050)))
	assert.True(t, created.NetAmount.Equal(decimal.NewFromFloat(1051.99)))

	resp, err := http.Get(fmt.Sprintf("%s/api/trades/%d", srv.URL, created.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Trade
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "AAPL", got.Symbol)
}

func TestCreateTradeRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	bad := sampleTrade()
	bad.Action = "HOLD"
	body, _ := json.Marshal(bad)

	resp, err := http.Post(srv.URL+"/api/trades", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateDuplicateTradeConflicts(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	postTrade(t, srv, sampleTrade())

	body, _ := json.Marshal(sampleTrade())
	resp, err := http.Post(srv.URL+"/api/trades", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateTradeRecomputesDerivedFields(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	created := postTrade(t, srv, sampleTrade())

	patch := []byte(`{"price": "20.00", "trade_rating": 4}`)
	req, err := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/api/trades/%d", srv.URL, created.ID), bytes.NewReader(patch))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Trade
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 4, updated.TradeRating)
	assert.Equal(t, "AAPL", updated.Symbol, "unpatched fields survive")
}

func TestUpdateTradeToStockClearsOptionFields(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	option := sampleTrade()
	option.SecurityType = models.SecurityOption
	option.Symbol = "AVGO0919C"
	option.UnderlyingSymbol = "AVGO"
	option.OptionType = models.OptionCall
	option.StrikePrice = decimal.NewFromInt(170)
	option.ExpirationDate = "2025-09-19"
	created := postTrade(t, srv, option)

	patch := []byte(`{"security_type": "STOCK"}`)
	req, err := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/api/trades/%d", srv.URL, created.ID), bytes.NewReader(patch))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Trade
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Empty(t, updated.UnderlyingSymbol)
	assert.Empty(t, updated.OptionType)
	assert.True(t, updated.StrikePrice.IsZero())
}

func TestDeleteTradeEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	created := postTrade(t, srv, sampleTrade())

	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/trades/%d", srv.URL, created.ID), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(fmt.Sprintf("%s/api/trades/%d", srv.URL, created.ID))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTradesFilterQuery(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	postTrade(t, srv, sampleTrade())

	msft := sampleTrade()
	msft.Symbol = "MSFT"
	msft.TradeDate = "2024-02-01"
	postTrade(t, srv, msft)

	resp, err := http.Get(srv.URL + "/api/trades?symbol=MSFT")
	require.NoError(t, err)
	defer resp.Body.Close()

	var trades []models.Trade
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trades))
	require.Len(t, trades, 1)
	assert.Equal(t, "MSFT", trades[0].Symbol)
}

func TestStatisticsEndpointReflectsWrites(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rated := sampleTrade()
	rated.TradeRating = 4
	postTrade(t, srv, rated)

	resp, err := http.Get(srv.URL + "/api/analytics/statistics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		TotalTrades int `json:"total_trades"`
		RatedTrades int `json:"rated_trades"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalTrades)
	assert.Equal(t, 1, stats.RatedTrades)
}

func TestInvalidTradeIDPath(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/trades/not-a-number")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
