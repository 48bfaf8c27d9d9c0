package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/storage"
	"github.com/username/tradefolio/backend/src/utils"
	"github.com/username/tradefolio/backend/src/validation"
)

// TradeHandler serves manual CRUD over the trade journal. Every write passes
// through the same normalization as imported rows, so hand-entered and
// imported trades obey identical invariants.
type TradeHandler struct {
	store        storage.TradeStore
	analyticsSvc services.AnalyticsServicer
}

func NewTradeHandler(store storage.TradeStore, analyticsSvc services.AnalyticsServicer) *TradeHandler {
	return &TradeHandler{store: store, analyticsSvc: analyticsSvc}
}

func filterFromQuery(r *http.Request) models.TradeFilter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.TradeFilter{
		Symbol:       q.Get("symbol"),
		SecurityType: q.Get("security_type"),
		Source:       q.Get("source"),
		StartDate:    q.Get("start_date"),
		EndDate:      q.Get("end_date"),
		Limit:        limit,
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.store.ListTrades(r.Context(), filterFromQuery(r))
	if err != nil {
		logger.L.Error("Error listing trades", "error", err)
		utils.SendJSONError(w, "Failed to retrieve trades", http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	utils.SendJSON(w, trades, http.StatusOK)
}

func (h *TradeHandler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return
	}
	trade, err := h.store.GetTrade(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.L.Error("Error fetching trade", "tradeID", id, "error", err)
		utils.SendJSONError(w, "Failed to retrieve trade", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, trade, http.StatusOK)
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var t models.Trade
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	t.ID = 0

	normalized, err := validation.NormalizeTrade(t)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.store.CreateTrade(r.Context(), normalized)
	if errors.Is(err, storage.ErrDuplicateTrade) {
		utils.SendJSONError(w, "An identical trade already exists", http.StatusConflict)
		return
	}
	if err != nil {
		logger.L.Error("Error creating trade", "symbol", normalized.Symbol, "error", err)
		utils.SendJSONError(w, "Failed to create trade", http.StatusInternalServerError)
		return
	}

	h.analyticsSvc.InvalidateCache()
	logger.L.Info("Trade created", "tradeID", created.ID, "symbol", created.Symbol)
	utils.SendJSON(w, created, http.StatusCreated)
}

func (h *TradeHandler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return
	}

	var update models.TradeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	current, err := h.store.GetTrade(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.L.Error("Error fetching trade for update", "tradeID", id, "error", err)
		utils.SendJSONError(w, "Failed to retrieve trade", http.StatusInternalServerError)
		return
	}

	// Partial update: apply only the fields present, then renormalize so
	// derived values (amount, net_amount, fingerprint) stay consistent.
	normalized, err := validation.NormalizeTrade(applyUpdate(current, update))
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.store.UpdateTrade(r.Context(), id, normalized)
	if errors.Is(err, storage.ErrDuplicateTrade) {
		utils.SendJSONError(w, "An identical trade already exists", http.StatusConflict)
		return
	}
	if err != nil {
		logger.L.Error("Error updating trade", "tradeID", id, "error", err)
		utils.SendJSONError(w, "Failed to update trade", http.StatusInternalServerError)
		return
	}

	h.analyticsSvc.InvalidateCache()
	logger.L.Info("Trade updated", "tradeID", id)
	utils.SendJSON(w, updated, http.StatusOK)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return
	}
	err = h.store.DeleteTrade(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.L.Error("Error deleting trade", "tradeID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	h.analyticsSvc.InvalidateCache()
	logger.L.Info("Trade deleted", "tradeID", id)
	w.WriteHeader(http.StatusNoContent)
}

func applyUpdate(t models.Trade, u models.TradeUpdate) models.Trade {
	if u.SecurityType != nil {
		t.SecurityType = *u.SecurityType
	}
	if u.Action != nil {
		t.Action = *u.Action
	}
	if u.Symbol != nil {
		t.Symbol = *u.Symbol
	}
	if u.SecurityName != nil {
		t.SecurityName = *u.SecurityName
	}
	if u.UnderlyingSymbol != nil {
		t.UnderlyingSymbol = *u.UnderlyingSymbol
	}
	if u.OptionType != nil {
		t.OptionType = *u.OptionType
	}
	if u.StrikePrice != nil {
		t.StrikePrice = *u.StrikePrice
	}
	if u.ExpirationDate != nil {
		t.ExpirationDate = *u.ExpirationDate
	}
	if u.TradeDate != nil {
		t.TradeDate = *u.TradeDate
	}
	if u.TradeTime != nil {
		t.TradeTime = *u.TradeTime
	}
	if u.Quantity != nil {
		t.Quantity = *u.Quantity
	}
	if u.Price != nil {
		t.Price = *u.Price
	}
	if u.Commission != nil {
		t.Commission = *u.Commission
	}
	if u.Source != nil {
		t.Source = *u.Source
	}
	if u.TradeRating != nil {
		t.TradeRating = *u.TradeRating
	}
	if u.TradeType != nil {
		t.TradeType = *u.TradeType
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.CloseDate != nil {
		t.CloseDate = *u.CloseDate
	}
	if u.ClosePrice != nil {
		t.ClosePrice = *u.ClosePrice
	}
	if u.CloseQuantity != nil {
		t.CloseQuantity = *u.CloseQuantity
	}
	if u.CloseReason != nil {
		t.CloseReason = *u.CloseReason
	}
	if u.Broker != nil {
		t.Broker = *u.Broker
	}
	if u.AccountID != nil {
		t.AccountID = *u.AccountID
	}
	return t
}
