package handlers

import (
	"net/http"
	"strconv"

	"github.com/username/tradefolio/backend/src/config"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/utils"
)

// AnalyticsHandler serves the read-only report endpoints. All of them accept
// the same filter query parameters as the trade list.
type AnalyticsHandler struct {
	analyticsSvc services.AnalyticsServicer
}

func NewAnalyticsHandler(analyticsSvc services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

func (h *AnalyticsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analyticsSvc.ComputeStatistics(r.Context(), filterFromQuery(r))
	if err != nil {
		logger.L.Error("Error computing statistics", "error", err)
		utils.SendJSONError(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, stats, http.StatusOK)
}

func (h *AnalyticsHandler) HandleMonthlyRollup(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.analyticsSvc.ComputeMonthlyRollup(r.Context(), filterFromQuery(r))
	if err != nil {
		logger.L.Error("Error computing monthly rollup", "error", err)
		utils.SendJSONError(w, "Failed to compute monthly rollup", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, buckets, http.StatusOK)
}

func (h *AnalyticsHandler) HandleSymbolRollup(w http.ResponseWriter, r *http.Request) {
	topN, _ := strconv.Atoi(r.URL.Query().Get("top"))
	if topN <= 0 {
		topN = config.Cfg.SymbolRollupTopN
	}
	buckets, err := h.analyticsSvc.ComputeSymbolRollup(r.Context(), filterFromQuery(r), topN)
	if err != nil {
		logger.L.Error("Error computing symbol rollup", "error", err)
		utils.SendJSONError(w, "Failed to compute symbol rollup", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, buckets, http.StatusOK)
}

func (h *AnalyticsHandler) HandleSourceRollup(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.analyticsSvc.ComputeSourceRollup(r.Context(), filterFromQuery(r))
	if err != nil {
		logger.L.Error("Error computing source rollup", "error", err)
		utils.SendJSONError(w, "Failed to compute source rollup", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, buckets, http.StatusOK)
}

func (h *AnalyticsHandler) HandleRatingDistribution(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.analyticsSvc.ComputeRatingDistribution(r.Context(), filterFromQuery(r))
	if err != nil {
		logger.L.Error("Error computing rating distribution", "error", err)
		utils.SendJSONError(w, "Failed to compute rating distribution", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, buckets, http.StatusOK)
}

func (h *AnalyticsHandler) HandlePositions(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsSvc.ComputePositions(r.Context(), filterFromQuery(r))
	if err != nil {
		logger.L.Error("Error computing positions", "error", err)
		utils.SendJSONError(w, "Failed to compute positions", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.SendJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
