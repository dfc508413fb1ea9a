package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"trade-journal-go/internal/bubbles"
	"trade-journal-go/internal/chart"
	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/timeframe"

	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log    *zap.Logger
	ledger *ledger.Ledger
	store  bubbles.StoreClient
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, led *ledger.Ledger, store bubbles.StoreClient) *APIHandler {
	return &APIHandler{log: log, ledger: led, store: store}
}

// TradesHandler returns all imported trades, newest first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.ledger.AllTrades()
	if err != nil {
		h.log.Error("Failed to get trades from ledger", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

// SyncRunsHandler returns recent sync batches, newest first.
func (h *APIHandler) SyncRunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := h.ledger.RecentRuns(50)
	if err != nil {
		h.log.Error("Failed to get sync runs from ledger", zap.Error(err))
		http.Error(w, "Failed to get sync runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// OverlayRequest describes one chart view: the candles the widget is
// currently rendering and the pixel viewport to project into.
type OverlayRequest struct {
	Symbol    string               `json:"symbol"`
	Timeframe string               `json:"timeframe"`
	Candles   []chart.CandleBucket `json:"candles"`
	Viewport  chart.Viewport       `json:"viewport"`
}

// OverlayHandler computes the render groups for a chart view. The chart
// posts its candle set and viewport; annotations come from the store.
func (h *APIHandler) OverlayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req OverlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" || timeframe.Rank(req.Timeframe) < 0 {
		http.Error(w, "Unknown symbol or timeframe", http.StatusBadRequest)
		return
	}

	annotations, err := h.store.ListAnnotations(r.Context(), req.Symbol)
	if err != nil {
		h.log.Error("Failed to load annotations", zap.String("symbol", req.Symbol), zap.Error(err))
		http.Error(w, "Failed to load annotations", http.StatusBadGateway)
		return
	}

	groups := chart.BuildOverlay(chart.OverlayInput{
		Symbol:      req.Symbol,
		Timeframe:   req.Timeframe,
		Annotations: annotations,
		Candles:     req.Candles,
		Projector:   chart.NewLinearProjector(req.Viewport),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(groups)
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
