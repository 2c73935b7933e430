package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/trogers1052/portfolio-tracker/internal/display"
	"github.com/trogers1052/portfolio-tracker/internal/models"
	"github.com/trogers1052/portfolio-tracker/internal/portfolio"
	"github.com/trogers1052/portfolio-tracker/internal/valuation"
)

// PortfolioService is the set of portfolio operations exposed over HTTP
type PortfolioService interface {
	ListHoldings(userID string) ([]*models.Holding, error)
	GetHolding(userID, ticker string) (*models.Holding, error)
	AddHolding(ctx context.Context, userID string, in portfolio.HoldingInput) (*models.Holding, error)
	UpdateHolding(ctx context.Context, userID, ticker string, in portfolio.HoldingUpdate) (*models.Holding, error)
	DeleteHolding(ctx context.Context, userID, ticker string) error

	AddTrade(ctx context.Context, userID, ticker string, in portfolio.TradeInput) (*models.Trade, error)
	EditTrade(ctx context.Context, userID, ticker, tradeID string, in portfolio.TradeInput) (*models.Trade, error)
	UpdateTradeMemo(ctx context.Context, userID, ticker, tradeID, memo string) (*models.Trade, error)
	DeleteTrade(ctx context.Context, userID, ticker, tradeID string) error

	GetCash(userID string) ([]*models.CashPosition, error)
	CashHistory(userID, month string) ([]*models.CashHistoryEntry, error)
	Deposit(ctx context.Context, userID string, in portfolio.CashInput) (*models.CashPosition, error)
	Withdraw(ctx context.Context, userID string, in portfolio.CashInput) (*models.CashPosition, error)

	ListMemos(userID string) ([]*models.Memo, error)
	AddMemo(ctx context.Context, userID string, in portfolio.MemoInput) (*models.Memo, error)
	UpdateMemo(ctx context.Context, userID, id string, in portfolio.MemoInput) (*models.Memo, error)
	DeleteMemo(ctx context.Context, userID, id string) error

	RecalculateWeights(ctx context.Context, userID string) error
	RefreshQuotes(ctx context.Context, userID string) error
	Summary(ctx context.Context, userID string) (*valuation.Summary, error)
}

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	Ping() error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc    PortfolioService
	db     HealthChecker
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new Handler. db and hub may be nil.
func NewHandler(svc PortfolioService, db HealthChecker, hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		db:     db,
		hub:    hub,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

type holdingResponse struct {
	*models.Holding
	Display display.HoldingView `json:"display"`
}

func withDisplay(h *models.Holding) holdingResponse {
	return holdingResponse{Holding: h, Display: display.Holding(h)}
}

// ListHoldings handles GET /holdings
func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.svc.ListHoldings(userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]holdingResponse, 0, len(holdings))
	for _, hold := range holdings {
		out = append(out, withDisplay(hold))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetHolding handles GET /holdings/{ticker}
func (h *Handler) GetHolding(w http.ResponseWriter, r *http.Request) {
	hold, err := h.svc.GetHolding(userID(r), mux.Vars(r)["ticker"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, withDisplay(hold))
}

// AddHolding handles POST /holdings
func (h *Handler) AddHolding(w http.ResponseWriter, r *http.Request) {
	var req portfolio.HoldingInput
	if !decodeBody(w, r, &req) {
		return
	}

	hold, err := h.svc.AddHolding(r.Context(), userID(r), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, withDisplay(hold))
}

// UpdateHolding handles PATCH /holdings/{ticker}
func (h *Handler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	var req portfolio.HoldingUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	hold, err := h.svc.UpdateHolding(r.Context(), userID(r), mux.Vars(r)["ticker"], req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, withDisplay(hold))
}

// DeleteHolding handles DELETE /holdings/{ticker}
func (h *Handler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteHolding(r.Context(), userID(r), mux.Vars(r)["ticker"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTrade handles POST /holdings/{ticker}/trades
func (h *Handler) AddTrade(w http.ResponseWriter, r *http.Request) {
	var req portfolio.TradeInput
	if !decodeBody(w, r, &req) {
		return
	}

	trade, err := h.svc.AddTrade(r.Context(), userID(r), mux.Vars(r)["ticker"], req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, trade)
}

// EditTrade handles PUT /holdings/{ticker}/trades/{id}
func (h *Handler) EditTrade(w http.ResponseWriter, r *http.Request) {
	var req portfolio.TradeInput
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	trade, err := h.svc.EditTrade(r.Context(), userID(r), vars["ticker"], vars["id"], req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

// UpdateTradeMemo handles PATCH /holdings/{ticker}/trades/{id}/memo
func (h *Handler) UpdateTradeMemo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Memo string `json:"memo"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	trade, err := h.svc.UpdateTradeMemo(r.Context(), userID(r), vars["ticker"], vars["id"], req.Memo)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

// DeleteTrade handles DELETE /holdings/{ticker}/trades/{id}
func (h *Handler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteTrade(r.Context(), userID(r), vars["ticker"], vars["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCash handles GET /cash
func (h *Handler) GetCash(w http.ResponseWriter, r *http.Request) {
	cash, err := h.svc.GetCash(userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cash)
}

// CashHistory handles GET /cash/history?month=YYYY-MM
func (h *Handler) CashHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.CashHistory(userID(r), r.URL.Query().Get("month"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*models.CashHistoryEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// Deposit handles POST /cash/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveCash(w, r, h.svc.Deposit)
}

// Withdraw handles POST /cash/withdraw
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveCash(w, r, h.svc.Withdraw)
}

func (h *Handler) moveCash(w http.ResponseWriter, r *http.Request, op func(context.Context, string, portfolio.CashInput) (*models.CashPosition, error)) {
	var req portfolio.CashInput
	if !decodeBody(w, r, &req) {
		return
	}

	position, err := op(r.Context(), userID(r), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, position)
}

// ListMemos handles GET /memos
func (h *Handler) ListMemos(w http.ResponseWriter, r *http.Request) {
	memos, err := h.svc.ListMemos(userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if memos == nil {
		memos = []*models.Memo{}
	}
	respondJSON(w, http.StatusOK, memos)
}

// AddMemo handles POST /memos
func (h *Handler) AddMemo(w http.ResponseWriter, r *http.Request) {
	var req portfolio.MemoInput
	if !decodeBody(w, r, &req) {
		return
	}

	memo, err := h.svc.AddMemo(r.Context(), userID(r), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, memo)
}

// UpdateMemo handles PUT /memos/{id}
func (h *Handler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	var req portfolio.MemoInput
	if !decodeBody(w, r, &req) {
		return
	}

	memo, err := h.svc.UpdateMemo(r.Context(), userID(r), mux.Vars(r)["id"], req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, memo)
}

// DeleteMemo handles DELETE /memos/{id}
func (h *Handler) DeleteMemo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMemo(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecalculateWeights handles POST /weights/recalculate
func (h *Handler) RecalculateWeights(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RecalculateWeights(r.Context(), userID(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ListHoldings(w, r)
}

// RefreshQuotes handles POST /quotes/refresh
func (h *Handler) RefreshQuotes(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RefreshQuotes(r.Context(), userID(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ListHoldings(w, r)
}

type summaryResponse struct {
	*valuation.Summary
	Display display.SummaryView `json:"display"`
}

// Summary handles GET /summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context(), userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summaryResponse{Summary: s, Display: display.Summary(*s)})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			h.logger.Error().Err(err).Msg("Health check failed")
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeBody decodes a JSON request body into dst, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
