package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler, logger zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware(logger))
	r.Use(loggingMiddleware(logger))

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(requireUser)

	// Holdings and trades
	api.HandleFunc("/holdings", handler.ListHoldings).Methods("GET")
	api.HandleFunc("/holdings", handler.AddHolding).Methods("POST")
	api.HandleFunc("/holdings/{ticker}", handler.GetHolding).Methods("GET")
	api.HandleFunc("/holdings/{ticker}", handler.UpdateHolding).Methods("PATCH")
	api.HandleFunc("/holdings/{ticker}", handler.DeleteHolding).Methods("DELETE")
	api.HandleFunc("/holdings/{ticker}/trades", handler.AddTrade).Methods("POST")
	api.HandleFunc("/holdings/{ticker}/trades/{id}", handler.EditTrade).Methods("PUT")
	api.HandleFunc("/holdings/{ticker}/trades/{id}", handler.DeleteTrade).Methods("DELETE")
	api.HandleFunc("/holdings/{ticker}/trades/{id}/memo", handler.UpdateTradeMemo).Methods("PATCH")

	// Cash
	api.HandleFunc("/cash", handler.GetCash).Methods("GET")
	api.HandleFunc("/cash/deposit", handler.Deposit).Methods("POST")
	api.HandleFunc("/cash/withdraw", handler.Withdraw).Methods("POST")
	api.HandleFunc("/cash/history", handler.CashHistory).Methods("GET")

	// Memos
	api.HandleFunc("/memos", handler.ListMemos).Methods("GET")
	api.HandleFunc("/memos", handler.AddMemo).Methods("POST")
	api.HandleFunc("/memos/{id}", handler.UpdateMemo).Methods("PUT")
	api.HandleFunc("/memos/{id}", handler.DeleteMemo).Methods("DELETE")

	// Recompute and display
	api.HandleFunc("/weights/recalculate", handler.RecalculateWeights).Methods("POST")
	api.HandleFunc("/quotes/refresh", handler.RefreshQuotes).Methods("POST")
	api.HandleFunc("/summary", handler.Summary).Methods("GET")

	if handler.hub != nil {
		api.HandleFunc("/stream", handler.hub.ServeWS).Methods("GET")
	}

	return r
}
