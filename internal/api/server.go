// Package api exposes the broker simulation over a local JSON API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"star-broker/internal/clock"
	"star-broker/internal/config"
	"star-broker/internal/content"
	"star-broker/internal/intel"
	"star-broker/internal/market"
	"star-broker/internal/state"
	"star-broker/internal/trade"
)

// Server is the HTTP API server that connects the stores, the exchange, and
// the intel and trade services.
type Server struct {
	cfg      *config.Config
	store    *state.Store
	exchange *market.Exchange
	clock    *clock.Clock
	pricer   *intel.Pricer
	deals    *intel.DealService
	trades   *trade.Service
	catalog  *content.Catalog

	// persist, when set, flushes the save state after mutating requests.
	persist func()
}

// NewServer wires a server over the shared simulation services.
func NewServer(cfg *config.Config, store *state.Store, exchange *market.Exchange, clk *clock.Clock,
	pricer *intel.Pricer, deals *intel.DealService, trades *trade.Service, catalog *content.Catalog,
	persist func()) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		exchange: exchange,
		clock:    clk,
		pricer:   pricer,
		deals:    deals,
		trades:   trades,
		catalog:  catalog,
		persist:  persist,
	}
}

// Handler returns the HTTP handler with all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/intel", s.handleListIntel)
	mux.HandleFunc("GET /api/intel/quote", s.handleIntelQuote)
	mux.HandleFunc("POST /api/intel/purchase", s.handlePurchase)
	mux.HandleFunc("GET /api/trade/quote", s.handleTradeQuote)
	mux.HandleFunc("POST /api/trade/sell", s.handleTradeSell)
	mux.HandleFunc("POST /api/trade/buy", s.handleTradeBuy)
	mux.HandleFunc("POST /api/clock/advance", s.handleAdvance)
	mux.HandleFunc("GET /api/market/prices", s.handleMarketPrices)
	return mux
}

func (s *Server) flush() {
	if s.persist != nil {
		s.persist()
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// tradeStatus maps a trade rejection to an HTTP status: a commodity absent
// from the catalog is a missing resource, everything else conflicts with
// current player or market state.
func tradeStatus(err error) int {
	if errors.Is(err, trade.ErrUnknownCommodity) {
		return http.StatusNotFound
	}
	return http.StatusConflict
}

// rejectionStatus maps a purchase rejection to an HTTP status. The reasons
// stay distinguishable in the response body.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, intel.ErrDealActive):
		return http.StatusConflict
	case errors.Is(err, intel.ErrPacketNotFound):
		return http.StatusNotFound
	case errors.Is(err, intel.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, intel.ErrPriceMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
