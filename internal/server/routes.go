package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/jcarver/folio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Auth
	mux.HandleFunc("/api/v1/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/v1/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/v1/auth/google", s.handleAuthGoogle)
	mux.HandleFunc("/api/v1/auth/refresh", s.handleAuthRefresh)

	// Transactions
	mux.HandleFunc("/api/v1/transactions/", s.routeTransactions)
	mux.HandleFunc("/api/v1/transactions", s.handleTransactionCreate)

	// Portfolio
	mux.HandleFunc("/api/v1/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/v1/portfolios", s.handlePortfolio)

	// User profile
	mux.HandleFunc("/api/v1/users/profile", s.handleUserProfile)

	// Market
	mux.HandleFunc("/api/v1/market/search", s.handleMarketSearch)
}

// routeTransactions dispatches /api/v1/transactions/{userId}[/{id}].
func (s *Server) routeTransactions(w http.ResponseWriter, r *http.Request) {
	userID := PathParam(r, "/api/v1/transactions/", "")
	if userID == "" {
		s.handleTransactionCreate(w, r)
		return
	}

	id := PathParam(r, "/api/v1/transactions/"+userID+"/", "")
	if id == "" {
		s.handleTransactionList(w, r, userID)
		return
	}
	s.handleTransactionItem(w, r, userID, id)
}

// routePortfolios dispatches /api/v1/portfolios/{subpath}.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	subpath := strings.TrimPrefix(r.URL.Path, "/api/v1/portfolios/")
	switch subpath {
	case "":
		s.handlePortfolio(w, r)
	case "allocation":
		s.handleAllocation(w, r)
	case "diversification":
		s.handleDiversification(w, r)
	case "risk":
		s.handleRisk(w, r)
	case "rebalancing/actions":
		s.handleRebalanceActions(w, r)
	case "rebalancing/recommendations":
		s.handleRebalanceRecommendations(w, r)
	case "chart":
		s.handleChart(w, r)
	case "chart.png":
		s.handleChartPNG(w, r)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
