package server

import (
	"errors"
	"net/http"

	"github.com/jcarver/folio/internal/models"
	"github.com/jcarver/folio/internal/services/allocation"
	"github.com/jcarver/folio/internal/services/chart"
	"github.com/jcarver/folio/internal/services/rebalance"
	"github.com/jcarver/folio/internal/services/risk"
)

// handlePortfolio handles GET /api/v1/portfolios: positions, totals, and
// diversification insights.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}

	view, err := s.app.Transactions.Positions(r.Context(), uc.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uc.UserID).Msg("Failed to compute positions")
		WriteError(w, http.StatusInternalServerError, "failed to compute positions")
		return
	}
	view.Insights = risk.Insights(view.Positions)

	WriteJSON(w, http.StatusOK, view)
}

// handleAllocation handles GET and PUT /api/v1/portfolios/allocation.
func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		set, err := s.app.Allocations.Get(r.Context(), uc.UserID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load allocations")
			return
		}
		WriteJSON(w, http.StatusOK, set)

	case http.MethodPut:
		var req struct {
			Allocations []models.AllocationTarget `json:"allocations"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		set, err := s.app.Allocations.Replace(r.Context(), uc.UserID, req.Allocations)
		if err != nil {
			if errors.Is(err, allocation.ErrInvalidTargets) {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.logger.Error().Err(err).Str("user_id", uc.UserID).Msg("Allocation replace failed")
			WriteError(w, http.StatusInternalServerError, "failed to save allocations")
			return
		}
		WriteJSON(w, http.StatusOK, set)
	}
}

// handleDiversification handles GET /api/v1/portfolios/diversification.
func (s *Server) handleDiversification(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}

	view, err := s.app.Transactions.Positions(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to compute positions")
		return
	}
	WriteJSON(w, http.StatusOK, risk.Score(view.Positions))
}

// handleRisk handles GET /api/v1/portfolios/risk.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}

	view, err := s.app.Transactions.Positions(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to compute positions")
		return
	}
	WriteJSON(w, http.StatusOK, risk.Report(view.Positions))
}

// handleRebalanceActions handles GET /api/v1/portfolios/rebalancing/actions.
func (s *Server) handleRebalanceActions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}

	items, err := s.app.Allocations.StrategyItems(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to build strategy items")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"actions": rebalance.Actions(items),
	})
}

// handleRebalanceRecommendations handles POST /api/v1/portfolios/rebalancing/recommendations.
func (s *Server) handleRebalanceRecommendations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		InvestmentAmount float64 `json:"investment_amount"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.InvestmentAmount <= 0 {
		WriteError(w, http.StatusBadRequest, "investment_amount must be positive")
		return
	}

	items, err := s.app.Allocations.StrategyItems(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to build strategy items")
		return
	}
	recs := rebalance.Recommend(items, req.InvestmentAmount)

	var allocated float64
	for _, rec := range recs {
		allocated += rec.BuyAmount
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"investment_amount": req.InvestmentAmount,
		"allocated":         allocated,
		"unallocated":       req.InvestmentAmount - allocated,
		"recommendations":   recs,
	})
}

// chartSegments computes segments for the authenticated user and requested mode.
func (s *Server) chartSegments(w http.ResponseWriter, r *http.Request) ([]models.ChartSegment, bool) {
	uc, ok := requireAuth(w, r)
	if !ok {
		return nil, false
	}

	mode := models.ChartMode(r.URL.Query().Get("mode"))
	switch mode {
	case "":
		mode = s.defaultChartMode(r, uc.UserID)
	case models.ChartModeAssets, models.ChartModeTypes:
	default:
		WriteError(w, http.StatusBadRequest, "mode must be 'assets' or 'types'")
		return nil, false
	}

	view, err := s.app.Transactions.Positions(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to compute positions")
		return nil, false
	}
	return chart.BuildSegments(view.Positions, mode), true
}

// defaultChartMode returns the user's stored chart mode preference, or the
// asset view when none is set.
func (s *Server) defaultChartMode(r *http.Request, userID string) models.ChartMode {
	kv, err := s.app.Storage.InternalStore().GetUserKV(r.Context(), userID, prefDefaultChartMode)
	if err == nil {
		switch mode := models.ChartMode(kv.Value); mode {
		case models.ChartModeAssets, models.ChartModeTypes:
			return mode
		}
	}
	return models.ChartModeAssets
}

// handleChart handles GET /api/v1/portfolios/chart.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	segments, ok := s.chartSegments(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"segments": segments,
	})
}

// handleChartPNG handles GET /api/v1/portfolios/chart.png.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	segments, ok := s.chartSegments(w, r)
	if !ok {
		return
	}
	if len(segments) == 0 {
		WriteError(w, http.StatusNotFound, "portfolio has no positions to chart")
		return
	}

	png, err := chart.RenderPNG(segments, "Portfolio Allocation")
	if err != nil {
		s.logger.Error().Err(err).Msg("Chart render failed")
		WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
