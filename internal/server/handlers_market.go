package server

import (
	"net/http"
	"strings"
)

// handleMarketSearch handles GET /api/v1/market/search?query=.
func (s *Server) handleMarketSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := requireAuth(w, r); !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		query = strings.TrimSpace(r.URL.Query().Get("q"))
	}
	if query == "" {
		WriteError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	matches, err := s.app.Market.Search(r.Context(), query)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("Symbol search failed")
		WriteError(w, http.StatusBadGateway, "symbol search failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"matches": matches,
	})
}
