package server

import (
	"net/http"
	"time"

	"github.com/jcarver/folio/internal/interfaces"
	"github.com/jcarver/folio/internal/models"
	"github.com/jcarver/folio/internal/services/position"
)

// Preference keys stored as per-user KV entries.
const (
	prefDisplayCurrency  = "display_currency"
	prefDefaultChartMode = "default_chart_mode"
)

// handleUserProfile handles GET and PUT /api/v1/users/profile: the account
// record plus stored preferences.
func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}

	store := s.app.Storage.InternalStore()
	user, err := store.GetUser(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	if r.Method == http.MethodPut {
		var req struct {
			DisplayCurrency  *string `json:"display_currency"`
			DefaultChartMode *string `json:"default_chart_mode"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.DefaultChartMode != nil {
			switch models.ChartMode(*req.DefaultChartMode) {
			case models.ChartModeAssets, models.ChartModeTypes:
			default:
				WriteError(w, http.StatusBadRequest, "default_chart_mode must be 'assets' or 'types'")
				return
			}
		}
		if req.DisplayCurrency != nil {
			if err := store.SetUserKV(r.Context(), uc.UserID, prefDisplayCurrency, *req.DisplayCurrency); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to save preferences")
				return
			}
		}
		if req.DefaultChartMode != nil {
			if err := store.SetUserKV(r.Context(), uc.UserID, prefDefaultChartMode, *req.DefaultChartMode); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to save preferences")
				return
			}
		}
	}

	kvs, _ := store.ListUserKV(r.Context(), uc.UserID)
	prefs := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		prefs[kv.Key] = kv.Value
	}

	resp := map[string]interface{}{
		"user":        userResponse(user),
		"preferences": prefs,
	}
	if last := s.lastActivity(r, uc.UserID); !last.IsZero() {
		resp["last_activity"] = last.UTC().Format(time.RFC3339)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// lastActivity returns the datetime of the user's most recent transaction
// record, or the zero time when there is none.
func (s *Server) lastActivity(r *http.Request, userID string) time.Time {
	recs, err := s.app.Storage.UserDataStore().Query(r.Context(), userID, position.SubjectTransaction, interfaces.QueryOptions{
		OrderBy: "datetime_desc",
		Limit:   1,
	})
	if err != nil || len(recs) == 0 {
		return time.Time{}
	}
	return recs[0].DateTime
}
