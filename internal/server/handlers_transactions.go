package server

import (
	"net/http"
	"strings"

	"github.com/jcarver/folio/internal/common"
	"github.com/jcarver/folio/internal/models"
)

// requireUserMatch ensures the authenticated user matches the {userId} path
// segment, writing 403 on mismatch.
func requireUserMatch(w http.ResponseWriter, r *http.Request, userID string) (*common.UserContext, bool) {
	uc, ok := requireAuth(w, r)
	if !ok {
		return nil, false
	}
	if userID != "" && userID != uc.UserID {
		WriteError(w, http.StatusForbidden, "cannot access another user's data")
		return nil, false
	}
	return uc, true
}

// handleTransactionList handles GET /api/v1/transactions/{userId}.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := requireUserMatch(w, r, userID); !ok {
		return
	}

	txs, err := s.app.Transactions.List(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		WriteError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	WriteJSON(w, http.StatusOK, txs)
}

// handleTransactionCreate handles POST /api/v1/transactions.
func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var tx models.Transaction
	if !DecodeJSON(w, r, &tx) {
		return
	}
	tx.UserID = uc.UserID
	tx.ID = "" // server-assigned

	if err := s.app.Transactions.Create(r.Context(), &tx); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, tx)
}

// handleTransactionItem handles PUT/DELETE /api/v1/transactions/{userId}/{id}.
func (s *Server) handleTransactionItem(w http.ResponseWriter, r *http.Request, userID, id string) {
	if !RequireMethod(w, r, http.MethodPut, http.MethodDelete) {
		return
	}
	if _, ok := requireUserMatch(w, r, userID); !ok {
		return
	}
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "transaction id is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		tx.UserID = userID
		tx.ID = id
		if err := s.app.Transactions.Update(r.Context(), &tx); err != nil {
			if strings.Contains(err.Error(), "not found") {
				WriteError(w, http.StatusNotFound, err.Error())
			} else {
				WriteError(w, http.StatusBadRequest, err.Error())
			}
			return
		}
		WriteJSON(w, http.StatusOK, tx)

	case http.MethodDelete:
		if err := s.app.Transactions.Delete(r.Context(), userID, id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
	}
}
