package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dvkrepak/coingecko-crud/internal/models"
)

type createCryptoRequest struct {
	Symbol string `json:"symbol"`
}

func (s *Server) handleListCryptos(w http.ResponseWriter, r *http.Request) {
	cryptos, err := s.service.List(r.Context())
	if err != nil {
		fmt.Printf("Error listing cryptos: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to list cryptos")
		return
	}
	if cryptos == nil {
		cryptos = []models.Crypto{}
	}
	writeJSON(w, http.StatusOK, cryptos)
}

func (s *Server) handleGetCrypto(w http.ResponseWriter, r *http.Request) {
	cgID := r.PathValue("cg_id")
	crypto, err := s.service.Get(r.Context(), cgID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, crypto)
}

func (s *Server) handleCreateCrypto(w http.ResponseWriter, r *http.Request) {
	var req createCryptoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	crypto, err := s.service.Create(r.Context(), req.Symbol)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	fmt.Printf("[API] Created crypto: %s\n", crypto.CgID)
	writeJSON(w, http.StatusOK, crypto)
}

func (s *Server) handleUpdateCrypto(w http.ResponseWriter, r *http.Request) {
	cgID := r.PathValue("cg_id")

	var upd models.CryptoUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	crypto, err := s.service.UpdateFields(r.Context(), cgID, upd)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	fmt.Printf("[API] Updated crypto: %s\n", crypto.CgID)
	writeJSON(w, http.StatusOK, crypto)
}

func (s *Server) handleDeleteCrypto(w http.ResponseWriter, r *http.Request) {
	cgID := r.PathValue("cg_id")

	if _, err := s.service.Delete(r.Context(), cgID); err != nil {
		s.writeServiceError(w, err)
		return
	}

	fmt.Printf("[API] Deleted crypto: %s\n", cgID)
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Deleted"})
}

func (s *Server) handleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	updated, err := s.service.RefreshPrices(r.Context())
	if err != nil {
		fmt.Printf("Error refreshing prices: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to refresh prices")
		return
	}
	if updated == nil {
		updated = []models.PriceUpdate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

// writeServiceError maps the error taxonomy onto HTTP statuses. The
// ambiguous case keeps the human-readable option list the dashboard
// and API callers both show.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var amb *models.AmbiguousError
	switch {
	case errors.As(err, &amb):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   fmt.Sprintf("Symbol %q is ambiguous.", amb.Query),
			"message": "Multiple coins found with this symbol. Please use full coin ID.",
			"options": amb.OptionStrings(),
		})
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		fmt.Printf("Unhandled service error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
