package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"revius/internal/fetch"
	"revius/models"
	"revius/services/listimport"
)

type importService interface {
	Import(ctx context.Context, listURL, service, ownerUserID string) (models.ImportResult, error)
}

var _ importService = (*listimport.Service)(nil)

type ImportHandler struct {
	Service importService
}

func NewImportHandler(s importService) *ImportHandler {
	return &ImportHandler{Service: s}
}

type importRequest struct {
	URL     string `json:"url"`
	Service string `json:"service"`
	UserID  string `json:"userId"`
}

// Import runs a full list import and returns the structured result. Partial
// matches are a success; only whole-operation failures map to error statuses.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.Service == "" {
		req.Service = "letterboxd"
	}

	result, err := h.Service.Import(r.Context(), req.URL, req.Service, req.UserID)
	if err != nil {
		status, msg := importErrorStatus(err)
		log.Printf("[import] %s: %v", req.URL, err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func importErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, listimport.ErrUnsupportedService),
		errors.Is(err, listimport.ErrInvalidURL):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, listimport.ErrNoEntries):
		return http.StatusUnprocessableEntity, "no items found in list"
	case errors.Is(err, fetch.ErrFetchFailed), errors.Is(err, fetch.ErrNotHTML):
		return http.StatusBadGateway, "could not fetch list page"
	default:
		return http.StatusInternalServerError, "import failed"
	}
}
