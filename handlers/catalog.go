package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"revius/internal/database"
	"revius/models"
	"revius/services/novelas"
)

type listReader interface {
	GetList(ctx context.Context, listID string) (models.ImportedList, error)
	ListItems(ctx context.Context, listID string) ([]models.ResolvedListItem, error)
}

var _ listReader = (*database.ListRepository)(nil)

type catalogReader interface {
	Query(ctx context.Context, q, country string) ([]models.NovelaRecord, error)
	Metadata(ctx context.Context) (models.CatalogMetadata, error)
}

var _ catalogReader = (*novelas.CatalogService)(nil)

type CatalogHandler struct {
	Lists   listReader
	Catalog catalogReader
}

func NewCatalogHandler(lists listReader, catalog catalogReader) *CatalogHandler {
	return &CatalogHandler{Lists: lists, Catalog: catalog}
}

type listResponse struct {
	List  models.ImportedList       `json:"list"`
	Items []models.ResolvedListItem `json:"items"`
}

// GetList returns one imported list with its items in position order.
func (h *CatalogHandler) GetList(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["listID"]

	list, err := h.Lists.GetList(r.Context(), listID)
	if errors.Is(err, database.ErrListNotFound) {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	if err != nil {
		log.Printf("[catalog] get list %s: %v", listID, err)
		writeError(w, http.StatusInternalServerError, "failed to load list")
		return
	}

	items, err := h.Lists.ListItems(r.Context(), listID)
	if err != nil {
		log.Printf("[catalog] list items %s: %v", listID, err)
		writeError(w, http.StatusInternalServerError, "failed to load list items")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{List: list, Items: items})
}

// QueryNovelas filters the novela catalog by title substring and country.
func (h *CatalogHandler) QueryNovelas(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	country := strings.TrimSpace(r.URL.Query().Get("country"))

	records, err := h.Catalog.Query(r.Context(), q, country)
	if err != nil {
		log.Printf("[catalog] query novelas: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to query catalog")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"novelas": records,
	})
}

// CatalogMetadata returns the aggregate metadata block.
func (h *CatalogHandler) CatalogMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := h.Catalog.Metadata(r.Context())
	if err != nil {
		log.Printf("[catalog] metadata: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load catalog metadata")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}
