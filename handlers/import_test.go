package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"revius/internal/fetch"
	"revius/models"
	"revius/services/listimport"
)

type fakeImportService struct {
	result models.ImportResult
	err    error
}

func (f *fakeImportService) Import(_ context.Context, _, _, _ string) (models.ImportResult, error) {
	return f.result, f.err
}

func doImport(t *testing.T, svc importService, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewImportHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Import(rec, req)
	return rec
}

func TestImportHandlerSuccess(t *testing.T) {
	svc := &fakeImportService{result: models.ImportResult{
		Success:         true,
		ListID:          "l1",
		ItemsCount:      10,
		MatchedCount:    7,
		FailedCount:     3,
		MatchPercentage: 70,
	}}

	rec := doImport(t, svc, `{"url":"https://letterboxd.com/u/list/x/","service":"letterboxd"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result models.ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Success || result.MatchedCount != 7 || result.MatchPercentage != 70 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestImportHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported service", listimport.ErrUnsupportedService, http.StatusBadRequest},
		{"invalid url", listimport.ErrInvalidURL, http.StatusBadRequest},
		{"no entries", listimport.ErrNoEntries, http.StatusUnprocessableEntity},
		{"fetch failed", fmt.Errorf("scrape: %w", fetch.ErrFetchFailed), http.StatusBadGateway},
		{"not html", fetch.ErrNotHTML, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doImport(t, &fakeImportService{err: tt.err}, `{"url":"https://letterboxd.com/u/list/x/"}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestImportHandlerRejectsBadBody(t *testing.T) {
	rec := doImport(t, &fakeImportService{}, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = doImport(t, &fakeImportService{}, `{"service":"letterboxd"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing url: status = %d, want 400", rec.Code)
	}
}
