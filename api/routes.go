package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/mux"

	"revius/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// apiKeyMiddleware gates every API route behind the configured key, passed as
// the X-API-Key header or an api_key query parameter.
func apiKeyMiddleware(apiKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				http.Error(w, "invalid or missing API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	apiKey string,
	importHandler *handlers.ImportHandler,
	catalogHandler *handlers.CatalogHandler,
) {
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)
	api.Use(apiKeyMiddleware(apiKey))

	api.HandleFunc("/import", importHandler.Import).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/lists/{listID}", catalogHandler.GetList).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/catalog/novelas", catalogHandler.QueryNovelas).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/catalog/metadata", catalogHandler.CatalogMetadata).Methods(http.MethodGet, http.MethodOptions)
}
