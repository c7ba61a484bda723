package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"revius/api"
	"revius/config"
	"revius/handlers"
	"revius/internal/database"
	"revius/internal/fetch"
	"revius/services/listimport"
	"revius/services/match"
	"revius/services/novelas"

	"github.com/gorilla/mux"
	"github.com/sethvargo/go-password/password"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 Revius Backend Starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("REVIUS_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Generate an API key on first boot
	settings.Server.APIKey = strings.TrimSpace(settings.Server.APIKey)
	if settings.Server.APIKey == "" {
		key, err := password.Generate(32, 10, 0, false, true)
		if err != nil {
			log.Fatalf("failed to generate API key: %v", err)
		}
		settings.Server.APIKey = key
		if err := cfgManager.Save(settings); err != nil {
			log.Fatalf("failed to persist generated API key: %v", err)
		}
		fmt.Println("🔑 Generated a new API key (stored in settings.json).")
	}
	fmt.Printf("🔑 API key: %s\n", settings.Server.APIKey)

	// List store
	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	listRepo := database.NewListRepository(db.Connection())

	// Novela catalog
	catalogStore := novelas.NewFileCatalogStore(settings.Catalog.Path)
	catalogService := novelas.NewCatalogService(catalogStore)

	// HTTP fetcher shared by the list scraper
	fetcher := fetch.NewClient(
		fetch.WithUserAgent(settings.Scraper.UserAgent),
		fetch.WithTimeout(time.Duration(settings.Scraper.TimeoutSeconds)*time.Second),
		fetch.WithRetries(uint(settings.Scraper.MaxRetries), time.Second),
	)

	// Match sources in priority order: TMDB, OMDB, Jikan, local novelas
	httpc := &http.Client{Timeout: time.Duration(settings.Scraper.TimeoutSeconds) * time.Second}
	matcher := match.NewMatcher(
		match.NewTMDBSearcher(settings.Metadata.TMDBAPIKey, settings.Metadata.Language, httpc),
		match.NewOMDBSearcher(settings.Metadata.OMDBAPIKey, httpc),
		match.NewJikanSearcher(httpc),
		match.NewNovelaSearcher(catalogService),
	)
	matcher.MaxCandidates = settings.Import.MaxCandidates

	listScraper := listimport.NewScraper(fetcher)
	listScraper.MaxEntries = settings.Import.MaxEntries

	importService := listimport.NewService(
		listScraper,
		matcher,
		listRepo,
		listimport.Options{
			PauseEvery: settings.Import.PauseEvery,
			Pause:      time.Duration(settings.Import.PauseMillis) * time.Millisecond,
		},
	)

	// Construct router and register API routes
	r := mux.NewRouter()
	api.Register(
		r,
		settings.Server.APIKey,
		handlers.NewImportHandler(importService),
		handlers.NewCatalogHandler(listRepo, catalogService),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
