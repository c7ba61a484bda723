package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Metadata MetadataSettings `json:"metadata"`
	Catalog  CatalogSettings  `json:"catalog"`
	Import   ImportSettings   `json:"import"`
	Scraper  ScraperSettings  `json:"scraper"`
	Database DatabaseSettings `json:"database"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	APIKey string `json:"apiKey"` // generated on first boot when empty
}

// MetadataSettings holds the external catalog credentials. Jikan needs no
// key.
type MetadataSettings struct {
	TMDBAPIKey string `json:"tmdbApiKey"`
	OMDBAPIKey string `json:"omdbApiKey"`
	Language   string `json:"language"`
}

// CatalogSettings locates the persisted novela catalog.
type CatalogSettings struct {
	Path string `json:"path"`
}

// ImportSettings tunes the list import loop.
type ImportSettings struct {
	MaxEntries    int `json:"maxEntries"`
	MaxCandidates int `json:"maxCandidates"`
	PauseEvery    int `json:"pauseEvery"`  // pacing pause after this many entries
	PauseMillis   int `json:"pauseMillis"` // duration of that pause
}

// ScraperSettings tunes page fetching for both scrapers.
type ScraperSettings struct {
	UserAgent      string `json:"userAgent"`
	DelayMillis    int    `json:"delayMillis"` // between novela page fetches
	MaxRetries     int    `json:"maxRetries"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// DatabaseSettings defines the list store location.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// SlogLevel maps the configured level name onto a slog level. Unknown or
// empty values fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 7780},
		Metadata: MetadataSettings{TMDBAPIKey: "", OMDBAPIKey: "", Language: "en"},
		Catalog:  CatalogSettings{Path: "data/novelas.json"},
		Import:   ImportSettings{MaxEntries: 100, MaxCandidates: 5, PauseEvery: 5, PauseMillis: 1000},
		Scraper:  ScraperSettings{DelayMillis: 2000, MaxRetries: 3, TimeoutSeconds: 30},
		Database: DatabaseSettings{Path: "data/lists.db"},
		Log: LogConfig{
			File:       "data/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		// create with defaults
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	// Backfill defaults for settings newer than the config on disk.
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = "0.0.0.0"
	}
	if s.Server.Port == 0 {
		s.Server.Port = 7780
	}
	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = "en"
	}
	if strings.TrimSpace(s.Catalog.Path) == "" {
		s.Catalog.Path = "data/novelas.json"
	}
	if s.Import.MaxEntries == 0 {
		s.Import.MaxEntries = 100
	}
	if s.Import.MaxCandidates == 0 {
		s.Import.MaxCandidates = 5
	}
	if s.Import.PauseEvery == 0 {
		s.Import.PauseEvery = 5
	}
	if s.Import.PauseMillis == 0 {
		s.Import.PauseMillis = 1000
	}
	if s.Scraper.DelayMillis == 0 {
		s.Scraper.DelayMillis = 2000
	}
	if s.Scraper.MaxRetries == 0 {
		s.Scraper.MaxRetries = 3
	}
	if s.Scraper.TimeoutSeconds == 0 {
		s.Scraper.TimeoutSeconds = 30
	}
	if strings.TrimSpace(s.Database.Path) == "" {
		s.Database.Path = "data/lists.db"
	}
	if strings.TrimSpace(s.Log.File) == "" {
		s.Log.File = "data/logs/backend.log"
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = 50
	}
	if s.Log.MaxBackups == 0 {
		s.Log.MaxBackups = 3
	}
	if s.Log.MaxAge == 0 {
		s.Log.MaxAge = 7
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
