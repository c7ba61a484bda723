// Command novelascrape runs the Wikipedia telenovela scrape pipeline from
// the command line and merges the results into the persisted catalog.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"revius/config"
	"revius/internal/fetch"
	"revius/services/novelas"
)

func main() {
	var (
		countriesFlag = flag.String("countries", "", "comma-separated country filter (e.g. br,mx); empty scrapes all")
		noEnhance     = flag.Bool("no-enhance", false, "skip detail-page enrichment")
		noMerge       = flag.Bool("no-merge", false, "report results without touching the catalog")
		maxEnhance    = flag.Int("max-enhance", 20, "cap on detail pages to enrich")
		configFlag    = flag.String("config", "", "path to settings.json (default: data/settings.json or $REVIUS_CONFIG)")
		outputFlag    = flag.String("output", "", "override catalog output path")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("REVIUS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	settings, err := config.NewManager(configPath).Load()
	if err != nil {
		logger.Error("load settings", "path", configPath, "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: settings.Log.SlogLevel(),
	}))

	catalogPath := settings.Catalog.Path
	if *outputFlag != "" {
		catalogPath = *outputFlag
	}

	var countries []string
	for _, c := range strings.Split(*countriesFlag, ",") {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			countries = append(countries, trimmed)
		}
	}

	fetcher := fetch.NewClient(
		fetch.WithUserAgent(settings.Scraper.UserAgent),
		fetch.WithTimeout(time.Duration(settings.Scraper.TimeoutSeconds)*time.Second),
		fetch.WithRetries(uint(settings.Scraper.MaxRetries), time.Second),
	)
	merger := novelas.NewMerger(novelas.NewFileCatalogStore(catalogPath))
	svc := novelas.NewScrapeService(fetcher, merger, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := svc.RunScrape(ctx, novelas.Options{
		Countries:         countries,
		EnhanceDetails:    !*noEnhance,
		MergeWithExisting: !*noMerge,
		MaxToEnhance:      *maxEnhance,
		Delay:             time.Duration(settings.Scraper.DelayMillis) * time.Millisecond,
	})
	if report != nil {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
	}
	if err != nil {
		// Per-source failures are already inside the report; reaching here
		// means the run itself failed (save error or cancellation).
		logger.Error("scrape run failed", "error", err)
		os.Exit(1)
	}
}
