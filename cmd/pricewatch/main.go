// Command pricewatch scrapes retailer deal categories, stores price
// history in SQLite, and alerts on pricing anomalies via Discord.
//
// Usage:
//
//	pricewatch                  # run one detection cycle
//	pricewatch -schedule        # run continuously every 4 hours
//	pricewatch -first-run       # populate the database (no alerts)
//	pricewatch -test-db         # verify database schema
//	pricewatch -test-alert      # send a test alert to Discord
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/pricewatch/alert"
	"github.com/hazyhaar/pricewatch/api"
	"github.com/hazyhaar/pricewatch/dbopen"
	"github.com/hazyhaar/pricewatch/detector"
	"github.com/hazyhaar/pricewatch/scrape"
	"github.com/hazyhaar/pricewatch/scrape/browser"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", env("PRICEWATCH_CONFIG", ""), "path to yaml config file")
		schedule   = flag.Bool("schedule", false, "run continuously at the configured interval")
		interval   = flag.Float64("interval", 0, "hours between cycles (overrides config)")
		firstRun   = flag.Bool("first-run", false, "populate database with initial data, no alerts")
		testDB     = flag.Bool("test-db", false, "verify database schema and exit")
		testAlert  = flag.Bool("test-alert", false, "send a test alert to Discord and exit")
		site       = flag.String("site", "", "retailer to scrape, or \"all\" (overrides config)")
		category   = flag.String("category", "", "category to scrape, or \"all\" (overrides config)")
		pages      = flag.Int("pages", 0, "pages to scrape per category (overrides config)")
		minPrice   = flag.Float64("min-price", 0, "minimum price filter in CAD (overrides config)")
		httpAddr   = flag.String("http", "", "serve the read API on this address (overrides config)")
		verbose    = flag.Bool("v", false, "verbose logging")
		headful    = flag.Bool("headful", false, "run the browser with a visible window")
	)
	flag.Parse()

	cfg, err := detector.LoadConfig(*configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	applyOverrides(cfg, *interval, *site, *category, *pages, *minPrice, *httpAddr)
	if v := os.Getenv("PRICEWATCH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}

	// Logging.
	lvl := slog.LevelInfo
	if *verbose || env("LOG_LEVEL", "") == "debug" {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Price DB.
	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open db", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st, err := detector.OpenStore(ctx, db, logger)
	if err != nil {
		slog.Error("init store", "error", err)
		os.Exit(1)
	}

	if *testDB {
		os.Exit(runTestDB(ctx, st, cfg.DBPath))
	}

	// Alerting.
	var alerter alert.Alerter
	var webhook *alert.Webhook
	if cfg.WebhookURL != "" {
		webhook = alert.NewWebhook(cfg.WebhookURL, alert.WithLogger(logger))
		alerter = webhook
	} else {
		slog.Warn("DISCORD_WEBHOOK_URL not set, anomalies will only be logged")
	}

	if *testAlert {
		if webhook == nil {
			fmt.Println("no webhook configured: set DISCORD_WEBHOOK_URL in .env or webhook_url in config")
			os.Exit(1)
		}
		if !webhook.SendTest(ctx) {
			fmt.Println("test alert failed")
			os.Exit(1)
		}
		fmt.Println("test alert sent")
		return
	}

	// Scrapers.
	scrapeCfg := scrape.DefaultConfig()
	scrapeCfg.MaxPages = cfg.MaxPages
	scrapeCfg.MinPrice = cfg.MinPrice
	scrapeCfg.Headless = cfg.IsHeadless() && !*headful
	drivers, err := scrape.New(cfg.Site, cfg.Category, scrapeCfg,
		scrape.WithSessionFactory(browser.Factory(logger)),
		scrape.WithLogger(logger))
	if err != nil {
		slog.Error("scraper setup", "site", cfg.Site, "category", cfg.Category, "error", err)
		os.Exit(1)
	}
	scrapers := make([]detector.ItemScraper, len(drivers))
	for i, d := range drivers {
		scrapers[i] = d
	}

	svcOpts := []detector.Option{detector.WithLogger(logger)}
	if alerter != nil {
		svcOpts = append(svcOpts, detector.WithAlerter(alerter))
	}
	svc := detector.New(st, svcOpts...)

	// Optional read API.
	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.New(st, logger).Router(),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			slog.Info("api server starting", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("api server", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("api shutdown", "error", err)
			}
		}()
	}

	if *schedule {
		slog.Info("scheduled detection starting",
			"site", cfg.Site, "category", cfg.Category,
			"interval", cfg.Interval().String(), "scrapers", len(scrapers))
		svc.Schedule(ctx, scrapers, cfg.Interval())
		slog.Info("stopped")
		return
	}

	mode := "single run"
	if *firstRun {
		mode = "first run (no alerts)"
	}
	slog.Info("detection starting", "mode", mode,
		"site", cfg.Site, "category", cfg.Category,
		"pages", cfg.MaxPages, "min_price", cfg.MinPrice)

	stats := svc.Run(ctx, scrapers, *firstRun)
	printSummary(ctx, st, stats)
}

func applyOverrides(cfg *detector.Config, interval float64, site, category string, pages int, minPrice float64, httpAddr string) {
	if interval > 0 {
		cfg.IntervalHours = interval
	}
	if site != "" {
		cfg.Site = site
	}
	if category != "" {
		cfg.Category = category
	}
	if pages > 0 {
		cfg.MaxPages = pages
	}
	if minPrice > 0 {
		cfg.MinPrice = minPrice
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
}

func runTestDB(ctx context.Context, st *detector.Store, path string) int {
	if err := st.VerifySchema(ctx); err != nil {
		fmt.Printf("schema verification failed: %v\n", err)
		return 1
	}
	products, _ := st.ProductCount(ctx)
	observations, _ := st.ObservationCount(ctx)
	fmt.Printf("database ok: %s\n", path)
	fmt.Printf("  products:     %d\n", products)
	fmt.Printf("  observations: %d\n", observations)
	return 0
}

func printSummary(ctx context.Context, st *detector.Store, stats detector.Stats) {
	fmt.Println("Results:")
	fmt.Printf("  items scraped:  %d\n", stats.Scraped)
	fmt.Printf("  items stored:   %d\n", stats.Stored)
	fmt.Printf("  anomalies:      %d\n", stats.Anomalies)
	fmt.Printf("  alerts sent:    %d\n", stats.AlertsSent)
	if stats.Errors > 0 {
		fmt.Printf("  errors:         %d\n", stats.Errors)
	}
	products, _ := st.ProductCount(ctx)
	observations, _ := st.ObservationCount(ctx)
	fmt.Printf("database now contains %d products, %d observations\n", products, observations)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
