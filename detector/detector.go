// Package detector orchestrates the detection cycle: scrape listings,
// persist prices, analyze each item against its own history, and dispatch
// alerts for anomalies.
package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/pricewatch/alert"
	"github.com/hazyhaar/pricewatch/analyze"
	"github.com/hazyhaar/pricewatch/detector/internal/store"
	"github.com/hazyhaar/pricewatch/scrape"
)

// Stats summarises one detection cycle.
type Stats struct {
	Scraped    int `json:"scraped"`
	Stored     int `json:"stored"`
	Anomalies  int `json:"anomalies"`
	AlertsSent int `json:"alerts_sent"`
	Errors     int `json:"errors"`
}

func (s *Stats) add(o Stats) {
	s.Scraped += o.Scraped
	s.Stored += o.Stored
	s.Anomalies += o.Anomalies
	s.AlertsSent += o.AlertsSent
	s.Errors += o.Errors
}

// ItemScraper is the slice of scrape.Driver the detector needs. Tests
// substitute canned scrapers.
type ItemScraper interface {
	Site() string
	Category() string
	Scrape(ctx context.Context) ([]scrape.Item, error)
}

// Service runs detection cycles against one Store.
type Service struct {
	store    *store.Store
	analyzer *analyze.Analyzer
	alerter  alert.Alerter
	log      *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithAnalyzer replaces the default analyzer (used to tune thresholds).
func WithAnalyzer(a *analyze.Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// WithAlerter sets the alert destination. Default is log-only.
func WithAlerter(a alert.Alerter) Option {
	return func(s *Service) { s.alerter = a }
}

// WithLogger sets the Service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New builds a Service over st.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		analyzer: analyze.New(),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.alerter == nil {
		s.alerter = alert.LogAlerter{Log: s.log}
	}
	return s
}

// RunCycle executes one cycle for one scraper: scrape, store, analyze,
// alert. Item-level failures are counted and skipped; a scrape failure
// still processes whatever partial results came back. skipAlerts disables
// analysis entirely (first-run population).
//
// Each product's history is read before its new price is appended, so the
// new observation never dilutes the baseline it is judged against.
func (s *Service) RunCycle(ctx context.Context, sc ItemScraper, skipAlerts bool) Stats {
	start := time.Now()
	var stats Stats

	items, err := sc.Scrape(ctx)
	stats.Scraped = len(items)
	if err != nil {
		s.log.Error("scrape failed", "site", sc.Site(), "category", sc.Category(),
			"partial_items", len(items), "error", err)
		stats.Errors++
	}
	if len(items) == 0 {
		s.log.Warn("no items scraped", "site", sc.Site(), "category", sc.Category())
		s.logCycle(ctx, sc, stats, start)
		return stats
	}

	for _, item := range items {
		id, err := s.store.UpsertProduct(ctx, item.SKU, item.Source, item.Title, item.URL)
		if err != nil {
			s.log.Error("upsert failed", "sku", item.SKU, "error", err)
			stats.Errors++
			continue
		}

		history, err := s.store.PriceHistory(ctx, id)
		if err != nil {
			s.log.Error("history read failed", "sku", item.SKU, "error", err)
			stats.Errors++
			continue
		}

		if _, err := s.store.AddObservation(ctx, id, item.Price); err != nil {
			s.log.Error("observation write failed", "sku", item.SKU, "error", err)
			stats.Errors++
			continue
		}
		stats.Stored++

		if skipAlerts || len(history) < s.analyzer.MinDropHistory {
			continue
		}

		res := s.analyzer.Analyze(item.Price, history)
		if !res.IsAnomaly {
			continue
		}
		stats.Anomalies++
		s.log.Info("anomaly detected",
			"site", item.Source, "sku", item.SKU,
			"price", item.Price, "zscore", res.ZScore,
			"drop_percent", res.DropPercent, "severity", res.Severity())

		if s.analyzer.ShouldAlert(res) {
			sent := s.alerter.SendAnomaly(ctx, alert.Anomaly{
				Title:  item.Title,
				URL:    item.URL,
				SKU:    item.SKU,
				Source: item.Source,
				Result: res,
			})
			if sent {
				stats.AlertsSent++
			}
		}
	}

	s.logCycle(ctx, sc, stats, start)
	return stats
}

// Run executes one cycle per scraper and returns the summed stats.
func (s *Service) Run(ctx context.Context, scrapers []ItemScraper, skipAlerts bool) Stats {
	var total Stats
	for i, sc := range scrapers {
		if ctx.Err() != nil {
			break
		}
		s.log.Info("processing category",
			"n", i+1, "of", len(scrapers),
			"site", sc.Site(), "category", sc.Category())
		sub := s.RunCycle(ctx, sc, skipAlerts)
		total.add(sub)
	}
	return total
}

// Schedule runs cycles forever at the given interval, first cycle
// immediately. It returns when ctx is cancelled.
func (s *Service) Schedule(ctx context.Context, scrapers []ItemScraper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cycle := 0
	for {
		cycle++
		s.log.Info("cycle starting", "cycle", cycle)
		stats := s.Run(ctx, scrapers, false)
		s.log.Info("cycle complete", "cycle", cycle,
			"scraped", stats.Scraped, "stored", stats.Stored,
			"anomalies", stats.Anomalies, "alerts_sent", stats.AlertsSent,
			"errors", stats.Errors)

		s.log.Info("next cycle scheduled", "in", interval)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) logCycle(ctx context.Context, sc ItemScraper, stats Stats, start time.Time) {
	_, err := s.store.LogCycle(ctx, store.CycleRecord{
		Site:      sc.Site(),
		Category:  sc.Category(),
		Scraped:   stats.Scraped,
		Stored:    stats.Stored,
		Anomalies: stats.Anomalies,
		Alerts:    stats.AlertsSent,
		Errors:    stats.Errors,
		Duration:  time.Since(start),
		StartedAt: start,
	})
	if err != nil {
		s.log.Error("cycle log write failed", "error", err)
	}
}
