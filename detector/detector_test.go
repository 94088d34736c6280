package detector_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/pricewatch/alert"
	"github.com/hazyhaar/pricewatch/dbopen"
	"github.com/hazyhaar/pricewatch/detector"
	"github.com/hazyhaar/pricewatch/scrape"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeScraper struct {
	site     string
	category string
	items    []scrape.Item
	err      error
}

func (f *fakeScraper) Site() string     { return f.site }
func (f *fakeScraper) Category() string { return f.category }

func (f *fakeScraper) Scrape(ctx context.Context) ([]scrape.Item, error) {
	return f.items, f.err
}

type captureAlerter struct {
	sent []alert.Anomaly
	ok   bool
}

func (c *captureAlerter) SendAnomaly(ctx context.Context, a alert.Anomaly) bool {
	c.sent = append(c.sent, a)
	return c.ok
}

func newService(t *testing.T, alerter alert.Alerter) (*detector.Service, *detector.Store) {
	t.Helper()
	db := dbopen.OpenMemory(t)
	st, err := detector.OpenStore(context.Background(), db, discard())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	opts := []detector.Option{detector.WithLogger(discard())}
	if alerter != nil {
		opts = append(opts, detector.WithAlerter(alerter))
	}
	return detector.New(st, opts...), st
}

func listing(sku string, price float64) scrape.Item {
	return scrape.Item{
		SKU:    sku,
		Title:  "Item " + sku,
		Price:  price,
		URL:    "https://example.com/" + sku,
		Source: "newegg",
	}
}

// feed runs n cycles of the same listing at the given price so a product
// accumulates history.
func feed(t *testing.T, svc *detector.Service, sku string, price float64, n int) {
	t.Helper()
	sc := &fakeScraper{site: "newegg", category: "gpus", items: []scrape.Item{listing(sku, price)}}
	for i := 0; i < n; i++ {
		stats := svc.RunCycle(context.Background(), sc, false)
		if stats.Errors != 0 {
			t.Fatalf("seed cycle %d had errors: %+v", i, stats)
		}
	}
}

// TestRunCycleFirstRun verifies skipAlerts populates the database without
// any analysis: a price that would scream anomaly stays silent.
func TestRunCycleFirstRun(t *testing.T) {
	ca := &captureAlerter{ok: true}
	svc, _ := newService(t, ca)

	feed(t, svc, "G1", 500, 4)

	sc := &fakeScraper{site: "newegg", category: "gpus", items: []scrape.Item{listing("G1", 20)}}
	stats := svc.RunCycle(context.Background(), sc, true)

	if stats.Stored != 1 || stats.Anomalies != 0 || stats.AlertsSent != 0 {
		t.Fatalf("first-run stats = %+v, want stored only", stats)
	}
	if len(ca.sent) != 0 {
		t.Fatalf("first run sent %d alerts", len(ca.sent))
	}
}

// TestRunCycleDetectsDrop verifies the full path: after three observations
// at 100, a crash to 20 is an 80% drop and produces exactly one alert.
func TestRunCycleDetectsDrop(t *testing.T) {
	ca := &captureAlerter{ok: true}
	svc, _ := newService(t, ca)

	feed(t, svc, "G1", 100, 3)

	sc := &fakeScraper{site: "newegg", category: "gpus", items: []scrape.Item{listing("G1", 20)}}
	stats := svc.RunCycle(context.Background(), sc, false)

	if stats.Anomalies != 1 || stats.AlertsSent != 1 {
		t.Fatalf("stats = %+v, want 1 anomaly, 1 alert", stats)
	}
	if len(ca.sent) != 1 {
		t.Fatalf("alerter saw %d anomalies, want 1", len(ca.sent))
	}
	a := ca.sent[0]
	if a.SKU != "G1" || !a.Result.IsAnomaly {
		t.Fatalf("alert = %+v", a)
	}
	if a.Result.HistoryCount != 3 {
		t.Fatalf("history count = %d, want 3 (new price excluded from baseline)", a.Result.HistoryCount)
	}
}

// TestRunCycleInsufficientHistory verifies a product with only two prior
// observations is stored but never analyzed.
func TestRunCycleInsufficientHistory(t *testing.T) {
	ca := &captureAlerter{ok: true}
	svc, _ := newService(t, ca)

	feed(t, svc, "G1", 100, 2)

	sc := &fakeScraper{site: "newegg", category: "gpus", items: []scrape.Item{listing("G1", 20)}}
	stats := svc.RunCycle(context.Background(), sc, false)

	if stats.Stored != 1 || stats.Anomalies != 0 {
		t.Fatalf("stats = %+v, want stored without analysis", stats)
	}
}

// TestRunCycleAlertFailureCounted verifies a failed delivery counts the
// anomaly but not the alert.
func TestRunCycleAlertFailureCounted(t *testing.T) {
	ca := &captureAlerter{ok: false}
	svc, _ := newService(t, ca)

	feed(t, svc, "G1", 100, 3)

	sc := &fakeScraper{site: "newegg", category: "gpus", items: []scrape.Item{listing("G1", 20)}}
	stats := svc.RunCycle(context.Background(), sc, false)

	if stats.Anomalies != 1 || stats.AlertsSent != 0 {
		t.Fatalf("stats = %+v, want anomaly without alert", stats)
	}
}

// TestRunCyclePartialScrape verifies a scrape error still stores the
// partial results and shows up in the error count.
func TestRunCyclePartialScrape(t *testing.T) {
	svc, _ := newService(t, nil)

	sc := &fakeScraper{
		site:     "newegg",
		category: "gpus",
		items:    []scrape.Item{listing("G1", 100), listing("G2", 200)},
		err:      errors.New("blocked after page 2"),
	}
	stats := svc.RunCycle(context.Background(), sc, false)

	if stats.Scraped != 2 || stats.Stored != 2 {
		t.Fatalf("stats = %+v, want both partial items stored", stats)
	}
	if stats.Errors != 1 {
		t.Fatalf("errors = %d, want 1 for the scrape failure", stats.Errors)
	}
}

// TestRunAggregates verifies multi-scraper runs sum their counters.
func TestRunAggregates(t *testing.T) {
	svc, _ := newService(t, nil)

	scrapers := []detector.ItemScraper{
		&fakeScraper{site: "newegg", category: "gpus", items: []scrape.Item{listing("A", 100)}},
		&fakeScraper{site: "newegg", category: "ram", items: []scrape.Item{listing("B", 100), listing("C", 100)}},
	}
	stats := svc.Run(context.Background(), scrapers, false)

	if stats.Scraped != 3 || stats.Stored != 3 {
		t.Fatalf("aggregated stats = %+v, want 3/3", stats)
	}
}

// TestRunCycleWritesCycleLog verifies every cycle leaves an audit row with
// its counters.
func TestRunCycleWritesCycleLog(t *testing.T) {
	svc, st := newService(t, nil)

	sc := &fakeScraper{site: "amazon", category: "monitors", items: []scrape.Item{listing("M1", 300)}}
	svc.RunCycle(context.Background(), sc, false)

	recs, err := st.Cycles(context.Background(), 10)
	if err != nil {
		t.Fatalf("Cycles: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d cycle records, want 1", len(recs))
	}
	r := recs[0]
	if r.Site != "amazon" || r.Category != "monitors" || r.Scraped != 1 || r.Stored != 1 {
		t.Fatalf("cycle record = %+v", r)
	}
}
