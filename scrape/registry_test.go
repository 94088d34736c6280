package scrape_test

import (
	"errors"
	"testing"

	"github.com/hazyhaar/pricewatch/scrape"
)

func TestSites(t *testing.T) {
	sites := scrape.Sites()
	want := []string{"amazon", "canadacomputers", "memoryexpress", "newegg"}
	if len(sites) != len(want) {
		t.Fatalf("Sites() = %v, want %v", sites, want)
	}
	for i, s := range want {
		if sites[i] != s {
			t.Fatalf("Sites() = %v, want %v (sorted)", sites, want)
		}
	}
}

func TestCategories(t *testing.T) {
	cats, err := scrape.Categories("newegg")
	if err != nil {
		t.Fatalf("Categories(newegg): %v", err)
	}
	found := false
	for _, c := range cats {
		if c == "gpus" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Categories(newegg) = %v, want gpus present", cats)
	}

	if _, err := scrape.Categories("bestbuy"); !errors.Is(err, scrape.ErrUnknownSite) {
		t.Fatalf("err = %v, want ErrUnknownSite", err)
	}
}

func TestNewSingle(t *testing.T) {
	drivers, err := scrape.New("amazon", "monitors", scrape.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(drivers) != 1 {
		t.Fatalf("got %d drivers, want 1", len(drivers))
	}
	if drivers[0].Site() != "amazon" {
		t.Fatalf("Site() = %q, want amazon", drivers[0].Site())
	}
	if drivers[0].CategoryURL() == "" {
		t.Fatal("CategoryURL not filled in")
	}
}

// TestNewAllCategories verifies All expands to one driver per category of
// the chosen site.
func TestNewAllCategories(t *testing.T) {
	drivers, err := scrape.New("memoryexpress", scrape.All, scrape.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cats, _ := scrape.Categories("memoryexpress")
	if len(drivers) != len(cats) {
		t.Fatalf("got %d drivers, want %d (one per category)", len(drivers), len(cats))
	}
}

// TestNewAllSites verifies All sites keeps only retailers that actually
// carry the named category.
func TestNewAllSites(t *testing.T) {
	// "gpus" exists on newegg, canadacomputers, and memoryexpress but not
	// amazon.
	drivers, err := scrape.New(scrape.All, "gpus", scrape.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(drivers) != 3 {
		t.Fatalf("got %d drivers, want 3", len(drivers))
	}
	for _, d := range drivers {
		if d.Site() == "amazon" {
			t.Fatalf("amazon has no gpus category yet produced a driver")
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := scrape.New("bestbuy", "gpus", scrape.Config{}); !errors.Is(err, scrape.ErrUnknownSite) {
		t.Fatalf("err = %v, want ErrUnknownSite", err)
	}
	if _, err := scrape.New("amazon", "gpus", scrape.Config{}); !errors.Is(err, scrape.ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
	// A category no site carries must not yield an empty, silently useless
	// driver list.
	if _, err := scrape.New(scrape.All, "furniture", scrape.Config{}); !errors.Is(err, scrape.ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
}
