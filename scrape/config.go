package scrape

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/hazyhaar/pricewatch/extract"
)

// Config controls one scrape run. The zero value is completed by
// withDefaults; a Config is never mutated after the Driver is built.
type Config struct {
	// CategoryURL is the listing page to start from.
	CategoryURL string
	// Category is the registry name the URL came from. Informational; it
	// tags logs and cycle records.
	Category string
	// MaxPages caps pagination. Default 20.
	MaxPages int
	// MinPrice filters out items cheaper than this. Default 50.
	MinPrice float64
	// DelayMin and DelayMax bound the random pause between page actions.
	// Defaults 2s and 5s.
	DelayMin time.Duration
	DelayMax time.Duration
	// Headless controls whether the browser renders a window. Default true
	// (set via DefaultConfig; the zero value of a bool cannot express it).
	Headless bool
	// UserAgent overrides the browser user agent. Empty picks a random one
	// from the built-in pool.
	UserAgent string
}

// DefaultConfig returns a Config with all defaults filled in.
func DefaultConfig() Config {
	return Config{
		MaxPages: 20,
		MinPrice: extract.DefaultMinPrice,
		DelayMin: 2 * time.Second,
		DelayMax: 5 * time.Second,
		Headless: true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	if c.MinPrice <= 0 {
		c.MinPrice = d.MinPrice
	}
	if c.DelayMin <= 0 {
		c.DelayMin = d.DelayMin
	}
	if c.DelayMax < c.DelayMin {
		c.DelayMax = c.DelayMin + (d.DelayMax - d.DelayMin)
	}
	return c
}

// DelayPolicy pauses between page actions. It returns early with the
// context's error when the context is cancelled.
type DelayPolicy func(ctx context.Context) error

// RandomDelay sleeps a uniformly random duration in [min, max]. Retail
// sites throttle clients that click faster than a human can.
func RandomDelay(min, max time.Duration) DelayPolicy {
	return func(ctx context.Context) error {
		d := min
		if max > min {
			d += rand.N(max - min)
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}

// NoDelay is a DelayPolicy for tests.
func NoDelay(ctx context.Context) error {
	return ctx.Err()
}
