package detector

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/pricewatch/extract"
)

// Config is the file-level configuration for the pricewatch binary.
// Every field has a sensible default; an absent file is not an error.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`
	// WebhookURL is the Discord-compatible webhook for alerts. Empty
	// degrades alerting to log lines.
	WebhookURL string `yaml:"webhook_url"`

	// Site and Category select what to scrape; either may be "all".
	Site     string `yaml:"site"`
	Category string `yaml:"category"`

	// MaxPages and MinPrice are passed through to the scraper.
	MaxPages int     `yaml:"max_pages"`
	MinPrice float64 `yaml:"min_price"`

	// IntervalHours is the pause between scheduled cycles.
	IntervalHours float64 `yaml:"interval_hours"`

	// Headless controls the browser window; defaults to true.
	Headless *bool `yaml:"headless"`

	// HTTPAddr enables the read API when non-empty (e.g. ":8080").
	HTTPAddr string `yaml:"http_addr"`
}

// LoadConfig reads a YAML config file. An empty path returns defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("detector: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("detector: parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "prices.db"
	}
	if c.Site == "" {
		c.Site = "amazon"
	}
	if c.Category == "" {
		c.Category = "electronics"
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 20
	}
	if c.MinPrice <= 0 {
		c.MinPrice = extract.DefaultMinPrice
	}
	if c.IntervalHours <= 0 {
		c.IntervalHours = 4
	}
	if c.Headless == nil {
		t := true
		c.Headless = &t
	}
}

// Interval converts IntervalHours to a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalHours * float64(time.Hour))
}

// IsHeadless reports the effective headless setting.
func (c *Config) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}
