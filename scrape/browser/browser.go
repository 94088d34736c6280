// Package browser backs the scrape interfaces with a real Chrome driven
// via Rod. Each Session owns one Chrome process launched headless with
// automation fingerprints suppressed; the Tab it opens applies the stealth
// page patches before any navigation.
package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/pricewatch/scrape"
)

// Factory returns a SessionFactory that launches a local Chrome per scrape
// run. Retail runs are minutes long and infrequent, so a fresh process per
// run is cheaper than keeping a warm browser recycled on a schedule.
func Factory(log *slog.Logger) scrape.SessionFactory {
	if log == nil {
		log = slog.Default()
	}
	return func(cfg scrape.Config) (scrape.Session, error) {
		return newSession(cfg, log)
	}
}

// Session owns one Chrome process.
type Session struct {
	cfg     scrape.Config
	log     *slog.Logger
	lnch    *launcher.Launcher
	browser *rod.Browser
}

func newSession(cfg scrape.Config, log *slog.Logger) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-blink-features", "AutomationControlled")

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	log.Info("browser: launched chrome", "headless", cfg.Headless)
	return &Session{cfg: cfg, log: log, lnch: l, browser: b}, nil
}

// Open creates a stealth tab with the run's identity applied: user agent,
// en-CA locale, and a desktop viewport.
func (s *Session) Open(ctx context.Context) (scrape.Page, error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	ua := s.cfg.UserAgent
	if ua == "" {
		ua = scrape.RandomUserAgent()
	}
	override := proto.NetworkSetUserAgentOverride{
		UserAgent:      ua,
		AcceptLanguage: "en-CA,en;q=0.9",
	}
	if err := override.Call(page); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: set user agent: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: set viewport: %w", err)
	}

	return &Tab{page: page, log: s.log}, nil
}

// Close shuts down Chrome and removes its temp profile.
func (s *Session) Close() error {
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return nil
}
