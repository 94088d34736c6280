package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazyhaar/pricewatch/analyze"
)

// Embed colors per severity, Discord decimal RGB.
var severityColors = map[analyze.Severity]int{
	analyze.SeverityCritical: 0xFF0000,
	analyze.SeverityHigh:     0xFF6600,
	analyze.SeverityModerate: 0xFFCC00,
	analyze.SeverityNone:     0x00CC00,
}

// Webhook posts anomaly embeds to a Discord-compatible webhook URL with
// retry and exponential backoff.
type Webhook struct {
	url        string
	client     *http.Client
	maxRetries int
	log        *slog.Logger
}

// WebhookOption configures a Webhook alerter.
type WebhookOption func(*Webhook)

// WithRetries sets the maximum number of retries. Default: 3.
func WithRetries(n int) WebhookOption {
	return func(w *Webhook) { w.maxRetries = n }
}

// WithHTTPClient replaces the HTTP client (tests use a short timeout).
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) { w.client = c }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) WebhookOption {
	return func(w *Webhook) { w.log = l }
}

// NewWebhook creates a Webhook alerter targeting url.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:        url,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embed struct {
	Title  string       `json:"title"`
	URL    string       `json:"url,omitempty"`
	Color  int          `json:"color"`
	Fields []embedField `json:"fields"`
	Footer struct {
		Text string `json:"text"`
	} `json:"footer"`
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

// SendAnomaly posts one anomaly embed. Delivery failures are logged and
// reported as false.
func (w *Webhook) SendAnomaly(ctx context.Context, a Anomaly) bool {
	if err := w.post(ctx, buildEmbed(a)); err != nil {
		w.log.Error("alert: webhook delivery failed", "sku", a.SKU, "error", err)
		return false
	}
	w.log.Info("alert: sent", "sku", a.SKU, "title", truncate(a.Title, 60))
	return true
}

// SendTest posts a canned anomaly to verify webhook connectivity.
func (w *Webhook) SendTest(ctx context.Context) bool {
	return w.SendAnomaly(ctx, Anomaly{
		Title:  "Test Product - Statistical Anomaly Detector",
		URL:    "https://www.amazon.ca/dp/TEST123",
		SKU:    "TEST123",
		Source: "amazon",
		Result: analyze.Result{
			IsAnomaly:    true,
			Kind:         analyze.KindBoth,
			CurrentPrice: 29.99,
			MeanPrice:    149.99,
			ZScore:       -4.2,
			DropPercent:  75.0,
			RecentAvg:    124.99,
			HistoryCount: 25,
		},
	})
}

func buildEmbed(a Anomaly) embed {
	r := a.Result
	title := a.Title
	if a.Source != "" {
		title = fmt.Sprintf("[%s] %s", strings.ToUpper(a.Source), a.Title)
	}

	e := embed{
		Title: "Price Anomaly: " + truncate(title, 100),
		URL:   a.URL,
		Color: severityColors[r.Severity()],
		Fields: []embedField{
			{Name: "Current Price", Value: fmt.Sprintf("**$%.2f**", r.CurrentPrice), Inline: true},
			{Name: "Historical Avg", Value: fmt.Sprintf("$%.2f", r.MeanPrice), Inline: true},
			{Name: "Z-Score", Value: fmt.Sprintf("%.2f", r.ZScore), Inline: true},
			{Name: "Drop %", Value: fmt.Sprintf("%.1f%%", r.DropPercent), Inline: true},
			{Name: "Recent Avg", Value: fmt.Sprintf("$%.2f", r.RecentAvg), Inline: true},
			{Name: "Data Points", Value: fmt.Sprintf("%d", r.HistoryCount), Inline: true},
			{Name: "Anomaly Type", Value: kindLabel(r.Kind)},
		},
	}
	sku := a.SKU
	if sku == "" {
		sku = "N/A"
	}
	e.Footer.Text = fmt.Sprintf("Severity: %s • SKU: %s", r.Severity(), sku)
	return e
}

func kindLabel(k analyze.Kind) string {
	switch k {
	case analyze.KindBoth:
		return "**Z-Score + Sudden Drop**"
	case analyze.KindZScore:
		return "**Statistical Outlier** (Z-Score)"
	case analyze.KindSuddenDrop:
		return "**Sudden Price Drop**"
	default:
		return "Unknown"
	}
}

// truncate shortens s to at most n bytes plus an ellipsis, backing off to
// a rune boundary so multibyte characters in titles are never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func (w *Webhook) post(ctx context.Context, e embed) error {
	body, err := json.Marshal(payload{Embeds: []embed{e}})
	if err != nil {
		return fmt.Errorf("alert: marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("alert: new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			w.log.Warn("alert: request failed", "attempt", attempt+1, "error", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("alert: status %d", resp.StatusCode)
		w.log.Warn("alert: bad status", "attempt", attempt+1, "status", resp.StatusCode)
	}
	return fmt.Errorf("alert: all retries exhausted: %w", lastErr)
}
