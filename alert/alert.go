// Package alert dispatches anomaly notifications. The production path is a
// Discord webhook; without a configured URL alerts degrade to log lines so
// an unconfigured deployment still surfaces what it found.
package alert

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/pricewatch/analyze"
)

// Anomaly is everything a notification needs about one finding.
type Anomaly struct {
	Title  string
	URL    string
	SKU    string
	Source string
	Result analyze.Result
}

// Alerter delivers anomaly notifications. SendAnomaly reports whether the
// notification actually went out; a degraded or failed delivery is false,
// never an error, because one bad webhook must not abort a cycle.
type Alerter interface {
	SendAnomaly(ctx context.Context, a Anomaly) bool
}

// LogAlerter writes anomalies to the log and reports them as not sent.
// It is the fallback when no webhook URL is configured.
type LogAlerter struct {
	Log *slog.Logger
}

func (l LogAlerter) SendAnomaly(ctx context.Context, a Anomaly) bool {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	log.Warn("anomaly detected but no webhook configured",
		"title", a.Title,
		"source", a.Source,
		"sku", a.SKU,
		"price", a.Result.CurrentPrice,
		"zscore", a.Result.ZScore,
		"drop_percent", a.Result.DropPercent,
		"severity", a.Result.Severity(),
	)
	return false
}
