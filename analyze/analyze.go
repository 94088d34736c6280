// Package analyze classifies a current price against its own history.
//
// Two independent detectors run on every call: a z-score test against the
// full history and a sudden-drop test against the recent window. Both are
// pure functions of their inputs; the package holds no state beyond the
// analyzer's thresholds.
package analyze

import "math"

// Default thresholds. A z-score below -3 is a strong statistical outlier;
// a drop above 70% against the recent window is a crash, not a sale.
const (
	DefaultZScoreThreshold = -3.0
	DefaultDropThreshold   = 70.0

	// MinHistoryForZScore is the minimum series length before a z-score is
	// trusted. Below it the estimate of the standard deviation is noise.
	MinHistoryForZScore = 5

	// MinHistoryForDrop is the minimum series length before the drop
	// detector fires, and the size of the recent window.
	MinHistoryForDrop = 3
)

// Kind classifies which detector fired.
type Kind string

const (
	KindNone       Kind = "none"
	KindZScore     Kind = "zscore"
	KindSuddenDrop Kind = "sudden_drop"
	KindBoth       Kind = "both"
)

// Severity ranks how strong the combined signal is.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Result is the outcome of analyzing one price against one history.
type Result struct {
	IsAnomaly    bool    `json:"is_anomaly"`
	Kind         Kind    `json:"kind"`
	CurrentPrice float64 `json:"current_price"`
	MeanPrice    float64 `json:"mean_price"`
	ZScore       float64 `json:"zscore"`
	DropPercent  float64 `json:"drop_percent"`
	RecentAvg    float64 `json:"recent_avg"`
	HistoryCount int     `json:"history_count"`
}

// Severity derives the rank from the classification and magnitudes. It is
// never stored independently of the result it describes.
func (r Result) Severity() Severity {
	switch {
	case r.Kind == KindBoth:
		return SeverityCritical
	case r.ZScore < -4 || r.DropPercent > 80:
		return SeverityHigh
	case r.IsAnomaly:
		return SeverityModerate
	default:
		return SeverityNone
	}
}

// Analyzer holds the detection thresholds. The zero value is unusable; use
// New for defaults.
type Analyzer struct {
	// ZScoreThreshold flags when the z-score falls below it. Negative.
	ZScoreThreshold float64
	// DropThreshold flags when the drop percentage exceeds it.
	DropThreshold float64
	// MinZScoreHistory and MinDropHistory gate each detector on series length.
	MinZScoreHistory int
	MinDropHistory   int
}

// New returns an Analyzer with the default thresholds.
func New() *Analyzer {
	return &Analyzer{
		ZScoreThreshold:  DefaultZScoreThreshold,
		DropThreshold:    DefaultDropThreshold,
		MinZScoreHistory: MinHistoryForZScore,
		MinDropHistory:   MinHistoryForDrop,
	}
}

// CalcZScore computes (current - mean) / stdev over history. It returns 0
// for fewer than 2 points or zero variance: a flat series cannot produce a
// meaningful outlier signal, and that is not an error.
func CalcZScore(current float64, history []float64) float64 {
	if len(history) < 2 {
		return 0
	}
	mean := meanOf(history)
	stdev := stdevOf(history, mean)
	if stdev == 0 {
		return 0
	}
	return (current - mean) / stdev
}

// CalcDropPercent computes the percentage fall from the mean of recent to
// current. Positive means the price fell; negative means it rose. An empty
// or zero-mean window yields 0.
func CalcDropPercent(current float64, recent []float64) float64 {
	if len(recent) == 0 {
		return 0
	}
	avg := meanOf(recent)
	if avg == 0 {
		return 0
	}
	return (avg - current) / avg * 100
}

// Analyze runs both detectors on current against history (oldest first) and
// returns the classified result.
func (a *Analyzer) Analyze(current float64, history []float64) Result {
	meanPrice := current
	if len(history) > 0 {
		meanPrice = meanOf(history)
	}

	zscore := CalcZScore(current, history)

	recent := history
	if len(history) > MinHistoryForDrop {
		recent = history[len(history)-MinHistoryForDrop:]
	}
	recentAvg := current
	if len(recent) > 0 {
		recentAvg = meanOf(recent)
	}
	dropPercent := CalcDropPercent(current, recent)

	zscoreHit := len(history) >= a.MinZScoreHistory && zscore < a.ZScoreThreshold
	dropHit := len(history) >= a.MinDropHistory && dropPercent > a.DropThreshold

	kind := KindNone
	switch {
	case zscoreHit && dropHit:
		kind = KindBoth
	case zscoreHit:
		kind = KindZScore
	case dropHit:
		kind = KindSuddenDrop
	}

	return Result{
		IsAnomaly:    kind != KindNone,
		Kind:         kind,
		CurrentPrice: current,
		MeanPrice:    meanPrice,
		ZScore:       zscore,
		DropPercent:  dropPercent,
		RecentAvg:    recentAvg,
		HistoryCount: len(history),
	}
}

// ShouldAlert reports whether a result warrants dispatching an alert.
// Today every anomaly alerts; this is the seam where per-product cooldown
// or severity filtering would slot in.
func (a *Analyzer) ShouldAlert(r Result) bool {
	return r.IsAnomaly
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdevOf is the sample standard deviation (n-1 denominator).
func stdevOf(xs []float64, mean float64) float64 {
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
