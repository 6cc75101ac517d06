// Package alert announces newly flagged anomalies.
package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Alias1177/StockDashboard/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notifier delivers a batch of anomalies for one symbol
type Notifier interface {
	Notify(ctx context.Context, symbol string, anomalies []models.Anomaly) error
}

// anomalyKey identifies an anomaly. Backends that omit ids are keyed by date and type.
type anomalyKey struct {
	id   int64
	date string
	kind string
}

func keyOf(a models.Anomaly) anomalyKey {
	if a.ID != 0 {
		return anomalyKey{id: a.ID}
	}
	return anomalyKey{date: a.When(), kind: a.Kind()}
}

// Watcher forwards each anomaly at most once, and only when its score reaches the threshold.
// It remembers only what the latest refresh of each symbol returned.
type Watcher struct {
	notifier Notifier
	logger   zerolog.Logger

	mu   sync.Mutex
	seen map[string]map[anomalyKey]struct{}
}

// NewWatcher creates a watcher sending through notifier
func NewWatcher(notifier Notifier) *Watcher {
	return &Watcher{
		notifier: notifier,
		logger:   log.With().Str("component", "alert_watcher").Logger(),
		seen:     make(map[string]map[anomalyKey]struct{}),
	}
}

// OnAnomalies implements dashboard.AnomalyListener
func (w *Watcher) OnAnomalies(ctx context.Context, symbol string, anomalies []models.Anomaly, settings models.Settings) {
	fresh := w.filter(symbol, anomalies, settings.AnomalyThreshold)
	if len(fresh) == 0 {
		return
	}

	if err := w.notifier.Notify(ctx, symbol, fresh); err != nil {
		w.logger.Error().Err(err).Str("symbol", symbol).Int("count", len(fresh)).Msg("Failed to send anomaly alert")
		w.forget(symbol, fresh)
		return
	}
	w.logger.Info().Str("symbol", symbol).Int("count", len(fresh)).Msg("Anomaly alert sent")
}

func (w *Watcher) filter(symbol string, anomalies []models.Anomaly, threshold float64) []models.Anomaly {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.seen[symbol]
	next := make(map[anomalyKey]struct{}, len(anomalies))

	var fresh []models.Anomaly
	for _, a := range anomalies {
		if a.Score < threshold {
			continue
		}
		key := keyOf(a)
		_, announced := prev[key]
		_, dup := next[key]
		next[key] = struct{}{}
		if announced || dup {
			continue
		}
		fresh = append(fresh, a)
	}
	w.seen[symbol] = next
	return fresh
}

// forget lets failed anomalies be retried on the next refresh
func (w *Watcher) forget(symbol string, anomalies []models.Anomaly) {
	w.mu.Lock()
	defer w.mu.Unlock()
	seen := w.seen[symbol]
	for _, a := range anomalies {
		delete(seen, keyOf(a))
	}
}

// FormatMessage renders a Markdown alert body
func FormatMessage(symbol string, anomalies []models.Anomaly) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 *Stock Anomaly Alert - %s*\n\n", symbol)
	b.WriteString("The following anomalies were detected:\n")
	for _, a := range anomalies {
		fmt.Fprintf(&b, "\n*Date:* %s\n*Type:* %s\n*Score:* %.2f\n", a.When(), a.Kind(), a.Score)
		if a.DetectionMethod != "" {
			fmt.Fprintf(&b, "*Method:* %s\n", a.DetectionMethod)
		}
		if a.Description != "" {
			fmt.Fprintf(&b, "%s\n", a.Description)
		}
	}
	return b.String()
}
