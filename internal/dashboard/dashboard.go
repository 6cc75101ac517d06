// Package dashboard holds the dashboard's view state and coordinates fetching,
// normalizing and rendering whenever the selection changes.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Alias1177/StockDashboard/internal/chart"
	"github.com/Alias1177/StockDashboard/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSymbol       = "AAPL"
	DefaultLookbackDays = 30

	FetchFailedMessage  = "Failed to fetch data. Please try again."
	StocksFailedMessage = "Failed to fetch available stocks"
)

// ErrStale is returned by Refresh when a newer refresh started before this one finished
var ErrStale = errors.New("superseded by a newer refresh")

// Renderer draws a normalized series for a symbol. *chart.Panel satisfies it.
type Renderer interface {
	Render(symbol string, series chart.Series) error
}

// AnomalyListener is told about the anomalies of every successful refresh
type AnomalyListener interface {
	OnAnomalies(ctx context.Context, symbol string, anomalies []models.Anomaly, settings models.Settings)
}

// State is a copy of the dashboard's view state
type State struct {
	Stocks    []models.Stock     `json:"stocks"`
	Symbol    string             `json:"symbol"`
	Range     models.DateRange   `json:"range"`
	Records   []models.RawRecord `json:"records"`
	Anomalies []models.Anomaly   `json:"anomalies"`
	Series    chart.Series       `json:"series"`
	Settings  models.Settings    `json:"settings"`
	Loading   bool               `json:"loading"`
	Error     string             `json:"error,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Options configure a Dashboard
type Options struct {
	Symbol       string
	LookbackDays int
	Now          func() time.Time
}

// Dashboard owns the view state. All methods are safe for concurrent use.
type Dashboard struct {
	api       models.DashboardAPI
	renderer  Renderer
	listeners []AnomalyListener
	now       func() time.Time
	logger    zerolog.Logger

	generation atomic.Uint64

	mu    sync.RWMutex
	state State
}

// New creates a dashboard. renderer may be nil when nothing draws the chart.
func New(api models.DashboardAPI, renderer Renderer, opts Options, listeners ...AnomalyListener) *Dashboard {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	days := opts.LookbackDays
	if days <= 0 {
		days = DefaultLookbackDays
	}

	return &Dashboard{
		api:       api,
		renderer:  renderer,
		listeners: listeners,
		now:       now,
		logger:    log.With().Str("component", "dashboard").Logger(),
		state: State{
			Symbol:    strings.ToUpper(strings.TrimSpace(opts.Symbol)),
			Range:     models.DefaultRange(now(), days),
			Records:   []models.RawRecord{},
			Anomalies: []models.Anomaly{},
			Series:    chart.Normalize(nil),
			Settings:  models.DefaultSettings(),
		},
	}
}

// Select changes the selected symbol. It does not refresh, but a refresh
// still in flight for the previous selection becomes stale.
func (d *Dashboard) Select(symbol string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == d.state.Symbol {
		return
	}
	d.state.Symbol = symbol
	d.invalidateLocked()
}

// SetRange changes the queried date range. Like Select it invalidates an in-flight refresh.
func (d *Dashboard) SetRange(r models.DateRange) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r.Start.Equal(d.state.Range.Start) && r.End.Equal(d.state.Range.End) {
		return
	}
	d.state.Range = r
	d.invalidateLocked()
}

// invalidateLocked makes any running refresh stale. Its loading state goes with it.
func (d *Dashboard) invalidateLocked() {
	d.generation.Add(1)
	d.state.Loading = false
}

// LoadStocks fetches the stock list and selects the first stock when nothing is selected
func (d *Dashboard) LoadStocks(ctx context.Context) error {
	stocks, err := d.api.GetStocks(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.logger.Error().Err(err).Msg("Error fetching stocks")
		d.state.Error = StocksFailedMessage
		return err
	}

	d.state.Stocks = stocks
	if d.state.Symbol == "" && len(stocks) > 0 {
		d.state.Symbol = stocks[0].Symbol
		d.invalidateLocked()
	}
	d.logger.Info().Int("count", len(stocks)).Str("selected", d.state.Symbol).Msg("Loaded stocks")
	return nil
}

// Refresh fetches price data and anomalies for the current selection concurrently.
// If either request fails nothing is replaced and the error message is set.
// Results of a refresh that was overtaken by a newer one are dropped with ErrStale.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	symbol, r := d.state.Symbol, d.state.Range
	if symbol == "" {
		d.mu.Unlock()
		return nil
	}
	gen := d.generation.Add(1)
	d.state.Loading = true
	d.state.Error = ""
	d.mu.Unlock()

	logger := d.logger.With().
		Str("request_id", uuid.NewString()).
		Uint64("generation", gen).
		Str("symbol", symbol).
		Logger()
	logger.Debug().Time("start", r.Start).Time("end", r.End).Msg("Refreshing")

	var (
		records   []models.RawRecord
		anomalies []models.Anomaly
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = d.api.GetStockData(gctx, symbol, r)
		return err
	})
	g.Go(func() error {
		var err error
		anomalies, err = d.api.GetAnomalies(gctx, symbol, r)
		return err
	})
	fetchErr := g.Wait()

	var series chart.Series
	if fetchErr == nil {
		series = chart.Normalize(records)
	}

	d.mu.Lock()
	if gen != d.generation.Load() {
		d.mu.Unlock()
		logger.Debug().Msg("Discarding stale response")
		return ErrStale
	}

	d.state.Loading = false
	if fetchErr != nil {
		d.state.Error = FetchFailedMessage
		d.mu.Unlock()
		logger.Error().Err(fetchErr).Msg("Error fetching data")
		return fetchErr
	}

	d.state.Records = records
	d.state.Anomalies = anomalies
	d.state.Series = series
	d.state.UpdatedAt = d.now()
	settings := d.state.Settings

	var renderErr error
	if d.renderer != nil {
		renderErr = d.renderer.Render(symbol, series)
	}
	d.mu.Unlock()

	if renderErr != nil {
		logger.Error().Err(renderErr).Msg("Error rendering chart")
	}

	logger.Info().
		Int("records", len(records)).
		Int("points", len(series.Prices)).
		Int("anomalies", len(anomalies)).
		Msg("Dashboard refreshed")

	for _, l := range d.listeners {
		l.OnAnomalies(ctx, symbol, anomalies, settings)
	}
	return nil
}

// LoadSettings fetches settings from the backend. On failure the current settings are kept.
func (d *Dashboard) LoadSettings(ctx context.Context) models.Settings {
	s, err := d.api.GetSettings(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.logger.Error().Err(err).Msg("Error fetching settings")
		return d.state.Settings
	}
	d.state.Settings = s
	return s
}

// SaveSettings posts settings to the backend and keeps them locally on success
func (d *Dashboard) SaveSettings(ctx context.Context, s models.Settings) error {
	if err := d.api.SaveSettings(ctx, s); err != nil {
		d.logger.Error().Err(err).Msg("Error saving settings")
		return err
	}

	d.mu.Lock()
	d.state.Settings = s
	d.mu.Unlock()

	d.logger.Info().
		Float64("anomaly_threshold", s.AnomalyThreshold).
		Int("lookback_period", s.LookbackPeriod).
		Str("update_frequency", string(s.UpdateFrequency)).
		Msg("Settings saved")
	return nil
}

// Snapshot returns a copy of the current view state
func (d *Dashboard) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := d.state
	s.Stocks = append([]models.Stock(nil), d.state.Stocks...)
	s.Records = append([]models.RawRecord{}, d.state.Records...)
	s.Anomalies = append([]models.Anomaly{}, d.state.Anomalies...)
	s.Series = chart.Series{
		Prices:  append([]models.PricePoint{}, d.state.Series.Prices...),
		Volumes: append([]models.VolumePoint{}, d.state.Series.Volumes...),
	}
	if d.state.Series.Window != nil {
		w := *d.state.Series.Window
		s.Series.Window = &w
	}
	return s
}
