package models

import (
	"time"
)

// Stock is an entry of the backend's stock list
type Stock struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector,omitempty"`
}

// RawRecord is a single day's OHLCV entry as returned by the backend.
// Numeric fields may arrive either as JSON numbers or as decimal strings.
type RawRecord struct {
	Date   string `json:"date"`
	Open   Number `json:"open"`
	High   Number `json:"high"`
	Low    Number `json:"low"`
	Close  Number `json:"close"`
	Volume Number `json:"volume"`
}

// ColorHint tells the chart which colour a volume bar gets
type ColorHint string

const (
	ColorUp   ColorHint = "up"
	ColorDown ColorHint = "down"
)

// PricePoint is a chart-ready candle keyed by unix seconds
type PricePoint struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// VolumePoint is a chart-ready volume bar keyed by unix seconds
type VolumePoint struct {
	Time  int64     `json:"time"`
	Value float64   `json:"value"`
	Color ColorHint `json:"color"`
}

// VisibleRange is the time range the chart shows on first render
type VisibleRange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Anomaly is a flagged event computed by the backend.
// Older backends send "timestamp" instead of "date" and "anomaly_type" instead of "type".
type Anomaly struct {
	ID              int64   `json:"id"`
	Date            string  `json:"date,omitempty"`
	Timestamp       string  `json:"timestamp,omitempty"`
	Type            string  `json:"type,omitempty"`
	AnomalyType     string  `json:"anomaly_type,omitempty"`
	Score           float64 `json:"score"`
	Description     string  `json:"description,omitempty"`
	Status          string  `json:"status,omitempty"`
	DetectionMethod string  `json:"detection_method,omitempty"`
	Threshold       float64 `json:"threshold,omitempty"`
	IsVerified      bool    `json:"is_verified,omitempty"`
}

// When returns the date the anomaly refers to
func (a Anomaly) When() string {
	if a.Date != "" {
		return a.Date
	}
	return a.Timestamp
}

// Kind returns the anomaly type, whichever field the backend filled
func (a Anomaly) Kind() string {
	if a.Type != "" {
		return a.Type
	}
	return a.AnomalyType
}

// UpdateFrequency controls how often the dashboard refreshes on its own
type UpdateFrequency string

const (
	UpdateHourly UpdateFrequency = "hourly"
	UpdateDaily  UpdateFrequency = "daily"
	UpdateWeekly UpdateFrequency = "weekly"
)

// Valid reports whether f is one of the known frequencies
func (f UpdateFrequency) Valid() bool {
	switch f {
	case UpdateHourly, UpdateDaily, UpdateWeekly:
		return true
	}
	return false
}

// Settings mirrors the backend's /settings document
type Settings struct {
	AnomalyThreshold float64         `json:"anomalyThreshold"`
	LookbackPeriod   int             `json:"lookbackPeriod"`
	UpdateFrequency  UpdateFrequency `json:"updateFrequency"`
}

// DefaultSettings are used until the backend answers
func DefaultSettings() Settings {
	return Settings{
		AnomalyThreshold: 0.8,
		LookbackPeriod:   30,
		UpdateFrequency:  UpdateDaily,
	}
}

// DateRange bounds a stock-data or anomalies query
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
