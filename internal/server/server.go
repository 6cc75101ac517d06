// Package server exposes the dashboard over HTTP and streams chart payloads over WebSocket.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Alias1177/StockDashboard/internal/dashboard"
	"github.com/Alias1177/StockDashboard/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Dashboard is the part of *dashboard.Dashboard the handlers drive
type Dashboard interface {
	Select(symbol string)
	SetRange(r models.DateRange)
	Refresh(ctx context.Context) error
	LoadSettings(ctx context.Context) models.Settings
	SaveSettings(ctx context.Context, s models.Settings) error
	Snapshot() dashboard.State
}

// Rescheduler is told when the update frequency changes
type Rescheduler interface {
	Reschedule(freq models.UpdateFrequency) error
}

type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Symbol      string    `json:"symbol"`
	Subscribers int       `json:"subscribers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	dash      Dashboard
	hub       *Hub
	scheduler Rescheduler
	logger    zerolog.Logger
	mux       *http.ServeMux
}

// New builds the handler set. scheduler may be nil.
func New(dash Dashboard, hub *Hub, scheduler Rescheduler) *Server {
	s := &Server{
		dash:      dash,
		hub:       hub,
		scheduler: scheduler,
		logger:    log.With().Str("component", "server").Logger(),
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/view", s.handleView)
	s.mux.HandleFunc("/api/tables", s.handleTables)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	if hub != nil {
		s.mux.Handle("/ws", hub)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting dashboard server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down dashboard server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Symbol:    s.dash.Snapshot().Symbol,
	}
	if s.hub != nil {
		status.Subscribers = s.hub.Subscribers()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.dash.Snapshot())
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := s.dash.Snapshot()
	var buf bytes.Buffer
	buf.WriteString("Detected Anomalies\n")
	if err := dashboard.WriteAnomalies(&buf, state.Anomalies, state.Loading); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	buf.WriteString("\nHistorical Data\n")
	if err := dashboard.WriteRecords(&buf, state.Records, state.Loading); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	current := s.dash.Snapshot().Range
	rng, err := parseRange(q.Get("start"), q.Get("end"), current)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if symbol := strings.TrimSpace(q.Get("symbol")); symbol != "" {
		s.dash.Select(symbol)
	}
	s.dash.SetRange(rng)

	err = s.dash.Refresh(r.Context())
	switch {
	case errors.Is(err, dashboard.ErrStale):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "refresh superseded by a newer request"})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: dashboard.FetchFailedMessage})
	default:
		writeJSON(w, http.StatusOK, s.dash.Snapshot())
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.dash.LoadSettings(r.Context()))
	case http.MethodPost:
		var settings models.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid settings payload"})
			return
		}
		if settings.UpdateFrequency != "" && !settings.UpdateFrequency.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "updateFrequency must be hourly, daily or weekly"})
			return
		}
		if err := s.dash.SaveSettings(r.Context(), settings); err != nil {
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Failed to save settings"})
			return
		}
		if s.scheduler != nil && settings.UpdateFrequency != "" {
			if err := s.scheduler.Reschedule(settings.UpdateFrequency); err != nil {
				s.logger.Warn().Err(err).Msg("Could not reschedule refresh")
			}
		}
		writeJSON(w, http.StatusOK, settings)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// parseRange applies start and end query values on top of the current range
func parseRange(start, end string, current models.DateRange) (models.DateRange, error) {
	rng := current
	if start != "" {
		ts, ok := models.ParseTimestamp(start)
		if !ok {
			return rng, errors.New("invalid start date")
		}
		rng.Start = time.Unix(ts, 0).UTC()
	}
	if end != "" {
		ts, ok := models.ParseTimestamp(end)
		if !ok {
			return rng, errors.New("invalid end date")
		}
		rng.End = time.Unix(ts, 0).UTC()
	}
	if rng.End.Before(rng.Start) {
		return rng, errors.New("end date is before start date")
	}
	return rng, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}
