// Package scheduler refreshes the dashboard on the configured update frequency.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/Alias1177/StockDashboard/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Refresher is what gets run on every tick
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	refresher Refresher
	cron      *cron.Cron
	logger    zerolog.Logger

	mu      sync.Mutex
	ctx     context.Context
	entry   cron.EntryID
	spec    string
	started bool
}

func New(refresher Refresher) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		cron:      cron.New(),
		logger:    log.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules refreshes at freq and starts the cron loop
func (s *Scheduler) Start(ctx context.Context, freq models.UpdateFrequency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	if err := s.scheduleLocked(freq); err != nil {
		return err
	}

	s.cron.Start()
	s.started = true
	s.logger.Info().Str("spec", s.spec).Msg("Refresh scheduler started")
	return nil
}

// Reschedule replaces the refresh job when the update frequency changes
func (s *Scheduler) Reschedule(freq models.UpdateFrequency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return errors.New("scheduler not started")
	}
	if freq.CronSpec() == s.spec {
		return nil
	}
	if err := s.scheduleLocked(freq); err != nil {
		return err
	}
	s.logger.Info().Str("spec", s.spec).Msg("Refresh rescheduled")
	return nil
}

// Spec returns the cron descriptor currently in use
func (s *Scheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Stop halts the cron loop and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	if !started {
		return
	}
	s.logger.Info().Msg("Stopping refresh scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) scheduleLocked(freq models.UpdateFrequency) error {
	spec := freq.CronSpec()
	id, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return err
	}
	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	s.entry = id
	s.spec = spec
	return nil
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled refresh failed")
		return
	}
	s.logger.Debug().Msg("Scheduled refresh completed")
}
