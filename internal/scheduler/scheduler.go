package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Sweeper removes blobs that no photo row references.
type Sweeper interface {
	Sweep(ctx context.Context, grace time.Duration) (int, error)
}

// Scheduler periodically reclaims orphaned photo blobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	grace     time.Duration
	log       zerolog.Logger
}

// New creates a new Scheduler.
func New(sweeper Sweeper, interval, grace time.Duration, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
		interval:  interval,
		grace:     grace,
		log:       log,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
// A non-positive interval disables the janitor.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info().Msg("scheduler: sweep interval not set; orphan sweep disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs a single sweep.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := s.sweeper.Sweep(ctx, s.grace)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduler: orphan sweep failed")
		return
	}
	s.log.Info().Int("removed", removed).Msg("scheduler: orphan sweep completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
