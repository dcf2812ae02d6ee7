package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/codecoach/codecoach-api/internal/repository"
)

// RegistrationSweeper periodically removes accounts that never confirmed
// their email within the allowed window.
type RegistrationSweeper struct {
	users    repository.UserRepository
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron
	logger   zerolog.Logger
}

// NewRegistrationSweeper constructs the sweeper. Schedule is a cron
// expression, maxAge the confirmation window.
func NewRegistrationSweeper(userRepo repository.UserRepository, schedule string, maxAge time.Duration, logger zerolog.Logger) *RegistrationSweeper {
	return &RegistrationSweeper{
		users:    userRepo,
		schedule: schedule,
		maxAge:   maxAge,
		cron:     cron.New(),
		logger:   logger.With().Str("component", "registration_sweeper").Logger(),
	}
}

// Start registers the sweep on the cron schedule and begins running it.
// Sweep failures are logged and retried on the next tick.
func (s *RegistrationSweeper) Start() error {
	if s.schedule == "" {
		s.logger.Info().Msg("registration sweep disabled, no schedule configured")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Run(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("registration sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule registration sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Dur("max_age", s.maxAge).Msg("registration sweeper started")
	return nil
}

// Stop halts the scheduler. Already-running sweeps finish on their own.
func (s *RegistrationSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Run performs a single sweep.
func (s *RegistrationSweeper) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-s.maxAge)
	removed, err := s.users.DeleteUnconfirmedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete unconfirmed users: %w", err)
	}

	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("stale registrations swept")
	}
	return nil
}
