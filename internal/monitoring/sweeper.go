// Package monitoring runs the background maintenance loops.
package monitoring

import (
	"time"

	"github.com/devtrail/devtrail-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// TokenSweeper periodically clears expired password-reset tokens so stale
// secret material does not linger in the store. The cadence is a standard
// cron expression.
type TokenSweeper struct {
	users    services.UserServiceProvider
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
	nextRun  time.Time
}

// NewTokenSweeper creates a sweeper from a cron cadence spec.
func NewTokenSweeper(users services.UserServiceProvider, spec string) (*TokenSweeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	return &TokenSweeper{
		users:    users,
		schedule: schedule,
		done:     make(chan bool),
		nextRun:  schedule.Next(time.Now()),
	}, nil
}

// Run starts the sweeper's ticking loop.
func (s *TokenSweeper) Run() {
	log.Info().Time("next_run", s.nextRun).Msg("Starting token sweeper...")
	s.ticker = time.NewTicker(30 * time.Second)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping token sweeper.")
			return
		case now := <-s.ticker.C:
			if now.After(s.nextRun) {
				s.sweep()
				s.nextRun = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the sweeper.
func (s *TokenSweeper) Stop() {
	s.done <- true
}

func (s *TokenSweeper) sweep() {
	purged, err := s.users.PurgeExpiredResetTokens()
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to purge expired reset tokens")
		return
	}
	if purged > 0 {
		log.Info().Int64("purged", purged).Msg("Sweeper: cleared expired reset tokens")
	}
}
