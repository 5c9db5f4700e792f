package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
)

// Scheduler runs the periodic housekeeping jobs: nightly purge of
// expired and consumed access codes, so the gate table stays small.
type Scheduler struct {
	cron  *cron.Cron
	codes *repository.AccessCodeRepository
	log   zerolog.Logger
}

func NewScheduler(codes *repository.AccessCodeRepository, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		codes: codes,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.purgeAccessCodes); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeAccessCodes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.codes.PurgeStale(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("access code purge failed")
		return
	}
	if purged > 0 {
		s.log.Info().Int64("purged", purged).Msg("stale access codes removed")
	}
}
