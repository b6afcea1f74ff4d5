package processing

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// SessionEvictor removes idle sessions; satisfied by the session manager
type SessionEvictor interface {
	EvictIdle() (int, error)
}

// GarbageCollector compacts storage; satisfied by the badger manager
type GarbageCollector interface {
	RunGC() error
}

// Scheduler runs the periodic maintenance work: embedding backfill for the
// corpus, idle session eviction and storage compaction.
type Scheduler struct {
	service *Service
	evictor SessionEvictor
	gc      GarbageCollector
	cron    *cron.Cron
	logger  arbor.ILogger
}

// NewScheduler creates a maintenance scheduler
func NewScheduler(service *Service, evictor SessionEvictor, gc GarbageCollector, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		service: service,
		evictor: evictor,
		gc:      gc,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start begins the scheduled maintenance
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = "*/5 * * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runMaintenance()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Maintenance scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Maintenance scheduler stopped")
}

// RunNow triggers an immediate maintenance run
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate maintenance run")
	go s.runMaintenance()
}

func (s *Scheduler) runMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	stats, err := s.service.EmbedPending(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Embedding backfill failed")
	} else if stats.Embedded > 0 || stats.Failed > 0 {
		s.logger.Info().
			Int("embedded", stats.Embedded).
			Int("failed", stats.Failed).
			Dur("duration", stats.Duration).
			Msg("Embedding backfill completed")
	}

	if s.evictor != nil {
		if _, err := s.evictor.EvictIdle(); err != nil {
			s.logger.Warn().Err(err).Msg("Idle session eviction failed")
		}
	}

	if s.gc != nil {
		if err := s.gc.RunGC(); err != nil {
			s.logger.Warn().Err(err).Msg("Storage garbage collection failed")
		}
	}
}
