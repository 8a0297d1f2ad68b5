package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Clemtourte/tft-app-project/internal/config"
	"github.com/Clemtourte/tft-app-project/internal/ingest"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Syncer syncs a list of players
type Syncer interface {
	SyncTracked(ctx context.Context, players []config.RiotID, opts ingest.Options) error
}

// Scheduler resyncs the configured players on a cron schedule.
// Runs never overlap, so there is a single writer at any time.
type Scheduler struct {
	cfg    *config.Config
	syncer Syncer
	cron   *cron.Cron
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, syncer Syncer) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cfg:    cfg,
		syncer: syncer,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start registers the sync job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.SyncCron, func() {
		log.Info().Msg("Running scheduled sync...")
		if err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.SyncCron).
		Msg("Player sync scheduled")

	return nil
}

// Stop stops the scheduler and waits for a running sync to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

// RunOnce syncs every tracked player now
func (s *Scheduler) RunOnce(ctx context.Context) error {
	players, err := s.cfg.Players()
	if err != nil {
		return err
	}
	if len(players) == 0 {
		log.Warn().Msg("No tracked players configured, nothing to sync")
		return nil
	}

	start := time.Now()
	err = s.syncer.SyncTracked(ctx, players, s.options())

	log.Info().
		Int("players", len(players)).
		Dur("duration", time.Since(start)).
		Bool("ok", err == nil).
		Msg("Sync run finished")

	return err
}

func (s *Scheduler) options() ingest.Options {
	return ingest.Options{
		MaxMatches: s.cfg.SyncMaxMatches,
		BatchSize:  s.cfg.SyncBatchSize,
		BatchDelay: s.cfg.SyncBatchDelay,
	}
}

// cronLogger routes cron's internal logging to zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
