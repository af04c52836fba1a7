package scheduler

import (
	"context"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Purger    repository.RunPurger `optional:"true"`
}

// NewRetentionScheduler registers the audit retention purge. It returns nil
// when no schedule is configured or no purger is available.
func NewRetentionScheduler(p Params) (*cron.Cron, error) {
	schedule := p.Config.Audit.RetentionSchedule
	if schedule == "" {
		log.Info().Msg("Audit retention schedule not set, purge job disabled")
		return nil, nil
	}
	if p.Purger == nil {
		log.Warn().Str("schedule", schedule).Msg("Audit retention schedule set but the timescaledb sink is disabled, purge job disabled")
		return nil, nil
	}

	c, err := newCron(schedule, purgeJob(p.Purger, p.Config.Audit.RetentionDays))
	if err != nil {
		log.Error().Err(err).Str("schedule", schedule).Msg("Failed to add cron job")
		return nil, err
	}
	log.Info().Str("schedule", schedule).Int("retention_days", p.Config.Audit.RetentionDays).Msg("Scheduled audit retention job")

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c, nil
}

func newCron(schedule string, job func()) (*cron.Cron, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))
	if _, err := c.AddFunc(schedule, job); err != nil {
		return nil, err
	}
	return c, nil
}

func purgeJob(purger repository.RunPurger, days int) func() {
	return func() {
		deleted, err := purger.PurgeOlderThan(context.Background(), days)
		if err != nil {
			log.Error().Err(err).Msg("Error during scheduled audit retention purge")
			return
		}
		log.Info().Int64("deleted", deleted).Int("retention_days", days).Msg("Audit retention purge finished")
	}
}
