// Package jobs runs periodic maintenance inside the server process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/flight-booking/internal/config"
)

const purgeTimeout = time.Minute

// TokenPurger deletes refresh tokens that expired or were revoked before
// cutoff.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler owns the cron runner and its registered jobs.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// NewScheduler registers the token purge on cfg.TokenPurgeSpec.  Standard
// five-field specs and descriptors such as @daily or @every 6h are accepted.
func NewScheduler(cfg config.JobsConfig, purger TokenPurger, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := cron.New()
	logger := log.With(zap.String("job", "purge-tokens"))
	if _, err := c.AddFunc(cfg.TokenPurgeSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()
		_, _ = PurgeTokens(ctx, purger, logger, time.Now().UTC())
	}); err != nil {
		return nil, fmt.Errorf("schedule token purge %q: %w", cfg.TokenPurgeSpec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("jobs scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("jobs still running at shutdown")
	}
}

// PurgeTokens removes refresh tokens dead before now and logs the count.
func PurgeTokens(ctx context.Context, purger TokenPurger, log *zap.Logger, now time.Time) (int64, error) {
	n, err := purger.PurgeExpired(ctx, now)
	if err != nil {
		log.Error("token purge failed", zap.Error(err))
		return 0, err
	}
	log.Info("expired refresh tokens purged", zap.Int64("deleted", n))
	return n, nil
}
