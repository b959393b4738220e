package quickbooks

import (
	"context"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the periodic QuickBooks jobs: a nightly full resync as a
// safety net under missed webhooks, and a token refresh that keeps the
// stored refresh token alive.
type Scheduler struct {
	cron    *cron.Cron
	syncer  *Syncer
	oauth   *OAuthManager
	log     *zap.Logger
	nightly []func(ctx context.Context)
}

func NewScheduler(syncer *Syncer, oauth *OAuthManager, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		syncer: syncer,
		oauth:  oauth,
		log:    log,
	}
}

// AddNightlyJob registers extra work that runs after the nightly resync,
// once the project records are fresh. The reporting mirror hangs off this.
func (s *Scheduler) AddNightlyJob(fn func(ctx context.Context)) {
	s.nightly = append(s.nightly, fn)
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 2 * * *", s.fullResync)
	if err != nil {
		return err
	}
	_, err = s.cron.AddFunc("*/30 * * * *", s.refreshToken)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("quickbooks scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("quickbooks scheduler stopped")
}

func (s *Scheduler) fullResync() {
	ctx := context.Background()
	synced, failed := s.syncer.SyncAll(ctx)
	s.log.Info("nightly full resync complete",
		zap.Int("synced", synced),
		zap.Int("failed", failed))

	for _, fn := range s.nightly {
		fn(ctx)
	}
}

func (s *Scheduler) refreshToken() {
	err := s.oauth.Refresh(context.Background())
	if err == nil {
		return
	}
	// No stored token just means the account is not connected yet.
	if apperr.Is(err, apperr.KindNotFound) {
		return
	}
	s.log.Warn("scheduled token refresh failed", zap.Error(err))
}
