package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mukisa/dukani/internal/config"
	"github.com/mukisa/dukani/internal/service/digest"
	"github.com/mukisa/dukani/pkg/clients/webhook"
)

// Scheduler runs the periodic low-stock digest.
type Scheduler struct {
	cron      *cron.Cron
	digestSvc *digest.Service
	alerts    webhook.Client
	cfg       config.DigestConfig
	logger    *zap.Logger
}

// NewScheduler creates a scheduler in the configured timezone, falling back
// to local time when the zone cannot be loaded.
func NewScheduler(cfg config.DigestConfig, digestSvc *digest.Service, alerts webhook.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("invalid timezone, using local time", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:      cron.New(opts...),
		digestSvc: digestSvc,
		alerts:    alerts,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendStockDigest); err != nil {
		s.logger.Error("failed to schedule stock digest", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendStockDigest() {
	s.logger.Info("generating stock digest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	d, err := s.digestSvc.Generate(ctx)
	if err != nil {
		s.logger.Error("failed to generate stock digest", zap.Error(err))
		return
	}

	if d.OutOfStock == 0 && d.LowStock == 0 {
		s.logger.Info("no items need attention, skipping digest post")
		return
	}

	if err := s.alerts.PostDigest(ctx, d); err != nil {
		s.logger.Error("failed to post stock digest", zap.Error(err))
		return
	}
	s.logger.Info("stock digest posted",
		zap.Int("out_of_stock", d.OutOfStock),
		zap.Int("low_stock", d.LowStock))
}
