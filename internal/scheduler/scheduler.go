package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/config"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/repository/mongodb"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/service/digest"
)

// Scheduler manages the recurring maintenance jobs: the daily digest and the
// retention prune.
type Scheduler struct {
	cron      *cron.Cron
	digestSvc *digest.Service
	repo      mongodb.Repository
	cfg       config.Config
	location  *time.Location
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance. An unknown timezone falls
// back to UTC.
func NewScheduler(cfg config.Config, digestSvc *digest.Service, repo mongodb.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Digest.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to UTC", zap.String("timezone", cfg.Digest.Timezone), zap.Error(err))
		location = time.UTC
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(location)),
		digestSvc: digestSvc,
		repo:      repo,
		cfg:       cfg,
		location:  location,
		logger:    logger,
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Digest.CronSchedule, s.runDailyDigest); err != nil {
		s.logger.Error("failed to schedule daily digest", zap.Error(err))
	}

	if _, err := s.cron.AddFunc(s.cfg.Retention.CronSchedule, s.runRetentionPrune); err != nil {
		s.logger.Error("failed to schedule retention prune", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailyDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// The digest job runs shortly after midnight and covers the previous day.
	yesterday := time.Now().In(s.location).AddDate(0, 0, -1)

	if _, err := s.digestSvc.GenerateDailyDigest(ctx, yesterday); err != nil {
		s.logger.Error("failed to generate daily digest", zap.Error(err))
	}
}

func (s *Scheduler) runRetentionPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.cfg.Retention.Days)

	deleted, err := s.repo.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to prune stored events", zap.Error(err))
		return
	}

	s.logger.Info("retention prune completed",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff))
}
