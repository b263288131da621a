package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"MacroDash/internal/logging"
	"MacroDash/internal/model"
	"MacroDash/internal/recorder"
)

// Refresher is the part of the memo the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) (model.Dataset, error)
}

// Scheduler runs the timed cache refresh.
type Scheduler struct {
	Cron *cron.Cron
	Memo Refresher
	Ctx  context.Context
	log  logrus.FieldLogger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, memo Refresher, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Memo: memo,
		Ctx:  ctx,
		log:  logging.Component(log, "scheduler"),
	}
}

// Register adds the refresh job. An empty spec disables timed refreshes.
func (s *Scheduler) Register(refreshCron string) error {
	if refreshCron == "" {
		s.log.Info("timed refresh disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(refreshCron, func() { s.refresh("schedule") }); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunRefreshNow loads the dataset immediately (RUN_ON_START).
func (s *Scheduler) RunRefreshNow() error {
	return s.refresh("startup")
}

func (s *Scheduler) refresh(trigger string) error {
	s.log.Infof("running %s refresh", trigger)
	ds, err := s.Memo.Refresh(recorder.WithTrigger(s.Ctx, trigger))
	if err != nil {
		s.log.Errorf("%s refresh: %v", trigger, err)
		return err
	}
	s.log.Infof("%s refresh loaded %d rows", trigger, len(ds.Rows))
	return nil
}
