package scheduler

import (
	"context"
	"fmt"

	"github.com/amaumene/tubegram/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// cleanupSpec runs the artifact sweep every 15 minutes
const cleanupSpec = "*/15 * * * *"

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron        *cron.Cron
	cleanupCtrl *controllers.CleanupController
	logger      *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupCtrl *controllers.CleanupController, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		cleanupCtrl: cleanupCtrl,
		logger:      logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	_, err := s.cron.AddFunc(cleanupSpec, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to add cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Clear leftovers from a previous run
	go s.runCleanup()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// runCleanup executes the cleanup job
func (s *Scheduler) runCleanup() {
	s.logger.Debug("Running scheduled artifact cleanup")

	if _, err := s.cleanupCtrl.Sweep(context.Background()); err != nil {
		s.logger.WithError(err).Error("Cleanup job failed")
	}
}
