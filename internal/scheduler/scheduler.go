package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"smartparking-backend/internal/jobs"
	"smartparking-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler running on UTC with seconds precision.
// It fails when any configured schedule does not parse.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
		jobs: jobRunner,
	}
	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	entries := []struct {
		name string
		spec string
		run  func()
	}{
		{jobs.JobSendPaymentReminders, cfg.SendPaymentReminders, s.jobs.SendPaymentReminders},
		{jobs.JobReportOverdueReservations, cfg.ReportOverdueReservations, s.jobs.ReportOverdueReservations},
		{jobs.JobReconcileSpaceStatus, cfg.ReconcileSpaceStatus, s.jobs.ReconcileSpaceStatus},
	}
	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, e.run); err != nil {
			return fmt.Errorf("failed to register %s job with schedule %q: %w", e.name, e.spec, err)
		}
		logger.Info("Registered cron job", "job", e.name, "schedule", e.spec)
	}
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
