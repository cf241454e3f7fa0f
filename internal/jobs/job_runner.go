package jobs

import (
	"context"
	"time"

	"smartparking-backend/internal/config"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/service"
)

const (
	JobSendPaymentReminders      = "send-payment-reminders"
	JobReportOverdueReservations = "report-overdue-reservations"
	JobReconcileSpaceStatus      = "reconcile-space-status"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Users        service.UserService
	Reservations service.ReservationService
	Billing      service.BillingService
	Notifier     service.Notifier
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	if services.Notifier == nil {
		services.Notifier = service.NewNoopNotifier()
	}
	return &JobRunner{
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// JobNames lists the jobs accepted by RunJob
func JobNames() []string {
	return []string{JobSendPaymentReminders, JobReportOverdueReservations, JobReconcileSpaceStatus}
}

// RunJob runs a job by name and reports whether the name was known
func (jr *JobRunner) RunJob(name string) bool {
	switch name {
	case JobSendPaymentReminders:
		jr.SendPaymentReminders()
	case JobReportOverdueReservations:
		jr.ReportOverdueReservations()
	case JobReconcileSpaceStatus:
		jr.ReconcileSpaceStatus()
	case "all":
		for _, n := range JobNames() {
			jr.RunJob(n)
		}
	default:
		return false
	}
	return true
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	if err := jobFunc(context.Background()); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}
