package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartparking-backend/internal/config"
	"smartparking-backend/internal/jobs"
)

func TestNewScheduler_RegistersAllJobs(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		SendPaymentReminders:      "0 0 9 * * *",
		ReportOverdueReservations: "0 */15 * * * *",
		ReconcileSpaceStatus:      "0 0 3 * * *",
	}}
	s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
	require.NoError(t, err)
	assert.Equal(t, len(jobs.JobNames()), s.Entries())

	s.Start()
	s.Stop()
}

func TestNewScheduler_RejectsBadSchedule(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		SendPaymentReminders:      "every morning",
		ReportOverdueReservations: "0 */15 * * * *",
		ReconcileSpaceStatus:      "0 0 3 * * *",
	}}
	_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
	assert.ErrorContains(t, err, "send-payment-reminders")
}
