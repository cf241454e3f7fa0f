package jobs

import (
	"context"
	"fmt"

	"smartparking-backend/internal/logger"
)

// ReportOverdueReservations logs Booked reservations whose end time has passed
func (jr *JobRunner) ReportOverdueReservations() {
	jr.runWithRecovery(JobReportOverdueReservations, func(ctx context.Context) error {
		_, err := jr.reportOverdueReservations(ctx)
		return err
	})
}

func (jr *JobRunner) reportOverdueReservations(ctx context.Context) (int, error) {
	now := jr.now().UTC()
	overdue, err := jr.services.Reservations.ListOverdueReservations(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue reservations: %w", err)
	}
	for _, r := range overdue {
		logger.Warn("Reservation overdue for release",
			"reservationID", r.ID,
			"userID", r.UserID,
			"spaceID", r.SpaceID,
			"endTime", r.EndTime,
			"overdueMinutes", int64(now.Sub(r.EndTime).Minutes()))
	}
	logger.Info("Overdue reservations reported", "count", len(overdue))
	return len(overdue), nil
}

// ReconcileSpaceStatus repairs space statuses that drifted from their Booked reservations
func (jr *JobRunner) ReconcileSpaceStatus() {
	jr.runWithRecovery(JobReconcileSpaceStatus, func(ctx context.Context) error {
		repaired, err := jr.services.Reservations.ReconcileSpaceStatuses(ctx)
		if err != nil {
			return fmt.Errorf("failed to reconcile space statuses: %w", err)
		}
		if repaired > 0 {
			logger.Warn("Space statuses repaired", "count", repaired)
		}
		return nil
	})
}
