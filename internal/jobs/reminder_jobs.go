package jobs

import (
	"context"
	"fmt"
	"sort"

	"smartparking-backend/internal/logger"
)

// SendPaymentReminders emails every user that has Pending payments
func (jr *JobRunner) SendPaymentReminders() {
	jr.runWithRecovery(JobSendPaymentReminders, func(ctx context.Context) error {
		sent, err := jr.sendPaymentReminders(ctx)
		if err != nil {
			return err
		}
		logger.Info("Payment reminders sent", "count", sent)
		return nil
	})
}

// sendPaymentReminders sends one reminder per user. A failure for one user
// is logged and does not stop the others.
func (jr *JobRunner) sendPaymentReminders(ctx context.Context) (int, error) {
	pending, err := jr.services.Billing.ListPendingPayments(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list pending payments: %w", err)
	}

	userIDs := make(map[string]struct{})
	for _, p := range pending {
		userIDs[p.UserID] = struct{}{}
	}
	ordered := make([]string, 0, len(userIDs))
	for id := range userIDs {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	sent := 0
	for _, userID := range ordered {
		user, err := jr.services.Users.GetUser(ctx, userID)
		if err != nil {
			logger.Error("Failed to load user for reminder", "userID", userID, "error", err)
			continue
		}
		summary, err := jr.services.Billing.GetPaymentSummary(ctx, userID)
		if err != nil {
			logger.Error("Failed to build payment summary", "userID", userID, "error", err)
			continue
		}
		if len(summary.Pending) == 0 {
			continue
		}
		if err := jr.services.Notifier.SendPaymentReminder(ctx, user, summary); err != nil {
			logger.Error("Failed to send payment reminder", "userID", userID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
