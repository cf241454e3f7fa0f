package service

import (
	"context"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/events"
	"smartparking-backend/internal/logger"
)

type noopNotifier struct{}

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) SendPaymentReceipt(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	logger.Debug("Email disabled, skipping receipt", "userID", user.ID, "paymentID", payment.ID)
	return nil
}

func (noopNotifier) SendPaymentReminder(ctx context.Context, user *domain.User, summary *domain.PaymentSummary) error {
	logger.Debug("Email disabled, skipping reminder", "userID", user.ID, "pending", len(summary.Pending))
	return nil
}

type noopCache struct{}

func (noopCache) GetAvailable(ctx context.Context) ([]domain.Space, bool, error) { return nil, false, nil }
func (noopCache) Generation(ctx context.Context) (int64, error)                  { return 0, nil }
func (noopCache) Invalidate(ctx context.Context) error                          { return nil }

func (noopCache) SetAvailable(ctx context.Context, generation int64, spaces []domain.Space) (bool, error) {
	return false, nil
}

// publish and invalidateCache run after commit. Failures are logged and never
// undo the committed operation.
func publish(ctx context.Context, p EventPublisher, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "type", event.Type, "key", event.AggregateID, "error", err)
	}
}

func invalidateCache(ctx context.Context, c SpaceCache) {
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn("Failed to invalidate space cache", "error", err)
	}
}

func orNoopPublisher(p EventPublisher) EventPublisher {
	if p == nil {
		return events.NoopPublisher{}
	}
	return p
}

func orNoopCache(c SpaceCache) SpaceCache {
	if c == nil {
		return noopCache{}
	}
	return c
}

func orNoopNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
