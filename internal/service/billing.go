package service

import (
	"context"
	"fmt"
	"time"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/events"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/repository"
)

type billingService struct {
	tx        repository.Transactor
	publisher EventPublisher
}

func NewBillingService(tx repository.Transactor, publisher EventPublisher) BillingService {
	return &billingService{
		tx:        tx,
		publisher: orNoopPublisher(publisher),
	}
}

// MarkPaid moves a payment from Pending to Paid. Amount, reservation and
// creation time are never touched.
func (s *billingService) MarkPaid(ctx context.Context, paymentID string) (*domain.Payment, error) {
	paymentID = domain.NormalizeID(paymentID)
	logger.EnterMethod("billingService.MarkPaid", "paymentID", paymentID)

	var paid *domain.Payment
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		p, err := repos.Payments.LockByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if !p.IsPending() {
			return fmt.Errorf("payment %s is %s: %w", p.ID, p.Status, domain.ErrPaymentNotPending)
		}
		now := time.Now().UTC()
		if err := repos.Payments.MarkPaid(ctx, p.ID, now); err != nil {
			return err
		}
		p.Status = domain.PaymentStatusPaid
		p.PaidAt = &now
		paid = p
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("billingService.MarkPaid", err, "paymentID", paymentID)
		return nil, err
	}

	publish(ctx, s.publisher, events.New(events.TypePaymentPaid, paid.ID, paid))
	logger.ExitMethod("billingService.MarkPaid", "paymentID", paid.ID)
	return paid, nil
}

func (s *billingService) ListPendingPayments(ctx context.Context, userID string) ([]domain.Payment, error) {
	userID = domain.NormalizeID(userID)
	var payments []domain.Payment
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if userID != "" {
			if _, err := repos.Users.GetByID(ctx, userID); err != nil {
				return err
			}
		}
		var err error
		payments, err = repos.Payments.List(ctx, repository.PaymentFilter{UserID: userID, Status: domain.PaymentStatusPending})
		return err
	})
	return payments, err
}

func (s *billingService) GetPaymentSummary(ctx context.Context, userID string) (*domain.PaymentSummary, error) {
	userID = domain.NormalizeID(userID)
	var summary *domain.PaymentSummary
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, userID); err != nil {
			return err
		}
		payments, err := repos.Payments.List(ctx, repository.PaymentFilter{UserID: userID})
		if err != nil {
			return err
		}
		summary = domain.NewPaymentSummary(userID, payments)
		return nil
	})
	return summary, err
}

func (s *billingService) ListOccupancyLog(ctx context.Context, filter repository.OccupancyFilter) ([]domain.OccupancyLogEntry, error) {
	filter.UserID = domain.NormalizeID(filter.UserID)
	filter.SpaceID = domain.NormalizeID(filter.SpaceID)
	var entries []domain.OccupancyLogEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		entries, err = repos.OccupancyLog.List(ctx, filter)
		return err
	})
	return entries, err
}
