package service

import (
	"context"
	"fmt"
	"time"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/events"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/repository"
	"smartparking-backend/internal/utils"
)

type reservationService struct {
	tx        repository.Transactor
	tariff    utils.Tariff
	cache     SpaceCache
	publisher EventPublisher
	notifier  Notifier
}

func NewReservationService(
	tx repository.Transactor,
	tariff utils.Tariff,
	cache SpaceCache,
	publisher EventPublisher,
	notifier Notifier,
) ReservationService {
	return &reservationService{
		tx:        tx,
		tariff:    tariff,
		cache:     orNoopCache(cache),
		publisher: orNoopPublisher(publisher),
		notifier:  orNoopNotifier(notifier),
	}
}

// BookReservation admits a reservation. The user row is share-locked so a
// concurrent deactivation waits, and the space row is locked so two bookings
// of the same space check availability one after the other.
func (s *reservationService) BookReservation(ctx context.Context, userID, spaceID string, start, end time.Time) (*domain.Reservation, error) {
	userID = domain.NormalizeID(userID)
	spaceID = domain.NormalizeID(spaceID)
	logger.EnterMethod("reservationService.BookReservation", "userID", userID, "spaceID", spaceID, "start", start, "end", end)

	if err := domain.ValidateInterval(start, end); err != nil {
		logger.ExitMethodWithError("reservationService.BookReservation", err)
		return nil, err
	}
	start, end = start.UTC(), end.UTC()

	var booked *domain.Reservation
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.LockByID(ctx, userID, false)
		if err != nil {
			return err
		}
		if err := checkBookingAllowed(user); err != nil {
			return err
		}

		if _, err := repos.Spaces.LockByID(ctx, spaceID); err != nil {
			return err
		}
		ok, err := isAvailable(ctx, repos.Reservations, spaceID, start, end)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("space %s from %s to %s: %w", spaceID,
				start.Format(time.RFC3339), end.Format(time.RFC3339), domain.ErrSpaceUnavailable)
		}

		now := time.Now().UTC()
		r := &domain.Reservation{
			UserID:    userID,
			SpaceID:   spaceID,
			StartTime: start,
			EndTime:   end,
			Status:    domain.ReservationStatusBooked,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Reservations.Create(ctx, r); err != nil {
			return err
		}
		if err := repos.Spaces.UpdateStatus(ctx, spaceID, domain.SpaceStatusOccupied); err != nil {
			return err
		}
		booked = r
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.BookReservation", err, "userID", userID, "spaceID", spaceID)
		return nil, err
	}

	invalidateCache(ctx, s.cache)
	publish(ctx, s.publisher, events.New(events.TypeReservationBooked, booked.ID, booked))
	logger.Info("Reservation booked", "reservationID", booked.ID, "userID", userID, "spaceID", spaceID)
	logger.ExitMethod("reservationService.BookReservation", "reservationID", booked.ID)
	return booked, nil
}

// ReleaseReservation closes a Booked reservation. The bill, the status
// change, the space status and the occupancy record commit together.
func (s *reservationService) ReleaseReservation(ctx context.Context, reservationID string) (*ReleaseResult, error) {
	reservationID = domain.NormalizeID(reservationID)
	logger.EnterMethod("reservationService.ReleaseReservation", "reservationID", reservationID)

	var (
		result *ReleaseResult
		owner  *domain.User
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		res, err := repos.Reservations.LockByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationStatusBooked {
			return fmt.Errorf("reservation %s is %s: %w", res.ID, res.Status, domain.ErrReservationAlreadyClosed)
		}

		user, err := repos.Users.LockByID(ctx, res.UserID, false)
		if err != nil {
			return err
		}

		amount, err := s.tariff.CalculateFee(res.StartTime, res.EndTime)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		payment := &domain.Payment{
			ReservationID: res.ID,
			Amount:        amount,
			Status:        domain.PaymentStatusPending,
			CreatedAt:     now,
			UserID:        res.UserID,
			SpaceID:       res.SpaceID,
			StartTime:     res.StartTime,
			EndTime:       res.EndTime,
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		if err := repos.Reservations.UpdateStatus(ctx, res.ID, domain.ReservationStatusCompleted); err != nil {
			return err
		}
		res.Status = domain.ReservationStatusCompleted
		res.UpdatedAt = now

		space, err := repos.Spaces.LockByID(ctx, res.SpaceID)
		if err != nil {
			return err
		}
		if _, err := syncSpaceStatus(ctx, repos, space); err != nil {
			return err
		}

		entry := &domain.OccupancyLogEntry{
			UserID:    res.UserID,
			SpaceID:   res.SpaceID,
			EntryTime: res.StartTime,
			ExitTime:  res.EndTime,
			CreatedAt: now,
		}
		if err := repos.OccupancyLog.Create(ctx, entry); err != nil {
			return err
		}

		owner = user
		result = &ReleaseResult{Reservation: res, Payment: payment, Occupancy: entry}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.ReleaseReservation", err, "reservationID", reservationID)
		return nil, err
	}

	invalidateCache(ctx, s.cache)
	publish(ctx, s.publisher, events.New(events.TypeReservationReleased, result.Reservation.ID, result))
	if err := s.notifier.SendPaymentReceipt(ctx, owner, result.Payment); err != nil {
		logger.Warn("Failed to send payment receipt", "paymentID", result.Payment.ID, "error", err)
	}
	logger.Info("Reservation released", "reservationID", reservationID,
		"paymentID", result.Payment.ID, "amount", result.Payment.Amount.String())
	logger.ExitMethod("reservationService.ReleaseReservation", "paymentID", result.Payment.ID)
	return result, nil
}

func (s *reservationService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	var res *domain.Reservation
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		res, err = repos.Reservations.GetByID(ctx, domain.NormalizeID(id))
		return err
	})
	return res, err
}

func (s *reservationService) ListReservations(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown reservation status %q: %w", status, domain.ErrInvalidInput)
	}
	return s.list(ctx, repository.ReservationFilter{Status: status})
}

func (s *reservationService) ListOverdueReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	now = now.UTC()
	return s.list(ctx, repository.ReservationFilter{Status: domain.ReservationStatusBooked, EndedBefore: &now})
}

func (s *reservationService) list(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	var list []domain.Reservation
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		list, err = repos.Reservations.List(ctx, filter)
		return err
	})
	return list, err
}

func (s *reservationService) ReconcileSpaceStatuses(ctx context.Context) (int, error) {
	logger.EnterMethod("reservationService.ReconcileSpaceStatuses")

	var spaces []domain.Space
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		spaces, err = repos.Spaces.List(ctx, "")
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.ReconcileSpaceStatuses", err)
		return 0, err
	}

	repaired := 0
	for _, sp := range spaces {
		var changed bool
		err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			space, err := repos.Spaces.LockByID(ctx, sp.ID)
			if err != nil {
				return err
			}
			changed, err = syncSpaceStatus(ctx, repos, space)
			return err
		})
		if err != nil {
			logger.ExitMethodWithError("reservationService.ReconcileSpaceStatuses", err, "spaceID", sp.ID)
			return repaired, err
		}
		if changed {
			repaired++
			logger.Warn("Repaired drifted space status", "spaceID", sp.ID)
		}
	}
	if repaired > 0 {
		invalidateCache(ctx, s.cache)
	}

	logger.ExitMethod("reservationService.ReconcileSpaceStatuses", "spaces", len(spaces), "repaired", repaired)
	return repaired, nil
}
