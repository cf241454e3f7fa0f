package service

import (
	"context"
	"fmt"
	"time"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/repository"
)

// checkBookingAllowed rejects reservations for inactive users.
func checkBookingAllowed(user *domain.User) error {
	if !user.IsActive() {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrInactiveUserCannotBook)
	}
	return nil
}

// checkDeactivationAllowed rejects deactivation while any payment reachable
// through the user's reservations is still Pending.
func checkDeactivationAllowed(ctx context.Context, payments repository.PaymentRepository, userID string) error {
	pending, err := payments.CountPendingByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count pending payments: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("user %s has %d pending payment(s): %w", userID, pending, domain.ErrPendingPaymentsBlockDeactivation)
	}
	return nil
}

// isAvailable reports whether no Booked reservation on the space overlaps
// [start, end). Completed and Cancelled reservations never block.
func isAvailable(ctx context.Context, reservations repository.ReservationRepository, spaceID string, start, end time.Time) (bool, error) {
	n, err := reservations.CountOverlappingBooked(ctx, spaceID, start, end)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return n == 0, nil
}

// syncSpaceStatus recomputes the derived status of a locked space and writes
// it when it differs. It reports whether a write happened.
func syncSpaceStatus(ctx context.Context, repos repository.Repositories, space *domain.Space) (bool, error) {
	booked, err := repos.Reservations.CountBookedBySpace(ctx, space.ID)
	if err != nil {
		return false, err
	}
	want := domain.DeriveSpaceStatus(booked)
	if space.Status == want {
		return false, nil
	}
	if err := repos.Spaces.UpdateStatus(ctx, space.ID, want); err != nil {
		return false, err
	}
	space.Status = want
	return true, nil
}
