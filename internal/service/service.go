package service

import (
	"context"
	"time"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/events"
	"smartparking-backend/internal/repository"
)

type SpaceService interface {
	CreateSpace(ctx context.Context, space *domain.Space) error
	GetSpace(ctx context.Context, id string) (*domain.Space, error)
	ListSpaces(ctx context.Context) ([]domain.Space, error)
	// ListAvailableSpaces is read-only and reflects the derived space statuses.
	ListAvailableSpaces(ctx context.Context) ([]domain.Space, error)
}

type UserService interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	DeactivateUser(ctx context.Context, id string) (*domain.User, error)
	ReactivateUser(ctx context.Context, id string) (*domain.User, error)
}

// ReleaseResult is what a release produces: the bill and the occupancy record.
type ReleaseResult struct {
	Reservation *domain.Reservation       `json:"reservation"`
	Payment     *domain.Payment           `json:"payment"`
	Occupancy   *domain.OccupancyLogEntry `json:"occupancy"`
}

type ReservationService interface {
	BookReservation(ctx context.Context, userID, spaceID string, start, end time.Time) (*domain.Reservation, error)
	ReleaseReservation(ctx context.Context, reservationID string) (*ReleaseResult, error)
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error)
	ListOverdueReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	// ReconcileSpaceStatuses rewrites every space status that has drifted from
	// its Booked reservations and returns how many were repaired.
	ReconcileSpaceStatuses(ctx context.Context) (int, error)
}

type BillingService interface {
	MarkPaid(ctx context.Context, paymentID string) (*domain.Payment, error)
	// ListPendingPayments lists every Pending payment, or only the user's when userID is set.
	ListPendingPayments(ctx context.Context, userID string) ([]domain.Payment, error)
	GetPaymentSummary(ctx context.Context, userID string) (*domain.PaymentSummary, error)
	ListOccupancyLog(ctx context.Context, filter repository.OccupancyFilter) ([]domain.OccupancyLogEntry, error)
}

type Notifier interface {
	SendPaymentReceipt(ctx context.Context, user *domain.User, payment *domain.Payment) error
	SendPaymentReminder(ctx context.Context, user *domain.User, summary *domain.PaymentSummary) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// SpaceCache holds the available-space listing. Every Invalidate bumps a
// generation; SetAvailable drops a snapshot read under an older generation.
type SpaceCache interface {
	GetAvailable(ctx context.Context) ([]domain.Space, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetAvailable(ctx context.Context, generation int64, spaces []domain.Space) (bool, error)
	Invalidate(ctx context.Context) error
}
