package repository

import (
	"context"
	"time"

	"smartparking-backend/internal/domain"
)

type SpaceRepository interface {
	Create(ctx context.Context, space *domain.Space) error
	GetByID(ctx context.Context, id string) (*domain.Space, error)
	// LockByID returns the space and holds an exclusive lock on it until the transaction ends.
	LockByID(ctx context.Context, id string) (*domain.Space, error)
	List(ctx context.Context, status domain.SpaceStatus) ([]domain.Space, error)
	UpdateStatus(ctx context.Context, id string, status domain.SpaceStatus) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// LockByID locks the user row. Shared locks are taken by operations that
	// rely on the user's status, exclusive locks by operations that change it.
	LockByID(ctx context.Context, id string, exclusive bool) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	Delete(ctx context.Context, id string) error
}

type ReservationFilter struct {
	Status      domain.ReservationStatus
	UserID      string
	SpaceID     string
	EndedBefore *time.Time
}

type ReservationRepository interface {
	// Create assigns a new sequence-generated ID to the reservation and inserts it.
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	LockByID(ctx context.Context, id string) (*domain.Reservation, error)
	CountOverlappingBooked(ctx context.Context, spaceID string, start, end time.Time) (int, error)
	CountBookedBySpace(ctx context.Context, spaceID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)
}

type PaymentFilter struct {
	UserID string
	Status domain.PaymentStatus
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	LockByID(ctx context.Context, id string) (*domain.Payment, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	CountPendingByUser(ctx context.Context, userID string) (int, error)
	List(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)
}

type OccupancyFilter struct {
	UserID  string
	SpaceID string
}

// OccupancyLogRepository is append only.
type OccupancyLogRepository interface {
	Create(ctx context.Context, entry *domain.OccupancyLogEntry) error
	List(ctx context.Context, filter OccupancyFilter) ([]domain.OccupancyLogEntry, error)
}

// Repositories groups the repositories bound to one transaction.
type Repositories struct {
	Spaces       SpaceRepository
	Users        UserRepository
	Reservations ReservationRepository
	Payments     PaymentRepository
	OccupancyLog OccupancyLogRepository
}

// Transactor runs fn inside a single store transaction. The transaction
// commits when fn returns nil and rolls back otherwise. Implementations may
// retry fn on transient store conflicts, so fn must not have side effects
// outside the repositories it is given.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
