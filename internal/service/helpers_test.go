package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/repository"
	"smartparking-backend/internal/repository/memory"
	"smartparking-backend/internal/utils"
)

var base = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store        *memory.Store
	spaces       SpaceService
	users        UserService
	reservations ReservationService
	billing      BillingService
}

// newFixture wires the services over an in-memory store with spaces A1, B2
// and active users U1, U2.
func newFixture(t *testing.T, publisher EventPublisher, notifier Notifier, cache SpaceCache) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:        store,
		spaces:       NewSpaceService(store, cache),
		users:        NewUserService(store, publisher),
		reservations: NewReservationService(store, utils.DefaultTariff(), cache, publisher, notifier),
		billing:      NewBillingService(store, publisher),
	}

	ctx := context.Background()
	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for i, id := range []string{"A1", "B2"} {
			if err := repos.Spaces.Create(ctx, &domain.Space{ID: id, Location: "Lot " + id[:1], Priority: int32(i)}); err != nil {
				return err
			}
		}
		for _, id := range []string{"U1", "U2"} {
			u := &domain.User{
				ID: id, FirstName: "Test", LastName: id, Email: id + "@example.edu",
				VehicleNumber: "CAR-" + id, Type: domain.UserTypeStudent, Status: domain.UserStatusActive,
			}
			if err := repos.Users.Create(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) space(t *testing.T, id string) *domain.Space {
	t.Helper()
	s, err := f.spaces.GetSpace(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (f *fixture) book(t *testing.T, userID, spaceID string, start time.Time, d time.Duration) *domain.Reservation {
	t.Helper()
	r, err := f.reservations.BookReservation(context.Background(), userID, spaceID, start, start.Add(d))
	require.NoError(t, err)
	return r
}

func (f *fixture) countPayments(t *testing.T) int {
	t.Helper()
	var n int
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		list, err := repos.Payments.List(ctx, repository.PaymentFilter{})
		n = len(list)
		return err
	})
	require.NoError(t, err)
	return n
}

// seedCancelled stores a Cancelled reservation directly. No operation
// produces that status, so it can only be seeded.
func (f *fixture) seedCancelled(t *testing.T, userID, spaceID string, start time.Time, d time.Duration) *domain.Reservation {
	t.Helper()
	r := &domain.Reservation{
		UserID:    userID,
		SpaceID:   spaceID,
		StartTime: start,
		EndTime:   start.Add(d),
		Status:    domain.ReservationStatusCancelled,
		CreatedAt: start,
		UpdatedAt: start,
	}
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		return repos.Reservations.Create(ctx, r)
	})
	require.NoError(t, err)
	return r
}
