package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/events"
	"smartparking-backend/internal/repository"
)

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		pub := new(MockPublisher)
		pub.On("Publish", mock.Anything, eventOfType(events.TypeReservationBooked)).Return(nil)
		pub.On("Publish", mock.Anything, eventOfType(events.TypeReservationReleased)).Return(nil)
		pub.On("Publish", mock.Anything, eventOfType(events.TypePaymentPaid)).Return(nil).Once()
		f := newFixture(t, pub, nil, nil)

		r := f.book(t, "U1", "A1", base, 3*time.Hour)
		released, err := f.reservations.ReleaseReservation(ctx, r.ID)
		require.NoError(t, err)

		paid, err := f.billing.MarkPaid(ctx, released.Payment.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, paid.Status)
		require.NotNil(t, paid.PaidAt)
		assert.Equal(t, released.Payment.Amount, paid.Amount)
		assert.Equal(t, released.Payment.ReservationID, paid.ReservationID)
		assert.True(t, released.Payment.CreatedAt.Equal(paid.CreatedAt))

		pub.AssertExpectations(t)
	})

	t.Run("AlreadyPaid", func(t *testing.T) {
		f := newFixture(t, nil, nil, nil)
		r := f.book(t, "U1", "A1", base, time.Hour)
		released, err := f.reservations.ReleaseReservation(ctx, r.ID)
		require.NoError(t, err)

		_, err = f.billing.MarkPaid(ctx, released.Payment.ID)
		require.NoError(t, err)
		_, err = f.billing.MarkPaid(ctx, released.Payment.ID)
		assert.ErrorIs(t, err, domain.ErrPaymentNotPending)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(t, nil, nil, nil)
		_, err := f.billing.MarkPaid(ctx, "PAY424242")
		assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	})
}

func TestListPendingPayments(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	ctx := context.Background()

	r1 := f.book(t, "U1", "A1", base, time.Hour)
	r2 := f.book(t, "U2", "B2", base, 2*time.Hour)
	r3 := f.book(t, "U1", "A1", base.Add(2*time.Hour), 30*time.Minute)
	var paymentIDs []string
	for _, r := range []*domain.Reservation{r1, r2, r3} {
		res, err := f.reservations.ReleaseReservation(ctx, r.ID)
		require.NoError(t, err)
		paymentIDs = append(paymentIDs, res.Payment.ID)
	}
	_, err := f.billing.MarkPaid(ctx, paymentIDs[0])
	require.NoError(t, err)

	all, err := f.billing.ListPendingPayments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.billing.ListPendingPayments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, paymentIDs[2], mine[0].ID)
	assert.Equal(t, "A1", mine[0].SpaceID)

	_, err = f.billing.ListPendingPayments(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	summary, err := f.billing.GetPaymentSummary(ctx, "U1")
	require.NoError(t, err)
	assert.Len(t, summary.Pending, 1)
	assert.Len(t, summary.History, 1)
	assert.Equal(t, "10.00", summary.TotalDue.String())
}

func TestOccupancyLogIsAppendOnly(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	ctx := context.Background()

	r := f.book(t, "U1", "A1", base, time.Hour)
	_, err := f.reservations.ReleaseReservation(ctx, r.ID)
	require.NoError(t, err)
	before, err := f.billing.ListOccupancyLog(ctx, repository.OccupancyFilter{})
	require.NoError(t, err)
	require.Len(t, before, 1)

	r2 := f.book(t, "U2", "A1", base.Add(time.Hour), time.Hour)
	_, err = f.reservations.ReleaseReservation(ctx, r2.ID)
	require.NoError(t, err)

	after, err := f.billing.ListOccupancyLog(ctx, repository.OccupancyFilter{})
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])

	bySpace, err := f.billing.ListOccupancyLog(ctx, repository.OccupancyFilter{SpaceID: "a1"})
	require.NoError(t, err)
	assert.Len(t, bySpace, 2)
}
