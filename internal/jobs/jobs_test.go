package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartparking-backend/internal/config"
	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/repository"
	"smartparking-backend/internal/repository/memory"
	"smartparking-backend/internal/service"
	"smartparking-backend/internal/utils"
)

var base = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu        sync.Mutex
	reminders map[string]*domain.PaymentSummary
	failFor   string
}

func (n *recordingNotifier) SendPaymentReceipt(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	return nil
}

func (n *recordingNotifier) SendPaymentReminder(ctx context.Context, user *domain.User, summary *domain.PaymentSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if user.ID == n.failFor {
		return errors.New("mail provider rejected message")
	}
	if n.reminders == nil {
		n.reminders = make(map[string]*domain.PaymentSummary)
	}
	n.reminders[user.ID] = summary
	return nil
}

type jobFixture struct {
	store    *memory.Store
	services *Services
	notifier *recordingNotifier
	runner   *JobRunner
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	services := &Services{
		Users:        service.NewUserService(store, nil),
		Reservations: service.NewReservationService(store, utils.DefaultTariff(), nil, nil, nil),
		Billing:      service.NewBillingService(store, nil),
		Notifier:     notifier,
	}

	ctx := context.Background()
	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for _, id := range []string{"A1", "B2", "C3"} {
			if err := repos.Spaces.Create(ctx, &domain.Space{ID: id, Location: "Lot " + id}); err != nil {
				return err
			}
		}
		for _, id := range []string{"U1", "U2", "U3"} {
			err := repos.Users.Create(ctx, &domain.User{
				ID: id, FirstName: "Test", LastName: id, Email: id + "@example.edu",
				VehicleNumber: "CAR-" + id, Type: domain.UserTypeStaff, Status: domain.UserStatusActive,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	runner := NewJobRunner(services, &config.Config{})
	runner.now = func() time.Time { return base.Add(6 * time.Hour) }
	return &jobFixture{store: store, services: services, notifier: notifier, runner: runner}
}

func (f *jobFixture) bookAndRelease(t *testing.T, userID, spaceID string, start time.Time, d time.Duration) {
	t.Helper()
	ctx := context.Background()
	r, err := f.services.Reservations.BookReservation(ctx, userID, spaceID, start, start.Add(d))
	require.NoError(t, err)
	_, err = f.services.Reservations.ReleaseReservation(ctx, r.ID)
	require.NoError(t, err)
}

func TestSendPaymentReminders(t *testing.T) {
	f := newJobFixture(t)
	f.bookAndRelease(t, "U1", "A1", base, 3*time.Hour)
	f.bookAndRelease(t, "U1", "B2", base, 30*time.Minute)
	f.bookAndRelease(t, "U2", "C3", base, time.Hour)

	// U2 pays, so only U1 is reminded.
	pending, err := f.services.Billing.ListPendingPayments(context.Background(), "U2")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	_, err = f.services.Billing.MarkPaid(context.Background(), pending[0].ID)
	require.NoError(t, err)

	sent, err := f.runner.sendPaymentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Contains(t, f.notifier.reminders, "U1")
	summary := f.notifier.reminders["U1"]
	assert.Len(t, summary.Pending, 2)
	assert.Equal(t, domain.Money(7000), summary.TotalDue)
}

func TestSendPaymentReminders_ContinuesAfterFailure(t *testing.T) {
	f := newJobFixture(t)
	f.bookAndRelease(t, "U1", "A1", base, time.Hour)
	f.bookAndRelease(t, "U2", "B2", base, time.Hour)
	f.notifier.failFor = "U1"

	sent, err := f.runner.sendPaymentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Contains(t, f.notifier.reminders, "U2")
}

func TestReportOverdueReservations(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	_, err := f.services.Reservations.BookReservation(ctx, "U1", "A1", base, base.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = f.services.Reservations.BookReservation(ctx, "U2", "B2", base, base.Add(10*time.Hour))
	require.NoError(t, err)

	n, err := f.runner.reportOverdueReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReconcileSpaceStatus(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	err := f.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Spaces.UpdateStatus(ctx, "C3", domain.SpaceStatusOccupied)
	})
	require.NoError(t, err)

	f.runner.ReconcileSpaceStatus()

	err = f.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		space, err := repos.Spaces.GetByID(ctx, "C3")
		require.NoError(t, err)
		assert.Equal(t, domain.SpaceStatusAvailable, space.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestRunJob(t *testing.T) {
	f := newJobFixture(t)
	for _, name := range JobNames() {
		assert.True(t, f.runner.RunJob(name), name)
	}
	assert.True(t, f.runner.RunJob("all"))
	assert.False(t, f.runner.RunJob("mark-overdue-rentals"))
}

func TestRunWithRecovery_SwallowsPanic(t *testing.T) {
	f := newJobFixture(t)
	assert.NotPanics(t, func() {
		f.runner.runWithRecovery("explode", func(ctx context.Context) error {
			panic("boom")
		})
	})
}
