package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartparking-backend/internal/config"
	"smartparking-backend/internal/domain"
)

func TestOpen_MemoryStore(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Type: config.StoreTypeMemory},
		JWT:   config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
	}
	require.NoError(t, cfg.Validate())

	infra, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, infra.Close()) })

	assert.Nil(t, infra.Cache)
	assert.Nil(t, infra.Publisher)
	assert.NotNil(t, infra.Notifier)
	assert.NoError(t, infra.Health())

	svc := infra.Services(cfg)
	ctx := context.Background()
	require.NoError(t, svc.Spaces.CreateSpace(ctx, &domain.Space{ID: "a1", Location: "North"}))
	require.NoError(t, svc.Users.CreateUser(ctx, &domain.User{
		ID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.edu",
		VehicleNumber: "AB-123", Type: domain.UserTypeFaculty,
	}))

	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	res, err := svc.Reservations.BookReservation(ctx, "U1", "A1", start, start.Add(90*time.Minute))
	require.NoError(t, err)

	released, err := svc.Reservations.ReleaseReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(3000), released.Payment.Amount)
}
