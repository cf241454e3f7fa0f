package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalsOverlap(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		expected       bool
	}{
		{"identical", at(0), at(2), at(0), at(2), true},
		{"contained", at(0), at(4), at(1), at(2), true},
		{"partial tail", at(0), at(2), at(1), at(3), true},
		{"adjacent after", at(0), at(2), at(2), at(4), false},
		{"adjacent before", at(2), at(4), at(0), at(2), false},
		{"disjoint", at(0), at(1), at(3), at(4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IntervalsOverlap(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.expected, IntervalsOverlap(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestReservation_Blocks(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r := &Reservation{StartTime: start, EndTime: start.Add(2 * time.Hour), Status: ReservationStatusBooked}

	assert.True(t, r.Blocks(start.Add(time.Hour), start.Add(90*time.Minute)))

	for _, status := range []ReservationStatus{ReservationStatusCompleted, ReservationStatusCancelled} {
		r.Status = status
		assert.False(t, r.Blocks(start.Add(time.Hour), start.Add(90*time.Minute)), status)
	}
}

func TestValidateInterval(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateInterval(start, start.Add(time.Minute)))
	assert.ErrorIs(t, ValidateInterval(start, start), ErrInvalidInterval)
	assert.ErrorIs(t, ValidateInterval(time.Time{}, start), ErrInvalidInterval)
	assert.NoError(t, ValidateInterval(start, start.Add(MaxReservationDuration)))
	assert.ErrorIs(t, ValidateInterval(start, start.Add(MaxReservationDuration+time.Minute)), ErrInvalidInterval)
	assert.ErrorIs(t, ValidateInterval(start, start.AddDate(300, 0, 0)), ErrInvalidInterval)
}

func TestDeriveSpaceStatus(t *testing.T) {
	assert.Equal(t, SpaceStatusAvailable, DeriveSpaceStatus(0))
	assert.Equal(t, SpaceStatusOccupied, DeriveSpaceStatus(1))
	assert.Equal(t, SpaceStatusOccupied, DeriveSpaceStatus(3))
}

func TestMoney(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "10.00", Money(1000).String())
		assert.Equal(t, "10.33", Money(1033).String())
		assert.Equal(t, "0.05", Money(5).String())
		assert.Equal(t, "-2.50", Money(-250).String())
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Amount Money `json:"amount"`
		}{Amount: 6000})
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount": 60.00}`, string(data))
	})
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "RES000042", FormatID(ReservationIDPrefix, 42))
	assert.Equal(t, "PAY1234567", FormatID(PaymentIDPrefix, 1234567))
	assert.Equal(t, "CS003", NormalizeID("  cs003 "))
}

func TestNewPaymentSummary(t *testing.T) {
	summary := NewPaymentSummary("CS001", []Payment{
		{ID: "PAY000001", Amount: 1000, Status: PaymentStatusPending},
		{ID: "PAY000002", Amount: 6000, Status: PaymentStatusPaid},
		{ID: "PAY000003", Amount: 2550, Status: PaymentStatusPending},
	})
	assert.Len(t, summary.Pending, 2)
	assert.Len(t, summary.History, 1)
	assert.Equal(t, "35.50", summary.TotalDue.String())
}
