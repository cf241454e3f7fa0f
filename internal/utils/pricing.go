package utils

import (
	"fmt"
	"time"

	"smartparking-backend/internal/domain"
)

const (
	// DefaultHourlyRateCents is 20.00 per hour.
	DefaultHourlyRateCents int64 = 2000
	// DefaultMinimumFeeCents is 10.00 per reservation.
	DefaultMinimumFeeCents int64 = 1000

	// MaxFeeCents is the largest amount payments.amount NUMERIC(10,2) holds.
	MaxFeeCents int64 = 9_999_999_999
)

// Tariff is the flat parking tariff: an hourly rate with a minimum charge.
type Tariff struct {
	HourlyRateCents int64
	MinimumFeeCents int64
}

// DefaultTariff returns the 20.00/hour, 10.00 minimum tariff.
func DefaultTariff() Tariff {
	return Tariff{
		HourlyRateCents: DefaultHourlyRateCents,
		MinimumFeeCents: DefaultMinimumFeeCents,
	}
}

// FeeBreakdown provides detailed fee information for a reservation interval
type FeeBreakdown struct {
	Minutes        int64
	HourlyRate     domain.Money
	TimeCharge     domain.Money
	MinimumApplied bool
	Total          domain.Money
}

// Validate checks the tariff is usable
func (t Tariff) Validate() error {
	if t.HourlyRateCents <= 0 {
		return fmt.Errorf("hourly rate must be positive, got %d", t.HourlyRateCents)
	}
	if t.MinimumFeeCents < 0 {
		return fmt.Errorf("minimum fee must not be negative, got %d", t.MinimumFeeCents)
	}
	maxHours := int64(domain.MaxReservationDuration / time.Hour)
	if t.HourlyRateCents > MaxFeeCents/maxHours {
		return fmt.Errorf("hourly rate %d is too large, the longest reservation would exceed %d cents", t.HourlyRateCents, MaxFeeCents)
	}
	if t.MinimumFeeCents > MaxFeeCents {
		return fmt.Errorf("minimum fee must not exceed %d cents, got %d", MaxFeeCents, t.MinimumFeeCents)
	}
	return nil
}

// CalculateFee maps a reservation interval to the amount owed.
func (t Tariff) CalculateFee(start, end time.Time) (domain.Money, error) {
	b, err := t.Breakdown(start, end)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// Breakdown computes the fee for [start, end).
// Elapsed time is counted in whole minutes. The time charge is
// minutes * rate / 60 computed exactly in cents and rounded half up,
// then floored at the minimum fee.
func (t Tariff) Breakdown(start, end time.Time) (FeeBreakdown, error) {
	if err := domain.ValidateInterval(start, end); err != nil {
		return FeeBreakdown{}, err
	}

	minutes := int64(end.Sub(start) / time.Minute)
	charge := divRoundHalfUp(minutes*t.HourlyRateCents, 60)

	b := FeeBreakdown{
		Minutes:    minutes,
		HourlyRate: domain.Money(t.HourlyRateCents),
		TimeCharge: domain.Money(charge),
		Total:      domain.Money(charge),
	}
	if charge < t.MinimumFeeCents {
		b.Total = domain.Money(t.MinimumFeeCents)
		b.MinimumApplied = true
	}
	return b, nil
}

func divRoundHalfUp(numerator, denominator int64) int64 {
	return (numerator*2 + denominator) / (denominator * 2)
}
