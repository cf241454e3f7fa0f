package domain

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusBooked    ReservationStatus = "Booked"
	ReservationStatusCompleted ReservationStatus = "Completed"
	// ReservationStatusCancelled is terminal. No operation produces it yet.
	ReservationStatusCancelled ReservationStatus = "Cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusBooked, ReservationStatusCompleted, ReservationStatusCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	SpaceID   string            `json:"space_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Overlaps reports whether the reservation's [start, end) interval intersects [start, end).
// A reservation ending exactly when the other begins does not overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return IntervalsOverlap(r.StartTime, r.EndTime, start, end)
}

// Blocks reports whether the reservation prevents booking [start, end) on its space.
func (r *Reservation) Blocks(start, end time.Time) bool {
	return r.Status == ReservationStatusBooked && r.Overlaps(start, end)
}

func IntervalsOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// MaxReservationDuration bounds a single reservation. Together with the
// tariff limits it keeps every fee within the payments.amount column.
const MaxReservationDuration = 366 * 24 * time.Hour

// ValidateInterval checks start < end and that the interval is not longer
// than MaxReservationDuration.
func ValidateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return fmt.Errorf("end time must be after start time: %w", ErrInvalidInterval)
	}
	if end.Sub(start) > MaxReservationDuration {
		return fmt.Errorf("reservation longer than %d days: %w", int(MaxReservationDuration.Hours()/24), ErrInvalidInterval)
	}
	return nil
}
