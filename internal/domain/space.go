package domain

import "time"

type SpaceStatus string

const (
	SpaceStatusAvailable SpaceStatus = "Available"
	SpaceStatusOccupied  SpaceStatus = "Occupied"
)

// Space is a single parking slot. Status is a projection of the reservations
// referencing the space and is only ever written by the reservation lifecycle.
type Space struct {
	ID        string      `json:"id"`
	Location  string      `json:"location"`
	Priority  int32       `json:"priority"`
	Status    SpaceStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// DeriveSpaceStatus maps the number of open (Booked) reservations on a space to its status.
func DeriveSpaceStatus(bookedCount int) SpaceStatus {
	if bookedCount > 0 {
		return SpaceStatusOccupied
	}
	return SpaceStatusAvailable
}
