package domain

import "time"

// OccupancyLogEntry records the scheduled interval of a released reservation.
// Entries are never updated.
type OccupancyLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SpaceID   string    `json:"space_id"`
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`
	CreatedAt time.Time `json:"created_at"`
}
