// Package events publishes parking lifecycle events to Kafka.
package events

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTopic = "parking.events"

type Type string

const (
	TypeReservationBooked   Type = "reservation_booked"
	TypeReservationReleased Type = "reservation_released"
	TypePaymentPaid         Type = "payment_paid"
	TypeUserDeactivated     Type = "user_deactivated"
)

// Event is the envelope written to the topic. AggregateID is used as the
// message key so events for one reservation, payment or user stay ordered.
type Event struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	AggregateID string      `json:"aggregate_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Data        interface{} `json:"data,omitempty"`
}

func New(t Type, aggregateID string, data interface{}) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        data,
	}
}
