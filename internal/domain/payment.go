package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// Payment is the bill generated when a reservation is released.
// Only Status and PaidAt change after creation, and only once.
type Payment struct {
	ID            string        `json:"id"`
	ReservationID string        `json:"reservation_id"`
	Amount        Money         `json:"amount"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`

	// Read-only context joined from the reservation.
	UserID    string    `json:"user_id,omitempty"`
	SpaceID   string    `json:"space_id,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// PaymentSummary is the billing view of one user.
type PaymentSummary struct {
	UserID   string    `json:"user_id"`
	Pending  []Payment `json:"pending"`
	History  []Payment `json:"history"`
	TotalDue Money     `json:"total_due"`
}

func NewPaymentSummary(userID string, payments []Payment) *PaymentSummary {
	summary := &PaymentSummary{
		UserID:  userID,
		Pending: []Payment{},
		History: []Payment{},
	}
	for _, p := range payments {
		if p.IsPending() {
			summary.Pending = append(summary.Pending, p)
			summary.TotalDue += p.Amount
		} else {
			summary.History = append(summary.History, p)
		}
	}
	return summary
}
