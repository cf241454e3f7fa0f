package domain

import (
	"fmt"
	"strings"
)

const (
	ReservationIDPrefix  = "RES"
	PaymentIDPrefix      = "PAY"
	OccupancyLogIDPrefix = "LOG"
)

// FormatID renders a store sequence value as a prefixed identifier, e.g. RES000042.
func FormatID(prefix string, seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}

// NormalizeID upper-cases and trims caller supplied identifiers.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
