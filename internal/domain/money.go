package domain

import "fmt"

// Money is an amount in cents. It renders with exactly two fractional digits.
type Money int64

func (m Money) Cents() int64 {
	return int64(m)
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}
