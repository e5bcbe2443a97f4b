package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is a decimal amount on the wire. The backend serializes decimal
// fields as quoted strings ("12.50") while computed amounts arrive as plain
// numbers, so both forms must decode.
type Money float64

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid money value %q: %w", s, err)
	}
	*m = Money(v)
	return nil
}

// MarshalJSON always emits a plain number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(m), 'f', -1, 64)), nil
}

// Float64 returns the amount as a float64 for arithmetic.
func (m Money) Float64() float64 {
	return float64(m)
}
