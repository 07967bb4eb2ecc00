// Package core provides the debt domain model.
//
// This file contains monetary amount parsing and JSON handling. Amounts are
// held as integer cents; decimal arithmetic goes through shopspring/decimal
// so blob round-trips never pick up float noise.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmountToCents converts a decimal string to positive cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted; anything past
// the second decimal place is rounded half-up. Zero, negative, or malformed
// input returns ErrInvalidAmount.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount as a plain decimal, e.g. "1500.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON emits a JSON number in currency units, the shape the original
// blobs use for montoTotal.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.Cents = d.Shift(2).Round(0).IntPart()
	return nil
}
