package protocol

import (
	"errors"
	"fmt"
	"math/big"
)

// Amount is a non-negative monetary value with arbitrary precision.
// It is modeled after 128-bit token balances, which overflow int64, and
// serializes as a decimal string to survive JSON number precision limits.
//
// The zero value is a usable zero amount.
type Amount struct {
	i big.Int
}

// NewAmount creates an Amount from a uint64.
func NewAmount(v uint64) Amount {
	var a Amount
	a.i.SetUint64(v)
	return a
}

// ParseAmount creates an Amount from a base-10 string.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if _, ok := a.i.SetString(s, 10); !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	if a.i.Sign() < 0 {
		return Amount{}, fmt.Errorf("negative amount %q", s)
	}
	return a, nil
}

// Cmp compares a and b, returning -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	var sum Amount
	sum.i.Add(&a.i, &b.i)
	return sum
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.i.Sign() == 0
}

// String returns the base-10 representation.
func (a Amount) String() string {
	return a.i.String()
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.i.String() + `"`), nil
}

// UnmarshalJSON decodes an amount from a decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("amount must be a decimal string")
	}
	parsed, err := ParseAmount(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
