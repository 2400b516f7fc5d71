package types

import "github.com/shopspring/decimal"

// Amount is a money value in minor units. It renders as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

func NewAmount(v int64) Amount {
	return Amount{decimal.NewFromInt(v)}
}

// LineAmount is quantity × price computed without int64 overflow.
func LineAmount(quantity, price int64) Amount {
	return Amount{decimal.NewFromInt(quantity).Mul(decimal.NewFromInt(price))}
}

func (a Amount) Add(other Amount) Amount {
	return Amount{a.Decimal.Add(other.Decimal)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}
