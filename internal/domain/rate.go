package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a spot quote: the price of one unit of Base expressed
// in Quote. Rates are immutable once obtained.
type ExchangeRate struct {
	Base       string
	Quote      string
	Rate       decimal.Decimal
	ObservedAt time.Time
}

// IsZero reports whether the rate is the empty result of a skipped lookup.
func (r ExchangeRate) IsZero() bool {
	return r.Base == "" && r.Rate.IsZero()
}
