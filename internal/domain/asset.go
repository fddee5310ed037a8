package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a single crypto holding owned by a user.
// Amount is the raw quantity of the currency, not a fiat value.
type Asset struct {
	ID        int64
	Label     string
	Currency  Currency
	Amount    decimal.Decimal
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
