package domain

import "github.com/shopspring/decimal"

// ValuationResult is the fiat valuation of a single asset at the rate
// in effect when it was computed. Results are transient, never persisted.
type ValuationResult struct {
	AssetID       int64
	Label         string
	Currency      Currency
	Amount        decimal.Decimal
	Value         decimal.Decimal
	QuoteCurrency string
}

// BucketValuation is the aggregate valuation of all assets sharing one
// currency.
type BucketValuation struct {
	Currency      Currency
	TotalAmount   decimal.Decimal
	TotalValue    decimal.Decimal
	QuoteCurrency string
}
