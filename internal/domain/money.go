package domain

import "github.com/shopspring/decimal"

// valueScale is the number of decimal places for fiat valuations.
const valueScale = 3

// QuoteUSD is the quote currency all valuations are expressed in.
const QuoteUSD = "USD"

// RoundValue rounds a computed valuation to 3 decimal places, half up.
func RoundValue(d decimal.Decimal) decimal.Decimal {
	return d.Round(valueScale)
}

// FormatUSD renders a valuation for display, e.g. "35891.059 USD".
// Formatting is a presentation concern; calculations stay numeric.
func FormatUSD(d decimal.Decimal) string {
	return d.StringFixed(valueScale) + " " + QuoteUSD
}
