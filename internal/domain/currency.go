package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Currency identifies a supported crypto currency by its stored numeric code.
type Currency int

const (
	CurrencyBTC  Currency = 1
	CurrencyETH  Currency = 2
	CurrencyIOTA Currency = 3
)

// ErrUnknownCurrency is returned for numeric codes outside the supported set.
var ErrUnknownCurrency = errors.New("unknown currency code")

var tickers = map[Currency]string{
	CurrencyBTC:  "BTC",
	CurrencyETH:  "ETH",
	CurrencyIOTA: "IOTA",
}

// Currencies returns all supported currencies in ascending code order.
func Currencies() []Currency {
	out := make([]Currency, 0, len(tickers))
	for c := range tickers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCurrency converts a stored numeric code into a Currency.
func ParseCurrency(code int) (Currency, error) {
	c := Currency(code)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCurrency, code)
	}
	return c, nil
}

// Ticker returns the exchange symbol for the currency, e.g. "BTC".
func (c Currency) Ticker() (string, error) {
	ticker, ok := tickers[c]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownCurrency, int(c))
	}
	return ticker, nil
}

// Valid reports whether the currency is one of the supported codes.
func (c Currency) Valid() bool {
	_, ok := tickers[c]
	return ok
}

func (c Currency) String() string {
	if ticker, ok := tickers[c]; ok {
		return ticker
	}
	return fmt.Sprintf("Currency(%d)", int(c))
}
