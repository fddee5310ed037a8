package valuation

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// GroupAndSum partitions assets into currency buckets and sums the raw
// amounts per bucket with decimal addition. Iteration order does not affect
// the result. Empty input yields an empty map, not an error.
func GroupAndSum(assets []domain.Asset) map[domain.Currency]decimal.Decimal {
	grouped := lo.GroupBy(assets, func(a domain.Asset) domain.Currency {
		return a.Currency
	})

	totals := make(map[domain.Currency]decimal.Decimal, len(grouped))
	for currency, bucket := range grouped {
		totals[currency] = lo.Reduce(bucket, func(acc decimal.Decimal, a domain.Asset, _ int) decimal.Decimal {
			return acc.Add(a.Amount)
		}, decimal.Zero)
	}
	return totals
}
