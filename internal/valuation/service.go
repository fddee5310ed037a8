package valuation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// RateSource provides spot rates for valuation, usually the cached quote client.
type RateSource interface {
	GetRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error)
}

// Service computes USD valuations for single assets and whole portfolios.
// Valuation is a pure read-and-compute pipeline; nothing is persisted.
type Service struct {
	rates RateSource
}

// NewService creates a valuation service over the given rate source.
func NewService(rates RateSource) *Service {
	return &Service{rates: rates}
}

// ValueAsset values one asset at the current spot rate:
// value = round(amount * rate, 3). Quote failures are wrapped with the
// asset context and re-raised, never swallowed.
func (s *Service) ValueAsset(ctx context.Context, asset domain.Asset) (domain.ValuationResult, error) {
	ticker, err := asset.Currency.Ticker()
	if err != nil {
		return domain.ValuationResult{}, fmt.Errorf("valuing asset %d: %w", asset.ID, err)
	}

	rate, err := s.rates.GetRate(ctx, ticker, domain.QuoteUSD)
	if err != nil {
		return domain.ValuationResult{}, fmt.Errorf("valuing asset %d (%s): %w", asset.ID, ticker, err)
	}

	return domain.ValuationResult{
		AssetID:       asset.ID,
		Label:         asset.Label,
		Currency:      asset.Currency,
		Amount:        asset.Amount,
		Value:         domain.RoundValue(asset.Amount.Mul(rate.Rate)),
		QuoteCurrency: domain.QuoteUSD,
	}, nil
}

// ValuePortfolio values a set of assets grouped by currency. One rate is
// fetched per distinct currency, not per asset. Currencies without holdings
// do not appear in the result. Any rate failure aborts the whole valuation.
func (s *Service) ValuePortfolio(ctx context.Context, assets []domain.Asset) (map[domain.Currency]domain.BucketValuation, error) {
	return s.ValueBuckets(ctx, GroupAndSum(assets))
}

// ValueBuckets values pre-summed per-currency totals, as produced by
// GroupAndSum or by storage-side aggregation.
func (s *Service) ValueBuckets(ctx context.Context, totals map[domain.Currency]decimal.Decimal) (map[domain.Currency]domain.BucketValuation, error) {
	result := make(map[domain.Currency]domain.BucketValuation, len(totals))
	for currency, total := range totals {
		ticker, err := currency.Ticker()
		if err != nil {
			return nil, fmt.Errorf("valuing %s bucket: %w", currency, err)
		}

		rate, err := s.rates.GetRate(ctx, ticker, domain.QuoteUSD)
		if err != nil {
			return nil, fmt.Errorf("valuing %s bucket: %w", ticker, err)
		}

		result[currency] = domain.BucketValuation{
			Currency:      currency,
			TotalAmount:   total,
			TotalValue:    domain.RoundValue(total.Mul(rate.Rate)),
			QuoteCurrency: domain.QuoteUSD,
		}
	}
	return result, nil
}
