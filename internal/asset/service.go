package asset

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// Service manages a user's crypto assets on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a new asset service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new asset for the user. The currency must be in the
// supported set.
func (s *Service) Create(ctx context.Context, userID int64, label string, currency domain.Currency, amount decimal.Decimal) (domain.Asset, error) {
	if !currency.Valid() {
		return domain.Asset{}, fmt.Errorf("creating asset: %w: code %d", domain.ErrUnknownCurrency, int(currency))
	}

	a := domain.Asset{
		UserID:   userID,
		Label:    label,
		Currency: currency,
		Amount:   amount,
	}
	if err := s.repo.Create(ctx, &a); err != nil {
		return domain.Asset{}, err
	}
	return a, nil
}

// Get returns a single asset by id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Asset, error) {
	return s.repo.FindByID(ctx, id)
}

// ListByUser returns all assets owned by the user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Asset, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// Totals returns the user's per-currency amount sums, aggregated in storage.
func (s *Service) Totals(ctx context.Context, userID int64) (map[domain.Currency]decimal.Decimal, error) {
	return s.repo.SumAmountsByCurrency(ctx, userID, domain.Currencies())
}

// Update replaces the asset's label, currency and amount.
func (s *Service) Update(ctx context.Context, id int64, label string, currency domain.Currency, amount decimal.Decimal) (domain.Asset, error) {
	if !currency.Valid() {
		return domain.Asset{}, fmt.Errorf("updating asset %d: %w: code %d", id, domain.ErrUnknownCurrency, int(currency))
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Asset{}, err
	}

	a.Label = label
	a.Currency = currency
	a.Amount = amount
	if err := s.repo.Update(ctx, a); err != nil {
		return domain.Asset{}, err
	}
	return a, nil
}

// Delete removes the asset.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
