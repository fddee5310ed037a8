package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// UserService is the slice of user management the API depends on.
type UserService interface {
	GetByToken(ctx context.Context, token string) (domain.User, error)
	Update(ctx context.Context, u domain.User, name, surname, email, password string) (domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// AssetService is the slice of asset management the API depends on.
type AssetService interface {
	Create(ctx context.Context, userID int64, label string, currency domain.Currency, amount decimal.Decimal) (domain.Asset, error)
	Get(ctx context.Context, id int64) (domain.Asset, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Asset, error)
	Totals(ctx context.Context, userID int64) (map[domain.Currency]decimal.Decimal, error)
	Update(ctx context.Context, id int64, label string, currency domain.Currency, amount decimal.Decimal) (domain.Asset, error)
	Delete(ctx context.Context, id int64) error
}

// Valuer computes USD valuations for assets and currency buckets.
type Valuer interface {
	ValueAsset(ctx context.Context, asset domain.Asset) (domain.ValuationResult, error)
	ValueBuckets(ctx context.Context, totals map[domain.Currency]decimal.Decimal) (map[domain.Currency]domain.BucketValuation, error)
}

// Handler provides the HTTP endpoints for users and their assets.
type Handler struct {
	users  UserService
	assets AssetService
	valuer Valuer
}

// NewHandler creates a new API handler.
func NewHandler(users UserService, assets AssetService, valuer Valuer) *Handler {
	return &Handler{users: users, assets: assets, valuer: valuer}
}

// assetPayload is the wire shape of a single asset, with its current USD value.
type assetPayload struct {
	ID         int64           `json:"id"`
	Label      string          `json:"label"`
	Value      decimal.Decimal `json:"value"`
	Currency   int             `json:"currency"`
	ValueInUSD string          `json:"value_in_USD"`
}

// userPayload is the wire shape of a user with their assets embedded.
type userPayload struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Surname string         `json:"surname"`
	Email   string         `json:"email"`
	Assets  []assetPayload `json:"assets"`
}

func (h *Handler) assetToPayload(ctx context.Context, a domain.Asset) (assetPayload, error) {
	valued, err := h.valuer.ValueAsset(ctx, a)
	if err != nil {
		return assetPayload{}, err
	}
	return assetPayload{
		ID:         a.ID,
		Label:      a.Label,
		Value:      a.Amount,
		Currency:   int(a.Currency),
		ValueInUSD: domain.FormatUSD(valued.Value),
	}, nil
}

// userAssetPayloads values every asset the user owns. One rate per distinct
// currency is fetched underneath thanks to the rate cache.
func (h *Handler) userAssetPayloads(ctx context.Context, userID int64) ([]assetPayload, error) {
	assets, err := h.assets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	payloads := make([]assetPayload, 0, len(assets))
	for _, a := range assets {
		p, err := h.assetToPayload(ctx, a)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// ownedAsset loads an asset and verifies it belongs to the requesting user.
// Assets of other users are indistinguishable from missing ones.
func (h *Handler) ownedAsset(r *http.Request, id int64) (domain.Asset, error) {
	a, err := h.assets.Get(r.Context(), id)
	if err != nil {
		return domain.Asset{}, err
	}
	if a.UserID != userFrom(r.Context()).ID {
		return domain.Asset{}, errNotOwner
	}
	return a, nil
}
