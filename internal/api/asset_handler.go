package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/asset"
	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// ListAssets handles GET /api/asset/index. On top of the per-asset
// valuations it reports the USD worth of each currency bucket the user
// holds, computed from database-side sums.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	payloads, err := h.userAssetPayloads(r.Context(), u.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}

	totals, err := h.assets.Totals(r.Context(), u.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}

	buckets, err := h.valuer.ValueBuckets(r.Context(), totals)
	if err != nil {
		writeFailure(w, err)
		return
	}

	totalsInUSD := make(map[string]string, len(buckets))
	for currency, bucket := range buckets {
		ticker, err := currency.Ticker()
		if err != nil {
			writeFailure(w, err)
			return
		}
		totalsInUSD[ticker] = domain.FormatUSD(bucket.TotalValue)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "success",
		"data":                payloads,
		"total_assets_in_USD": totalsInUSD,
	})
}

// CreateAsset handles POST /api/asset/create.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	label := r.FormValue("label")
	currencyParam := r.FormValue("currency")
	valueParam := r.FormValue("value")
	if label == "" || currencyParam == "" || valueParam == "" {
		writeError(w, http.StatusBadRequest, "asset parameters are missing")
		return
	}

	code, err := strconv.Atoi(currencyParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "currency must be a numeric code")
		return
	}
	currency, err := domain.ParseCurrency(code)
	if err != nil {
		writeFailure(w, err)
		return
	}

	amount, err := decimal.NewFromString(valueParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "value must be a decimal number")
		return
	}

	if _, err := h.assets.Create(r.Context(), u.ID, label, currency, amount); err != nil {
		writeFailure(w, err)
		return
	}

	payloads, err := h.userAssetPayloads(r.Context(), u.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "created",
		"data":   payloads,
	})
}

// GetAsset handles GET /api/asset/{asset_id}.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "asset_id"), 10, 64)
	if err != nil {
		writeFailure(w, asset.ErrNotFound)
		return
	}

	a, err := h.ownedAsset(r, id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	payload, err := h.assetToPayload(r.Context(), a)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"data":   payload,
	})
}

// UpdateAsset handles PUT/PATCH /api/asset/update. Parameters not supplied
// keep their stored values.
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	idParam := r.FormValue("asset_id")
	if idParam == "" {
		writeError(w, http.StatusBadRequest, "asset_id parameter is missing")
		return
	}
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		writeFailure(w, asset.ErrNotFound)
		return
	}

	a, err := h.ownedAsset(r, id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	label := a.Label
	if v := r.FormValue("label"); v != "" {
		label = v
	}

	currency := a.Currency
	if v := r.FormValue("currency"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "currency must be a numeric code")
			return
		}
		currency, err = domain.ParseCurrency(code)
		if err != nil {
			writeFailure(w, err)
			return
		}
	}

	amount := a.Amount
	if v := r.FormValue("value"); v != "" {
		amount, err = decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "value must be a decimal number")
			return
		}
	}

	updated, err := h.assets.Update(r.Context(), id, label, currency, amount)
	if err != nil {
		writeFailure(w, err)
		return
	}

	payload, err := h.assetToPayload(r.Context(), updated)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Asset has been successfully updated",
		"data":    payload,
	})
}

// DeleteAsset handles DELETE /api/asset/delete.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	idParam := r.FormValue("asset_id")
	if idParam == "" {
		writeError(w, http.StatusBadRequest, "asset_id parameter is missing")
		return
	}
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		writeFailure(w, asset.ErrNotFound)
		return
	}

	if _, err := h.ownedAsset(r, id); err != nil {
		writeFailure(w, err)
		return
	}

	if err := h.assets.Delete(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Asset has been successfully deleted",
	})
}
