package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/asset"
	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
	"github.com/tryDmitriyCatch/crypto-api/internal/exchange"
	"github.com/tryDmitriyCatch/crypto-api/internal/user"
)

type mockUsers struct {
	byToken map[string]domain.User
	deleted []int64
}

func (m *mockUsers) GetByToken(_ context.Context, token string) (domain.User, error) {
	u, ok := m.byToken[token]
	if !ok {
		return domain.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUsers) Update(_ context.Context, u domain.User, name, surname, email, _ string) (domain.User, error) {
	u.Name = name
	u.Surname = surname
	u.Email = email
	return u, nil
}

func (m *mockUsers) Delete(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAssets struct {
	assets  map[int64]domain.Asset
	nextID  int64
	deleted []int64
}

func (m *mockAssets) Create(_ context.Context, userID int64, label string, currency domain.Currency, amount decimal.Decimal) (domain.Asset, error) {
	if !currency.Valid() {
		return domain.Asset{}, domain.ErrUnknownCurrency
	}
	m.nextID++
	a := domain.Asset{ID: m.nextID, Label: label, Currency: currency, Amount: amount, UserID: userID}
	m.assets[a.ID] = a
	return a, nil
}

func (m *mockAssets) Get(_ context.Context, id int64) (domain.Asset, error) {
	a, ok := m.assets[id]
	if !ok {
		return domain.Asset{}, asset.ErrNotFound
	}
	return a, nil
}

func (m *mockAssets) ListByUser(_ context.Context, userID int64) ([]domain.Asset, error) {
	var out []domain.Asset
	for id := int64(1); id <= m.nextID; id++ {
		if a, ok := m.assets[id]; ok && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssets) Totals(ctx context.Context, userID int64) (map[domain.Currency]decimal.Decimal, error) {
	assets, _ := m.ListByUser(ctx, userID)
	totals := make(map[domain.Currency]decimal.Decimal)
	for _, a := range assets {
		totals[a.Currency] = totals[a.Currency].Add(a.Amount)
	}
	return totals, nil
}

func (m *mockAssets) Update(_ context.Context, id int64, label string, currency domain.Currency, amount decimal.Decimal) (domain.Asset, error) {
	a, ok := m.assets[id]
	if !ok {
		return domain.Asset{}, asset.ErrNotFound
	}
	a.Label = label
	a.Currency = currency
	a.Amount = amount
	m.assets[id] = a
	return a, nil
}

func (m *mockAssets) Delete(_ context.Context, id int64) error {
	if _, ok := m.assets[id]; !ok {
		return asset.ErrNotFound
	}
	delete(m.assets, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockValuer struct {
	rates map[domain.Currency]decimal.Decimal
	err   error
}

func (m *mockValuer) ValueAsset(_ context.Context, a domain.Asset) (domain.ValuationResult, error) {
	if m.err != nil {
		return domain.ValuationResult{}, m.err
	}
	rate, ok := m.rates[a.Currency]
	if !ok {
		return domain.ValuationResult{}, domain.ErrUnknownCurrency
	}
	return domain.ValuationResult{
		AssetID:       a.ID,
		Label:         a.Label,
		Currency:      a.Currency,
		Amount:        a.Amount,
		Value:         domain.RoundValue(a.Amount.Mul(rate)),
		QuoteCurrency: domain.QuoteUSD,
	}, nil
}

func (m *mockValuer) ValueBuckets(_ context.Context, totals map[domain.Currency]decimal.Decimal) (map[domain.Currency]domain.BucketValuation, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[domain.Currency]domain.BucketValuation, len(totals))
	for currency, total := range totals {
		rate, ok := m.rates[currency]
		if !ok {
			return nil, domain.ErrUnknownCurrency
		}
		out[currency] = domain.BucketValuation{
			Currency:      currency,
			TotalAmount:   total,
			TotalValue:    domain.RoundValue(total.Mul(rate)),
			QuoteCurrency: domain.QuoteUSD,
		}
	}
	return out, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestStack() (*mockUsers, *mockAssets, *mockValuer, http.Handler) {
	users := &mockUsers{byToken: map[string]domain.User{
		"tok-alice": {ID: 1, Token: "tok-alice", Name: "Alice", Surname: "Smith", Email: "alice@example.com"},
		"tok-bob":   {ID: 2, Token: "tok-bob", Name: "Bob", Surname: "Jones", Email: "bob@example.com"},
	}}
	assets := &mockAssets{assets: map[int64]domain.Asset{}}
	valuer := &mockValuer{rates: map[domain.Currency]decimal.Decimal{
		domain.CurrencyBTC:  dec("18035.708"),
		domain.CurrencyETH:  dec("1500"),
		domain.CurrencyIOTA: dec("0.25"),
	}}
	srv := NewServer("0", users, assets, valuer)
	return users, assets, valuer, srv.Handler
}

func doRequest(t *testing.T, h http.Handler, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if method == http.MethodGet || method == http.MethodDelete {
		req = httptest.NewRequest(method, path+"?"+form.Encode(), nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestMissingTokenRejected(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodGet, "/api/user/", url.Values{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "token parameter is missing" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestUnknownTokenRejected(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodGet, "/api/user/", url.Values{"token": {"nope"}})

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "user not found" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestGetUserWithValuedAssets(t *testing.T) {
	_, assets, _, h := newTestStack()
	assets.Create(context.Background(), 1, "cold wallet", domain.CurrencyBTC, dec("1.99"))

	w := doRequest(t, h, http.MethodGet, "/api/user/", url.Values{"token": {"tok-alice"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	data := body["data"].(map[string]any)
	if data["email"] != "alice@example.com" {
		t.Errorf("email = %v", data["email"])
	}
	list := data["assets"].([]any)
	if len(list) != 1 {
		t.Fatalf("assets count = %d, want 1", len(list))
	}
	first := list[0].(map[string]any)
	if first["value_in_USD"] != "35891.059 USD" {
		t.Errorf("value_in_USD = %v, want 35891.059 USD", first["value_in_USD"])
	}
	if first["currency"] != float64(domain.CurrencyBTC) {
		t.Errorf("currency = %v, want %d", first["currency"], domain.CurrencyBTC)
	}
}

func TestUpdateUser(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodPut, "/api/user/", url.Values{
		"token":   {"tok-alice"},
		"name":    {"Alicia"},
		"surname": {"Stone"},
		"email":   {"alicia@example.com"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "User has been successfully updated" {
		t.Errorf("message = %q", body["message"])
	}
	data := body["data"].(map[string]any)
	if data["name"] != "Alicia" || data["email"] != "alicia@example.com" {
		t.Errorf("updated user = %v", data)
	}
}

func TestUpdateUserMissingParams(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodPut, "/api/user/", url.Values{
		"token": {"tok-alice"},
		"name":  {"Alicia"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	users, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodDelete, "/api/user/", url.Values{"token": {"tok-bob"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "User has been successfully deleted" {
		t.Errorf("message = %q", body["message"])
	}
	if len(users.deleted) != 1 || users.deleted[0] != 2 {
		t.Errorf("deleted IDs = %v, want [2]", users.deleted)
	}
}

func TestListAssetsWithBucketTotals(t *testing.T) {
	_, assets, _, h := newTestStack()
	assets.Create(context.Background(), 1, "cold wallet", domain.CurrencyBTC, dec("2"))
	assets.Create(context.Background(), 1, "hot wallet", domain.CurrencyBTC, dec("3"))
	assets.Create(context.Background(), 1, "staking", domain.CurrencyETH, dec("10"))
	assets.Create(context.Background(), 2, "bob btc", domain.CurrencyBTC, dec("100"))

	w := doRequest(t, h, http.MethodGet, "/api/asset/index", url.Values{"token": {"tok-alice"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "success" {
		t.Errorf("status field = %v", body["status"])
	}
	if n := len(body["data"].([]any)); n != 3 {
		t.Errorf("assets count = %d, want 3", n)
	}
	totals := body["total_assets_in_USD"].(map[string]any)
	if totals["BTC"] != "90178.540 USD" {
		t.Errorf("BTC total = %v, want 90178.540 USD", totals["BTC"])
	}
	if totals["ETH"] != "15000.000 USD" {
		t.Errorf("ETH total = %v, want 15000.000 USD", totals["ETH"])
	}
	if _, ok := totals["IOTA"]; ok {
		t.Error("IOTA should be absent from totals")
	}
}

func TestCreateAsset(t *testing.T) {
	_, assets, _, h := newTestStack()

	w := doRequest(t, h, http.MethodPost, "/api/asset/create", url.Values{
		"token":    {"tok-alice"},
		"label":    {"cold wallet"},
		"currency": {"1"},
		"value":    {"1.99"},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "created" {
		t.Errorf("status field = %v", body["status"])
	}
	list := body["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("assets count = %d, want 1", len(list))
	}
	if len(assets.assets) != 1 {
		t.Errorf("stored assets = %d, want 1", len(assets.assets))
	}
}

func TestCreateAssetMissingParams(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodPost, "/api/asset/create", url.Values{
		"token": {"tok-alice"},
		"label": {"cold wallet"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "asset parameters are missing" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestCreateAssetUnknownCurrency(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodPost, "/api/asset/create", url.Values{
		"token":    {"tok-alice"},
		"label":    {"cold wallet"},
		"currency": {"99"},
		"value":    {"1"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "unknown currency code" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestCreateAssetBadValue(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodPost, "/api/asset/create", url.Values{
		"token":    {"tok-alice"},
		"label":    {"cold wallet"},
		"currency": {"1"},
		"value":    {"not-a-number"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetAssetByID(t *testing.T) {
	_, assets, _, h := newTestStack()
	assets.Create(context.Background(), 1, "cold wallet", domain.CurrencyBTC, dec("1.99"))

	w := doRequest(t, h, http.MethodGet, "/api/asset/1", url.Values{"token": {"tok-alice"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	if data["label"] != "cold wallet" {
		t.Errorf("label = %v", data["label"])
	}
	if data["value_in_USD"] != "35891.059 USD" {
		t.Errorf("value_in_USD = %v", data["value_in_USD"])
	}
}

func TestGetAssetOfAnotherUser(t *testing.T) {
	_, assets, _, h := newTestStack()
	assets.Create(context.Background(), 2, "bob wallet", domain.CurrencyBTC, dec("5"))

	w := doRequest(t, h, http.MethodGet, "/api/asset/1", url.Values{"token": {"tok-alice"}})

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "asset not found" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestGetAssetMissing(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodGet, "/api/asset/42", url.Values{"token": {"tok-alice"}})

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateAssetPartial(t *testing.T) {
	_, assets, _, h := newTestStack()
	assets.Create(context.Background(), 1, "cold wallet", domain.CurrencyBTC, dec("1.99"))

	w := doRequest(t, h, http.MethodPatch, "/api/asset/update", url.Values{
		"token":    {"tok-alice"},
		"asset_id": {"1"},
		"value":    {"5"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Asset has been successfully updated" {
		t.Errorf("message = %q", body["message"])
	}
	data := body["data"].(map[string]any)
	if data["label"] != "cold wallet" {
		t.Errorf("label = %v, want unchanged", data["label"])
	}
	if data["value_in_USD"] != "90178.540 USD" {
		t.Errorf("value_in_USD = %v, want 90178.540 USD", data["value_in_USD"])
	}
}

func TestUpdateAssetOfAnotherUser(t *testing.T) {
	_, assets, _, h := newTestStack()
	assets.Create(context.Background(), 2, "bob wallet", domain.CurrencyBTC, dec("5"))

	w := doRequest(t, h, http.MethodPut, "/api/asset/update", url.Values{
		"token":    {"tok-alice"},
		"asset_id": {"1"},
		"value":    {"7"},
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteAsset(t *testing.T) {
	_, assets, _, h := newTestStack()
	assets.Create(context.Background(), 1, "cold wallet", domain.CurrencyBTC, dec("1.99"))

	w := doRequest(t, h, http.MethodDelete, "/api/asset/delete", url.Values{
		"token":    {"tok-alice"},
		"asset_id": {"1"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Asset has been successfully deleted" {
		t.Errorf("message = %q", body["message"])
	}
	if len(assets.assets) != 0 {
		t.Errorf("stored assets = %d, want 0", len(assets.assets))
	}
}

func TestDeleteAssetMissingID(t *testing.T) {
	_, _, _, h := newTestStack()

	w := doRequest(t, h, http.MethodDelete, "/api/asset/delete", url.Values{"token": {"tok-alice"}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProviderOutageMapsToGatewayTimeout(t *testing.T) {
	_, assets, valuer, h := newTestStack()
	assets.Create(context.Background(), 1, "cold wallet", domain.CurrencyBTC, dec("1"))
	valuer.err = exchange.ErrConnection

	w := doRequest(t, h, http.MethodGet, "/api/asset/index", url.Values{"token": {"tok-alice"}})

	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", w.Code)
	}
}

func TestProviderErrorMapsToBadGateway(t *testing.T) {
	_, assets, valuer, h := newTestStack()
	assets.Create(context.Background(), 1, "cold wallet", domain.CurrencyBTC, dec("1"))
	valuer.err = exchange.ErrProviderServer

	w := doRequest(t, h, http.MethodGet, "/api/asset/index", url.Values{"token": {"tok-alice"}})

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}
