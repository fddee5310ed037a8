package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tryDmitriyCatch/crypto-api/internal/asset"
	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
	"github.com/tryDmitriyCatch/crypto-api/internal/exchange"
	"github.com/tryDmitriyCatch/crypto-api/internal/user"
)

// errNotOwner marks an asset that exists but belongs to another user.
// It maps to the same response as a missing asset.
var errNotOwner = errors.New("asset not owned by requester")

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"status":"error","message":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}

// writeFailure maps service and quote-pipeline errors onto transport
// responses. Provider error bodies are never echoed to the caller.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, asset.ErrNotFound), errors.Is(err, errNotOwner):
		writeError(w, http.StatusNotFound, "asset not found")
	case errors.Is(err, domain.ErrUnknownCurrency):
		writeError(w, http.StatusBadRequest, "unknown currency code")
	case errors.Is(err, exchange.ErrConnection),
		errors.Is(err, context.DeadlineExceeded):
		slog.Error("exchange rate provider unreachable", "error", err)
		writeError(w, http.StatusGatewayTimeout, "exchange rate provider unreachable")
	case errors.Is(err, exchange.ErrProviderServer),
		errors.Is(err, exchange.ErrProviderClient),
		errors.Is(err, exchange.ErrTooManyRedirects),
		errors.Is(err, exchange.ErrMalformedResponse):
		slog.Error("exchange rate lookup failed", "error", err)
		writeError(w, http.StatusBadGateway, "exchange rate lookup failed")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
