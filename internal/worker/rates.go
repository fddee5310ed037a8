package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// RateSource provides spot rates, usually the cached quote client.
type RateSource interface {
	GetRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error)
}

// RateWorker periodically looks up rates for the supported currency set so
// the cache stays warm between user requests.
type RateWorker struct {
	rates    RateSource
	interval time.Duration
}

// NewRateWorker creates a new RateWorker.
func NewRateWorker(rates RateSource, interval time.Duration) *RateWorker {
	return &RateWorker{
		rates:    rates,
		interval: interval,
	}
}

// Run starts the worker loop. It blocks until the context is cancelled.
func (w *RateWorker) Run(ctx context.Context) {
	slog.Info("RateWorker: starting", "interval", w.interval)

	// Warm the cache immediately on startup
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RateWorker: shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RateWorker) refresh(ctx context.Context) {
	for _, currency := range domain.Currencies() {
		ticker, err := currency.Ticker()
		if err != nil {
			continue
		}
		if _, err := w.rates.GetRate(ctx, ticker, domain.QuoteUSD); err != nil {
			slog.Warn("RateWorker: refresh failed", "currency", ticker, "error", err)
		}
	}
}
