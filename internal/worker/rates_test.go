package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

type recordingSource struct {
	mu      sync.Mutex
	lookups []string
}

func (r *recordingSource) GetRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, base+"/"+quote)
	return domain.ExchangeRate{Base: base, Quote: quote, Rate: decimal.NewFromInt(1)}, nil
}

func (r *recordingSource) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lookups)
}

func TestRateWorkerRefreshesOnStartup(t *testing.T) {
	source := &recordingSource{}
	w := NewRateWorker(source, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for source.count() < len(domain.Currencies()) {
		select {
		case <-deadline:
			t.Fatalf("initial refresh incomplete: %d lookups", source.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	source.mu.Lock()
	defer source.mu.Unlock()
	want := map[string]bool{"BTC/USD": true, "ETH/USD": true, "IOTA/USD": true}
	for _, pair := range source.lookups[:3] {
		if !want[pair] {
			t.Errorf("unexpected lookup %q", pair)
		}
		delete(want, pair)
	}
	if len(want) != 0 {
		t.Errorf("missing lookups: %v", want)
	}
}

func TestRateWorkerStopsOnCancel(t *testing.T) {
	source := &recordingSource{}
	w := NewRateWorker(source, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
