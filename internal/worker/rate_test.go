package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type mockRateFetcher struct {
	callCount atomic.Int32
}

func (m *mockRateFetcher) FetchAndStoreRates(_ context.Context) error {
	m.callCount.Add(1)
	return nil
}

func TestRateWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockRateFetcher{}
	w := NewRateWorker(mock, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// Should have run at least the initial fetch + some ticks
	if got := mock.callCount.Load(); got < 1 {
		t.Errorf("call count = %d, want >= 1", got)
	}
}
