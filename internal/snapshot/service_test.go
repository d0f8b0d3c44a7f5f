package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/domain"
	"github.com/cardvault/ledger/internal/ledger"
)

type mockLedgerReader struct {
	entries []domain.LedgerEntry
	err     error
}

func (m *mockLedgerReader) List(_ context.Context, _ string) ([]domain.LedgerEntry, error) {
	return m.entries, m.err
}

type mockSnapshotRepo struct {
	saved map[string]json.RawMessage
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{saved: make(map[string]json.RawMessage)}
}

func (m *mockSnapshotRepo) Save(_ context.Context, ownerID string, date time.Time, data json.RawMessage) error {
	m.saved[ownerID+":"+date.Format("2006-01-02")] = data
	return nil
}

func (m *mockSnapshotRepo) GetLatest(_ context.Context, _ string) (*Snapshot, error) {
	return nil, ErrNotFound
}

func (m *mockSnapshotRepo) GetByDate(_ context.Context, _ string, _ time.Time) (*Snapshot, error) {
	return nil, ErrNotFound
}

func (m *mockSnapshotRepo) List(_ context.Context, _ string, _ int) ([]Snapshot, error) {
	return nil, nil
}

func buyEntry(unitPrice, marketValue string) domain.LedgerEntry {
	return ledger.NewBuy("owner-1", []domain.LineItem{{
		Name:        "Card",
		Quantity:    1,
		UnitPrice:   decimal.RequireFromString(unitPrice),
		MarketValue: decimal.RequireFromString(marketValue),
	}}, "USD", "")
}

func TestGenerateStoresAggregatedStats(t *testing.T) {
	reader := &mockLedgerReader{entries: []domain.LedgerEntry{buyEntry("10", "15")}}
	repo := newMockSnapshotRepo()
	svc := NewService(reader, repo)

	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	stats, err := svc.Generate(context.Background(), "owner-1", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Buys.Count != 1 {
		t.Errorf("buys count = %d, want 1", stats.Buys.Count)
	}

	raw, ok := repo.saved["owner-1:2026-02-01"]
	if !ok {
		t.Fatal("snapshot was not saved")
	}

	var stored domain.OwnerStats
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("stored snapshot is not valid stats JSON: %v", err)
	}
	if !stored.Buys.TotalValue.Equal(decimal.RequireFromString("10")) {
		t.Errorf("stored buys total = %s, want 10", stored.Buys.TotalValue)
	}
}

func TestGenerateLedgerFailure(t *testing.T) {
	reader := &mockLedgerReader{err: errors.New("store down")}
	svc := NewService(reader, newMockSnapshotRepo())

	if _, err := svc.Generate(context.Background(), "owner-1", time.Now()); err == nil {
		t.Error("expected error when ledger listing fails")
	}
}

func TestGenerateEmptyLedger(t *testing.T) {
	svc := NewService(&mockLedgerReader{}, newMockSnapshotRepo())

	stats, err := svc.Generate(context.Background(), "owner-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.EntryCount != 0 {
		t.Errorf("entryCount = %d, want 0", stats.EntryCount)
	}
}
