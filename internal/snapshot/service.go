package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardvault/ledger/internal/domain"
	"github.com/cardvault/ledger/internal/ledger"
)

// LedgerReader lists an owner's ledger entries for aggregation.
type LedgerReader interface {
	List(ctx context.Context, ownerID string) ([]domain.LedgerEntry, error)
}

// Service generates and retrieves daily collection-value snapshots. A
// snapshot freezes the owner's aggregated ledger stats for one date so the
// app can chart value history without replaying the ledger.
type Service struct {
	entries LedgerReader
	repo    Repository
}

// NewService creates a new snapshot Service.
func NewService(entries LedgerReader, repo Repository) *Service {
	return &Service{entries: entries, repo: repo}
}

// Generate aggregates the owner's ledger and stores the stats under the
// given date, overwriting any snapshot already stored for that date.
func (s *Service) Generate(ctx context.Context, ownerID string, date time.Time) (domain.OwnerStats, error) {
	entries, err := s.entries.List(ctx, ownerID)
	if err != nil {
		return domain.OwnerStats{}, fmt.Errorf("listing ledger entries: %w", err)
	}

	stats := ledger.Stats(entries)

	data, err := json.Marshal(stats)
	if err != nil {
		return domain.OwnerStats{}, fmt.Errorf("marshaling stats: %w", err)
	}

	if err := s.repo.Save(ctx, ownerID, date, data); err != nil {
		return domain.OwnerStats{}, fmt.Errorf("saving snapshot: %w", err)
	}

	return stats, nil
}

// GetLatest retrieves the owner's most recent snapshot.
func (s *Service) GetLatest(ctx context.Context, ownerID string) (*Snapshot, error) {
	return s.repo.GetLatest(ctx, ownerID)
}

// GetByDate retrieves the owner's snapshot for a specific date.
func (s *Service) GetByDate(ctx context.Context, ownerID string, date time.Time) (*Snapshot, error) {
	return s.repo.GetByDate(ctx, ownerID, date)
}

// List retrieves the owner's recent snapshots.
func (s *Service) List(ctx context.Context, ownerID string, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, ownerID, limit)
}
