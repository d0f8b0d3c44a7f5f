package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/domain"
)

// ErrNotFound indicates that the requested ledger entry does not exist for
// the owner.
var ErrNotFound = errors.New("ledger entry not found")

// ValidationError rejects a malformed entry before anything is persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid ledger entry: " + e.Reason
}

// Repository defines persistent storage for ledger entries. Appends and
// deletes are atomic single-row writes: an entry either exists fully formed
// or not at all.
type Repository interface {
	Append(ctx context.Context, entry domain.LedgerEntry) (int64, error)
	Get(ctx context.Context, ownerID string, id int64) (domain.LedgerEntry, error)
	List(ctx context.Context, ownerID string) ([]domain.LedgerEntry, error)
	UpdateItemsIn(ctx context.Context, ownerID string, id int64, itemsIn []domain.LineItem, totalValue decimal.Decimal) error
	Delete(ctx context.Context, ownerID string, id int64) error
}

// Service records and reads an owner's transaction ledger.
type Service struct {
	repo Repository
}

// NewService creates a new ledger Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Validate checks an entry before persistence. Amounts built through
// domain.MoneyFromFloat are finite by construction; the checks here cover
// the remaining invariants.
func Validate(entry domain.LedgerEntry) error {
	if !entry.Type.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown transaction type %q", entry.Type)}
	}
	for _, it := range append(append([]domain.LineItem{}, entry.ItemsIn...), entry.ItemsOut...) {
		if it.Quantity < 1 {
			return &ValidationError{Reason: fmt.Sprintf("line %q has non-positive quantity %d", it.Name, it.Quantity)}
		}
	}
	if entry.CashAmount != nil {
		if entry.CashDirection != domain.CashIn && entry.CashDirection != domain.CashOut {
			return &ValidationError{Reason: "cash amount without a cash direction"}
		}
		if entry.CashAmount.IsNegative() {
			return &ValidationError{Reason: "negative cash amount"}
		}
	}
	return nil
}

// Record validates and appends an immutable entry, returning its id. All
// amounts arrive pre-computed from the valuation calculator; nothing is
// recomputed here.
func (s *Service) Record(ctx context.Context, ownerID string, entry domain.LedgerEntry) (int64, error) {
	entry.OwnerID = ownerID
	if err := Validate(entry); err != nil {
		return 0, err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	id, err := s.repo.Append(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("recording %s: %w", entry.Type, err)
	}

	slog.Info("ledger entry recorded",
		"owner", ownerID, "id", id, "type", entry.Type,
		"totalValue", entry.TotalValue, "valueGained", entry.ValueGained)
	return id, nil
}

// List returns all of an owner's entries, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.LedgerEntry, error) {
	return s.repo.List(ctx, ownerID)
}

// Get returns a single entry.
func (s *Service) Get(ctx context.Context, ownerID string, id int64) (domain.LedgerEntry, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Delete hard-deletes an entry. There is no soft delete or undo.
func (s *Service) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	slog.Info("ledger entry deleted", "owner", ownerID, "id", id)
	return nil
}

// EditItemPrices is the single mutation affordance on a recorded entry: a
// correction tool for incoming line prices. Each edited line's total is
// recomputed from the new unit price, and the entry's TotalValue becomes the
// sum over ItemsIn. ItemsOut and ValueGained are deliberately not touched —
// edits correct what was paid, not the profit accounting.
func (s *Service) EditItemPrices(ctx context.Context, ownerID string, id int64, unitPrices map[int]decimal.Decimal) error {
	entry, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	for idx, price := range unitPrices {
		if idx < 0 || idx >= len(entry.ItemsIn) {
			return &ValidationError{Reason: fmt.Sprintf("line index %d out of range", idx)}
		}
		if price.IsNegative() {
			return &ValidationError{Reason: fmt.Sprintf("negative unit price for line %d", idx)}
		}
		entry.ItemsIn[idx].UnitPrice = price
		entry.ItemsIn[idx].TotalPrice = price.Mul(decimal.NewFromInt(int64(entry.ItemsIn[idx].Quantity)))
	}

	totalValue := decimal.Zero
	for _, it := range entry.ItemsIn {
		totalValue = totalValue.Add(it.TotalPrice)
	}

	if err := s.repo.UpdateItemsIn(ctx, ownerID, id, entry.ItemsIn, totalValue); err != nil {
		return fmt.Errorf("updating item prices: %w", err)
	}
	return nil
}
