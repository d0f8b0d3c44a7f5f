package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/domain"
)

// PgRepository implements Repository with PostgreSQL. Line items are stored
// as jsonb; every statement is scoped by owner.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL ledger repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Append(ctx context.Context, entry domain.LedgerEntry) (int64, error) {
	itemsIn, err := json.Marshal(entry.ItemsIn)
	if err != nil {
		return 0, fmt.Errorf("encoding itemsIn: %w", err)
	}
	itemsOut, err := json.Marshal(entry.ItemsOut)
	if err != nil {
		return 0, fmt.Errorf("encoding itemsOut: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx,
		`INSERT INTO ledger_entries
		   (owner_id, type, items_in, items_out, total_value, value_gained,
		    cash_amount, cash_direction, currency, input_currency, created_at)
		 VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		entry.OwnerID, entry.Type, itemsIn, itemsOut, entry.TotalValue, entry.ValueGained,
		entry.CashAmount, nullableString(string(entry.CashDirection)), entry.Currency,
		nullableString(entry.InputCurrency), entry.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("appending ledger entry: %w", err)
	}
	return id, nil
}

func (r *PgRepository) Get(ctx context.Context, ownerID string, id int64) (domain.LedgerEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, type, items_in, items_out, total_value, value_gained,
		        cash_amount, cash_direction, currency, input_currency, created_at
		 FROM ledger_entries
		 WHERE owner_id = $1 AND id = $2`, ownerID, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LedgerEntry{}, ErrNotFound
		}
		return domain.LedgerEntry{}, fmt.Errorf("getting ledger entry %d: %w", id, err)
	}
	return entry, nil
}

func (r *PgRepository) List(ctx context.Context, ownerID string) ([]domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, type, items_in, items_out, total_value, value_gained,
		        cash_amount, cash_direction, currency, input_currency, created_at
		 FROM ledger_entries
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger entries: %w", err)
	}
	return entries, nil
}

func (r *PgRepository) UpdateItemsIn(ctx context.Context, ownerID string, id int64, itemsIn []domain.LineItem, totalValue decimal.Decimal) error {
	encoded, err := json.Marshal(itemsIn)
	if err != nil {
		return fmt.Errorf("encoding itemsIn: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE ledger_entries
		 SET items_in = $3::jsonb, total_value = $4
		 WHERE owner_id = $1 AND id = $2`,
		ownerID, id, encoded, totalValue)
	if err != nil {
		return fmt.Errorf("updating ledger entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM ledger_entries WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting ledger entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Owners returns every owner with at least one ledger entry.
func (r *PgRepository) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT owner_id FROM ledger_entries`)
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scanning owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating owners: %w", err)
	}
	return owners, nil
}

func scanEntry(row pgx.Row) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var itemsIn, itemsOut []byte
	var cashDirection, inputCurrency *string

	err := row.Scan(&e.ID, &e.OwnerID, &e.Type, &itemsIn, &itemsOut, &e.TotalValue,
		&e.ValueGained, &e.CashAmount, &cashDirection, &e.Currency, &inputCurrency, &e.CreatedAt)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	if len(itemsIn) > 0 {
		if err := json.Unmarshal(itemsIn, &e.ItemsIn); err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("decoding itemsIn: %w", err)
		}
	}
	if len(itemsOut) > 0 {
		if err := json.Unmarshal(itemsOut, &e.ItemsOut); err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("decoding itemsOut: %w", err)
		}
	}
	if cashDirection != nil {
		e.CashDirection = domain.CashDirection(*cashDirection)
	}
	if inputCurrency != nil {
		e.InputCurrency = *inputCurrency
	}
	return e, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
