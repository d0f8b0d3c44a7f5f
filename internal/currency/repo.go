package currency

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RateRepository defines persistent storage for exchange rates.
type RateRepository interface {
	SaveRate(ctx context.Context, code string, rate decimal.Decimal) error
	LoadRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// PgRateRepository implements RateRepository with PostgreSQL.
type PgRateRepository struct {
	pool *pgxpool.Pool
}

// NewPgRateRepository creates a new PostgreSQL rate repository.
func NewPgRateRepository(pool *pgxpool.Pool) *PgRateRepository {
	return &PgRateRepository{pool: pool}
}

func (r *PgRateRepository) SaveRate(ctx context.Context, code string, rate decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exchange_rates (code, rate, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (code)
		 DO UPDATE SET rate = $2, updated_at = NOW()`,
		code, rate)
	if err != nil {
		return fmt.Errorf("saving rate for %s: %w", code, err)
	}
	return nil
}

func (r *PgRateRepository) LoadRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, rate FROM exchange_rates`)
	if err != nil {
		return nil, fmt.Errorf("loading rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]decimal.Decimal)
	for rows.Next() {
		var code string
		var rate decimal.Decimal
		if err := rows.Scan(&code, &rate); err != nil {
			return nil, fmt.Errorf("scanning rate: %w", err)
		}
		rates[code] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rates: %w", err)
	}
	return rates, nil
}
