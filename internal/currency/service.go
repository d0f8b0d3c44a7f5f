package currency

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Service manages exchange rates: periodic refresh from the rates API into
// storage, and rate-table reads for conversions.
type Service struct {
	client *RatesClient
	repo   RateRepository
}

// NewService creates a new currency Service.
func NewService(client *RatesClient, repo RateRepository) *Service {
	return &Service{
		client: client,
		repo:   repo,
	}
}

// FetchAndStoreRates fetches the latest rates and stores them.
func (s *Service) FetchAndStoreRates(ctx context.Context) error {
	rates, err := s.client.FetchRates(ctx)
	if err != nil {
		return fmt.Errorf("fetching exchange rates: %w", err)
	}

	for code, rate := range rates {
		if err := s.repo.SaveRate(ctx, code, decimal.NewFromFloat(rate)); err != nil {
			return fmt.Errorf("storing rate for %s: %w", code, err)
		}
	}

	return nil
}

// CurrentTable loads the stored rates into an immutable conversion table.
func (s *Service) CurrentTable(ctx context.Context) (Table, error) {
	rates, err := s.repo.LoadRates(ctx)
	if err != nil {
		return Table{}, fmt.Errorf("loading rate table: %w", err)
	}
	return NewTable(rates), nil
}
