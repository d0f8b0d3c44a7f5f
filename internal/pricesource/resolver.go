package pricesource

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cardvault/ledger/internal/domain"
)

// Resolver returns the raw price quotes known for a card instance. Absence of
// a source is a first-class outcome: a card nobody lists resolves to empty
// quotes, never to an error.
type Resolver struct {
	catalog CatalogClient
	cache   *quoteCache
}

// NewResolver creates a new price source Resolver.
func NewResolver(catalog CatalogClient) *Resolver {
	return &Resolver{
		catalog: catalog,
		cache:   newQuoteCache(),
	}
}

// Resolve returns the source quotes for an instance. Graded instances never
// consult the catalog: their value comes from the graded price alone.
// Instances that arrive with quotes already attached are treated as resolved.
func (r *Resolver) Resolve(ctx context.Context, instance domain.CardInstance) (domain.SourceQuotes, error) {
	if instance.IsGraded {
		return domain.SourceQuotes{}, nil
	}
	if !instance.Prices.Empty() {
		return instance.Prices, nil
	}

	key := instance.Key()
	if cached, ok := r.cache.get(key); ok {
		return cached, nil
	}

	quotes, err := r.catalog.FetchQuotes(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCardUnknown) {
			slog.Info("card has no catalog entry", "card", key)
			return domain.SourceQuotes{}, nil
		}
		return domain.SourceQuotes{}, err
	}

	r.cache.set(key, quotes)
	return quotes, nil
}
