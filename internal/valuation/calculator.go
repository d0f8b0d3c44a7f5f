package valuation

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/currency"
	"github.com/cardvault/ledger/internal/domain"
	"github.com/cardvault/ledger/internal/pricesource"
)

const (
	// MinPercent and MaxPercent bound the pay/offer percentage. Inputs
	// outside the range are clamped, never rejected.
	MinPercent = 40
	MaxPercent = 120

	// DefaultPercent is the initial buy/trade percentage on the
	// calculator screens.
	DefaultPercent = 70
)

// ClampPercent clamps a percentage to [MinPercent, MaxPercent].
func ClampPercent(p int) int {
	if p < MinPercent {
		return MinPercent
	}
	if p > MaxPercent {
		return MaxPercent
	}
	return p
}

// QuoteResolver yields the raw source quotes for a card instance.
type QuoteResolver interface {
	Resolve(ctx context.Context, instance domain.CardInstance) (domain.SourceQuotes, error)
}

// Calculator computes suggested and final values for card instances.
type Calculator struct {
	resolver QuoteResolver
}

// NewCalculator creates a new valuation Calculator.
func NewCalculator(resolver QuoteResolver) *Calculator {
	return &Calculator{resolver: resolver}
}

// ValueItem values a single card instance under a pricing context.
//
// Per-source values and the suggestion are scaled by the percentage before
// being returned, so a screen can show "TCG at 70%: $X" per source. The
// suggestion for an ungraded card is the minimum of the positive sources
// present — always the most conservative quote — falling back to the generic
// aggregate source, then to zero. An operator override is absolute: it is
// used verbatim and never re-scaled.
func (c *Calculator) ValueItem(ctx context.Context, table currency.Table, pctx domain.PricingContext, instance domain.CardInstance) (domain.ItemValuation, error) {
	pct := ClampPercent(pctx.Percent)
	scale := decimal.NewFromInt(int64(pct)).Div(decimal.NewFromInt(100))

	result := domain.ItemValuation{
		Quantity: instance.EffectiveQuantity(),
		Percent:  pct,
	}

	if instance.IsGraded {
		if err := c.valueGraded(table, pctx, instance, scale, &result); err != nil {
			return domain.ItemValuation{}, err
		}
	} else {
		if err := c.valueUngraded(ctx, table, pctx, instance, scale, &result); err != nil {
			return domain.ItemValuation{}, err
		}
	}

	if instance.Override != nil {
		result.Final = *instance.Override
		result.NeedsManualPrice = false
	} else {
		result.Final = result.Suggested
		result.NeedsManualPrice = !result.Suggested.IsPositive()
	}

	return result, nil
}

// valueGraded prices a graded instance: the graded price, converted from the
// reference currency, is the single source. Condition tiers do not apply.
func (c *Calculator) valueGraded(table currency.Table, pctx domain.PricingContext, instance domain.CardInstance, scale decimal.Decimal, result *domain.ItemValuation) error {
	if instance.Grading == nil || !instance.Grading.GradedPrice.IsPositive() {
		result.Suggested = decimal.Zero
		return nil
	}

	converted, err := table.FromRef(instance.Grading.GradedPrice, pctx.Currency)
	if err != nil {
		return fmt.Errorf("converting graded price: %w", err)
	}

	scaled := converted.Mul(scale)
	result.Graded = &scaled
	result.Suggested = scaled
	return nil
}

// valueUngraded prices an ungraded instance from the resolved sources.
func (c *Calculator) valueUngraded(ctx context.Context, table currency.Table, pctx domain.PricingContext, instance domain.CardInstance, scale decimal.Decimal, result *domain.ItemValuation) error {
	quotes, err := c.resolver.Resolve(ctx, instance)
	if err != nil {
		return fmt.Errorf("resolving prices for %s: %w", instance.Key(), err)
	}

	condition := instance.EffectiveCondition()

	scaleAndConvert := func(v *decimal.Decimal) (*decimal.Decimal, error) {
		if v == nil {
			return nil, nil
		}
		converted, err := table.FromRef(*v, pctx.Currency)
		if err != nil {
			return nil, err
		}
		scaled := converted.Mul(scale)
		return &scaled, nil
	}

	cmAvg, cmLowest := pricesource.CmValues(quotes, condition)

	if result.Tcg, err = scaleAndConvert(pricesource.TcgValue(quotes, condition)); err != nil {
		return err
	}
	if result.CmAvg, err = scaleAndConvert(cmAvg); err != nil {
		return err
	}
	if result.CmLowest, err = scaleAndConvert(cmLowest); err != nil {
		return err
	}

	candidates := suggestionCandidates(pctx.Source, result)
	if suggested := minPositive(candidates); suggested != nil {
		result.Suggested = *suggested
		return nil
	}

	// No usable market source: fall back to the generic aggregate quote.
	fallback, err := scaleAndConvert(pricesource.FallbackValue(quotes))
	if err != nil {
		return err
	}
	if fallback != nil {
		result.Suggested = *fallback
		return nil
	}

	result.Suggested = decimal.Zero
	return nil
}

// suggestionCandidates selects the per-source values the context allows.
func suggestionCandidates(source domain.MarketSource, result *domain.ItemValuation) []*decimal.Decimal {
	switch source {
	case domain.SourceTcg:
		return []*decimal.Decimal{result.Tcg}
	case domain.SourceCm:
		return []*decimal.Decimal{result.CmAvg, result.CmLowest}
	default:
		return []*decimal.Decimal{result.Tcg, result.CmAvg, result.CmLowest}
	}
}

// minPositive returns the smallest strictly positive candidate. Zero quotes
// are treated as absent, not as a reason to discard the other sources.
func minPositive(candidates []*decimal.Decimal) *decimal.Decimal {
	var best *decimal.Decimal
	for _, c := range candidates {
		if !domain.Positive(c) {
			continue
		}
		if best == nil || c.LessThan(*best) {
			best = c
		}
	}
	return best
}

// Totals folds item valuations into basket totals, weighting per-unit values
// by quantity. The fold is order-independent and has no item-to-item
// interaction, so subset totals come from filtering the slice first.
func Totals(items []domain.ItemValuation) domain.BasketTotals {
	return lo.Reduce(items, func(acc domain.BasketTotals, item domain.ItemValuation, _ int) domain.BasketTotals {
		qty := decimal.NewFromInt(int64(domain.ClampQuantity(item.Quantity)))

		acc.Tcg = addWeighted(acc.Tcg, item.Tcg, qty)
		acc.CmAvg = addWeighted(acc.CmAvg, item.CmAvg, qty)
		acc.CmLowest = addWeighted(acc.CmLowest, item.CmLowest, qty)
		acc.Graded = addWeighted(acc.Graded, item.Graded, qty)
		acc.Final = acc.Final.Add(item.Final.Mul(qty))
		acc.Items++
		return acc
	}, domain.BasketTotals{})
}

func addWeighted(acc decimal.Decimal, v *decimal.Decimal, qty decimal.Decimal) decimal.Decimal {
	if v == nil {
		return acc
	}
	return acc.Add(v.Mul(qty))
}
