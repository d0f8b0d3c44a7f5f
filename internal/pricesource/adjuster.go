package pricesource

import (
	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/domain"
)

// conditionRatios scales a near-mint price down to a condition tier.
// Ratios are monotonically non-increasing as the condition worsens.
var conditionRatios = map[domain.Condition]decimal.Decimal{
	domain.ConditionNM:  decimal.NewFromInt(1),
	domain.ConditionLP:  decimal.NewFromFloat(0.85),
	domain.ConditionMP:  decimal.NewFromFloat(0.70),
	domain.ConditionHP:  decimal.NewFromFloat(0.50),
	domain.ConditionDMG: decimal.NewFromFloat(0.30),
}

// ConditionRatio returns the price ratio for a condition tier, defaulting to
// the NM ratio for unknown tiers.
func ConditionRatio(c domain.Condition) decimal.Decimal {
	if ratio, ok := conditionRatios[c]; ok {
		return ratio
	}
	return conditionRatios[domain.ConditionNM]
}

// TcgValue returns the TCG-style quote adjusted for condition, or nil if the
// source has no usable data. The market price is preferred; the mid price is
// a stand-in when the market price is missing or zero.
func TcgValue(quotes domain.SourceQuotes, condition domain.Condition) *decimal.Decimal {
	if quotes.Tcg == nil {
		return nil
	}

	base := quotes.Tcg.Market
	if !base.IsPositive() {
		base = quotes.Tcg.Mid
	}
	if !base.IsPositive() {
		return nil
	}

	adjusted := base.Mul(ConditionRatio(condition))
	return &adjusted
}

// CmValues returns the CM-style average and lowest quotes for a near-mint
// card. CM-style sources publish no condition-adjusted pricing, so any
// condition below NM reports unavailable and pushes the caller toward a
// manual price.
func CmValues(quotes domain.SourceQuotes, condition domain.Condition) (avg, lowest *decimal.Decimal) {
	if quotes.Cm == nil || condition != domain.ConditionNM {
		return nil, nil
	}

	if a := firstPositive(quotes.Cm.Avg7, quotes.Cm.Avg30); a != nil {
		avg = a
	}
	if l := firstPositive(quotes.Cm.LowestNM, quotes.Cm.Lowest); l != nil {
		lowest = l
	}
	return avg, lowest
}

// FallbackValue returns the generic aggregate quote in the reference
// currency, or nil when the source has no data.
func FallbackValue(quotes domain.SourceQuotes) *decimal.Decimal {
	if quotes.Fallback == nil || !quotes.Fallback.Price.IsPositive() {
		return nil
	}
	price := quotes.Fallback.Price
	return &price
}

func firstPositive(candidates ...decimal.Decimal) *decimal.Decimal {
	for _, c := range candidates {
		if c.IsPositive() {
			return &c
		}
	}
	return nil
}
