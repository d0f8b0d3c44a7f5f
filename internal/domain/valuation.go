package domain

import "github.com/shopspring/decimal"

// MarketSource selects which price-source family a valuation may draw from.
type MarketSource string

const (
	// SourceAny considers every available source and quotes the most
	// conservative of them.
	SourceAny MarketSource = ""
	SourceTcg MarketSource = "tcg"
	SourceCm  MarketSource = "cm"
)

// PricingContext carries the operator's valuation settings. It is an explicit
// value threaded through every calculator call, never package state, so
// concurrent valuations for different owners or currencies cannot interfere.
type PricingContext struct {
	// Percent is the pay/offer percentage of computed market value,
	// clamped to [40, 120].
	Percent int
	// Currency is the target display currency.
	Currency string
	// Source restricts which price sources feed the suggestion.
	Source MarketSource
}

// ItemValuation is the transient per-item valuation result. Per-source values
// and Suggested are already scaled by the percentage and converted to the
// target currency; Final carries the operator override verbatim when one is
// set.
type ItemValuation struct {
	Tcg      *decimal.Decimal `json:"tcg,omitempty"`
	CmAvg    *decimal.Decimal `json:"cmAvg,omitempty"`
	CmLowest *decimal.Decimal `json:"cmLowest,omitempty"`
	Graded   *decimal.Decimal `json:"graded,omitempty"`

	Suggested decimal.Decimal `json:"suggested"`
	Final     decimal.Decimal `json:"final"`

	// NeedsManualPrice is set when no source produced a positive quote and
	// no override was supplied. An expected state: collectible pricing data
	// is frequently incomplete.
	NeedsManualPrice bool `json:"needsManualPrice"`

	Quantity int `json:"quantity"`
	Percent  int `json:"percent"`
}

// BasketTotals aggregates per-source and final values over a list of items,
// weighted by quantity. Totals are a pure fold: filtering the item list first
// yields the totals for any selected subset.
type BasketTotals struct {
	Tcg      decimal.Decimal `json:"tcg"`
	CmAvg    decimal.Decimal `json:"cmAvg"`
	CmLowest decimal.Decimal `json:"cmLowest"`
	Graded   decimal.Decimal `json:"graded"`
	Final    decimal.Decimal `json:"final"`
	Items    int             `json:"items"`
}
