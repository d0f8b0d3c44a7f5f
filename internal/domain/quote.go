package domain

import "github.com/shopspring/decimal"

// TcgQuote holds a TCGplayer-style market quote for the near-mint printing.
// Prices are in the source's listing currency (USD).
type TcgQuote struct {
	Market decimal.Decimal `json:"market"`
	Mid    decimal.Decimal `json:"mid"`
}

// CmQuote holds a Cardmarket-style quote. Cardmarket publishes near-mint data
// only; none of these fields are condition-adjusted.
type CmQuote struct {
	Lowest   decimal.Decimal `json:"lowest"`
	Avg7     decimal.Decimal `json:"avg7"`
	Avg30    decimal.Decimal `json:"avg30"`
	LowestNM decimal.Decimal `json:"lowestNm"`
}

// FallbackQuote is a single aggregate price from the generic source, already
// expressed in the reference currency (USD).
type FallbackQuote struct {
	Price decimal.Decimal `json:"price"`
}

// SourceQuotes is the set of raw quotes known for a card. Every source is
// optional; a nil pointer means the source had no data for the card, which is
// an expected state, not an error.
type SourceQuotes struct {
	Tcg      *TcgQuote      `json:"tcg,omitempty"`
	Cm       *CmQuote       `json:"cm,omitempty"`
	Fallback *FallbackQuote `json:"fallback,omitempty"`
}

// Empty reports whether no source has any data.
func (q SourceQuotes) Empty() bool {
	return q.Tcg == nil && q.Cm == nil && q.Fallback == nil
}
