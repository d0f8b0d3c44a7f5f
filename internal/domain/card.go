package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Condition is a card condition tier, from near mint down to damaged.
type Condition string

const (
	ConditionNM  Condition = "NM"
	ConditionLP  Condition = "LP"
	ConditionMP  Condition = "MP"
	ConditionHP  Condition = "HP"
	ConditionDMG Condition = "DMG"
)

// Valid reports whether c is a known condition tier.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNM, ConditionLP, ConditionMP, ConditionHP, ConditionDMG:
		return true
	}
	return false
}

// Grading holds the slab details of a professionally graded card.
// GradedPrice is always stored in the reference currency (USD).
type Grading struct {
	Company     string          `json:"company"`
	Grade       string          `json:"grade"`
	GradedPrice decimal.Decimal `json:"gradedPrice"`
}

// CardInstance is a single owned or tradeable unit of a card.
// A graded instance never reads Prices; an ungraded instance never reads Grading.
type CardInstance struct {
	CardID    string       `json:"cardId"`
	Name      string       `json:"name"`
	Set       string       `json:"set"`
	Number    string       `json:"number"`
	Condition Condition    `json:"condition"`
	Quantity  int          `json:"quantity"`
	IsGraded  bool         `json:"isGraded"`
	Grading   *Grading     `json:"grading,omitempty"`
	Prices    SourceQuotes `json:"prices"`

	// Override is an operator-supplied absolute value. When set it is used
	// verbatim, regardless of any computed value or percentage.
	Override *decimal.Decimal `json:"override,omitempty"`
}

// Key returns the catalog id, or a composite of name/set/number when the
// card has no catalog entry.
func (c CardInstance) Key() string {
	if c.CardID != "" {
		return c.CardID
	}
	return fmt.Sprintf("%s|%s|%s", c.Name, c.Set, c.Number)
}

// EffectiveCondition returns the instance's condition, defaulting to NM.
func (c CardInstance) EffectiveCondition() Condition {
	if c.Condition == "" {
		return ConditionNM
	}
	return c.Condition
}

// EffectiveQuantity returns the quantity clamped to a minimum of 1.
func (c CardInstance) EffectiveQuantity() int {
	return ClampQuantity(c.Quantity)
}

// ClampQuantity clamps a quantity to a minimum of 1.
func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
