package valuation

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/currency"
	"github.com/cardvault/ledger/internal/domain"
)

// BasketItem is one card in the operator's working set, stamped with the
// percentage it is currently valued at.
type BasketItem struct {
	Instance domain.CardInstance
	Percent  int
	Selected bool
}

// Basket is the mutable working set behind a buy/trade calculator screen.
// Every mutation path clamps quantity to a minimum of 1 and percentage to
// [MinPercent, MaxPercent]. Baskets are not safe for concurrent use; the UI
// serializes operator actions.
type Basket struct {
	defaultPercent int
	items          []BasketItem
}

// NewBasket creates a basket with the given default percentage.
func NewBasket(defaultPercent int) *Basket {
	return &Basket{defaultPercent: ClampPercent(defaultPercent)}
}

// DefaultPercent returns the basket's current default percentage.
func (b *Basket) DefaultPercent() int {
	return b.defaultPercent
}

// Items returns the basket's items in insertion order.
func (b *Basket) Items() []BasketItem {
	return b.items
}

// Add appends a card instance, stamped with the current default percentage
// and clamped to a valid quantity.
func (b *Basket) Add(instance domain.CardInstance) {
	instance.Quantity = domain.ClampQuantity(instance.Quantity)
	b.items = append(b.items, BasketItem{
		Instance: instance,
		Percent:  b.defaultPercent,
		Selected: true,
	})
}

// Remove deletes the item at index i.
func (b *Basket) Remove(i int) error {
	if i < 0 || i >= len(b.items) {
		return fmt.Errorf("basket index %d out of range", i)
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	return nil
}

// SetQuantity updates an item's quantity, clamped to a minimum of 1.
func (b *Basket) SetQuantity(i, quantity int) error {
	if i < 0 || i >= len(b.items) {
		return fmt.Errorf("basket index %d out of range", i)
	}
	b.items[i].Instance.Quantity = domain.ClampQuantity(quantity)
	return nil
}

// SetItemPercent gives one item its own percentage, clamped.
func (b *Basket) SetItemPercent(i, percent int) error {
	if i < 0 || i >= len(b.items) {
		return fmt.Errorf("basket index %d out of range", i)
	}
	b.items[i].Percent = ClampPercent(percent)
	return nil
}

// SetOverride sets or clears an item's operator-supplied absolute value.
func (b *Basket) SetOverride(i int, value *decimal.Decimal) error {
	if i < 0 || i >= len(b.items) {
		return fmt.Errorf("basket index %d out of range", i)
	}
	b.items[i].Instance.Override = value
	return nil
}

// SetSelected toggles an item's inclusion in the selected-subset totals.
func (b *Basket) SetSelected(i int, selected bool) error {
	if i < 0 || i >= len(b.items) {
		return fmt.Errorf("basket index %d out of range", i)
	}
	b.items[i].Selected = selected
	return nil
}

// SetDefaultPercent changes the default percentage. Items still at the old
// default are re-stamped to the new one; items with an item-specific
// percentage keep it.
func (b *Basket) SetDefaultPercent(percent int) {
	old := b.defaultPercent
	b.defaultPercent = ClampPercent(percent)
	for i := range b.items {
		if b.items[i].Percent == old {
			b.items[i].Percent = b.defaultPercent
		}
	}
}

// Value computes per-item valuations for the whole basket, each item at its
// own stamped percentage, plus totals for all items and the selected subset.
func (c *Calculator) Value(ctx context.Context, table currency.Table, pctx domain.PricingContext, b *Basket) ([]domain.ItemValuation, domain.BasketTotals, domain.BasketTotals, error) {
	valuations := make([]domain.ItemValuation, 0, len(b.items))
	var selected []domain.ItemValuation

	for _, item := range b.items {
		itemCtx := pctx
		itemCtx.Percent = item.Percent

		v, err := c.ValueItem(ctx, table, itemCtx, item.Instance)
		if err != nil {
			return nil, domain.BasketTotals{}, domain.BasketTotals{}, err
		}
		valuations = append(valuations, v)
		if item.Selected {
			selected = append(selected, v)
		}
	}

	return valuations, Totals(valuations), Totals(selected), nil
}

// SelectedItems returns only the items marked selected.
func (b *Basket) SelectedItems() []BasketItem {
	return lo.Filter(b.items, func(it BasketItem, _ int) bool { return it.Selected })
}
