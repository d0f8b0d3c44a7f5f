package valuation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cardvault/ledger/internal/currency"
	"github.com/cardvault/ledger/internal/domain"
)

type mockResolver struct {
	quotes map[string]domain.SourceQuotes
}

func (m *mockResolver) Resolve(_ context.Context, instance domain.CardInstance) (domain.SourceQuotes, error) {
	return m.quotes[instance.Key()], nil
}

func usdOnly() currency.Table {
	return currency.NewTable(nil)
}

func usdContext(percent int) domain.PricingContext {
	return domain.PricingContext{Percent: percent, Currency: currency.Ref}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSuggestedIsMinOfPositiveSources(t *testing.T) {
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"card-1": {
			Tcg: &domain.TcgQuote{Market: dec("10")},
			Cm:  &domain.CmQuote{Avg7: dec("8"), LowestNM: dec("12")},
		},
	}}
	calc := NewCalculator(resolver)

	v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(100), domain.CardInstance{CardID: "card-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Suggested.Equal(dec("8")) {
		t.Errorf("suggested = %s, want min source 8", v.Suggested)
	}
}

func TestSuggestedOrderIndependent(t *testing.T) {
	// Same three sources, values permuted: the min must not depend on
	// which source happens to carry the smallest quote.
	permutations := []domain.SourceQuotes{
		{Tcg: &domain.TcgQuote{Market: dec("5")}, Cm: &domain.CmQuote{Avg7: dec("7"), LowestNM: dec("9")}},
		{Tcg: &domain.TcgQuote{Market: dec("7")}, Cm: &domain.CmQuote{Avg7: dec("9"), LowestNM: dec("5")}},
		{Tcg: &domain.TcgQuote{Market: dec("9")}, Cm: &domain.CmQuote{Avg7: dec("5"), LowestNM: dec("7")}},
	}

	for i, quotes := range permutations {
		resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{"c": quotes}}
		calc := NewCalculator(resolver)

		v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(100), domain.CardInstance{CardID: "c"})
		if err != nil {
			t.Fatalf("permutation %d: unexpected error: %v", i, err)
		}
		if !v.Suggested.Equal(dec("5")) {
			t.Errorf("permutation %d: suggested = %s, want 5", i, v.Suggested)
		}
	}
}

func TestSuggestedSkipsZeroSources(t *testing.T) {
	// A zero quote among positive ones is treated as absent: excluded from
	// the min, and no trigger for the generic fallback.
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {
			Tcg:      &domain.TcgQuote{Market: decimal.Zero},
			Cm:       &domain.CmQuote{Avg7: dec("6")},
			Fallback: &domain.FallbackQuote{Price: dec("2")},
		},
	}}
	calc := NewCalculator(resolver)

	v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(100), domain.CardInstance{CardID: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Suggested.Equal(dec("6")) {
		t.Errorf("suggested = %s, want 6 (zero source skipped, fallback not used)", v.Suggested)
	}
}

func TestSuggestedFallsBackToGenericSource(t *testing.T) {
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {Fallback: &domain.FallbackQuote{Price: dec("3.5")}},
	}}
	calc := NewCalculator(resolver)

	v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(100), domain.CardInstance{CardID: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Suggested.Equal(dec("3.5")) {
		t.Errorf("suggested = %s, want fallback 3.5", v.Suggested)
	}
}

func TestNoSourcesSuggestsZeroNotError(t *testing.T) {
	calc := NewCalculator(&mockResolver{quotes: map[string]domain.SourceQuotes{}})

	v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(100), domain.CardInstance{CardID: "c"})
	if err != nil {
		t.Fatalf("absence of price data must not be an error, got %v", err)
	}
	if !v.Suggested.IsZero() {
		t.Errorf("suggested = %s, want 0", v.Suggested)
	}
	if !v.NeedsManualPrice {
		t.Error("item with no price data should surface as needing a manual price")
	}
}

func TestCmOnlyLightlyPlayedNeedsManualPrice(t *testing.T) {
	// CM-style sources publish NM data only, so an LP card priced only by
	// CM must suggest zero and ask for a manual price, not guess.
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {Cm: &domain.CmQuote{Avg7: dec("4"), LowestNM: dec("3")}},
	}}
	calc := NewCalculator(resolver)

	instance := domain.CardInstance{CardID: "c", Condition: domain.ConditionLP}
	v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(100), instance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Suggested.IsZero() {
		t.Errorf("suggested = %s, want 0 (CM has no LP data)", v.Suggested)
	}
	if !v.NeedsManualPrice {
		t.Error("expected NeedsManualPrice for LP card with CM-only pricing")
	}
}

func TestScalingIsLinear(t *testing.T) {
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {Tcg: &domain.TcgQuote{Market: dec("20")}},
	}}
	calc := NewCalculator(resolver)

	base, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(100), domain.CardInstance{CardID: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, pct := range []int{40, 55, 70, 100, 120} {
		v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(pct), domain.CardInstance{CardID: "c"})
		if err != nil {
			t.Fatalf("pct %d: unexpected error: %v", pct, err)
		}
		want := base.Suggested.Mul(dec("0.01").Mul(decimal.NewFromInt(int64(pct))))
		if !v.Suggested.Equal(want) {
			t.Errorf("suggested(%d) = %s, want %s", pct, v.Suggested, want)
		}
	}
}

func TestPerSourceValuesAreScaled(t *testing.T) {
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {
			Tcg: &domain.TcgQuote{Market: dec("10")},
			Cm:  &domain.CmQuote{Avg7: dec("8"), LowestNM: dec("6")},
		},
	}}
	calc := NewCalculator(resolver)

	v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(70), domain.CardInstance{CardID: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Tcg == nil || !v.Tcg.Equal(dec("7")) {
		t.Errorf("tcg = %v, want 7 (10 at 70%%)", v.Tcg)
	}
	if v.CmAvg == nil || !v.CmAvg.Equal(dec("5.6")) {
		t.Errorf("cmAvg = %v, want 5.6", v.CmAvg)
	}
	if v.CmLowest == nil || !v.CmLowest.Equal(dec("4.2")) {
		t.Errorf("cmLowest = %v, want 4.2", v.CmLowest)
	}
	if !v.Suggested.Equal(dec("4.2")) {
		t.Errorf("suggested = %s, want 4.2", v.Suggested)
	}
}

func TestOverrideIgnoresPercent(t *testing.T) {
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {Tcg: &domain.TcgQuote{Market: dec("10")}},
	}}
	calc := NewCalculator(resolver)

	override := dec("25")
	instance := domain.CardInstance{CardID: "c", Override: &override}

	for _, pct := range []int{40, 70, 120} {
		v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(pct), instance)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !v.Final.Equal(override) {
			t.Errorf("final at %d%% = %s, want override 25 verbatim", pct, v.Final)
		}
	}
}

func TestFinalEqualsSuggestedWithoutOverride(t *testing.T) {
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {Tcg: &domain.TcgQuote{Market: dec("10")}},
	}}
	calc := NewCalculator(resolver)

	v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(70), domain.CardInstance{CardID: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Final.Equal(v.Suggested) {
		t.Errorf("final = %s, suggested = %s, want equal", v.Final, v.Suggested)
	}
}

func TestGradedUsesGradedPriceOnly(t *testing.T) {
	// The resolver carries quotes for the same card id, but a graded
	// instance must never read them.
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {Tcg: &domain.TcgQuote{Market: dec("10")}},
	}}
	calc := NewCalculator(resolver)

	instance := domain.CardInstance{
		CardID:   "c",
		IsGraded: true,
		Grading:  &domain.Grading{Company: "PSA", Grade: "10", GradedPrice: dec("200")},
	}

	v, err := calc.ValueItem(context.Background(), usdOnly(), usdContext(100), instance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Suggested.Equal(dec("200")) {
		t.Errorf("suggested = %s, want graded price 200", v.Suggested)
	}
	if v.Tcg != nil {
		t.Error("graded item must not expose market source values")
	}
}

func TestGradedPriceConvertedFromRef(t *testing.T) {
	table := currency.NewTable(map[string]decimal.Decimal{"EUR": dec("0.9")})
	calc := NewCalculator(&mockResolver{})

	instance := domain.CardInstance{
		CardID:   "c",
		IsGraded: true,
		Grading:  &domain.Grading{Company: "BGS", Grade: "9", GradedPrice: dec("100")},
	}

	pctx := domain.PricingContext{Percent: 100, Currency: "EUR"}
	v, err := calc.ValueItem(context.Background(), table, pctx, instance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Suggested.Equal(dec("90")) {
		t.Errorf("suggested = %s, want 90 EUR", v.Suggested)
	}
}

func TestGradedPriceMissingRateFails(t *testing.T) {
	calc := NewCalculator(&mockResolver{})

	instance := domain.CardInstance{
		CardID:   "c",
		IsGraded: true,
		Grading:  &domain.Grading{Company: "PSA", Grade: "9", GradedPrice: dec("100")},
	}

	pctx := domain.PricingContext{Percent: 100, Currency: "CHF"}
	if _, err := calc.ValueItem(context.Background(), usdOnly(), pctx, instance); err == nil {
		t.Error("expected missing-rate error, got nil")
	}
}

func TestSourcePreferenceRestrictsSuggestion(t *testing.T) {
	resolver := &mockResolver{quotes: map[string]domain.SourceQuotes{
		"c": {
			Tcg: &domain.TcgQuote{Market: dec("10")},
			Cm:  &domain.CmQuote{Avg7: dec("6")},
		},
	}}
	calc := NewCalculator(resolver)

	pctx := usdContext(100)
	pctx.Source = domain.SourceTcg

	v, err := calc.ValueItem(context.Background(), usdOnly(), pctx, domain.CardInstance{CardID: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Suggested.Equal(dec("10")) {
		t.Errorf("suggested = %s, want tcg-only 10", v.Suggested)
	}
}

func TestPercentClamping(t *testing.T) {
	if ClampPercent(10) != MinPercent {
		t.Errorf("ClampPercent(10) = %d, want %d", ClampPercent(10), MinPercent)
	}
	if ClampPercent(500) != MaxPercent {
		t.Errorf("ClampPercent(500) = %d, want %d", ClampPercent(500), MaxPercent)
	}
	if ClampPercent(70) != 70 {
		t.Errorf("ClampPercent(70) = %d, want 70", ClampPercent(70))
	}
}

func TestTotalsWeightedByQuantity(t *testing.T) {
	tcg := dec("2")
	items := []domain.ItemValuation{
		{Tcg: &tcg, Final: dec("2"), Quantity: 3},
		{Final: dec("5"), Quantity: 1},
	}

	totals := Totals(items)
	if !totals.Tcg.Equal(dec("6")) {
		t.Errorf("tcg total = %s, want 6", totals.Tcg)
	}
	if !totals.Final.Equal(dec("11")) {
		t.Errorf("final total = %s, want 11", totals.Final)
	}
	if totals.Items != 2 {
		t.Errorf("items = %d, want 2", totals.Items)
	}
}

func TestTotalsSubsetByFiltering(t *testing.T) {
	items := []domain.ItemValuation{
		{Final: dec("2"), Quantity: 1},
		{Final: dec("3"), Quantity: 1},
		{Final: dec("7"), Quantity: 1},
	}

	all := Totals(items)
	subset := Totals(items[1:])

	if !all.Final.Equal(dec("12")) {
		t.Errorf("all = %s, want 12", all.Final)
	}
	if !subset.Final.Equal(dec("10")) {
		t.Errorf("subset = %s, want 10", subset.Final)
	}
}
