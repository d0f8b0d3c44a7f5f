package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func testTable() Table {
	return NewTable(map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(0.92),
		"GBP": decimal.NewFromFloat(0.79),
		"JPY": decimal.NewFromFloat(149.5),
	})
}

func TestConvertFromRef(t *testing.T) {
	table := testTable()

	got, err := table.Convert(decimal.NewFromInt(100), Ref, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(92)) {
		t.Errorf("100 USD = %s EUR, want 92", got)
	}
}

func TestConvertRefIdentityIsExact(t *testing.T) {
	table := testTable()

	amount := decimal.RequireFromString("33.333333333333")
	got, err := table.Convert(amount, Ref, Ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Must be the untouched input, not the result of a 1.0 multiply.
	if got.String() != amount.String() {
		t.Errorf("USD->USD changed the amount: %s != %s", got, amount)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	table := testTable()
	tolerance := decimal.RequireFromString("0.0000001")

	amount := decimal.NewFromFloat(57.31)
	eur, err := table.Convert(amount, "GBP", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := table.Convert(eur, "EUR", "GBP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if back.Sub(amount).Abs().GreaterThan(tolerance) {
		t.Errorf("round trip GBP->EUR->GBP = %s, want %s", back, amount)
	}
}

func TestConvertMissingRate(t *testing.T) {
	table := testTable()

	_, err := table.Convert(decimal.NewFromInt(10), Ref, "CHF")
	if !errors.Is(err, ErrMissingRate) {
		t.Errorf("expected ErrMissingRate, got %v", err)
	}

	_, err = table.Rate("CHF")
	if !errors.Is(err, ErrMissingRate) {
		t.Errorf("Rate: expected ErrMissingRate, got %v", err)
	}
}

func TestConvertZeroRateIsMissing(t *testing.T) {
	table := NewTable(map[string]decimal.Decimal{
		"XXX": decimal.Zero,
	})

	_, err := table.Convert(decimal.NewFromInt(10), Ref, "XXX")
	if !errors.Is(err, ErrMissingRate) {
		t.Errorf("zero rate should behave as missing, got %v", err)
	}
}

func TestTableHas(t *testing.T) {
	table := testTable()
	if !table.Has(Ref) {
		t.Error("reference currency should always be present")
	}
	if !table.Has("EUR") {
		t.Error("EUR should be present")
	}
	if table.Has("CHF") {
		t.Error("CHF should be absent")
	}
}
