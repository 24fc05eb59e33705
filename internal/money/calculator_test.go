package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
)

func TestComputeTotals(t *testing.T) {
	t.Parallel()

	lines := []LineInput{
		{UnitPriceCents: 15000, Qty: 2},
		{UnitPriceCents: 20000, Qty: 1},
	}
	rate := decimal.RequireFromString("11")

	totals, err := ComputeTotals(lines, rate)
	if err != nil {
		t.Fatalf("compute totals: %v", err)
	}
	if totals.SubtotalCents != 50000 {
		t.Fatalf("expected subtotal 50000, got %d", totals.SubtotalCents)
	}
	if totals.TaxCents != 5500 {
		t.Fatalf("expected tax 5500, got %d", totals.TaxCents)
	}
	if totals.TotalCents != 55500 {
		t.Fatalf("expected total 55500, got %d", totals.TotalCents)
	}
}

func TestTaxForRoundsHalvesUp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		subtotal int64
		rate     string
		want     int64
	}{
		{50, "11", 6},     // 5.5 rounds up
		{45, "10", 5},     // 4.5 rounds up
		{44, "10", 4},     // 4.4 rounds down
		{100, "0", 0},     // zero rate
		{333, "7.5", 25},  // 24.975 rounds up
		{1, "0.5", 0},     // 0.005 rounds down
		{99999, "11", 11000}, // 10999.89 rounds up
	}
	for _, tc := range cases {
		rate := decimal.RequireFromString(tc.rate)
		got, err := TaxFor(tc.subtotal, rate)
		if err != nil {
			t.Fatalf("tax for %d at %s: %v", tc.subtotal, tc.rate, err)
		}
		if got != tc.want {
			t.Errorf("tax for %d at %s%%: expected %d, got %d", tc.subtotal, tc.rate, tc.want, got)
		}
	}
}

func TestTaxAppliedOnceOnSum(t *testing.T) {
	t.Parallel()

	// Two lines whose per-line tax would each round up. Taxing the sum once
	// must not accumulate the per-line rounding.
	lines := []LineInput{
		{UnitPriceCents: 5, Qty: 1},
		{UnitPriceCents: 5, Qty: 1},
	}
	rate := decimal.RequireFromString("10")

	totals, err := ComputeTotals(lines, rate)
	if err != nil {
		t.Fatalf("compute totals: %v", err)
	}
	// 10 * 10% = 1 exactly; per-line would give 0.5 + 0.5 rounded to 1 + 1 = 2.
	if totals.TaxCents != 1 {
		t.Fatalf("expected tax 1, got %d", totals.TaxCents)
	}
}

func TestLineSubtotalValidation(t *testing.T) {
	t.Parallel()

	if _, err := LineSubtotal(100, 0); err == nil {
		t.Fatal("expected error for zero qty")
	}
	if _, err := LineSubtotal(-1, 1); err == nil {
		t.Fatal("expected error for negative price")
	}
	if _, err := LineSubtotal(math.MaxInt64, 2); err == nil {
		t.Fatal("expected overflow error")
	}
	if got, err := LineSubtotal(12500, 4); err != nil || got != 50000 {
		t.Fatalf("expected 50000, got %d (%v)", got, err)
	}
}

func TestComputeTotalsRejectsEmptyAndNegativeRate(t *testing.T) {
	t.Parallel()

	if _, err := ComputeTotals(nil, decimal.Zero); err == nil {
		t.Fatal("expected error for empty lines")
	}

	lines := []LineInput{{UnitPriceCents: 100, Qty: 1}}
	_, err := ComputeTotals(lines, decimal.RequireFromString("-1"))
	if err == nil {
		t.Fatal("expected error for negative rate")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChange(t *testing.T) {
	t.Parallel()

	change, err := Change(60000, 55500)
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if change != 4500 {
		t.Fatalf("expected change 4500, got %d", change)
	}

	if _, err := Change(55000, 55500); err == nil {
		t.Fatal("expected underpayment error")
	}
	if change, err := Change(55500, 55500); err != nil || change != 0 {
		t.Fatalf("expected exact payment to yield zero change, got %d (%v)", change, err)
	}
}
