package money

import (
	"math"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// LineInput is a priced quantity to be totalled.
type LineInput struct {
	UnitPriceCents int64
	Qty            int64
}

// Totals carries the computed amounts for a transaction, all in minor units.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// LineSubtotal multiplies unit price by quantity with overflow checking.
func LineSubtotal(unitPriceCents, qty int64) (int64, error) {
	if unitPriceCents < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	if qty <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if unitPriceCents != 0 && qty > math.MaxInt64/unitPriceCents {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "line subtotal overflows")
	}
	return unitPriceCents * qty, nil
}

// TaxFor computes the tax amount for a subtotal at the given percent rate,
// rounding halves up. A 50000 subtotal at 11% yields 5500.
func TaxFor(subtotalCents int64, taxRatePercent decimal.Decimal) (int64, error) {
	if subtotalCents < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must not be negative")
	}
	if taxRatePercent.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must not be negative")
	}
	tax := decimal.NewFromInt(subtotalCents).
		Mul(taxRatePercent).
		Div(oneHundred).
		Round(0)
	return tax.IntPart(), nil
}

// ComputeTotals sums the line subtotals and applies tax once on the sum, so
// per-line rounding can never drift from the receipt total.
func ComputeTotals(lines []LineInput, taxRatePercent decimal.Decimal) (*Totals, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	var subtotal int64
	for _, line := range lines {
		lineSubtotal, err := LineSubtotal(line.UnitPriceCents, line.Qty)
		if err != nil {
			return nil, err
		}
		if subtotal > math.MaxInt64-lineSubtotal {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal overflows")
		}
		subtotal += lineSubtotal
	}

	tax, err := TaxFor(subtotal, taxRatePercent)
	if err != nil {
		return nil, err
	}
	if subtotal > math.MaxInt64-tax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total overflows")
	}

	return &Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}, nil
}

// Change returns the cash change due, rejecting underpayment.
func Change(paidCents, totalCents int64) (int64, error) {
	if paidCents < totalCents {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "paid amount is less than total")
	}
	return paidCents - totalCents, nil
}
