package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Bryant1523/notasapp/internal/models"
)

const centPlaces = 2

var hundred = decimal.NewFromInt(100)

// Assign splits target across the chosen invoices, in the order the selector
// returned them. The assigned amounts always add up to target exactly.
func Assign(chosen []models.InvoiceAggregate, target, covered decimal.Decimal, mode models.AssignmentMode) ([]models.AllocationRow, error) {
	if !target.IsPositive() {
		return nil, ErrNonPositiveTarget
	}
	if len(chosen) == 0 || covered.IsZero() {
		return nil, ErrZeroTotalSelected
	}

	var assigned []decimal.Decimal
	switch mode {
	case models.ModeProrate:
		assigned = prorate(chosen, target, covered)
	case models.ModeTruncate:
		assigned = truncate(chosen, target)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	rows := make([]models.AllocationRow, len(chosen))
	for i, a := range chosen {
		rows[i] = models.AllocationRow{
			InvoiceID:      a.InvoiceID,
			ClientCode:     a.ClientCode,
			ProductCode:    a.ProductCode,
			Unit:           a.Unit,
			TotalAmount:    a.TotalAmount,
			AssignedAmount: assigned[i],
			WeightPct:      assigned[i].Div(target).Mul(hundred),
		}
	}
	return rows, nil
}

// prorate scales every total by target/covered at cent precision and puts
// the rounding remainder on the last invoice.
func prorate(chosen []models.InvoiceAggregate, target, covered decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(chosen))
	if len(chosen) == 1 && chosen[0].TotalAmount.GreaterThanOrEqual(target) {
		out[0] = target
		return out
	}

	sum := decimal.Zero
	for i, a := range chosen {
		out[i] = a.TotalAmount.Mul(target).Div(covered).Round(centPlaces)
		sum = sum.Add(out[i])
	}

	last := len(out) - 1
	out[last] = out[last].Add(target.Sub(sum)).Round(centPlaces)
	return out
}

// truncate keeps every invoice total but the last, which closes the gap.
func truncate(chosen []models.InvoiceAggregate, target decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(chosen))
	preceding := decimal.Zero
	last := len(chosen) - 1
	for i, a := range chosen[:last] {
		out[i] = a.TotalAmount
		preceding = preceding.Add(a.TotalAmount)
	}
	out[last] = decimal.Max(decimal.Zero, target.Sub(preceding))
	return out
}
