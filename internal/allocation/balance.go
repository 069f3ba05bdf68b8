package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/Bryant1523/notasapp/internal/models"
)

// ConsumedByInvoice sums the assigned amount of every row of every ticket,
// per invoice id. The result is derived, so removing a ticket from the list
// restores what it consumed.
func ConsumedByInvoice(tickets []models.Ticket) map[string]decimal.Decimal {
	consumed := make(map[string]decimal.Decimal)
	for _, t := range tickets {
		for _, row := range t.Rows {
			if !row.AssignedAmount.IsPositive() {
				continue
			}
			consumed[row.InvoiceID] = consumed[row.InvoiceID].Add(row.AssignedAmount)
		}
	}
	return consumed
}

// ApplyConsumed returns a copy of lines where each consumed invoice has its
// committed amount subtracted from its lines in input order. Lines that end
// at or below the minimum amount are dropped; a partially consumed line keeps
// its positive remainder. The input slice is left untouched.
func ApplyConsumed(lines []models.Line, consumed map[string]decimal.Decimal) []models.Line {
	if len(consumed) == 0 {
		return append([]models.Line(nil), lines...)
	}

	remaining := make(map[string]decimal.Decimal, len(consumed))
	for id, amt := range consumed {
		remaining[id] = amt
	}

	out := make([]models.Line, 0, len(lines))
	for _, l := range lines {
		left, ok := remaining[l.InvoiceID]
		if !ok || !l.Amount.Valid {
			out = append(out, l)
			continue
		}

		if left.IsPositive() {
			if l.Amount.Decimal.GreaterThan(left) {
				l.Amount = decimal.NewNullDecimal(l.Amount.Decimal.Sub(left))
				left = decimal.Zero
			} else {
				left = left.Sub(l.Amount.Decimal)
				l.Amount = decimal.NewNullDecimal(decimal.Zero)
			}
			remaining[l.InvoiceID] = left
		}

		if l.HasAmount() {
			out = append(out, l)
		}
	}
	return out
}
