package allocation

import (
	"github.com/Bryant1523/notasapp/internal/models"
)

// Aggregate groups lines by invoice id. Only lines above the minimum amount
// count, and invoices without such lines are left out. The output keeps the
// order in which invoices first qualify.
func Aggregate(lines []models.Line) []models.InvoiceAggregate {
	index := make(map[string]int)
	var out []models.InvoiceAggregate

	for _, l := range lines {
		if !l.HasAmount() {
			continue
		}
		i, ok := index[l.InvoiceID]
		if !ok {
			index[l.InvoiceID] = len(out)
			out = append(out, models.InvoiceAggregate{
				InvoiceID:   l.InvoiceID,
				ClientCode:  l.ClientCode,
				ProductCode: l.ProductCode,
				Unit:        l.Unit,
				TotalAmount: l.Amount.Decimal,
			})
			continue
		}
		out[i].TotalAmount = out[i].TotalAmount.Add(l.Amount.Decimal)
	}
	return out
}
