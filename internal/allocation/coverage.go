package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Bryant1523/notasapp/internal/models"
)

// Coverage is the outcome of a successful selection.
type Coverage struct {
	Chosen    []models.InvoiceAggregate
	Covered   decimal.Decimal // sum of the chosen totals
	Available decimal.Decimal // sum of every aggregate in the pool
}

// SelectCoverage picks the invoices a target amount is charged against.
//
// If any single invoice covers the target, the smallest such invoice is
// chosen (first one wins ties). Otherwise invoices are taken largest first
// until the running sum reaches the target. This is a greedy heuristic and
// does not minimize the invoice count or the excess.
func SelectCoverage(target decimal.Decimal, aggregates []models.InvoiceAggregate) (Coverage, error) {
	available := decimal.Zero
	for _, a := range aggregates {
		available = available.Add(a.TotalAmount)
	}

	best := -1
	for i, a := range aggregates {
		if a.TotalAmount.LessThan(target) {
			continue
		}
		if best < 0 || a.TotalAmount.LessThan(aggregates[best].TotalAmount) {
			best = i
		}
	}
	if best >= 0 {
		chosen := aggregates[best]
		return Coverage{
			Chosen:    []models.InvoiceAggregate{chosen},
			Covered:   chosen.TotalAmount,
			Available: available,
		}, nil
	}

	sorted := append([]models.InvoiceAggregate(nil), aggregates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalAmount.GreaterThan(sorted[j].TotalAmount)
	})

	var chosen []models.InvoiceAggregate
	covered := decimal.Zero
	for _, a := range sorted {
		if covered.GreaterThanOrEqual(target) {
			break
		}
		chosen = append(chosen, a)
		covered = covered.Add(a.TotalAmount)
	}

	if covered.LessThan(target) {
		return Coverage{}, &CoverageError{
			Target:    target,
			Available: available,
			Shortfall: target.Sub(available),
		}
	}
	if covered.IsZero() {
		return Coverage{}, ErrZeroTotalSelected
	}

	return Coverage{Chosen: chosen, Covered: covered, Available: available}, nil
}
