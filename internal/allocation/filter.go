package allocation

import (
	"strings"

	"github.com/Bryant1523/notasapp/internal/codes"
	"github.com/Bryant1523/notasapp/internal/models"
)

// DefaultUnit is used when no line of an invoice names its unit.
const DefaultUnit = "UN"

func filterClasses(lines []models.Line, allowed []string) ([]models.Line, error) {
	if len(allowed) == 0 {
		return lines, nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, c := range allowed {
		set[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}

	var out []models.Line
	for _, l := range lines {
		if _, ok := set[l.InvoiceClass]; ok {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil, &FilterError{Err: ErrNoMatchingClass, Values: allowed}
	}
	return out, nil
}

func filterClients(lines []models.Line, clients []string) ([]models.Line, error) {
	set := codes.Set(clients)
	var out []models.Line
	for _, l := range lines {
		if _, ok := set[codes.Clean(l.ClientCode)]; ok {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil, &FilterError{Err: ErrNoMatchingClient, Values: clients}
	}
	return out, nil
}

// filterProducts keeps every line of each invoice that has at least one line
// for a requested product, so the whole invoice balance stays available.
// It also returns, per invoice, the unit of its first matching line.
func filterProducts(lines []models.Line, products []string) ([]models.Line, map[string]string, error) {
	if len(products) == 0 {
		return lines, nil, nil
	}
	set := codes.Set(products)

	units := make(map[string]string)
	for _, l := range lines {
		if _, ok := set[codes.Clean(l.ProductCode)]; !ok {
			continue
		}
		if _, ok := units[l.InvoiceID]; !ok {
			units[l.InvoiceID] = l.Unit
		}
	}
	if len(units) == 0 {
		return nil, nil, &FilterError{Err: ErrNoMatchingProduct, Values: products}
	}

	var out []models.Line
	for _, l := range lines {
		if _, ok := units[l.InvoiceID]; ok {
			out = append(out, l)
		}
	}
	return out, units, nil
}
