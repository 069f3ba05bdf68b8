package ingest

import (
	"strings"

	"github.com/Bryant1523/notasapp/internal/amount"
	"github.com/Bryant1523/notasapp/internal/codes"
	"github.com/Bryant1523/notasapp/internal/models"
)

// BuildLines turns every data row of t into a Line. Row numbers count the
// header as row 1, the way the sheet shows them.
func BuildLines(t *Table, cols Columns) []models.Line {
	lines := make([]models.Line, 0, len(t.Rows))
	for i, row := range t.Rows {
		raw := cols.Value(row, FieldAmount)
		lines = append(lines, models.Line{
			Row:          i + 2,
			InvoiceID:    cols.Value(row, FieldInvoice),
			ClientCode:   cols.Value(row, FieldClient),
			ProductCode:  codes.Clean(cols.Value(row, FieldProduct)),
			Unit:         cols.Value(row, FieldUnit),
			InvoiceClass: strings.ToUpper(cols.Value(row, FieldInvoiceClass)),
			RawAmount:    raw,
			Amount:       amount.ParseNull(raw),
			Cells:        append([]string(nil), row...),
		})
	}
	return lines
}

// Distinct returns the distinct non-blank values of field f, in first-seen order.
func Distinct(t *Table, cols Columns, f Field) []string {
	if !cols.Has(f) {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		v := cols.Value(row, f)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
