package allocation

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Bryant1523/notasapp/internal/codes"
	"github.com/Bryant1523/notasapp/internal/models"
)

// Document numbers are at least seven digits long; shorter numbers in a row
// are quantities, dates or codes.
var documentNumber = regexp.MustCompile(`\d{7,}`)

// ExcludeCrossReferenced drops every line of an invoice that another
// invoice's row cites, e.g. an original invoice already adjusted by a
// correction note present in the same pool. All cells are scanned, and the
// decision is taken over the whole pool before any line is dropped.
// It returns the kept lines and the sorted excluded invoice ids.
func ExcludeCrossReferenced(lines []models.Line) ([]models.Line, []string) {
	byKey := make(map[string][]string)
	seen := make(map[string]struct{})
	for _, l := range lines {
		id := strings.TrimSpace(l.InvoiceID)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		key := codes.InvoiceKey(id)
		byKey[key] = append(byKey[key], id)
	}

	excluded := make(map[string]struct{})
	for _, l := range lines {
		own := strings.TrimSpace(l.InvoiceID)
		for _, cell := range l.Cells {
			for _, token := range documentNumber.FindAllString(cell, -1) {
				for _, id := range byKey[codes.Clean(token)] {
					if id != own {
						excluded[id] = struct{}{}
					}
				}
			}
		}
	}

	if len(excluded) == 0 {
		return lines, nil
	}

	kept := make([]models.Line, 0, len(lines))
	for _, l := range lines {
		if _, ok := excluded[strings.TrimSpace(l.InvoiceID)]; !ok {
			kept = append(kept, l)
		}
	}

	ids := make([]string, 0, len(excluded))
	for id := range excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return kept, ids
}
