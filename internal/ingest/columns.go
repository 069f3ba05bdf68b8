package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Field is a column the allocation needs, independent of header wording.
type Field string

const (
	FieldInvoice      Field = "invoice"
	FieldClient       Field = "client"
	FieldAmount       Field = "amount"
	FieldProduct      Field = "product"
	FieldUnit         Field = "unit"
	FieldInvoiceClass Field = "invoice_class"
	FieldSalesOrg     Field = "sales_org"
	FieldCompany      Field = "company"
)

var requiredFields = []Field{FieldInvoice, FieldClient, FieldAmount}

var ErrMissingColumn = errors.New("required column not found")

type ColumnError struct {
	Field Field
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn, e.Field)
}

func (e *ColumnError) Unwrap() error {
	return ErrMissingColumn
}

// Rule matches a normalized header. Equals and Contains are alternatives;
// every Requires entry and no Excludes entry must appear in the header.
type Rule struct {
	Equals   []string `yaml:"equals,omitempty" json:"equals,omitempty"`
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"`
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`
	Excludes []string `yaml:"excludes,omitempty" json:"excludes,omitempty"`
}

func (r Rule) match(header string) bool {
	for _, x := range r.Excludes {
		if strings.Contains(header, x) {
			return false
		}
	}
	for _, req := range r.Requires {
		if !strings.Contains(header, req) {
			return false
		}
	}
	if len(r.Equals) == 0 && len(r.Contains) == 0 {
		return len(r.Requires) > 0
	}
	for _, eq := range r.Equals {
		if header == eq {
			return true
		}
	}
	for _, c := range r.Contains {
		if strings.Contains(header, c) {
			return true
		}
	}
	return false
}

// AliasTable lists, per field, the rules tried in order. The first header
// matching the earliest rule wins.
type AliasTable map[Field][]Rule

// DefaultAliases covers the headers of the invoice reports in use.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldInvoice: {
			{Contains: []string{"factura", "nofactura", "numerofactura", "asignacion"}, Excludes: []string{"clase", "fecha"}},
		},
		FieldAmount: {
			{Contains: []string{"precio"}, Excludes: []string{"total"}},
			{Contains: []string{"precio", "neto", "valor", "monto"}, Excludes: []string{"total"}},
			{Contains: []string{"total"}},
		},
		FieldClient: {
			{Contains: []string{"cliente", "codcliente", "solicitante"}},
		},
		FieldProduct: {
			{Contains: []string{"producto", "material", "codigoproducto"}},
		},
		FieldUnit: {
			{Contains: []string{"umventa", "unidadventa", "umedida", "unidadmedida"}},
			{Equals: []string{"um", "unidad"}},
		},
		FieldInvoiceClass: {
			{Contains: []string{"clasedefactura", "clasefactura"}},
			{Equals: []string{"clf"}},
		},
		FieldSalesOrg: {
			{Requires: []string{"org"}, Contains: []string{"ven", "vta"}},
		},
		FieldCompany: {
			{Contains: []string{"sociedad"}},
		},
	}
}

// Merge returns a copy of t where the fields present in override replace
// their default rules.
func (t AliasTable) Merge(override AliasTable) AliasTable {
	out := make(AliasTable, len(t))
	for f, rules := range t {
		out[f] = rules
	}
	for f, rules := range override {
		if len(rules) > 0 {
			out[f] = rules
		}
	}
	return out
}

// NormalizeHeader lowercases h and drops spaces, dots, underscores and
// degree signs.
func NormalizeHeader(h string) string {
	return strings.NewReplacer(" ", "", ".", "", "_", "", "°", "", "º", "").
		Replace(strings.ToLower(strings.TrimSpace(h)))
}

// Columns maps each resolved field to its column index.
type Columns map[Field]int

func (c Columns) Has(f Field) bool {
	_, ok := c[f]
	return ok
}

// Value returns the cell of row for field f, or "" when f is unresolved.
func (c Columns) Value(row []string, f Field) string {
	i, ok := c[f]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Names returns the header text behind every resolved field.
func (c Columns) Names(headers []string) map[Field]string {
	out := make(map[Field]string, len(c))
	for f, i := range c {
		if i < len(headers) {
			out[f] = headers[i]
		}
	}
	return out
}

// Resolve finds a column for every field of aliases. A missing invoice,
// client or amount column is an error; the other fields are optional.
func Resolve(headers []string, aliases AliasTable) (Columns, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	cols := make(Columns)
	for field, rules := range aliases {
		if i, ok := firstMatch(normalized, rules); ok {
			cols[field] = i
		}
	}

	for _, f := range requiredFields {
		if !cols.Has(f) {
			return nil, &ColumnError{Field: f}
		}
	}
	return cols, nil
}

func firstMatch(headers []string, rules []Rule) (int, bool) {
	for _, r := range rules {
		for i, h := range headers {
			if h != "" && r.match(h) {
				return i, true
			}
		}
	}
	return 0, false
}
