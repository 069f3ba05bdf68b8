package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bryant1523/notasapp/internal/ingest"
)

func table(t *testing.T, headers []string, rows ...[]string) (*ingest.Table, ingest.Columns) {
	t.Helper()
	tbl := &ingest.Table{Headers: headers, Rows: rows}
	cols, err := ingest.Resolve(headers, ingest.DefaultAliases())
	require.NoError(t, err)
	return tbl, cols
}

func TestDetect(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		name    string
		headers []string
		rows    [][]string
		want    string
	}{
		{
			name:    "Sales org without leading zero",
			headers: []string{"Factura", "Cliente", "Monto", "Org. Ventas"},
			rows:    [][]string{{"1", "1", "1", "702"}},
			want:    "0700",
		},
		{
			name:    "Sales org R200",
			headers: []string{"Factura", "Cliente", "Monto", "Org Vta"},
			rows:    [][]string{{"1", "1", "1", "r200"}},
			want:    "R100",
		},
		{
			name:    "Company name",
			headers: []string{"Factura", "Cliente", "Monto", "Sociedad"},
			rows:    [][]string{{"1", "1", "1", "Alimentos Polar Comercial"}},
			want:    "0700",
		},
		{
			name:    "Unknown sales org falls through to company",
			headers: []string{"Factura", "Cliente", "Monto", "Org. Ventas", "Sociedad"},
			rows:    [][]string{{"1", "1", "1", "9999", "Productos EFE"}},
			want:    "0600",
		},
		{
			name:    "Invoice class",
			headers: []string{"Factura", "Cliente", "Monto", "Cl.F."},
			rows:    [][]string{{"1", "1", "1", "ZSPN"}, {"2", "1", "1", "YC00"}},
			want:    "C001",
		},
		{
			name:    "Nothing to go on",
			headers: []string{"Factura", "Cliente", "Monto"},
			rows:    [][]string{{"1", "1", "1"}},
			want:    CodeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, cols := table(t, tt.headers, tt.rows...)
			assert.Equal(t, tt.want, catalog.Detect(tbl, cols).Code)
		})
	}
}

func TestLookup(t *testing.T) {
	catalog := DefaultCatalog()

	p := catalog.Lookup(" r100 ")
	assert.Equal(t, "PCV", p.Acronym)
	assert.Equal(t, "YLIQ", p.Defaults.Condition)
	assert.Equal(t, []string{"YP01", "YP04", "YP10"}, p.AllowedClasses)

	none := catalog.Lookup("XXXX")
	assert.Equal(t, CodeNone, none.Code)
	assert.Equal(t, "SIN_PORTAFOLIO", none.Acronym)
	assert.Empty(t, none.AllowedClasses)
}
