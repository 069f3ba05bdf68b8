package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTable_CSVSemicolonFallback(t *testing.T) {
	data := "No. Factura;Solicitante;Material;Precio Neto\n" +
		"900001;0042;000123;1.234,56\n" +
		";;;\n" +
		"900002;42;123;10,00\n"

	table, err := ReadTable("report.csv", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"No. Factura", "Solicitante", "Material", "Precio Neto"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1.234,56", table.Rows[0][3])
}

func TestReadTable_CSVComma(t *testing.T) {
	data := "\xef\xbb\xbfFactura,Cliente,Monto\nA1,7,\"5,5\"\n"

	table, err := ReadTable("report.CSV", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "Factura", table.Headers[0])
	assert.Equal(t, []string{"A1", "7", "5,5"}, table.Rows[0])
}

func TestReadTable_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Asignacion", "Cod Cliente", "Precio", "U.M Venta"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"7000001", "42", 1250.5, "CJ"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"7000002", "42", 80, "CJ"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ReadTable("ventas.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1250.5", table.Rows[0][2])

	cols, err := Resolve(table.Headers, DefaultAliases())
	require.NoError(t, err)
	lines := BuildLines(table, cols)
	require.Len(t, lines, 2)
	assert.Equal(t, "1250.5", lines[0].Amount.Decimal.String())
	assert.Equal(t, "CJ", lines[1].Unit)
}

func TestReadTable_Errors(t *testing.T) {
	_, err := ReadTable("report.pdf", strings.NewReader("x"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = ReadTable("report.csv", strings.NewReader("Factura,Cliente,Monto\n,,\n"))
	assert.True(t, errors.Is(err, ErrEmptyTable))
}

func TestResolve(t *testing.T) {
	headers := []string{"Fecha Factura", "Clase de Factura", "N° Factura", "Solicitante", "Material",
		"Precio Total", "Precio Neto", "UM", "Org. Ventas", "Sociedad"}

	cols, err := Resolve(headers, DefaultAliases())
	require.NoError(t, err)

	names := cols.Names(headers)
	assert.Equal(t, "N° Factura", names[FieldInvoice])
	assert.Equal(t, "Clase de Factura", names[FieldInvoiceClass])
	assert.Equal(t, "Solicitante", names[FieldClient])
	assert.Equal(t, "Material", names[FieldProduct])
	assert.Equal(t, "Precio Neto", names[FieldAmount])
	assert.Equal(t, "UM", names[FieldUnit])
	assert.Equal(t, "Org. Ventas", names[FieldSalesOrg])
	assert.Equal(t, "Sociedad", names[FieldCompany])
}

func TestResolve_AmountFallsBackToTotal(t *testing.T) {
	cols, err := Resolve([]string{"Factura", "Cliente", "Total"}, DefaultAliases())
	require.NoError(t, err)
	assert.Equal(t, 2, cols[FieldAmount])
	assert.False(t, cols.Has(FieldProduct))
}

func TestResolve_MissingRequired(t *testing.T) {
	_, err := Resolve([]string{"Factura", "Monto"}, DefaultAliases())

	var colErr *ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, FieldClient, colErr.Field)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestAliasTable_Merge(t *testing.T) {
	merged := DefaultAliases().Merge(AliasTable{
		FieldAmount: {{Equals: []string{"importe"}}},
	})

	cols, err := Resolve([]string{"Factura", "Cliente", "Precio", "Importe"}, merged)
	require.NoError(t, err)
	assert.Equal(t, 3, cols[FieldAmount])
	assert.NotEmpty(t, merged[FieldInvoice])
}

func TestBuildLines(t *testing.T) {
	table := &Table{
		Headers: []string{"Factura", "Cliente", "Material", "Cl.F.", "Monto", "Texto"},
		Rows: [][]string{
			{"F1", "0042", "000123", "zspn", "1.234,56", "ref 7000001"},
			{"F2", "42", "", "", "n/a", ""},
		},
	}
	cols, err := Resolve(table.Headers, DefaultAliases())
	require.NoError(t, err)

	lines := BuildLines(table, cols)
	require.Len(t, lines, 2)

	first := lines[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "F1", first.InvoiceID)
	assert.Equal(t, "0042", first.ClientCode)
	assert.Equal(t, "123", first.ProductCode)
	assert.Equal(t, "ZSPN", first.InvoiceClass)
	assert.Equal(t, "1234.56", first.Amount.Decimal.String())
	assert.Equal(t, table.Rows[0], first.Cells)

	assert.False(t, lines[1].Amount.Valid)
	assert.Equal(t, "n/a", lines[1].RawAmount)
}

func TestDistinct(t *testing.T) {
	table := &Table{
		Headers: []string{"Factura", "Cliente", "Monto", "Org. Vta"},
		Rows:    [][]string{{"1", "1", "1", "0702"}, {"2", "1", "1", ""}, {"3", "1", "1", "0702"}, {"4", "1", "1", "R200"}},
	}
	cols, err := Resolve(table.Headers, DefaultAliases())
	require.NoError(t, err)
	assert.Equal(t, []string{"0702", "R200"}, Distinct(table, cols, FieldSalesOrg))
	assert.Nil(t, Distinct(table, cols, FieldCompany))
}
