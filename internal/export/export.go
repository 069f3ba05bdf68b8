// Package export renders committed tickets into the order upload workbook.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Bryant1523/notasapp/internal/models"
	"github.com/Bryant1523/notasapp/internal/portfolio"
)

// Column is a header of the upload layout.
type Column string

const (
	ColOrderClass  Column = "Clase de pedido"
	ColSalesOrg    Column = "Organizacion de Venta"
	ColChannel     Column = "Canal de Distribucion"
	ColSector      Column = "Sector"
	ColRequester   Column = "Solicitante"
	ColOrderDate   Column = "Fecha de Pedido"
	ColPriceDate   Column = "Fecha de Precio"
	ColInvoiceDate Column = "Fecha de Factura"
	ColReasonCode  Column = "Motivo"
	ColCustomerRef Column = "Pedido Cliente"
	ColMaterial    Column = "Material"
	ColQuantity    Column = "Cantidad"
	ColUnit        Column = "U. MEDIDA"
	ColCondition   Column = "CONDICION"
	ColPriceChange Column = "VARIACION DE PRECIO"
	ColAssignment  Column = "ASIGNACION"
	ColUsage       Column = "UTILIZACION"
	ColHeaderText  Column = "TEXTO CABECERA"
	ColAssigned    Column = "Monto NC Asignado"
	ColObservation Column = "Observación"
)

// DefaultTemplate is used when a profile has no template of its own.
const DefaultTemplate = "plantilla_default.xlsx"

const (
	reasonCode   = "R02"
	dateLayout   = "02/01/2006"
	numberFormat = "0.00"
	headerRow    = 1
	firstDataRow = 2
)

// Layout is the column order of a workbook created without a template.
var Layout = []Column{
	ColOrderClass, ColSalesOrg, ColChannel, ColSector, ColRequester,
	ColOrderDate, ColPriceDate, ColInvoiceDate, ColReasonCode, ColCustomerRef,
	ColMaterial, ColQuantity, ColUnit, ColCondition, ColPriceChange,
	ColAssignment, ColUsage, ColHeaderText, ColAssigned, ColObservation,
}

var widths = map[Column]float64{
	ColPriceChange: 18,
	ColHeaderText:  35,
	ColCustomerRef: 35,
	ColObservation: 25,
	ColReasonCode:  8,
}

const defaultWidth = 15

// TemplatePath returns the profile's template inside dir, the default
// template when the profile has none on disk, or "" when neither exists.
func TemplatePath(dir string, p portfolio.Profile) string {
	if dir == "" {
		return ""
	}
	for _, name := range []string{p.Template, DefaultTemplate} {
		if name == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FileName reproduces the download names the planning team expects.
func FileName(p portfolio.Profile, ticketNumber string, multiple bool, now time.Time) string {
	acronym := p.Acronym
	if acronym == "" {
		acronym = portfolio.None().Acronym
	}
	stamp := now.Format("20060102_150405")
	switch {
	case multiple:
		return fmt.Sprintf("NC_Multiples_%s_%s.xlsx", acronym, stamp)
	case ticketNumber != "":
		return fmt.Sprintf("TICKET#SR-%s-%s.xlsx", ticketNumber, acronym)
	default:
		return fmt.Sprintf("TICKET_SIN_NUMERO-%s_%s.xlsx", acronym, stamp)
	}
}

type placement struct {
	col    int // 1-based
	column Column
}

// WriteTickets writes one row per allocation row of every ticket, in ticket
// order. With a template, its first row decides which columns are filled;
// any data rows it carries are dropped.
func WriteTickets(w io.Writer, tickets []models.Ticket, p portfolio.Profile, templatePath string) error {
	f, err := openWorkbook(templatePath)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	placements, dataRows, err := readLayout(f, sheet)
	if err != nil {
		return err
	}
	for r := dataRows; r >= firstDataRow; r-- {
		if err := f.RemoveRow(sheet, r); err != nil {
			return fmt.Errorf("clear template rows: %w", err)
		}
	}

	numStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: ptr(numberFormat),
		Alignment:    &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return err
	}

	r := firstDataRow
	for _, t := range tickets {
		for _, row := range t.Rows {
			values := rowValues(t, row, p)
			for _, pl := range placements {
				cell, err := excelize.CoordinatesToCellName(pl.col, r)
				if err != nil {
					return err
				}
				if err := writeCell(f, sheet, cell, values[pl.column], numStyle); err != nil {
					return fmt.Errorf("write %s: %w", cell, err)
				}
			}
			r++
		}
	}

	for _, pl := range placements {
		name, err := excelize.ColumnNumberToName(pl.col)
		if err != nil {
			return err
		}
		width, ok := widths[pl.column]
		if !ok {
			width = defaultWidth
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func openWorkbook(templatePath string) (*excelize.File, error) {
	if templatePath != "" {
		f, err := excelize.OpenFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("open template %s: %w", templatePath, err)
		}
		return f, nil
	}

	f := excelize.NewFile()
	header := make([]any, len(Layout))
	for i, c := range Layout {
		header[i] = string(c)
	}
	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func readLayout(f *excelize.File, sheet string) ([]placement, int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) < headerRow {
		return nil, 0, errors.New("template has no header row")
	}

	var placements []placement
	seenHeaderText := false
	for i, h := range rows[headerRow-1] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		column, ok := matchColumn(h)
		if !ok {
			continue
		}
		if column == ColHeaderText {
			if seenHeaderText {
				continue
			}
			seenHeaderText = true
		}
		placements = append(placements, placement{col: i + 1, column: column})
	}
	if len(placements) == 0 {
		return nil, 0, errors.New("template header matches no known column")
	}
	return placements, len(rows), nil
}

func normalize(h string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", ""))
}

func matchColumn(header string) (Column, bool) {
	n := normalize(header)
	for _, c := range Layout {
		if normalize(string(c)) == n {
			return c, true
		}
	}
	switch {
	case strings.Contains(n, "clase") && strings.Contains(n, "pedido"):
		return ColOrderClass, true
	case strings.Contains(n, "org") && (strings.Contains(n, "ven") || strings.Contains(n, "vta")):
		return ColSalesOrg, true
	case strings.Contains(n, "canal"):
		return ColChannel, true
	case strings.Contains(n, "sector"):
		return ColSector, true
	}
	return "", false
}

func rowValues(t models.Ticket, row models.AllocationRow, p portfolio.Profile) map[Column]any {
	date := t.CreatedAt.Format(dateLayout)
	unit := row.Unit
	if unit == "" {
		unit = "UN"
	}
	condition := p.Defaults.Condition
	if condition == "" {
		condition = "ZNOT"
	}
	header := t.HeaderText()
	assigned := row.AssignedAmount.Round(2).InexactFloat64()

	return map[Column]any{
		ColOrderClass:  p.Defaults.OrderClass,
		ColSalesOrg:    p.Defaults.SalesOrg,
		ColChannel:     p.Defaults.Channel,
		ColSector:      p.Defaults.Sector,
		ColRequester:   row.ClientCode,
		ColOrderDate:   date,
		ColPriceDate:   date,
		ColInvoiceDate: date,
		ColReasonCode:  reasonCode,
		ColCustomerRef: header,
		ColMaterial:    row.ProductCode,
		ColQuantity:    "1",
		ColUnit:        unit,
		ColCondition:   condition,
		ColPriceChange: assigned,
		ColAssignment:  row.InvoiceID,
		ColUsage:       "",
		ColHeaderText:  header,
		ColAssigned:    assigned,
		ColObservation: "",
	}
}

func writeCell(f *excelize.File, sheet, cell string, value any, numStyle int) error {
	switch v := value.(type) {
	case float64:
		if err := f.SetCellFloat(sheet, cell, v, -1, 64); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, numStyle)
	case string:
		return f.SetCellStr(sheet, cell, v)
	default:
		return f.SetCellValue(sheet, cell, v)
	}
}

func ptr[T any](v T) *T {
	return &v
}
