// Package ingest reads invoice line tables from uploaded spreadsheets and
// resolves their columns into Lines.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyTable        = errors.New("table has no data rows")
)

// Table is the first sheet of an uploaded file: one header row and its data
// rows, every row padded to the header width.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadTable picks the reader from the file extension: .xlsx, .xls or .csv.
func ReadTable(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(data)
	case ".xls":
		rows, err = readXLS(data)
	case ".csv", ".txt":
		rows, err = readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return newTable(rows)
}

func newTable(rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, ErrEmptyTable
	}

	headers := trimAll(rows[0])
	t := &Table{Headers: headers}
	for _, raw := range rows[1:] {
		row := make([]string, len(headers))
		for i := 0; i < len(raw) && i < len(headers); i++ {
			row[i] = strings.TrimSpace(raw[i])
		}
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

func readXLSX(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	// raw values keep numbers free of the sheet's display format
	return xl.GetRows(xl.GetSheetName(0), excelize.Options{RawCellValue: true})
}

func readXLS(data []byte) ([][]string, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if book.NumSheets() == 0 {
		return nil, errors.New("no sheets found")
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no sheets found")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// readCSV tries a comma first and falls back to a semicolon when the header
// comes out as a single column.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	rows, err := parseCSV(data, ',')
	if err == nil && len(rows) > 0 && len(rows[0]) > 1 {
		return rows, nil
	}
	return parseCSV(data, ';')
}

func parseCSV(data []byte, comma rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
