package models

import "github.com/shopspring/decimal"

// Line is a single row of the loaded invoice table.
// Lines are never mutated after ingestion; pipeline stages work on copies.
type Line struct {
	Row          int                 // 1-based data row in the source table
	InvoiceID    string              // invoice / assignment document number
	ClientCode   string              // requesting client, leading zeros stripped
	ProductCode  string              // material code, leading zeros stripped
	Unit         string              // unit of measure
	InvoiceClass string              // billing class code (Cl.F.), upper case
	RawAmount    string              // amount exactly as it appeared in the file
	Amount       decimal.NullDecimal // Valid is false when RawAmount could not be parsed
	Cells        []string            // every cell of the row, scanned for cross references
}

// HasAmount reports whether the line carries a usable amount above the
// minimum threshold.
func (l Line) HasAmount() bool {
	return l.Amount.Valid && l.Amount.Decimal.GreaterThan(MinLineAmount)
}

// MinLineAmount is the threshold at or below which a line is ignored.
var MinLineAmount = decimal.RequireFromString("0.01")
