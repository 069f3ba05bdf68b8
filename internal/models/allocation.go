package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssignmentMode decides how a target amount is split across selected invoices.
type AssignmentMode string

const (
	// ModeProrate splits the target proportionally to each invoice total.
	ModeProrate AssignmentMode = "prorate"
	// ModeTruncate consumes every invoice in full except the last one,
	// which is capped to the exact remainder.
	ModeTruncate AssignmentMode = "truncate"
)

// ParseAssignmentMode accepts the mode names used by the API.
// An empty string selects ModeProrate.
func ParseAssignmentMode(s string) (AssignmentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prorate", "prorrateo":
		return ModeProrate, nil
	case "truncate", "estricto", "strict":
		return ModeTruncate, nil
	}
	return "", fmt.Errorf("unknown assignment mode %q", s)
}

// InvoiceAggregate is the invoice-level total of the candidate lines.
// ClientCode, ProductCode and Unit come from the first qualifying line.
type InvoiceAggregate struct {
	InvoiceID   string
	ClientCode  string
	ProductCode string
	Unit        string
	TotalAmount decimal.Decimal
}

// AllocationRequest is one user submission against the loaded dataset.
type AllocationRequest struct {
	TargetAmount decimal.Decimal
	ClientCodes  []string // required
	ProductCodes []string // optional
	Mode         AssignmentMode
}

// AllocationRow is the share of a credit note charged against one invoice.
type AllocationRow struct {
	InvoiceID      string          `json:"invoice_id"`
	ClientCode     string          `json:"client_code"`
	ProductCode    string          `json:"product_code"`
	Unit           string          `json:"unit"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AssignedAmount decimal.Decimal `json:"assigned_amount"`
	WeightPct      decimal.Decimal `json:"weight_pct"`
}

// SumAssigned adds up AssignedAmount over rows.
func SumAssigned(rows []AllocationRow) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.AssignedAmount)
	}
	return sum
}
