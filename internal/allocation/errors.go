package allocation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Bryant1523/notasapp/internal/amount"
	"github.com/Bryant1523/notasapp/internal/models"
)

var (
	// ErrNonPositiveTarget rejects requests whose target amount is not > 0.
	ErrNonPositiveTarget = errors.New("target amount must be positive")

	// ErrMissingClientFilter rejects requests without client codes; coverage
	// must always be scoped to a client.
	ErrMissingClientFilter = errors.New("at least one client code is required")

	ErrUnknownMode = errors.New("unknown assignment mode")

	// Filter failures: the filter emptied the candidate pool.
	ErrNoMatchingClass   = errors.New("no invoices with an allowed invoice class")
	ErrNoMatchingClient  = errors.New("no invoices for the requested clients")
	ErrNoMatchingProduct = errors.New("no invoices containing the requested products")

	// ErrInsufficientCoverage means every available invoice together stays below the target.
	ErrInsufficientCoverage = errors.New("insufficient coverage")

	ErrZeroTotalSelected = errors.New("selected invoices sum to zero")
)

// FilterError reports which filter values produced an empty pool.
type FilterError struct {
	Err    error
	Values []string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), strings.Join(e.Values, ", "))
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// CoverageError carries the amounts needed to explain a coverage failure.
type CoverageError struct {
	Target    decimal.Decimal
	Available decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("%s: target %s, available %s, shortfall %s",
		ErrInsufficientCoverage, e.Target.StringFixed(2), e.Available.StringFixed(2), e.Shortfall.StringFixed(2))
}

func (e *CoverageError) Unwrap() error {
	return ErrInsufficientCoverage
}

// LineIssue is a non-fatal problem found on a single line.
type LineIssue struct {
	Row       int    `json:"row"`
	InvoiceID string `json:"invoice_id"`
	RawAmount string `json:"raw_amount"`
	Err       error  `json:"-"`
}

func unparsableIssue(l models.Line) LineIssue {
	return LineIssue{
		Row:       l.Row,
		InvoiceID: l.InvoiceID,
		RawAmount: l.RawAmount,
		Err:       fmt.Errorf("row %d: %w: %q", l.Row, amount.ErrUnparsable, l.RawAmount),
	}
}
