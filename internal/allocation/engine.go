// Package allocation selects the invoices a credit note is charged against
// and splits the note amount across them.
package allocation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Bryant1523/notasapp/internal/models"
)

// Input is the session state an allocation runs against. The engine only
// reads it.
type Input struct {
	Lines          []models.Line
	Tickets        []models.Ticket // committed tickets, consumed before selection
	AllowedClasses []string        // empty means no invoice class filter
}

// Result is a completed allocation, ready to become a ticket.
type Result struct {
	Rows      []models.AllocationRow `json:"rows"`
	Target    decimal.Decimal        `json:"target"`
	Covered   decimal.Decimal        `json:"covered"`
	Available decimal.Decimal        `json:"available"`
	Excluded  []string               `json:"excluded_invoices,omitempty"`
	Issues    []LineIssue            `json:"issues,omitempty"`
}

type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Allocate runs the full pipeline: invoice class, client and product
// filters, cross reference exclusion, consumed balance reduction,
// aggregation, coverage selection and amount assignment.
func (e *Engine) Allocate(in Input, req models.AllocationRequest) (*Result, error) {
	target := req.TargetAmount.Round(centPlaces)
	if !target.IsPositive() {
		return nil, ErrNonPositiveTarget
	}
	if len(req.ClientCodes) == 0 {
		return nil, ErrMissingClientFilter
	}
	if req.Mode != models.ModeProrate && req.Mode != models.ModeTruncate {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}

	pool, err := e.candidates(in, req.ClientCodes, req.ProductCodes)
	if err != nil {
		return nil, err
	}

	aggregates := pool.aggregates(req.ProductCodes)
	coverage, err := SelectCoverage(target, aggregates)
	if err != nil {
		e.logger.Debug("coverage selection failed",
			zap.String("target", target.String()),
			zap.Int("invoices", len(aggregates)),
			zap.Error(err))
		return nil, err
	}

	rows, err := Assign(coverage.Chosen, target, coverage.Covered, req.Mode)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("allocation computed",
		zap.String("target", target.String()),
		zap.String("covered", coverage.Covered.String()),
		zap.Int("selected", len(rows)),
		zap.String("mode", string(req.Mode)))

	return &Result{
		Rows:      rows,
		Target:    target,
		Covered:   coverage.Covered,
		Available: coverage.Available,
		Excluded:  pool.excluded,
		Issues:    pool.issues,
	}, nil
}

// Available lists the invoices still open for the given filters, largest
// first, after cross references and committed tickets are accounted for.
// Clients are optional here.
func (e *Engine) Available(in Input, clients, products []string) ([]models.InvoiceAggregate, error) {
	pool, err := e.candidates(in, clients, products)
	if err != nil {
		return nil, err
	}

	aggregates := pool.aggregates(products)
	sort.SliceStable(aggregates, func(i, j int) bool {
		return aggregates[i].TotalAmount.GreaterThan(aggregates[j].TotalAmount)
	})
	return aggregates, nil
}

type candidatePool struct {
	lines    []models.Line
	units    map[string]string // unit of the first product-matching line per invoice
	excluded []string
	issues   []LineIssue
}

func (e *Engine) candidates(in Input, clients, products []string) (*candidatePool, error) {
	lines, err := filterClasses(in.Lines, in.AllowedClasses)
	if err != nil {
		return nil, err
	}
	if len(clients) > 0 {
		if lines, err = filterClients(lines, clients); err != nil {
			return nil, err
		}
	}
	lines, units, err := filterProducts(lines, products)
	if err != nil {
		return nil, err
	}

	lines, excluded := ExcludeCrossReferenced(lines)
	if len(excluded) > 0 {
		e.logger.Debug("cross referenced invoices excluded", zap.Strings("invoices", excluded))
	}

	var issues []LineIssue
	for _, l := range lines {
		if !l.Amount.Valid {
			issues = append(issues, unparsableIssue(l))
		}
	}

	consumed := ConsumedByInvoice(in.Tickets)
	reduced := ApplyConsumed(lines, consumed)

	e.logger.Debug("candidate pool ready",
		zap.Int("lines", len(reduced)),
		zap.Int("consumed_invoices", len(consumed)),
		zap.Int("unparsable", len(issues)))

	return &candidatePool{lines: reduced, units: units, excluded: excluded, issues: issues}, nil
}

func (p *candidatePool) aggregates(products []string) []models.InvoiceAggregate {
	aggregates := Aggregate(p.lines)
	for i := range aggregates {
		a := &aggregates[i]
		if unit, ok := p.units[a.InvoiceID]; ok && unit != "" {
			a.Unit = unit
		}
		if a.Unit == "" {
			a.Unit = DefaultUnit
		}
		if a.ProductCode == "" && len(products) > 0 {
			a.ProductCode = products[0]
		}
	}
	return aggregates
}
