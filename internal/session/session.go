// Package session owns the interactive state of one user: the loaded
// invoice report and the ticket list built against it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Bryant1523/notasapp/internal/allocation"
	"github.com/Bryant1523/notasapp/internal/amount"
	"github.com/Bryant1523/notasapp/internal/codes"
	"github.com/Bryant1523/notasapp/internal/export"
	"github.com/Bryant1523/notasapp/internal/ingest"
	"github.com/Bryant1523/notasapp/internal/ledger"
	"github.com/Bryant1523/notasapp/internal/models"
	"github.com/Bryant1523/notasapp/internal/portfolio"
)

var (
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrNoTickets     = errors.New("no tickets to export")
	ErrInvalidReason = errors.New("unknown credit note reason")
)

// Request is an allocation as typed by the user.
type Request struct {
	Amount       string `json:"amount"`
	Clients      string `json:"clients"`
	Products     string `json:"products"`
	Mode         string `json:"mode"`
	Reason       string `json:"reason"`
	TicketNumber string `json:"ticket_number"`
}

// Dataset is the loaded report.
type Dataset struct {
	Name        string
	Lines       []models.Line
	Columns     map[ingest.Field]string
	Portfolio   portfolio.Profile
	ClassFilter bool // false when the profile has classes but the report has no class column
	LoadedAt    time.Time
}

// Summary describes a loaded dataset to the caller.
type Summary struct {
	Name        string                  `json:"name"`
	Lines       int                     `json:"lines"`
	Unparsable  int                     `json:"unparsable"`
	Columns     map[ingest.Field]string `json:"columns"`
	Portfolio   portfolio.Profile       `json:"portfolio"`
	ClassFilter bool                    `json:"class_filter"`
}

// Preview is a computed allocation that has not been committed.
type Preview struct {
	*allocation.Result
	Mode         models.AssignmentMode `json:"mode"`
	Reason       string                `json:"reason"`
	TicketNumber string                `json:"ticket_number,omitempty"`
	HeaderText   string                `json:"header_text"`
}

type Service struct {
	mu          sync.Mutex
	engine      *allocation.Engine
	ledger      *ledger.Ledger
	aliases     ingest.AliasTable
	catalog     portfolio.Catalog
	templateDir string
	logger      *zap.Logger
	dataset     *Dataset
	now         func() time.Time
}

func NewService(engine *allocation.Engine, l *ledger.Ledger, aliases ingest.AliasTable, catalog portfolio.Catalog, templateDir string, logger *zap.Logger) *Service {
	return &Service{
		engine:      engine,
		ledger:      l,
		aliases:     aliases,
		catalog:     catalog,
		templateDir: templateDir,
		logger:      logger,
		now:         time.Now,
	}
}

// LoadDataset replaces the loaded report. The portfolio is detected unless
// portfolioCode names one. Committed tickets are kept.
func (s *Service) LoadDataset(ctx context.Context, name string, r io.Reader, portfolioCode string) (*Summary, error) {
	table, err := ingest.ReadTable(name, r)
	if err != nil {
		return nil, err
	}
	cols, err := ingest.Resolve(table.Headers, s.aliases)
	if err != nil {
		return nil, err
	}

	var profile portfolio.Profile
	if code := strings.TrimSpace(portfolioCode); code != "" {
		profile = s.catalog.Lookup(code)
	} else {
		profile = s.catalog.Detect(table, cols)
	}

	ds := &Dataset{
		Name:        name,
		Lines:       ingest.BuildLines(table, cols),
		Columns:     cols.Names(table.Headers),
		Portfolio:   profile,
		ClassFilter: len(profile.AllowedClasses) > 0 && cols.Has(ingest.FieldInvoiceClass),
		LoadedAt:    s.now(),
	}
	if len(profile.AllowedClasses) > 0 && !ds.ClassFilter {
		s.logger.Warn("invoice class column not found, class filter skipped",
			zap.String("portfolio", profile.Code))
	}

	unparsable := 0
	for _, l := range ds.Lines {
		if !l.Amount.Valid {
			unparsable++
		}
	}

	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	s.logger.Info("dataset loaded",
		zap.String("name", name),
		zap.Int("lines", len(ds.Lines)),
		zap.Int("unparsable", unparsable),
		zap.String("portfolio", profile.Code))

	return &Summary{
		Name:        name,
		Lines:       len(ds.Lines),
		Unparsable:  unparsable,
		Columns:     ds.Columns,
		Portfolio:   profile,
		ClassFilter: ds.ClassFilter,
	}, nil
}

// Allocate computes an allocation without committing it.
func (s *Service) Allocate(ctx context.Context, req Request) (*Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.allocate(ctx, req)
}

// CommitAllocation computes an allocation and appends it as a ticket in
// one step, so nothing can change the balances in between.
func (s *Service) CommitAllocation(ctx context.Context, req Request) (models.Ticket, *Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preview, err := s.allocate(ctx, req)
	if err != nil {
		return models.Ticket{}, nil, err
	}
	ticket, err := s.ledger.AddTicket(ctx, models.TicketDraft{
		Number:       preview.TicketNumber,
		Reason:       preview.Reason,
		Mode:         preview.Mode,
		TargetAmount: preview.Target,
		Rows:         preview.Rows,
	})
	if err != nil {
		return models.Ticket{}, nil, err
	}
	return ticket, preview, nil
}

func (s *Service) allocate(ctx context.Context, req Request) (*Preview, error) {
	ds, err := s.loaded()
	if err != nil {
		return nil, err
	}

	target, err := amount.Parse(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", req.Amount, err)
	}
	mode, err := models.ParseAssignmentMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", allocation.ErrUnknownMode, req.Mode)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = models.ReasonNone
	}
	if !models.ValidReason(reason) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReason, reason)
	}

	in, err := s.input(ctx, ds)
	if err != nil {
		return nil, err
	}
	result, err := s.engine.Allocate(in, models.AllocationRequest{
		TargetAmount: target,
		ClientCodes:  codes.ParseList(req.Clients),
		ProductCodes: codes.ParseList(req.Products),
		Mode:         mode,
	})
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(req.TicketNumber)
	header := models.Ticket{Reason: reason, Number: number}.HeaderText()
	return &Preview{
		Result:       result,
		Mode:         mode,
		Reason:       reason,
		TicketNumber: number,
		HeaderText:   header,
	}, nil
}

// Available lists the open balance per invoice for the given filters.
func (s *Service) Available(ctx context.Context, clients, products string) ([]models.InvoiceAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.loaded()
	if err != nil {
		return nil, err
	}
	in, err := s.input(ctx, ds)
	if err != nil {
		return nil, err
	}
	return s.engine.Available(in, codes.ParseList(clients), codes.ParseList(products))
}

func (s *Service) RemoveTicket(ctx context.Context, position int) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.RemoveTicket(ctx, position)
}

func (s *Service) ClearTickets(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.ClearTickets(ctx)
}

func (s *Service) Tickets(ctx context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Tickets(ctx)
}

// ExportTickets writes the whole ticket list as one workbook and returns
// its download name.
func (s *Service) ExportTickets(ctx context.Context, w io.Writer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.ledger.Tickets(ctx)
	if err != nil {
		return "", err
	}
	if len(tickets) == 0 {
		return "", ErrNoTickets
	}

	profile := portfolio.None()
	if s.dataset != nil {
		profile = s.dataset.Portfolio
	}
	number := ""
	if len(tickets) == 1 {
		number = tickets[0].Number
	}

	if err := export.WriteTickets(w, tickets, profile, export.TemplatePath(s.templateDir, profile)); err != nil {
		return "", fmt.Errorf("export tickets: %w", err)
	}
	name := export.FileName(profile, number, len(tickets) > 1, s.now())
	s.logger.Info("tickets exported", zap.Int("tickets", len(tickets)), zap.String("file", name))
	return name, nil
}

func (s *Service) loaded() (*Dataset, error) {
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return s.dataset, nil
}

func (s *Service) input(ctx context.Context, ds *Dataset) (allocation.Input, error) {
	tickets, err := s.ledger.Tickets(ctx)
	if err != nil {
		return allocation.Input{}, err
	}
	in := allocation.Input{Lines: ds.Lines, Tickets: tickets}
	if ds.ClassFilter {
		in.AllowedClasses = ds.Portfolio.AllowedClasses
	}
	return in, nil
}
