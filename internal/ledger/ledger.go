package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Bryant1523/notasapp/internal/allocation"
	interfaces "github.com/Bryant1523/notasapp/internal/interfaces"
	"github.com/Bryant1523/notasapp/internal/models"
	"github.com/Bryant1523/notasapp/internal/models/events"
)

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrUnbalancedTicket = errors.New("ticket rows do not add up to the target amount")
	ErrEmptyTicket      = errors.New("ticket has no rows")
)

// Ledger is the session ticket list.
// It holds a reference to the storage layer, the event publisher and a mutex
// that makes every append, removal and clear atomic.
type Ledger struct {
	store       interfaces.TicketStore    // any storage implementation
	publisher   interfaces.EventPublisher // ticket events, best effort
	logger      *zap.Logger
	topicPrefix string
	mu          sync.Mutex
	now         func() time.Time
}

// NewLedger is a constructor function that creates a new Ledger instance.
// We pass in a storage implementation (MemoryTicketStore, Postgres) and a
// publisher (Kafka or no-op).
func NewLedger(store interfaces.TicketStore, publisher interfaces.EventPublisher, logger *zap.Logger, topicPrefix string) *Ledger {
	return &Ledger{
		store:       store,
		publisher:   publisher,
		logger:      logger,
		topicPrefix: topicPrefix,
		now:         time.Now,
	}
}

func (l *Ledger) topic(suffix string) string {
	if l.topicPrefix == "" {
		return suffix
	}
	return l.topicPrefix + "." + suffix
}

// AddTicket turns a completed allocation into an immutable ticket and
// appends it to the list. Its rows must add up to its target exactly.
func (l *Ledger) AddTicket(ctx context.Context, draft models.TicketDraft) (models.Ticket, error) {
	if len(draft.Rows) == 0 {
		return models.Ticket{}, ErrEmptyTicket
	}
	if sum := models.SumAssigned(draft.Rows); !sum.Equal(draft.TargetAmount) {
		return models.Ticket{}, fmt.Errorf("%w: rows %s, target %s", ErrUnbalancedTicket, sum, draft.TargetAmount)
	}

	reason := draft.Reason
	if reason == "" {
		reason = models.ReasonNone
	}
	ticket := models.Ticket{
		ID:           uuid.New().String(),
		Number:       draft.Number,
		Reason:       reason,
		Mode:         draft.Mode,
		TargetAmount: draft.TargetAmount,
		Rows:         append([]models.AllocationRow(nil), draft.Rows...),
		CreatedAt:    l.now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SaveTicket(ctx, ticket); err != nil {
		return models.Ticket{}, fmt.Errorf("save ticket: %w", err)
	}
	l.logger.Info("ticket added",
		zap.String("ticket_id", ticket.ID),
		zap.String("number", ticket.Number),
		zap.String("target", ticket.TargetAmount.String()),
		zap.Int("rows", len(ticket.Rows)))

	invoiceIDs := make([]string, len(ticket.Rows))
	for i, r := range ticket.Rows {
		invoiceIDs[i] = r.InvoiceID
	}
	l.publish(ctx, events.TopicTicketAdded, ticket.ID, events.TicketAdded{
		TicketID:     ticket.ID,
		Number:       ticket.Number,
		TargetAmount: ticket.TargetAmount,
		InvoiceIDs:   invoiceIDs,
		OccurredAt:   ticket.CreatedAt,
	})
	return ticket, nil
}

// RemoveTicket drops the ticket at the zero-based position of the list.
// Its consumed balance is released on the next allocation.
func (l *Ledger) RemoveTicket(ctx context.Context, position int) (models.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tickets, err := l.store.ListTickets(ctx)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("list tickets: %w", err)
	}
	if position < 0 || position >= len(tickets) {
		return models.Ticket{}, fmt.Errorf("%w: position %d of %d", ErrTicketNotFound, position, len(tickets))
	}

	ticket := tickets[position]
	if err := l.store.DeleteTicket(ctx, ticket.ID); err != nil {
		return models.Ticket{}, fmt.Errorf("delete ticket %s: %w", ticket.ID, err)
	}
	l.logger.Info("ticket removed", zap.String("ticket_id", ticket.ID), zap.Int("position", position))

	l.publish(ctx, events.TopicTicketRemoved, ticket.ID, events.TicketRemoved{
		TicketID:     ticket.ID,
		Position:     position,
		TargetAmount: ticket.TargetAmount,
		OccurredAt:   l.now(),
	})
	return ticket, nil
}

// ClearTickets empties the list and returns how many tickets it held.
func (l *Ledger) ClearTickets(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.store.DeleteAllTickets(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear tickets: %w", err)
	}
	l.logger.Info("tickets cleared", zap.Int("count", n))

	l.publish(ctx, events.TopicTicketsCleared, "", events.TicketsCleared{Count: n, OccurredAt: l.now()})
	return n, nil
}

func (l *Ledger) Tickets(ctx context.Context) ([]models.Ticket, error) {
	return l.store.ListTickets(ctx)
}

// Consumed is the balance ledger: per invoice, the amount already assigned
// by the live tickets. It is recomputed from the list on every call.
func (l *Ledger) Consumed(ctx context.Context) (map[string]decimal.Decimal, error) {
	tickets, err := l.store.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	return allocation.ConsumedByInvoice(tickets), nil
}

func (l *Ledger) publish(ctx context.Context, suffix, key string, event any) {
	if l.publisher == nil {
		return
	}
	topic := l.topic(suffix)
	if err := l.publisher.Publish(ctx, topic, key, event); err != nil {
		l.logger.Warn("ticket event not published", zap.String("topic", topic), zap.Error(err))
	}
}
