package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Bryant1523/notasapp/internal/models"
	"github.com/Bryant1523/notasapp/internal/models/events"
	"github.com/Bryant1523/notasapp/internal/storage/memory"
)

type published struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func draft(target string, assigned ...[2]string) models.TicketDraft {
	rows := make([]models.AllocationRow, len(assigned))
	for i, a := range assigned {
		rows[i] = models.AllocationRow{InvoiceID: a[0], AssignedAmount: d(a[1])}
	}
	return models.TicketDraft{TargetAmount: d(target), Rows: rows, Mode: models.ModeProrate}
}

func newLedger(t *testing.T, pub *recordingPublisher) *Ledger {
	return NewLedger(memory.NewMemoryTicketStore(), pub, zaptest.NewLogger(t), "credit-notes")
}

func TestAddTicket(t *testing.T) {
	pub := &recordingPublisher{}
	l := newLedger(t, pub)
	ctx := context.Background()

	ticket, err := l.AddTicket(ctx, draft("50", [2]string{"X", "40"}, [2]string{"Y", "10"}))
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, models.ReasonNone, ticket.Reason)
	assert.False(t, ticket.CreatedAt.IsZero())

	tickets, err := l.Tickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, ticket.ID, tickets[0].ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "credit-notes.ticket-added", pub.events[0].topic)
	assert.Equal(t, ticket.ID, pub.events[0].key)
	added, ok := pub.events[0].event.(events.TicketAdded)
	require.True(t, ok)
	assert.Equal(t, []string{"X", "Y"}, added.InvoiceIDs)
}

func TestAddTicket_Rejected(t *testing.T) {
	l := newLedger(t, &recordingPublisher{})
	ctx := context.Background()

	_, err := l.AddTicket(ctx, draft("50"))
	assert.True(t, errors.Is(err, ErrEmptyTicket))

	_, err = l.AddTicket(ctx, draft("50", [2]string{"X", "49.99"}))
	assert.True(t, errors.Is(err, ErrUnbalancedTicket))

	tickets, err := l.Tickets(ctx)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestAddTicket_PublishFailureKeepsTicket(t *testing.T) {
	l := newLedger(t, &recordingPublisher{err: errors.New("broker down")})
	ctx := context.Background()

	_, err := l.AddTicket(ctx, draft("10", [2]string{"X", "10"}))
	require.NoError(t, err)

	tickets, err := l.Tickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestConsumed_RemoveRestoresBalance(t *testing.T) {
	l := newLedger(t, &recordingPublisher{})
	ctx := context.Background()

	_, err := l.AddTicket(ctx, draft("40", [2]string{"X", "40"}))
	require.NoError(t, err)
	before, err := l.Consumed(ctx)
	require.NoError(t, err)

	_, err = l.AddTicket(ctx, draft("25", [2]string{"X", "15"}, [2]string{"Z", "10"}))
	require.NoError(t, err)
	consumed, err := l.Consumed(ctx)
	require.NoError(t, err)
	assert.True(t, consumed["X"].Equal(d("55")))
	assert.True(t, consumed["Z"].Equal(d("10")))

	removed, err := l.RemoveTicket(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed.TargetAmount.Equal(d("25")))

	after, err := l.Consumed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
	assert.Equal(t, before["X"].String(), after["X"].String())
}

func TestRemoveTicket_OutOfRange(t *testing.T) {
	l := newLedger(t, &recordingPublisher{})

	_, err := l.RemoveTicket(context.Background(), 0)
	assert.True(t, errors.Is(err, ErrTicketNotFound))

	_, err = l.RemoveTicket(context.Background(), -1)
	assert.True(t, errors.Is(err, ErrTicketNotFound))
}

func TestClearTickets(t *testing.T) {
	pub := &recordingPublisher{}
	l := newLedger(t, pub)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.AddTicket(ctx, draft("1", [2]string{"X", "1"}))
		require.NoError(t, err)
	}

	n, err := l.ClearTickets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	consumed, err := l.Consumed(ctx)
	require.NoError(t, err)
	assert.Empty(t, consumed)

	last := pub.events[len(pub.events)-1]
	assert.Equal(t, "credit-notes.tickets-cleared", last.topic)
	cleared, ok := last.event.(events.TicketsCleared)
	require.True(t, ok)
	assert.Equal(t, 3, cleared.Count)
}
