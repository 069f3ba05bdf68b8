package memory

import (
	"context"
	"sync"

	interfaces "github.com/Bryant1523/notasapp/internal/interfaces"
	"github.com/Bryant1523/notasapp/internal/models"
	"github.com/Bryant1523/notasapp/internal/storage"
)

// MemoryTicketStore keeps tickets in a slice, in commit order.
type MemoryTicketStore struct {
	mu      sync.Mutex
	tickets []models.Ticket
}

func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{
		tickets: make([]models.Ticket, 0),
	}
}

func (m *MemoryTicketStore) SaveTicket(ctx context.Context, ticket models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// rows are copied so later edits by the caller cannot reach stored tickets
	ticket.Rows = append([]models.AllocationRow(nil), ticket.Rows...)
	m.tickets = append(m.tickets, ticket)
	return nil
}

// ListTickets returns a copy, so callers can't modify internal state.
func (m *MemoryTicketStore) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]models.Ticket, len(m.tickets))
	for i, t := range m.tickets {
		t.Rows = append([]models.AllocationRow(nil), t.Rows...)
		copied[i] = t
	}
	return copied, nil
}

func (m *MemoryTicketStore) DeleteTicket(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tickets {
		if t.ID == id {
			m.tickets = append(m.tickets[:i], m.tickets[i+1:]...)
			return nil
		}
	}
	return storage.ErrTicketNotFound
}

func (m *MemoryTicketStore) DeleteAllTickets(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.tickets)
	m.tickets = make([]models.Ticket, 0)
	return n, nil
}

// Compile-time check: ensure MemoryTicketStore implements TicketStore interface
var _ interfaces.TicketStore = (*MemoryTicketStore)(nil)
