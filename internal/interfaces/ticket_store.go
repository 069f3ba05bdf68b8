package interfaces

import (
	"context"

	"github.com/Bryant1523/notasapp/internal/models"
)

// TicketStore persists the session ticket list in commit order.
type TicketStore interface {
	SaveTicket(ctx context.Context, ticket models.Ticket) error
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	DeleteAllTickets(ctx context.Context) (int, error)
}
