package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topic suffixes, appended to the configured prefix.
const (
	TopicTicketAdded    = "ticket-added"
	TopicTicketRemoved  = "ticket-removed"
	TopicTicketsCleared = "tickets-cleared"
)

type TicketAdded struct {
	TicketID     string          `json:"ticket_id"`
	Number       string          `json:"number,omitempty"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	InvoiceIDs   []string        `json:"invoice_ids"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type TicketRemoved struct {
	TicketID     string          `json:"ticket_id"`
	Position     int             `json:"position"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type TicketsCleared struct {
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}
