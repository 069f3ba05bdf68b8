package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reasons accepted for a credit note.
var Reasons = []string{
	"Anulación documento",
	"Avisos.Cabezales.Publicidad",
	"Descuento no Reflejado",
	"Diferencia en Precio",
	"Grand Slam",
	"Promoción.Sell Out.Reconocimiento",
	"Sin Motivo",
}

// ReasonNone is the reason used when the user gives none.
const ReasonNone = "Sin Motivo"

// ValidReason reports whether reason is one of Reasons.
func ValidReason(reason string) bool {
	for _, r := range Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// TicketDraft is a completed allocation waiting to be committed.
type TicketDraft struct {
	Number       string // user supplied ticket number, optional
	Reason       string
	Mode         AssignmentMode
	TargetAmount decimal.Decimal
	Rows         []AllocationRow
}

// Ticket is a committed credit note. Tickets are immutable; the consumed
// balance of every invoice is derived from the live ticket list.
type Ticket struct {
	ID           string          `json:"id"`
	Number       string          `json:"number,omitempty"`
	Reason       string          `json:"reason"`
	Mode         AssignmentMode  `json:"mode"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Rows         []AllocationRow `json:"rows"`
	CreatedAt    time.Time       `json:"created_at"`
}

// HeaderText is the document header printed on the exported note.
func (t Ticket) HeaderText() string {
	text := "NCF.1"
	if t.Reason != "" && t.Reason != ReasonNone {
		text += " " + t.Reason
	}
	if t.Number != "" {
		text += " (Ticket " + t.Number + ")"
	}
	return text
}

// BatchID identifies the ticket inside an exported batch.
func (t Ticket) BatchID() string {
	if t.Number != "" {
		return "NC_" + t.Number
	}
	return "NC_SINTICKET_" + t.CreatedAt.Format("150405")
}
