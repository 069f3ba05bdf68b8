package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bryant1523/notasapp/internal/models"
	"github.com/Bryant1523/notasapp/internal/storage"
)

func openTestStore(t *testing.T) *PostgresTicketStore {
	dsn := os.Getenv("NOTAS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("NOTAS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewPostgresTicketStore(db)
	require.NoError(t, s.Migrate(ctx))
	_, err = s.DeleteAllTickets(ctx)
	require.NoError(t, err)
	return s
}

func TestPostgresTicketStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ticket := models.Ticket{
		ID:           uuid.New().String(),
		Number:       "4512",
		Reason:       "Grand Slam",
		Mode:         models.ModeProrate,
		TargetAmount: decimal.RequireFromString("100"),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		Rows: []models.AllocationRow{
			{InvoiceID: "F1", ClientCode: "42", ProductCode: "P1", Unit: "CJ",
				TotalAmount: decimal.RequireFromString("80"), AssignedAmount: decimal.RequireFromString("66.67"),
				WeightPct: decimal.RequireFromString("66.67")},
			{InvoiceID: "F2", ClientCode: "42", ProductCode: "P1", Unit: "CJ",
				TotalAmount: decimal.RequireFromString("40"), AssignedAmount: decimal.RequireFromString("33.33"),
				WeightPct: decimal.RequireFromString("33.33")},
		},
	}
	require.NoError(t, s.SaveTicket(ctx, ticket))

	tickets, err := s.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	got := tickets[0]
	assert.Equal(t, ticket.ID, got.ID)
	assert.Equal(t, ticket.Reason, got.Reason)
	assert.True(t, got.TargetAmount.Equal(ticket.TargetAmount))
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "F1", got.Rows[0].InvoiceID)
	assert.True(t, models.SumAssigned(got.Rows).Equal(ticket.TargetAmount))

	require.NoError(t, s.DeleteTicket(ctx, ticket.ID))
	assert.True(t, errors.Is(s.DeleteTicket(ctx, ticket.ID), storage.ErrTicketNotFound))
}
