package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	interfaces "github.com/Bryant1523/notasapp/internal/interfaces"
	"github.com/Bryant1523/notasapp/internal/models"
	"github.com/Bryant1523/notasapp/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS credit_tickets (
	seq           BIGSERIAL PRIMARY KEY,
	id            TEXT NOT NULL UNIQUE,
	number        TEXT NOT NULL DEFAULT '',
	reason        TEXT NOT NULL,
	mode          TEXT NOT NULL,
	target_amount NUMERIC(18,2) NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS credit_ticket_rows (
	ticket_id       TEXT NOT NULL REFERENCES credit_tickets(id) ON DELETE CASCADE,
	row_index       INT NOT NULL,
	invoice_id      TEXT NOT NULL,
	client_code     TEXT NOT NULL,
	product_code    TEXT NOT NULL,
	unit            TEXT NOT NULL,
	total_amount    NUMERIC(18,2) NOT NULL,
	assigned_amount NUMERIC(18,2) NOT NULL,
	weight_pct      NUMERIC(12,6) NOT NULL,
	PRIMARY KEY (ticket_id, row_index)
);`

type PostgresTicketStore struct {
	db *sql.DB
}

func NewPostgresTicketStore(db *sql.DB) *PostgresTicketStore {
	return &PostgresTicketStore{
		db: db,
	}
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the ticket tables when they don't exist.
func (p *PostgresTicketStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresTicketStore) saveHeader(ctx context.Context, t models.Ticket, dbTx *sql.Tx) error {
	const query = `INSERT INTO credit_tickets (id, number, reason, mode, target_amount, created_at)
	VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := dbTx.ExecContext(ctx, query, t.ID, t.Number, t.Reason, string(t.Mode), t.TargetAmount, t.CreatedAt)
	return err
}

func (p *PostgresTicketStore) saveRow(ctx context.Context, ticketID string, i int, r models.AllocationRow, dbTx *sql.Tx) error {
	const query = `INSERT INTO credit_ticket_rows
	(ticket_id, row_index, invoice_id, client_code, product_code, unit, total_amount, assigned_amount, weight_pct)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := dbTx.ExecContext(ctx, query, ticketID, i, r.InvoiceID, r.ClientCode, r.ProductCode, r.Unit,
		r.TotalAmount, r.AssignedAmount, r.WeightPct.Round(6))
	return err
}

// SaveTicket writes the ticket and its rows in one database transaction.
func (p *PostgresTicketStore) SaveTicket(ctx context.Context, t models.Ticket) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if err = p.saveHeader(ctx, t, dbTx); err != nil {
		return err
	}
	for i, r := range t.Rows {
		if err = p.saveRow(ctx, t.ID, i, r, dbTx); err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

func (p *PostgresTicketStore) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	const headers = `SELECT id, number, reason, mode, target_amount, created_at
	FROM credit_tickets ORDER BY seq`

	rows, err := p.db.QueryContext(ctx, headers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]models.Ticket, 0)
	index := make(map[string]int)
	for rows.Next() {
		var t models.Ticket
		var mode string
		if err := rows.Scan(&t.ID, &t.Number, &t.Reason, &mode, &t.TargetAmount, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Mode = models.AssignmentMode(mode)
		index[t.ID] = len(tickets)
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := p.loadRows(ctx, tickets, index); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (p *PostgresTicketStore) loadRows(ctx context.Context, tickets []models.Ticket, index map[string]int) error {
	const query = `SELECT ticket_id, invoice_id, client_code, product_code, unit, total_amount, assigned_amount, weight_pct
	FROM credit_ticket_rows ORDER BY ticket_id, row_index`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ticketID string
		var r models.AllocationRow
		if err := rows.Scan(&ticketID, &r.InvoiceID, &r.ClientCode, &r.ProductCode, &r.Unit,
			&r.TotalAmount, &r.AssignedAmount, &r.WeightPct); err != nil {
			return err
		}
		if i, ok := index[ticketID]; ok {
			tickets[i].Rows = append(tickets[i].Rows, r)
		}
	}
	return rows.Err()
}

func (p *PostgresTicketStore) DeleteTicket(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM credit_tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrTicketNotFound
	}
	return nil
}

func (p *PostgresTicketStore) DeleteAllTickets(ctx context.Context) (int, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM credit_tickets`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

var _ interfaces.TicketStore = (*PostgresTicketStore)(nil)
