package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// PaymentRepo records simulated payments against tickets.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment row within an existing transaction.  The
// payment date is set by the database; the caller supplies the
// generated PaymentID.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (payment_id, ticket_id, amount, payment_date, status, mode)
	           VALUES (?, ?, ?, NOW(), ?, ?)`
	_, err := tx.ExecContext(ctx, q, p.PaymentID, p.TicketID, p.Amount, p.Status, p.Mode)
	return err
}
