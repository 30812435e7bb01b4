package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// TicketRepo provides CRUD operations for tickets and their passenger
// rows.  A ticket groups the passengers of one purchase; passenger
// rows carry the allocated seat by value as a "coach-seat" label.
// All timestamp fields are stored in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a ticket within the scope of an existing
// transaction.  The caller supplies the generated TicketID (UUID) and
// must commit or roll back the transaction.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets
	           (ticket_id, user_id, train_id, booking_date, travel_date, num_of_passengers,
	            class_type, status, boarding_station_id, departure_station_id, total_amount)
	           VALUES (?, ?, ?, CURDATE(), ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		t.TicketID, t.UserID, t.TrainID, t.TravelDate.String(), t.NumOfPassengers,
		t.ClassType, t.Status, t.BoardingStationID, t.DepartureStationID, t.TotalAmount)
	return err
}

// CreatePassengersBulkTx inserts the passenger rows of one ticket in a
// single statement.  Passing an empty slice has no effect.
func (r *TicketRepo) CreatePassengersBulkTx(ctx context.Context, tx *sql.Tx, passengers []model.Passenger) error {
	if len(passengers) == 0 {
		return nil
	}
	q := `INSERT INTO passengers (ticket_id, name, age, seat_allocated) VALUES `
	args := make([]interface{}, 0, len(passengers)*4)
	for i, p := range passengers {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?)"
		var age interface{}
		if p.Age != nil {
			age = *p.Age
		}
		args = append(args, p.TicketID, p.Name, age, p.SeatAllocated)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

func scanTicket(scan func(dest ...interface{}) error) (model.Ticket, error) {
	var t model.Ticket
	var travelDate string
	err := scan(&t.TicketID, &t.UserID, &t.TrainID, &t.BookingDate, &travelDate,
		&t.NumOfPassengers, &t.ClassType, &t.Status, &t.BoardingStationID,
		&t.DepartureStationID, &t.TotalAmount, &t.CreatedAt)
	if err != nil {
		return model.Ticket{}, err
	}
	// With parseTime=true a DATE scans into string as RFC3339; keep the
	// calendar part only.
	if len(travelDate) >= 10 {
		travelDate = travelDate[:10]
	}
	t.TravelDate = model.TravelDate(travelDate)
	return t, nil
}

const ticketCols = `ticket_id, user_id, train_id, booking_date, travel_date, num_of_passengers,
                    class_type, status, boarding_station_id, departure_station_id, total_amount, created_at`

// ListByUser returns all tickets of one user, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID string) ([]model.Ticket, error) {
	q := `SELECT ` + ticketCols + ` FROM tickets WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetForUpdateTx loads one ticket inside a transaction with a row
// lock, so a cancellation and the expiry sweep cannot both release the
// same ticket's segments.  ErrTicketNotFound when it does not exist.
func (r *TicketRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, ticketID string) (model.Ticket, error) {
	q := `SELECT ` + ticketCols + ` FROM tickets WHERE ticket_id = ? FOR UPDATE`
	t, err := scanTicket(tx.QueryRowContext(ctx, q, ticketID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Ticket{}, ErrTicketNotFound
		}
		return model.Ticket{}, err
	}
	return t, nil
}

// PassengersTx returns the passenger rows of one ticket within a
// transaction, ordered by insertion.
func (r *TicketRepo) PassengersTx(ctx context.Context, tx *sql.Tx, ticketID string) ([]model.Passenger, error) {
	const q = `SELECT id, ticket_id, name, age, seat_allocated FROM passengers WHERE ticket_id = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var passengers []model.Passenger
	for rows.Next() {
		var p model.Passenger
		var age sql.NullInt64
		if err := rows.Scan(&p.ID, &p.TicketID, &p.Name, &age, &p.SeatAllocated); err != nil {
			return nil, err
		}
		if age.Valid {
			v := uint8(age.Int64)
			p.Age = &v
		}
		passengers = append(passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passengers, nil
}

// UpdateStatusTx transitions a ticket's status, guarded by the allowed
// source states.  It returns false when the ticket was not in any of
// them, which keeps the transition idempotent under concurrent sweeps.
func (r *TicketRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, ticketID, to string, from ...string) (bool, error) {
	q := `UPDATE tickets SET status = ? WHERE ticket_id = ? AND status IN (`
	args := []interface{}{to, ticketID}
	for i, s := range from {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, s)
	}
	q += ")"
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ConfirmTx marks a PENDING ticket CONFIRMED.  Used by the payment
// path; returns false when the ticket already left PENDING.
func (r *TicketRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, ticketID string) (bool, error) {
	return r.UpdateStatusTx(ctx, tx, ticketID, model.TicketConfirmed, model.TicketPending)
}

// StalePending returns PENDING tickets created before the cutoff.
// Read-only; the sweeper expires each one in its own transaction.
func (r *TicketRepo) StalePending(ctx context.Context, cutoff time.Time) ([]model.Ticket, error) {
	q := `SELECT ` + ticketCols + ` FROM tickets WHERE status = ? AND created_at < ?`
	rows, err := r.db.QueryContext(ctx, q, model.TicketPending, cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tickets []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// PassengerDetail is one passenger as rendered on a ticket detail.
type PassengerDetail struct {
	Name          string `json:"name"`
	Age           *uint8 `json:"age,omitempty"`
	SeatAllocated string `json:"seat_allocated"`
}

// TicketDetail is a ticket joined with train, station and payment
// information plus its passengers, returned by the ticket endpoint.
type TicketDetail struct {
	TicketID         string            `json:"ticket_id"`
	UserID           string            `json:"user_id"`
	TrainID          uint64            `json:"train_id"`
	TrainName        *string           `json:"train_name,omitempty"`
	BookingDate      time.Time         `json:"booking_date"`
	TravelDate       string            `json:"travel_date"`
	NumOfPassengers  int               `json:"num_of_passengers"`
	ClassType        string            `json:"class_type"`
	Status           string            `json:"status"`
	BoardingStation  *string           `json:"boarding_station,omitempty"`
	DepartureStation *string           `json:"departure_station,omitempty"`
	TotalAmount      int64             `json:"total_amount"`
	PaymentID        *string           `json:"payment_id,omitempty"`
	PaymentDate      *time.Time        `json:"payment_date,omitempty"`
	PaymentMode      *string           `json:"payment_mode,omitempty"`
	Passengers       []PassengerDetail `json:"passengers"`
}

// GetDetail loads one ticket with train, station and payment info and
// its passengers.  ErrTicketNotFound when it does not exist; ownership
// is checked by the handler against UserID.
func (r *TicketRepo) GetDetail(ctx context.Context, ticketID string) (*TicketDetail, error) {
	const q = `SELECT t.ticket_id, t.user_id, t.train_id, tr.train_name,
	                  t.booking_date, t.travel_date, t.num_of_passengers, t.class_type, t.status,
	                  bs.station_name, ds.station_name, t.total_amount,
	                  p.payment_id, p.payment_date, p.mode
	           FROM tickets t
	           LEFT JOIN trains tr ON tr.train_id = t.train_id
	           LEFT JOIN stations bs ON bs.station_id = t.boarding_station_id
	           LEFT JOIN stations ds ON ds.station_id = t.departure_station_id
	           LEFT JOIN payments p ON p.ticket_id = t.ticket_id
	           WHERE t.ticket_id = ?`
	var det TicketDetail
	var trainName, boarding, departure, payID, payMode sql.NullString
	var travelDate string
	var payDate sql.NullTime
	err := r.db.QueryRowContext(ctx, q, ticketID).Scan(
		&det.TicketID, &det.UserID, &det.TrainID, &trainName,
		&det.BookingDate, &travelDate, &det.NumOfPassengers, &det.ClassType, &det.Status,
		&boarding, &departure, &det.TotalAmount,
		&payID, &payDate, &payMode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if len(travelDate) >= 10 {
		travelDate = travelDate[:10]
	}
	det.TravelDate = travelDate
	if trainName.Valid {
		det.TrainName = &trainName.String
	}
	if boarding.Valid {
		det.BoardingStation = &boarding.String
	}
	if departure.Valid {
		det.DepartureStation = &departure.String
	}
	if payID.Valid {
		det.PaymentID = &payID.String
	}
	if payDate.Valid {
		det.PaymentDate = &payDate.Time
	}
	if payMode.Valid {
		det.PaymentMode = &payMode.String
	}
	det.Passengers = []PassengerDetail{}
	const pq = `SELECT name, age, seat_allocated FROM passengers WHERE ticket_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, pq, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p PassengerDetail
		var age sql.NullInt64
		if err := rows.Scan(&p.Name, &age, &p.SeatAllocated); err != nil {
			return nil, err
		}
		if age.Valid {
			v := uint8(age.Int64)
			p.Age = &v
		}
		det.Passengers = append(det.Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}
