package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/railway-seat-reservation/internal/booking"
	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// insertChunkRows caps how many segment rows go into a single INSERT
// statement so bulk initialization stays under the server's packet
// limit regardless of coach count.
const insertChunkRows = 500

// SegmentRepo owns the seat_status table: the persisted collection of
// (seat, date, interval, status) rows.  All mutations happen through a
// transaction-scoped Ledger; the repo itself only exposes reads and
// the lazy initialization used by the seat-status path.
type SegmentRepo struct {
	db *sql.DB
}

// NewSegmentRepo returns a SegmentRepo bound to the given database.
func NewSegmentRepo(db *sql.DB) *SegmentRepo { return &SegmentRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *SegmentRepo) DB() *sql.DB { return r.db }

// Ledger binds the segment store to an open transaction, yielding the
// view the allocator and sweeper operate through.  Row locks taken by
// its queries are held until the transaction ends.
func (r *SegmentRepo) Ledger(tx *sql.Tx) *SegmentLedgerTx { return &SegmentLedgerTx{tx: tx} }

// SegmentLedgerTx implements booking.SegmentLedger over a *sql.Tx.
type SegmentLedgerTx struct {
	tx *sql.Tx
}

const segmentCols = `id, train_id, class_type, coach_no, seat_no, travel_date, from_seq_no, to_seq_no, availability_status, quota`

func scanSegment(rows *sql.Rows) (model.Segment, error) {
	var s model.Segment
	var quota sql.NullString
	err := rows.Scan(&s.ID, &s.Seat.TrainID, &s.Seat.ClassType, &s.Seat.CoachNo, &s.Seat.SeatNo,
		&s.TravelDate, &s.FromSeq, &s.ToSeq, &s.Status, &quota)
	if err != nil {
		return model.Segment{}, err
	}
	if quota.Valid {
		s.Quota = quota.String
	}
	return s, nil
}

func (l *SegmentLedgerTx) queryLocked(ctx context.Context, status string, seat model.SeatKey, date model.TravelDate, where string, args ...interface{}) ([]model.Segment, error) {
	q := `SELECT ` + segmentCols + ` FROM seat_status
	      WHERE train_id = ? AND class_type = ? AND coach_no = ? AND seat_no = ? AND travel_date = ?
	        AND availability_status = ? ` + where + `
	      ORDER BY from_seq_no
	      FOR UPDATE`
	base := []interface{}{seat.TrainID, seat.ClassType, seat.CoachNo, seat.SeatNo, date.String(), status}
	rows, err := l.tx.QueryContext(ctx, q, append(base, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var segs []model.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segs = append(segs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}

// OverlappingAvailable returns the AVAILABLE segments of one seat/date
// strictly overlapping [from, to), locked FOR UPDATE.  The lock on the
// covering segment is what serializes two bookings racing for
// overlapping intervals of the same seat.
func (l *SegmentLedgerTx) OverlappingAvailable(ctx context.Context, seat model.SeatKey, date model.TravelDate, from, to uint32) ([]model.Segment, error) {
	return l.queryLocked(ctx, model.SegmentAvailable, seat, date,
		`AND from_seq_no < ? AND to_seq_no > ?`, to, from)
}

// BookedWithin returns the BOOKED segments of one seat/date strictly
// overlapping [from, to), locked FOR UPDATE.
func (l *SegmentLedgerTx) BookedWithin(ctx context.Context, seat model.SeatKey, date model.TravelDate, from, to uint32) ([]model.Segment, error) {
	return l.queryLocked(ctx, model.SegmentBooked, seat, date,
		`AND from_seq_no < ? AND to_seq_no > ?`, to, from)
}

// AdjacentAvailable returns AVAILABLE segments that touch [from, to)
// at either boundary, locked FOR UPDATE so the merge-on-release cannot
// race a concurrent split of the same neighbor.
func (l *SegmentLedgerTx) AdjacentAvailable(ctx context.Context, seat model.SeatKey, date model.TravelDate, from, to uint32) ([]model.Segment, error) {
	return l.queryLocked(ctx, model.SegmentAvailable, seat, date,
		`AND (to_seq_no = ? OR from_seq_no = ?)`, from, to)
}

// Replace atomically deletes one segment and inserts its replacements.
// A delete matching zero rows means another transaction already
// consumed the segment; that lost-update race surfaces as
// booking.ErrSeatUnavailable so the caller rolls back cleanly.
func (l *SegmentLedgerTx) Replace(ctx context.Context, oldID uint64, repl []model.Segment) error {
	res, err := l.tx.ExecContext(ctx, `DELETE FROM seat_status WHERE id = ?`, oldID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrSeatUnavailable
	}
	return l.Insert(ctx, repl)
}

// Delete removes segments by ID.
func (l *SegmentLedgerTx) Delete(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	q := `DELETE FROM seat_status WHERE id IN (`
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += ")"
	_, err := l.tx.ExecContext(ctx, q, args...)
	return err
}

// Insert adds segment rows in one statement.  The uniqueness key on
// (train, class, coach, seat, date, from_seq_no) rejects duplicate
// intervals; a violation is reported as booking.ErrSeatUnavailable
// because it means a concurrent writer got there first.
func (l *SegmentLedgerTx) Insert(ctx context.Context, segs []model.Segment) error {
	if len(segs) == 0 {
		return nil
	}
	q := `INSERT INTO seat_status (train_id, class_type, coach_no, seat_no, travel_date, from_seq_no, to_seq_no, availability_status, quota) VALUES `
	args := make([]interface{}, 0, len(segs)*9)
	for i, s := range segs {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		var quota interface{}
		if s.Quota != "" {
			quota = s.Quota
		}
		args = append(args, s.Seat.TrainID, s.Seat.ClassType, s.Seat.CoachNo, s.Seat.SeatNo,
			s.TravelDate.String(), s.FromSeq, s.ToSeq, s.Status, quota)
	}
	if _, err := l.tx.ExecContext(ctx, q, args...); err != nil {
		if IsDuplicateKey(err) {
			return booking.ErrSeatUnavailable
		}
		return err
	}
	return nil
}

// SegmentsForClass returns all segments of every seat of one
// (train, class) on one date, ordered by coach, seat and interval.
// Read-only; used by the seat-status endpoint after initialization.
func (r *SegmentRepo) SegmentsForClass(ctx context.Context, trainID uint64, classType string, date model.TravelDate) ([]model.Segment, error) {
	const q = `SELECT ` + segmentCols + ` FROM seat_status
	           WHERE train_id = ? AND class_type = ? AND travel_date = ?
	           ORDER BY coach_no, seat_no, from_seq_no`
	rows, err := r.db.QueryContext(ctx, q, trainID, classType, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var segs []model.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segs = append(segs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}

// InitializeIfEmptyTx materializes the ledger for (train, class, date)
// on first access: one full-route AVAILABLE segment [1, maxSeq) per
// seat drawn from inventory.  The caller must have locked the
// inventory rows for the pair (InventoryRepo.ForClassTx with
// forUpdate) in the same transaction; that lock serializes concurrent
// first-time initializations and the uniqueness key on from_seq_no is
// the backstop.  Inserts are chunked to respect packet limits.  Returns
// the number of seats initialized, zero when segments already exist.
func (r *SegmentRepo) InitializeIfEmptyTx(ctx context.Context, tx *sql.Tx, trainID uint64, classType string, date model.TravelDate, inventory []model.SeatInventory, maxSeq uint32) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seat_status WHERE train_id = ? AND class_type = ? AND travel_date = ?`,
		trainID, classType, date.String()).Scan(&n)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	led := &SegmentLedgerTx{tx: tx}
	return expandInitialSegments(trainID, classType, date, inventory, maxSeq, func(batch []model.Segment) error {
		return led.Insert(ctx, batch)
	})
}

// expandInitialSegments builds the first-access rows for every seat in
// inventory: one AVAILABLE segment spanning the full route [1, maxSeq).
// Rows are handed to emit in batches of at most insertChunkRows; the
// batch slice is reused between calls, so emit must not retain it.
// Returns the number of seats expanded.
func expandInitialSegments(trainID uint64, classType string, date model.TravelDate, inventory []model.SeatInventory, maxSeq uint32, emit func([]model.Segment) error) (int, error) {
	batch := make([]model.Segment, 0, insertChunkRows)
	seats := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := emit(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}
	for _, inv := range inventory {
		for seat := uint32(1); seat <= inv.TotalSeats; seat++ {
			batch = append(batch, model.Segment{
				Seat: model.SeatKey{
					TrainID:   trainID,
					ClassType: classType,
					CoachNo:   inv.CoachNo,
					SeatNo:    seat,
				},
				TravelDate: date,
				FromSeq:    1,
				ToSeq:      maxSeq,
				Status:     model.SegmentAvailable,
			})
			seats++
			if len(batch) == insertChunkRows {
				if err := flush(); err != nil {
					return 0, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return seats, nil
}

// BookedSeatCount returns how many distinct seats of (train, class,
// date) carry a BOOKED segment overlapping [from, to).  Under the
// partition invariant with merge-on-release this is exactly the number
// of seats not offerable for that journey, which the train search
// subtracts from inventory capacity.
func (r *SegmentRepo) BookedSeatCount(ctx context.Context, trainID uint64, classType string, date model.TravelDate, from, to uint32) (int, error) {
	const q = `SELECT COUNT(DISTINCT coach_no, seat_no) FROM seat_status
	           WHERE train_id = ? AND class_type = ? AND travel_date = ?
	             AND availability_status = 'BOOKED'
	             AND from_seq_no < ? AND to_seq_no > ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, trainID, classType, date.String(), to, from).Scan(&n)
	return n, err
}
