package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// InventoryRepo reads the seat_inventory table: coach layout, capacity
// and the per-km base fare for each (train, class) pair.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns an InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

const inventoryQ = `SELECT train_id, class_type, coach_no, total_seats, base_fare_per_km
                    FROM seat_inventory
                    WHERE train_id = ? AND class_type = ?
                    ORDER BY coach_no`

func collectInventory(rows *sql.Rows) ([]model.SeatInventory, error) {
	defer rows.Close()
	var inv []model.SeatInventory
	for rows.Next() {
		var i model.SeatInventory
		if err := rows.Scan(&i.TrainID, &i.ClassType, &i.CoachNo, &i.TotalSeats, &i.BaseFarePerKM); err != nil {
			return nil, err
		}
		inv = append(inv, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(inv) == 0 {
		return nil, ErrInventoryMissing
	}
	return inv, nil
}

// ForClass returns the coach inventory for a (train, class) pair.
// ErrInventoryMissing when none is configured.
func (r *InventoryRepo) ForClass(ctx context.Context, trainID uint64, classType string) ([]model.SeatInventory, error) {
	rows, err := r.db.QueryContext(ctx, inventoryQ, trainID, classType)
	if err != nil {
		return nil, err
	}
	return collectInventory(rows)
}

// ForClassTx is ForClass inside an existing transaction.  With
// forUpdate the inventory rows are locked for the duration of the
// transaction; the lazy ledger initialization takes this lock first so
// concurrent first-time accesses for the same (train, class, date)
// serialize on it instead of double-inserting.
func (r *InventoryRepo) ForClassTx(ctx context.Context, tx *sql.Tx, trainID uint64, classType string, forUpdate bool) ([]model.SeatInventory, error) {
	q := inventoryQ
	if forUpdate {
		q += " FOR UPDATE"
	}
	rows, err := tx.QueryContext(ctx, q, trainID, classType)
	if err != nil {
		return nil, err
	}
	return collectInventory(rows)
}

// BaseFare returns the per-km base fare for a (train, class) pair.
// Missing inventory is a hard error; the fare is never defaulted.
func (r *InventoryRepo) BaseFare(ctx context.Context, trainID uint64, classType string) (float64, error) {
	var fare float64
	err := r.db.QueryRowContext(ctx,
		`SELECT base_fare_per_km FROM seat_inventory WHERE train_id = ? AND class_type = ? LIMIT 1`,
		trainID, classType).Scan(&fare)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInventoryMissing
		}
		return 0, err
	}
	return fare, nil
}
