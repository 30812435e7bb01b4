package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// TrainRepo reads the trains reference table and serves the
// station-to-station availability search.
type TrainRepo struct {
	db *sql.DB
}

// NewTrainRepo returns a TrainRepo bound to the given database.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// ErrTrainNotFound is returned for lookups of trains that do not exist.
var ErrTrainNotFound = errors.New("train not found")

// GetByID returns one train.
func (r *TrainRepo) GetByID(ctx context.Context, trainID uint64) (model.Train, error) {
	var t model.Train
	err := r.db.QueryRowContext(ctx,
		`SELECT train_id, train_name FROM trains WHERE train_id = ?`, trainID).
		Scan(&t.TrainID, &t.TrainName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Train{}, ErrTrainNotFound
		}
		return model.Train{}, err
	}
	return t, nil
}

// AvailableTrain is one row of the station-to-station search: a train
// and class connecting the two stations, with timing, trip distance
// and seat counts for the requested date.
type AvailableTrain struct {
	TrainID        uint64  `json:"train_id"`
	TrainName      string  `json:"train_name"`
	ClassType      string  `json:"class_type"`
	FromDeparture  *string `json:"from_departure,omitempty"`
	ToArrival      *string `json:"to_arrival,omitempty"`
	DistanceKM     float64 `json:"distance_km"`
	BoardingSeq    uint32  `json:"boarding_seq"`
	DepartureSeq   uint32  `json:"departure_seq"`
	TotalSeats     int     `json:"total_seats"`
	AvailableSeats int     `json:"available_seats"`
}

// SearchAvailable lists trains that serve the (from, to) station pair
// in route order, one row per class, with total capacity from
// inventory.  AvailableSeats is filled in by the caller by subtracting
// the booked-seat count for the journey interval; a date with no
// ledger rows yet simply has nothing booked.
func (r *TrainRepo) SearchAvailable(ctx context.Context, fromStation, toStation uint64) ([]AvailableTrain, error) {
	const q = `SELECT t.train_id, t.train_name, si.class_type,
	                  rs_from.departure_time, rs_to.arrival_time,
	                  rs_to.distance_from_source - rs_from.distance_from_source,
	                  rs_from.seq_no, rs_to.seq_no,
	                  SUM(si.total_seats)
	           FROM trains t
	           JOIN route_stations rs_from ON rs_from.train_id = t.train_id AND rs_from.station_id = ?
	           JOIN route_stations rs_to   ON rs_to.train_id = t.train_id AND rs_to.station_id = ?
	                                      AND rs_from.seq_no < rs_to.seq_no
	           JOIN seat_inventory si ON si.train_id = t.train_id
	           GROUP BY t.train_id, t.train_name, si.class_type,
	                    rs_from.departure_time, rs_to.arrival_time,
	                    rs_from.distance_from_source, rs_to.distance_from_source,
	                    rs_from.seq_no, rs_to.seq_no
	           ORDER BY t.train_name, si.class_type`
	rows, err := r.db.QueryContext(ctx, q, fromStation, toStation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]AvailableTrain, 0)
	for rows.Next() {
		var a AvailableTrain
		var dep, arr sql.NullString
		if err := rows.Scan(&a.TrainID, &a.TrainName, &a.ClassType, &dep, &arr,
			&a.DistanceKM, &a.BoardingSeq, &a.DepartureSeq, &a.TotalSeats); err != nil {
			return nil, err
		}
		if dep.Valid {
			v := dep.String
			a.FromDeparture = &v
		}
		if arr.Valid {
			v := arr.String
			a.ToArrival = &v
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
