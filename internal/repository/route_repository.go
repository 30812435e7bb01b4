package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/railway-seat-reservation/internal/booking"
	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// RouteRepo is the route index: it maps (train, station) to the
// sequence-number/distance coordinate system all segment math is
// expressed in.  Route data is immutable reference data, so every
// method is a plain read.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo returns a RouteRepo bound to the given database.
func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

// Stop returns the route stop for one station of one train.  It
// returns ErrStationNotOnRoute when the station is not part of the
// train's route.
func (r *RouteRepo) Stop(ctx context.Context, trainID, stationID uint64) (model.RouteStop, error) {
	const q = `SELECT train_id, station_id, seq_no, distance_from_source, arrival_time, departure_time
	           FROM route_stations
	           WHERE train_id = ? AND station_id = ? LIMIT 1`
	var s model.RouteStop
	var arr, dep sql.NullString
	err := r.db.QueryRowContext(ctx, q, trainID, stationID).Scan(
		&s.TrainID, &s.StationID, &s.SeqNo, &s.DistanceFromSource, &arr, &dep,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RouteStop{}, ErrStationNotOnRoute
		}
		return model.RouteStop{}, err
	}
	if arr.Valid {
		v := arr.String
		s.ArrivalTime = &v
	}
	if dep.Valid {
		v := dep.String
		s.DepartureTime = &v
	}
	return s, nil
}

// Trip resolves a (boarding, departure) station pair into the journey
// interval [boardingSeq, departureSeq) and the trip distance in km.
// Boarding must strictly precede departure along the route and the
// distance must be positive; otherwise booking.ErrInvalidRoute is
// returned.
func (r *RouteRepo) Trip(ctx context.Context, trainID, boardingID, departureID uint64) (boardSeq, depSeq uint32, distanceKM float64, err error) {
	board, err := r.Stop(ctx, trainID, boardingID)
	if err != nil {
		return 0, 0, 0, err
	}
	dep, err := r.Stop(ctx, trainID, departureID)
	if err != nil {
		return 0, 0, 0, err
	}
	distanceKM = dep.DistanceFromSource - board.DistanceFromSource
	if board.SeqNo >= dep.SeqNo || distanceKM <= 0 {
		return 0, 0, 0, booking.ErrInvalidRoute
	}
	return board.SeqNo, dep.SeqNo, distanceKM, nil
}

// MaxSeq returns the sequence number of the train's final stop, the
// upper bound of the route coordinate space.  A fresh seat's full
// availability is the single segment [1, MaxSeq).
func (r *RouteRepo) MaxSeq(ctx context.Context, trainID uint64) (uint32, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(seq_no) FROM route_stations WHERE train_id = ?`, trainID).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid || max.Int64 < 2 {
		return 0, ErrStationNotOnRoute
	}
	return uint32(max.Int64), nil
}

// RouteStopDetail is a route stop joined with its station record, used
// by the train-details endpoint.
type RouteStopDetail struct {
	TrainID            uint64  `json:"train_id"`
	StationID          uint64  `json:"station_id"`
	SeqNo              uint32  `json:"seq_no"`
	DistanceFromSource float64 `json:"distance_from_source"`
	ArrivalTime        *string `json:"arrival_time,omitempty"`
	DepartureTime      *string `json:"departure_time,omitempty"`
	StationName        string  `json:"station_name"`
	City               string  `json:"city"`
}

// Route returns the ordered stops of one train with station names.
func (r *RouteRepo) Route(ctx context.Context, trainID uint64) ([]RouteStopDetail, error) {
	const q = `SELECT rs.train_id, rs.station_id, rs.seq_no, rs.distance_from_source,
	                  rs.arrival_time, rs.departure_time, s.station_name, s.city
	           FROM route_stations rs
	           JOIN stations s ON s.station_id = rs.station_id
	           WHERE rs.train_id = ?
	           ORDER BY rs.seq_no`
	rows, err := r.db.QueryContext(ctx, q, trainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stops := make([]RouteStopDetail, 0)
	for rows.Next() {
		var d RouteStopDetail
		var arr, dep sql.NullString
		if err := rows.Scan(&d.TrainID, &d.StationID, &d.SeqNo, &d.DistanceFromSource,
			&arr, &dep, &d.StationName, &d.City); err != nil {
			return nil, err
		}
		if arr.Valid {
			v := arr.String
			d.ArrivalTime = &v
		}
		if dep.Valid {
			v := dep.String
			d.DepartureTime = &v
		}
		stops = append(stops, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stops, nil
}
