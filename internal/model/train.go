package model

// Train is a row of the trains reference table.
type Train struct {
	TrainID   uint64 // trains.train_id
	TrainName string // trains.train_name
}

// Station is a row of the stations reference table.
type Station struct {
	StationID   uint64 // stations.station_id
	StationName string // stations.station_name
	City        string // stations.city
}

// RouteStop is one ordered stop on a train's fixed route.  SeqNo is the
// 1-based ordinal position along the route and is strictly increasing;
// DistanceFromSource is non-decreasing.  Together they form the
// coordinate system all segment intervals are expressed in.
type RouteStop struct {
	TrainID            uint64  // route_stations.train_id
	StationID          uint64  // route_stations.station_id
	SeqNo              uint32  // route_stations.seq_no
	DistanceFromSource float64 // route_stations.distance_from_source (km)
	ArrivalTime        *string // route_stations.arrival_time (nullable)
	DepartureTime      *string // route_stations.departure_time (nullable)
}

// SeatInventory configures capacity and pricing for one coach of one
// class on one train.  It is the source both of the seat set expanded
// on lazy ledger initialization and of the per-km base fare.
type SeatInventory struct {
	TrainID       uint64  // seat_inventory.train_id
	ClassType     string  // seat_inventory.class_type
	CoachNo       string  // seat_inventory.coach_no
	TotalSeats    uint32  // seat_inventory.total_seats
	BaseFarePerKM float64 // seat_inventory.base_fare_per_km
}
