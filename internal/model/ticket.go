package model

import "time"

// Ticket lifecycle states.  PENDING tickets either confirm on payment,
// expire via the sweeper, or are cancelled by the user.  CANCELLED is
// terminal; CONFIRMED tickets may still be cancelled.
const (
	TicketPending   = "PENDING"
	TicketConfirmed = "CONFIRMED"
	TicketCancelled = "CANCELLED"
	TicketExpired   = "EXPIRED"
)

// Ticket represents one purchase transaction on the tickets table.  It
// owns one or more Passenger rows and references its boarding and
// departure stations by ID.  The boarding/departure sequence numbers of
// the journey are not stored; they are re-derived from route_stations
// whenever segments must be located again (cancellation, expiry).
type Ticket struct {
	TicketID           string     // tickets.ticket_id (UUID)
	UserID             string     // tickets.user_id
	TrainID            uint64     // tickets.train_id
	BookingDate        time.Time  // tickets.booking_date
	TravelDate         TravelDate // tickets.travel_date
	NumOfPassengers    int        // tickets.num_of_passengers
	ClassType          string     // tickets.class_type
	Status             string     // tickets.status
	BoardingStationID  uint64     // tickets.boarding_station_id
	DepartureStationID uint64     // tickets.departure_station_id
	TotalAmount        int64      // tickets.total_amount
	CreatedAt          time.Time  // tickets.created_at
}

// Passenger is one traveller on a ticket.  SeatAllocated carries the
// seat identity by value in "coach-seat" form; the allocator writes it
// when the seat segment is booked and the sweeper parses it back when
// releasing.
type Passenger struct {
	ID            uint64  // passengers.id
	TicketID      string  // passengers.ticket_id
	Name          string  // passengers.name
	Age           *uint8  // passengers.age (nullable)
	SeatAllocated string  // passengers.seat_allocated
}

// Payment records a successful (simulated) payment against a ticket.
type Payment struct {
	PaymentID   string    // payments.payment_id (UUID)
	TicketID    string    // payments.ticket_id
	Amount      int64     // payments.amount
	PaymentDate time.Time // payments.payment_date
	Status      string    // payments.status
	Mode        string    // payments.mode
}
