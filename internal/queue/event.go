// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// TicketConfirmedEvent is published when a payment succeeds and a
// ticket moves to CONFIRMED.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type TicketConfirmedEvent struct {
	TicketID    string   `json:"ticket_id"`
	UserID      string   `json:"user_id"`
	TrainID     uint64   `json:"train_id"`
	TrainName   string   `json:"train_name"`
	TravelDate  string   `json:"travel_date"`
	ClassType   string   `json:"class_type"`
	Seats       []string `json:"seats"`
	TotalAmount int64    `json:"total_amount"`
	ConfirmedAt string   `json:"confirmed_at"`
}
