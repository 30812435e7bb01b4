package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Availability states of a seat segment.  Every row in the seat_status
// table carries exactly one of these values.
const (
	SegmentAvailable = "AVAILABLE"
	SegmentBooked    = "BOOKED"
)

// QuotaGeneral is the default booking channel recorded on BOOKED
// segments.  The quota is a channel tag only; it does not partition the
// ledger.
const QuotaGeneral = "GENERAL"

// SeatKey identifies one physical seat within one class of one train,
// independent of travel date.
//
// Fields:
//  TrainID   – train the seat belongs to.
//  ClassType – travel class (e.g. SL, 3A, 2A).
//  CoachNo   – coach label within the class (e.g. "S1").
//  SeatNo    – seat number within the coach.
type SeatKey struct {
	TrainID   uint64
	ClassType string
	CoachNo   string
	SeatNo    uint32
}

// Label renders the seat identity in the denormalized "coach-seat" form
// stored on passenger rows (e.g. "S1-14").
func (k SeatKey) Label() string {
	return fmt.Sprintf("%s-%d", k.CoachNo, k.SeatNo)
}

// ParseSeatLabel splits a "coach-seat" label back into its coach and
// seat number parts.  The seat number is everything after the last dash
// so coach labels may not contain digits-only suffix ambiguity; labels
// are always produced by SeatKey.Label.
func ParseSeatLabel(label string) (coachNo string, seatNo uint32, err error) {
	i := strings.LastIndex(label, "-")
	if i <= 0 || i == len(label)-1 {
		return "", 0, fmt.Errorf("malformed seat label %q", label)
	}
	n, err := strconv.ParseUint(label[i+1:], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("malformed seat label %q", label)
	}
	return label[:i], uint32(n), nil
}

// Segment is the atomic unit of the seat ledger: a contiguous
// half-open interval [FromSeq, ToSeq) of route sequence numbers for one
// seat on one travel date, tagged AVAILABLE or BOOKED.  For a fixed
// (seat, travel date) the segments partition the full route with no
// gaps and no overlaps.
type Segment struct {
	ID         uint64     // seat_status.id
	Seat       SeatKey    // train_id, class_type, coach_no, seat_no columns
	TravelDate TravelDate // seat_status.travel_date
	FromSeq    uint32     // seat_status.from_seq_no (inclusive)
	ToSeq      uint32     // seat_status.to_seq_no (exclusive)
	Status     string     // seat_status.availability_status
	Quota      string     // seat_status.quota, set on BOOKED rows
}

// Covers reports whether the segment fully contains [from, to).
func (s Segment) Covers(from, to uint32) bool {
	return s.FromSeq <= from && s.ToSeq >= to
}

// Overlaps reports strict interval intersection with [from, to).
func (s Segment) Overlaps(from, to uint32) bool {
	return s.FromSeq < to && s.ToSeq > from
}

// TravelDate is a calendar date in "YYYY-MM-DD" form.  It is validated
// at the HTTP boundary so the core only ever sees well-formed dates.
type TravelDate string

// ErrBadDate is returned by ParseTravelDate for values that are not a
// valid calendar date.
var ErrBadDate = errors.New("invalid travel date")

// ParseTravelDate validates and normalizes a date string.
func ParseTravelDate(s string) (TravelDate, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return "", ErrBadDate
	}
	return TravelDate(t.Format("2006-01-02")), nil
}

func (d TravelDate) String() string { return string(d) }
