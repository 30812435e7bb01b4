package booking

import (
	"context"
	"errors"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// ErrSeatUnavailable is returned when no single AVAILABLE segment
// covers the requested interval.  Under concurrent load this is the
// expected outcome for the loser of a race on the same seat; handlers
// surface it as a 4xx asking the user to reselect, never as a system
// error.
var ErrSeatUnavailable = errors.New("seat unavailable for the requested journey")

// ErrInvalidRoute is returned when the boarding stop does not strictly
// precede the departure stop on the train's route.
var ErrInvalidRoute = errors.New("boarding station must precede departure station")

// SegmentLedger is the transaction-scoped view of the segment store
// the allocator operates through.  The MySQL implementation
// (repository.SegmentRepo.Ledger) binds these operations to a *sql.Tx
// and locks rows returned by OverlappingAvailable with
// SELECT ... FOR UPDATE; tests substitute an in-memory ledger.
type SegmentLedger interface {
	// OverlappingAvailable returns the AVAILABLE segments of one seat on
	// one date that strictly overlap [from, to), ordered by FromSeq,
	// locked for the duration of the enclosing transaction.
	OverlappingAvailable(ctx context.Context, seat model.SeatKey, date model.TravelDate, from, to uint32) ([]model.Segment, error)

	// Replace atomically deletes one segment and inserts its
	// replacements.  It must return ErrSeatUnavailable when the delete
	// matches zero rows, which detects a lost-update race.
	Replace(ctx context.Context, oldID uint64, repl []model.Segment) error

	// BookedWithin returns the BOOKED segments of one seat on one date
	// that strictly overlap [from, to), locked like OverlappingAvailable.
	BookedWithin(ctx context.Context, seat model.SeatKey, date model.TravelDate, from, to uint32) ([]model.Segment, error)

	// AdjacentAvailable returns AVAILABLE segments of the seat/date that
	// end exactly at from or start exactly at to.
	AdjacentAvailable(ctx context.Context, seat model.SeatKey, date model.TravelDate, from, to uint32) ([]model.Segment, error)

	// Delete removes segments by ID.
	Delete(ctx context.Context, ids []uint64) error

	// Insert adds new segments.
	Insert(ctx context.Context, segs []model.Segment) error
}

// Allocator books and releases journey legs on the segment ledger.  It
// is stateless; every call runs against a ledger the caller has bound
// to an open transaction, so a multi-passenger booking that fails on
// any seat rolls back as a whole.
type Allocator struct{}

// Allocate books [from, to) on the given seat for one travel date.
// The request must be fully containable inside one AVAILABLE segment;
// a partial overlap, or no overlap at all, fails with
// ErrSeatUnavailable and leaves the ledger untouched.
func (Allocator) Allocate(ctx context.Context, led SegmentLedger, seat model.SeatKey, date model.TravelDate, from, to uint32, quota string) error {
	if from >= to {
		return ErrInvalidRoute
	}
	segs, err := led.OverlappingAvailable(ctx, seat, date, from, to)
	if err != nil {
		return err
	}
	cov, ok := CoveringSegment(segs, from, to)
	if !ok {
		return ErrSeatUnavailable
	}
	return led.Replace(ctx, cov.ID, SplitCovering(cov, from, to, quota))
}

// Release restores the BOOKED segment(s) of [from, to) back to
// AVAILABLE, merging with adjacent AVAILABLE neighbors so repeated
// book/cancel cycles do not fragment the ledger.  Releasing an
// interval with no BOOKED segments is a no-op, which makes the expiry
// sweep safe to re-run.
func (Allocator) Release(ctx context.Context, led SegmentLedger, seat model.SeatKey, date model.TravelDate, from, to uint32) error {
	booked, err := led.BookedWithin(ctx, seat, date, from, to)
	if err != nil {
		return err
	}
	if len(booked) == 0 {
		return nil
	}
	// The released span is the union of the booked rows, not the ticket
	// interval: it protects against ever deleting availability that was
	// never booked.
	relFrom, relTo := booked[0].FromSeq, booked[0].ToSeq
	ids := make([]uint64, 0, len(booked))
	for _, b := range booked {
		if b.FromSeq < relFrom {
			relFrom = b.FromSeq
		}
		if b.ToSeq > relTo {
			relTo = b.ToSeq
		}
		ids = append(ids, b.ID)
	}
	neighbors, err := led.AdjacentAvailable(ctx, seat, date, relFrom, relTo)
	if err != nil {
		return err
	}
	mergedFrom, mergedTo, absorbed := MergedRelease(relFrom, relTo, neighbors)
	if err := led.Delete(ctx, append(ids, absorbed...)); err != nil {
		return err
	}
	return led.Insert(ctx, []model.Segment{{
		Seat:       seat,
		TravelDate: date,
		FromSeq:    mergedFrom,
		ToSeq:      mergedTo,
		Status:     model.SegmentAvailable,
	}})
}
