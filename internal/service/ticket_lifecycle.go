// Package service holds orchestration that spans repositories: the
// ticket lifecycle (cancellation and expiry, both of which release
// seat segments) and event publishing.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/railway-seat-reservation/internal/booking"
	"github.com/iliyamo/railway-seat-reservation/internal/model"
	"github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// TicketLifecycle reverses allocations: it cancels tickets on user
// request and expires stale PENDING tickets for the sweeper.  Both
// paths run the status transition and the segment release in one
// transaction, so a ticket is never marked released while its seats
// stay BOOKED or vice versa.  It implements booking.SweeperStore.
type TicketLifecycle struct {
	DB       *sql.DB
	Tickets  *repository.TicketRepo
	Segments *repository.SegmentRepo
	Routes   *repository.RouteRepo
	Alloc    booking.Allocator
}

// NewTicketLifecycle constructs a TicketLifecycle.  All dependencies
// must be non-nil.
func NewTicketLifecycle(db *sql.DB, tickets *repository.TicketRepo, segments *repository.SegmentRepo, routes *repository.RouteRepo) *TicketLifecycle {
	if db == nil || tickets == nil || segments == nil || routes == nil {
		panic("nil dependency passed to NewTicketLifecycle")
	}
	return &TicketLifecycle{DB: db, Tickets: tickets, Segments: segments, Routes: routes}
}

// releaseSegmentsTx restores every BOOKED segment belonging to the
// ticket's passengers back to AVAILABLE, merging with adjacent
// availability.  The journey interval is re-derived from the route
// index; the seat identities come from the denormalized labels on the
// passenger rows.
func (l *TicketLifecycle) releaseSegmentsTx(ctx context.Context, tx *sql.Tx, t model.Ticket) error {
	fromSeq, toSeq, _, err := l.Routes.Trip(ctx, t.TrainID, t.BoardingStationID, t.DepartureStationID)
	if err != nil {
		return err
	}
	passengers, err := l.Tickets.PassengersTx(ctx, tx, t.TicketID)
	if err != nil {
		return err
	}
	led := l.Segments.Ledger(tx)
	for _, p := range passengers {
		if p.SeatAllocated == "" {
			continue
		}
		coachNo, seatNo, err := model.ParseSeatLabel(p.SeatAllocated)
		if err != nil {
			return err
		}
		seat := model.SeatKey{
			TrainID:   t.TrainID,
			ClassType: t.ClassType,
			CoachNo:   coachNo,
			SeatNo:    seatNo,
		}
		if err := l.Alloc.Release(ctx, led, seat, t.TravelDate, fromSeq, toSeq); err != nil {
			return err
		}
	}
	return nil
}

// Cancel transitions a PENDING or CONFIRMED ticket of the given user
// to CANCELLED and releases its seat segments.  It returns
// repository.ErrTicketNotFound, repository.ErrForbidden or
// repository.ErrNotCancelable for the respective failure cases.
func (l *TicketLifecycle) Cancel(ctx context.Context, ticketID, userID string) error {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	t, err := l.Tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return repository.ErrForbidden
	}
	if t.Status != model.TicketPending && t.Status != model.TicketConfirmed {
		return repository.ErrNotCancelable
	}
	if err := l.releaseSegmentsTx(ctx, tx, t); err != nil {
		return err
	}
	if _, err := l.Tickets.UpdateStatusTx(ctx, tx, ticketID, model.TicketCancelled,
		model.TicketPending, model.TicketConfirmed); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// StalePending lists PENDING tickets created before the cutoff.
func (l *TicketLifecycle) StalePending(ctx context.Context, cutoff time.Time) ([]model.Ticket, error) {
	return l.Tickets.StalePending(ctx, cutoff)
}

// ExpireTicket transitions one stale PENDING ticket to EXPIRED and
// releases its segments.  Tickets that already left PENDING (paid,
// cancelled, or expired by a concurrent sweep) are left untouched, so
// re-running the sweep over the same batch is a no-op.
func (l *TicketLifecycle) ExpireTicket(ctx context.Context, t model.Ticket) error {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	cur, err := l.Tickets.GetForUpdateTx(ctx, tx, t.TicketID)
	if err != nil {
		return err
	}
	if cur.Status != model.TicketPending {
		return nil
	}
	if err := l.releaseSegmentsTx(ctx, tx, cur); err != nil {
		return err
	}
	if _, err := l.Tickets.UpdateStatusTx(ctx, tx, cur.TicketID, model.TicketExpired, model.TicketPending); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
