package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-seat-reservation/internal/booking"
	"github.com/iliyamo/railway-seat-reservation/internal/middleware"
	"github.com/iliyamo/railway-seat-reservation/internal/model"
	"github.com/iliyamo/railway-seat-reservation/internal/repository"
	"github.com/iliyamo/railway-seat-reservation/internal/service"
)

// allocateAttempts bounds transaction retries on deadlock or lock wait
// timeout before the request fails.
const allocateAttempts = 3

// BookingHandler creates tickets, lists a user's bookings and cancels
// tickets.  Creation runs ticket insert and per-seat allocation in a
// single transaction so a losing race leaves no partial booking.
type BookingHandler struct {
	Tickets   *repository.TicketRepo
	Routes    *repository.RouteRepo
	Inventory *repository.InventoryRepo
	Segments  *repository.SegmentRepo
	Lifecycle *service.TicketLifecycle

	alloc booking.Allocator
}

func NewBookingHandler(t *repository.TicketRepo, r *repository.RouteRepo, i *repository.InventoryRepo, s *repository.SegmentRepo, l *service.TicketLifecycle) *BookingHandler {
	if t == nil || r == nil || i == nil || s == nil || l == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Tickets: t, Routes: r, Inventory: i, Segments: s, Lifecycle: l}
}

type passengerReq struct {
	Name    string `json:"name"`
	Age     *uint8 `json:"age"`
	CoachNo string `json:"coach_no"`
	SeatNo  uint32 `json:"seat_no"`
}

type createBookingReq struct {
	TrainID            uint64         `json:"train_id"`
	TravelDate         string         `json:"travel_date"`
	ClassType          string         `json:"class_type"`
	BoardingStationID  uint64         `json:"boarding_station_id"`
	DepartureStationID uint64         `json:"departure_station_id"`
	Passengers         []passengerReq `json:"passengers"`
}

// Create handles POST /api/bookings/create.
func (h *BookingHandler) Create(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TrainID == 0 || req.ClassType == "" || req.BoardingStationID == 0 || req.DepartureStationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "train_id, class_type and station ids are required"})
	}
	if len(req.Passengers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one passenger is required"})
	}
	for _, p := range req.Passengers {
		if p.Name == "" || p.CoachNo == "" || p.SeatNo == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "please select a seat for all passengers"})
		}
	}
	date, err := model.ParseTravelDate(req.TravelDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid travel_date, expected YYYY-MM-DD"})
	}

	ctx := c.Request().Context()
	boardSeq, depSeq, distanceKM, err := h.Routes.Trip(ctx, req.TrainID, req.BoardingStationID, req.DepartureStationID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStationNotOnRoute), errors.Is(err, booking.ErrInvalidRoute):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	maxSeq, err := h.Routes.MaxSeq(ctx, req.TrainID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var ticketID string
	var total int64
	for attempt := 0; attempt < allocateAttempts; attempt++ {
		ticketID, total, err = h.createTx(ctx, userID, req, date, boardSeq, depSeq, distanceKM, maxSeq)
		if err == nil || !repository.IsLockConflict(err) {
			break
		}
		if attempt == allocateAttempts-1 {
			break
		}
		if werr := retryBackoff(ctx, attempt); werr != nil {
			err = werr
			break
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrSeatUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "selected seat is no longer available for this route, please try again"})
		case errors.Is(err, repository.ErrInventoryMissing):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no inventory for train and class"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking creation error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "booking created successfully",
		"ticket_id":    ticketID,
		"total_amount": total,
	})
}

// createTx runs one booking attempt: lock inventory, lazily initialize
// the ledger, insert the ticket, allocate each passenger's seat and
// record the passengers.  Any error rolls the whole attempt back.
func (h *BookingHandler) createTx(ctx context.Context, userID string, req createBookingReq, date model.TravelDate, boardSeq, depSeq uint32, distanceKM float64, maxSeq uint32) (string, int64, error) {
	tx, err := h.Tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	inventory, err := h.Inventory.ForClassTx(ctx, tx, req.TrainID, req.ClassType, true)
	if err != nil {
		return "", 0, err
	}
	if len(inventory) == 0 {
		return "", 0, repository.ErrInventoryMissing
	}
	if _, err := h.Segments.InitializeIfEmptyTx(ctx, tx, req.TrainID, req.ClassType, date, inventory, maxSeq); err != nil {
		return "", 0, err
	}

	total := booking.Fare(inventory[0].BaseFarePerKM, distanceKM, len(req.Passengers))
	ticket := &model.Ticket{
		TicketID:           uuid.NewString(),
		UserID:             userID,
		TrainID:            req.TrainID,
		TravelDate:         date,
		NumOfPassengers:    len(req.Passengers),
		ClassType:          req.ClassType,
		Status:             model.TicketPending,
		BoardingStationID:  req.BoardingStationID,
		DepartureStationID: req.DepartureStationID,
		TotalAmount:        total,
	}
	if err := h.Tickets.CreateTx(ctx, tx, ticket); err != nil {
		return "", 0, err
	}

	led := h.Segments.Ledger(tx)
	passengers := make([]model.Passenger, 0, len(req.Passengers))
	for _, p := range req.Passengers {
		seat := model.SeatKey{
			TrainID:   req.TrainID,
			ClassType: req.ClassType,
			CoachNo:   p.CoachNo,
			SeatNo:    p.SeatNo,
		}
		if err := h.alloc.Allocate(ctx, led, seat, date, boardSeq, depSeq, model.QuotaGeneral); err != nil {
			return "", 0, err
		}
		passengers = append(passengers, model.Passenger{
			TicketID:      ticket.TicketID,
			Name:          p.Name,
			Age:           p.Age,
			SeatAllocated: seat.Label(),
		})
	}
	if err := h.Tickets.CreatePassengersBulkTx(ctx, tx, passengers); err != nil {
		return "", 0, err
	}

	if err := tx.Commit(); err != nil {
		return "", 0, err
	}
	committed = true
	return ticket.TicketID, total, nil
}

// retryBackoff waits out the linear delay before retry attempt+2.  It
// returns early with the context error when the request is gone, so an
// aborted client does not hold the worker through dead sleeps.
func retryBackoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt+1) * 50 * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type ticketRow struct {
	TicketID           string `json:"ticket_id"`
	TrainID            uint64 `json:"train_id"`
	BookingDate        string `json:"booking_date"`
	TravelDate         string `json:"travel_date"`
	NumOfPassengers    int    `json:"num_of_passengers"`
	ClassType          string `json:"class_type"`
	Status             string `json:"status"`
	BoardingStationID  uint64 `json:"boarding_station_id"`
	DepartureStationID uint64 `json:"departure_station_id"`
	TotalAmount        int64  `json:"total_amount"`
}

// My handles GET /api/bookings/my listing the caller's tickets, newest
// first.
func (h *BookingHandler) My(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	tickets, err := h.Tickets.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	rows := make([]ticketRow, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, ticketRow{
			TicketID:           t.TicketID,
			TrainID:            t.TrainID,
			BookingDate:        t.BookingDate.Format("2006-01-02"),
			TravelDate:         string(t.TravelDate),
			NumOfPassengers:    t.NumOfPassengers,
			ClassType:          t.ClassType,
			Status:             t.Status,
			BoardingStationID:  t.BoardingStationID,
			DepartureStationID: t.DepartureStationID,
			TotalAmount:        t.TotalAmount,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": rows})
}

// Cancel handles PATCH /api/bookings/cancel/:ticket_id.  The released
// seat segments merge back with adjacent available ones, so the seats
// become bookable for the full journey again.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID := c.Param("ticket_id")
	if ticketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	err := h.Lifecycle.Cancel(c.Request().Context(), ticketID, userID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "ticket cancelled", "ticket_id": ticketID})
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
	case errors.Is(err, repository.ErrNotCancelable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket can no longer be cancelled"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
}
