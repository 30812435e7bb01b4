package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-seat-reservation/internal/booking"
	"github.com/iliyamo/railway-seat-reservation/internal/model"
	"github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// TrainHandler serves train search, route details and the per-seat
// availability map used by seat selection.
type TrainHandler struct {
	Trains    *repository.TrainRepo
	Routes    *repository.RouteRepo
	Inventory *repository.InventoryRepo
	Segments  *repository.SegmentRepo
}

func NewTrainHandler(t *repository.TrainRepo, r *repository.RouteRepo, i *repository.InventoryRepo, s *repository.SegmentRepo) *TrainHandler {
	if t == nil || r == nil || i == nil || s == nil {
		panic("nil repository passed to NewTrainHandler")
	}
	return &TrainHandler{Trains: t, Routes: r, Inventory: i, Segments: s}
}

func queryID(c echo.Context, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.QueryParam(name), 10, 64)
	if err != nil || v == 0 {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

// Available handles GET /api/trains/available.  One row per train and
// class serving the requested station pair in route order.  Seats
// already booked over the journey interval on the travel date are
// subtracted from inventory capacity; a date whose ledger is not yet
// initialized has nothing booked.
func (h *TrainHandler) Available(c echo.Context) error {
	from, err := queryID(c, "from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from, to and date are required"})
	}
	to, err := queryID(c, "to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from, to and date are required"})
	}
	date, err := model.ParseTravelDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}

	ctx := c.Request().Context()
	trains, err := h.Trains.SearchAvailable(ctx, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	for i := range trains {
		booked, err := h.Segments.BookedSeatCount(ctx, trains[i].TrainID, trains[i].ClassType,
			date, trains[i].BoardingSeq, trains[i].DepartureSeq)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		trains[i].AvailableSeats = trains[i].TotalSeats - booked
	}
	return c.JSON(http.StatusOK, echo.Map{"trains": trains})
}

// Detail handles GET /api/trains/:id returning the train and its
// ordered route stops.
func (h *TrainHandler) Detail(c echo.Context) error {
	trainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || trainID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}

	ctx := c.Request().Context()
	train, err := h.Trains.GetByID(ctx, trainID)
	if err != nil {
		if errors.Is(err, repository.ErrTrainNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	route, err := h.Routes.Route(ctx, trainID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"train": echo.Map{"train_id": train.TrainID, "train_name": train.TrainName},
		"route": route,
	})
}

type seatStatusRow struct {
	CoachNo string `json:"coach_no"`
	SeatNo  uint32 `json:"seat_no"`
	Status  string `json:"status"`
}

// SeatStatus handles GET /api/trains/seat-status.  It reports every
// seat of the class as AVAILABLE or BOOKED over the requested journey
// interval.  The first request for a (train, class, date) initializes
// the ledger from inventory inside its own transaction; inventory rows
// are locked so concurrent first requests serialize instead of double
// inserting.
func (h *TrainHandler) SeatStatus(c echo.Context) error {
	trainID, err := queryID(c, "train_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train_id"})
	}
	classType := c.QueryParam("class_type")
	if classType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_type is required"})
	}
	date, err := model.ParseTravelDate(c.QueryParam("travel_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid travel_date, expected YYYY-MM-DD"})
	}
	boarding, err := queryID(c, "boarding_station_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid boarding_station_id"})
	}
	departure, err := queryID(c, "departure_station_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departure_station_id"})
	}

	ctx := c.Request().Context()
	boardSeq, depSeq, _, err := h.Routes.Trip(ctx, trainID, boarding, departure)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStationNotOnRoute), errors.Is(err, booking.ErrInvalidRoute):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	maxSeq, err := h.Routes.MaxSeq(ctx, trainID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.ensureLedger(c, trainID, classType, date, maxSeq); err != nil {
		if errors.Is(err, repository.ErrInventoryMissing) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no inventory for train and class"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	segs, err := h.Segments.SegmentsForClass(ctx, trainID, classType, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Segments arrive ordered by coach, seat, from_seq_no; fold them
	// into one status row per seat.
	seats := make([]seatStatusRow, 0)
	var cur model.SeatKey
	var curSegs []model.Segment
	flush := func() {
		if len(curSegs) == 0 {
			return
		}
		seats = append(seats, seatStatusRow{
			CoachNo: cur.CoachNo,
			SeatNo:  cur.SeatNo,
			Status:  booking.IntervalStatus(curSegs, boardSeq, depSeq),
		})
		curSegs = curSegs[:0]
	}
	for _, s := range segs {
		if s.Seat != cur {
			flush()
			cur = s.Seat
		}
		curSegs = append(curSegs, s)
	}
	flush()

	return c.JSON(http.StatusOK, echo.Map{
		"train_id":    trainID,
		"class_type":  classType,
		"travel_date": string(date),
		"seats":       seats,
	})
}

// ensureLedger lazily creates the AVAILABLE full-route segments for
// every inventoried seat on first access of a (train, class, date).
func (h *TrainHandler) ensureLedger(c echo.Context, trainID uint64, classType string, date model.TravelDate, maxSeq uint32) error {
	ctx := c.Request().Context()
	tx, err := h.Segments.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	inventory, err := h.Inventory.ForClassTx(ctx, tx, trainID, classType, true)
	if err != nil {
		return err
	}
	if len(inventory) == 0 {
		return repository.ErrInventoryMissing
	}
	if _, err := h.Segments.InitializeIfEmptyTx(ctx, tx, trainID, classType, date, inventory, maxSeq); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
