package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-seat-reservation/internal/middleware"
	"github.com/iliyamo/railway-seat-reservation/internal/model"
	"github.com/iliyamo/railway-seat-reservation/internal/queue"
	"github.com/iliyamo/railway-seat-reservation/internal/repository"
	"github.com/iliyamo/railway-seat-reservation/internal/service"
)

// PaymentHandler records payments and confirms pending tickets.
type PaymentHandler struct {
	Tickets  *repository.TicketRepo
	Payments *repository.PaymentRepo
	Trains   *repository.TrainRepo
}

func NewPaymentHandler(t *repository.TicketRepo, p *repository.PaymentRepo, tr *repository.TrainRepo) *PaymentHandler {
	if t == nil || p == nil || tr == nil {
		panic("nil repository passed to NewPaymentHandler")
	}
	return &PaymentHandler{Tickets: t, Payments: p, Trains: tr}
}

type payReq struct {
	TicketID string `json:"ticket_id"`
	Mode     string `json:"mode"`
}

// Pay handles POST /api/payments/pay.  The charged amount is the
// ticket's stored total, not a client-supplied figure.  Confirmation
// only succeeds on PENDING tickets; a ticket the sweeper already
// expired cannot be paid for.
func (h *PaymentHandler) Pay(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req payReq
	if err := c.Bind(&req); err != nil || req.TicketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_id is required"})
	}
	if req.Mode == "" {
		req.Mode = "UPI"
	}

	ctx := c.Request().Context()
	tx, err := h.Tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticket, err := h.Tickets.GetForUpdateTx(ctx, tx, req.TicketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment error"})
	}
	if ticket.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
	}

	confirmed, err := h.Tickets.ConfirmTx(ctx, tx, ticket.TicketID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment error"})
	}
	if !confirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket is not pending payment"})
	}

	payment := &model.Payment{
		PaymentID: uuid.NewString(),
		TicketID:  ticket.TicketID,
		Amount:    ticket.TotalAmount,
		Status:    "SUCCESS",
		Mode:      req.Mode,
	}
	if err := h.Payments.CreateTx(ctx, tx, payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment error"})
	}

	passengers, err := h.Tickets.PassengersTx(ctx, tx, ticket.TicketID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment error"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment error"})
	}
	committed = true

	go h.publishConfirmed(ticket, passengers)

	return c.JSON(http.StatusOK, echo.Map{
		"payment_id": payment.PaymentID,
		"status":     payment.Status,
		"amount":     payment.Amount,
	})
}

// publishConfirmed emits the ticket.confirmed event after commit.  The
// payment has already succeeded, so a broker failure is only logged.
func (h *PaymentHandler) publishConfirmed(ticket model.Ticket, passengers []model.Passenger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	trainName := ""
	if train, err := h.Trains.GetByID(ctx, ticket.TrainID); err == nil {
		trainName = train.TrainName
	}
	seats := make([]string, 0, len(passengers))
	for _, p := range passengers {
		seats = append(seats, p.SeatAllocated)
	}

	event := queue.TicketConfirmedEvent{
		TicketID:    ticket.TicketID,
		UserID:      ticket.UserID,
		TrainID:     ticket.TrainID,
		TrainName:   trainName,
		TravelDate:  string(ticket.TravelDate),
		ClassType:   ticket.ClassType,
		Seats:       seats,
		TotalAmount: ticket.TotalAmount,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := service.PublishTicketConfirmed(ctx, event); err != nil {
		log.Printf("ticket.confirmed publish failed for %s: %v", ticket.TicketID, err)
	}
}
