package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-seat-reservation/internal/middleware"
	"github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// TicketHandler serves ticket detail lookups.
type TicketHandler struct {
	Tickets *repository.TicketRepo
}

func NewTicketHandler(t *repository.TicketRepo) *TicketHandler {
	if t == nil {
		panic("nil repository passed to NewTicketHandler")
	}
	return &TicketHandler{Tickets: t}
}

// Detail handles GET /api/tickets/:ticket_id.  Only the ticket owner
// may view it.
func (h *TicketHandler) Detail(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID := c.Param("ticket_id")
	if ticketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	det, err := h.Tickets.GetDetail(c.Request().Context(), ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error fetching ticket"})
	}
	if det.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
	}
	return c.JSON(http.StatusOK, det)
}
