package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-seat-reservation/internal/middleware"
	"github.com/iliyamo/railway-seat-reservation/internal/model"
	"github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	if u == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: u}
}

type profileResp struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	MobileNo string  `json:"mobile_no"`
	Gender   *string `json:"gender"`
	Age      *uint8  `json:"age"`
	DOB      *string `json:"dob"`
	Country  *string `json:"country"`
	State    *string `json:"state"`
	City     *string `json:"city"`
	Street   *string `json:"street"`
}

func toProfileResp(u model.User) profileResp {
	return profileResp{
		UserID:   u.UserID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		MobileNo: u.MobileNo,
		Gender:   u.Gender,
		Age:      u.Age,
		DOB:      u.DOB,
		Country:  u.Country,
		State:    u.State,
		City:     u.City,
		Street:   u.Street,
	}
}

// Profile handles GET /api/users/profile.
func (h *UserHandler) Profile(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

type profileUpdateReq struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	MobileNo string  `json:"mobile_no"`
	Gender   *string `json:"gender"`
	Age      *uint8  `json:"age"`
	DOB      *string `json:"dob"`
	Country  *string `json:"country"`
	State    *string `json:"state"`
	City     *string `json:"city"`
	Street   *string `json:"street"`
}

// UpdateProfile handles PUT /api/users/profile.  All profile fields are
// replaced with the submitted values.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, model.User{
		UserID:   userID,
		Name:     req.Name,
		Email:    req.Email,
		MobileNo: req.MobileNo,
		Gender:   req.Gender,
		Age:      req.Age,
		DOB:      req.DOB,
		Country:  req.Country,
		State:    req.State,
		City:     req.City,
		Street:   req.Street,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}
