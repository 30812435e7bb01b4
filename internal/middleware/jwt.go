package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-seat-reservation/internal/utils"
)

// JWTAuth validates the Bearer access token on protected routes and
// stores the authenticated identity in the request context under
// "user_id" and "username".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or malformed token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			userID, username, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("user_id", userID)
			c.Set("username", username)
			return next(c)
		}
	}
}

// UserID reads the authenticated user id placed by JWTAuth. Empty on
// unauthenticated requests.
func UserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}
