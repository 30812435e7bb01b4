// Package utils provides helper functions for token creation and
// password hashing.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed HS256 JWT along with its expiry.
// Tokens are presented in the Authorization header on protected
// endpoints; there is no refresh flow, clients re-login on expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The
// subject claim carries the user ID (UUID) and a username claim is
// included for display purposes.
func NewAccessToken(secret, userID, username string, ttl time.Duration) (AccessToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ErrBadToken is returned by ParseAccessToken for tokens that fail
// signature or claim validation.
var ErrBadToken = errors.New("invalid token")

// ParseAccessToken validates a token string and returns the subject
// (user ID) and username claims.
func ParseAccessToken(secret, raw string) (userID, username string, err error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", "", ErrBadToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrBadToken
	}
	sub, _ := claims["sub"].(string)
	uname, _ := claims["username"].(string)
	if sub == "" {
		return "", "", ErrBadToken
	}
	return sub, uname, nil
}
