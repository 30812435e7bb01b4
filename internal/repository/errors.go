// Package repository implements MySQL persistence for the railway
// reservation service.  This file defines sentinel errors shared
// across repositories so handlers can map failure scenarios to HTTP
// responses with errors.Is.  The core allocation errors
// (SeatUnavailable, InvalidRoute) live in the booking package, next to
// the algorithm that produces them.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrStationNotOnRoute is returned by the route index when a station
// does not appear on the train's route.  Handlers translate it into a
// 400 response.
var ErrStationNotOnRoute = errors.New("station not on train route")

// ErrInventoryMissing is returned when no seat/fare inventory is
// configured for a (train, class) pair.  This is treated as a hard
// configuration error rather than silently defaulting the fare.
var ErrInventoryMissing = errors.New("no seat inventory for train and class")

// ErrTicketNotFound is returned for lookups of tickets that do not
// exist.  Handlers translate it into a 404 response.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrForbidden is returned when the caller attempts an operation on a
// ticket they do not own.  Handlers translate it into a 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrUsernameExists is returned when registration collides with an
// existing username.
var ErrUsernameExists = errors.New("username already taken")

// ErrNotCancelable is returned when a cancellation targets a ticket
// that is already CANCELLED or EXPIRED.  Handlers translate it into a
// 409 response.
var ErrNotCancelable = errors.New("ticket can no longer be cancelled")

// IsLockConflict reports whether err is a MySQL lock wait timeout
// (1205) or deadlock (1213).  The allocator retries the enclosing
// transaction a bounded number of times on these before surfacing a
// seat-unavailable response.
func IsLockConflict(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1205 || me.Number == 1213
	}
	return false
}

// IsDuplicateKey reports a MySQL duplicate-entry error (1062).  The
// uniqueness key on (train, class, coach, seat, date, from_seq_no)
// turns a double-initialization race into this error instead of a
// corrupted ledger.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
