// Copyright (c) 2026 Komira. All rights reserved.

// Package dberr classifies low-level PostgreSQL errors so repositories
// can map them onto application errors without leaking driver details.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE 23505, raised when an INSERT or UPDATE hits a unique index.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
