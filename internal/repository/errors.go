package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateFileNumber is returned when a record with the file number already exists.
	ErrDuplicateFileNumber = errors.New("file number already exists")

	// ErrRecordNotFound is returned by writes that target a file number with no record.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidCompIndex is returned for comparable indexes outside 1..MaxComparables.
	ErrInvalidCompIndex = errors.New("invalid comparable index")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
