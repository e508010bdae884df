package repository

import (
	"errors"
	"fmt"

	"flight-booking/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == uniqueViolation
}

// isForeignKeyViolation reports a reference to a row that no longer exists,
// such as a booking for a flight removed concurrently.
func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == foreignKeyViolation
}

// asConflict reports a transaction that Postgres aborted to break a lock
// cycle as utils.ErrConflict, so the caller can retry instead of seeing a 500.
func asConflict(err error) error {
	switch pgErrorCode(err) {
	case deadlockDetected, serializationFailure:
		return fmt.Errorf("concurrent update, retry: %w (%w)", utils.ErrConflict, err)
	}
	return err
}
