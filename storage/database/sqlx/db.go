// Package sqlxrepos implements the repositories on PostgreSQL.
package sqlxrepos

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// notFound returns target for sql.ErrNoRows, err otherwise.
func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}

func isViolation(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func isUniqueViolation(err error) bool { return isViolation(err, uniqueViolation) }

func isForeignKeyViolation(err error) bool { return isViolation(err, foreignKeyViolation) }

// checkAffected returns target when the statement did not touch any row.
func checkAffected(res sql.Result, err, target error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return target
	}
	return nil
}
