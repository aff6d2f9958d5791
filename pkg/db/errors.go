package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const sqlStateUniqueViolation = "23505"

// IsUniqueViolation reports a duplicate-key failure from pgx, lib/pq or SQLite.
// A non-empty constraint narrows the match to that constraint or index name.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) && constraint == "" {
		return true
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && pgxErr.Code == sqlStateUniqueViolation {
		return constraint == "" || pgxErr.ConstraintName == constraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateUniqueViolation {
		return constraint == "" || pqErr.Constraint == constraint
	}

	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") && !strings.Contains(msg, "duplicate key value") {
		return false
	}
	return constraint == "" || strings.Contains(msg, constraint)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
