package sql

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// isForeignKeyViolation reports whether err is a PostgreSQL foreign-key
// violation (23503), optionally narrowed to a specific constrained
// column, exactly as the teacher's storage/sql/repository/store.go
// classifies its own FK errors.
func isForeignKeyViolation(err error, column string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23503" {
		return false
	}
	if column == "" {
		return true
	}
	return strings.Contains(pqErr.Constraint, column) || strings.Contains(pqErr.Message, column)
}
