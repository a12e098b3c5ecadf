package sql

import (
	"database/sql"
	"time"
)

// Local aliases keep the rest of the package's signatures free of the
// database/sql import when only the Null* wrapper types are needed.
type (
	sqlNullTime   = sql.NullTime
	sqlNullString = sql.NullString
	sqlNullInt64  = sql.NullInt64
)

func nsFromMillis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func millisFromNs(d time.Duration) int64 {
	return d.Milliseconds()
}
