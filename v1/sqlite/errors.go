package sqlite

import (
	"errors"

	sqlite3 "modernc.org/sqlite"
)

// sqliteGenericError is SQLITE_ERROR, the engine's generic operational
// failure code. Syntax errors, including a rejected RETURNING clause, are
// reported under it.
const sqliteGenericError = 1

// isOperationalError reports whether the error is a generic engine-level
// failure, as opposed to constraint violations, locked databases and other
// specific codes. Only operational errors trigger the RETURNING fallback.
func isOperationalError(err error) bool {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		return se.Code() == sqliteGenericError
	}
	return false
}
