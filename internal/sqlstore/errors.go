package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested row was not present.
var ErrNotFound = errors.New("sqlstore: not found")

// wrapDBError converts sql.ErrNoRows to ErrNotFound and annotates any
// other error with the failing operation.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
