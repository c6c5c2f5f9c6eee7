// Package sqlite provides the sqlstore.Dialect for the pure-Go,
// CGO-free modernc.org/sqlite driver used for the embedded backend.
package sqlite

import (
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Dialect implements sqlstore.Dialect for modernc.org/sqlite.
type Dialect struct{}

func (Dialect) Name() string       { return "sqlite" }
func (Dialect) DriverName() string { return "sqlite" }

func (Dialect) QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Placeholder ignores i: sqlite binds "?" positionally in call order.
func (Dialect) Placeholder(int) string {
	return "?"
}

// PrimaryKeyColumnType ignores maxLen: sqlite has no indexed-length limit
// on TEXT columns.
func (Dialect) PrimaryKeyColumnType(int) string { return "TEXT" }
