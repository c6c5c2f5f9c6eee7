// Package mysqldialect provides the sqlstore.Dialect shared by MySQL
// (go-sql-driver/mysql) and embedded Dolt (dolthub/driver), both of which
// speak the MySQL wire protocol and SQL syntax.
package mysqldialect

import (
	"fmt"
	"strings"

	_ "github.com/dolthub/driver"       // registers the "dolt" database/sql driver
	_ "github.com/go-sql-driver/mysql" // registers the "mysql" database/sql driver
)

// Backend selects which of the two MySQL-wire-compatible drivers a Dialect
// targets; both share identifier quoting and placeholder syntax.
type Backend int

const (
	MySQL Backend = iota
	Dolt
)

// Dialect implements sqlstore.Dialect for MySQL and embedded Dolt.
type Dialect struct {
	Backend Backend
}

func New(b Backend) Dialect { return Dialect{Backend: b} }

func (d Dialect) Name() string {
	if d.Backend == Dolt {
		return "dolt"
	}
	return "mysql"
}

func (d Dialect) DriverName() string {
	if d.Backend == Dolt {
		return "dolt"
	}
	return "mysql"
}

func (Dialect) QuoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (Dialect) Placeholder(int) string {
	return "?"
}

// PrimaryKeyColumnType returns a length-bounded VARCHAR: MySQL/Dolt reject
// TEXT/BLOB columns in a PRIMARY KEY unless given an explicit prefix
// length, and the cache's partition/key columns are already bounded by
// settings.Max{Partition,Key}NameLength.
func (Dialect) PrimaryKeyColumnType(maxLen int) string {
	return fmt.Sprintf("VARCHAR(%d)", maxLen)
}
