// Package sqlstore implements the engine's connection factory and SQL
// template builder: a uniform contract over one or more SQL backends,
// handling execContext retry/span wrapping, driver selection, and
// wrapDBError sentinel translation for the single cache_entries table.
package sqlstore

import "fmt"

// Dialect captures the backend-specific syntax needed by the template
// builder: identifier quoting, parameter placeholder style, and
// insert-or-update conflict resolution. sqlite and mysqldialect (shared by
// MySQL and embedded Dolt, both MySQL-wire compatible) each provide one.
type Dialect interface {
	// Name identifies the dialect for telemetry attributes (e.g. "sqlite").
	Name() string
	// DriverName is the database/sql driver name to pass to sql.Open.
	DriverName() string
	// QuoteIdent quotes a schema/table/column identifier.
	QuoteIdent(ident string) string
	// Placeholder returns the parameter placeholder for the i'th bound
	// argument (1-indexed), e.g. "?" for sqlite/mysql or "$1" for postgres
	// style dialects.
	Placeholder(i int) string
	// PrimaryKeyColumnType is the column type EnsureSchema uses for the
	// (partition, key) primary key columns, given their configured
	// maximum length. sqlite has no indexed-column length limit and
	// returns a plain TEXT; MySQL/Dolt require a bounded VARCHAR to be
	// usable as (part of) a primary key.
	PrimaryKeyColumnType(maxLen int) string
}

// usesOnDuplicateKey reports whether d is a MySQL-wire dialect, which
// resolves insert conflicts with "ON DUPLICATE KEY UPDATE col =
// VALUES(col)" instead of SQLite/Postgres's "ON CONFLICT (cols) DO UPDATE
// SET". Keyed off Name() rather than a dedicated interface method so the
// sqlite/mysqldialect packages don't need to import this one just to
// declare their upsert style.
func usesOnDuplicateKey(d Dialect) bool {
	switch d.Name() {
	case "mysql", "dolt":
		return true
	default:
		return false
	}
}

// QualifiedTable returns schema.table, quoted per dialect, omitting the
// schema qualifier when schema is empty (sqlite has no schema concept in
// that sense).
func QualifiedTable(d Dialect, schema, table string) string {
	if schema == "" {
		return d.QuoteIdent(table)
	}
	return fmt.Sprintf("%s.%s", d.QuoteIdent(schema), d.QuoteIdent(table))
}
