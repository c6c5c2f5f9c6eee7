package sqlstore

import (
	"database/sql"
	"fmt"
)

// columnDef names a column's SQL type per dialect family: sqlite and
// the MySQL-wire dialects both accept this minimal portable set.
type columnDef struct {
	name     string
	sqlType  string
	nullable bool
}

var cacheEntryColumns = []columnDef{
	{"partition", "TEXT", false},
	{"key", "TEXT", false},
	{"hash", "INTEGER", false},
	{"utc_expiry", "INTEGER", false},
	{"interval", "INTEGER", false},
	{"value", "BLOB", true},
	{"compressed", "INTEGER", false},
	{"utc_creation", "INTEGER", false},
	{"parent_key_0", "TEXT", true},
	{"parent_key_1", "TEXT", true},
	{"parent_key_2", "TEXT", true},
	{"parent_key_3", "TEXT", true},
	{"parent_key_4", "TEXT", true},
}

// EnsureSchema creates schema's cache-entries table if it does not
// already exist, with (partition, key) as the primary key and the hash
// column left for callers to index separately if their backend benefits
// from it. partition and key use the dialect's PrimaryKeyColumnType
// (bounded by maxPartitionLen/maxKeyLen) rather than the generic column
// type, since MySQL/Dolt reject unbounded TEXT columns in a primary key.
func EnsureSchema(db *sql.DB, schema Schema, maxPartitionLen, maxKeyLen int) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	d := schema.Dialect

	var cols string
	for i, c := range cacheEntryColumns {
		if i > 0 {
			cols += ", "
		}
		sqlType := c.sqlType
		switch c.name {
		case "partition":
			sqlType = d.PrimaryKeyColumnType(maxPartitionLen)
		case "key":
			sqlType = d.PrimaryKeyColumnType(maxKeyLen)
		}
		cols += d.QuoteIdent(c.name) + " " + sqlType
		if !c.nullable {
			cols += " NOT NULL"
		}
	}
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s, PRIMARY KEY (%s, %s))",
		schema.table(), cols, d.QuoteIdent("partition"), d.QuoteIdent("key"),
	)
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("sqlstore: creating schema: %w", err)
	}
	return nil
}
