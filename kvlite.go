// Package kvlite is the top-level facade over the cache engine: given a
// validated Settings and a backend driver choice, Open wires the
// connection factory, SQL dialect, and engine collaborators into a ready
// Engine.
package kvlite

import (
	"fmt"

	"github.com/kvlite/kvlite/internal/engine"
	"github.com/kvlite/kvlite/internal/settings"
	"github.com/kvlite/kvlite/internal/sqlstore"
	"github.com/kvlite/kvlite/internal/sqlstore/mysqldialect"
	"github.com/kvlite/kvlite/internal/sqlstore/sqlite"
)

// Driver selects which database/sql driver and SQL dialect a Store talks.
type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverMySQL  Driver = "mysql"
	DriverDolt   Driver = "dolt"
)

// Re-exported so callers constructing an Engine by hand (rather than
// through Open) don't need to import internal/engine directly.
type (
	Engine      = engine.Engine
	Options     = engine.Options
	ExpiryMode  = engine.ExpiryMode
	Item[T any] = engine.Item[T]
)

const (
	ConsiderExpiry = engine.ConsiderExpiry
	IgnoreExpiry   = engine.IgnoreExpiry
)

// Open validates s, opens (or reuses) the backend connection for driver,
// builds its statement set, and returns a ready Engine. The Engine owns
// the opened backend and will close it on Close; the underlying *sql.DB
// is shared process-wide through a package-level connection factory, so
// repeated Open calls with the same connection string reuse one pool.
func Open(driver Driver, s settings.Settings) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var dialect sqlstore.Dialect
	switch driver {
	case DriverSQLite:
		dialect = sqlite.Dialect{}
	case DriverMySQL:
		dialect = mysqldialect.New(mysqldialect.MySQL)
	case DriverDolt:
		dialect = mysqldialect.New(mysqldialect.Dolt)
	default:
		return nil, fmt.Errorf("kvlite: unknown driver %q", driver)
	}

	db, err := factory.Open(dialect.DriverName(), s.ConnectionString, sqlstore.DefaultMaxCachedConnections)
	if err != nil {
		return nil, fmt.Errorf("kvlite: opening backend: %w", err)
	}

	schema := sqlstore.Schema{
		Dialect:    dialect,
		SchemaName: s.CacheSchemaName,
		TableName:  s.CacheEntriesTableName,
	}
	if err := sqlstore.EnsureSchema(db, schema, s.MaxPartitionNameLength, s.MaxKeyNameLength); err != nil {
		return nil, fmt.Errorf("kvlite: ensuring schema: %w", err)
	}

	backend, err := sqlstore.Open(db, schema)
	if err != nil {
		return nil, fmt.Errorf("kvlite: preparing statements: %w", err)
	}

	return engine.New(engine.Options{
		Backend:  backend,
		Settings: s,
		CanPeek:  true,
	}), nil
}

var factory = sqlstore.NewFactory()
