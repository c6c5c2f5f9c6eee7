package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Factory is the connection factory: a process-wide map keyed by
// connection string, handing out a shared *sql.DB per string so repeated
// Open calls for the same backend reuse one pool.
//
// database/sql's own pool already implements the connection-lifetime state
// machine (new → open → in_use → closed_pooled/closed_disposed): a
// connection is "new" until first use, "in_use" while checked out by a
// query, "closed_pooled" when returned to the idle list (if under
// SetMaxIdleConns), and "closed_disposed" when the pool evicts it.
// Factory's job is only the outer layer — sharing *sql.DB by connection
// string, following the common single-*sql.DB-per-process convention
// (storage/sqlite, storage/dolt) generalized to multiple concurrent
// backends.
type Factory struct {
	mu  sync.Mutex
	dbs map[string]*sql.DB
}

// DefaultMaxCachedConnections is the default idle-connection cap.
const DefaultMaxCachedConnections = 10

// NewFactory returns an empty connection factory.
func NewFactory() *Factory {
	return &Factory{dbs: make(map[string]*sql.DB)}
}

// Open returns the shared *sql.DB for (driverName, connStr), opening and
// configuring it on first use. maxCachedConnections caps idle pooled
// connections (0 uses DefaultMaxCachedConnections).
func (f *Factory) Open(driverName, connStr string, maxCachedConnections int) (*sql.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := driverName + "|" + connStr
	if db, ok := f.dbs[key]; ok {
		return db, nil
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s: %w", driverName, err)
	}
	if maxCachedConnections <= 0 {
		maxCachedConnections = DefaultMaxCachedConnections
	}
	db.SetMaxIdleConns(maxCachedConnections)
	db.SetMaxOpenConns(0) // unbounded in_use connections; only idle pooling is capped

	f.dbs[key] = db
	return db, nil
}

// Ping verifies a factory-managed connection is reachable.
func (f *Factory) Ping(ctx context.Context, driverName, connStr string) error {
	f.mu.Lock()
	db, ok := f.dbs[driverName+"|"+connStr]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("sqlstore: no open connection for %s", connStr)
	}
	return db.PingContext(ctx)
}

// CloseAll disposes every pooled connection, transitioning them to
// closed_disposed.
func (f *Factory) CloseAll() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var firstErr error
	for key, db := range f.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(f.dbs, key)
	}
	return firstErr
}
