package sqlstore

import "context"

// Backend is the uniform contract the engine drives: every
// SQL-backed Store satisfies it, as does the in-process memstore used in
// tests that want to exercise the engine without a real database.
type Backend interface {
	InsertOrUpdateEntry(ctx context.Context, r Row) error
	DeleteEntry(ctx context.Context, partition, key string) (int64, error)
	DeleteEntries(ctx context.Context, partition *string, considerExpiry bool, nowUnix int64) (int64, error)
	ChildKeys(ctx context.Context, partition, key string) ([]string, error)
	UpdateEntryExpiry(ctx context.Context, partition, key string, utcExpiry int64) error
	ContainsEntry(ctx context.Context, partition, key string) (bool, error)
	CountEntries(ctx context.Context, partition *string) (int64, error)
	PeekEntries(ctx context.Context, partition *string) ([]Row, error)
	PeekEntry(ctx context.Context, partition, key string) (Row, error)
	PeekValue(ctx context.Context, partition, key string) ([]byte, bool, error)
	CacheSizeInBytes(ctx context.Context) (int64, error)
	Close() error
}

var (
	_ Backend = (*Store)(nil)
)
