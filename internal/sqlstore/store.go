package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kvlite/kvlite/internal/retry"
	"github.com/kvlite/kvlite/internal/telemetry"
)

// Row mirrors the cache_entries schema.
type Row struct {
	Partition   string
	Key         string
	Hash        uint64
	UTCExpiry   int64
	Interval    int64
	Value       []byte
	Compressed  bool
	UTCCreation int64
	ParentKeys  [MaxParentKeys]sql.NullString
}

// Store is the uniform backend contract combined with execution:
// a *sql.DB paired with its dialect's cached statement set, every call
// wrapped in the retry policy and an OTel client span, grounded on the
// teacher's storage/dolt execContext helper.
type Store struct {
	db      *sql.DB
	dialect Dialect
	stmts   *Statements
	retry   *retry.Policy
}

// Open builds a Store for schema against db, computing and caching its
// statement set once.
func Open(db *sql.DB, schema Schema) (*Store, error) {
	stmts, err := Build(schema)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: schema.Dialect, stmts: stmts, retry: retry.New()}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) exec(ctx context.Context, op string, stmt Statement, args ...any) (sql.Result, error) {
	var res sql.Result
	err := s.do(ctx, op, stmt.SQL, func(ctx context.Context) error {
		var err error
		res, err = s.db.ExecContext(ctx, stmt.SQL, args...)
		return err
	})
	return res, err
}

func (s *Store) do(ctx context.Context, op, statement string, fn func(context.Context) error) (err error) {
	spanCtx, span := telemetry.StartBackendSpan(ctx, s.dialect.Name(), op, statement)
	defer func() { telemetry.EndSpan(span, err) }()

	attempt := 0
	start := time.Now()
	err = s.retry.Do(spanCtx, func(ctx context.Context) error {
		attempt++
		return fn(ctx)
	})
	telemetry.Metrics.BackendLatencyMs.Record(ctx, float64(time.Since(start).Microseconds())/1000)
	if attempt > 1 {
		telemetry.Metrics.RetryCount.Add(ctx, int64(attempt-1))
	}
	err = wrapDBError(op, err)
	return err
}

// InsertOrUpdateEntry executes the insert_or_update_entry command.
func (s *Store) InsertOrUpdateEntry(ctx context.Context, r Row) error {
	vals := rowValues(r)
	args, err := buildArgs(s.stmts.InsertOrUpdateEntry.Params, vals)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, "insert_or_update_entry", s.stmts.InsertOrUpdateEntry, args...)
	return err
}

// DeleteEntry executes the delete_entry command (with cascade) and
// returns the number of rows removed.
func (s *Store) DeleteEntry(ctx context.Context, partition, key string) (int64, error) {
	args, err := buildArgs(s.stmts.DeleteEntry.Params, map[string]any{"partition": partition, "key": key})
	if err != nil {
		return 0, err
	}
	res, err := s.exec(ctx, "delete_entry", s.stmts.DeleteEntry, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteEntries executes the bulk delete_entries command and returns the
// number of rows removed. partition nil means "every partition".
func (s *Store) DeleteEntries(ctx context.Context, partition *string, considerExpiry bool, nowUnix int64) (int64, error) {
	flag := 0
	if considerExpiry {
		flag = 1
	}
	var partVal any
	if partition != nil {
		partVal = *partition
	}
	args, err := buildArgs(s.stmts.DeleteEntries.Params, map[string]any{
		"partition":       partVal,
		"consider_expiry": flag,
		"now":             nowUnix,
	})
	if err != nil {
		return 0, err
	}
	res, err := s.exec(ctx, "delete_entries", s.stmts.DeleteEntries, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ChildKeys executes the child_keys query, returning the keys of every
// row one level below (partition, key) in the parent-key graph.
func (s *Store) ChildKeys(ctx context.Context, partition, key string) ([]string, error) {
	args, err := buildArgs(s.stmts.ChildKeys.Params, map[string]any{"partition": partition, "key": key})
	if err != nil {
		return nil, err
	}
	var keys []string
	err = s.do(ctx, "child_keys", s.stmts.ChildKeys.SQL, func(ctx context.Context) error {
		rs, err := s.db.QueryContext(ctx, s.stmts.ChildKeys.SQL, args...)
		if err != nil {
			return err
		}
		defer rs.Close()
		for rs.Next() {
			var k string
			if err := rs.Scan(&k); err != nil {
				return err
			}
			keys = append(keys, k)
		}
		return rs.Err()
	})
	return keys, err
}

// UpdateEntryExpiry executes the update_entry_expiry command (sliding
// renewal on read).
func (s *Store) UpdateEntryExpiry(ctx context.Context, partition, key string, utcExpiry int64) error {
	args, err := buildArgs(s.stmts.UpdateEntryExpiry.Params, map[string]any{
		"utc_expiry": utcExpiry, "partition": partition, "key": key,
	})
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, "update_entry_expiry", s.stmts.UpdateEntryExpiry, args...)
	return err
}

// ContainsEntry executes the contains_entry query.
func (s *Store) ContainsEntry(ctx context.Context, partition, key string) (bool, error) {
	args, err := buildArgs(s.stmts.ContainsEntry.Params, map[string]any{"partition": partition, "key": key})
	if err != nil {
		return false, err
	}
	var one int
	err = s.do(ctx, "contains_entry", s.stmts.ContainsEntry.SQL, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.stmts.ContainsEntry.SQL, args...).Scan(&one)
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CountEntries executes the count_entries query. partition nil counts
// across every partition.
func (s *Store) CountEntries(ctx context.Context, partition *string) (int64, error) {
	var partVal any
	if partition != nil {
		partVal = *partition
	}
	args, err := buildArgs(s.stmts.CountEntries.Params, map[string]any{"partition": partVal})
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.do(ctx, "count_entries", s.stmts.CountEntries.SQL, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.stmts.CountEntries.SQL, args...).Scan(&n)
	})
	return n, err
}

// PeekEntries executes the peek_entries query, returning every row in
// partition (or every row, if partition is nil) without expiry filtering.
func (s *Store) PeekEntries(ctx context.Context, partition *string) ([]Row, error) {
	var partVal any
	if partition != nil {
		partVal = *partition
	}
	args, err := buildArgs(s.stmts.PeekEntries.Params, map[string]any{"partition": partVal})
	if err != nil {
		return nil, err
	}

	var rows []Row
	err = s.do(ctx, "peek_entries", s.stmts.PeekEntries.SQL, func(ctx context.Context) error {
		rs, err := s.db.QueryContext(ctx, s.stmts.PeekEntries.SQL, args...)
		if err != nil {
			return err
		}
		defer rs.Close()
		for rs.Next() {
			var r Row
			if err := scanRow(rs, &r); err != nil {
				return err
			}
			rows = append(rows, r)
		}
		return rs.Err()
	})
	return rows, err
}

// PeekEntry executes the peek_entry query for a single row.
func (s *Store) PeekEntry(ctx context.Context, partition, key string) (Row, error) {
	args, err := buildArgs(s.stmts.PeekEntry.Params, map[string]any{"partition": partition, "key": key})
	if err != nil {
		return Row{}, err
	}
	var r Row
	err = s.do(ctx, "peek_entry", s.stmts.PeekEntry.SQL, func(ctx context.Context) error {
		return scanRow(s.db.QueryRowContext(ctx, s.stmts.PeekEntry.SQL, args...), &r)
	})
	return r, err
}

// PeekValue executes the peek_value query, returning just the value bytes
// and compressed flag.
func (s *Store) PeekValue(ctx context.Context, partition, key string) ([]byte, bool, error) {
	args, err := buildArgs(s.stmts.PeekValue.Params, map[string]any{"partition": partition, "key": key})
	if err != nil {
		return nil, false, err
	}
	var value []byte
	var compressed bool
	err = s.do(ctx, "peek_value", s.stmts.PeekValue.SQL, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.stmts.PeekValue.SQL, args...).Scan(&value, &compressed)
	})
	return value, compressed, err
}

// CacheSizeInBytes executes the get_cache_size_in_bytes query.
func (s *Store) CacheSizeInBytes(ctx context.Context) (int64, error) {
	var n int64
	err := s.do(ctx, "get_cache_size_in_bytes", s.stmts.CacheSizeInBytes.SQL, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.stmts.CacheSizeInBytes.SQL).Scan(&n)
	})
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner, r *Row) error {
	return sc.Scan(
		&r.Partition, &r.Key, &r.Hash, &r.UTCExpiry, &r.Interval, &r.Value, &r.Compressed, &r.UTCCreation,
		&r.ParentKeys[0], &r.ParentKeys[1], &r.ParentKeys[2], &r.ParentKeys[3], &r.ParentKeys[4],
	)
}

func rowValues(r Row) map[string]any {
	v := map[string]any{
		"partition": r.Partition, "key": r.Key, "hash": r.Hash,
		"utc_expiry": r.UTCExpiry, "interval": r.Interval, "value": r.Value,
		"compressed": r.Compressed, "utc_creation": r.UTCCreation,
	}
	for i := 0; i < MaxParentKeys; i++ {
		v[fmt.Sprintf("parent_key_%d", i)] = r.ParentKeys[i]
	}
	return v
}

// buildArgs materializes a positional argument slice from a statement's
// Params (one logical name per placeholder occurrence, possibly with
// repeats) and a map of logical-name to value.
func buildArgs(params []string, values map[string]any) ([]any, error) {
	args := make([]any, len(params))
	for i, name := range params {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("sqlstore: missing bound value for %q", name)
		}
		args[i] = v
	}
	return args, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
