package engine

import (
	"context"
	"errors"
	"time"

	"github.com/kvlite/kvlite/internal/sqlstore"
)

// Get returns the value stored at (partition, key) if present and
// unexpired, renewing sliding entries.
func Get[T any](ctx context.Context, e *Engine, partition, key string) (T, bool, error) {
	var zero T
	row, found, err := fetchRow(ctx, e, "get", partition, key, true)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}
	var v T
	if !decodeRow(ctx, e, "get", row, &v) {
		return zero, false, nil
	}
	return v, true, nil
}

// GetItem returns the full entry (metadata plus value) at (partition,
// key), renewing sliding entries.
func GetItem[T any](ctx context.Context, e *Engine, partition, key string) (Item[T], bool, error) {
	return getItem[T](ctx, e, "get_item", partition, key, true)
}

// PeekItem is GetItem without renewal; fails NotSupported when the
// backend does not support peek.
func PeekItem[T any](ctx context.Context, e *Engine, partition, key string) (Item[T], bool, error) {
	if err := e.requirePeek("peek_item"); err != nil {
		return Item[T]{}, false, err
	}
	return getItem[T](ctx, e, "peek_item", partition, key, false)
}

// Peek is Get without renewal; fails NotSupported when the backend does
// not support peek.
func Peek[T any](ctx context.Context, e *Engine, partition, key string) (T, bool, error) {
	var zero T
	if err := e.requirePeek("peek"); err != nil {
		return zero, false, err
	}
	row, found, err := fetchRow(ctx, e, "peek", partition, key, false)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}
	var v T
	if !decodeRow(ctx, e, "peek", row, &v) {
		return zero, false, nil
	}
	return v, true, nil
}

func getItem[T any](ctx context.Context, e *Engine, op, partition, key string, renew bool) (Item[T], bool, error) {
	row, found, err := fetchRow(ctx, e, op, partition, key, renew)
	if err != nil {
		return Item[T]{}, false, err
	}
	if !found {
		return Item[T]{}, false, nil
	}
	var v T
	if !decodeRow(ctx, e, op, row, &v) {
		return Item[T]{}, false, nil
	}
	return rowToItem(row, v), true, nil
}

// GetItems returns every valid entry, optionally scoped to one
// partition, renewing sliding entries.
func GetItems[T any](ctx context.Context, e *Engine, partition *string) ([]Item[T], error) {
	return getItems[T](ctx, e, "get_items", partition, true)
}

// PeekItems is GetItems without renewal.
func PeekItems[T any](ctx context.Context, e *Engine, partition *string) ([]Item[T], error) {
	if err := e.requirePeek("peek_items"); err != nil {
		return nil, err
	}
	return getItems[T](ctx, e, "peek_items", partition, false)
}

func getItems[T any](ctx context.Context, e *Engine, op string, partition *string, renew bool) ([]Item[T], error) {
	if err := e.checkActive(ctx, op); err != nil {
		return nil, err
	}
	rows, err := e.backend.PeekEntries(ctx, partition)
	if err != nil {
		e.recordError(op, KindBackend, err)
		return nil, nil
	}

	nowT := now(e.clock)
	items := make([]Item[T], 0, len(rows))
	for _, row := range rows {
		row, ok := e.resolveExpiryAndRenew(ctx, op, row, nowT, renew)
		if !ok {
			continue
		}
		var v T
		if !decodeRow(ctx, e, op, row, &v) {
			continue
		}
		items = append(items, rowToItem(row, v))
	}
	return items, nil
}

// Contains reports whether (partition, key) holds a valid entry; never
// renews.
func Contains(ctx context.Context, e *Engine, partition, key string) bool {
	if err := e.checkActive(ctx, "contains"); err != nil {
		return false
	}
	partition, key = e.truncate(partition, key)
	ok, err := e.backend.ContainsEntry(ctx, partition, key)
	if err != nil {
		e.recordError("contains", KindBackend, err)
		return false
	}
	if !ok {
		return false
	}
	// contains must still honor expiry invisibility; reuse the
	// non-renewing fetch to apply self-healing removal consistently.
	row, err := e.backend.PeekEntry(ctx, partition, key)
	if err != nil {
		return false
	}
	_, ok = e.resolveExpiryAndRenew(ctx, "contains", row, now(e.clock), false)
	return ok
}

// fetchRow implements the read path's row lookup, self-healing delete,
// and optional sliding renewal.
func fetchRow(ctx context.Context, e *Engine, op, partition, key string, renew bool) (sqlstore.Row, bool, error) {
	if err := e.checkActive(ctx, op); err != nil {
		return sqlstore.Row{}, false, err
	}
	partition, key = e.truncate(partition, key)

	row, err := e.backend.PeekEntry(ctx, partition, key)
	if err != nil {
		if errors.Is(err, sqlstore.ErrNotFound) {
			return sqlstore.Row{}, false, nil
		}
		e.recordError(op, KindBackend, err)
		return sqlstore.Row{}, false, nil
	}

	nowT := now(e.clock)
	row, ok := e.resolveExpiryAndRenew(ctx, op, row, nowT, renew)
	if !ok {
		return sqlstore.Row{}, false, nil
	}
	return row, true, nil
}

// resolveExpiryAndRenew applies the self-healing delete and best-effort sliding renewal (step 6) to a single row
// already fetched from the backend.
func (e *Engine) resolveExpiryAndRenew(ctx context.Context, op string, row sqlstore.Row, nowT time.Time, renew bool) (sqlstore.Row, bool) {
	if row.UTCExpiry < nowT.Unix() {
		if _, err := e.backend.DeleteEntry(ctx, row.Partition, row.Key); err != nil {
			e.recordWarn(op+".self_heal_delete", err)
		}
		return sqlstore.Row{}, false
	}
	if renew && row.Interval > 0 {
		newExpiry := nowT.Unix() + row.Interval
		if err := e.backend.UpdateEntryExpiry(ctx, row.Partition, row.Key, newExpiry); err != nil {
			// Best-effort: the read still returns the value even if
			// renewal fails.
			e.recordWarn(op+".renew", err)
		} else {
			row.UTCExpiry = newExpiry
		}
	}
	return row, true
}

func (e *Engine) requirePeek(op string) error {
	if !e.canPeek {
		return notSupported(op, "backend does not support peek")
	}
	return nil
}

// decodeRow deserializes row's value into out, applying the tamper
// check and swallowing failures: on failure the
// offending row is removed, a WARN is logged, and the caller's read
// observes "not found".
func decodeRow(ctx context.Context, e *Engine, op string, row sqlstore.Row, out any) bool {
	err := e.decodePayload(row.Value, row.Compressed, row.Partition, row.Key, row.UTCCreation, out)
	if err == nil {
		return true
	}

	var kind Kind = KindSerialization
	var engErr *Error
	if errors.As(err, &engErr) {
		kind = engErr.Kind
	}
	wrapped := newErr(kind, op, err)
	e.mu.Lock()
	e.lastErr = wrapped
	e.mu.Unlock()
	e.recordWarn(op, wrapped)
	if _, delErr := e.backend.DeleteEntry(ctx, row.Partition, row.Key); delErr != nil {
		e.recordWarn(op+".tamper_cleanup", delErr)
	}
	return false
}

func rowToItem[T any](row sqlstore.Row, v T) Item[T] {
	var parents []string
	for _, p := range row.ParentKeys {
		if p.Valid {
			parents = append(parents, p.String)
		}
	}
	return Item[T]{
		Partition:   row.Partition,
		Key:         row.Key,
		Value:       v,
		Interval:    time.Duration(row.Interval) * time.Second,
		UTCExpiry:   time.Unix(row.UTCExpiry, 0).UTC(),
		UTCCreation: time.Unix(row.UTCCreation, 0).UTC(),
		ParentKeys:  parents,
	}
}
