package engine

import "context"

// Count returns the number of rows matching the optional partition and
// expiry mode, as an int32.
func Count(ctx context.Context, e *Engine, partition *string, mode ExpiryMode) (int32, error) {
	n, err := LongCount(ctx, e, partition, mode)
	return int32(n), err
}

// LongCount is Count with a 64-bit result.
func LongCount(ctx context.Context, e *Engine, partition *string, mode ExpiryMode) (int64, error) {
	if err := e.checkActive(ctx, "count"); err != nil {
		return 0, err
	}
	if mode == IgnoreExpiry {
		n, err := e.backend.CountEntries(ctx, partition)
		if err != nil {
			e.recordError("count", KindBackend, err)
			return 0, nil
		}
		return n, nil
	}

	// consider_expiry: count_entries has no expiry predicate, so the
	// engine filters valid rows itself via peek_entries, preserving
	// expiry invisibility without a dedicated counting query.
	rows, err := e.backend.PeekEntries(ctx, partition)
	if err != nil {
		e.recordError("count", KindBackend, err)
		return 0, nil
	}
	nowUnix := now(e.clock).Unix()
	var n int64
	for _, row := range rows {
		if row.UTCExpiry >= nowUnix {
			n++
		}
	}
	return n, nil
}

// CacheSizeInBytes returns the backend's size estimate.
func CacheSizeInBytes(ctx context.Context, e *Engine) (int64, error) {
	if err := e.checkActive(ctx, "get_cache_size_in_bytes"); err != nil {
		return 0, err
	}
	n, err := e.backend.CacheSizeInBytes(ctx)
	if err != nil {
		e.recordError("get_cache_size_in_bytes", KindBackend, err)
		return 0, nil
	}
	return n, nil
}
