package engine

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// group collapses concurrent producer calls for the same (partition, key)
// across all three get_or_add_* variants into a single backend round
// trip, so a thundering herd of misses on the same key runs the producer
// once rather than once per caller.
var group singleflight.Group

// Producer computes the value to store on a get_or_add_* miss. It runs
// outside any backend call; its error short-circuits the add and is
// returned to the caller unwrapped.
type Producer[T any] func(ctx context.Context) (T, error)

// GetOrAddSliding returns the existing value at (partition, key), or
// invokes produce and stores the result as a sliding entry on miss.
func GetOrAddSliding[T any](ctx context.Context, e *Engine, partition, key string, interval time.Duration, produce Producer[T], parentKeys ...string) (T, error) {
	return getOrAdd(ctx, e, "get_or_add_sliding", partition, key, produce, func(v T) error {
		return AddSliding(ctx, e, partition, key, v, interval, parentKeys...)
	})
}

// GetOrAddStatic is GetOrAddSliding using the configured static interval.
func GetOrAddStatic[T any](ctx context.Context, e *Engine, partition, key string, produce Producer[T], parentKeys ...string) (T, error) {
	return getOrAdd(ctx, e, "get_or_add_static", partition, key, produce, func(v T) error {
		return AddStatic(ctx, e, partition, key, v, parentKeys...)
	})
}

// GetOrAddTimed returns the existing value, or invokes produce and stores
// the result with an absolute expiry on miss.
func GetOrAddTimed[T any](ctx context.Context, e *Engine, partition, key string, utcExpiry time.Time, produce Producer[T], parentKeys ...string) (T, error) {
	return getOrAdd(ctx, e, "get_or_add_timed", partition, key, produce, func(v T) error {
		return AddTimed(ctx, e, partition, key, v, utcExpiry, parentKeys...)
	})
}

// getOrAdd implements the shared read-then-produce-then-write shape: a
// plain Get first, and on miss a singleflight-collapsed produce+add. The
// producer's result is NOT cached across goroutines beyond singleflight's
// own in-flight window; a second miss after the first add completes reads
// through normally.
func getOrAdd[T any](ctx context.Context, e *Engine, op, partition, key string, produce Producer[T], add func(T) error) (T, error) {
	var zero T
	if v, found, err := Get[T](ctx, e, partition, key); err != nil {
		return zero, err
	} else if found {
		return v, nil
	}

	sfKey := op + "\x00" + partition + "\x00" + key
	result, err, _ := group.Do(sfKey, func() (any, error) {
		// Re-check after winning the singleflight race: another caller
		// may have already produced and stored the value while this one
		// waited.
		if v, found, err := Get[T](ctx, e, partition, key); err == nil && found {
			return v, nil
		}
		v, err := produce(ctx)
		if err != nil {
			return zero, err
		}
		if err := add(v); err != nil {
			return zero, err
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}
