package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/kvlite/kvlite/internal/hash"
	"github.com/kvlite/kvlite/internal/sqlstore"
	"github.com/kvlite/kvlite/internal/telemetry"
)

// AddSliding inserts or replaces (partition, key) as a sliding entry:
// every renewing read extends utc_expiry by interval.
func AddSliding[T any](ctx context.Context, e *Engine, partition, key string, value T, interval time.Duration, parentKeys ...string) error {
	return addPolicy(ctx, e, "add_sliding", partition, key, value, interval, time.Time{}, parentKeys)
}

// AddStatic is AddSliding using the configured static interval as D.
func AddStatic[T any](ctx context.Context, e *Engine, partition, key string, value T, parentKeys ...string) error {
	interval := time.Duration(e.settings.StaticIntervalDays) * 24 * time.Hour
	return addPolicy(ctx, e, "add_static", partition, key, value, interval, time.Time{}, parentKeys)
}

// AddTimed inserts or replaces (partition, key) as a timed entry with an
// absolute expiry that reads never renew.
func AddTimed[T any](ctx context.Context, e *Engine, partition, key string, value T, utcExpiry time.Time, parentKeys ...string) error {
	return addPolicy(ctx, e, "add_timed", partition, key, value, 0, utcExpiry, parentKeys)
}

// addPolicy implements the write path shared by all three
// add_* operations. interval > 0 selects sliding/static (utcExpiry is
// computed as now+interval); interval == 0 selects timed (utcExpiry must
// be supplied, or is taken as "now" if the zero Time).
func addPolicy[T any](ctx context.Context, e *Engine, op, partition, key string, value T, interval time.Duration, utcExpiry time.Time, parentKeys []string) error {
	if err := e.checkActive(ctx, op); err != nil {
		return err
	}
	if partition == "" {
		return invalidArg(op, "partition must be non-empty")
	}
	if key == "" {
		return invalidArg(op, "key must be non-empty")
	}
	if err := validateParentKeys(op, parentKeys); err != nil {
		return err
	}
	if !e.codec.CanSerialize(value) {
		return invalidArg(op, "value type is not supported by the active serializer")
	}

	partition, key = e.truncate(partition, key)
	nowT := now(e.clock)

	var expiry time.Time
	if interval > 0 {
		expiry = nowT.Add(interval)
	} else if utcExpiry.IsZero() {
		expiry = nowT
	} else {
		expiry = utcExpiry
	}

	var v any = value
	payload, compressed, err := e.buildPayload(v, partition, key, nowT.Unix())
	if err != nil {
		e.recordError(op, KindSerialization, err)
		return nil
	}

	row := sqlstore.Row{
		Partition:   partition,
		Key:         key,
		Hash:        hash.EntryHash(partition, key),
		UTCExpiry:   expiry.Unix(),
		Interval:    int64(interval / time.Second),
		Value:       payload,
		Compressed:  compressed,
		UTCCreation: nowT.Unix(),
	}
	for i := 0; i < sqlstore.MaxParentKeys && i < len(parentKeys); i++ {
		row.ParentKeys[i] = sql.NullString{String: truncateTo(parentKeys[i], e.settings.MaxKeyNameLength), Valid: true}
	}

	if err := e.checkActive(ctx, op); err != nil {
		return err
	}
	if err := e.backend.InsertOrUpdateEntry(ctx, row); err != nil {
		e.recordError(op, KindBackend, err)
		return nil
	}

	e.maybeAutoCleanup()
	return nil
}

// maybeAutoCleanup fires a best-effort background sweep with probability
// settings.ChancesOfAutoCleanup. Failures are
// swallowed and not retried.
func (e *Engine) maybeAutoCleanup() {
	if e.settings.ChancesOfAutoCleanup <= 0 {
		return
	}
	if e.randFloat() >= e.settings.ChancesOfAutoCleanup {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if e.disposed.Load() {
			return
		}
		ctx := context.Background()
		telemetry.Metrics.AutoCleanupRuns.Add(ctx, 1)
		_, err := e.backend.DeleteEntries(ctx, nil, true, now(e.clock).Unix())
		if err != nil {
			e.recordWarn("auto_cleanup", err)
		}
	}()
}
