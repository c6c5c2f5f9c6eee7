package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kvlite/kvlite/internal/clock"
	"github.com/kvlite/kvlite/internal/engine"
	"github.com/kvlite/kvlite/internal/settings"
	"github.com/kvlite/kvlite/internal/sqlstore/memstore"
)

func newTestEngine(t *testing.T) (*engine.Engine, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := settings.Default()
	s.ConnectionString = "memstore"
	e := engine.New(engine.Options{
		Backend:  memstore.New(),
		Settings: s,
		Clock:    fake,
		CanPeek:  true,
		Rand:     func() float64 { return 1 }, // never trigger auto-cleanup
	})
	t.Cleanup(func() { _ = e.Close() })
	return e, fake
}

func TestAddSlidingThenGetRenews(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddSliding(ctx, e, "P", "k", "v1", time.Hour))

	v, found, err := engine.Get[string](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", v)

	item, found, err := engine.GetItem[string](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)
	firstExpiry := item.UTCExpiry

	fake.Advance(30 * time.Minute)
	_, found, err = engine.Get[string](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)

	item, found, err = engine.GetItem[string](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, item.UTCExpiry.After(firstExpiry), "sliding read should push expiry forward")
}

func TestAddTimedDoesNotRenew(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	expiry := fake.Now().Add(time.Hour)
	require.NoError(t, engine.AddTimed(ctx, e, "P", "k", 42, expiry))

	fake.Advance(30 * time.Minute)
	_, found, err := engine.Get[int](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)

	item, found, err := engine.GetItem[int](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, expiry.Unix(), item.UTCExpiry.Unix())
}

func TestExpiredEntryIsInvisibleAndSelfHeals(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddTimed(ctx, e, "P", "k", "v", fake.Now().Add(time.Minute)))
	fake.Advance(2 * time.Minute)

	_, found, err := engine.Get[string](ctx, e, "P", "k")
	require.NoError(t, err)
	require.False(t, found)

	require.False(t, engine.Contains(ctx, e, "P", "k"))

	n, err := engine.LongCount(ctx, e, nil, engine.ConsiderExpiry)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPeekDoesNotRenew(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddSliding(ctx, e, "P", "k", "v", time.Hour))
	item, found, err := engine.PeekItem[string](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)
	firstExpiry := item.UTCExpiry

	fake.Advance(time.Minute)
	item, found, err = engine.PeekItem[string](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, firstExpiry, item.UTCExpiry, "peek must not extend sliding expiry")
}

func TestPeekNotSupportedWhenBackendCannotPeek(t *testing.T) {
	fake := clock.NewFake(time.Now())
	s := settings.Default()
	s.ConnectionString = "memstore"
	e := engine.New(engine.Options{
		Backend:  memstore.New(),
		Settings: s,
		Clock:    fake,
		CanPeek:  false,
	})
	defer e.Close()

	_, _, err := engine.Peek[string](context.Background(), e, "P", "k")
	require.ErrorIs(t, err, engine.ErrNotSupported)
}

func TestRemoveCascadesToChildren(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddSliding(ctx, e, "P", "parent", "pv", time.Hour))
	require.NoError(t, engine.AddSliding(ctx, e, "P", "child", "cv", time.Hour, "parent"))

	require.NoError(t, engine.Remove(ctx, e, "P", "parent"))

	require.False(t, engine.Contains(ctx, e, "P", "parent"))
	require.False(t, engine.Contains(ctx, e, "P", "child"))
}

func TestRemoveCascadesThroughMultipleLevels(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddSliding(ctx, e, "P", "root", "v", time.Hour))
	require.NoError(t, engine.AddSliding(ctx, e, "P", "a", "v", time.Hour, "root"))
	require.NoError(t, engine.AddSliding(ctx, e, "P", "b", "v", time.Hour, "root"))
	require.NoError(t, engine.AddSliding(ctx, e, "P", "c", "v", time.Hour, "a"))

	require.NoError(t, engine.Remove(ctx, e, "P", "root"))

	require.False(t, engine.Contains(ctx, e, "P", "root"))
	require.False(t, engine.Contains(ctx, e, "P", "a"))
	require.False(t, engine.Contains(ctx, e, "P", "b"))
	require.False(t, engine.Contains(ctx, e, "P", "c"))
}

func TestRemoveCascadesThroughLinearChain(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddSliding(ctx, e, "P", "root", "v", time.Hour))
	require.NoError(t, engine.AddSliding(ctx, e, "P", "a", "v", time.Hour, "root"))
	require.NoError(t, engine.AddSliding(ctx, e, "P", "b", "v", time.Hour, "a"))

	require.NoError(t, engine.Remove(ctx, e, "P", "root"))

	require.False(t, engine.Contains(ctx, e, "P", "a"))
	require.False(t, engine.Contains(ctx, e, "P", "b"))
}

func TestClearConsideringExpiryCascadesToNonExpiredChildren(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	expiry := fake.Now().Add(time.Minute)
	require.NoError(t, engine.AddTimed(ctx, e, "P", "parent", "v", expiry))
	require.NoError(t, engine.AddSliding(ctx, e, "P", "child", "v", time.Hour, "parent"))

	fake.Advance(time.Hour)

	n, err := engine.Clear(ctx, e, nil, engine.ConsiderExpiry)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.False(t, engine.Contains(ctx, e, "P", "parent"))
	require.False(t, engine.Contains(ctx, e, "P", "child"))
}

func TestClearRemovesAllInPartition(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.AddSliding(ctx, e, "P", "a", 1, time.Hour))
	require.NoError(t, engine.AddSliding(ctx, e, "P", "b", 2, time.Hour))
	require.NoError(t, engine.AddSliding(ctx, e, "Q", "c", 3, time.Hour))

	p := "P"
	n, err := engine.Clear(ctx, e, &p, engine.IgnoreExpiry)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.False(t, engine.Contains(ctx, e, "P", "a"))
	require.True(t, engine.Contains(ctx, e, "Q", "c"))
}

func TestAddRejectsTooManyParentKeys(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	err := engine.AddSliding(ctx, e, "P", "k", "v", time.Hour, "p1", "p2", "p3", "p4", "p5", "p6")
	require.ErrorIs(t, err, engine.ErrNotSupported)
}

func TestAddRejectsEmptyPartitionOrKey(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.ErrorIs(t, engine.AddSliding(ctx, e, "", "k", "v", time.Hour), engine.ErrInvalidArg)
	require.ErrorIs(t, engine.AddSliding(ctx, e, "P", "", "v", time.Hour), engine.ErrInvalidArg)
}

func TestOperationsFailAfterClose(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Close())

	err := engine.AddSliding(context.Background(), e, "P", "k", "v", time.Hour)
	require.ErrorIs(t, err, engine.ErrDisposed)
}

func TestGetOrAddStaticProducesOnceOnMiss(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	calls := 0
	produce := func(ctx context.Context) (string, error) {
		calls++
		return "computed", nil
	}

	v, err := engine.GetOrAddStatic(ctx, e, "P", "k", produce)
	require.NoError(t, err)
	require.Equal(t, "computed", v)
	require.Equal(t, 1, calls)

	v, err = engine.GetOrAddStatic(ctx, e, "P", "k", produce)
	require.NoError(t, err)
	require.Equal(t, "computed", v)
	require.Equal(t, 1, calls, "second call should read the cached value without re-invoking the producer")
}

func TestGetOrAddTimedStoresWithAbsoluteExpiry(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	expiry := fake.Now().Add(2 * time.Hour)
	v, err := engine.GetOrAddTimed(ctx, e, "P", "k", expiry, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)

	item, found, err := engine.GetItem[int](ctx, e, "P", "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, expiry.Unix(), item.UTCExpiry.Unix())
}

func TestLastErrorIsNilOnFreshEngine(t *testing.T) {
	e, _ := newTestEngine(t)
	require.Nil(t, e.LastError())
}
