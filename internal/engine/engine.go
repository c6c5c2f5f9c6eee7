// Package engine implements the cache engine:
// the entry data model, the three expiry modes, cascade-on-delete,
// serialize+compress+anti-tamper write path, self-healing read path, and
// the uniform error-swallowing policy that keeps backend faults from
// propagating to callers.
//
// Every public operation validates preconditions ahead of any backend
// call, executes through a retry-wrapped Backend, and translates
// sentinel errors, all scoped down to a single cache_entries row.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kvlite/kvlite/internal/bufpool"
	"github.com/kvlite/kvlite/internal/clock"
	"github.com/kvlite/kvlite/internal/codec"
	"github.com/kvlite/kvlite/internal/compress"
	"github.com/kvlite/kvlite/internal/kvlog"
	"github.com/kvlite/kvlite/internal/settings"
	"github.com/kvlite/kvlite/internal/sqlstore"
)

// ExpiryMode selects whether count/clear consider row expiry.
type ExpiryMode int

const (
	ConsiderExpiry ExpiryMode = iota
	IgnoreExpiry
)

// Options configures a new Engine. Every field but Backend and Settings
// has a working default.
type Options struct {
	Backend    sqlstore.Backend
	Settings   settings.Settings
	Clock      clock.Clock
	Codec      codec.Codec
	Compressor compress.Compressor
	BufPool    *bufpool.Pool
	Logger     kvlog.Logger
	// CanPeek reports whether the configured backend supports
	// non-renewing reads; false makes every peek* operation fail with
	// NotSupported.
	CanPeek bool
	// Rand, if set, replaces the source used to roll auto-cleanup's
	// probability; tests inject a deterministic one.
	Rand func() float64
}

// Engine is the cache engine. It is safe for concurrent use by
// multiple goroutines; the only mutable engine-local state is last_error
// and disposed.
type Engine struct {
	backend    sqlstore.Backend
	settings   settings.Settings
	clock      clock.Clock
	codec      codec.Codec
	compressor compress.Compressor
	bufpool    *bufpool.Pool
	logger     kvlog.Logger
	canPeek    bool
	randFloat  func() float64

	disposed atomic.Bool

	mu      sync.Mutex
	lastErr error

	wg sync.WaitGroup // tracks in-flight fire-and-forget cleanup tasks
}

// New constructs an Engine from opts, applying defaults for any
// unconfigured collaborator.
func New(opts Options) *Engine {
	e := &Engine{
		backend:    opts.Backend,
		settings:   opts.Settings,
		clock:      opts.Clock,
		codec:      opts.Codec,
		compressor: opts.Compressor,
		bufpool:    opts.BufPool,
		logger:     opts.Logger,
		canPeek:    opts.CanPeek,
		randFloat:  opts.Rand,
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.codec == nil {
		e.codec = codec.NewStructural()
	}
	if e.compressor == nil {
		e.compressor = compress.New()
	}
	if e.bufpool == nil {
		e.bufpool = bufpool.New(32)
	}
	if e.logger == nil {
		e.logger = kvlog.Default
	}
	if e.randFloat == nil {
		e.randFloat = rand.Float64
	}
	return e
}

// Close disposes the engine: further operations fail with Disposed, and
// Close waits for any in-flight fire-and-forget auto-cleanup task to
// finish before releasing the backend.
func (e *Engine) Close() error {
	e.disposed.Store(true)
	e.wg.Wait()
	return e.backend.Close()
}

// Now returns the engine's current instant, letting external
// collaborators (e.g. distshim) compute expiries relative to the same
// clock the engine itself uses.
func (e *Engine) Now() time.Time {
	return now(e.clock)
}

// LastError returns the most recently swallowed error, or nil. It is
// last-writer-wins and observational only.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Engine) recordError(op string, kind Kind, err error) {
	wrapped := newErr(kind, op, err)
	e.mu.Lock()
	e.lastErr = wrapped
	e.mu.Unlock()
	e.logger.Errorf("%v", wrapped)
}

func (e *Engine) recordWarn(op string, err error) {
	e.logger.Warnf("engine: %s: %v", op, err)
}

// checkActive enforces the Disposed and Cancelled preconditions shared by
// every public operation.
func (e *Engine) checkActive(ctx context.Context, op string) error {
	if e.disposed.Load() {
		return newErr(KindDisposed, op, nil)
	}
	if err := ctx.Err(); err != nil {
		return cancelled(op, err)
	}
	return nil
}

// truncate clamps partition and key to the configured maximum lengths.
func (e *Engine) truncate(partition, key string) (string, string) {
	return truncateTo(partition, e.settings.MaxPartitionNameLength), truncateTo(key, e.settings.MaxKeyNameLength)
}

func truncateTo(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}

// validateParentKeys enforces the max-parent-keys-per-item precondition.
func validateParentKeys(op string, parentKeys []string) error {
	if len(parentKeys) > settings.MaxParentKeysPerItem {
		return notSupported(op, "too many parent keys")
	}
	for _, k := range parentKeys {
		if k == "" {
			return invalidArg(op, "parent key must be non-empty")
		}
	}
	return nil
}

func now(c clock.Clock) time.Time { return c.Now() }
