// Package distshim adapts the cache engine to the two narrow interfaces
// external collaborators expect: a distributed-cache shim (get/set/
// refresh/remove with a sliding-or-absolute expiry policy) and a
// legacy output-cache provider (add/get/set/remove over byte payloads).
// Both are thin translations onto internal/engine's operations; neither
// introduces storage or policy logic of its own.
package distshim

import (
	"context"
	"errors"
	"time"

	"github.com/kvlite/kvlite/internal/engine"
)

// ErrAmbiguousPolicy is returned by Set when a Policy names more than one
// expiry family, or none at all.
var ErrAmbiguousPolicy = errors.New("distshim: policy must set exactly one of sliding, absolute, or absolute-relative")

// Policy selects how Set's entry expires. Exactly one field may be set.
type Policy struct {
	Sliding          *time.Duration
	Absolute         *time.Time
	AbsoluteRelative *time.Duration
}

// Sliding builds a Policy that renews on every read.
func Sliding(d time.Duration) Policy { return Policy{Sliding: &d} }

// Absolute builds a Policy with a fixed, non-renewing expiry instant.
func Absolute(t time.Time) Policy { return Policy{Absolute: &t} }

// AbsoluteRelative builds a Policy with a fixed expiry computed as the
// engine's current instant plus d; like Absolute, it never renews.
func AbsoluteRelative(d time.Duration) Policy { return Policy{AbsoluteRelative: &d} }

func (p Policy) count() int {
	n := 0
	if p.Sliding != nil {
		n++
	}
	if p.Absolute != nil {
		n++
	}
	if p.AbsoluteRelative != nil {
		n++
	}
	return n
}

// Shim is the distributed-cache adapter. It operates entirely within one
// partition, since the distributed-cache contract has no partition
// concept of its own.
type Shim struct {
	engine    *engine.Engine
	partition string
}

// New returns a Shim storing entries in partition.
func New(e *engine.Engine, partition string) *Shim {
	return &Shim{engine: e, partition: partition}
}

// Get returns the bytes stored at key, renewing a sliding entry.
func (s *Shim) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return engine.Get[[]byte](ctx, s.engine, s.partition, key)
}

// Refresh is a renewing Get: for a sliding entry it extends the expiry as
// a side effect, matching the read itself.
func (s *Shim) Refresh(ctx context.Context, key string) ([]byte, bool, error) {
	return s.Get(ctx, key)
}

// Set stores value under key per policy.
func (s *Shim) Set(ctx context.Context, key string, value []byte, policy Policy) error {
	if policy.count() != 1 {
		return ErrAmbiguousPolicy
	}
	switch {
	case policy.Sliding != nil:
		return engine.AddSliding(ctx, s.engine, s.partition, key, value, *policy.Sliding)
	case policy.Absolute != nil:
		return engine.AddTimed(ctx, s.engine, s.partition, key, value, *policy.Absolute)
	default:
		return engine.AddTimed(ctx, s.engine, s.partition, key, value, s.engine.Now().Add(*policy.AbsoluteRelative))
	}
}

// Remove deletes key and its cascaded descendants.
func (s *Shim) Remove(ctx context.Context, key string) error {
	return engine.Remove(ctx, s.engine, s.partition, key)
}

// OutputCache adapts the engine to the legacy web output-cache provider
// contract: add is add-if-absent, returning whatever is already stored
// when key is present.
type OutputCache struct {
	engine    *engine.Engine
	partition string
}

// NewOutputCache returns an OutputCache storing entries in partition.
func NewOutputCache(e *engine.Engine, partition string) *OutputCache {
	return &OutputCache{engine: e, partition: partition}
}

// Add stores value under key with utcExpiry if key is absent, or returns
// the value already present.
func (o *OutputCache) Add(ctx context.Context, key string, value []byte, utcExpiry time.Time) ([]byte, error) {
	return engine.GetOrAddTimed[[]byte](ctx, o.engine, o.partition, key, utcExpiry, func(context.Context) ([]byte, error) {
		return value, nil
	})
}

// Get returns the bytes stored at key without renewal.
func (o *OutputCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return engine.Get[[]byte](ctx, o.engine, o.partition, key)
}

// Set unconditionally stores value under key with utcExpiry.
func (o *OutputCache) Set(ctx context.Context, key string, value []byte, utcExpiry time.Time) error {
	return engine.AddTimed(ctx, o.engine, o.partition, key, value, utcExpiry)
}

// Remove deletes key.
func (o *OutputCache) Remove(ctx context.Context, key string) error {
	return engine.Remove(ctx, o.engine, o.partition, key)
}
