// Package memstore is an in-process, map-backed implementation of
// sqlstore.Backend used only by tests that want to exercise the engine
// without standing up a real database. It is not a production backend:
// production use calls for a SQL-backed store, but the engine's logic
// above that contract is what the test suite actually needs to cover, and
// a map is a far cheaper fixture than a real driver per test case.
//
// It plays the same role an in-memory storage implementation usually
// does: a fast unit-test double kept alongside the real sqlite/dolt
// backends.
package memstore

import (
	"context"
	"sync"

	"github.com/kvlite/kvlite/internal/sqlstore"
)

// Store is a mutex-guarded map of (partition, key) -> sqlstore.Row.
type Store struct {
	mu   sync.RWMutex
	rows map[rowKey]sqlstore.Row
}

type rowKey struct{ partition, key string }

// New returns an empty memstore.
func New() *Store {
	return &Store{rows: make(map[rowKey]sqlstore.Row)}
}

var _ sqlstore.Backend = (*Store)(nil)

func (s *Store) InsertOrUpdateEntry(_ context.Context, r sqlstore.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rowKey{r.Partition, r.Key}] = r
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, partition, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	if _, ok := s.rows[rowKey{partition, key}]; ok {
		delete(s.rows, rowKey{partition, key})
		removed++
	}
	for k, r := range s.rows {
		if k.partition != partition {
			continue
		}
		if rowHasParent(r, key) {
			delete(s.rows, k)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) ChildKeys(_ context.Context, partition, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k, r := range s.rows {
		if k.partition != partition {
			continue
		}
		if rowHasParent(r, key) {
			keys = append(keys, k.key)
		}
	}
	return keys, nil
}

func (s *Store) DeleteEntries(_ context.Context, partition *string, considerExpiry bool, nowUnix int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for k, r := range s.rows {
		if partition != nil && k.partition != *partition {
			continue
		}
		if considerExpiry && r.UTCExpiry >= nowUnix {
			continue
		}
		delete(s.rows, k)
		removed++
	}
	return removed, nil
}

func (s *Store) UpdateEntryExpiry(_ context.Context, partition, key string, utcExpiry int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := rowKey{partition, key}
	r, ok := s.rows[k]
	if !ok {
		return sqlstore.ErrNotFound
	}
	r.UTCExpiry = utcExpiry
	s.rows[k] = r
	return nil
}

func (s *Store) ContainsEntry(_ context.Context, partition, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rows[rowKey{partition, key}]
	return ok, nil
}

func (s *Store) CountEntries(_ context.Context, partition *string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for k := range s.rows {
		if partition == nil || k.partition == *partition {
			n++
		}
	}
	return n, nil
}

func (s *Store) PeekEntries(_ context.Context, partition *string) ([]sqlstore.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []sqlstore.Row
	for k, r := range s.rows {
		if partition == nil || k.partition == *partition {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) PeekEntry(_ context.Context, partition, key string) (sqlstore.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[rowKey{partition, key}]
	if !ok {
		return sqlstore.Row{}, sqlstore.ErrNotFound
	}
	return r, nil
}

func (s *Store) PeekValue(_ context.Context, partition, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[rowKey{partition, key}]
	if !ok {
		return nil, false, sqlstore.ErrNotFound
	}
	return r.Value, r.Compressed, nil
}

func (s *Store) CacheSizeInBytes(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, r := range s.rows {
		n += int64(len(r.Partition)+len(r.Key)+len(r.Value)) + 24
	}
	return n, nil
}

func (s *Store) Close() error { return nil }

func rowHasParent(r sqlstore.Row, key string) bool {
	for _, p := range r.ParentKeys {
		if p.Valid && p.String == key {
			return true
		}
	}
	return false
}
