// Package bufpool implements the engine's memory-stream pool:
// scoped acquisition of reusable byte buffers with guaranteed release on
// every exit path, capped so the pool cannot grow without bound.
package bufpool

import (
	"bytes"
	"sync"
)

// Pool hands out *bytes.Buffer values, resetting them before reuse.
// The zero value is not usable; construct with New.
type Pool struct {
	pool    sync.Pool
	maxCap  int
	sem     chan struct{}
}

// New returns a Pool that retains at most maxPooled buffers; acquisitions
// beyond that cap still succeed (they just aren't retained on Release).
// maxPooled <= 0 means unbounded retention.
func New(maxPooled int) *Pool {
	p := &Pool{maxCap: maxPooled}
	p.pool.New = func() any { return new(bytes.Buffer) }
	if maxPooled > 0 {
		p.sem = make(chan struct{}, maxPooled)
	}
	return p
}

// Lease is a scoped acquisition: call Release exactly once when done with
// Buf, on every exit path (including error paths), to return it to the
// pool.
type Lease struct {
	Buf     *bytes.Buffer
	release func()
}

// Acquire returns an empty, writable buffer.
func (p *Pool) Acquire() *Lease {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()
	tracked := false
	if p.sem != nil {
		select {
		case p.sem <- struct{}{}:
			tracked = true
		default:
		}
	}
	return &Lease{
		Buf: buf,
		release: func() {
			buf.Reset()
			if p.sem == nil || tracked {
				p.pool.Put(buf)
			}
			if tracked {
				<-p.sem
			}
		},
	}
}

// Release returns the leased buffer to the pool. Safe to call once; a
// second call is a no-op guard against accidental double-release.
func (l *Lease) Release() {
	if l == nil || l.release == nil {
		return
	}
	l.release()
	l.release = nil
}
