package bufpool

import "testing"

func TestAcquireReleaseReuse(t *testing.T) {
	p := New(4)
	l := p.Acquire()
	l.Buf.WriteString("hello")
	l.Release()

	l2 := p.Acquire()
	if l2.Buf.Len() != 0 {
		t.Fatalf("expected reused buffer to be reset, got len=%d", l2.Buf.Len())
	}
	l2.Release()
}

func TestReleaseIsIdempotent(t *testing.T) {
	p := New(1)
	l := p.Acquire()
	l.Release()
	l.Release() // must not panic or double-return to the semaphore
}
