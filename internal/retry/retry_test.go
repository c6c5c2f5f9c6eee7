package retry

import (
	"context"
	"errors"
	"testing"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := &Policy{Attempts: 3}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestDoGivesUpAfterAttempts(t *testing.T) {
	p := &Policy{Attempts: 2}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("always fails")
	})
	if err == nil {
		t.Fatal("expected final error")
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestDoStopsOnPermanent(t *testing.T) {
	p := &Policy{Attempts: 5}
	calls := 0
	sentinel := errors.New("boom")
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapping %v", err, sentinel)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on permanent error)", calls)
	}
}

func TestDoRespectsCancellation(t *testing.T) {
	p := &Policy{Attempts: 5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return nil
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0 (cancellation checked before first attempt)", calls)
	}
}
