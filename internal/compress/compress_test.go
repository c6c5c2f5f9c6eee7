package compress

import (
	"bytes"
	"io"
	"testing"
)

func TestGzipRoundTrip(t *testing.T) {
	c := New()
	var buf bytes.Buffer
	w, err := c.NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	payload := bytes.Repeat([]byte("the quick brown fox "), 200)
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if buf.Len() >= len(payload) {
		t.Fatalf("expected compression to shrink repetitive payload: got %d bytes for %d input", buf.Len(), len(payload))
	}

	r, err := c.NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round-tripped payload mismatch")
	}
}
