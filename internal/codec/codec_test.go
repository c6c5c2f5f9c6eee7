package codec

import (
	"bytes"
	"testing"
)

func TestStructuralRoundTrip(t *testing.T) {
	c := NewStructural()
	var buf bytes.Buffer
	if err := c.Serialize(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var out map[string]int
	if err := c.Deserialize(&buf, &out); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if out["a"] != 1 {
		t.Fatalf("out = %v, want a=1", out)
	}
}

func TestStructuralCanSerialize(t *testing.T) {
	c := NewStructural()
	if !c.CanSerialize("hello") {
		t.Fatal("expected strings to be serializable")
	}
	if c.CanSerialize(make(chan int)) {
		t.Fatal("expected channels to be rejected")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	c := NewBinary(DefaultOptions())
	type point struct{ X, Y int }
	var buf bytes.Buffer
	if err := c.Serialize(&buf, point{X: 1, Y: 2}); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var out point
	if err := c.Deserialize(&buf, &out); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if out != (point{X: 1, Y: 2}) {
		t.Fatalf("out = %+v, want {1 2}", out)
	}
}

func TestBinaryBinderRejects(t *testing.T) {
	opts := DefaultOptions()
	opts.Binder = func(name string) bool { return false }
	c := NewBinary(opts)
	var buf bytes.Buffer
	_ = NewBinary(DefaultOptions()).Serialize(&buf, 42)
	var out int
	if err := c.Deserialize(&buf, &out); err == nil {
		t.Fatal("expected binder rejection to error")
	}
}
