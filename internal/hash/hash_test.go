package hash

import "testing"

func TestEntryHashDeterministic(t *testing.T) {
	a := EntryHash("P", "k")
	b := EntryHash("P", "k")
	if a != b {
		t.Fatalf("EntryHash not deterministic: %d != %d", a, b)
	}
}

func TestEntryHashChangesWithPartitionOrKey(t *testing.T) {
	base := EntryHash("P", "k")
	if EntryHash("Q", "k") == base {
		t.Fatal("expected different hash for different partition")
	}
	if EntryHash("P", "j") == base {
		t.Fatal("expected different hash for different key")
	}
}

func TestEntryHashNoConcatenationCollision(t *testing.T) {
	if EntryHash("ab", "c") == EntryHash("a", "bc") {
		t.Fatal("expected length-prefixing to prevent concatenation collisions")
	}
}

func TestAntiTamperDependsOnCreation(t *testing.T) {
	a := AntiTamper("P", "k", 1000)
	b := AntiTamper("P", "k", 1001)
	if a == b {
		t.Fatal("expected anti-tamper hash to depend on creation timestamp")
	}
}

func TestPrefixRoundTrip(t *testing.T) {
	h := AntiTamper("P", "k", 42)
	buf := make([]byte, PrefixSize)
	PutPrefix(buf, h)
	if got := ReadPrefix(buf); got != h {
		t.Fatalf("ReadPrefix = %d, want %d", got, h)
	}
}
