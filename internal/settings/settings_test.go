package settings

import (
	"path/filepath"
	"testing"
)

func TestDefaultValidatesOnceConnectionStringSet(t *testing.T) {
	s := Default()
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for missing connection_string")
	}
	s.ConnectionString = "file:test.db"
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsBadSchemaName(t *testing.T) {
	s := Default()
	s.ConnectionString = "file:test.db"
	s.CacheSchemaName = "bad-name!"
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for invalid cache_schema_name")
	}
}

func TestValidateRejectsOutOfRangeProbability(t *testing.T) {
	s := Default()
	s.ConnectionString = "file:test.db"
	s.ChancesOfAutoCleanup = 1.5
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for out-of-range chances_of_auto_cleanup")
	}
}

func TestLoadSaveYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvlite.yaml")

	s := Default()
	s.ConnectionString = "file:" + filepath.Join(dir, "cache.db")
	s.CacheSchemaName = "kvlite"

	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ConnectionString != s.ConnectionString || got.CacheSchemaName != s.CacheSchemaName {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestLoadSaveTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvlite.toml")

	s := Default()
	s.ConnectionString = "file:" + filepath.Join(dir, "cache.db")

	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ConnectionString != s.ConnectionString {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvlite.json")
	if err := Save(path, Default()); err == nil {
		t.Fatal("expected Save to reject .json")
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected Load to reject .json")
	}
}
