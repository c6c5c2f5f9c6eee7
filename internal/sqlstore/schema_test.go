package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/kvlite/kvlite/internal/sqlstore/sqlite"
)

func TestEnsureSchemaCreatesTableIdempotently(t *testing.T) {
	path := "file:" + filepath.Join(t.TempDir(), "ensure.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	schema := Schema{Dialect: sqlite.Dialect{}, TableName: "kvl_cache_entries"}
	if err := EnsureSchema(db, schema, 255, 255); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := EnsureSchema(db, schema, 255, 255); err != nil {
		t.Fatalf("EnsureSchema (second call): %v", err)
	}

	store, err := Open(db, schema)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	row := Row{Partition: "P", Key: "k", Hash: 1, UTCExpiry: 100, Interval: 0, UTCCreation: 50}
	if err := store.InsertOrUpdateEntry(context.Background(), row); err != nil {
		t.Fatalf("InsertOrUpdateEntry: %v", err)
	}
}
