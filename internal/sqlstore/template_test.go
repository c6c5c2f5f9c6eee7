package sqlstore

import (
	"strings"
	"testing"

	"github.com/kvlite/kvlite/internal/sqlstore/mysqldialect"
	"github.com/kvlite/kvlite/internal/sqlstore/sqlite"
)

func TestValidateRejectsBadIdentifiers(t *testing.T) {
	s := Schema{Dialect: sqlite.Dialect{}, SchemaName: "", TableName: "bad-table"}
	if _, err := Build(s); err == nil {
		t.Fatal("expected error for invalid table name")
	}
}

func TestBuildProducesMinifiedStatements(t *testing.T) {
	s := Schema{Dialect: sqlite.Dialect{}, SchemaName: "", TableName: "kvl_cache_entries"}
	stmts, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(stmts.InsertOrUpdateEntry.SQL, "\n") {
		t.Fatal("expected minified SQL with no newlines")
	}
	if strings.Contains(stmts.InsertOrUpdateEntry.SQL, "\t") {
		t.Fatal("expected minified SQL with no tabs")
	}
	if len(stmts.InsertOrUpdateEntry.Params) != 24 {
		t.Fatalf("InsertOrUpdateEntry.Params = %d, want 24 (13 insert cols + 11 update-set cols)", len(stmts.InsertOrUpdateEntry.Params))
	}
}

func TestDeleteEntryParamsMatchPlaceholderCount(t *testing.T) {
	s := Schema{Dialect: sqlite.Dialect{}, SchemaName: "", TableName: "kvl_cache_entries"}
	stmts, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 2 for target equality, 1 for cascade partition, 5 for parent_key_i
	// equality == 8 placeholder occurrences.
	if len(stmts.DeleteEntry.Params) != 8 {
		t.Fatalf("DeleteEntry.Params = %v, want 8 entries", stmts.DeleteEntry.Params)
	}
}

func TestBuildUsesOnDuplicateKeyForMySQLDialects(t *testing.T) {
	for _, d := range []mysqldialect.Dialect{mysqldialect.New(mysqldialect.MySQL), mysqldialect.New(mysqldialect.Dolt)} {
		s := Schema{Dialect: d, SchemaName: "", TableName: "kvl_cache_entries"}
		stmts, err := Build(s)
		if err != nil {
			t.Fatalf("Build(%s): %v", d.Name(), err)
		}
		sql := stmts.InsertOrUpdateEntry.SQL
		if !strings.Contains(sql, "ON DUPLICATE KEY UPDATE") {
			t.Fatalf("%s InsertOrUpdateEntry.SQL = %q, want ON DUPLICATE KEY UPDATE", d.Name(), sql)
		}
		if strings.Contains(sql, "ON CONFLICT") {
			t.Fatalf("%s InsertOrUpdateEntry.SQL = %q, unexpected ON CONFLICT", d.Name(), sql)
		}
		// Only the 13 insert-column placeholders: VALUES(col) references
		// the row being inserted and consumes no extra placeholders.
		if len(stmts.InsertOrUpdateEntry.Params) != 13 {
			t.Fatalf("%s InsertOrUpdateEntry.Params = %d, want 13", d.Name(), len(stmts.InsertOrUpdateEntry.Params))
		}
	}
}

func TestBuildChildKeysQuery(t *testing.T) {
	s := Schema{Dialect: sqlite.Dialect{}, SchemaName: "", TableName: "kvl_cache_entries"}
	stmts, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 1 partition + 5 parent_key_i equality checks == 6 placeholder
	// occurrences.
	if len(stmts.ChildKeys.Params) != 6 {
		t.Fatalf("ChildKeys.Params = %v, want 6 entries", stmts.ChildKeys.Params)
	}
	if !strings.Contains(stmts.ChildKeys.SQL, "SELECT") {
		t.Fatalf("ChildKeys.SQL = %q, want a SELECT", stmts.ChildKeys.SQL)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	s := Schema{Dialect: sqlite.Dialect{}, SchemaName: "kvlite", TableName: "kvl_cache_entries"}
	a, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.InsertOrUpdateEntry.SQL != b.InsertOrUpdateEntry.SQL {
		t.Fatal("expected identical SQL across repeated Build calls")
	}
}
