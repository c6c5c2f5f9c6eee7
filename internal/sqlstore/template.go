package sqlstore

import (
	"fmt"
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// MaxParentKeys is the number of parent_key_N columns the schema
// carries.
const MaxParentKeys = 5

// Schema names the table the template builder targets.
type Schema struct {
	Dialect    Dialect
	SchemaName string
	TableName  string
}

// Validate fails fast on malformed identifiers.
func (s Schema) Validate() error {
	if !identRe.MatchString(s.SchemaName) {
		return fmt.Errorf("sqlstore: schema name %q must match %s", s.SchemaName, identRe.String())
	}
	if s.TableName == "" || !identRe.MatchString(s.TableName) {
		return fmt.Errorf("sqlstore: table name %q must match %s", s.TableName, identRe.String())
	}
	return nil
}

func (s Schema) table() string {
	return QualifiedTable(s.Dialect, s.SchemaName, s.TableName)
}

// Statement is a minified SQL string paired with the ordered list of
// logical argument names its placeholders expect — one entry per
// placeholder occurrence, in left-to-right order, so a single logical
// value referenced twice (e.g. the cascade target key) appears twice.
// This keeps the same Params contract correct under both positional ("?")
// and explicitly indexed ("$1") placeholder dialects.
type Statement struct {
	SQL    string
	Params []string
}

// Statements is the cached set of seven queries (the six standard ones
// plus child_keys) and four commands that Open computes once per Store
// from its dialect, schema name and table name, and reuses for the
// lifetime of the Store.
type Statements struct {
	InsertOrUpdateEntry Statement
	DeleteEntry         Statement
	DeleteEntries       Statement
	UpdateEntryExpiry   Statement

	ContainsEntry    Statement
	CountEntries     Statement
	PeekEntries      Statement
	PeekEntry        Statement
	PeekValue        Statement
	CacheSizeInBytes Statement
	ChildKeys        Statement
}

var columns = []string{
	"partition", "key", "hash", "utc_expiry", "interval", "value", "compressed", "utc_creation",
	"parent_key_0", "parent_key_1", "parent_key_2", "parent_key_3", "parent_key_4",
}

// builder accumulates placeholder occurrences for a single statement so
// every SQL string and its Params slice are produced from the same source
// of truth.
type builder struct {
	d      Dialect
	n      int
	params []string
}

func newBuilder(d Dialect) *builder { return &builder{d: d} }

// bind records a new placeholder occurrence for the named logical
// argument and returns its SQL text.
func (b *builder) bind(name string) string {
	b.n++
	b.params = append(b.params, name)
	return b.d.Placeholder(b.n)
}

// Build computes and minifies the statement set for schema.
func Build(schema Schema) (*Statements, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	d := schema.Dialect
	t := schema.table()
	q := d.QuoteIdent

	parentCols := make([]string, MaxParentKeys)
	for i := range parentCols {
		parentCols[i] = fmt.Sprintf("parent_key_%d", i)
	}

	insertOrUpdate, insertParams := buildInsertOrUpdate(d, q, t)
	deleteEntry, deleteEntryParams := buildDeleteEntry(d, q, t, parentCols)
	deleteEntries, deleteEntriesParams := buildDeleteEntries(d, q, t)
	updateExpiry, updateExpiryParams := buildUpdateExpiry(d, q, t)
	containsEntry, containsParams := buildTwoKeyPredicate(d, q, t, "SELECT 1 FROM %s WHERE %s = %s AND %s = %s LIMIT 1")
	countEntries, countParams := buildPartitionOnly(d, q, t, "SELECT COUNT(*) FROM %s WHERE (%s = %s OR %s IS NULL)")
	peekEntries, peekEntriesParams := buildPeekEntries(d, q, t)
	peekEntry, peekEntryParams := buildTwoKeyPredicate(d, q, t, "SELECT "+quoteAll(q, columns...)+" FROM %s WHERE %s = %s AND %s = %s")
	peekValue, peekValueParams := buildPeekValue(d, q, t)
	childKeys, childKeysParams := buildChildKeys(d, q, t, parentCols)
	cacheSize := minify(fmt.Sprintf(
		`SELECT COALESCE(SUM(LENGTH(%s) + LENGTH(%s) + LENGTH(%s) + 24), 0) FROM %s`,
		q("partition"), q("key"), q("value"), t,
	))

	return &Statements{
		InsertOrUpdateEntry: Statement{SQL: insertOrUpdate, Params: insertParams},
		DeleteEntry:         Statement{SQL: deleteEntry, Params: deleteEntryParams},
		DeleteEntries:       Statement{SQL: deleteEntries, Params: deleteEntriesParams},
		UpdateEntryExpiry:   Statement{SQL: updateExpiry, Params: updateExpiryParams},
		ContainsEntry:       Statement{SQL: containsEntry, Params: containsParams},
		CountEntries:        Statement{SQL: countEntries, Params: countParams},
		PeekEntries:         Statement{SQL: peekEntries, Params: peekEntriesParams},
		PeekEntry:           Statement{SQL: peekEntry, Params: peekEntryParams},
		PeekValue:           Statement{SQL: peekValue, Params: peekValueParams},
		CacheSizeInBytes:    Statement{SQL: cacheSize, Params: nil},
		ChildKeys:           Statement{SQL: childKeys, Params: childKeysParams},
	}, nil
}

// buildInsertOrUpdate branches on the dialect's conflict-resolution style:
// sqlite/Postgres-style ON CONFLICT rebinds fresh placeholders for every
// updated column, while MySQL's ON DUPLICATE KEY UPDATE references the row
// just proposed for insertion via VALUES(col) and needs no extra
// placeholders at all.
func buildInsertOrUpdate(d Dialect, q func(string) string, t string) (string, []string) {
	b := newBuilder(d)
	insertCols := append([]string{}, columns...)
	placeholders := make([]string, len(insertCols))
	for i, c := range insertCols {
		placeholders[i] = b.bind(c)
	}

	var conflictClause string
	if usesOnDuplicateKey(d) {
		var sets []string
		for _, c := range insertCols {
			if c == "partition" || c == "key" {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", q(c), q(c)))
		}
		conflictClause = "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	} else {
		var sets []string
		for _, c := range insertCols {
			if c == "partition" || c == "key" {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = %s", q(c), b.bind(c)))
		}
		conflictClause = fmt.Sprintf("ON CONFLICT (%s, %s) DO UPDATE SET %s",
			q("partition"), q("key"), strings.Join(sets, ", "))
	}

	sql := minify(fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) %s`,
		t, quoteAll(q, insertCols...), strings.Join(placeholders, ", "), conflictClause,
	))
	return sql, b.params
}

func buildDeleteEntry(d Dialect, q func(string) string, t string, parentCols []string) (string, []string) {
	b := newBuilder(d)
	partitionArg := b.bind("partition")
	keyArg := b.bind("key")
	cascadePartitionArg := b.bind("partition")
	clauses := make([]string, len(parentCols))
	for i, c := range parentCols {
		clauses[i] = fmt.Sprintf("%s = %s", q(c), b.bind("key"))
	}
	sql := minify(fmt.Sprintf(
		`DELETE FROM %s WHERE (%s = %s AND %s = %s) OR (%s = %s AND (%s))`,
		t, q("partition"), partitionArg, q("key"), keyArg,
		q("partition"), cascadePartitionArg, strings.Join(clauses, " OR "),
	))
	return sql, b.params
}

// buildChildKeys selects the keys of every row one level below key: rows
// in the same partition with key bound in any parent_key_N slot. Remove
// queries this before deleting key so it can recurse onto each child and
// reach descendants a single delete_entry cascade can't.
func buildChildKeys(d Dialect, q func(string) string, t string, parentCols []string) (string, []string) {
	b := newBuilder(d)
	partitionArg := b.bind("partition")
	clauses := make([]string, len(parentCols))
	for i, c := range parentCols {
		clauses[i] = fmt.Sprintf("%s = %s", q(c), b.bind("key"))
	}
	sql := minify(fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = %s AND (%s)`,
		q("key"), t, q("partition"), partitionArg, strings.Join(clauses, " OR "),
	))
	return sql, b.params
}

func buildDeleteEntries(d Dialect, q func(string) string, t string) (string, []string) {
	b := newBuilder(d)
	p1 := b.bind("partition")
	p2 := b.bind("partition")
	e1 := b.bind("consider_expiry")
	e2 := b.bind("now")
	sql := minify(fmt.Sprintf(
		`DELETE FROM %s WHERE (%s = %s OR %s IS NULL) AND (%s = 0 OR %s < %s)`,
		t, q("partition"), p1, p2, e1, q("utc_expiry"), e2,
	))
	return sql, b.params
}

func buildUpdateExpiry(d Dialect, q func(string) string, t string) (string, []string) {
	b := newBuilder(d)
	expiry := b.bind("utc_expiry")
	partition := b.bind("partition")
	key := b.bind("key")
	sql := minify(fmt.Sprintf(
		`UPDATE %s SET %s = %s WHERE %s = %s AND %s = %s`,
		t, q("utc_expiry"), expiry, q("partition"), partition, q("key"), key,
	))
	return sql, b.params
}

func buildTwoKeyPredicate(d Dialect, q func(string) string, t, format string) (string, []string) {
	b := newBuilder(d)
	partition := b.bind("partition")
	key := b.bind("key")
	sql := minify(fmt.Sprintf(format, t, q("partition"), partition, q("key"), key))
	return sql, b.params
}

func buildPartitionOnly(d Dialect, q func(string) string, t, format string) (string, []string) {
	b := newBuilder(d)
	p1 := b.bind("partition")
	p2 := b.bind("partition")
	sql := minify(fmt.Sprintf(format, t, q("partition"), p1, p2))
	return sql, b.params
}

func buildPeekEntries(d Dialect, q func(string) string, t string) (string, []string) {
	b := newBuilder(d)
	p1 := b.bind("partition")
	p2 := b.bind("partition")
	sql := minify(fmt.Sprintf(
		`SELECT %s FROM %s WHERE (%s = %s OR %s IS NULL)`,
		quoteAll(q, columns...), t, q("partition"), p1, p2,
	))
	return sql, b.params
}

func buildPeekValue(d Dialect, q func(string) string, t string) (string, []string) {
	b := newBuilder(d)
	partition := b.bind("partition")
	key := b.bind("key")
	sql := minify(fmt.Sprintf(
		`SELECT %s, %s FROM %s WHERE %s = %s AND %s = %s`,
		q("value"), q("compressed"), t, q("partition"), partition, q("key"), key,
	))
	return sql, b.params
}

func quoteAll(q func(string) string, cols ...string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = q(c)
	}
	return strings.Join(quoted, ", ")
}

// minify strips comments and collapses redundant whitespace.
func minify(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
