// Package sandbox provides a throwaway SQLite database for dry-running
// compiled queries against small fixtures. It exists for the exec command
// and for tests: generate SQL with the generic dialect, execute it here,
// and inspect the rows without standing up a real analytical store.
package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quiverdb/quiver/internal/catalog"
)

// DB wraps a SQLite connection holding sandbox tables.
type DB struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path. Pass
// ":memory:" for an in-process database that disappears on Close.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// This also keeps an in-memory database on a single connection;
	// separate connections would each see their own empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// CreateTables materializes one sandbox table per physical table named by
// the catalog: node tables get their id column plus every mapped property
// column, edge tables get their endpoint columns plus property columns.
// Labels sharing a physical table merge their columns. Idempotent.
func (d *DB) CreateTables(ctx context.Context, cat *catalog.StaticCatalog) error {
	columns := map[string]map[string]bool{}

	add := func(table string, cols ...string) {
		set, ok := columns[table]
		if !ok {
			set = map[string]bool{}
			columns[table] = set
		}
		for _, c := range cols {
			set[c] = true
		}
	}

	for _, label := range cat.NodeLabels() {
		entry, err := cat.ResolveNode(label)
		if err != nil {
			return err
		}
		add(entry.Table, entry.IDColumn)
		for _, col := range entry.Properties {
			add(entry.Table, col)
		}
	}

	for _, typeLabel := range cat.RelationshipTypes() {
		entry, err := cat.ResolveRelationship(typeLabel)
		if err != nil {
			return err
		}
		add(entry.Table, entry.FromColumn, entry.ToColumn)
		for _, col := range entry.Properties {
			add(entry.Table, col)
		}
	}

	tables := make([]string, 0, len(columns))
	for table := range columns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		cols := make([]string, 0, len(columns[table]))
		for col := range columns[table] {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		// SQLite column affinity is dynamic; untyped columns accept the
		// fixture values as given.
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
			table, strings.Join(cols, ", "))
		if _, err := d.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	return nil
}

// Result holds the rows produced by a sandbox query, with every value
// rendered as text for display.
type Result struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Query executes SQL against the sandbox and collects the full result set.
func (d *DB) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &Result{Columns: cols}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(cols))
		for i, v := range raw {
			row[i] = renderValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return result, nil
}

func renderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
