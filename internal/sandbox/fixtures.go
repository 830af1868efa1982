package sandbox

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixtures describes sandbox table contents as parsed from a YAML document.
// Keys of Tables are physical table names; each row maps column name to
// value.
type Fixtures struct {
	Tables map[string][]map[string]any `yaml:"tables"`
}

// ParseFixtures decodes a fixtures YAML document.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

// LoadFixturesFile reads and parses a fixtures YAML file.
func LoadFixturesFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file: %w", err)
	}
	return ParseFixtures(data)
}

// LoadFixtures inserts every fixture row. Tables are processed in sorted
// order and rows in document order, inside a single transaction.
func (d *DB) LoadFixtures(ctx context.Context, f *Fixtures) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tables := make([]string, 0, len(f.Tables))
	for table := range f.Tables {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		for i, row := range f.Tables[table] {
			cols := make([]string, 0, len(row))
			for col := range row {
				cols = append(cols, col)
			}
			sort.Strings(cols)

			placeholders := make([]string, len(cols))
			args := make([]any, len(cols))
			for j, col := range cols {
				placeholders[j] = "?"
				args[j] = row[col]
			}

			stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
				table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("failed to insert row %d into %s: %w", i, table, err)
			}
		}
	}

	return tx.Commit()
}
