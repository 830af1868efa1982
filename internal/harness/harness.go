package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/quiverdb/quiver/internal/catalog"
	"github.com/quiverdb/quiver/internal/compiler"
	"github.com/quiverdb/quiver/internal/pattern"
	"github.com/quiverdb/quiver/internal/sandbox"
	"github.com/quiverdb/quiver/internal/sqlgen"
)

// Result captures everything a scenario run produced.
type Result struct {
	// SQL is the dialect SQL text ("" when compilation failed).
	SQL string

	// Explanation carries the intermediate artifacts for assertions.
	Explanation *compiler.Explanation

	// ErrorCode is the semantic code of a failed compilation ("" on
	// success).
	ErrorCode string

	// Rows is the sandbox result set, nil when the scenario has no
	// fixtures.
	Rows *sandbox.Result

	// Failures lists assertion failures. Empty means the scenario passed.
	Failures []string
}

// Passed reports whether the scenario met all of its expectations.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes a scenario: build the catalog, compile the query, evaluate
// expectations, and (with fixtures) execute against the sandbox.
func Run(scenario *Scenario) (*Result, error) {
	cat, err := scenario.Catalog.Build()
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	pg, spec, err := scenario.Query.Lower()
	if err != nil {
		return nil, fmt.Errorf("lowering query: %w", err)
	}

	dialect := sqlgen.ClickHouse
	if scenario.Dialect != "" {
		dialect = sqlgen.DialectByName(scenario.Dialect)
		if dialect == nil {
			return nil, fmt.Errorf("unknown dialect %q", scenario.Dialect)
		}
	}

	opts := compiler.Options{
		Dialect:               dialect,
		AllowCartesianProduct: scenario.AllowCartesian,
	}

	result := &Result{}

	ex, err := compiler.Explain(pg, spec, cat, opts)
	if err != nil {
		result.ErrorCode = compiler.Classify(err)
		if scenario.ExpectError == "" {
			result.Failures = append(result.Failures,
				fmt.Sprintf("unexpected compilation error [%s]: %v", result.ErrorCode, err))
		} else if result.ErrorCode != scenario.ExpectError {
			result.Failures = append(result.Failures,
				fmt.Sprintf("expected error code %s, got %s (%v)", scenario.ExpectError, result.ErrorCode, err))
		}
		return result, nil
	}

	result.SQL = ex.SQL
	result.Explanation = ex

	if scenario.ExpectError != "" {
		result.Failures = append(result.Failures,
			fmt.Sprintf("expected error code %s but compilation succeeded", scenario.ExpectError))
		return result, nil
	}

	if scenario.Fixtures != nil {
		if err := runSandbox(scenario, cat, pg, spec, result); err != nil {
			return nil, err
		}
	}

	for i, a := range scenario.Assertions {
		if msg := evaluateAssertion(result, a); msg != "" {
			result.Failures = append(result.Failures, fmt.Sprintf("assertions[%d]: %s", i, msg))
		}
	}

	return result, nil
}

func evaluateAssertion(result *Result, a Assertion) string {
	switch a.Type {
	case AssertJoinCount:
		got := result.Explanation.JoinGraph.JoinCount()
		if got != a.Count {
			return fmt.Sprintf("expected %d join(s), got %d", a.Count, got)
		}
	case AssertViewCount:
		got := len(result.Explanation.JoinGraph.Views)
		if got != a.Count {
			return fmt.Sprintf("expected %d union view(s), got %d", a.Count, got)
		}
	case AssertSQLContains:
		if !strings.Contains(result.SQL, a.Text) {
			return fmt.Sprintf("SQL does not contain %q", a.Text)
		}
	case AssertSQLNotContains:
		if strings.Contains(result.SQL, a.Text) {
			return fmt.Sprintf("SQL contains %q", a.Text)
		}
	case AssertRowCount:
		if result.Rows == nil {
			return "row_count assertion requires fixtures"
		}
		if got := len(result.Rows.Rows); got != a.Count {
			return fmt.Sprintf("expected %d row(s), got %d", a.Count, got)
		}
	}
	return ""
}

// runSandbox compiles the query with the generic dialect and executes it
// against fixture rows in an in-memory database, recording row mismatches
// as failures.
func runSandbox(scenario *Scenario, cat *catalog.StaticCatalog, pg *pattern.Graph, spec *pattern.QuerySpec, result *Result) error {
	sql, err := compiler.Compile(pg, spec, cat, compiler.Options{
		Dialect:               sqlgen.Generic,
		AllowCartesianProduct: scenario.AllowCartesian,
	})
	if err != nil {
		return fmt.Errorf("compiling generic SQL for sandbox: %w", err)
	}

	ctx := context.Background()
	db, err := sandbox.Open(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateTables(ctx, cat); err != nil {
		return fmt.Errorf("creating sandbox tables: %w", err)
	}
	if err := db.LoadFixtures(ctx, &sandbox.Fixtures{Tables: scenario.Fixtures}); err != nil {
		return fmt.Errorf("loading fixtures: %w", err)
	}

	rows, err := db.Query(ctx, sql)
	if err != nil {
		return fmt.Errorf("executing sandbox query: %w", err)
	}
	result.Rows = rows

	if scenario.ExpectRows != nil {
		if msg := compareRows(scenario.ExpectRows, rows.Rows); msg != "" {
			result.Failures = append(result.Failures, msg)
		}
	}

	return nil
}

func compareRows(expected, actual [][]string) string {
	if len(expected) != len(actual) {
		return fmt.Sprintf("expected %d row(s), got %d", len(expected), len(actual))
	}
	for i := range expected {
		if len(expected[i]) != len(actual[i]) {
			return fmt.Sprintf("row %d: expected %d column(s), got %d", i, len(expected[i]), len(actual[i]))
		}
		for j := range expected[i] {
			if expected[i][j] != actual[i][j] {
				return fmt.Sprintf("row %d column %d: expected %q, got %q", i, j, expected[i][j], actual[i][j])
			}
		}
	}
	return ""
}
