package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares the generated SQL against
// a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files are the source of truth for expected SQL text; the byte
// comparison doubles as a determinism check since regenerating them from
// identical input must produce identical bytes.
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the SQL doesn't match the golden file or an assertion failed.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	for _, failure := range result.Failures {
		t.Errorf("%s: %s", scenario.Name, failure)
	}

	if scenario.ExpectError != "" {
		// Nothing to snapshot for scenarios that must fail.
		return nil
	}

	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares a result's SQL against the named golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, []byte(result.SQL+"\n"))
}
