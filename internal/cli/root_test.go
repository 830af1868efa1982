package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogCUE = `
node: Person: {
	table:     "persons"
	id_column: "person_id"
	properties: {
		name:   "full_name"
		age:    "age_years"
		active: "is_active"
	}
}
node: Company: {
	table:     "companies"
	id_column: "company_id"
	properties: name: "legal_name"
}
relationship: KNOWS: {
	table:       "knows"
	from_column: "src_person"
	to_column:   "dst_person"
	properties: since: "since_year"
}
relationship: WORKS_AT: {
	table:       "employment"
	from_column: "employee_id"
	to_column:   "employer_id"
	properties: role: "job_title"
}
`

// writeInputs materializes a catalog dir and query file for command tests.
func writeInputs(t *testing.T, queryYAML string) (catalogDir, queryPath string) {
	t.Helper()
	dir := t.TempDir()

	catalogDir = filepath.Join(dir, "catalog")
	require.NoError(t, os.Mkdir(catalogDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(catalogDir, "catalog.cue"), []byte(testCatalogCUE), 0o644))

	queryPath = filepath.Join(dir, "query.yaml")
	require.NoError(t, os.WriteFile(queryPath, []byte(queryYAML), 0o644))
	return catalogDir, queryPath
}

// runCommand executes the root command with args and captures stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := runCommand(t, "--format", "xml", "validate", "x", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"compile", "validate", "explain", "exec"} {
		assert.True(t, names[want], want)
	}
}

func TestCompileCommand_Text(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	out, err := runCommand(t, "compile", catalogDir, queryPath)
	require.NoError(t, err)

	assert.Contains(t, out, "SELECT b.full_name AS friend")
	assert.Contains(t, out, "FROM persons AS a")
	assert.Contains(t, out, "INNER JOIN knows AS e_a_b ON e_a_b.src_person = a.person_id")
	assert.Contains(t, out, "WHERE (a.full_name = 'Ada')")
	assert.Contains(t, out, "LIMIT 10")
}

func TestCompileCommand_JSON(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	out, err := runCommand(t, "--format", "json", "compile", catalogDir, queryPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "clickhouse", data["dialect"])
	assert.Contains(t, data["sql"], "SELECT b.full_name AS friend")
}

func TestCompileCommand_GenericDialect(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	out, err := runCommand(t, "compile", "--dialect", "generic", catalogDir, queryPath)
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT b.full_name AS friend")
}

func TestCompileCommand_UnknownDialect(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	_, err := runCommand(t, "compile", "--dialect", "oracle", catalogDir, queryPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileCommand_OutputFile(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)
	outPath := filepath.Join(t.TempDir(), "query.sql")

	_, err := runCommand(t, "compile", "-o", outPath, catalogDir, queryPath)
	require.NoError(t, err)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "SELECT b.full_name AS friend")
}

func TestCompileCommand_UnknownLabel(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, `
match:
  - path:
      - node: {var: a, labels: [Ghost]}
return:
  - expr: {var: a}
`)

	out, err := runCommand(t, "compile", catalogDir, queryPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "UNKNOWN_LABEL")
}

func TestCompileCommand_MissingCatalogDir(t *testing.T) {
	_, queryPath := writeInputs(t, friendQueryYAML)

	out, err := runCommand(t, "compile", filepath.Join(t.TempDir(), "nope"), queryPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestValidateCommand(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	out, err := runCommand(t, "validate", catalogDir, queryPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Query is valid")
	assert.Contains(t, out, "1 join(s)")
}

func TestValidateCommand_JSONReport(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	out, err := runCommand(t, "--format", "json", "validate", catalogDir, queryPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["nodes"])
	assert.Equal(t, float64(1), data["joins"])
}

func TestExplainCommand(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	out, err := runCommand(t, "explain", catalogDir, queryPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Component 1: anchor a (persons AS a)")
	assert.Contains(t, out, "INNER JOIN knows AS e_a_b")
	assert.Contains(t, out, "SELECT b.full_name AS friend")
}

func TestExecCommand_WithFixtures(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	fixturesPath := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixturesPath, []byte(`
tables:
  persons:
    - {person_id: 1, full_name: Ada}
    - {person_id: 2, full_name: Grace}
  knows:
    - {src_person: 1, dst_person: 2, since_year: 1980}
`), 0o644))

	out, err := runCommand(t, "exec", "--fixtures", fixturesPath, catalogDir, queryPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 row(s)")
	assert.Contains(t, out, "Grace")
}

func TestExecCommand_NoFixturesEmptyResult(t *testing.T) {
	catalogDir, queryPath := writeInputs(t, friendQueryYAML)

	out, err := runCommand(t, "exec", catalogDir, queryPath)
	require.NoError(t, err)
	assert.Contains(t, out, "0 row(s)")
}
