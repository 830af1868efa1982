package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quiverdb/quiver/internal/catalog"
	"github.com/quiverdb/quiver/internal/cli"
)

// Scenario defines one compilation test case: a catalog, a query, and
// expectations about the resulting SQL or error.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the inline schema mapping for this scenario.
	Catalog CatalogDoc `yaml:"catalog"`

	// Query is the query document to compile.
	Query cli.QueryDoc `yaml:"query"`

	// Dialect selects SQL rendering ("clickhouse" default, or "generic").
	Dialect string `yaml:"dialect,omitempty"`

	// AllowCartesian permits disconnected components.
	AllowCartesian bool `yaml:"allow_cartesian,omitempty"`

	// ExpectError, when set, is the semantic error code the compilation
	// must fail with. Assertions and fixtures are then ignored.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the compiled artifacts.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Fixtures holds sandbox rows keyed by physical table name. When set,
	// the scenario additionally executes the generic-dialect SQL against
	// the sandbox.
	Fixtures map[string][]map[string]interface{} `yaml:"fixtures,omitempty"`

	// ExpectRows is the expected sandbox result set, in order.
	ExpectRows [][]string `yaml:"expect_rows,omitempty"`
}

// CatalogDoc is the inline catalog: node labels and relationship types
// mapped to physical tables.
type CatalogDoc struct {
	Nodes         map[string]CatalogNode `yaml:"nodes"`
	Relationships map[string]CatalogRel  `yaml:"relationships"`
}

// CatalogNode maps one node label.
type CatalogNode struct {
	Table      string            `yaml:"table"`
	ID         string            `yaml:"id"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// CatalogRel maps one relationship type.
type CatalogRel struct {
	Table       string            `yaml:"table"`
	From        string            `yaml:"from"`
	To          string            `yaml:"to"`
	Properties  map[string]string `yaml:"properties,omitempty"`
	Orientation string            `yaml:"orientation,omitempty"` // outgoing | incoming | ambiguous
}

// Assertion validates one aspect of the compiled artifacts.
type Assertion struct {
	// Type specifies the assertion type:
	// - "join_count": the join graph has exactly Count join steps
	// - "view_count": the join graph has exactly Count union views
	// - "sql_contains": the SQL text contains Text
	// - "sql_not_contains": the SQL text does not contain Text
	// - "row_count": the sandbox result has exactly Count rows
	Type string `yaml:"type"`

	Count int    `yaml:"count,omitempty"`
	Text  string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertJoinCount      = "join_count"
	AssertViewCount      = "view_count"
	AssertSQLContains    = "sql_contains"
	AssertSQLNotContains = "sql_not_contains"
	AssertRowCount       = "row_count"
)

// Build compiles the inline catalog document into a static catalog.
func (d *CatalogDoc) Build() (*catalog.StaticCatalog, error) {
	nodes := make([]catalog.NodeEntry, 0, len(d.Nodes))
	labels := make([]string, 0, len(d.Nodes))
	for label := range d.Nodes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		n := d.Nodes[label]
		if n.Table == "" || n.ID == "" {
			return nil, fmt.Errorf("catalog node %s: table and id are required", label)
		}
		nodes = append(nodes, catalog.NodeEntry{
			Label:      label,
			Table:      n.Table,
			IDColumn:   n.ID,
			Properties: n.Properties,
		})
	}

	rels := make([]catalog.RelEntry, 0, len(d.Relationships))
	types := make([]string, 0, len(d.Relationships))
	for typeLabel := range d.Relationships {
		types = append(types, typeLabel)
	}
	sort.Strings(types)
	for _, typeLabel := range types {
		r := d.Relationships[typeLabel]
		if r.Table == "" || r.From == "" || r.To == "" {
			return nil, fmt.Errorf("catalog relationship %s: table, from, and to are required", typeLabel)
		}
		orient, err := parseOrientation(r.Orientation)
		if err != nil {
			return nil, fmt.Errorf("catalog relationship %s: %w", typeLabel, err)
		}
		rels = append(rels, catalog.RelEntry{
			TypeLabel:   typeLabel,
			Table:       r.Table,
			FromColumn:  r.From,
			ToColumn:    r.To,
			Properties:  r.Properties,
			Orientation: orient,
		})
	}

	return catalog.NewStaticCatalog(nodes, rels), nil
}

func parseOrientation(s string) (catalog.Orientation, error) {
	switch strings.ToLower(s) {
	case "", "outgoing":
		return catalog.OrientOutgoing, nil
	case "incoming":
		return catalog.OrientIncoming, nil
	case "ambiguous":
		return catalog.OrientAmbiguous, nil
	default:
		return 0, fmt.Errorf("invalid orientation %q", s)
	}
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in a directory, sorted by
// file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		s, err := LoadScenario(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Catalog.Nodes) == 0 {
		return fmt.Errorf("catalog.nodes is required and must be non-empty")
	}

	if len(s.Query.Match) == 0 {
		return fmt.Errorf("query.match is required and must be non-empty")
	}

	if s.ExpectError == "" && len(s.Query.Return) == 0 {
		return fmt.Errorf("query.return is required for scenarios expected to compile")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	if len(s.ExpectRows) > 0 && s.Fixtures == nil {
		return fmt.Errorf("expect_rows requires fixtures")
	}

	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertJoinCount, AssertViewCount, AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertSQLContains, AssertSQLNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
