package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverdb/quiver/internal/pattern"
)

const friendQueryYAML = `
match:
  - path:
      - node: {var: a, labels: [Person]}
      - rel: {types: [KNOWS], direction: out}
      - node: {var: b, labels: [Person]}
where:
  op: eq
  left: {prop: a.name}
  right: {str: Ada}
return:
  - expr: {prop: b.name}
    alias: friend
order_by:
  - expr: {prop: b.name}
limit: 10
`

func TestParseQueryDoc_Lower(t *testing.T) {
	doc, err := ParseQueryDoc([]byte(friendQueryYAML))
	require.NoError(t, err)

	pg, spec, err := doc.Lower()
	require.NoError(t, err)

	require.Len(t, pg.Nodes, 2)
	assert.Equal(t, "a", pg.Nodes[0].Var)
	assert.Equal(t, []string{"Person"}, pg.Nodes[0].Labels)

	require.Len(t, pg.Rels, 1)
	rel := pg.Rels[0]
	assert.Equal(t, []string{"KNOWS"}, rel.Types)
	assert.Equal(t, pattern.Outgoing, rel.Dir)
	assert.Same(t, pg.Nodes[0], rel.From)
	assert.Same(t, pg.Nodes[1], rel.To)

	require.Len(t, spec.Projections, 1)
	assert.Equal(t, pattern.Prop("b", "name"), spec.Projections[0].Expr)
	assert.Equal(t, "friend", spec.Projections[0].Alias)

	filter, ok := spec.Filter.(pattern.Binary)
	require.True(t, ok)
	assert.Equal(t, "=", filter.Op)
	assert.Equal(t, pattern.Prop("a", "name"), filter.Left)
	assert.Equal(t, pattern.String("Ada"), filter.Right)

	require.Len(t, spec.OrderBy, 1)
	require.NotNil(t, spec.Limit)
	assert.Equal(t, int64(10), *spec.Limit)
}

func TestLower_SharedVariableAcrossPaths(t *testing.T) {
	doc, err := ParseQueryDoc([]byte(`
match:
  - path:
      - node: {var: a, labels: [Person]}
      - rel: {types: [KNOWS], direction: out}
      - node: {var: b, labels: [Person]}
  - path:
      - node: {var: b}
      - rel: {types: [WORKS_AT], direction: out}
      - node: {var: c, labels: [Company]}
return:
  - expr: {var: c}
`))
	require.NoError(t, err)

	pg, _, err := doc.Lower()
	require.NoError(t, err)

	// b is declared once and shared by both paths.
	require.Len(t, pg.Nodes, 3)
	assert.Same(t, pg.Nodes[1], pg.Rels[1].From)
}

func TestLower_RedeclaredLabelsRejected(t *testing.T) {
	doc, err := ParseQueryDoc([]byte(`
match:
  - path:
      - node: {var: a, labels: [Person]}
      - rel: {types: [KNOWS]}
      - node: {var: a, labels: [Company]}
return:
  - expr: {var: a}
`))
	require.NoError(t, err)

	_, _, err = doc.Lower()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redeclared")
}

func TestLower_DanglingRelRejected(t *testing.T) {
	doc, err := ParseQueryDoc([]byte(`
match:
  - path:
      - node: {var: a, labels: [Person]}
      - rel: {types: [KNOWS]}
return:
  - expr: {var: a}
`))
	require.NoError(t, err)

	_, _, err = doc.Lower()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangling")
}

func TestLower_PathMustStartWithNode(t *testing.T) {
	doc, err := ParseQueryDoc([]byte(`
match:
  - path:
      - rel: {types: [KNOWS]}
      - node: {var: a, labels: [Person]}
return:
  - expr: {var: a}
`))
	require.NoError(t, err)

	_, _, err = doc.Lower()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start with a node")
}

func TestLower_InvalidDirection(t *testing.T) {
	doc, err := ParseQueryDoc([]byte(`
match:
  - path:
      - node: {var: a, labels: [Person]}
      - rel: {types: [KNOWS], direction: sideways}
      - node: {var: b, labels: [Person]}
return:
  - expr: {var: a}
`))
	require.NoError(t, err)

	_, _, err = doc.Lower()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestLower_DirectionDefaultsToEither(t *testing.T) {
	doc, err := ParseQueryDoc([]byte(`
match:
  - path:
      - node: {var: a, labels: [Person]}
      - rel: {types: [FOLLOWS]}
      - node: {var: b, labels: [Person]}
return:
  - expr: {var: a}
`))
	require.NoError(t, err)

	pg, _, err := doc.Lower()
	require.NoError(t, err)
	assert.Equal(t, pattern.Either, pg.Rels[0].Dir)
}

func TestLower_HopRange(t *testing.T) {
	doc, err := ParseQueryDoc([]byte(`
match:
  - path:
      - node: {var: a, labels: [Person]}
      - rel: {types: [KNOWS], direction: out, min_hops: 1, max_hops: 3}
      - node: {var: b, labels: [Person]}
return:
  - expr: {var: a}
`))
	require.NoError(t, err)

	pg, _, err := doc.Lower()
	require.NoError(t, err)

	require.NotNil(t, pg.Rels[0].VarLength)
	assert.Equal(t, int64(1), pg.Rels[0].VarLength.Min)
	assert.Equal(t, int64(3), pg.Rels[0].VarLength.Max)
}

func TestExprDoc_Lower(t *testing.T) {
	cases := []struct {
		name string
		doc  ExprDoc
		want pattern.Expr
	}{
		{"prop", ExprDoc{Prop: "a.name"}, pattern.Prop("a", "name")},
		{"var", ExprDoc{Var: "a"}, pattern.Variable{Var: "a"}},
		{"str", ExprDoc{Str: strPtr("x")}, pattern.String("x")},
		{"int", ExprDoc{Int: int64Ptr(42)}, pattern.Int(42)},
		{"bool", ExprDoc{Bool: boolPtr(false)}, pattern.Bool(false)},
		{"null", ExprDoc{Null: true}, pattern.Null()},
		{
			"unary",
			ExprDoc{Op: "not", Operand: &ExprDoc{Prop: "a.active"}},
			pattern.Unary{Op: "NOT", Operand: pattern.Prop("a", "active")},
		},
		{
			"binary",
			ExprDoc{Op: "ge", Left: &ExprDoc{Prop: "a.age"}, Right: &ExprDoc{Int: int64Ptr(30)}},
			pattern.Binary{Op: ">=", Left: pattern.Prop("a", "age"), Right: pattern.Int(30)},
		},
		{
			"func",
			ExprDoc{Func: &FuncDoc{Name: "count", Star: true}},
			pattern.FuncCall{Name: "count", Star: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.doc.lower()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExprDoc_LowerCase(t *testing.T) {
	doc := ExprDoc{Case: &CaseDoc{
		Operand: &ExprDoc{Prop: "a.age"},
		Whens: []WhenDoc{
			{When: ExprDoc{Int: int64Ptr(1)}, Then: ExprDoc{Str: strPtr("one")}},
		},
		Else: &ExprDoc{Str: strPtr("many")},
	}}

	got, err := doc.lower()
	require.NoError(t, err)

	c, ok := got.(pattern.Case)
	require.True(t, ok)
	assert.Equal(t, pattern.Prop("a", "age"), c.Operand)
	require.Len(t, c.Whens, 1)
	assert.Equal(t, pattern.String("many"), c.Else)
}

func TestExprDoc_LowerErrors(t *testing.T) {
	_, err := (&ExprDoc{}).lower()
	assert.Error(t, err)

	_, err = (&ExprDoc{Op: "between"}).lower()
	assert.Error(t, err)

	_, err = (&ExprDoc{Op: "eq", Left: &ExprDoc{Var: "a"}}).lower()
	assert.Error(t, err)

	_, err = (&ExprDoc{Prop: "noDot"}).lower()
	assert.Error(t, err)

	_, err = (&ExprDoc{Case: &CaseDoc{}}).lower()
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
func int64Ptr(i int64) *int64 { return &i }
func boolPtr(b bool) *bool    { return &b }
