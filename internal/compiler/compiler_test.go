package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverdb/quiver/internal/catalog"
	"github.com/quiverdb/quiver/internal/joins"
	"github.com/quiverdb/quiver/internal/pattern"
	"github.com/quiverdb/quiver/internal/plan"
	"github.com/quiverdb/quiver/internal/testutil"
)

func friendQuery() (*pattern.Graph, *pattern.QuerySpec) {
	pg := testutil.Chain("Person", "KNOWS", "a", "b")
	spec := &pattern.QuerySpec{
		Projections: []pattern.Projection{{Expr: pattern.Prop("b", "name"), Alias: "friend"}},
		Filter: pattern.Binary{
			Op:    "=",
			Left:  pattern.Prop("a", "name"),
			Right: pattern.String("Ada"),
		},
	}
	return pg, spec
}

func TestCompile_EndToEnd(t *testing.T) {
	pg, spec := friendQuery()

	sql, err := Compile(pg, spec, testutil.SocialCatalog(), Options{})
	require.NoError(t, err)

	expected := "SELECT b.full_name AS friend\n" +
		"FROM persons AS a\n" +
		"INNER JOIN knows AS e_a_b ON e_a_b.src_person = a.person_id\n" +
		"INNER JOIN persons AS b ON e_a_b.dst_person = b.person_id\n" +
		"WHERE (a.full_name = 'Ada')"
	assert.Equal(t, expected, sql)
}

func TestCompile_MultiTypeEndToEnd(t *testing.T) {
	a := pattern.NewNode("a", "Person")
	b := pattern.NewNode("b", "Person")
	pg := &pattern.Graph{
		Nodes: []*pattern.Node{a, b},
		Rels: []*pattern.Relationship{
			pattern.NewRelationship("r", []string{"KNOWS", "FOLLOWS"}, pattern.Outgoing, a, b),
		},
	}
	spec := &pattern.QuerySpec{
		Projections: []pattern.Projection{{Expr: pattern.Prop("r", "since")}},
	}

	sql, err := Compile(pg, spec, testutil.SocialCatalog(), Options{})
	require.NoError(t, err)

	expected := "WITH rel_a_b AS (" +
		"SELECT src_person AS from_id, dst_person AS to_id, since_year AS since FROM knows" +
		" UNION ALL " +
		"SELECT follower_id AS from_id, followee_id AS to_id, since_year AS since FROM follows" +
		")\n" +
		"SELECT r.since AS r_since\n" +
		"FROM persons AS a\n" +
		"INNER JOIN rel_a_b AS r ON r.from_id = a.person_id\n" +
		"INNER JOIN persons AS b ON r.to_id = b.person_id"
	assert.Equal(t, expected, sql)
}

func TestCompile_ByteIdenticalAcrossRuns(t *testing.T) {
	run := func() string {
		pg, spec := friendQuery()
		sql, err := Compile(pg, spec, testutil.SocialCatalog(), Options{})
		require.NoError(t, err)
		return sql
	}

	first := run()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, run())
	}
}

func TestExplain_ExposesIntermediates(t *testing.T) {
	pg, spec := friendQuery()

	ex, err := Explain(pg, spec, testutil.SocialCatalog(), Options{})
	require.NoError(t, err)

	require.NotNil(t, ex.JoinGraph)
	assert.Equal(t, 1, ex.JoinGraph.JoinCount())
	require.NotNil(t, ex.Plan)
	assert.Equal(t, "persons", ex.Plan.FromSource)
	assert.NotEmpty(t, ex.SQL)
}

func TestCompile_DisconnectedPattern(t *testing.T) {
	a := pattern.NewNode("a", "Person")
	c := pattern.NewNode("c", "Company")
	pg := &pattern.Graph{Nodes: []*pattern.Node{a, c}}
	spec := &pattern.QuerySpec{
		Projections: []pattern.Projection{{Expr: pattern.Variable{Var: "a"}}},
	}

	_, err := Compile(pg, spec, testutil.SocialCatalog(), Options{})
	require.Error(t, err)
	assert.Equal(t, CodeDisconnectedPattern, Classify(err))

	sql, err := Compile(pg, spec, testutil.SocialCatalog(), Options{AllowCartesianProduct: true})
	require.NoError(t, err)
	assert.Contains(t, sql, "CROSS JOIN companies AS c")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"unknown label", &catalog.UnknownLabelError{Kind: catalog.LabelKindNode, Label: "Ghost"}, CodeUnknownLabel},
		{"schema resolution", &joins.SchemaResolutionError{Var: "a", Reason: "no label"}, CodeSchemaResolution},
		{"disconnected", &plan.DisconnectedPatternError{Roots: []string{"a", "b"}}, CodeDisconnectedPattern},
		{"empty", &joins.EmptyPatternError{}, CodeEmptyPattern},
		{"unsupported", &joins.UnsupportedPatternError{Feature: "variable-length path"}, CodeUnsupportedPattern},
		{"other", errors.New("boom"), CodeInvalidQuery},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, Classify(tc.err))
		})
	}
}

func TestClassify_WrappedErrors(t *testing.T) {
	pg := &pattern.Graph{Nodes: []*pattern.Node{pattern.NewNode("a", "Ghost")}}
	spec := &pattern.QuerySpec{
		Projections: []pattern.Projection{{Expr: pattern.Variable{Var: "a"}}},
	}

	_, err := Compile(pg, spec, testutil.SocialCatalog(), Options{})
	require.Error(t, err)
	assert.Equal(t, CodeUnknownLabel, Classify(err))
}
