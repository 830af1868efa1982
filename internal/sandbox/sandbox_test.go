package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverdb/quiver/internal/compiler"
	"github.com/quiverdb/quiver/internal/pattern"
	"github.com/quiverdb/quiver/internal/sqlgen"
	"github.com/quiverdb/quiver/internal/testutil"
)

func openWithSchema(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.CreateTables(context.Background(), testutil.SocialCatalog()))
	return db
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/db.sqlite")
	assert.Error(t, err)
}

func TestCreateTables_Idempotent(t *testing.T) {
	db := openWithSchema(t)
	assert.NoError(t, db.CreateTables(context.Background(), testutil.SocialCatalog()))
}

func TestLoadFixturesAndQuery(t *testing.T) {
	db := openWithSchema(t)
	ctx := context.Background()

	fixtures, err := ParseFixtures([]byte(`
tables:
  persons:
    - {person_id: 1, full_name: Ada, age_years: 36}
    - {person_id: 2, full_name: Grace, age_years: 37}
  knows:
    - {src_person: 1, dst_person: 2, since_year: 1980}
`))
	require.NoError(t, err)
	require.NoError(t, db.LoadFixtures(ctx, fixtures))

	result, err := db.Query(ctx, "SELECT full_name FROM persons ORDER BY person_id")
	require.NoError(t, err)

	assert.Equal(t, []string{"full_name"}, result.Columns)
	assert.Equal(t, [][]string{{"Ada"}, {"Grace"}}, result.Rows)
}

func TestQuery_NullRendering(t *testing.T) {
	db := openWithSchema(t)
	ctx := context.Background()

	fixtures, err := ParseFixtures([]byte(`
tables:
  persons:
    - {person_id: 1}
`))
	require.NoError(t, err)
	require.NoError(t, db.LoadFixtures(ctx, fixtures))

	result, err := db.Query(ctx, "SELECT full_name FROM persons")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"NULL"}}, result.Rows)
}

func TestQuery_CompiledGenericSQLRoundTrip(t *testing.T) {
	db := openWithSchema(t)
	ctx := context.Background()

	fixtures, err := ParseFixtures([]byte(`
tables:
  persons:
    - {person_id: 1, full_name: Ada, is_active: 1}
    - {person_id: 2, full_name: Grace, is_active: 0}
    - {person_id: 3, full_name: Edsger, is_active: 1}
  knows:
    - {src_person: 1, dst_person: 2, since_year: 1980}
    - {src_person: 1, dst_person: 3, since_year: 1975}
`))
	require.NoError(t, err)
	require.NoError(t, db.LoadFixtures(ctx, fixtures))

	pg := testutil.Chain("Person", "KNOWS", "a", "b")
	spec := &pattern.QuerySpec{
		Projections: []pattern.Projection{{Expr: pattern.Prop("b", "name"), Alias: "friend"}},
		Filter: pattern.Binary{
			Op:    "=",
			Left:  pattern.Prop("a", "name"),
			Right: pattern.String("Ada"),
		},
		OrderBy: []pattern.OrderKey{{Expr: pattern.Prop("b", "name")}},
	}

	sql, err := compiler.Compile(pg, spec, testutil.SocialCatalog(), compiler.Options{
		Dialect: sqlgen.Generic,
	})
	require.NoError(t, err)

	result, err := db.Query(ctx, sql)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Edsger"}, {"Grace"}}, result.Rows)
}

func TestQuery_BadSQL(t *testing.T) {
	db := openWithSchema(t)

	_, err := db.Query(context.Background(), "SELECT FROM nowhere")
	assert.Error(t, err)
}

func TestParseFixtures_Malformed(t *testing.T) {
	_, err := ParseFixtures([]byte("tables: ["))
	assert.Error(t, err)
}

func TestLoadFixtures_UnknownTable(t *testing.T) {
	db := openWithSchema(t)

	fixtures, err := ParseFixtures([]byte(`
tables:
  ghosts:
    - {id: 1}
`))
	require.NoError(t, err)

	err = db.LoadFixtures(context.Background(), fixtures)
	assert.Error(t, err)
}
