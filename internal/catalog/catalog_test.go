package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *StaticCatalog {
	return NewStaticCatalog(
		[]NodeEntry{
			{Label: "Person", Table: "persons", IDColumn: "person_id",
				Properties: map[string]string{"name": "full_name"}},
			{Label: "Company", Table: "companies", IDColumn: "company_id"},
		},
		[]RelEntry{
			{TypeLabel: "KNOWS", Table: "knows", FromColumn: "src", ToColumn: "dst"},
			{TypeLabel: "FOLLOWS", Table: "follows", FromColumn: "follower", ToColumn: "followee",
				Orientation: OrientAmbiguous},
		},
	)
}

func TestStaticCatalog_ResolveNode(t *testing.T) {
	cat := testCatalog()

	entry, err := cat.ResolveNode("Person")
	require.NoError(t, err)
	assert.Equal(t, "persons", entry.Table)
	assert.Equal(t, "person_id", entry.IDColumn)
	assert.Equal(t, "full_name", entry.Properties["name"])
}

func TestStaticCatalog_ResolveNode_Unknown(t *testing.T) {
	cat := testCatalog()

	_, err := cat.ResolveNode("Ghost")
	require.Error(t, err)
	assert.True(t, IsUnknownLabel(err))

	var ue *UnknownLabelError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, LabelKindNode, ue.Kind)
	assert.Equal(t, "Ghost", ue.Label)
}

func TestStaticCatalog_ResolveRelationship_Unknown(t *testing.T) {
	cat := testCatalog()

	_, err := cat.ResolveRelationship("HATES")
	require.Error(t, err)

	var ue *UnknownLabelError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, LabelKindRelationship, ue.Kind)
}

func TestStaticCatalog_NormalizesLookups(t *testing.T) {
	cat := NewStaticCatalog(
		[]NodeEntry{{Label: "Café", Table: "cafes", IDColumn: "id"}},
		nil,
	)

	// Decomposed form of the same label resolves the same entry.
	entry, err := cat.ResolveNode("Café")
	require.NoError(t, err)
	assert.Equal(t, "cafes", entry.Table)
}

func TestStaticCatalog_LabelsSorted(t *testing.T) {
	cat := testCatalog()

	assert.Equal(t, []string{"Company", "Person"}, cat.NodeLabels())
	assert.Equal(t, []string{"FOLLOWS", "KNOWS"}, cat.RelationshipTypes())
}

func TestOrientation_String(t *testing.T) {
	assert.Equal(t, "outgoing", OrientOutgoing.String())
	assert.Equal(t, "incoming", OrientIncoming.String())
	assert.Equal(t, "ambiguous", OrientAmbiguous.String())
}
