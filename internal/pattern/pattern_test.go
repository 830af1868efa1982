package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdent_NFC(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) normalizes to U+00E9.
	decomposed := "café"
	composed := "café"

	assert.Equal(t, composed, NormalizeIdent(decomposed))
	assert.Equal(t, composed, NormalizeIdent(composed))
}

func TestNewNode_NormalizesVariable(t *testing.T) {
	n := NewNode("café", "Person")

	assert.Equal(t, "café", n.Var)
	require.Equal(t, []string{"Person"}, n.Labels)
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "->", Outgoing.String())
	assert.Equal(t, "<-", Incoming.String())
	assert.Equal(t, "--", Either.String())
}

func TestGraph_NodeByVar(t *testing.T) {
	a := NewNode("a", "Person")
	b := NewNode("b", "Person")
	pg := &Graph{Nodes: []*Node{a, b}}

	assert.Same(t, a, pg.NodeByVar("a"))
	assert.Same(t, b, pg.NodeByVar("b"))
	assert.Nil(t, pg.NodeByVar("c"))
}

func TestValidate_AcceptsChain(t *testing.T) {
	a := NewNode("a", "Person")
	b := NewNode("b", "Person")
	pg := &Graph{
		Nodes: []*Node{a, b},
		Rels:  []*Relationship{NewRelationship("r", []string{"KNOWS"}, Outgoing, a, b)},
	}

	assert.NoError(t, pg.Validate())
}

func TestValidate_RejectsDuplicateVariables(t *testing.T) {
	a1 := NewNode("a", "Person")
	a2 := NewNode("a", "Company")
	pg := &Graph{Nodes: []*Node{a1, a2}}

	err := pg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
}

func TestValidate_RejectsDuplicateRelationshipVariables(t *testing.T) {
	a := NewNode("a", "Person")
	b := NewNode("b", "Person")
	c := NewNode("c", "Person")
	pg := &Graph{
		Nodes: []*Node{a, b, c},
		Rels: []*Relationship{
			NewRelationship("r", []string{"KNOWS"}, Outgoing, a, b),
			NewRelationship("r", []string{"KNOWS"}, Outgoing, b, c),
		},
	}

	err := pg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"r"`)
}

func TestValidate_RejectsRelationshipVariableShadowingNode(t *testing.T) {
	// An edge alias reusing a node variable would collide in the generated
	// SQL and turn the join predicate self-referential.
	a := NewNode("a", "Person")
	b := NewNode("b", "Person")
	pg := &Graph{
		Nodes: []*Node{a, b},
		Rels:  []*Relationship{NewRelationship("a", []string{"KNOWS"}, Outgoing, a, b)},
	}

	err := pg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestValidate_AllowsAnonymousRelationships(t *testing.T) {
	a := NewNode("a", "Person")
	b := NewNode("b", "Person")
	c := NewNode("c", "Person")
	pg := &Graph{
		Nodes: []*Node{a, b, c},
		Rels: []*Relationship{
			NewRelationship("", []string{"KNOWS"}, Outgoing, a, b),
			NewRelationship("", []string{"KNOWS"}, Outgoing, b, c),
		},
	}

	assert.NoError(t, pg.Validate())
}

func TestValidate_RejectsEmptyTypeSet(t *testing.T) {
	a := NewNode("a", "Person")
	b := NewNode("b", "Person")
	pg := &Graph{
		Nodes: []*Node{a, b},
		Rels:  []*Relationship{NewRelationship("r", nil, Outgoing, a, b)},
	}

	assert.Error(t, pg.Validate())
}

func TestValidate_RejectsUndeclaredEndpoint(t *testing.T) {
	a := NewNode("a", "Person")
	stray := NewNode("b", "Person")
	pg := &Graph{
		Nodes: []*Node{a},
		Rels:  []*Relationship{NewRelationship("", []string{"KNOWS"}, Outgoing, a, stray)},
	}

	assert.Error(t, pg.Validate())
}

func TestValidate_EndpointIdentityNotJustName(t *testing.T) {
	// A same-named node constructed separately is not the declared node.
	a := NewNode("a", "Person")
	b := NewNode("b", "Person")
	impostor := NewNode("b", "Person")
	pg := &Graph{
		Nodes: []*Node{a, b},
		Rels:  []*Relationship{NewRelationship("", []string{"KNOWS"}, Outgoing, a, impostor)},
	}

	assert.Error(t, pg.Validate())
}
