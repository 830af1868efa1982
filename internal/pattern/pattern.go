package pattern

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Direction is the declared direction of a relationship in a pattern.
type Direction int

const (
	// Outgoing matches (a)-[r]->(b): a is the source endpoint.
	Outgoing Direction = iota
	// Incoming matches (a)<-[r]-(b): b is the source endpoint.
	Incoming
	// Either matches (a)-[r]-(b): no direction constraint declared.
	Either
)

// String returns the arrow spelling used in diagnostics.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "->"
	case Incoming:
		return "<-"
	case Either:
		return "--"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// NormalizeIdent returns the NFC normalization of an identifier.
// Pattern variables and catalog labels are normalized on entry so that
// visually identical source text always produces identical SQL.
func NormalizeIdent(s string) string {
	return norm.NFC.String(s)
}

// Node is a pattern variable bound to zero or more node labels.
// One logical instance exists per distinct variable even when the variable
// is referenced by several relationships.
type Node struct {
	// Var is the pattern variable, unique within a pattern scope.
	Var string `json:"var"`

	// Labels is the optional label set, e.g. (p:Person).
	Labels []string `json:"labels,omitempty"`
}

// NewNode creates a Node with normalized identifiers.
func NewNode(variable string, labels ...string) *Node {
	n := &Node{Var: NormalizeIdent(variable)}
	for _, l := range labels {
		n.Labels = append(n.Labels, NormalizeIdent(l))
	}
	return n
}

// HopRange is a variable-length path bound such as *1..3.
// Quiver does not compile variable-length paths; a relationship carrying a
// HopRange is rejected with an UnsupportedPatternError by the join engine.
type HopRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"` // 0 means unbounded
}

// Relationship is an edge in the pattern.
//
// Types is an ordered, non-empty set of relationship-type labels. A set
// with two or more members triggers union handling downstream: the edge is
// matched against the UNION ALL of every backing table.
//
// From and To reference Nodes declared in the same pattern scope; for an
// Outgoing relationship From is the source, for Incoming the roles are
// reversed, and for Either the catalog's declared orientation decides.
type Relationship struct {
	// Var is the optional relationship variable ("" if anonymous).
	Var string `json:"var,omitempty"`

	// Types is the ordered non-empty set of relationship-type labels.
	Types []string `json:"types"`

	// Dir is the declared direction of the pattern arrow.
	Dir Direction `json:"dir"`

	// From and To are the declaration-order endpoints of the edge.
	From *Node `json:"-"`
	To   *Node `json:"-"`

	// Optional marks a relationship from an OPTIONAL MATCH clause.
	// Optional relationships lower to LEFT JOINs.
	Optional bool `json:"optional,omitempty"`

	// VarLength is non-nil when the pattern requested a variable-length
	// path. Unsupported: the join engine rejects it.
	VarLength *HopRange `json:"var_length,omitempty"`
}

// NewRelationship creates a Relationship with normalized identifiers.
func NewRelationship(variable string, types []string, dir Direction, from, to *Node) *Relationship {
	r := &Relationship{
		Var:  NormalizeIdent(variable),
		Dir:  dir,
		From: from,
		To:   to,
	}
	for _, t := range types {
		r.Types = append(r.Types, NormalizeIdent(t))
	}
	return r
}

// Graph is the full match target: nodes, relationships, and implicitly the
// connected components they form. A pattern may carry multiple independent
// MATCH clauses joined only by shared variables, or by no variable at all.
//
// Slices are in declaration order. Order matters: the join engine picks
// anchors and scans its worklist in this order.
type Graph struct {
	Nodes []*Node         `json:"nodes"`
	Rels  []*Relationship `json:"relationships"`
}

// NodeByVar returns the node declared for a variable, or nil.
func (g *Graph) NodeByVar(variable string) *Node {
	variable = NormalizeIdent(variable)
	for _, n := range g.Nodes {
		if n.Var == variable {
			return n
		}
	}
	return nil
}

// Validate checks structural invariants of the pattern:
// variables are unique (node and relationship variables share one
// namespace), every relationship has a non-empty type set, and every
// relationship endpoint references a node declared in this scope.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Var == "" {
			return fmt.Errorf("pattern node with empty variable")
		}
		if seen[n.Var] {
			return fmt.Errorf("duplicate pattern variable %q", n.Var)
		}
		seen[n.Var] = true
	}

	declared := func(n *Node) bool {
		for _, cand := range g.Nodes {
			if cand == n {
				return true
			}
		}
		return false
	}

	for _, r := range g.Rels {
		if r.Var != "" {
			if seen[r.Var] {
				return fmt.Errorf("duplicate pattern variable %q", r.Var)
			}
			seen[r.Var] = true
		}
		if len(r.Types) == 0 {
			return fmt.Errorf("relationship %s has no type labels", relName(r))
		}
		if r.From == nil || r.To == nil {
			return fmt.Errorf("relationship %s has a nil endpoint", relName(r))
		}
		if !declared(r.From) {
			return fmt.Errorf("relationship %s endpoint %q not declared in pattern scope", relName(r), r.From.Var)
		}
		if !declared(r.To) {
			return fmt.Errorf("relationship %s endpoint %q not declared in pattern scope", relName(r), r.To.Var)
		}
	}
	return nil
}

// relName names a relationship for diagnostics: its variable if bound,
// otherwise its endpoint pair.
func relName(r *Relationship) string {
	if r.Var != "" {
		return fmt.Sprintf("[%s]", r.Var)
	}
	return fmt.Sprintf("(%s)-(%s)", r.From.Var, r.To.Var)
}
