package joins

// BindingKind distinguishes node bindings from edge bindings.
type BindingKind int

const (
	// NodeBinding binds a pattern node variable to a node table.
	NodeBinding BindingKind = iota
	// EdgeBinding binds a relationship to an edge table or union view.
	EdgeBinding
)

// TableBinding binds a pattern variable to a physical source and alias.
//
// Aliases are pure functions of the pattern: a node's alias is its
// (normalized) variable name, which is unique per scope, so a physical
// table reused by two pattern variables gets two distinct aliases for free.
// Anonymous relationships receive a synthesized alias derived from their
// endpoint pair.
type TableBinding struct {
	Kind BindingKind `json:"kind"`

	// Var is the pattern variable ("" only for anonymous relationships,
	// whose Alias is synthesized).
	Var string `json:"var,omitempty"`

	// Source is the physical table name, or the union view name for a
	// multi-type relationship.
	Source string `json:"source"`

	// Alias is the table alias used in generated SQL.
	Alias string `json:"alias"`

	// IDColumn is the node identity column (node bindings only).
	IDColumn string `json:"id_column,omitempty"`

	// Properties maps logical property names to physical columns for this
	// binding. For union-view bindings the view already re-aliases its
	// columns to logical names, so the map is identity over the shared
	// property set.
	Properties map[string]string `json:"properties,omitempty"`
}

// JoinKind selects the SQL join flavor for a step.
type JoinKind int

const (
	// InnerJoin is the default for matched relationships.
	InnerJoin JoinKind = iota
	// LeftJoin is used for optional relationships.
	LeftJoin
)

// EndpointPred is one equality predicate between an endpoint-id column on
// the edge source and the identity column of a node binding.
type EndpointPred struct {
	// EdgeColumn is the endpoint-id column on the step's edge source.
	EdgeColumn string `json:"edge_column"`

	// NodeAlias and NodeColumn identify the node side of the equality.
	NodeAlias  string `json:"node_alias"`
	NodeColumn string `json:"node_column"`
}

// JoinStep converts exactly one pattern relationship into join structure.
//
// Near is the predicate against the endpoint that was already bound when
// the step was appended; Far is the predicate against the other endpoint.
// When Brings is non-nil the step introduces that node binding (the far
// endpoint was unbound); when Brings is nil both endpoints were already
// bound and the step only adds the edge source with both predicates.
//
// Invariant: a step may only be appended once every node alias it
// references is already present in its component, except the component's
// root, which has no incoming predicate.
type JoinStep struct {
	// RelVar tags the step with the pattern relationship that produced it
	// ("" for anonymous relationships; Edge.Alias is then the tag).
	RelVar string `json:"rel_var,omitempty"`

	// RelIndex is the declaration index of the producing relationship.
	RelIndex int `json:"rel_index"`

	// Edge is the binding for the relationship's table or union view.
	Edge TableBinding `json:"edge"`

	Near EndpointPred `json:"near"`
	Far  EndpointPred `json:"far"`

	// Brings is the node binding introduced by this step, nil when both
	// endpoints were already bound.
	Brings *TableBinding `json:"brings,omitempty"`

	Kind JoinKind `json:"kind"`
}

// UnionArm is one SELECT arm of a union view: the physical table backing
// one type label, with its direction-resolved endpoint columns.
type UnionArm struct {
	TypeLabel string `json:"type_label"`
	Table     string `json:"table"`

	// FromColumn and ToColumn are already resolved against the pattern's
	// direction: FromColumn is the column matching the pattern's From
	// endpoint regardless of how the physical table is oriented.
	FromColumn string `json:"from_column"`
	ToColumn   string `json:"to_column"`

	// Properties maps the view's shared logical property names to this
	// arm's physical columns.
	Properties map[string]string `json:"properties,omitempty"`
}

// UnionRelationView is the synthesized CTE for a multi-type relationship:
// the UNION ALL of every backing table, each projected to the canonical
// endpoint columns from_id and to_id (plus shared properties under their
// logical names).
//
// The name is a pure function of the endpoint variable pair, so
// recompiling identical input reproduces identical SQL.
type UnionRelationView struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`

	// SharedProperties lists logical property names projected by every
	// arm, in sorted order.
	SharedProperties []string `json:"shared_properties,omitempty"`

	Arms []UnionArm `json:"arms"`
}

// Canonical endpoint column names exposed by every union view.
const (
	ViewFromColumn = "from_id"
	ViewToColumn   = "to_id"
)

// Component is one connected component of the pattern: a root binding (the
// FROM anchor) plus its ordered join steps.
type Component struct {
	Root  TableBinding `json:"root"`
	Steps []JoinStep   `json:"steps"`
}

// Graph is the inferred join structure for a whole pattern. Components are
// independent: the engine never invents a join between them. Whether and
// how they combine (explicit cross product or error) is the plan builder's
// decision.
type Graph struct {
	Components []Component         `json:"components"`
	Views      []UnionRelationView `json:"views,omitempty"`
}

// JoinCount returns the total number of join steps across components.
// For every valid pattern this equals the number of pattern relationships.
func (g *Graph) JoinCount() int {
	n := 0
	for _, c := range g.Components {
		n += len(c.Steps)
	}
	return n
}

// Binding returns the table binding for a pattern variable, searching
// component roots, step-introduced node bindings, and edge bindings.
func (g *Graph) Binding(variable string) (TableBinding, bool) {
	for _, c := range g.Components {
		if c.Root.Var == variable {
			return c.Root, true
		}
		for _, s := range c.Steps {
			if s.Brings != nil && s.Brings.Var == variable {
				return *s.Brings, true
			}
			if s.Edge.Var != "" && s.Edge.Var == variable {
				return s.Edge, true
			}
		}
	}
	return TableBinding{}, false
}
