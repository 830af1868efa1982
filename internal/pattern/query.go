package pattern

// Projection is one RETURN item: an expression and its output alias.
type Projection struct {
	Expr  Expr   `json:"expr"`
	Alias string `json:"alias"`
}

// OrderKey is one ORDER BY key.
type OrderKey struct {
	Expr Expr `json:"expr"`
	Desc bool `json:"desc,omitempty"`
}

// QuerySpec is the projection/filter/aggregation specification attached to
// a pattern: what the query returns, filters on, and how results are
// ordered and limited. All expressions reference pattern variables and
// logical property names only.
//
// A spec is grouped when any projection contains an aggregate function
// call; the grouping keys are then the non-aggregated projections
// (Cypher's implicit-grouping semantics).
type QuerySpec struct {
	Projections []Projection `json:"projections"`
	Filter      Expr         `json:"filter,omitempty"`
	OrderBy     []OrderKey   `json:"order_by,omitempty"`
	Limit       *int64       `json:"limit,omitempty"`
	Distinct    bool         `json:"distinct,omitempty"`
}

// Grouped reports whether the spec carries any aggregate projection.
func (s *QuerySpec) Grouped() bool {
	for _, p := range s.Projections {
		if ContainsAggregate(p.Expr) {
			return true
		}
	}
	return false
}
