package testutil

import "github.com/quiverdb/quiver/internal/pattern"

// Chain builds a linear pattern a-[r1]->b-[r2]->c... from alternating node
// variables and relationship type lists. Every node gets the given label
// and every relationship points Outgoing left to right.
//
//	Chain("Person", "KNOWS", "a", "b", "c")
//
// produces (a:Person)-[:KNOWS]->(b:Person)-[:KNOWS]->(c:Person).
func Chain(label, relType string, vars ...string) *pattern.Graph {
	pg := &pattern.Graph{}
	var prev *pattern.Node
	for _, v := range vars {
		n := pattern.NewNode(v, label)
		pg.Nodes = append(pg.Nodes, n)
		if prev != nil {
			pg.Rels = append(pg.Rels,
				pattern.NewRelationship("", []string{relType}, pattern.Outgoing, prev, n))
		}
		prev = n
	}
	return pg
}

// ReturnVars builds a query spec projecting each variable's identity.
func ReturnVars(vars ...string) *pattern.QuerySpec {
	spec := &pattern.QuerySpec{}
	for _, v := range vars {
		spec.Projections = append(spec.Projections, pattern.Projection{
			Expr: pattern.Variable{Var: v},
		})
	}
	return spec
}

// ReturnProps builds a query spec projecting var.name properties given as
// alternating variable and property name pairs.
func ReturnProps(pairs ...string) *pattern.QuerySpec {
	spec := &pattern.QuerySpec{}
	for i := 0; i+1 < len(pairs); i += 2 {
		spec.Projections = append(spec.Projections, pattern.Projection{
			Expr: pattern.Prop(pairs[i], pairs[i+1]),
		})
	}
	return spec
}
