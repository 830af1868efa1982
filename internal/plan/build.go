package plan

import (
	"fmt"

	"github.com/quiverdb/quiver/internal/joins"
	"github.com/quiverdb/quiver/internal/pattern"
)

// Options control plan construction.
type Options struct {
	// AllowCartesianProduct combines disconnected pattern components with
	// explicit CROSS JOINs instead of failing. Off by default: an
	// accidental cartesian product is almost always a query bug.
	AllowCartesianProduct bool
}

// Build lowers a join graph and query specification into a RenderPlan.
//
// The physical resolution data (table aliases, id columns, property column
// maps) rides on the join graph's table bindings; the expression trees in
// spec are rewritten against them here, producing new resolved trees.
func Build(jg *joins.Graph, spec *pattern.QuerySpec, opts Options) (*RenderPlan, error) {
	if jg == nil || len(jg.Components) == 0 {
		return nil, fmt.Errorf("cannot build plan: join graph has no components")
	}
	if len(jg.Components) > 1 && !opts.AllowCartesianProduct {
		roots := make([]string, len(jg.Components))
		for i, c := range jg.Components {
			roots[i] = c.Root.Var
		}
		return nil, &DisconnectedPatternError{Roots: roots}
	}
	if spec == nil || len(spec.Projections) == 0 {
		return nil, fmt.Errorf("cannot build plan: query has no projections")
	}

	p := &RenderPlan{
		FromSource: jg.Components[0].Root.Source,
		FromAlias:  jg.Components[0].Root.Alias,
		Distinct:   spec.Distinct,
		Limit:      spec.Limit,
	}

	for _, view := range jg.Views {
		p.CTEs = append(p.CTEs, lowerView(view))
	}

	for i, comp := range jg.Components {
		if i > 0 {
			// Caller asked for the cross product; combine components with
			// an explicit CROSS JOIN of the next root.
			p.Joins = append(p.Joins, JoinClause{
				Flavor: Cross,
				Source: comp.Root.Source,
				Alias:  comp.Root.Alias,
			})
		}
		for _, step := range comp.Steps {
			p.Joins = append(p.Joins, lowerStep(step)...)
		}
	}

	res := &resolver{jg: jg}

	for i, proj := range spec.Projections {
		expr, err := res.resolve(proj.Expr)
		if err != nil {
			return nil, err
		}
		alias := proj.Alias
		if alias == "" {
			alias = defaultAlias(proj.Expr, i)
		}
		p.Select = append(p.Select, SelectItem{Expr: expr, Alias: alias})
	}

	if spec.Filter != nil {
		where, err := res.resolve(spec.Filter)
		if err != nil {
			return nil, err
		}
		p.Where = where
	}

	// Implicit grouping: aggregate projections group by every
	// non-aggregate projection, in projection order.
	if spec.Grouped() {
		for i, proj := range spec.Projections {
			if pattern.ContainsAggregate(proj.Expr) {
				continue
			}
			p.GroupBy = append(p.GroupBy, p.Select[i].Expr)
		}
	}

	for _, key := range spec.OrderBy {
		expr, err := res.resolve(key.Expr)
		if err != nil {
			return nil, err
		}
		p.OrderBy = append(p.OrderBy, OrderItem{Expr: expr, Desc: key.Desc})
	}

	return p, nil
}

// Canonical endpoint column names projected by every union CTE arm.
const (
	CTEFromColumn = joins.ViewFromColumn
	CTEToColumn   = joins.ViewToColumn
)

// lowerView copies a union view into the plan's CTE shape. Shared
// properties are projected under their logical names, already sorted.
func lowerView(view joins.UnionRelationView) CTE {
	cte := CTE{Name: view.Name}
	for _, arm := range view.Arms {
		lowered := CTEArm{
			Table:      arm.Table,
			FromColumn: arm.FromColumn,
			ToColumn:   arm.ToColumn,
		}
		for _, name := range view.SharedProperties {
			lowered.Props = append(lowered.Props, ColumnAlias{
				Column: arm.Properties[name],
				As:     name,
			})
		}
		cte.Arms = append(cte.Arms, lowered)
	}
	return cte
}

// lowerStep expands one join step into its JOIN clauses. A step that
// introduces a node binding becomes two clauses (edge, then node); a
// both-endpoints-bound step folds the far predicate into the edge ON.
func lowerStep(step joins.JoinStep) []JoinClause {
	flavor := Inner
	if step.Kind == joins.LeftJoin {
		flavor = Left
	}

	edgeOn := []Equality{{
		Left:  Column{Alias: step.Edge.Alias, Column: step.Near.EdgeColumn},
		Right: Column{Alias: step.Near.NodeAlias, Column: step.Near.NodeColumn},
	}}
	farEq := Equality{
		Left:  Column{Alias: step.Edge.Alias, Column: step.Far.EdgeColumn},
		Right: Column{Alias: step.Far.NodeAlias, Column: step.Far.NodeColumn},
	}

	if step.Brings == nil {
		edgeOn = append(edgeOn, farEq)
		return []JoinClause{{
			Flavor: flavor,
			Source: step.Edge.Source,
			Alias:  step.Edge.Alias,
			On:     edgeOn,
		}}
	}

	return []JoinClause{
		{
			Flavor: flavor,
			Source: step.Edge.Source,
			Alias:  step.Edge.Alias,
			On:     edgeOn,
		},
		{
			Flavor: flavor,
			Source: step.Brings.Source,
			Alias:  step.Brings.Alias,
			On:     []Equality{farEq},
		},
	}
}

// resolver rewrites pattern expressions into the resolved IR.
type resolver struct {
	jg *joins.Graph
}

func (r *resolver) resolve(e pattern.Expr) (Expr, error) {
	switch t := e.(type) {
	case pattern.Literal:
		return lowerLiteral(t), nil

	case pattern.Property:
		binding, ok := r.jg.Binding(t.Var)
		if !ok {
			return nil, &joins.SchemaResolutionError{
				Var:    t.Var,
				Reason: "variable is not bound by the pattern",
			}
		}
		column, ok := binding.Properties[t.Name]
		if !ok {
			return nil, &joins.SchemaResolutionError{
				Var:    t.Var,
				Reason: fmt.Sprintf("property %q has no column mapping", t.Name),
			}
		}
		return Column{Alias: binding.Alias, Column: column}, nil

	case pattern.Variable:
		binding, ok := r.jg.Binding(t.Var)
		if !ok {
			return nil, &joins.SchemaResolutionError{
				Var:    t.Var,
				Reason: "variable is not bound by the pattern",
			}
		}
		if binding.Kind != joins.NodeBinding {
			return nil, &joins.SchemaResolutionError{
				Var:    t.Var,
				Reason: "relationship variable cannot be projected directly; project a property instead",
			}
		}
		return Column{Alias: binding.Alias, Column: binding.IDColumn}, nil

	case pattern.FuncCall:
		out := FuncCall{Name: t.Name, Distinct: t.Distinct, Star: t.Star}
		for _, arg := range t.Args {
			resolved, err := r.resolve(arg)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, resolved)
		}
		return out, nil

	case pattern.Binary:
		left, err := r.resolve(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.resolve(t.Right)
		if err != nil {
			return nil, err
		}
		return Binary{Op: t.Op, Left: left, Right: right}, nil

	case pattern.Unary:
		operand, err := r.resolve(t.Operand)
		if err != nil {
			return nil, err
		}
		return Unary{Op: t.Op, Operand: operand}, nil

	case pattern.Case:
		if len(t.Whens) == 0 {
			return nil, fmt.Errorf("CASE expression has no WHEN branches")
		}
		out := Case{}
		if t.Operand != nil {
			operand, err := r.resolve(t.Operand)
			if err != nil {
				return nil, err
			}
			out.Operand = operand
		}
		for _, w := range t.Whens {
			when, err := r.resolve(w.When)
			if err != nil {
				return nil, err
			}
			then, err := r.resolve(w.Then)
			if err != nil {
				return nil, err
			}
			out.Whens = append(out.Whens, When{When: when, Then: then})
		}
		if t.Else != nil {
			elseExpr, err := r.resolve(t.Else)
			if err != nil {
				return nil, err
			}
			out.Else = elseExpr
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

// lowerLiteral maps a pattern literal onto the plan IR.
func lowerLiteral(l pattern.Literal) Literal {
	switch l.Kind {
	case pattern.LiteralString:
		return Literal{Kind: LiteralString, Str: l.Str}
	case pattern.LiteralInt:
		return Literal{Kind: LiteralInt, Int: l.Int}
	case pattern.LiteralBool:
		return Literal{Kind: LiteralBool, Bool: l.Bool}
	default:
		return Literal{Kind: LiteralNull}
	}
}

// defaultAlias derives an output alias for projections declared without
// one. Pure function of the expression and its position.
func defaultAlias(e pattern.Expr, idx int) string {
	switch t := e.(type) {
	case pattern.Property:
		return t.Var + "_" + t.Name
	case pattern.Variable:
		return t.Var
	case pattern.FuncCall:
		return t.Name
	default:
		return fmt.Sprintf("col_%d", idx+1)
	}
}
