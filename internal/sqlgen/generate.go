// Package sqlgen renders a RenderPlan to executable SQL text.
//
// Generate is a pure function of the plan and dialect: no catalog access,
// no state, and byte-identical output for identical input. Clause order
// follows the plan exactly; in particular JOIN clauses must stay in plan
// order because later joins reference aliases bound by earlier ones.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quiverdb/quiver/internal/plan"
)

// Generate renders a plan to SQL text for the given dialect.
func Generate(p *plan.RenderPlan, d *Dialect) string {
	if d == nil {
		d = Generic
	}
	g := &generator{dialect: d}
	return g.render(p)
}

type generator struct {
	dialect *Dialect
	sb      strings.Builder
}

func (g *generator) render(p *plan.RenderPlan) string {
	if len(p.CTEs) > 0 {
		g.sb.WriteString("WITH ")
		for i, cte := range p.CTEs {
			if i > 0 {
				g.sb.WriteString(", ")
			}
			g.renderCTE(cte)
		}
		g.sb.WriteString("\n")
	}

	g.sb.WriteString("SELECT ")
	if p.Distinct {
		g.sb.WriteString("DISTINCT ")
	}
	for i, item := range p.Select {
		if i > 0 {
			g.sb.WriteString(", ")
		}
		g.sb.WriteString(g.expr(item.Expr))
		g.sb.WriteString(" AS ")
		g.sb.WriteString(g.ident(item.Alias))
	}

	g.sb.WriteString("\nFROM ")
	g.sb.WriteString(g.ident(p.FromSource))
	g.sb.WriteString(" AS ")
	g.sb.WriteString(g.ident(p.FromAlias))

	for _, j := range p.Joins {
		g.sb.WriteString("\n")
		g.renderJoin(j)
	}

	if p.Where != nil {
		g.sb.WriteString("\nWHERE ")
		g.sb.WriteString(g.expr(p.Where))
	}

	if len(p.GroupBy) > 0 {
		g.sb.WriteString("\nGROUP BY ")
		for i, e := range p.GroupBy {
			if i > 0 {
				g.sb.WriteString(", ")
			}
			g.sb.WriteString(g.expr(e))
		}
	}

	if len(p.OrderBy) > 0 {
		g.sb.WriteString("\nORDER BY ")
		for i, key := range p.OrderBy {
			if i > 0 {
				g.sb.WriteString(", ")
			}
			g.sb.WriteString(g.expr(key.Expr))
			if key.Desc {
				g.sb.WriteString(" DESC")
			}
		}
	}

	if p.Limit != nil {
		g.sb.WriteString("\nLIMIT ")
		g.sb.WriteString(strconv.FormatInt(*p.Limit, 10))
	}

	return g.sb.String()
}

func (g *generator) renderCTE(cte plan.CTE) {
	g.sb.WriteString(g.ident(cte.Name))
	g.sb.WriteString(" AS (")
	for i, arm := range cte.Arms {
		if i > 0 {
			g.sb.WriteString(" UNION ALL ")
		}
		g.sb.WriteString("SELECT ")
		g.sb.WriteString(g.ident(arm.FromColumn))
		g.sb.WriteString(" AS ")
		g.sb.WriteString(plan.CTEFromColumn)
		g.sb.WriteString(", ")
		g.sb.WriteString(g.ident(arm.ToColumn))
		g.sb.WriteString(" AS ")
		g.sb.WriteString(plan.CTEToColumn)
		for _, prop := range arm.Props {
			g.sb.WriteString(", ")
			g.sb.WriteString(g.ident(prop.Column))
			g.sb.WriteString(" AS ")
			g.sb.WriteString(g.ident(prop.As))
		}
		g.sb.WriteString(" FROM ")
		g.sb.WriteString(g.ident(arm.Table))
	}
	g.sb.WriteString(")")
}

func (g *generator) renderJoin(j plan.JoinClause) {
	switch j.Flavor {
	case plan.Left:
		g.sb.WriteString("LEFT JOIN ")
	case plan.Cross:
		g.sb.WriteString("CROSS JOIN ")
	default:
		g.sb.WriteString("INNER JOIN ")
	}
	g.sb.WriteString(g.ident(j.Source))
	g.sb.WriteString(" AS ")
	g.sb.WriteString(g.ident(j.Alias))
	for i, eq := range j.On {
		if i == 0 {
			g.sb.WriteString(" ON ")
		} else {
			g.sb.WriteString(" AND ")
		}
		g.sb.WriteString(g.column(eq.Left))
		g.sb.WriteString(" = ")
		g.sb.WriteString(g.column(eq.Right))
	}
}

func (g *generator) column(c plan.Column) string {
	return g.ident(c.Alias) + "." + g.ident(c.Column)
}

func (g *generator) ident(s string) string {
	return g.dialect.QuoteIdent(s)
}

// expr renders a resolved expression. Boolean literals always render the
// lowercase tokens true/false regardless of context; a regression once
// produced malformed tokens for boolean-valued CASE branches, so the
// literal path below is the single place booleans are spelled.
func (g *generator) expr(e plan.Expr) string {
	switch t := e.(type) {
	case plan.Column:
		return g.column(t)

	case plan.Literal:
		return renderLiteral(t)

	case plan.FuncCall:
		if t.Star {
			return t.Name + "(*)"
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = g.expr(a)
		}
		if t.Distinct {
			return t.Name + "(DISTINCT " + strings.Join(args, ", ") + ")"
		}
		return t.Name + "(" + strings.Join(args, ", ") + ")"

	case plan.Binary:
		return "(" + g.expr(t.Left) + " " + t.Op + " " + g.expr(t.Right) + ")"

	case plan.Unary:
		if t.Op == "NOT" {
			return "NOT " + g.expr(t.Operand)
		}
		return t.Op + g.expr(t.Operand)

	case plan.Case:
		return g.renderCase(t)

	default:
		// Unreachable for plans produced by the builder; render a marker
		// rather than panic so a bad plan surfaces in test diffs.
		return fmt.Sprintf("/* unsupported expr %T */", e)
	}
}

// renderCase lowers a conditional. Simple conditionals compile to the
// dialect's single-dispatch function when it has one: the scrutinee is
// passed once, followed by value/result pairs, followed by a mandatory
// default. A missing ELSE branch becomes an explicit NULL default - the
// function requires one, so this is a fill-in, not an error. Searched
// conditionals always render as the standard multi-branch construct.
func (g *generator) renderCase(c plan.Case) string {
	if c.Operand != nil && g.dialect.SimpleCaseFunc != "" {
		args := []string{g.expr(c.Operand)}
		for _, w := range c.Whens {
			args = append(args, g.expr(w.When), g.expr(w.Then))
		}
		if c.Else != nil {
			args = append(args, g.expr(c.Else))
		} else {
			args = append(args, "NULL")
		}
		return g.dialect.SimpleCaseFunc + "(" + strings.Join(args, ", ") + ")"
	}

	var sb strings.Builder
	sb.WriteString("CASE")
	if c.Operand != nil {
		sb.WriteString(" ")
		sb.WriteString(g.expr(c.Operand))
	}
	for _, w := range c.Whens {
		sb.WriteString(" WHEN ")
		sb.WriteString(g.expr(w.When))
		sb.WriteString(" THEN ")
		sb.WriteString(g.expr(w.Then))
	}
	if c.Else != nil {
		sb.WriteString(" ELSE ")
		sb.WriteString(g.expr(c.Else))
	}
	sb.WriteString(" END")
	return sb.String()
}

func renderLiteral(l plan.Literal) string {
	switch l.Kind {
	case plan.LiteralString:
		return "'" + strings.ReplaceAll(l.Str, "'", "''") + "'"
	case plan.LiteralInt:
		return strconv.FormatInt(l.Int, 10)
	case plan.LiteralBool:
		if l.Bool {
			return "true"
		}
		return "false"
	default:
		return "NULL"
	}
}
