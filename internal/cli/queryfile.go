package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quiverdb/quiver/internal/pattern"
)

// QueryDoc is the YAML surface of a query: match paths, an optional
// filter, projections, and ordering. It deserializes into a pattern.Graph
// and pattern.QuerySpec.
//
// A minimal document:
//
//	match:
//	  - path:
//	      - node: {var: a, labels: [Person]}
//	      - rel: {types: [KNOWS], direction: out}
//	      - node: {var: b, labels: [Person]}
//	return:
//	  - expr: {prop: b.name}
type QueryDoc struct {
	Match    []PathDoc   `yaml:"match"`
	Where    *ExprDoc    `yaml:"where"`
	Return   []ReturnDoc `yaml:"return"`
	OrderBy  []OrderDoc  `yaml:"order_by"`
	Limit    *int64      `yaml:"limit"`
	Distinct bool        `yaml:"distinct"`
}

// PathDoc is one match path: an alternating node/rel element sequence.
type PathDoc struct {
	Path []ElementDoc `yaml:"path"`
}

// ElementDoc is a path element; exactly one of Node or Rel is set.
type ElementDoc struct {
	Node *NodeDoc `yaml:"node"`
	Rel  *RelDoc  `yaml:"rel"`
}

// NodeDoc declares a pattern node.
type NodeDoc struct {
	Var    string   `yaml:"var"`
	Labels []string `yaml:"labels"`
}

// RelDoc declares a pattern relationship between its neighboring nodes.
type RelDoc struct {
	Var       string   `yaml:"var"`
	Types     []string `yaml:"types"`
	Direction string   `yaml:"direction"` // out | in | either (default either)
	Optional  bool     `yaml:"optional"`
	MinHops   *int64   `yaml:"min_hops"`
	MaxHops   *int64   `yaml:"max_hops"`
}

// ReturnDoc is one projection.
type ReturnDoc struct {
	Expr  ExprDoc `yaml:"expr"`
	Alias string  `yaml:"alias"`
}

// OrderDoc is one ordering key.
type OrderDoc struct {
	Expr ExprDoc `yaml:"expr"`
	Desc bool    `yaml:"desc"`
}

// ExprDoc is a tagged-union expression node; exactly one tag is set.
type ExprDoc struct {
	Prop string  `yaml:"prop"` // "var.property"
	Var  string  `yaml:"var"`
	Str  *string `yaml:"str"`
	Int  *int64  `yaml:"int"`
	Bool *bool   `yaml:"bool"`
	Null bool    `yaml:"null"`

	Func *FuncDoc `yaml:"func"`

	Op    string   `yaml:"op"` // binary with left/right, unary with operand
	Left  *ExprDoc `yaml:"left"`
	Right *ExprDoc `yaml:"right"`

	Operand *ExprDoc `yaml:"operand"`

	Case *CaseDoc `yaml:"case"`
}

// FuncDoc is a function call.
type FuncDoc struct {
	Name     string    `yaml:"name"`
	Args     []ExprDoc `yaml:"args"`
	Distinct bool      `yaml:"distinct"`
	Star     bool      `yaml:"star"`
}

// CaseDoc is a conditional expression. Operand nil means searched form.
type CaseDoc struct {
	Operand *ExprDoc  `yaml:"operand"`
	Whens   []WhenDoc `yaml:"whens"`
	Else    *ExprDoc  `yaml:"else"`
}

// WhenDoc is one case arm.
type WhenDoc struct {
	When ExprDoc `yaml:"when"`
	Then ExprDoc `yaml:"then"`
}

// ParseQueryDoc decodes a query YAML document.
func ParseQueryDoc(data []byte) (*QueryDoc, error) {
	var doc QueryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse query document: %w", err)
	}
	return &doc, nil
}

// LoadQueryFile reads and parses a query YAML file.
func LoadQueryFile(path string) (*QueryDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	return ParseQueryDoc(data)
}

// Lower converts the document into the compiler's pattern representation.
func (doc *QueryDoc) Lower() (*pattern.Graph, *pattern.QuerySpec, error) {
	pg := &pattern.Graph{}
	byVar := map[string]*pattern.Node{}

	declareNode := func(d *NodeDoc) (*pattern.Node, error) {
		v := pattern.NormalizeIdent(d.Var)
		if v == "" {
			return nil, fmt.Errorf("node element missing var")
		}
		if existing, ok := byVar[v]; ok {
			if len(d.Labels) > 0 {
				return nil, fmt.Errorf("variable %s redeclared with labels; declare labels once", v)
			}
			return existing, nil
		}
		n := pattern.NewNode(d.Var, d.Labels...)
		byVar[v] = n
		pg.Nodes = append(pg.Nodes, n)
		return n, nil
	}

	for pi, path := range doc.Match {
		var prev *pattern.Node
		var pending *RelDoc

		for ei, el := range path.Path {
			switch {
			case el.Node != nil && el.Rel != nil:
				return nil, nil, fmt.Errorf("match[%d].path[%d]: element sets both node and rel", pi, ei)
			case el.Node != nil:
				n, err := declareNode(el.Node)
				if err != nil {
					return nil, nil, fmt.Errorf("match[%d].path[%d]: %w", pi, ei, err)
				}
				if pending != nil {
					rel, err := lowerRel(pending, prev, n)
					if err != nil {
						return nil, nil, fmt.Errorf("match[%d].path[%d]: %w", pi, ei, err)
					}
					pg.Rels = append(pg.Rels, rel)
					pending = nil
				}
				prev = n
			case el.Rel != nil:
				if prev == nil {
					return nil, nil, fmt.Errorf("match[%d].path[%d]: path must start with a node", pi, ei)
				}
				if pending != nil {
					return nil, nil, fmt.Errorf("match[%d].path[%d]: consecutive rel elements", pi, ei)
				}
				pending = el.Rel
			default:
				return nil, nil, fmt.Errorf("match[%d].path[%d]: element sets neither node nor rel", pi, ei)
			}
		}
		if pending != nil {
			return nil, nil, fmt.Errorf("match[%d]: path ends with a dangling rel", pi)
		}
	}

	spec := &pattern.QuerySpec{
		Limit:    doc.Limit,
		Distinct: doc.Distinct,
	}

	if doc.Where != nil {
		filter, err := doc.Where.lower()
		if err != nil {
			return nil, nil, fmt.Errorf("where: %w", err)
		}
		spec.Filter = filter
	}

	for i, r := range doc.Return {
		expr, err := r.Expr.lower()
		if err != nil {
			return nil, nil, fmt.Errorf("return[%d]: %w", i, err)
		}
		spec.Projections = append(spec.Projections, pattern.Projection{
			Expr:  expr,
			Alias: r.Alias,
		})
	}

	for i, o := range doc.OrderBy {
		expr, err := o.Expr.lower()
		if err != nil {
			return nil, nil, fmt.Errorf("order_by[%d]: %w", i, err)
		}
		spec.OrderBy = append(spec.OrderBy, pattern.OrderKey{Expr: expr, Desc: o.Desc})
	}

	return pg, spec, nil
}

func lowerRel(d *RelDoc, from, to *pattern.Node) (*pattern.Relationship, error) {
	var dir pattern.Direction
	switch d.Direction {
	case "out":
		dir = pattern.Outgoing
	case "in":
		dir = pattern.Incoming
	case "", "either":
		dir = pattern.Either
	default:
		return nil, fmt.Errorf("invalid direction %q: must be out, in, or either", d.Direction)
	}

	rel := pattern.NewRelationship(d.Var, d.Types, dir, from, to)
	rel.Optional = d.Optional

	if d.MinHops != nil || d.MaxHops != nil {
		hr := &pattern.HopRange{Min: 1}
		if d.MinHops != nil {
			hr.Min = *d.MinHops
		}
		if d.MaxHops != nil {
			hr.Max = *d.MaxHops
		}
		rel.VarLength = hr
	}

	return rel, nil
}

// binaryOps maps document operator spellings to the expression tree's SQL
// spellings.
var binaryOps = map[string]string{
	"eq":  "=",
	"ne":  "<>",
	"lt":  "<",
	"le":  "<=",
	"gt":  ">",
	"ge":  ">=",
	"add": "+",
	"sub": "-",
	"mul": "*",
	"div": "/",
	"and": "AND",
	"or":  "OR",
}

var unaryOps = map[string]string{
	"not": "NOT",
	"neg": "-",
}

func (d *ExprDoc) lower() (pattern.Expr, error) {
	switch {
	case d.Prop != "":
		variable, name, ok := strings.Cut(d.Prop, ".")
		if !ok || variable == "" || name == "" {
			return nil, fmt.Errorf("invalid prop %q: expected var.property", d.Prop)
		}
		return pattern.Prop(variable, name), nil

	case d.Var != "":
		return pattern.Variable{Var: pattern.NormalizeIdent(d.Var)}, nil

	case d.Str != nil:
		return pattern.String(*d.Str), nil

	case d.Int != nil:
		return pattern.Int(*d.Int), nil

	case d.Bool != nil:
		return pattern.Bool(*d.Bool), nil

	case d.Null:
		return pattern.Null(), nil

	case d.Func != nil:
		fc := pattern.FuncCall{
			Name:     d.Func.Name,
			Distinct: d.Func.Distinct,
			Star:     d.Func.Star,
		}
		for i := range d.Func.Args {
			arg, err := d.Func.Args[i].lower()
			if err != nil {
				return nil, fmt.Errorf("func %s arg %d: %w", d.Func.Name, i, err)
			}
			fc.Args = append(fc.Args, arg)
		}
		return fc, nil

	case d.Case != nil:
		return d.Case.lower()

	case d.Op != "":
		if op, ok := binaryOps[d.Op]; ok {
			if d.Left == nil || d.Right == nil {
				return nil, fmt.Errorf("operator %s requires left and right", d.Op)
			}
			left, err := d.Left.lower()
			if err != nil {
				return nil, err
			}
			right, err := d.Right.lower()
			if err != nil {
				return nil, err
			}
			return pattern.Binary{Op: op, Left: left, Right: right}, nil
		}
		if op, ok := unaryOps[d.Op]; ok {
			if d.Operand == nil {
				return nil, fmt.Errorf("operator %s requires operand", d.Op)
			}
			operand, err := d.Operand.lower()
			if err != nil {
				return nil, err
			}
			return pattern.Unary{Op: op, Operand: operand}, nil
		}
		return nil, fmt.Errorf("unknown operator %q", d.Op)

	default:
		return nil, fmt.Errorf("empty expression: set one of prop, var, str, int, bool, null, func, case, op")
	}
}

func (d *CaseDoc) lower() (pattern.Expr, error) {
	c := pattern.Case{}

	if d.Operand != nil {
		operand, err := d.Operand.lower()
		if err != nil {
			return nil, fmt.Errorf("case operand: %w", err)
		}
		c.Operand = operand
	}

	if len(d.Whens) == 0 {
		return nil, fmt.Errorf("case requires at least one when arm")
	}
	for i := range d.Whens {
		when, err := d.Whens[i].When.lower()
		if err != nil {
			return nil, fmt.Errorf("case when[%d]: %w", i, err)
		}
		then, err := d.Whens[i].Then.lower()
		if err != nil {
			return nil, fmt.Errorf("case then[%d]: %w", i, err)
		}
		c.Whens = append(c.Whens, pattern.When{When: when, Then: then})
	}

	if d.Else != nil {
		els, err := d.Else.lower()
		if err != nil {
			return nil, fmt.Errorf("case else: %w", err)
		}
		c.Else = els
	}

	return c, nil
}
