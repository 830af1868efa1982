package pattern

// Expr is a node in the shared expression tree used by RETURN projections,
// WHERE filters, and CASE branches.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the plan builder and SQL generator.
//
// Expression kinds:
//   - Literal: string, integer, boolean, or null constant
//   - Property: variable + logical property name (resolved at plan time)
//   - Variable: bare pattern variable (resolves to its binding's id column)
//   - FuncCall: function application, including aggregates
//   - Binary, Unary: operator application
//   - Case: conditional, simple or searched
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// LiteralKind discriminates the value held by a Literal.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralInt
	LiteralBool
	LiteralNull
)

// Literal is a constant value.
//
// Floats are deliberately absent: the analytical engine's literal formatting
// for floats is locale- and precision-sensitive, and no supported pattern
// feature requires them.
type Literal struct {
	Kind LiteralKind `json:"kind"`
	Str  string      `json:"str,omitempty"`
	Int  int64       `json:"int,omitempty"`
	Bool bool        `json:"bool,omitempty"`
}

func (Literal) exprNode() {}

// String returns a string literal.
func String(s string) Literal { return Literal{Kind: LiteralString, Str: s} }

// Int returns an integer literal.
func Int(i int64) Literal { return Literal{Kind: LiteralInt, Int: i} }

// Bool returns a boolean literal.
func Bool(b bool) Literal { return Literal{Kind: LiteralBool, Bool: b} }

// Null returns the null literal.
func Null() Literal { return Literal{Kind: LiteralNull} }

// Property is a logical property access: variable.name.
// The name is logical; the plan builder resolves it to a physical column
// via the catalog. Keeping resolution late lets the same expression tree be
// reused against different physical schemas without re-parsing.
type Property struct {
	Var  string `json:"var"`
	Name string `json:"name"`
}

func (Property) exprNode() {}

// Prop returns a Property with normalized identifiers.
func Prop(variable, name string) Property {
	return Property{Var: NormalizeIdent(variable), Name: NormalizeIdent(name)}
}

// Variable is a bare pattern variable in expression position, e.g.
// RETURN a. It resolves to the variable's binding id column.
type Variable struct {
	Var string `json:"var"`
}

func (Variable) exprNode() {}

// FuncCall is a function application. Aggregate functions (count, sum, min,
// max, avg, collect) make the enclosing query grouped.
type FuncCall struct {
	Name     string `json:"name"`
	Args     []Expr `json:"args,omitempty"`
	Distinct bool   `json:"distinct,omitempty"`
	// Star marks count(*).
	Star bool `json:"star,omitempty"`
}

func (FuncCall) exprNode() {}

// Binary is a binary operator application. Op holds the SQL spelling of the
// operator ("=", "<>", "<", "<=", ">", ">=", "+", "-", "*", "/", "AND",
// "OR").
type Binary struct {
	Op    string `json:"op"`
	Left  Expr   `json:"left"`
	Right Expr   `json:"right"`
}

func (Binary) exprNode() {}

// Unary is a unary operator application ("NOT", "-").
type Unary struct {
	Op      string `json:"op"`
	Operand Expr   `json:"operand"`
}

func (Unary) exprNode() {}

// When is one WHEN ... THEN ... arm of a Case.
// For a simple Case, When is the comparison value; for a searched Case it
// is the branch condition.
type When struct {
	When Expr `json:"when"`
	Then Expr `json:"then"`
}

// Case is a conditional expression.
//
// Simple form (Operand != nil):
//
//	CASE <operand> WHEN v1 THEN r1 [WHEN v2 THEN r2 ...] [ELSE d] END
//
// Searched form (Operand == nil):
//
//	CASE WHEN cond1 THEN r1 [WHEN cond2 THEN r2 ...] [ELSE d] END
//
// Else is optional in both forms. The SQL generator decides how each form
// renders for the target engine; the tree only records the shape.
type Case struct {
	Operand Expr   `json:"operand,omitempty"` // nil for searched form
	Whens   []When `json:"whens"`
	Else    Expr   `json:"else,omitempty"`
}

func (Case) exprNode() {}

// aggregateFuncs are the function names that make a query grouped.
var aggregateFuncs = map[string]bool{
	"count":   true,
	"sum":     true,
	"min":     true,
	"max":     true,
	"avg":     true,
	"collect": true,
}

// IsAggregateFunc reports whether name is an aggregate function.
// Matching is on the normalized lowercase spelling used by the model.
func IsAggregateFunc(name string) bool {
	return aggregateFuncs[name]
}

// Walk calls fn for e and every sub-expression of e in depth-first,
// declaration order. Walking stops early when fn returns false.
func Walk(e Expr, fn func(Expr) bool) bool {
	if e == nil {
		return true
	}
	if !fn(e) {
		return false
	}
	switch t := e.(type) {
	case FuncCall:
		for _, a := range t.Args {
			if !Walk(a, fn) {
				return false
			}
		}
	case Binary:
		if !Walk(t.Left, fn) {
			return false
		}
		if !Walk(t.Right, fn) {
			return false
		}
	case Unary:
		if !Walk(t.Operand, fn) {
			return false
		}
	case Case:
		if !Walk(t.Operand, fn) {
			return false
		}
		for _, w := range t.Whens {
			if !Walk(w.When, fn) {
				return false
			}
			if !Walk(w.Then, fn) {
				return false
			}
		}
		if !Walk(t.Else, fn) {
			return false
		}
	}
	return true
}

// ContainsAggregate reports whether e contains an aggregate function call.
func ContainsAggregate(e Expr) bool {
	found := false
	Walk(e, func(sub Expr) bool {
		if fc, ok := sub.(FuncCall); ok && IsAggregateFunc(fc.Name) {
			found = true
			return false
		}
		return true
	})
	return found
}
