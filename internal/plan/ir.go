package plan

// Expr is a node in the resolved expression IR. Unlike the pattern-level
// tree, every column reference here is physical: table alias + column.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	planExprNode() // Marker method - seals interface to this package
}

// Column is a physical column reference: alias.column.
type Column struct {
	Alias  string `json:"alias"`
	Column string `json:"column"`
}

func (Column) planExprNode() {}

// LiteralKind discriminates the value held by a Literal.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralInt
	LiteralBool
	LiteralNull
)

// Literal is a constant value carried through from the pattern tree.
type Literal struct {
	Kind LiteralKind `json:"kind"`
	Str  string      `json:"str,omitempty"`
	Int  int64       `json:"int,omitempty"`
	Bool bool        `json:"bool,omitempty"`
}

func (Literal) planExprNode() {}

// FuncCall is a resolved function application.
type FuncCall struct {
	Name     string `json:"name"`
	Args     []Expr `json:"args,omitempty"`
	Distinct bool   `json:"distinct,omitempty"`
	Star     bool   `json:"star,omitempty"`
}

func (FuncCall) planExprNode() {}

// Binary is a binary operator application.
type Binary struct {
	Op    string `json:"op"`
	Left  Expr   `json:"left"`
	Right Expr   `json:"right"`
}

func (Binary) planExprNode() {}

// Unary is a unary operator application.
type Unary struct {
	Op      string `json:"op"`
	Operand Expr   `json:"operand"`
}

func (Unary) planExprNode() {}

// When is one arm of a conditional.
type When struct {
	When Expr `json:"when"`
	Then Expr `json:"then"`
}

// Case is a resolved conditional. Shape is preserved from the pattern tree
// (simple when Operand != nil, searched otherwise); no dialect decision is
// made here - the generator chooses the rendering.
type Case struct {
	Operand Expr   `json:"operand,omitempty"`
	Whens   []When `json:"whens"`
	Else    Expr   `json:"else,omitempty"`
}

func (Case) planExprNode() {}

// ColumnAlias projects a physical column under an output name inside a CTE
// arm.
type ColumnAlias struct {
	Column string `json:"column"`
	As     string `json:"as"`
}

// CTEArm is one SELECT arm of a union CTE.
type CTEArm struct {
	Table      string        `json:"table"`
	FromColumn string        `json:"from_column"`
	ToColumn   string        `json:"to_column"`
	Props      []ColumnAlias `json:"props,omitempty"`
}

// CTE is a common-table-expression emitted before the main query. The only
// CTEs a plan produces are union relation views.
type CTE struct {
	Name string   `json:"name"`
	Arms []CTEArm `json:"arms"`
}

// JoinFlavor selects how a JoinClause combines with the query so far.
type JoinFlavor int

const (
	// Inner is a plain INNER JOIN with an ON predicate.
	Inner JoinFlavor = iota
	// Left is a LEFT JOIN, used for optional relationships.
	Left
	// Cross combines independent pattern components when the caller
	// explicitly allowed a cartesian product.
	Cross
)

// Equality is one alias.column = alias.column join predicate.
type Equality struct {
	Left  Column `json:"left"`
	Right Column `json:"right"`
}

// JoinClause is one JOIN in the rendered FROM chain. Clause order is
// significant and preserved from the join graph: later clauses reference
// aliases bound by earlier ones.
type JoinClause struct {
	Flavor JoinFlavor `json:"flavor"`
	Source string     `json:"source"`
	Alias  string     `json:"alias"`
	On     []Equality `json:"on,omitempty"`
}

// SelectItem is one projected expression with its output alias.
type SelectItem struct {
	Expr  Expr   `json:"expr"`
	Alias string `json:"alias"`
}

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Expr Expr `json:"expr"`
	Desc bool `json:"desc,omitempty"`
}

// RenderPlan is the backend-agnostic SQL intermediate representation.
// Built once per query, immutable after construction, consumed only by the
// text generator.
type RenderPlan struct {
	CTEs       []CTE        `json:"ctes,omitempty"`
	FromSource string       `json:"from_source"`
	FromAlias  string       `json:"from_alias"`
	Joins      []JoinClause `json:"joins,omitempty"`
	Select     []SelectItem `json:"select"`
	Where      Expr         `json:"where,omitempty"`
	GroupBy    []Expr       `json:"group_by,omitempty"`
	OrderBy    []OrderItem  `json:"order_by,omitempty"`
	Limit      *int64       `json:"limit,omitempty"`
	Distinct   bool         `json:"distinct,omitempty"`
}
