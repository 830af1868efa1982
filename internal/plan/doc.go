// Package plan lowers an inferred join graph plus a query specification
// into a RenderPlan: a backend-agnostic SQL intermediate representation
// with every logical property reference already resolved to a physical
// column.
//
// Resolution happens here, not earlier, as a deliberate architectural
// boundary: the pattern-level expression tree stays reusable across schema
// versions, and the resolution pass produces a new resolved tree instead
// of mutating the parser's AST.
//
// A RenderPlan is built once per query, immutable after construction, and
// consumed only by the SQL text generator.
package plan
