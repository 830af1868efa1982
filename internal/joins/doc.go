// Package joins infers the relational join structure for a graph pattern.
//
// Given a pattern.Graph and a catalog.Catalog, Infer produces a Graph: per
// connected component, an anchor table binding plus an ordered list of join
// steps whose traversal reproduces the pattern's connectivity. Multi-type
// relationships resolve to union views instead of single tables.
//
// The engine is a worklist fixpoint over the pattern's relationships. A
// relationship becomes a join step as soon as at least one of its endpoints
// is bound; a relationship whose endpoints are both bound joins the existing
// aliases (diamond and repeated-variable patterns fall out of this case with
// no special handling). There is deliberately no shape classification and no
// "cross-branch" detection pass: every join step corresponds 1:1 to a
// pattern relationship, and the engine never fabricates joins beyond what
// the pattern declares.
//
// Output is deterministic: anchor choice and worklist scan order follow the
// declaration order of the pattern, and all generated names are pure
// functions of the pattern variables involved.
package joins
