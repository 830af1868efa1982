package joins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quiverdb/quiver/internal/catalog"
	"github.com/quiverdb/quiver/internal/pattern"
)

// Infer produces the join graph for a pattern against a catalog.
//
// Per connected component: the first undeclared-so-far node in declaration
// order anchors the component as its FROM root, then a worklist fixpoint
// converts relationships into join steps as their endpoints become bound.
// When no pending relationship touches a bound node, the remaining pattern
// is a separate component and a new anchor is chosen; the engine never
// joins across components.
func Infer(pg *pattern.Graph, cat catalog.Catalog) (*Graph, error) {
	if pg == nil || len(pg.Nodes) == 0 {
		return nil, &EmptyPatternError{}
	}
	if err := pg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	for _, r := range pg.Rels {
		if r.VarLength != nil {
			return nil, &UnsupportedPatternError{
				Feature: "variable-length path",
				Detail:  fmt.Sprintf("(%s)-(%s)", r.From.Var, r.To.Var),
			}
		}
	}

	in := &inferrer{
		cat:        cat,
		bound:      make(map[string]TableBinding),
		viewByKey:  make(map[string]int),
		viewNames:  make(map[string]bool),
		aliasCount: make(map[string]int),
	}

	pending := make([]int, len(pg.Rels))
	for i := range pg.Rels {
		pending[i] = i
	}

	var comps []Component
	for {
		anchor := in.nextAnchor(pg)
		if anchor == nil {
			break
		}
		root, err := in.nodeBinding(anchor)
		if err != nil {
			return nil, err
		}
		comp := Component{Root: root}

		// Worklist fixpoint. After every appended step the scan restarts
		// from the head of the worklist so that earlier-declared
		// relationships are consumed as soon as they become eligible.
		for {
			appended := false
			for i := 0; i < len(pending); i++ {
				rel := pg.Rels[pending[i]]
				_, fromBound := in.bound[rel.From.Var]
				_, toBound := in.bound[rel.To.Var]
				if !fromBound && !toBound {
					continue
				}
				step, err := in.step(rel, pending[i])
				if err != nil {
					return nil, err
				}
				comp.Steps = append(comp.Steps, step)
				pending = append(pending[:i], pending[i+1:]...)
				appended = true
				break
			}
			if !appended {
				break
			}
		}

		comps = append(comps, comp)
	}

	return &Graph{Components: comps, Views: in.views}, nil
}

type inferrer struct {
	cat   catalog.Catalog
	bound map[string]TableBinding

	views      []UnionRelationView
	viewByKey  map[string]int
	viewNames  map[string]bool
	aliasCount map[string]int
}

// nextAnchor returns the first node in declaration order without a binding.
func (in *inferrer) nextAnchor(pg *pattern.Graph) *pattern.Node {
	for _, n := range pg.Nodes {
		if _, ok := in.bound[n.Var]; !ok {
			return n
		}
	}
	return nil
}

// nodeBinding resolves and registers the table binding for a node.
func (in *inferrer) nodeBinding(n *pattern.Node) (TableBinding, error) {
	if len(n.Labels) == 0 {
		return TableBinding{}, &SchemaResolutionError{
			Var:    n.Var,
			Reason: "node has no label; cannot resolve a table",
		}
	}
	// The first label is the primary label and decides the table.
	entry, err := in.cat.ResolveNode(n.Labels[0])
	if err != nil {
		return TableBinding{}, err
	}
	b := TableBinding{
		Kind:       NodeBinding,
		Var:        n.Var,
		Source:     entry.Table,
		Alias:      n.Var,
		IDColumn:   entry.IDColumn,
		Properties: entry.Properties,
	}
	in.bound[n.Var] = b
	return b, nil
}

// step converts one relationship into a join step. At least one endpoint
// must already be bound.
func (in *inferrer) step(rel *pattern.Relationship, relIndex int) (JoinStep, error) {
	edge, fromCol, toCol, err := in.edgeBinding(rel)
	if err != nil {
		return JoinStep{}, err
	}

	kind := InnerJoin
	if rel.Optional {
		kind = LeftJoin
	}

	pred := func(edgeCol string, node TableBinding) EndpointPred {
		return EndpointPred{
			EdgeColumn: edgeCol,
			NodeAlias:  node.Alias,
			NodeColumn: node.IDColumn,
		}
	}

	fromB, fromBound := in.bound[rel.From.Var]
	toB, toBound := in.bound[rel.To.Var]

	step := JoinStep{
		RelVar:   rel.Var,
		RelIndex: relIndex,
		Edge:     edge,
		Kind:     kind,
	}

	switch {
	case fromBound && toBound:
		// Diamond and repeated-variable patterns: both aliases exist, the
		// step only introduces the edge source.
		step.Near = pred(fromCol, fromB)
		step.Far = pred(toCol, toB)
	case fromBound:
		farB, err := in.nodeBinding(rel.To)
		if err != nil {
			return JoinStep{}, err
		}
		step.Near = pred(fromCol, fromB)
		step.Far = pred(toCol, farB)
		step.Brings = &farB
	default:
		farB, err := in.nodeBinding(rel.From)
		if err != nil {
			return JoinStep{}, err
		}
		step.Near = pred(toCol, toB)
		step.Far = pred(fromCol, farB)
		step.Brings = &farB
	}

	return step, nil
}

// edgeBinding resolves the edge source for a relationship: a single table,
// or a union view for a multi-type set. Returns the binding plus the
// endpoint columns matching the pattern's From and To endpoints.
func (in *inferrer) edgeBinding(rel *pattern.Relationship) (TableBinding, string, string, error) {
	if len(rel.Types) == 1 {
		entry, err := in.cat.ResolveRelationship(rel.Types[0])
		if err != nil {
			return TableBinding{}, "", "", err
		}
		if entry.FromColumn == "" || entry.ToColumn == "" {
			return TableBinding{}, "", "", &SchemaResolutionError{
				Var:    rel.Var,
				Label:  rel.Types[0],
				Reason: "relationship entry is missing an endpoint-id column",
			}
		}
		fromCol, toCol := orient(entry, rel.Dir)
		b := TableBinding{
			Kind:       EdgeBinding,
			Var:        rel.Var,
			Source:     entry.Table,
			Alias:      in.edgeAlias(rel),
			Properties: entry.Properties,
		}
		return b, fromCol, toCol, nil
	}

	view, err := in.unionView(rel)
	if err != nil {
		return TableBinding{}, "", "", err
	}
	// The view re-aliases property columns to their logical names.
	props := make(map[string]string, len(view.SharedProperties))
	for _, p := range view.SharedProperties {
		props[p] = p
	}
	b := TableBinding{
		Kind:       EdgeBinding,
		Var:        rel.Var,
		Source:     view.Name,
		Alias:      in.edgeAlias(rel),
		Properties: props,
	}
	return b, ViewFromColumn, ViewToColumn, nil
}

// orient maps a relationship entry's physical endpoint columns onto the
// pattern's (From, To) roles for the declared direction.
//
// For an undirected pattern arrow the catalog's declared orientation
// decides. An ambiguous entry falls back to the declared column order:
// the pattern's left endpoint binds FromColumn. This default is documented
// on catalog.OrientAmbiguous; declare an explicit orientation to override.
func orient(entry catalog.RelEntry, dir pattern.Direction) (fromCol, toCol string) {
	switch dir {
	case pattern.Outgoing:
		return entry.FromColumn, entry.ToColumn
	case pattern.Incoming:
		return entry.ToColumn, entry.FromColumn
	default:
		if entry.Orientation == catalog.OrientIncoming {
			return entry.ToColumn, entry.FromColumn
		}
		return entry.FromColumn, entry.ToColumn
	}
}

// edgeAlias returns the SQL alias for a relationship binding: its variable
// when bound, otherwise a pure function of the endpoint pair with a
// declaration-order ordinal distinguishing repeats of the same pair.
func (in *inferrer) edgeAlias(rel *pattern.Relationship) string {
	if rel.Var != "" {
		return rel.Var
	}
	base := fmt.Sprintf("e_%s_%s", rel.From.Var, rel.To.Var)
	in.aliasCount[base]++
	if n := in.aliasCount[base]; n > 1 {
		return fmt.Sprintf("%s_%d", base, n)
	}
	return base
}

// unionView resolves (or reuses) the union view for a multi-type
// relationship. Identical type-set + endpoint-pair + direction reuses the
// already-materialized view.
func (in *inferrer) unionView(rel *pattern.Relationship) (UnionRelationView, error) {
	key := fmt.Sprintf("%s|%s|%d|%s", rel.From.Var, rel.To.Var, rel.Dir, strings.Join(rel.Types, ","))
	if idx, ok := in.viewByKey[key]; ok {
		return in.views[idx], nil
	}

	arms := make([]UnionArm, 0, len(rel.Types))
	for _, typeLabel := range rel.Types {
		entry, err := in.cat.ResolveRelationship(typeLabel)
		if err != nil {
			return UnionRelationView{}, err
		}
		if entry.FromColumn == "" || entry.ToColumn == "" {
			return UnionRelationView{}, &SchemaResolutionError{
				Var:    rel.Var,
				Label:  typeLabel,
				Reason: "relationship entry is missing an endpoint-id column; union arms must expose both endpoint roles",
			}
		}
		fromCol, toCol := orient(entry, rel.Dir)
		arms = append(arms, UnionArm{
			TypeLabel:  typeLabel,
			Table:      entry.Table,
			FromColumn: fromCol,
			ToColumn:   toCol,
			Properties: entry.Properties,
		})
	}

	shared := sharedProperties(arms)
	for i := range arms {
		if len(shared) == 0 {
			arms[i].Properties = nil
			continue
		}
		props := make(map[string]string, len(shared))
		for _, name := range shared {
			props[name] = arms[i].Properties[name]
		}
		arms[i].Properties = props
	}

	view := UnionRelationView{
		Name:             in.viewName(rel),
		Types:            append([]string(nil), rel.Types...),
		SharedProperties: shared,
		Arms:             arms,
	}
	in.viewByKey[key] = len(in.views)
	in.views = append(in.views, view)
	return view, nil
}

// viewName derives the CTE name rel_<leftVar>_<rightVar>; a second view
// over the same pair (different type set) gets an ordinal suffix.
func (in *inferrer) viewName(rel *pattern.Relationship) string {
	base := fmt.Sprintf("rel_%s_%s", rel.From.Var, rel.To.Var)
	name := base
	for n := 2; in.viewNames[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	in.viewNames[name] = true
	return name
}

// sharedProperties returns the sorted logical property names mapped by
// every arm of a union.
func sharedProperties(arms []UnionArm) []string {
	if len(arms) == 0 {
		return nil
	}
	var shared []string
	for name := range arms[0].Properties {
		inAll := true
		for _, arm := range arms[1:] {
			if _, ok := arm.Properties[name]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, name)
		}
	}
	sort.Strings(shared)
	return shared
}
