// Package catalog provides the read-only schema catalog: the mapping from
// node labels and relationship types to physical tables and columns.
//
// A catalog is loaded once (from CUE documents, see Compile) and treated as
// an immutable snapshot for the duration of any in-flight compilation.
// Concurrent compilations of independent queries may share one catalog
// because nothing here mutates after construction.
package catalog

import (
	"sort"

	"github.com/quiverdb/quiver/internal/pattern"
)

// Orientation is the catalog-declared direction of a relationship table:
// which endpoint column is the source of the relationship type.
type Orientation int

const (
	// OrientOutgoing declares FromColumn as the source endpoint.
	OrientOutgoing Orientation = iota
	// OrientIncoming declares ToColumn as the source endpoint.
	OrientIncoming
	// OrientAmbiguous declares no preferred source. When a pattern uses an
	// undirected arrow against an ambiguous entry, the declared from/to
	// columns are taken as authoritative: the pattern's left endpoint
	// binds FromColumn. This default is deliberate and documented rather
	// than silent; declare an explicit orientation to override it.
	OrientAmbiguous
)

// String returns the catalog spelling of the orientation.
func (o Orientation) String() string {
	switch o {
	case OrientOutgoing:
		return "outgoing"
	case OrientIncoming:
		return "incoming"
	default:
		return "ambiguous"
	}
}

// NodeEntry maps a node label to its backing table.
type NodeEntry struct {
	// Label is the node label this entry describes.
	Label string `json:"label"`

	// Table is the physical table holding nodes with this label.
	Table string `json:"table"`

	// IDColumn is the node identity column, the join target for edges.
	IDColumn string `json:"id_column"`

	// Properties maps logical property names to physical columns.
	Properties map[string]string `json:"properties,omitempty"`
}

// RelEntry maps a relationship type to its backing edge table.
// Every relationship type is physically an edge table with two endpoint-id
// columns; properties live in further columns of the same table.
type RelEntry struct {
	// TypeLabel is the relationship type this entry describes.
	TypeLabel string `json:"type_label"`

	// Table is the physical edge table.
	Table string `json:"table"`

	// FromColumn and ToColumn are the endpoint-id columns.
	FromColumn string `json:"from_column"`
	ToColumn   string `json:"to_column"`

	// Properties maps logical property names to physical columns.
	Properties map[string]string `json:"properties,omitempty"`

	// Orientation is the declared direction of the edge table.
	Orientation Orientation `json:"orientation"`
}

// Catalog is the read-only lookup interface consumed by the compiler.
// Implementations must be safe for concurrent use.
type Catalog interface {
	// ResolveNode returns the entry for a node label, or an
	// *UnknownLabelError if the label has no mapping.
	ResolveNode(label string) (NodeEntry, error)

	// ResolveRelationship returns the entry for a relationship type, or an
	// *UnknownLabelError if the type has no mapping.
	ResolveRelationship(typeLabel string) (RelEntry, error)
}

// StaticCatalog is an immutable snapshot implementation of Catalog.
type StaticCatalog struct {
	nodes map[string]NodeEntry
	rels  map[string]RelEntry
}

// NewStaticCatalog builds a snapshot from entries. Identifiers are
// NFC-normalized so lookups match the pattern model's normalization.
func NewStaticCatalog(nodes []NodeEntry, rels []RelEntry) *StaticCatalog {
	c := &StaticCatalog{
		nodes: make(map[string]NodeEntry, len(nodes)),
		rels:  make(map[string]RelEntry, len(rels)),
	}
	for _, n := range nodes {
		n.Label = pattern.NormalizeIdent(n.Label)
		c.nodes[n.Label] = n
	}
	for _, r := range rels {
		r.TypeLabel = pattern.NormalizeIdent(r.TypeLabel)
		c.rels[r.TypeLabel] = r
	}
	return c
}

// ResolveNode implements Catalog.
func (c *StaticCatalog) ResolveNode(label string) (NodeEntry, error) {
	entry, ok := c.nodes[pattern.NormalizeIdent(label)]
	if !ok {
		return NodeEntry{}, &UnknownLabelError{Kind: LabelKindNode, Label: label}
	}
	return entry, nil
}

// ResolveRelationship implements Catalog.
func (c *StaticCatalog) ResolveRelationship(typeLabel string) (RelEntry, error) {
	entry, ok := c.rels[pattern.NormalizeIdent(typeLabel)]
	if !ok {
		return RelEntry{}, &UnknownLabelError{Kind: LabelKindRelationship, Label: typeLabel}
	}
	return entry, nil
}

// NodeLabels returns the declared node labels in sorted order.
func (c *StaticCatalog) NodeLabels() []string {
	labels := make([]string, 0, len(c.nodes))
	for l := range c.nodes {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// RelationshipTypes returns the declared relationship types in sorted order.
func (c *StaticCatalog) RelationshipTypes() []string {
	types := make([]string, 0, len(c.rels))
	for t := range c.rels {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
