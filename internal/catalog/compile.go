package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a problem compiling a catalog from CUE, with the
// offending field and source position when available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Compile parses a CUE value into a StaticCatalog.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the catalog document root, e.g.:
//
//	node: Person: {
//		table:      "person"
//		id_column:  "person_id"
//		properties: name: "full_name"
//	}
//	relationship: FOLLOWS: {
//		table:       "follows"
//		from_column: "follower_id"
//		to_column:   "followee_id"
//		orientation: "outgoing"
//	}
func Compile(v cue.Value) (*StaticCatalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var nodes []NodeEntry
	var rels []RelEntry

	nodesVal := v.LookupPath(cue.ParsePath("node"))
	if nodesVal.Exists() {
		iter, err := nodesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			entry, err := compileNodeEntry(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, entry)
		}
	}

	relsVal := v.LookupPath(cue.ParsePath("relationship"))
	if relsVal.Exists() {
		iter, err := relsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			entry, err := compileRelEntry(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			rels = append(rels, entry)
		}
	}

	if len(nodes) == 0 {
		return nil, &CompileError{
			Field:   "node",
			Message: "catalog declares no node labels",
			Pos:     v.Pos(),
		}
	}

	return NewStaticCatalog(nodes, rels), nil
}

func compileNodeEntry(label string, v cue.Value) (NodeEntry, error) {
	entry := NodeEntry{Label: label}

	table, err := requiredString(v, "table", "node."+label)
	if err != nil {
		return entry, err
	}
	entry.Table = table

	idColumn, err := requiredString(v, "id_column", "node."+label)
	if err != nil {
		return entry, err
	}
	entry.IDColumn = idColumn

	entry.Properties, err = compileProperties(v, "node."+label)
	return entry, err
}

func compileRelEntry(typeLabel string, v cue.Value) (RelEntry, error) {
	entry := RelEntry{TypeLabel: typeLabel}

	table, err := requiredString(v, "table", "relationship."+typeLabel)
	if err != nil {
		return entry, err
	}
	entry.Table = table

	entry.FromColumn, err = requiredString(v, "from_column", "relationship."+typeLabel)
	if err != nil {
		return entry, err
	}
	entry.ToColumn, err = requiredString(v, "to_column", "relationship."+typeLabel)
	if err != nil {
		return entry, err
	}

	// Orientation defaults to outgoing: the common case for edge tables
	// written source-first.
	orientVal := v.LookupPath(cue.ParsePath("orientation"))
	if orientVal.Exists() {
		s, err := orientVal.String()
		if err != nil {
			return entry, formatCUEError(err)
		}
		switch s {
		case "outgoing":
			entry.Orientation = OrientOutgoing
		case "incoming":
			entry.Orientation = OrientIncoming
		case "ambiguous":
			entry.Orientation = OrientAmbiguous
		default:
			return entry, &CompileError{
				Field:   "relationship." + typeLabel + ".orientation",
				Message: fmt.Sprintf("invalid orientation %q: must be outgoing, incoming, or ambiguous", s),
				Pos:     orientVal.Pos(),
			}
		}
	}

	entry.Properties, err = compileProperties(v, "relationship."+typeLabel)
	return entry, err
}

func compileProperties(v cue.Value, context string) (map[string]string, error) {
	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return nil, nil
	}
	iter, err := propsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	props := make(map[string]string)
	for iter.Next() {
		column, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   context + ".properties." + iter.Label(),
				Message: "property column must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		props[iter.Label()] = column
	}
	return props, nil
}

func requiredString(v cue.Value, field, context string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   context + "." + field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &CompileError{
			Field:   context + "." + field,
			Message: field + " must be non-empty",
			Pos:     fieldVal.Pos(),
		}
	}
	return s, nil
}

// formatCUEError converts a CUE error into a positioned CompileError.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return firstErr
}
