package catalog

import (
	"errors"
	"fmt"
)

// LabelKind distinguishes node labels from relationship types in errors.
type LabelKind string

const (
	LabelKindNode         LabelKind = "node"
	LabelKindRelationship LabelKind = "relationship"
)

// UnknownLabelError reports a label with no catalog mapping.
type UnknownLabelError struct {
	Kind  LabelKind
	Label string
}

// Error implements the error interface.
func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown %s label %q: no catalog mapping", e.Kind, e.Label)
}

// IsUnknownLabel returns true if the error is an UnknownLabelError.
// Uses errors.As to handle wrapped errors.
func IsUnknownLabel(err error) bool {
	var ue *UnknownLabelError
	return errors.As(err, &ue)
}
