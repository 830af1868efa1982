package joins

import (
	"errors"
	"fmt"
)

// EmptyPatternError reports a pattern with no nodes.
type EmptyPatternError struct{}

func (e *EmptyPatternError) Error() string {
	return "empty pattern: no nodes to match"
}

// UnsupportedPatternError reports a pattern feature that is explicitly out
// of scope for the compiler (variable-length paths, nested-array
// flattening).
type UnsupportedPatternError struct {
	Feature string // e.g. "variable-length path"
	Detail  string // offending variable or endpoint pair
}

func (e *UnsupportedPatternError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unsupported pattern feature: %s (%s)", e.Feature, e.Detail)
	}
	return fmt.Sprintf("unsupported pattern feature: %s", e.Feature)
}

// SchemaResolutionError reports a pattern element that the catalog cannot
// resolve to a consistent physical shape: an endpoint with no resolvable
// table, or a logical property with no column mapping for the resolved
// label or type.
type SchemaResolutionError struct {
	Var    string // offending pattern variable, if any
	Label  string // offending label or type, if any
	Reason string
}

func (e *SchemaResolutionError) Error() string {
	switch {
	case e.Var != "" && e.Label != "":
		return fmt.Sprintf("schema resolution failed for %s (%s): %s", e.Var, e.Label, e.Reason)
	case e.Var != "":
		return fmt.Sprintf("schema resolution failed for %s: %s", e.Var, e.Reason)
	default:
		return fmt.Sprintf("schema resolution failed: %s", e.Reason)
	}
}

// IsEmptyPattern returns true if the error is an EmptyPatternError.
func IsEmptyPattern(err error) bool {
	var ee *EmptyPatternError
	return errors.As(err, &ee)
}

// IsUnsupportedPattern returns true if the error is an
// UnsupportedPatternError.
func IsUnsupportedPattern(err error) bool {
	var ue *UnsupportedPatternError
	return errors.As(err, &ue)
}

// IsSchemaResolution returns true if the error is a SchemaResolutionError.
func IsSchemaResolution(err error) bool {
	var se *SchemaResolutionError
	return errors.As(err, &se)
}
