package plan

import (
	"errors"
	"fmt"
	"strings"
)

// DisconnectedPatternError reports a pattern that decomposes into multiple
// components with no declared combination strategy. Callers that really
// want the cartesian product must say so via Options.AllowCartesianProduct.
type DisconnectedPatternError struct {
	// Roots lists the anchor variable of each component.
	Roots []string
}

func (e *DisconnectedPatternError) Error() string {
	return fmt.Sprintf("pattern has %d disconnected components (anchors: %s) and no combination strategy was requested",
		len(e.Roots), strings.Join(e.Roots, ", "))
}

// IsDisconnectedPattern returns true if the error is a
// DisconnectedPatternError.
func IsDisconnectedPattern(err error) bool {
	var de *DisconnectedPatternError
	return errors.As(err, &de)
}
