package sqlgen

import "strings"

// Dialect captures the engine-specific rendering decisions the generator
// makes. The plan IR itself is dialect-free; everything here is a pure
// formatting concern.
type Dialect struct {
	// Name identifies the dialect in CLI flags and diagnostics.
	Name string

	// IdentQuote is the quote character for identifiers that are not
	// bare words. Bare identifiers render unquoted.
	IdentQuote rune

	// SimpleCaseFunc, when non-empty, is the engine's single-dispatch
	// conditional function. Simple CASE expressions compile to
	//
	//	SimpleCaseFunc(operand, v1, r1, v2, r2, ..., default)
	//
	// which evaluates the operand once. The function requires a default
	// argument; when the expression has no ELSE branch the generator
	// fills in NULL explicitly. When empty, simple CASE renders as the
	// standard CASE <operand> WHEN ... END construct.
	SimpleCaseFunc string
}

// ClickHouse targets the analytical column store. Simple conditionals use
// caseWithExpression so the scrutinee is evaluated once per row.
var ClickHouse = &Dialect{
	Name:           "clickhouse",
	IdentQuote:     '`',
	SimpleCaseFunc: "caseWithExpression",
}

// Generic renders portable SQL with no engine-specific constructs. Used by
// the sandbox dry-run executor (SQLite) and as a readable reference output.
var Generic = &Dialect{
	Name:       "generic",
	IdentQuote: '"',
}

// QuoteIdent returns s quoted for the dialect. Bare identifiers (an ASCII
// letter or underscore followed by letters, digits, or underscores) pass
// through unquoted so the common case stays byte-stable; anything else is
// wrapped in IdentQuote with embedded quote characters doubled.
func (d *Dialect) QuoteIdent(s string) string {
	if bareIdent(s) {
		return s
	}
	q := string(d.IdentQuote)
	return q + strings.ReplaceAll(s, q, q+q) + q
}

func bareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// DialectByName returns the dialect registered under name, or nil.
func DialectByName(name string) *Dialect {
	switch name {
	case ClickHouse.Name:
		return ClickHouse
	case Generic.Name:
		return Generic
	default:
		return nil
	}
}
