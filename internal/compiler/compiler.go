// Package compiler assembles the full compilation pipeline: pattern graph
// plus query specification in, SQL text out.
//
// The pipeline is pure and synchronous: pattern -> join graph -> render
// plan -> SQL text, with no shared mutable state across invocations beyond
// the read-only catalog snapshot. Concurrent compilations of independent
// queries are safe because every stage owns its own artifacts. There is no
// blocking I/O anywhere inside the pipeline; a compilation completes in
// microseconds to low milliseconds, so cancellation is the caller's
// concern around the whole invocation, not the pipeline's.
package compiler

import (
	"errors"

	"github.com/quiverdb/quiver/internal/catalog"
	"github.com/quiverdb/quiver/internal/joins"
	"github.com/quiverdb/quiver/internal/pattern"
	"github.com/quiverdb/quiver/internal/plan"
	"github.com/quiverdb/quiver/internal/sqlgen"
)

// Options control a single compilation.
type Options struct {
	// Dialect selects the SQL rendering; nil means sqlgen.ClickHouse.
	Dialect *sqlgen.Dialect

	// AllowCartesianProduct permits disconnected pattern components to be
	// combined with explicit CROSS JOINs. Off by default.
	AllowCartesianProduct bool
}

func (o Options) dialect() *sqlgen.Dialect {
	if o.Dialect != nil {
		return o.Dialect
	}
	return sqlgen.ClickHouse
}

// Compile translates a pattern graph and query specification into SQL text
// for the configured dialect, or fails with one of the classified errors.
// Compilation is deterministic: identical input yields byte-identical SQL.
func Compile(pg *pattern.Graph, spec *pattern.QuerySpec, cat catalog.Catalog, opts Options) (string, error) {
	ex, err := Explain(pg, spec, cat, opts)
	if err != nil {
		return "", err
	}
	return ex.SQL, nil
}

// Explanation exposes the pipeline's intermediate artifacts alongside the
// final SQL, for the explain command and for tests that assert on join
// structure rather than text.
type Explanation struct {
	JoinGraph *joins.Graph     `json:"join_graph"`
	Plan      *plan.RenderPlan `json:"plan"`
	SQL       string           `json:"sql"`
}

// Explain runs the pipeline and returns every intermediate artifact.
func Explain(pg *pattern.Graph, spec *pattern.QuerySpec, cat catalog.Catalog, opts Options) (*Explanation, error) {
	jg, err := joins.Infer(pg, cat)
	if err != nil {
		return nil, err
	}

	rp, err := plan.Build(jg, spec, plan.Options{
		AllowCartesianProduct: opts.AllowCartesianProduct,
	})
	if err != nil {
		return nil, err
	}

	return &Explanation{
		JoinGraph: jg,
		Plan:      rp,
		SQL:       sqlgen.Generate(rp, opts.dialect()),
	}, nil
}

// Error codes reported by Classify. Stable: CLI output and tests key on
// them.
const (
	CodeUnknownLabel        = "UNKNOWN_LABEL"
	CodeSchemaResolution    = "SCHEMA_RESOLUTION"
	CodeDisconnectedPattern = "DISCONNECTED_PATTERN"
	CodeEmptyPattern        = "EMPTY_PATTERN"
	CodeUnsupportedPattern  = "UNSUPPORTED_PATTERN"
	CodeInvalidQuery        = "INVALID_QUERY"
)

// Classify maps a pipeline error onto its stable code. Unrecognized errors
// classify as CodeInvalidQuery.
func Classify(err error) string {
	var unknownLabel *catalog.UnknownLabelError
	var schemaRes *joins.SchemaResolutionError
	var disconnected *plan.DisconnectedPatternError
	var empty *joins.EmptyPatternError
	var unsupported *joins.UnsupportedPatternError

	switch {
	case errors.As(err, &unknownLabel):
		return CodeUnknownLabel
	case errors.As(err, &schemaRes):
		return CodeSchemaResolution
	case errors.As(err, &disconnected):
		return CodeDisconnectedPattern
	case errors.As(err, &empty):
		return CodeEmptyPattern
	case errors.As(err, &unsupported):
		return CodeUnsupportedPattern
	default:
		return CodeInvalidQuery
	}
}
