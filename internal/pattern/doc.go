// Package pattern provides the in-memory model for parsed graph patterns.
//
// This package contains type definitions only. All other internal packages
// import pattern; pattern imports nothing internal. This ensures the model
// remains the foundational layer with no circular dependencies.
//
// A pattern is what a MATCH clause describes: variables bound to labeled
// nodes, relationships between them with a direction and one or more type
// labels, plus the expressions projected and filtered over those variables.
// Values are produced by an external parser (or the CLI's YAML query
// documents) and are read-only afterward.
//
// Key design constraints:
//   - Declaration order of nodes and relationships is significant: it
//     governs anchor choice and worklist scan order downstream, which is
//     what makes generated SQL deterministic.
//   - Property references carry logical names only. Resolution to physical
//     columns happens at plan-build time, never here.
//   - All identifiers are NFC-normalized on construction so identical
//     source text always compares equal.
package pattern
