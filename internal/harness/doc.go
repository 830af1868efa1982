// Package harness runs YAML compilation scenarios: an inline catalog plus
// a query document, compiled end to end and checked against assertions, a
// golden SQL file, or fixture rows executed in the sandbox.
package harness
