package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quiverdb/quiver/internal/catalog"
	"github.com/quiverdb/quiver/internal/compiler"
	"github.com/quiverdb/quiver/internal/pattern"
	"github.com/quiverdb/quiver/internal/sqlgen"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Dialect        string
	AllowCartesian bool
	Output         string // output file path
}

// CompileResult is the success payload of the compile command.
type CompileResult struct {
	SQL     string `yaml:"sql" json:"sql"`
	Dialect string `yaml:"dialect" json:"dialect"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <catalog-dir> <query.yaml>",
		Short: "Compile a pattern query to SQL",
		Long: `Compile a graph-pattern query document against a CUE catalog.

The compiler resolves labels to tables, infers the join structure, and
emits SQL text for the selected dialect.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "clickhouse", "target dialect (clickhouse|generic)")
	cmd.Flags().BoolVar(&opts.AllowCartesian, "allow-cartesian", false, "combine disconnected pattern components with CROSS JOIN")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, catalogDir, queryPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	dialect := sqlgen.DialectByName(opts.Dialect)
	if dialect == nil {
		return outputCommandError(formatter, ErrCodeGeneric,
			fmt.Sprintf("unknown dialect %q: must be clickhouse or generic", opts.Dialect))
	}

	cat, pg, spec, err := loadInputs(formatter, catalogDir, queryPath)
	if err != nil {
		return err
	}

	sql, err := compiler.Compile(pg, spec, cat, compiler.Options{
		Dialect:               dialect,
		AllowCartesianProduct: opts.AllowCartesian,
	})
	if err != nil {
		return outputCompileFailure(formatter, err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(sql+"\n"), 0o644); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed,
				fmt.Sprintf("writing output file: %v", err))
		}
		formatter.VerboseLog("Wrote SQL to %s", opts.Output)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(CompileResult{SQL: sql, Dialect: dialect.Name}); err != nil {
			return err
		}
		return nil
	}

	fmt.Fprintln(formatter.Writer, sql)
	return nil
}

// loadInputs loads the catalog and query document, lowering the document
// to a pattern graph and query spec. Errors are already reported through
// the formatter; the returned error carries only the exit code.
func loadInputs(formatter *OutputFormatter, catalogDir, queryPath string) (*catalog.StaticCatalog, *pattern.Graph, *pattern.QuerySpec, error) {
	loadResult, err := LoadCatalog(catalogDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return nil, nil, nil, outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		return nil, nil, nil, outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}
	formatter.VerboseLog("Loaded %d CUE file(s) from %s: %d node label(s), %d relationship type(s)",
		loadResult.FileCount, catalogDir,
		len(loadResult.Catalog.NodeLabels()), len(loadResult.Catalog.RelationshipTypes()))

	doc, err := LoadQueryFile(queryPath)
	if err != nil {
		return nil, nil, nil, outputCommandError(formatter, ErrCodeNotFound, err.Error())
	}

	pg, spec, err := doc.Lower()
	if err != nil {
		return nil, nil, nil, outputCommandError(formatter, ErrCodeBadQuery, err.Error())
	}
	formatter.VerboseLog("Query: %d node(s), %d relationship(s), %d projection(s)",
		len(pg.Nodes), len(pg.Rels), len(spec.Projections))

	return loadResult.Catalog, pg, spec, nil
}

// outputCommandError reports an input or environment problem and returns
// an ExitError with the command-error exit code.
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	if err := formatter.Error(code, message, nil); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, message)
}

// outputCompileFailure reports a pipeline error under its semantic code
// and returns an ExitError with the failure exit code.
func outputCompileFailure(formatter *OutputFormatter, err error) error {
	code := compiler.Classify(err)
	if outErr := formatter.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, "compilation failed", err)
}
