package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quiverdb/quiver/internal/compiler"
	"github.com/quiverdb/quiver/internal/joins"
	"github.com/quiverdb/quiver/internal/sqlgen"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Dialect        string
	AllowCartesian bool
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <catalog-dir> <query.yaml>",
		Short: "Show the join structure behind a compiled query",
		Long: `Compile a query and print the inferred join graph alongside the
final SQL: anchors, join steps, union views, and table bindings.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "clickhouse", "target dialect (clickhouse|generic)")
	cmd.Flags().BoolVar(&opts.AllowCartesian, "allow-cartesian", false, "combine disconnected pattern components with CROSS JOIN")

	return cmd
}

func runExplain(opts *ExplainOptions, catalogDir, queryPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
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

	ex, err := compiler.Explain(pg, spec, cat, compiler.Options{
		Dialect:               dialect,
		AllowCartesianProduct: opts.AllowCartesian,
	})
	if err != nil {
		return outputCompileFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ex)
	}

	printExplanation(formatter, ex)
	return nil
}

func printExplanation(formatter *OutputFormatter, ex *compiler.Explanation) {
	w := formatter.Writer

	for i, comp := range ex.JoinGraph.Components {
		fmt.Fprintf(w, "Component %d: anchor %s (%s AS %s)\n",
			i+1, comp.Root.Var, comp.Root.Source, comp.Root.Alias)
		for _, step := range comp.Steps {
			fmt.Fprintf(w, "  %s %s AS %s ON %s\n",
				joinWord(step.Kind), step.Edge.Source, step.Edge.Alias, describeStep(step))
			if step.Brings != nil {
				fmt.Fprintf(w, "    brings %s (%s AS %s)\n",
					step.Brings.Var, step.Brings.Source, step.Brings.Alias)
			}
		}
	}

	for _, view := range ex.JoinGraph.Views {
		fmt.Fprintf(w, "Union view %s: %d arm(s), shared properties %v\n",
			view.Name, len(view.Arms), view.SharedProperties)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ex.SQL)
}

func joinWord(k joins.JoinKind) string {
	if k == joins.LeftJoin {
		return "LEFT JOIN"
	}
	return "INNER JOIN"
}

func describeStep(step joins.JoinStep) string {
	near := fmt.Sprintf("%s.%s = %s.%s",
		step.Edge.Alias, step.Near.EdgeColumn, step.Near.NodeAlias, step.Near.NodeColumn)
	far := fmt.Sprintf("%s.%s = %s.%s",
		step.Edge.Alias, step.Far.EdgeColumn, step.Far.NodeAlias, step.Far.NodeColumn)
	return near + " AND " + far
}
