package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quiverdb/quiver/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	AllowCartesian bool
}

// ValidationReport is the success payload of the validate command.
type ValidationReport struct {
	Nodes         int `json:"nodes"`
	Relationships int `json:"relationships"`
	Joins         int `json:"joins"`
	UnionViews    int `json:"union_views"`
	Components    int `json:"components"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <catalog-dir> <query.yaml>",
		Short: "Validate a pattern query without emitting SQL",
		Long: `Run the full pipeline against the catalog and report the join
structure, failing with a semantic error code if the query cannot compile.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.AllowCartesian, "allow-cartesian", false, "combine disconnected pattern components with CROSS JOIN")

	return cmd
}

func runValidate(opts *ValidateOptions, catalogDir, queryPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, pg, spec, err := loadInputs(formatter, catalogDir, queryPath)
	if err != nil {
		return err
	}

	ex, err := compiler.Explain(pg, spec, cat, compiler.Options{
		AllowCartesianProduct: opts.AllowCartesian,
	})
	if err != nil {
		return outputCompileFailure(formatter, err)
	}

	report := ValidationReport{
		Nodes:         len(pg.Nodes),
		Relationships: len(pg.Rels),
		Joins:         ex.JoinGraph.JoinCount(),
		UnionViews:    len(ex.JoinGraph.Views),
		Components:    len(ex.JoinGraph.Components),
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ Query is valid: %d node(s), %d relationship(s), %d join(s)\n",
		report.Nodes, report.Relationships, report.Joins)
	if report.UnionViews > 0 {
		fmt.Fprintf(formatter.Writer, "  %d union view(s) for multi-type relationships\n", report.UnionViews)
	}
	if report.Components > 1 {
		fmt.Fprintf(formatter.Writer, "  %d disconnected component(s)\n", report.Components)
	}
	return nil
}
