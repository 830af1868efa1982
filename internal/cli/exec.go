package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/quiverdb/quiver/internal/compiler"
	"github.com/quiverdb/quiver/internal/sandbox"
	"github.com/quiverdb/quiver/internal/sqlgen"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Fixtures       string
	AllowCartesian bool
}

// ExecResult is the success payload of the exec command.
type ExecResult struct {
	RunID   string     `json:"run_id"`
	SQL     string     `json:"sql"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <catalog-dir> <query.yaml>",
		Short: "Dry-run a compiled query against fixture data",
		Long: `Compile a query with the generic dialect and execute it in a
throwaway in-memory SQLite database built from the catalog's tables,
optionally loading fixture rows from a YAML file.

This is a smoke test for compiled SQL, not a substitute for the target
engine: dialect-specific constructs are rendered in their portable form.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixtures, "fixtures", "", "fixtures YAML file to load before executing")
	cmd.Flags().BoolVar(&opts.AllowCartesian, "allow-cartesian", false, "combine disconnected pattern components with CROSS JOIN")

	return cmd
}

func runExec(opts *ExecOptions, catalogDir, queryPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	cat, pg, spec, err := loadInputs(formatter, catalogDir, queryPath)
	if err != nil {
		return err
	}

	sql, err := compiler.Compile(pg, spec, cat, compiler.Options{
		Dialect:               sqlgen.Generic,
		AllowCartesianProduct: opts.AllowCartesian,
	})
	if err != nil {
		return outputCompileFailure(formatter, err)
	}

	runID := uuid.NewString()
	formatter.VerboseLog("Run %s: executing against in-memory sandbox", runID)

	db, err := sandbox.Open(":memory:")
	if err != nil {
		return outputCommandError(formatter, ErrCodeExecFailed, err.Error())
	}
	defer db.Close()

	if err := db.CreateTables(ctx, cat); err != nil {
		return outputCommandError(formatter, ErrCodeExecFailed,
			fmt.Sprintf("creating sandbox tables: %v", err))
	}

	if opts.Fixtures != "" {
		fixtures, err := sandbox.LoadFixturesFile(opts.Fixtures)
		if err != nil {
			return outputCommandError(formatter, ErrCodeNotFound, err.Error())
		}
		if err := db.LoadFixtures(ctx, fixtures); err != nil {
			return outputCommandError(formatter, ErrCodeExecFailed,
				fmt.Sprintf("loading fixtures: %v", err))
		}
		formatter.VerboseLog("Loaded fixtures from %s", opts.Fixtures)
	}

	result, err := db.Query(ctx, sql)
	if err != nil {
		return outputCommandError(formatter, ErrCodeExecFailed, err.Error())
	}

	payload := ExecResult{
		RunID:   runID,
		SQL:     sql,
		Columns: result.Columns,
		Rows:    result.Rows,
	}

	if formatter.Format == "json" {
		return formatter.Success(payload)
	}

	fmt.Fprintf(formatter.Writer, "Run %s: %d row(s)\n", runID, len(result.Rows))
	fmt.Fprintln(formatter.Writer, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		fmt.Fprintln(formatter.Writer, strings.Join(row, "\t"))
	}
	return nil
}
