package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagespace/sheetdoc/internal/engine"
	"github.com/pagespace/sheetdoc/internal/sheet"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Cell string // evaluate a single cell instead of the full grid
}

// cellReport is the JSON projection of one evaluated cell.
type cellReport struct {
	Display    string   `json:"display"`
	Type       string   `json:"type,omitempty"`
	Error      string   `json:"error,omitempty"`
	DependsOn  []string `json:"dependsOn,omitempty"`
	Dependents []string `json:"dependents,omitempty"`
}

// evalReport is the JSON payload for a full-sheet evaluation.
type evalReport struct {
	RowCount    int                   `json:"rowCount"`
	ColumnCount int                   `json:"columnCount"`
	Display     [][]string            `json:"display"`
	Cells       map[string]cellReport `json:"cells"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <sheet-file>",
		Short: "Evaluate a sheet and print the computed grid",
		Long: `Evaluate every formula in a sheet file and print the computed values.

The input may be canonical sheetdoc text or the JSON interchange shape.
With --db, cross-page mentions resolve against the page database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cell, "cell", "", "evaluate a single cell (e.g. A1)")

	return cmd
}

func runEval(opts *EvalOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	data, err := readSheetFile(path)
	if err != nil {
		return formatter.Fail(ErrCodeReadFailed, err.Error(), nil)
	}

	resolver, cleanup, err := openResolver(cmd.Context(), opts.RootOptions)
	if err != nil {
		return formatter.Fail(ErrCodeStoreFailed, err.Error(), nil)
	}
	defer cleanup()

	if opts.Cell != "" {
		return evalSingleCell(formatter, data, opts.Cell, resolver)
	}

	formatter.VerboseLog("Evaluating %dx%d grid from %s", data.RowCount, data.ColumnCount, path)
	out := engine.EvaluateSheet(data, resolver)

	if formatter.Format == "json" {
		return formatter.JSON(buildEvalReport(data, out))
	}
	printGrid(formatter, out)
	return nil
}

func evalSingleCell(formatter *OutputFormatter, data *sheet.Data, addr string, resolver engine.PageResolver) error {
	if !sheet.IsValidAddress(addr) {
		return formatter.Fail(ErrCodeBadAddress, fmt.Sprintf("invalid cell address %q", addr), nil)
	}

	r := engine.EvaluateCell(data, addr, resolver)
	if formatter.Format == "json" {
		return formatter.JSON(map[string]cellReport{r.Address: reportCell(r)})
	}

	fmt.Fprintln(formatter.Writer, r.Display)
	if r.Err != nil {
		fmt.Fprintf(formatter.Writer, "%s: %s\n", r.Address, r.Err.Message)
	}
	formatter.VerboseLog("depends on: %s", strings.Join(r.DependsOn, ", "))
	return nil
}

func buildEvalReport(data *sheet.Data, out *engine.SheetResult) *evalReport {
	report := &evalReport{
		RowCount:    len(out.Display),
		ColumnCount: data.ColumnCount,
		Display:     out.Display,
		Cells:       make(map[string]cellReport),
	}
	for addr, r := range out.Cells {
		if r.Raw == "" && len(r.Dependents) == 0 {
			continue
		}
		report.Cells[addr] = reportCell(r)
	}
	return report
}

func reportCell(r *engine.Result) cellReport {
	report := cellReport{
		Display:    r.Display,
		Type:       r.Type,
		DependsOn:  r.DependsOn,
		Dependents: r.Dependents,
	}
	if r.Err != nil {
		report.Error = r.Err.Message
	}
	return report
}

// printGrid renders the display matrix as tab-separated rows, followed by
// one line per cell error.
func printGrid(formatter *OutputFormatter, out *engine.SheetResult) {
	for _, row := range out.Display {
		fmt.Fprintln(formatter.Writer, strings.Join(row, "\t"))
	}

	var errored []string
	for addr, r := range out.Cells {
		if r.Err != nil {
			errored = append(errored, addr)
		}
	}
	if len(errored) == 0 {
		return
	}
	sort.Strings(errored)

	fmt.Fprintln(formatter.Writer)
	fmt.Fprintln(formatter.Writer, "Errors:")
	for _, addr := range errored {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", addr, out.Cells[addr].Err.Message)
	}
}
