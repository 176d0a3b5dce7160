package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagespace/sheetdoc/internal/pagestore"
	"github.com/pagespace/sheetdoc/internal/sheetdoc"
	"github.com/pagespace/sheetdoc/internal/workbook"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Import bool // import compiled pages into the page database
}

// compiledPage summarizes one compiled page for output.
type compiledPage struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	CellCount int    `json:"cellCount"`
	PageID    string `json:"pageId,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <workbook>",
		Short: "Compile a CUE workbook into pages",
		Long: `Compile a CUE workbook file (or directory of CUE files) into page
definitions. With --import the compiled pages are evaluated, serialized
as canonical sheetdoc text, and written to the page database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkbookCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Import, "import", false, "import compiled pages into the page database")

	return cmd
}

func runWorkbookCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	pages, err := workbook.LoadWorkbook(path)
	if err != nil {
		var ce *workbook.CompileError
		if errors.As(err, &ce) {
			return formatter.Fail(ErrCodeCompileFailed, ce.Error(), nil)
		}
		return formatter.Fail(ErrCodeNotFound, err.Error(), nil)
	}
	formatter.VerboseLog("Compiled %d page(s) from %s", len(pages), path)

	summaries := make([]compiledPage, 0, len(pages))
	for _, page := range pages {
		summaries = append(summaries, compiledPage{
			Name:      page.Name,
			Title:     page.Title,
			CellCount: len(page.Cells),
		})
	}

	if opts.Import {
		if opts.DBPath == "" {
			return formatter.Fail(ErrCodeStoreFailed, "--import requires --db", nil)
		}
		if err := importPages(opts, pages, summaries, cmd); err != nil {
			return formatter.Fail(ErrCodeStoreFailed, err.Error(), nil)
		}
	}

	if formatter.Format == "json" {
		return formatter.JSON(map[string]any{"pages": summaries})
	}

	fmt.Fprintf(formatter.Writer, "Compiled %d page(s)\n", len(summaries))
	for _, s := range summaries {
		fmt.Fprintf(formatter.Writer, "  %s: %d cell(s)", s.Title, s.CellCount)
		if s.PageID != "" {
			fmt.Fprintf(formatter.Writer, " -> %s", s.PageID)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

// importPages writes each compiled page into the store. Content is the
// canonical serialization of the page's evaluated sheet; an existing page
// with the same title gets its content replaced.
func importPages(opts *CompileOptions, pages []workbook.PageDef, summaries []compiledPage, cmd *cobra.Command) error {
	ctx := cmd.Context()
	store, err := pagestore.Open(opts.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for i := range pages {
		data := pages[i].SheetData()

		existing, err := store.GetPageByTitle(ctx, pages[i].Title)
		switch {
		case err == nil:
			content := sheetdoc.Serialize(data, pagestore.NewResolver(ctx, store), existing.ID)
			if err := store.UpdateContent(ctx, existing.ID, content); err != nil {
				return err
			}
			summaries[i].PageID = existing.ID
		case errors.Is(err, pagestore.ErrNotFound):
			created, err := store.CreatePage(ctx, pages[i].Title, "")
			if err != nil {
				return err
			}
			content := sheetdoc.Serialize(data, pagestore.NewResolver(ctx, store), created.ID)
			if err := store.UpdateContent(ctx, created.ID, content); err != nil {
				return err
			}
			summaries[i].PageID = created.ID
		default:
			return err
		}
	}
	return nil
}
