package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pagespace/sheetdoc/internal/pagestore"
	"github.com/pagespace/sheetdoc/internal/sheet"
	"github.com/pagespace/sheetdoc/internal/sheetdoc"
)

// NewPagesCommand creates the pages command group.
func NewPagesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Manage the page database",
	}
	cmd.AddCommand(newPagesListCommand(rootOpts))
	cmd.AddCommand(newPagesShowCommand(rootOpts))
	cmd.AddCommand(newPagesImportCommand(rootOpts))
	return cmd
}

// pageSummary is the JSON projection of one stored page.
type pageSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updatedAt"`
}

func newPagesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored pages",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			store, err := requireStore(rootOpts)
			if err != nil {
				return formatter.Fail(ErrCodeStoreFailed, err.Error(), nil)
			}
			defer store.Close()

			pages, err := store.ListPages(cmd.Context())
			if err != nil {
				return formatter.Fail(ErrCodeStoreFailed, err.Error(), nil)
			}

			summaries := make([]pageSummary, 0, len(pages))
			for _, page := range pages {
				summaries = append(summaries, pageSummary{
					ID:        page.ID,
					Title:     page.Title,
					UpdatedAt: page.UpdatedAt.Format("2006-01-02 15:04:05"),
				})
			}

			if formatter.Format == "json" {
				return formatter.JSON(map[string]any{"pages": summaries})
			}
			for _, s := range summaries {
				fmt.Fprintf(formatter.Writer, "%s  %s  %s\n", s.ID, s.UpdatedAt, s.Title)
			}
			return nil
		},
	}
}

func newPagesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <title>",
		Short:         "Print a stored page's sheetdoc content",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			store, err := requireStore(rootOpts)
			if err != nil {
				return formatter.Fail(ErrCodeStoreFailed, err.Error(), nil)
			}
			defer store.Close()

			page, err := store.GetPageByTitle(cmd.Context(), args[0])
			if errors.Is(err, pagestore.ErrNotFound) {
				return formatter.Fail(ErrCodeNotFound, fmt.Sprintf("page %q not found", args[0]), nil)
			}
			if err != nil {
				return formatter.Fail(ErrCodeStoreFailed, err.Error(), nil)
			}

			if formatter.Format == "json" {
				return formatter.JSON(map[string]string{
					"id":      page.ID,
					"title":   page.Title,
					"content": page.Content,
				})
			}
			fmt.Fprint(formatter.Writer, page.Content)
			return nil
		},
	}
}

// pageFixtures is the YAML shape accepted by pages import.
type pageFixtures struct {
	Pages []pageFixture `yaml:"pages"`
}

type pageFixture struct {
	Title   string            `yaml:"title"`
	Rows    int               `yaml:"rows"`
	Columns int               `yaml:"columns"`
	Cells   map[string]string `yaml:"cells"`
}

func newPagesImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixtures.yaml>",
		Short: "Import pages from a YAML fixture file",
		Long: `Import pages from a YAML fixture file into the page database.

Each entry declares a title and a cell map; the sheet is evaluated and
stored as canonical sheetdoc text. Existing pages with the same title
get their content replaced.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			fixtures, err := loadPageFixtures(args[0])
			if err != nil {
				return formatter.Fail(ErrCodeParseFailed, err.Error(), nil)
			}

			store, err := requireStore(rootOpts)
			if err != nil {
				return formatter.Fail(ErrCodeStoreFailed, err.Error(), nil)
			}
			defer store.Close()

			summaries := make([]pageSummary, 0, len(fixtures.Pages))
			for _, fixture := range fixtures.Pages {
				page, err := importFixture(cmd, store, fixture)
				if err != nil {
					return formatter.Fail(ErrCodeStoreFailed, err.Error(), nil)
				}
				formatter.VerboseLog("Imported %q as %s", page.Title, page.ID)
				summaries = append(summaries, pageSummary{ID: page.ID, Title: page.Title})
			}

			if formatter.Format == "json" {
				return formatter.JSON(map[string]any{"imported": summaries})
			}
			fmt.Fprintf(formatter.Writer, "Imported %d page(s)\n", len(summaries))
			return nil
		},
	}
}

func loadPageFixtures(path string) (*pageFixtures, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures pageFixtures
	if err := yaml.Unmarshal(source, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if len(fixtures.Pages) == 0 {
		return nil, fmt.Errorf("fixture file declares no pages")
	}
	for _, fixture := range fixtures.Pages {
		if fixture.Title == "" {
			return nil, fmt.Errorf("every fixture page needs a title")
		}
	}
	return &fixtures, nil
}

func importFixture(cmd *cobra.Command, store *pagestore.Store, fixture pageFixture) (*pagestore.Page, error) {
	ctx := cmd.Context()

	rows, cols := fixture.Rows, fixture.Columns
	if rows == 0 {
		rows = sheet.DefaultRows
	}
	if cols == 0 {
		cols = sheet.DefaultColumns
	}
	data := sheet.NewSized(rows, cols)
	for addr, raw := range fixture.Cells {
		if err := data.Set(addr, raw); err != nil {
			return nil, fmt.Errorf("page %q: %w", fixture.Title, err)
		}
	}

	page, err := store.GetPageByTitle(ctx, fixture.Title)
	if errors.Is(err, pagestore.ErrNotFound) {
		if page, err = store.CreatePage(ctx, fixture.Title, ""); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	content := sheetdoc.Serialize(data, pagestore.NewResolver(ctx, store), page.ID)
	if err := store.UpdateContent(ctx, page.ID, content); err != nil {
		return nil, err
	}
	return page, nil
}

// requireStore opens the --db page database, which every pages subcommand
// needs.
func requireStore(opts *RootOptions) (*pagestore.Store, error) {
	if opts.DBPath == "" {
		return nil, fmt.Errorf("this command requires --db")
	}
	return pagestore.Open(opts.DBPath)
}
