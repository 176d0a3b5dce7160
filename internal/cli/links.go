package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagespace/sheetdoc/internal/formula"
)

// NewLinksCommand creates the links command.
func NewLinksCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links <sheet-file>",
		Short: "List the cross-page references a sheet mentions",
		Long: `Scan every formula in a sheet and list the external page references
it mentions, one canonical mention key per line.

Broken formulas are skipped; link discovery never evaluates the sheet.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinks(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runLinks(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	data, err := readSheetFile(path)
	if err != nil {
		return formatter.Fail(ErrCodeReadFailed, err.Error(), nil)
	}

	links := formula.CollectExternalReferences(data)
	if links == nil {
		links = []string{}
	}
	if formatter.Format == "json" {
		return formatter.JSON(map[string][]string{"links": links})
	}

	if len(links) == 0 {
		formatter.VerboseLog("no external references")
		return nil
	}
	for _, link := range links {
		fmt.Fprintln(formatter.Writer, link)
	}
	return nil
}
