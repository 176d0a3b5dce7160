package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagespace/sheetdoc/internal/sheetdoc"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Write  bool   // rewrite the file in place
	PageID string // page_id to record in the header block
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <sheet-file>",
		Short: "Re-serialize a sheet as canonical sheetdoc text",
		Long: `Evaluate a sheet and print its canonical sheetdoc serialization.

The output is deterministic: formatting the same logical sheet always
produces identical bytes, so formatted documents diff cleanly.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "rewrite the file instead of printing")
	cmd.Flags().StringVar(&opts.PageID, "page-id", "", "page identifier to record in the document")

	return cmd
}

func runFmt(opts *FmtOptions, path string, cmd *cobra.Command) error {
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

	text := sheetdoc.Serialize(data, resolver, opts.PageID)

	if opts.Write {
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return formatter.Fail(ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", path, err), nil)
		}
		formatter.VerboseLog("Rewrote %s", path)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.JSON(map[string]string{"document": text})
	}
	fmt.Fprint(formatter.Writer, text)
	return nil
}
