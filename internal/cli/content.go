package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pagespace/sheetdoc/internal/engine"
	"github.com/pagespace/sheetdoc/internal/pagestore"
	"github.com/pagespace/sheetdoc/internal/sheet"
	"github.com/pagespace/sheetdoc/internal/sheetdoc"
)

// readSheetFile loads a sheet from disk. The content may be canonical
// sheetdoc text or the JSON interchange shape; unreadable content degrades
// to an empty sheet, so only the file read itself can fail.
func readSheetFile(path string) (*sheet.Data, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return sheetdoc.ParseSheetContent(string(content)), nil
}

// openResolver opens the page database named by --db and returns a resolver
// over it, plus a cleanup func. With no --db the resolver is nil and every
// cross-page reference evaluates to a page-unavailable error.
func openResolver(ctx context.Context, opts *RootOptions) (engine.PageResolver, func(), error) {
	if opts.DBPath == "" {
		return nil, func() {}, nil
	}
	store, err := pagestore.Open(opts.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open page database: %w", err)
	}
	return pagestore.NewResolver(ctx, store), func() { store.Close() }, nil
}
