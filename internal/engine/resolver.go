package engine

import (
	"github.com/pagespace/sheetdoc/internal/formula"
	"github.com/pagespace/sheetdoc/internal/sheet"
)

// ResolvedPage is what a PageResolver returns for a mention it can serve.
// PageID keys the per-page evaluation cache, so it must be stable and
// unique per document.
type ResolvedPage struct {
	PageID    string
	PageTitle string
	Sheet     *sheet.Data
}

// PageResolver resolves external page mentions to their sheet content.
// Returning (nil, nil) means the page is unknown; both that and an error
// produce a recorded per-cell error, never a panic. The engine calls the
// resolver at most once per distinct mention string per evaluation pass.
type PageResolver interface {
	Resolve(ref *formula.PageReference) (*ResolvedPage, error)
}

// ResolverFunc adapts a function to the PageResolver interface.
type ResolverFunc func(ref *formula.PageReference) (*ResolvedPage, error)

// Resolve implements PageResolver.
func (f ResolverFunc) Resolve(ref *formula.PageReference) (*ResolvedPage, error) {
	return f(ref)
}
