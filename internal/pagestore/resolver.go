package pagestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagespace/sheetdoc/internal/engine"
	"github.com/pagespace/sheetdoc/internal/formula"
	"github.com/pagespace/sheetdoc/internal/sheetdoc"
)

// Resolver serves cross-page references from the store. A mention's
// identifier qualifier wins when present; otherwise the lookup falls back
// to the normalized label. A page that is missing resolves to (nil, nil),
// which the evaluator records as a page-unavailable cell error.
type Resolver struct {
	store *Store
	ctx   context.Context
}

// NewResolver creates a resolver bound to the store. The context bounds
// every lookup made during an evaluation pass.
func NewResolver(ctx context.Context, store *Store) *Resolver {
	return &Resolver{store: store, ctx: ctx}
}

// Resolve implements engine.PageResolver.
func (r *Resolver) Resolve(ref *formula.PageReference) (*engine.ResolvedPage, error) {
	page, err := r.lookup(ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve page %q: %w", ref.Label, err)
	}
	return &engine.ResolvedPage{
		PageID:    page.ID,
		PageTitle: page.Title,
		Sheet:     sheetdoc.ParseSheetContent(page.Content),
	}, nil
}

func (r *Resolver) lookup(ref *formula.PageReference) (*Page, error) {
	if ref.Identifier != "" {
		page, err := r.store.GetPage(r.ctx, ref.Identifier)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return page, err
		}
		// fall through: a stale identifier still resolves by label
	}
	return r.store.GetPageByTitle(r.ctx, ref.NormalizedLabel)
}
