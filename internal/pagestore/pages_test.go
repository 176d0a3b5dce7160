package pagestore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetPage(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	page, err := s.CreatePage(ctx, "  Budget 2026 ", "content here")
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(page.ID))
	assert.Equal(t, "  Budget 2026 ", page.Title)
	assert.Equal(t, "budget 2026", page.NormalizedTitle)

	got, err := s.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, page.ID, got.ID)
	assert.Equal(t, "content here", got.Content)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetPageByTitle_Normalized(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	created, err := s.CreatePage(ctx, "Budget", "")
	require.NoError(t, err)

	for _, title := range []string{"Budget", "budget", "  BUDGET  "} {
		got, err := s.GetPageByTitle(ctx, title)
		require.NoError(t, err, "title %q", title)
		assert.Equal(t, created.ID, got.ID, "title %q", title)
	}

	_, err = s.GetPageByTitle(ctx, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePage_DuplicateTitleRejected(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePage(ctx, "Budget", "")
	require.NoError(t, err)

	// titles collide on the normalized form
	_, err = s.CreatePage(ctx, "  budget ", "")
	assert.Error(t, err)
}

func TestUpdateContent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	page, err := s.CreatePage(ctx, "Notes", "old")
	require.NoError(t, err)

	require.NoError(t, s.UpdateContent(ctx, page.ID, "new"))
	got, err := s.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Content)

	assert.ErrorIs(t, s.UpdateContent(ctx, "no-such-id", "x"), ErrNotFound)
}

func TestRenamePage(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	page, err := s.CreatePage(ctx, "Old Name", "")
	require.NoError(t, err)

	require.NoError(t, s.RenamePage(ctx, page.ID, "New Name"))
	got, err := s.GetPageByTitle(ctx, "new name")
	require.NoError(t, err)
	assert.Equal(t, page.ID, got.ID)

	_, err = s.GetPageByTitle(ctx, "Old Name")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePage(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	page, err := s.CreatePage(ctx, "Scratch", "")
	require.NoError(t, err)

	require.NoError(t, s.DeletePage(ctx, page.ID))
	_, err = s.GetPage(ctx, page.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeletePage(ctx, page.ID), ErrNotFound)
}

func TestListPages_Ordering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"zebra", "Alpha", "mango"} {
		_, err := s.CreatePage(ctx, title, "")
		require.NoError(t, err)
	}

	pages, err := s.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "Alpha", pages[0].Title)
	assert.Equal(t, "mango", pages[1].Title)
	assert.Equal(t, "zebra", pages[2].Title)
}

func TestListPages_EmptyIsNotNil(t *testing.T) {
	pages, err := createTestStore(t).ListPages(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pages)
	assert.Empty(t, pages)
}
