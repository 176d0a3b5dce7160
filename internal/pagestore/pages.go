package pagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pagespace/sheetdoc/internal/formula"
)

// ErrNotFound is returned when no page matches the lookup.
var ErrNotFound = errors.New("page not found")

// Page is one stored page row. Content holds the page's serialized sheet:
// canonical sheetdoc text, or the legacy JSON interchange shape for pages
// written before the text format existed.
type Page struct {
	ID              string
	Title           string
	NormalizedTitle string
	Content         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreatePage inserts a new page and returns it. The ID is a fresh UUID;
// the title is normalized for mention lookup. A second page with the same
// normalized title is rejected by the unique constraint.
func (s *Store) CreatePage(ctx context.Context, title, content string) (*Page, error) {
	now := time.Now().UTC()
	page := &Page{
		ID:              uuid.NewString(),
		Title:           title,
		NormalizedTitle: formula.NormalizeLabel(title),
		Content:         content,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (id, title, normalized_title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		page.ID,
		page.Title,
		page.NormalizedTitle,
		page.Content,
		page.CreatedAt.Format(time.RFC3339Nano),
		page.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	return page, nil
}

// GetPage retrieves a page by ID. Returns ErrNotFound if no row matches.
func (s *Store) GetPage(ctx context.Context, id string) (*Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, normalized_title, content, created_at, updated_at
		FROM pages
		WHERE id = ?
	`, id)

	return scanPage(row)
}

// GetPageByTitle retrieves a page by title. The lookup key is the
// normalized title, so case and surrounding whitespace are ignored.
// Returns ErrNotFound if no row matches.
func (s *Store) GetPageByTitle(ctx context.Context, title string) (*Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, normalized_title, content, created_at, updated_at
		FROM pages
		WHERE normalized_title = ?
	`, formula.NormalizeLabel(title))

	return scanPage(row)
}

// UpdateContent replaces a page's content and bumps updated_at.
// Returns ErrNotFound if the page does not exist.
func (s *Store) UpdateContent(ctx context.Context, id, content string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE pages SET content = ?, updated_at = ? WHERE id = ?
	`, content, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("update page content: %w", err)
	}
	return requireRow(result)
}

// RenamePage changes a page's title, re-deriving the normalized lookup key.
// Returns ErrNotFound if the page does not exist.
func (s *Store) RenamePage(ctx context.Context, id, title string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE pages SET title = ?, normalized_title = ?, updated_at = ? WHERE id = ?
	`, title, formula.NormalizeLabel(title), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("rename page: %w", err)
	}
	return requireRow(result)
}

// DeletePage removes a page. Returns ErrNotFound if the page does not exist.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return requireRow(result)
}

// ListPages returns all pages ordered deterministically by normalized
// title, then ID. Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListPages(ctx context.Context) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, normalized_title, content, created_at, updated_at
		FROM pages
		ORDER BY normalized_title ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	pages := []Page{}
	for rows.Next() {
		page, err := scanPageRows(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}

	return pages, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPage(row *sql.Row) (*Page, error) {
	var page Page
	var createdAt, updatedAt string
	err := row.Scan(&page.ID, &page.Title, &page.NormalizedTitle, &page.Content, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan page: %w", err)
	}
	return &page, parseTimestamps(&page, createdAt, updatedAt)
}

func scanPageRows(rows *sql.Rows) (*Page, error) {
	var page Page
	var createdAt, updatedAt string
	if err := rows.Scan(&page.ID, &page.Title, &page.NormalizedTitle, &page.Content, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scan page: %w", err)
	}
	return &page, parseTimestamps(&page, createdAt, updatedAt)
}

func parseTimestamps(page *Page, createdAt, updatedAt string) error {
	var err error
	if page.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if page.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}
