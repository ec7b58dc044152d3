// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"toolhub/internal/models"
)

// CategoryStore manages tool categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, sort_order, is_active, created_at, updated_at`

// scanCategory scans a row into a ToolCategory struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.ToolCategory, error) {
	var c models.ToolCategory
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns one page of all categories (active and inactive) with tool
// counts, ordered by sort_order, name, id. Used by the admin panel.
func (s *CategoryStore) List(page, perPage int) ([]models.ToolCategory, PageMeta, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tool_categories`).Scan(&total); err != nil {
		return nil, PageMeta{}, fmt.Errorf("count categories: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.sort_order, c.is_active,
		       c.created_at, c.updated_at,
		       COUNT(t.id) AS tool_count
		FROM tool_categories c
		LEFT JOIN tools t ON t.category_id = c.id
		GROUP BY c.id
		ORDER BY c.sort_order, c.name, c.id
		LIMIT $1 OFFSET $2
	`, perPage, pageOffset(page, perPage))
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.ToolCategory
	for rows.Next() {
		var c models.ToolCategory
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.IsActive,
			&c.CreatedAt, &c.UpdatedAt,
			&c.ToolCount,
		)
		if err != nil {
			return nil, PageMeta{}, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, newPageMeta(page, perPage, total), rows.Err()
}

// ListAll returns every category, active or not, ordered for display.
// Used for admin form dropdowns.
func (s *CategoryStore) ListAll() ([]models.ToolCategory, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM tool_categories
		ORDER BY sort_order, name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	defer rows.Close()

	var items []models.ToolCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListActive returns all active categories ordered for display. Used for
// the public browse sidebar.
func (s *CategoryStore) ListActive() ([]models.ToolCategory, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM tool_categories
		WHERE is_active = TRUE
		ORDER BY sort_order, name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	defer rows.Close()

	var items []models.ToolCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListActiveWithTools returns all active categories, each carrying up to
// previewLimit of its active tools in display order. Categories with no
// active tools still appear with an empty tool list. Used by the home page.
func (s *CategoryStore) ListActiveWithTools(previewLimit int) ([]models.ToolCategory, error) {
	categories, err := s.ListActive()
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return categories, nil
	}

	rows, err := s.db.Query(`
		SELECT ` + toolColumnsPrefixed("t") + `
		FROM tools t
		WHERE t.is_active = TRUE
		ORDER BY t.sort_order, t.name, t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list active tools for preview: %w", err)
	}
	defer rows.Close()

	// Group tools by category, truncating each group to previewLimit.
	byCategory := make(map[uuid.UUID][]models.Tool)
	for rows.Next() {
		var t models.Tool
		if err := scanTool(rows, &t); err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		if len(byCategory[t.CategoryID]) < previewLimit {
			byCategory[t.CategoryID] = append(byCategory[t.CategoryID], t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range categories {
		categories[i].Tools = byCategory[categories[i].ID]
	}
	return categories, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.ToolCategory, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM tool_categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by its slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.ToolCategory, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM tool_categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. The slug uniqueness check
// and the insert run in one transaction so the create is atomic.
// Returns ErrDuplicateSlug when the slug is already taken.
func (s *CategoryStore) Create(c *models.ToolCategory) (*models.ToolCategory, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	err = tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM tool_categories WHERE slug = $1)`, c.Slug).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return nil, ErrDuplicateSlug
	}

	row := tx.QueryRow(`
		INSERT INTO tool_categories (name, slug, description, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.SortOrder, c.IsActive,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. Returns ErrDuplicateSlug when the
// new slug belongs to another category, ErrNotFound when the id is absent.
func (s *CategoryStore) Update(c *models.ToolCategory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	err = tx.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM tool_categories WHERE slug = $1 AND id != $2)
	`, c.Slug, c.ID).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return ErrDuplicateSlug
	}

	res, err := tx.Exec(`
		UPDATE tool_categories SET
			name = $1, slug = $2, description = $3, sort_order = $4,
			is_active = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Name, c.Slug, c.Description, c.SortOrder, c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Delete removes a category by ID. Deletion is refused while tools still
// reference the category (ErrCategoryInUse); the tools FK backs this with
// ON DELETE RESTRICT. Returns ErrNotFound when the id is absent.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var inUse bool
	err = tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM tools WHERE category_id = $1)`, id).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("check category tools: %w", err)
	}
	if inUse {
		return ErrCategoryInUse
	}

	res, err := tx.Exec(`DELETE FROM tool_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
