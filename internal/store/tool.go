// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"toolhub/internal/models"
)

// ToolStore manages tools in the database.
type ToolStore struct {
	db *sql.DB
}

// NewToolStore returns a new ToolStore.
func NewToolStore(db *sql.DB) *ToolStore {
	return &ToolStore{db: db}
}

// ToolFilter is the criteria object for tool listings. Zero values mean
// "no restriction"; predicates are combined as conjunctions.
type ToolFilter struct {
	// CategorySlug restricts tools to the category with this slug.
	// An unknown slug yields an empty result, not an error.
	CategorySlug string

	// Search keeps tools whose name or description contains this text as
	// a case-insensitive substring. A NULL description never matches.
	Search string

	// IncludeInactive lifts the is_active restriction. Admin callers set
	// this; public listings leave it false.
	IncludeInactive bool
}

// toolColumnsPrefixed renders the tool column list with a table alias.
func toolColumnsPrefixed(alias string) string {
	cols := []string{"id", "name", "description", "url", "image_url", "category_id",
		"sort_order", "is_active", "is_featured", "created_at", "updated_at"}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// scanTool scans the tool columns into t.
func scanTool(scanner interface{ Scan(...any) error }, t *models.Tool) error {
	return scanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.URL, &t.ImageURL, &t.CategoryID,
		&t.SortOrder, &t.IsActive, &t.IsFeatured, &t.CreatedAt, &t.UpdatedAt,
	)
}

// scanToolWithCategory scans the tool columns followed by the joined
// category columns, attaching the category to t.
func scanToolWithCategory(scanner interface{ Scan(...any) error }, t *models.Tool) error {
	var c models.ToolCategory
	err := scanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.URL, &t.ImageURL, &t.CategoryID,
		&t.SortOrder, &t.IsActive, &t.IsFeatured, &t.CreatedAt, &t.UpdatedAt,
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	t.Category = &c
	return nil
}

// List returns one page of tools matching the filter, with their joined
// categories, plus the page metadata. Ordering is sort_order, name, id.
func (s *ToolStore) List(f ToolFilter, page, perPage int) ([]models.Tool, PageMeta, error) {
	where, args := f.conditions()

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM tools t
		JOIN tool_categories c ON c.id = t.category_id
	` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, PageMeta{}, fmt.Errorf("count tools: %w", err)
	}

	query := `
		SELECT ` + toolColumnsPrefixed("t") + `, ` + categoryColumnsPrefixed("c") + `
		FROM tools t
		JOIN tool_categories c ON c.id = t.category_id
	` + where + `
		ORDER BY t.sort_order, t.name, t.id
		LIMIT $` + fmt.Sprint(len(args)+1) + ` OFFSET $` + fmt.Sprint(len(args)+2)
	args = append(args, perPage, pageOffset(page, perPage))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	var items []models.Tool
	for rows.Next() {
		var t models.Tool
		if err := scanToolWithCategory(rows, &t); err != nil {
			return nil, PageMeta{}, fmt.Errorf("scan tool: %w", err)
		}
		items = append(items, t)
	}
	return items, newPageMeta(page, perPage, total), rows.Err()
}

// conditions builds the WHERE clause and its arguments for the filter.
func (f ToolFilter) conditions() (string, []any) {
	var conds []string
	var args []any

	if !f.IncludeInactive {
		conds = append(conds, "t.is_active = TRUE")
	}
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		conds = append(conds, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(t.name ILIKE $%d OR t.description ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// categoryColumnsPrefixed renders the category column list with a table alias.
func categoryColumnsPrefixed(alias string) string {
	cols := []string{"id", "name", "slug", "description", "sort_order", "is_active",
		"created_at", "updated_at"}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// ListFeatured returns active and featured tools with their categories,
// in display order, truncated to limit. Used for home-page highlights.
func (s *ToolStore) ListFeatured(limit int) ([]models.Tool, error) {
	rows, err := s.db.Query(`
		SELECT `+toolColumnsPrefixed("t")+`, `+categoryColumnsPrefixed("c")+`
		FROM tools t
		JOIN tool_categories c ON c.id = t.category_id
		WHERE t.is_active = TRUE AND t.is_featured = TRUE
		ORDER BY t.sort_order, t.name, t.id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured tools: %w", err)
	}
	defer rows.Close()

	var items []models.Tool
	for rows.Next() {
		var t models.Tool
		if err := scanToolWithCategory(rows, &t); err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ListRelated returns active tools in the same category, excluding the
// tool itself, in display order, truncated to limit.
func (s *ToolStore) ListRelated(categoryID, excludeID uuid.UUID, limit int) ([]models.Tool, error) {
	rows, err := s.db.Query(`
		SELECT `+toolColumnsPrefixed("t")+`, `+categoryColumnsPrefixed("c")+`
		FROM tools t
		JOIN tool_categories c ON c.id = t.category_id
		WHERE t.category_id = $1 AND t.id != $2 AND t.is_active = TRUE
		ORDER BY t.sort_order, t.name, t.id
		LIMIT $3
	`, categoryID, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list related tools: %w", err)
	}
	defer rows.Close()

	var items []models.Tool
	for rows.Next() {
		var t models.Tool
		if err := scanToolWithCategory(rows, &t); err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ListByCategory returns every tool in a category, inactive included,
// in display order. Used by the admin category detail page.
func (s *ToolStore) ListByCategory(categoryID uuid.UUID) ([]models.Tool, error) {
	rows, err := s.db.Query(`
		SELECT `+toolColumnsPrefixed("t")+`
		FROM tools t
		WHERE t.category_id = $1
		ORDER BY t.sort_order, t.name, t.id
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list tools by category: %w", err)
	}
	defer rows.Close()

	var items []models.Tool
	for rows.Next() {
		var t models.Tool
		if err := scanTool(rows, &t); err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// FindByID retrieves a tool by ID with its category. Returns nil if not found.
func (s *ToolStore) FindByID(id uuid.UUID) (*models.Tool, error) {
	row := s.db.QueryRow(`
		SELECT `+toolColumnsPrefixed("t")+`, `+categoryColumnsPrefixed("c")+`
		FROM tools t
		JOIN tool_categories c ON c.id = t.category_id
		WHERE t.id = $1
	`, id)
	var t models.Tool
	err := scanToolWithCategory(row, &t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tool by id: %w", err)
	}
	return &t, nil
}

// Create inserts a new tool and returns it. The category existence check
// and the insert run in one transaction so the create is atomic.
// Returns ErrCategoryNotFound when category_id references nothing.
func (s *ToolStore) Create(t *models.Tool) (*models.Tool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := categoryExists(tx, t.CategoryID); err != nil {
		return nil, err
	}

	result := &models.Tool{}
	err = tx.QueryRow(`
		INSERT INTO tools (name, description, url, image_url, category_id,
		                   sort_order, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+toolColumnsPrefixed("tools"),
		t.Name, t.Description, t.URL, t.ImageURL, t.CategoryID,
		t.SortOrder, t.IsActive, t.IsFeatured,
	).Scan(
		&result.ID, &result.Name, &result.Description, &result.URL, &result.ImageURL,
		&result.CategoryID, &result.SortOrder, &result.IsActive, &result.IsFeatured,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create tool: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create tool: %w", err)
	}
	return result, nil
}

// Update modifies an existing tool. Returns ErrCategoryNotFound when the
// new category_id references nothing, ErrNotFound when the id is absent.
func (s *ToolStore) Update(t *models.Tool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := categoryExists(tx, t.CategoryID); err != nil {
		return err
	}

	res, err := tx.Exec(`
		UPDATE tools SET
			name = $1, description = $2, url = $3, image_url = $4,
			category_id = $5, sort_order = $6, is_active = $7,
			is_featured = $8, updated_at = NOW()
		WHERE id = $9
	`, t.Name, t.Description, t.URL, t.ImageURL, t.CategoryID,
		t.SortOrder, t.IsActive, t.IsFeatured, t.ID)
	if err != nil {
		return fmt.Errorf("update tool: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Delete removes a tool by ID. Returns ErrNotFound when the id is absent.
func (s *ToolStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM tools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tool: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// categoryExists checks inside tx that a category id resolves.
func categoryExists(tx *sql.Tx, id uuid.UUID) error {
	var exists bool
	err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM tool_categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return ErrCategoryNotFound
	}
	return nil
}
