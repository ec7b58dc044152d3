package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"toolhub/internal/models"
	"toolhub/internal/slug"
)

// Validation limits for catalog form fields.
const (
	maxNameLen        = 255
	maxSlugLen        = 255
	maxURLLen         = 2048
	maxDescriptionLen = 2000
)

// categoryForm carries the allow-listed fields a category create or edit
// form may submit, plus the parsed values used to re-render on error.
type categoryForm struct {
	Name        string
	Slug        string
	Description string
	SortOrder   int
	IsActive    bool
}

// toolForm carries the allow-listed fields a tool create or edit form
// may submit.
type toolForm struct {
	Name        string
	Description string
	URL         string
	ImageURL    string
	CategoryID  uuid.UUID
	SortOrder   int
	IsActive    bool
	IsFeatured  bool
}

// parseCategoryForm reads and validates category form values. All
// violations are collected so the form can show every problem at once.
// A blank slug is derived from the name.
func parseCategoryForm(r *http.Request) (categoryForm, map[string]string) {
	errs := make(map[string]string)

	f := categoryForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Slug:        strings.TrimSpace(r.FormValue("slug")),
		Description: strings.TrimSpace(r.FormValue("description")),
		IsActive:    r.FormValue("is_active") == "true",
	}

	if f.Name == "" {
		errs["name"] = "Name is required."
	} else if utf8.RuneCountInString(f.Name) > maxNameLen {
		errs["name"] = "Name is too long (max 255 characters)."
	}

	if f.Slug == "" {
		f.Slug = slug.Generate(f.Name)
	} else {
		f.Slug = slug.Generate(f.Slug)
	}
	if f.Slug == "" && f.Name != "" {
		errs["slug"] = "Slug cannot be derived from the name; please provide one."
	}
	if utf8.RuneCountInString(f.Slug) > maxSlugLen {
		errs["slug"] = "Slug is too long (max 255 characters)."
	}

	if utf8.RuneCountInString(f.Description) > maxDescriptionLen {
		errs["description"] = "Description is too long (max 2,000 characters)."
	}

	f.SortOrder = parseSortOrder(r.FormValue("sort_order"), errs)

	return f, errs
}

// parseToolForm reads and validates tool form values, collecting all
// violations.
func parseToolForm(r *http.Request) (toolForm, map[string]string) {
	errs := make(map[string]string)

	f := toolForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		URL:         strings.TrimSpace(r.FormValue("url")),
		ImageURL:    strings.TrimSpace(r.FormValue("image_url")),
		IsActive:    r.FormValue("is_active") == "true",
		IsFeatured:  r.FormValue("is_featured") == "true",
	}

	if f.Name == "" {
		errs["name"] = "Name is required."
	} else if utf8.RuneCountInString(f.Name) > maxNameLen {
		errs["name"] = "Name is too long (max 255 characters)."
	}

	if f.URL == "" {
		errs["url"] = "URL is required."
	} else if utf8.RuneCountInString(f.URL) > maxURLLen {
		errs["url"] = "URL is too long (max 2,048 characters)."
	} else if !isAbsoluteURL(f.URL) {
		errs["url"] = "URL must be an absolute http or https address."
	}

	if f.ImageURL != "" {
		if utf8.RuneCountInString(f.ImageURL) > maxURLLen {
			errs["image_url"] = "Image URL is too long (max 2,048 characters)."
		} else if !isAbsoluteURL(f.ImageURL) {
			errs["image_url"] = "Image URL must be an absolute http or https address."
		}
	}

	if utf8.RuneCountInString(f.Description) > maxDescriptionLen {
		errs["description"] = "Description is too long (max 2,000 characters)."
	}

	idStr := r.FormValue("category_id")
	if idStr == "" {
		errs["category_id"] = "Category is required."
	} else {
		id, err := uuid.Parse(idStr)
		if err != nil {
			errs["category_id"] = "Selected category is not valid."
		} else {
			f.CategoryID = id
		}
	}

	f.SortOrder = parseSortOrder(r.FormValue("sort_order"), errs)

	return f, errs
}

// parseSortOrder interprets a sort order field. Blank means zero; anything
// else must be a non-negative integer.
func parseSortOrder(raw string, errs map[string]string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs["sort_order"] = "Sort order must be a whole number."
		return 0
	}
	if n < 0 {
		errs["sort_order"] = "Sort order cannot be negative."
		return 0
	}
	return n
}

// isAbsoluteURL reports whether s parses as an absolute http or https URL
// with a host.
func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// toCategory converts a validated form into a model. Blank descriptions
// are stored as NULL.
func (f categoryForm) toCategory() *models.ToolCategory {
	c := &models.ToolCategory{
		Name:      f.Name,
		Slug:      f.Slug,
		SortOrder: f.SortOrder,
		IsActive:  f.IsActive,
	}
	if f.Description != "" {
		d := f.Description
		c.Description = &d
	}
	return c
}

// toTool converts a validated form into a model. Blank optional fields
// are stored as NULL.
func (f toolForm) toTool() *models.Tool {
	t := &models.Tool{
		Name:       f.Name,
		URL:        f.URL,
		CategoryID: f.CategoryID,
		SortOrder:  f.SortOrder,
		IsActive:   f.IsActive,
		IsFeatured: f.IsFeatured,
	}
	if f.Description != "" {
		d := f.Description
		t.Description = &d
	}
	if f.ImageURL != "" {
		img := f.ImageURL
		t.ImageURL = &img
	}
	return t
}

// categoryFormFromModel pre-fills an edit form from an existing category.
func categoryFormFromModel(c *models.ToolCategory) categoryForm {
	f := categoryForm{
		Name:      c.Name,
		Slug:      c.Slug,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
	}
	if c.Description != nil {
		f.Description = *c.Description
	}
	return f
}

// toolFormFromModel pre-fills an edit form from an existing tool.
func toolFormFromModel(t *models.Tool) toolForm {
	f := toolForm{
		Name:       t.Name,
		URL:        t.URL,
		CategoryID: t.CategoryID,
		SortOrder:  t.SortOrder,
		IsActive:   t.IsActive,
		IsFeatured: t.IsFeatured,
	}
	if t.Description != nil {
		f.Description = *t.Description
	}
	if t.ImageURL != nil {
		f.ImageURL = *t.ImageURL
	}
	return f
}
