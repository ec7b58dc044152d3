// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"toolhub/internal/cache"
	"toolhub/internal/models"
	"toolhub/internal/render"
	"toolhub/internal/store"
)

// adminPerPage is the page size for admin listing tables.
const adminPerPage = 20

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer      *render.Renderer
	categoryStore *store.CategoryStore
	toolStore     *store.ToolStore
	catalog       *cache.Catalog
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(renderer *render.Renderer, categoryStore *store.CategoryStore, toolStore *store.ToolStore, catalog *cache.Catalog) *Admin {
	return &Admin{
		renderer:      renderer,
		categoryStore: categoryStore,
		toolStore:     toolStore,
		catalog:       catalog,
	}
}

// --- Categories CRUD ---

// CategoriesList renders the category management table with tool counts.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, meta, err := a.categoryStore.List(parsePage(r), adminPerPage)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin_categories", &render.PageData{
		Title:   "Categories",
		Section: "admin-categories",
		Data: map[string]any{
			"Categories": categories,
			"Meta":       meta,
		},
	})
}

// CategoryNew renders the new category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "admin_category_form", &render.PageData{
		Title:   "New Category",
		Section: "admin-categories",
		Data: map[string]any{
			"FormTitle":  "New Category",
			"FormAction": "/admin/categories",
			"IsEdit":     false,
			"Form":       categoryForm{IsActive: true},
		},
	})
}

// CategoryCreate handles the new category form submission. Validation
// failures re-render the form with every violated field flagged.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	form, errs := parseCategoryForm(r)
	if len(errs) > 0 {
		a.categoryFormError(w, r, "New Category", "/admin/categories", false, form, errs)
		return
	}

	_, err := a.categoryStore.Create(form.toCategory())
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSlug) {
			errs["slug"] = "This slug is already in use."
			a.categoryFormError(w, r, "New Category", "/admin/categories", false, form, errs)
			return
		}
		slog.Error("create category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.catalog.Invalidate(r.Context())
	redirect(w, r, "/admin/categories")
}

// CategoryShow renders a category's detail page with all of its tools,
// inactive ones included.
func (a *Admin) CategoryShow(w http.ResponseWriter, r *http.Request) {
	category := a.findCategory(w, r)
	if category == nil {
		return
	}

	tools, err := a.toolStore.ListByCategory(category.ID)
	if err != nil {
		slog.Error("list category tools failed", "error", err, "id", category.ID)
	}

	a.renderer.Page(w, r, "admin_category_show", &render.PageData{
		Title:   category.Name,
		Section: "admin-categories",
		Data: map[string]any{
			"Category": category,
			"Tools":    tools,
		},
	})
}

// CategoryEdit renders the edit form pre-filled from the stored category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	category := a.findCategory(w, r)
	if category == nil {
		return
	}

	a.renderer.Page(w, r, "admin_category_form", &render.PageData{
		Title:   "Edit Category",
		Section: "admin-categories",
		Data: map[string]any{
			"FormTitle":  "Edit " + category.Name,
			"FormAction": "/admin/categories/" + category.ID.String(),
			"IsEdit":     true,
			"Form":       categoryFormFromModel(category),
		},
	})
}

// CategoryUpdate handles the edit form submission.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	action := "/admin/categories/" + id.String()
	form, errs := parseCategoryForm(r)
	if len(errs) > 0 {
		a.categoryFormError(w, r, "Edit Category", action, true, form, errs)
		return
	}

	category := form.toCategory()
	category.ID = id
	if err := a.categoryStore.Update(category); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Not Found", http.StatusNotFound)
		case errors.Is(err, store.ErrDuplicateSlug):
			errs["slug"] = "This slug is already in use."
			a.categoryFormError(w, r, "Edit Category", action, true, form, errs)
		default:
			slog.Error("update category failed", "error", err, "id", id)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	a.catalog.Invalidate(r.Context())
	redirect(w, r, "/admin/categories")
}

// CategoryDelete removes a category. Categories still holding tools are
// protected and answer with 409 Conflict.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if err := a.categoryStore.Delete(id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Not Found", http.StatusNotFound)
		case errors.Is(err, store.ErrCategoryInUse):
			http.Error(w, "Cannot delete a category that still has tools.", http.StatusConflict)
		default:
			slog.Error("delete category failed", "error", err, "id", id)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	a.catalog.Invalidate(r.Context())
	redirect(w, r, "/admin/categories")
}

// --- Tools CRUD ---

// ToolsList renders the tool management table. Unlike the member catalog,
// inactive tools appear here so admins can review and manage them.
func (a *Admin) ToolsList(w http.ResponseWriter, r *http.Request) {
	categorySlug := strings.TrimSpace(r.URL.Query().Get("category"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	filter := store.ToolFilter{
		CategorySlug:    categorySlug,
		Search:          search,
		IncludeInactive: true,
	}

	tools, meta, err := a.toolStore.List(filter, parsePage(r), adminPerPage)
	if err != nil {
		slog.Error("list tools failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	categories, err := a.categoryStore.ListAll()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	a.renderer.Page(w, r, "admin_tools", &render.PageData{
		Title:   "Tools",
		Section: "admin-tools",
		Data: map[string]any{
			"Tools":        tools,
			"Categories":   categories,
			"CategorySlug": categorySlug,
			"Search":       search,
			"Meta":         meta,
		},
	})
}

// ToolNew renders the new tool form.
func (a *Admin) ToolNew(w http.ResponseWriter, r *http.Request) {
	a.toolFormPage(w, r, "New Tool", "/admin/tools", false, toolForm{IsActive: true}, nil)
}

// ToolCreate handles the new tool form submission.
func (a *Admin) ToolCreate(w http.ResponseWriter, r *http.Request) {
	form, errs := parseToolForm(r)
	if len(errs) > 0 {
		a.toolFormPage(w, r, "New Tool", "/admin/tools", false, form, errs)
		return
	}

	_, err := a.toolStore.Create(form.toTool())
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			errs["category_id"] = "Selected category does not exist."
			a.toolFormPage(w, r, "New Tool", "/admin/tools", false, form, errs)
			return
		}
		slog.Error("create tool failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.catalog.Invalidate(r.Context())
	redirect(w, r, "/admin/tools")
}

// ToolShow renders a tool's admin detail page.
func (a *Admin) ToolShow(w http.ResponseWriter, r *http.Request) {
	tool := a.findTool(w, r)
	if tool == nil {
		return
	}

	a.renderer.Page(w, r, "admin_tool_show", &render.PageData{
		Title:   tool.Name,
		Section: "admin-tools",
		Data:    map[string]any{"Tool": tool},
	})
}

// ToolEdit renders the edit form pre-filled from the stored tool.
func (a *Admin) ToolEdit(w http.ResponseWriter, r *http.Request) {
	tool := a.findTool(w, r)
	if tool == nil {
		return
	}

	a.toolFormPage(w, r, "Edit "+tool.Name, "/admin/tools/"+tool.ID.String(), true, toolFormFromModel(tool), nil)
}

// ToolUpdate handles the edit form submission.
func (a *Admin) ToolUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	action := "/admin/tools/" + id.String()
	form, errs := parseToolForm(r)
	if len(errs) > 0 {
		a.toolFormPage(w, r, "Edit Tool", action, true, form, errs)
		return
	}

	tool := form.toTool()
	tool.ID = id
	if err := a.toolStore.Update(tool); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Not Found", http.StatusNotFound)
		case errors.Is(err, store.ErrCategoryNotFound):
			errs["category_id"] = "Selected category does not exist."
			a.toolFormPage(w, r, "Edit Tool", action, true, form, errs)
		default:
			slog.Error("update tool failed", "error", err, "id", id)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	a.catalog.Invalidate(r.Context())
	redirect(w, r, "/admin/tools")
}

// ToolDelete removes a tool permanently.
func (a *Admin) ToolDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if err := a.toolStore.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("delete tool failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.catalog.Invalidate(r.Context())
	redirect(w, r, "/admin/tools")
}

// --- Shared helpers ---

// findCategory resolves the id URL param to a category, writing the error
// response and returning nil when it cannot.
func (a *Admin) findCategory(w http.ResponseWriter, r *http.Request) *models.ToolCategory {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}

	category, err := a.categoryStore.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if category == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}
	return category
}

// findTool resolves the id URL param to a tool, writing the error response
// and returning nil when it cannot.
func (a *Admin) findTool(w http.ResponseWriter, r *http.Request) *models.Tool {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}

	tool, err := a.toolStore.FindByID(id)
	if err != nil {
		slog.Error("find tool failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if tool == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}
	return tool
}

// categoryFormError re-renders the category form with validation errors
// and a 422 status.
func (a *Admin) categoryFormError(w http.ResponseWriter, r *http.Request, title, action string, isEdit bool, form categoryForm, errs map[string]string) {
	a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "admin_category_form", &render.PageData{
		Title:   title,
		Section: "admin-categories",
		Errors:  errs,
		Data: map[string]any{
			"FormTitle":  title,
			"FormAction": action,
			"IsEdit":     isEdit,
			"Form":       form,
		},
	})
}

// toolFormPage renders the tool form. With errs set, it answers 422 so
// validation failures are visible to HTMX and tests alike.
func (a *Admin) toolFormPage(w http.ResponseWriter, r *http.Request, title, action string, isEdit bool, form toolForm, errs map[string]string) {
	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusUnprocessableEntity
	}

	categories, err := a.categoryStore.ListAll()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	a.renderer.PageStatus(w, r, status, "admin_tool_form", &render.PageData{
		Title:   title,
		Section: "admin-tools",
		Errors:  errs,
		Data: map[string]any{
			"FormTitle":  title,
			"FormAction": action,
			"IsEdit":     isEdit,
			"Form":       form,
			"Categories": categories,
		},
	})
}

// redirect sends the browser to url, using the HX-Redirect header for
// HTMX-initiated requests so the client performs a full navigation.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
