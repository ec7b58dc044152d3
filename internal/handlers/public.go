// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for ToolHub. Handlers are
// grouped by concern (public, admin, auth) and receive their dependencies
// through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"toolhub/internal/cache"
	"toolhub/internal/middleware"
	"toolhub/internal/render"
	"toolhub/internal/store"
)

// Page sizes for the member-facing catalog.
const (
	featuredLimit        = 6
	categoryPreviewLimit = 4
	relatedLimit         = 4
	publicPerPage        = 12
)

// Public groups handlers for the member-facing catalog pages.
type Public struct {
	renderer      *render.Renderer
	categoryStore *store.CategoryStore
	toolStore     *store.ToolStore
	catalog       *cache.Catalog
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, categoryStore *store.CategoryStore, toolStore *store.ToolStore, catalog *cache.Catalog) *Public {
	return &Public{
		renderer:      renderer,
		categoryStore: categoryStore,
		toolStore:     toolStore,
		catalog:       catalog,
	}
}

// Home renders the landing page. Visitors see a marketing welcome page;
// signed-in users get the catalog overview with featured tools and a
// preview of each active category.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if identity.Role == middleware.RoleAnonymous {
		p.renderer.Page(w, r, "welcome", &render.PageData{
			Title: "Welcome",
			Data:  map[string]any{},
		})
		return
	}

	snap, ok := p.catalog.GetHome(r.Context())
	if !ok {
		featured, ferr := p.toolStore.ListFeatured(featuredLimit)
		if ferr != nil {
			slog.Error("list featured tools failed", "error", ferr)
		}
		categories, cerr := p.categoryStore.ListActiveWithTools(categoryPreviewLimit)
		if cerr != nil {
			slog.Error("list categories with tools failed", "error", cerr)
		}
		snap = &cache.HomeSnapshot{Featured: featured, Categories: categories}
		if ferr == nil && cerr == nil {
			p.catalog.SetHome(r.Context(), snap)
		}
	}

	p.renderer.Page(w, r, "home", &render.PageData{
		Title:   "Home",
		Section: "home",
		Data: map[string]any{
			"FeaturedTools": snap.Featured,
			"Categories":    snap.Categories,
		},
	})
}

// ToolsIndex renders the paginated tool catalog with optional category
// and search filters. Only active tools in the requested page appear,
// regardless of who is asking.
func (p *Public) ToolsIndex(w http.ResponseWriter, r *http.Request) {
	categorySlug := strings.TrimSpace(r.URL.Query().Get("category"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	page := parsePage(r)

	filter := store.ToolFilter{
		CategorySlug: categorySlug,
		Search:       search,
	}

	tools, meta, err := p.toolStore.List(filter, page, publicPerPage)
	if err != nil {
		slog.Error("list tools failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	categories, err := p.categoryStore.ListActive()
	if err != nil {
		slog.Error("list active categories failed", "error", err)
	}

	p.renderer.Page(w, r, "tools_index", &render.PageData{
		Title:   "Tools",
		Section: "tools",
		Data: map[string]any{
			"Tools":        tools,
			"Categories":   categories,
			"CategorySlug": categorySlug,
			"Search":       search,
			"Meta":         meta,
		},
	})
}

// ToolShow renders a single tool's detail page with up to four related
// tools from the same category. Inactive tools are hidden from members
// with a 404; admins can still open them for review.
func (p *Public) ToolShow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		p.renderer.NotFound(w, r)
		return
	}

	tool, err := p.toolStore.FindByID(id)
	if err != nil {
		slog.Error("find tool failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if tool == nil {
		p.renderer.NotFound(w, r)
		return
	}

	identity := middleware.IdentityFromCtx(r.Context())
	if !tool.IsActive && identity.Role != middleware.RoleAdmin {
		p.renderer.NotFound(w, r)
		return
	}

	related, err := p.toolStore.ListRelated(tool.CategoryID, tool.ID, relatedLimit)
	if err != nil {
		slog.Error("list related tools failed", "error", err, "id", id)
	}

	p.renderer.Page(w, r, "tool_show", &render.PageData{
		Title:   tool.Name,
		Section: "tools",
		Data: map[string]any{
			"Tool":         tool,
			"RelatedTools": related,
		},
	})
}

// parsePage reads the page query parameter, defaulting to 1 for missing
// or invalid values.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
