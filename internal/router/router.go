// Package router sets up all HTTP routes and middleware chains for
// ToolHub. It organizes routes into public, member, and admin groups
// with appropriate middleware stacks.
package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"toolhub/internal/handlers"
	"toolhub/internal/middleware"
	"toolhub/internal/session"
	"toolhub/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, public *handlers.Public, admin *handlers.Admin, auth *handlers.Auth) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.ResolveIdentity(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health-check", healthHandler)

	// Static assets (compiled CSS, vendored JS).
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	// Browser-facing routes carry CSRF protection.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Landing page adapts to the visitor's identity.
		r.Get("/", public.Home)

		// Auth pages — accessible without a session. Credential
		// submissions are rate limited per client IP.
		loginLimiter := middleware.NewRateLimiter(10, time.Minute)
		r.Get("/login", auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)
		r.Get("/2fa/setup", auth.TwoFASetupPage)
		r.Get("/2fa/verify", auth.TwoFAVerifyPage)
		r.With(loginLimiter.Middleware).Post("/2fa/verify", auth.TwoFAVerifySubmit)

		// Member catalog — requires a signed-in account.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMember)
			r.Get("/tools", public.ToolsIndex)
			r.Get("/tools/{id}", public.ToolShow)
		})

		// Admin area.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", admin.CategoriesList)
				r.Get("/create", admin.CategoryNew)
				r.Post("/", admin.CategoryCreate)
				r.Get("/{id}", admin.CategoryShow)
				r.Get("/{id}/edit", admin.CategoryEdit)
				r.Put("/{id}", admin.CategoryUpdate)
				r.Delete("/{id}", admin.CategoryDelete)
			})

			r.Route("/tools", func(r chi.Router) {
				r.Get("/", admin.ToolsList)
				r.Get("/create", admin.ToolNew)
				r.Post("/", admin.ToolCreate)
				r.Get("/{id}", admin.ToolShow)
				r.Get("/{id}/edit", admin.ToolEdit)
				r.Put("/{id}", admin.ToolUpdate)
				r.Delete("/{id}", admin.ToolDelete)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","time":%q}`, time.Now().UTC().Format(time.RFC3339))
}
