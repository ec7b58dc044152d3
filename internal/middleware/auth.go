// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"

	"toolhub/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the raw session data.
	SessionKey contextKey = "session"

	// IdentityKey is the context key for the resolved identity.
	IdentityKey contextKey = "identity"
)

// Role classifies the current request's access level.
type Role int

const (
	RoleAnonymous Role = iota
	RoleMember
	RoleAdmin
)

// Identity is the per-request access classification, resolved once by
// ResolveIdentity and passed explicitly through the request context.
// The zero value is anonymous.
type Identity struct {
	Role    Role
	Session *session.Data // nil when anonymous
}

// IsMember reports whether the identity is at least an authenticated member.
func (id Identity) IsMember() bool {
	return id.Role == RoleMember || id.Role == RoleAdmin
}

// IsAdmin reports whether the identity is an administrator.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// ResolveIdentity loads the session from Valkey and classifies the request
// as anonymous, member, or admin. Sessions awaiting 2FA verification are
// classified anonymous; the raw session stays available via SessionFromCtx
// so the verification handlers can complete the flow. This middleware does
// NOT enforce anything — gating is done by RequireMember/RequireAdmin.
func ResolveIdentity(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				// Log-free degrade: treat as unauthenticated.
				next.ServeHTTP(w, r)
				return
			}
			if data == nil {
				next.ServeHTTP(w, r)
				return
			}

			ident := Identity{Role: RoleMember, Session: data}
			if data.TwoFAPending {
				ident.Role = RoleAnonymous
			} else if data.IsAdmin {
				ident.Role = RoleAdmin
			}

			ctx := context.WithValue(r.Context(), SessionKey, data)
			ctx = context.WithValue(ctx, IdentityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMember redirects anonymous requests to the login page.
// Must be applied after ResolveIdentity in the middleware chain.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromCtx(r.Context()).IsMember() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the admin management routes. Anonymous requests are
// redirected to login; authenticated non-admins get an explicit 403.
// Must be applied after ResolveIdentity.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFromCtx(r.Context())
		if !ident.IsMember() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !ident.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromCtx extracts the resolved identity from the request context.
// Returns the anonymous zero value if ResolveIdentity has not run.
func IdentityFromCtx(ctx context.Context) Identity {
	ident, _ := ctx.Value(IdentityKey).(Identity)
	return ident
}

// SessionFromCtx extracts the raw session data from the request context.
// Returns nil if no session is loaded. Unlike IdentityFromCtx, this also
// exposes sessions still awaiting 2FA verification.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
