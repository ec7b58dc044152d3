// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"toolhub/internal/cache"
	"toolhub/internal/database"
	"toolhub/internal/middleware"
	"toolhub/internal/models"
	"toolhub/internal/render"
	"toolhub/internal/session"
	"toolhub/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "toolhub")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "toolhub")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Renderer      *render.Renderer
	Sessions      *session.Store
	UserStore     *store.UserStore
	CategoryStore *store.CategoryStore
	ToolStore     *store.ToolStore
	Public        *Public
	Admin         *Admin
	Auth          *Auth
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	toolStore := store.NewToolStore(db)

	// Start each test from a cold catalog cache so seeded fixtures are
	// visible on the home page.
	catalog := cache.NewCatalog(vk, time.Second)
	catalog.Invalidate(context.Background())

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Renderer:      renderer,
		Sessions:      sessions,
		UserStore:     userStore,
		CategoryStore: categoryStore,
		ToolStore:     toolStore,
		Public:        NewPublic(renderer, categoryStore, toolStore, catalog),
		Admin:         NewAdmin(renderer, categoryStore, toolStore, catalog),
		Auth:          NewAuth(renderer, sessions, userStore),
	}
}

// testSession creates session data for a member or admin.
func testSession(isAdmin bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@toolhub.local",
		DisplayName: "Test User",
		IsAdmin:     isAdmin,
	}
}

// ctxWithIdentity mirrors ResolveIdentity's classification: it loads both
// the raw session and the derived identity into the context.
func ctxWithIdentity(ctx context.Context, sess *session.Data) context.Context {
	if sess == nil {
		return ctx
	}
	ident := middleware.Identity{Role: middleware.RoleMember, Session: sess}
	if sess.TwoFAPending {
		ident.Role = middleware.RoleAnonymous
	} else if sess.IsAdmin {
		ident.Role = middleware.RoleAdmin
	}
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return context.WithValue(ctx, middleware.IdentityKey, ident)
}

// requestAs builds a request carrying the given session's identity.
func requestAs(method, target string, sess *session.Data) *http.Request {
	req, _ := http.NewRequest(method, target, nil)
	return req.WithContext(ctxWithIdentity(req.Context(), sess))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// seedCategory inserts a category for handler tests, cleaned up afterwards.
func seedCategory(t *testing.T, env *testEnv, name, slug string, active bool) *models.ToolCategory {
	t.Helper()
	created, err := env.CategoryStore.Create(&models.ToolCategory{
		Name:     name,
		Slug:     slug,
		IsActive: active,
	})
	if err != nil {
		t.Fatalf("seed category %s: %v", slug, err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM tools WHERE category_id = $1", created.ID)
		env.DB.Exec("DELETE FROM tool_categories WHERE id = $1", created.ID)
	})
	return created
}

// seedTool inserts a tool for handler tests, cleaned up afterwards.
func seedTool(t *testing.T, env *testEnv, name string, categoryID uuid.UUID, active bool) *models.Tool {
	t.Helper()
	created, err := env.ToolStore.Create(&models.Tool{
		Name:       name,
		URL:        "https://example.com/" + name,
		CategoryID: categoryID,
		IsActive:   active,
	})
	if err != nil {
		t.Fatalf("seed tool %s: %v", name, err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM tools WHERE id = $1", created.ID)
	})
	return created
}
