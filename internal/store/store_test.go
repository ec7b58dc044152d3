// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"toolhub/internal/database"
	"toolhub/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "toolhub")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "toolhub")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
// Tools referencing them must be removed first.
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM tools WHERE category_id IN (SELECT id FROM tool_categories WHERE slug = $1)", slug)
		db.Exec("DELETE FROM tool_categories WHERE slug = $1", slug)
	}
}

// cleanTools removes test tools by name. Call in t.Cleanup().
func cleanTools(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM tools WHERE name = $1", name)
	}
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// createTestCategory inserts a category for use in tests.
func createTestCategory(t *testing.T, cs *CategoryStore, name, slug string, sortOrder int, active bool) *models.ToolCategory {
	t.Helper()
	created, err := cs.Create(&models.ToolCategory{
		Name:      name,
		Slug:      slug,
		SortOrder: sortOrder,
		IsActive:  active,
	})
	if err != nil {
		t.Fatalf("create test category %s: %v", slug, err)
	}
	return created
}

// createTestTool inserts a tool for use in tests.
func createTestTool(t *testing.T, ts *ToolStore, name string, categoryID uuid.UUID, sortOrder int, active, featured bool) *models.Tool {
	t.Helper()
	created, err := ts.Create(&models.Tool{
		Name:       name,
		URL:        "https://example.com/" + name,
		CategoryID: categoryID,
		SortOrder:  sortOrder,
		IsActive:   active,
		IsFeatured: featured,
	})
	if err != nil {
		t.Fatalf("create test tool %s: %v", name, err)
	}
	return created
}
